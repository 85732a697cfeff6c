package database

import (
	"context"

	"github.com/google/uuid"
)

const getStore = `
SELECT id, owner_id, name, slug, whatsapp_phone, currency_symbol,
       gst_percentage, extra_charge_amount, extra_charge_type,
       latitude, longitude, delivery_rate, delivery_radius_km, first_km_free,
       is_fixed_rate, theme, is_active, created_at, updated_at
FROM stores
WHERE id = $1 AND is_active = true
`

func (q *Queries) GetStore(ctx context.Context, id uuid.UUID) (Store, error) {
	row := q.db.QueryRow(ctx, getStore, id)
	var s Store
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.WhatsappPhone, &s.CurrencySymbol,
		&s.GstPercentage, &s.ExtraChargeAmount, &s.ExtraChargeType,
		&s.Latitude, &s.Longitude, &s.DeliveryRate, &s.DeliveryRadiusKm, &s.FirstKmFree,
		&s.IsFixedRate, &s.Theme, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

const getStoreBySlug = `
SELECT id, owner_id, name, slug, whatsapp_phone, currency_symbol,
       gst_percentage, extra_charge_amount, extra_charge_type,
       latitude, longitude, delivery_rate, delivery_radius_km, first_km_free,
       is_fixed_rate, theme, is_active, created_at, updated_at
FROM stores
WHERE slug = $1 AND is_active = true
`

func (q *Queries) GetStoreBySlug(ctx context.Context, slug string) (Store, error) {
	row := q.db.QueryRow(ctx, getStoreBySlug, slug)
	var s Store
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.WhatsappPhone, &s.CurrencySymbol,
		&s.GstPercentage, &s.ExtraChargeAmount, &s.ExtraChargeType,
		&s.Latitude, &s.Longitude, &s.DeliveryRate, &s.DeliveryRadiusKm, &s.FirstKmFree,
		&s.IsFixedRate, &s.Theme, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

const updateStoreTheme = `
UPDATE stores
SET theme = $2, updated_at = now()
WHERE id = $1
RETURNING theme
`

func (q *Queries) UpdateStoreTheme(ctx context.Context, id uuid.UUID, theme []byte) ([]byte, error) {
	row := q.db.QueryRow(ctx, updateStoreTheme, id, theme)
	var out []byte
	err := row.Scan(&out)
	return out, err
}

type UpdateStoreDeliveryParams struct {
	ID               uuid.UUID
	Latitude         *float64
	Longitude        *float64
	DeliveryRate     *string
	DeliveryRadiusKm *float64
	FirstKmFree      *float64
	IsFixedRate      bool
}

const updateStoreDelivery = `
UPDATE stores
SET latitude = $2, longitude = $3, delivery_rate = $4,
    delivery_radius_km = $5, first_km_free = $6, is_fixed_rate = $7,
    updated_at = now()
WHERE id = $1
RETURNING id, owner_id, name, slug, whatsapp_phone, currency_symbol,
          gst_percentage, extra_charge_amount, extra_charge_type,
          latitude, longitude, delivery_rate, delivery_radius_km, first_km_free,
          is_fixed_rate, theme, is_active, created_at, updated_at
`

func (q *Queries) UpdateStoreDelivery(ctx context.Context, arg UpdateStoreDeliveryParams) (Store, error) {
	row := q.db.QueryRow(ctx, updateStoreDelivery,
		arg.ID, arg.Latitude, arg.Longitude, arg.DeliveryRate,
		arg.DeliveryRadiusKm, arg.FirstKmFree, arg.IsFixedRate,
	)
	var s Store
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.WhatsappPhone, &s.CurrencySymbol,
		&s.GstPercentage, &s.ExtraChargeAmount, &s.ExtraChargeType,
		&s.Latitude, &s.Longitude, &s.DeliveryRate, &s.DeliveryRadiusKm, &s.FirstKmFree,
		&s.IsFixedRate, &s.Theme, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}
