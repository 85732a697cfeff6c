package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const offerColumns = `id, store_id, menu_item_id, variant_name, offer_price,
       starts_at, ends_at, is_active, created_at`

// ListCurrentOffers returns offers the storefront should consider: active
// rows that have not ended yet, including ones that start in the future.
const listCurrentOffers = `
SELECT ` + offerColumns + `
FROM offers
WHERE store_id = $1 AND is_active = true AND ends_at > now()
ORDER BY starts_at
`

func (q *Queries) ListCurrentOffers(ctx context.Context, storeID uuid.UUID) ([]Offer, error) {
	rows, err := q.db.Query(ctx, listCurrentOffers, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []Offer
	for rows.Next() {
		var o Offer
		if err := rows.Scan(&o.ID, &o.StoreID, &o.MenuItemID, &o.VariantName, &o.OfferPrice,
			&o.StartsAt, &o.EndsAt, &o.IsActive, &o.CreatedAt); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

const listOffersByStore = `
SELECT ` + offerColumns + `
FROM offers
WHERE store_id = $1 AND is_active = true
ORDER BY starts_at DESC
`

func (q *Queries) ListOffersByStore(ctx context.Context, storeID uuid.UUID) ([]Offer, error) {
	rows, err := q.db.Query(ctx, listOffersByStore, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []Offer
	for rows.Next() {
		var o Offer
		if err := rows.Scan(&o.ID, &o.StoreID, &o.MenuItemID, &o.VariantName, &o.OfferPrice,
			&o.StartsAt, &o.EndsAt, &o.IsActive, &o.CreatedAt); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

type CreateOfferParams struct {
	StoreID     uuid.UUID
	MenuItemID  uuid.UUID
	VariantName pgtype.Text
	OfferPrice  pgtype.Numeric
	StartsAt    pgtype.Timestamptz
	EndsAt      pgtype.Timestamptz
}

const createOffer = `
INSERT INTO offers (store_id, menu_item_id, variant_name, offer_price, starts_at, ends_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + offerColumns + `
`

func (q *Queries) CreateOffer(ctx context.Context, arg CreateOfferParams) (Offer, error) {
	row := q.db.QueryRow(ctx, createOffer,
		arg.StoreID, arg.MenuItemID, arg.VariantName, arg.OfferPrice, arg.StartsAt, arg.EndsAt)
	var o Offer
	err := row.Scan(&o.ID, &o.StoreID, &o.MenuItemID, &o.VariantName, &o.OfferPrice,
		&o.StartsAt, &o.EndsAt, &o.IsActive, &o.CreatedAt)
	return o, err
}

type UpdateOfferParams struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	VariantName pgtype.Text
	OfferPrice  pgtype.Numeric
	StartsAt    pgtype.Timestamptz
	EndsAt      pgtype.Timestamptz
}

const updateOffer = `
UPDATE offers
SET variant_name = $3, offer_price = $4, starts_at = $5, ends_at = $6
WHERE id = $1 AND store_id = $2 AND is_active = true
RETURNING ` + offerColumns + `
`

func (q *Queries) UpdateOffer(ctx context.Context, arg UpdateOfferParams) (Offer, error) {
	row := q.db.QueryRow(ctx, updateOffer,
		arg.ID, arg.StoreID, arg.VariantName, arg.OfferPrice, arg.StartsAt, arg.EndsAt)
	var o Offer
	err := row.Scan(&o.ID, &o.StoreID, &o.MenuItemID, &o.VariantName, &o.OfferPrice,
		&o.StartsAt, &o.EndsAt, &o.IsActive, &o.CreatedAt)
	return o, err
}

const deleteOffer = `
UPDATE offers
SET is_active = false
WHERE id = $1 AND store_id = $2
`

func (q *Queries) DeleteOffer(ctx context.Context, id, storeID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteOffer, id, storeID)
	return err
}
