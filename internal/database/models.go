package database

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           uuid.UUID
	StoreID      pgtype.UUID // null for superadmins
	Email        string
	PasswordHash string
	Name         string
	Role         string
	IsActive     bool
	CreatedAt    pgtype.Timestamptz
}

type Store struct {
	ID                uuid.UUID
	OwnerID           uuid.UUID
	Name              string
	Slug              string
	WhatsappPhone     string
	CurrencySymbol    string
	GstPercentage     pgtype.Numeric
	ExtraChargeAmount pgtype.Numeric
	ExtraChargeType   pgtype.Text
	Latitude          pgtype.Float8
	Longitude         pgtype.Float8
	DeliveryRate      pgtype.Numeric
	DeliveryRadiusKm  pgtype.Float8
	FirstKmFree       pgtype.Float8
	IsFixedRate       bool
	Theme             []byte
	IsActive          bool
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
}

type MenuItem struct {
	ID            uuid.UUID
	StoreID       uuid.UUID
	Category      string
	Name          string
	Description   pgtype.Text
	Price         pgtype.Numeric
	ImageUrl      pgtype.Text
	StockQuantity pgtype.Int4 // null means untracked
	ShowStock     bool
	IsAvailable   bool
	IsActive      bool
	SortOrder     int32
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

type Variant struct {
	ID         uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	Price      pgtype.Numeric
	SortOrder  int32
	IsActive   bool
}

type Offer struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	MenuItemID  uuid.UUID
	VariantName pgtype.Text // null targets the whole item
	OfferPrice  pgtype.Numeric
	StartsAt    pgtype.Timestamptz
	EndsAt      pgtype.Timestamptz
	IsActive    bool
	CreatedAt   pgtype.Timestamptz
}

type Order struct {
	ID                 uuid.UUID
	StoreID            uuid.UUID
	OrderNumber        string
	OrderType          string
	Status             string
	CustomerName       string
	CustomerPhone      pgtype.Text
	DeliveryAddress    pgtype.Text
	DeliveryLat        pgtype.Float8
	DeliveryLng        pgtype.Float8
	DeliveryDistanceKm pgtype.Float8
	Notes              pgtype.Text
	Subtotal           pgtype.Numeric
	GstAmount          pgtype.Numeric
	ExtraCharge        pgtype.Numeric
	DeliveryCharge     pgtype.Numeric
	TotalAmount        pgtype.Numeric
	CreatedAt          pgtype.Timestamptz
	UpdatedAt          pgtype.Timestamptz
}

type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	MenuItemID  uuid.UUID
	LineKey     string
	Name        string
	VariantName pgtype.Text
	UnitPrice   pgtype.Numeric
	Quantity    int32
	Subtotal    pgtype.Numeric
}

type ExploreItem struct {
	ID        uuid.UUID
	StoreID   uuid.UUID
	Kind      string
	Title     string
	MediaUrl  string
	OfferID   pgtype.UUID
	SortOrder int32
	IsActive  bool
	CreatedAt pgtype.Timestamptz
}
