package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/dineup/api/internal/cart"
	"github.com/dineup/api/internal/database"
	"github.com/dineup/api/internal/delivery"
	"github.com/dineup/api/internal/enum"
	"github.com/dineup/api/internal/order"
	"github.com/dineup/api/internal/pricing"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems        = errors.New("items are required")
	ErrInvalidOrderType  = errors.New("invalid order_type")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrInvalidMenuItemID = errors.New("invalid menu_item_id")
	ErrItemNotFound      = errors.New("menu item not found in store")
	ErrItemUnavailable   = errors.New("menu item is unavailable")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCustomerName      = errors.New("customer_name is required")
	ErrDeliveryAddress   = errors.New("delivery_address is required for DELIVERY orders")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetStore(ctx context.Context, id uuid.UUID) (database.Store, error)
	GetMenuItem(ctx context.Context, id, storeID uuid.UUID) (database.MenuItem, error)
	ListVariantsByItem(ctx context.Context, menuItemID uuid.UUID) ([]database.Variant, error)
	ListCurrentOffers(ctx context.Context, storeID uuid.UUID) ([]database.Offer, error)
	GetNextOrderNumber(ctx context.Context, storeID uuid.UUID) (int32, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	DecrementStock(ctx context.Context, id, storeID uuid.UUID, by int32) error
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for placing an order.
type CreateOrderRequest struct {
	StoreID         uuid.UUID
	OrderType       string
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
	DeliveryLat     *float64
	DeliveryLng     *float64
	Notes           string
	Items           []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single line in the order.
type CreateOrderItemRequest struct {
	MenuItemID  string
	VariantName string
	Quantity    int32
}

// CreateOrderResult is the created order with its items, totals and the
// WhatsApp handoff.
type CreateOrderResult struct {
	Order        database.Order
	Items        []database.OrderItem
	Totals       order.Breakdown
	Summary      string
	WhatsAppLink string
}

// OrderService handles checkout.
type OrderService struct {
	pool       TxBeginner
	newStore   NewOrderStore
	calculator *delivery.Calculator
	now        func() time.Time
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore, calculator *delivery.Calculator) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, calculator: calculator, now: time.Now}
}

// preparedLine is a validated, priced order line waiting for insert.
type preparedLine struct {
	params database.CreateOrderItemParams
	line   order.Line
}

// CreateOrder validates the request, charges offer-resolved prices, computes
// totals and persists the order atomically. Retries on order-number unique
// constraint violations (concurrent transactions can read the same MAX).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if err := validateOrderType(req.OrderType); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if req.CustomerName == "" {
		return nil, ErrCustomerName
	}
	if req.OrderType == enum.OrderTypeDelivery && req.DeliveryAddress == "" {
		return nil, ErrDeliveryAddress
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_store_id_order_number_key"
	}
	return false
}

func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	now := s.now()

	st, err := store.GetStore(ctx, req.StoreID)
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}

	nextNum, err := store.GetNextOrderNumber(ctx, req.StoreID)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}
	orderNumber := fmt.Sprintf("ORD-%04d", nextNum)

	offers, err := store.ListCurrentOffers(ctx, req.StoreID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	priceOffers := pricingOffers(offers)

	// --- Validate lines and charge effective prices ---
	var prepared []preparedLine
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		menuItemID, err := uuid.Parse(item.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidMenuItemID)
		}

		m, err := store.GetMenuItem(ctx, menuItemID, req.StoreID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrItemNotFound)
			}
			return nil, fmt.Errorf("item[%d]: get menu item: %w", i, err)
		}
		if !m.IsAvailable {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrItemUnavailable)
		}

		variants, err := store.ListVariantsByItem(ctx, menuItemID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: list variants: %w", i, err)
		}
		if item.VariantName != "" && !variantExists(variants, item.VariantName) {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrVariantNotFound)
		}

		// Tracked stock gates the line; null stock is untracked.
		if m.StockQuantity.Valid {
			if m.StockQuantity.Int32 < item.Quantity {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrInsufficientStock)
			}
			if err := store.DecrementStock(ctx, menuItemID, req.StoreID, item.Quantity); err != nil {
				return nil, fmt.Errorf("item[%d]: decrement stock: %w", i, err)
			}
		}

		unitPrice := pricing.ChargeablePrice(pricingItem(m, variants), priceOffers, item.VariantName, now)
		lineSubtotal := unitPrice.Mul(decimal.NewFromInt32(item.Quantity))

		variantName := pgtype.Text{}
		if item.VariantName != "" {
			variantName = pgtype.Text{String: item.VariantName, Valid: true}
		}

		prepared = append(prepared, preparedLine{
			params: database.CreateOrderItemParams{
				MenuItemID:  menuItemID,
				LineKey:     string(cart.NewLineID(menuItemID, item.VariantName)),
				Name:        m.Name,
				VariantName: variantName,
				UnitPrice:   decimalToNumeric(unitPrice),
				Quantity:    item.Quantity,
				Subtotal:    decimalToNumeric(lineSubtotal),
			},
			line: order.Line{
				Name:        m.Name,
				VariantName: item.VariantName,
				UnitPrice:   unitPrice,
				Quantity:    int(item.Quantity),
			},
		})
	}

	// --- Delivery quote for delivery orders with a customer point ---
	var deliveryInfo *delivery.Info
	deliveryLat, deliveryLng, deliveryDistance := pgtype.Float8{}, pgtype.Float8{}, pgtype.Float8{}
	if req.OrderType == enum.OrderTypeDelivery && req.DeliveryLat != nil && req.DeliveryLng != nil {
		customer := &delivery.Point{Lat: *req.DeliveryLat, Lng: *req.DeliveryLng}
		deliveryInfo = s.calculator.Quote(ctx, DeliveryConfig(st), customer)
		deliveryLat = pgtype.Float8{Float64: *req.DeliveryLat, Valid: true}
		deliveryLng = pgtype.Float8{Float64: *req.DeliveryLng, Valid: true}
		if deliveryInfo != nil {
			deliveryDistance = pgtype.Float8{Float64: deliveryInfo.DistanceKm, Valid: true}
		}
	}

	// --- Totals ---
	lines := make([]order.Line, len(prepared))
	for i, p := range prepared {
		lines[i] = p.line
	}
	totals := order.CalculateTotals(lines, gstPercent(st), deliveryInfo, extraCharge(st))

	// --- Insert order + items ---
	deliveryAddress := pgtype.Text{}
	if req.OrderType == enum.OrderTypeDelivery {
		deliveryAddress = pgtype.Text{String: req.DeliveryAddress, Valid: true}
	}
	customerPhone := pgtype.Text{}
	if req.CustomerPhone != "" {
		customerPhone = pgtype.Text{String: req.CustomerPhone, Valid: true}
	}
	notes := pgtype.Text{}
	if req.Notes != "" {
		notes = pgtype.Text{String: req.Notes, Valid: true}
	}

	created, err := store.CreateOrder(ctx, database.CreateOrderParams{
		StoreID:            req.StoreID,
		OrderNumber:        orderNumber,
		OrderType:          req.OrderType,
		CustomerName:       req.CustomerName,
		CustomerPhone:      customerPhone,
		DeliveryAddress:    deliveryAddress,
		DeliveryLat:        deliveryLat,
		DeliveryLng:        deliveryLng,
		DeliveryDistanceKm: deliveryDistance,
		Notes:              notes,
		Subtotal:           decimalToNumeric(totals.Subtotal),
		GstAmount:          decimalToNumeric(totals.GSTAmount),
		ExtraCharge:        decimalToNumeric(totals.ExtraCharge),
		DeliveryCharge:     decimalToNumeric(totals.DeliveryCharge),
		TotalAmount:        decimalToNumeric(totals.GrandTotal),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	var items []database.OrderItem
	for _, p := range prepared {
		p.params.OrderID = created.ID
		item, err := store.CreateOrderItem(ctx, p.params)
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	summary := order.Summary(order.SummaryInput{
		StoreName:          st.Name,
		Currency:           st.CurrencySymbol,
		OrderNumber:        orderNumber,
		OrderType:          req.OrderType,
		CustomerName:       req.CustomerName,
		CustomerPhone:      req.CustomerPhone,
		Address:            req.DeliveryAddress,
		Note:               req.Notes,
		Lines:              lines,
		Totals:             totals,
		DeliveryOutOfRange: deliveryInfo != nil && deliveryInfo.OutOfRange,
	})

	return &CreateOrderResult{
		Order:        created,
		Items:        items,
		Totals:       totals,
		Summary:      summary,
		WhatsAppLink: order.WhatsAppLink(st.WhatsappPhone, summary),
	}, nil
}

// --- Helpers ---

func validateOrderType(s string) error {
	switch s {
	case enum.OrderTypeDelivery, enum.OrderTypePickup, enum.OrderTypeDineIn:
		return nil
	}
	return ErrInvalidOrderType
}

func variantExists(variants []database.Variant, name string) bool {
	for _, v := range variants {
		if v.Name == name {
			return true
		}
	}
	return false
}

// pricingItem maps a menu row and its variants into the resolver's view.
func pricingItem(m database.MenuItem, variants []database.Variant) pricing.Item {
	item := pricing.Item{
		ID:    m.ID,
		Name:  m.Name,
		Price: numericToDecimal(m.Price),
	}
	for _, v := range variants {
		item.Variants = append(item.Variants, pricing.Variant{Name: v.Name, Price: numericToDecimal(v.Price)})
	}
	return item
}

func pricingOffers(rows []database.Offer) []pricing.Offer {
	offers := make([]pricing.Offer, 0, len(rows))
	for _, row := range rows {
		target := pricing.ItemTarget()
		if row.VariantName.Valid {
			target = pricing.VariantTarget(row.VariantName.String)
		}
		offers = append(offers, pricing.Offer{
			ID:         row.ID,
			MenuItemID: row.MenuItemID,
			Target:     target,
			OfferPrice: numericToDecimal(row.OfferPrice),
			StartsAt:   row.StartsAt.Time,
			EndsAt:     row.EndsAt.Time,
		})
	}
	return offers
}

// DeliveryConfig maps a store row to the calculator's config. Null columns
// stay nil so the calculator skips quoting for unconfigured stores.
func DeliveryConfig(st database.Store) delivery.Config {
	cfg := delivery.Config{IsFixedRate: st.IsFixedRate}
	if st.Latitude.Valid && st.Longitude.Valid {
		cfg.StoreLocation = &delivery.Point{Lat: st.Latitude.Float64, Lng: st.Longitude.Float64}
	}
	if st.DeliveryRate.Valid {
		rate := numericToDecimal(st.DeliveryRate)
		cfg.Rate = &rate
	}
	if st.DeliveryRadiusKm.Valid {
		cfg.RadiusKm = st.DeliveryRadiusKm.Float64
	}
	if st.FirstKmFree.Valid {
		cfg.FirstKmFree = st.FirstKmFree.Float64
	}
	return cfg
}

func gstPercent(st database.Store) *decimal.Decimal {
	if !st.GstPercentage.Valid {
		return nil
	}
	pct := numericToDecimal(st.GstPercentage)
	return &pct
}

func extraCharge(st database.Store) *order.ExtraCharge {
	if !st.ExtraChargeAmount.Valid || !st.ExtraChargeType.Valid {
		return nil
	}
	return &order.ExtraCharge{
		Type:   st.ExtraChargeType.String,
		Amount: numericToDecimal(st.ExtraChargeAmount),
	}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
