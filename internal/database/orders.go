package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, store_id, order_number, order_type, status,
       customer_name, customer_phone, delivery_address, delivery_lat, delivery_lng,
       delivery_distance_km, notes, subtotal, gst_amount, extra_charge,
       delivery_charge, total_amount, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...interface{}) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.StoreID, &o.OrderNumber, &o.OrderType, &o.Status,
		&o.CustomerName, &o.CustomerPhone, &o.DeliveryAddress, &o.DeliveryLat, &o.DeliveryLng,
		&o.DeliveryDistanceKm, &o.Notes, &o.Subtotal, &o.GstAmount, &o.ExtraCharge,
		&o.DeliveryCharge, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

const getNextOrderNumber = `
SELECT COALESCE(MAX(CAST(SUBSTRING(order_number FROM 5) AS INTEGER)), 0) + 1
FROM orders
WHERE store_id = $1
`

// GetNextOrderNumber relies on the unique (store_id, order_number) index to
// catch concurrent readers; callers retry on conflict.
func (q *Queries) GetNextOrderNumber(ctx context.Context, storeID uuid.UUID) (int32, error) {
	row := q.db.QueryRow(ctx, getNextOrderNumber, storeID)
	var n int32
	err := row.Scan(&n)
	return n, err
}

type CreateOrderParams struct {
	StoreID            uuid.UUID
	OrderNumber        string
	OrderType          string
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
}

const createOrder = `
INSERT INTO orders (store_id, order_number, order_type, customer_name, customer_phone,
                    delivery_address, delivery_lat, delivery_lng, delivery_distance_km,
                    notes, subtotal, gst_amount, extra_charge, delivery_charge, total_amount)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING ` + orderColumns + `
`

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.StoreID, arg.OrderNumber, arg.OrderType, arg.CustomerName, arg.CustomerPhone,
		arg.DeliveryAddress, arg.DeliveryLat, arg.DeliveryLng, arg.DeliveryDistanceKm,
		arg.Notes, arg.Subtotal, arg.GstAmount, arg.ExtraCharge, arg.DeliveryCharge, arg.TotalAmount,
	))
}

type CreateOrderItemParams struct {
	OrderID     uuid.UUID
	MenuItemID  uuid.UUID
	LineKey     string
	Name        string
	VariantName pgtype.Text
	UnitPrice   pgtype.Numeric
	Quantity    int32
	Subtotal    pgtype.Numeric
}

const createOrderItem = `
INSERT INTO order_items (order_id, menu_item_id, line_key, name, variant_name,
                         unit_price, quantity, subtotal)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, order_id, menu_item_id, line_key, name, variant_name, unit_price, quantity, subtotal
`

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.MenuItemID, arg.LineKey, arg.Name, arg.VariantName,
		arg.UnitPrice, arg.Quantity, arg.Subtotal)
	var i OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.MenuItemID, &i.LineKey, &i.Name, &i.VariantName,
		&i.UnitPrice, &i.Quantity, &i.Subtotal)
	return i, err
}

const listOrdersByStore = `
SELECT ` + orderColumns + `
FROM orders
WHERE store_id = $1
ORDER BY created_at DESC
LIMIT $2
`

func (q *Queries) ListOrdersByStore(ctx context.Context, storeID uuid.UUID, limit int32) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByStore, storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND store_id = $2
`

func (q *Queries) GetOrder(ctx context.Context, id, storeID uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id, storeID))
}

const listOrderItems = `
SELECT id, order_id, menu_item_id, line_key, name, variant_name, unit_price, quantity, subtotal
FROM order_items
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.MenuItemID, &i.LineKey, &i.Name, &i.VariantName,
			&i.UnitPrice, &i.Quantity, &i.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateOrderStatus = `
UPDATE orders
SET status = $3, updated_at = now()
WHERE id = $1 AND store_id = $2
RETURNING ` + orderColumns + `
`

func (q *Queries) UpdateOrderStatus(ctx context.Context, id, storeID uuid.UUID, status string) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, id, storeID, status))
}
