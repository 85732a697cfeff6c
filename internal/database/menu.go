package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, store_id, category, name, description, price, image_url,
       stock_quantity, show_stock, is_available, is_active, sort_order,
       created_at, updated_at`

func scanMenuItem(row interface{ Scan(dest ...interface{}) error }) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(
		&m.ID, &m.StoreID, &m.Category, &m.Name, &m.Description, &m.Price, &m.ImageUrl,
		&m.StockQuantity, &m.ShowStock, &m.IsAvailable, &m.IsActive, &m.SortOrder,
		&m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

const listMenuItems = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE store_id = $1 AND is_active = true
ORDER BY sort_order, name
`

func (q *Queries) ListMenuItems(ctx context.Context, storeID uuid.UUID) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const getMenuItem = `
SELECT ` + menuItemColumns + `
FROM menu_items
WHERE id = $1 AND store_id = $2 AND is_active = true
`

func (q *Queries) GetMenuItem(ctx context.Context, id, storeID uuid.UUID) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItem, id, storeID))
}

type CreateMenuItemParams struct {
	StoreID       uuid.UUID
	Category      string
	Name          string
	Description   pgtype.Text
	Price         pgtype.Numeric
	ImageUrl      pgtype.Text
	StockQuantity pgtype.Int4
	ShowStock     bool
	SortOrder     int32
}

const createMenuItem = `
INSERT INTO menu_items (store_id, category, name, description, price, image_url,
                        stock_quantity, show_stock, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + menuItemColumns + `
`

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, createMenuItem,
		arg.StoreID, arg.Category, arg.Name, arg.Description, arg.Price, arg.ImageUrl,
		arg.StockQuantity, arg.ShowStock, arg.SortOrder,
	))
}

type UpdateMenuItemParams struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	Category    string
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	ImageUrl    pgtype.Text
	IsAvailable bool
	SortOrder   int32
}

const updateMenuItem = `
UPDATE menu_items
SET category = $3, name = $4, description = $5, price = $6, image_url = $7,
    is_available = $8, sort_order = $9, updated_at = now()
WHERE id = $1 AND store_id = $2 AND is_active = true
RETURNING ` + menuItemColumns + `
`

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, updateMenuItem,
		arg.ID, arg.StoreID, arg.Category, arg.Name, arg.Description, arg.Price, arg.ImageUrl,
		arg.IsAvailable, arg.SortOrder,
	))
}

const deleteMenuItem = `
UPDATE menu_items
SET is_active = false, updated_at = now()
WHERE id = $1 AND store_id = $2
`

func (q *Queries) DeleteMenuItem(ctx context.Context, id, storeID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteMenuItem, id, storeID)
	return err
}

type UpdateStockParams struct {
	ID            uuid.UUID
	StoreID       uuid.UUID
	StockQuantity pgtype.Int4
	ShowStock     bool
}

const updateStock = `
UPDATE menu_items
SET stock_quantity = $3, show_stock = $4, updated_at = now()
WHERE id = $1 AND store_id = $2 AND is_active = true
RETURNING ` + menuItemColumns + `
`

func (q *Queries) UpdateStock(ctx context.Context, arg UpdateStockParams) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, updateStock, arg.ID, arg.StoreID, arg.StockQuantity, arg.ShowStock))
}

const decrementStock = `
UPDATE menu_items
SET stock_quantity = stock_quantity - $3, updated_at = now()
WHERE id = $1 AND store_id = $2 AND stock_quantity IS NOT NULL
`

// DecrementStock reduces tracked stock; items with null stock are untracked
// and unaffected.
func (q *Queries) DecrementStock(ctx context.Context, id, storeID uuid.UUID, by int32) error {
	_, err := q.db.Exec(ctx, decrementStock, id, storeID, by)
	return err
}

const listVariantsByStore = `
SELECT v.id, v.menu_item_id, v.name, v.price, v.sort_order, v.is_active
FROM variants v
JOIN menu_items m ON m.id = v.menu_item_id
WHERE m.store_id = $1 AND v.is_active = true AND m.is_active = true
ORDER BY v.menu_item_id, v.sort_order, v.name
`

func (q *Queries) ListVariantsByStore(ctx context.Context, storeID uuid.UUID) ([]Variant, error) {
	rows, err := q.db.Query(ctx, listVariantsByStore, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []Variant
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.MenuItemID, &v.Name, &v.Price, &v.SortOrder, &v.IsActive); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

const listVariantsByItem = `
SELECT id, menu_item_id, name, price, sort_order, is_active
FROM variants
WHERE menu_item_id = $1 AND is_active = true
ORDER BY sort_order, name
`

func (q *Queries) ListVariantsByItem(ctx context.Context, menuItemID uuid.UUID) ([]Variant, error) {
	rows, err := q.db.Query(ctx, listVariantsByItem, menuItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []Variant
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.MenuItemID, &v.Name, &v.Price, &v.SortOrder, &v.IsActive); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

type CreateVariantParams struct {
	MenuItemID uuid.UUID
	Name       string
	Price      pgtype.Numeric
	SortOrder  int32
}

const createVariant = `
INSERT INTO variants (menu_item_id, name, price, sort_order)
VALUES ($1, $2, $3, $4)
RETURNING id, menu_item_id, name, price, sort_order, is_active
`

func (q *Queries) CreateVariant(ctx context.Context, arg CreateVariantParams) (Variant, error) {
	row := q.db.QueryRow(ctx, createVariant, arg.MenuItemID, arg.Name, arg.Price, arg.SortOrder)
	var v Variant
	err := row.Scan(&v.ID, &v.MenuItemID, &v.Name, &v.Price, &v.SortOrder, &v.IsActive)
	return v, err
}

type UpdateVariantParams struct {
	ID        uuid.UUID
	Name      string
	Price     pgtype.Numeric
	SortOrder int32
}

const updateVariant = `
UPDATE variants
SET name = $2, price = $3, sort_order = $4
WHERE id = $1 AND is_active = true
RETURNING id, menu_item_id, name, price, sort_order, is_active
`

func (q *Queries) UpdateVariant(ctx context.Context, arg UpdateVariantParams) (Variant, error) {
	row := q.db.QueryRow(ctx, updateVariant, arg.ID, arg.Name, arg.Price, arg.SortOrder)
	var v Variant
	err := row.Scan(&v.ID, &v.MenuItemID, &v.Name, &v.Price, &v.SortOrder, &v.IsActive)
	return v, err
}

const deleteVariant = `
UPDATE variants
SET is_active = false
WHERE id = $1
`

func (q *Queries) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteVariant, id)
	return err
}
