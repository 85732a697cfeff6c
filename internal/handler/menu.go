package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sirupsen/logrus"

	"github.com/dineup/api/internal/database"
)

// MenuAdminStore defines the database methods needed by menu admin handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuAdminStore interface {
	ListMenuItems(ctx context.Context, storeID uuid.UUID) ([]database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id, storeID uuid.UUID) error
	UpdateStock(ctx context.Context, arg database.UpdateStockParams) (database.MenuItem, error)
	ListVariantsByItem(ctx context.Context, menuItemID uuid.UUID) ([]database.Variant, error)
	CreateVariant(ctx context.Context, arg database.CreateVariantParams) (database.Variant, error)
	UpdateVariant(ctx context.Context, arg database.UpdateVariantParams) (database.Variant, error)
	DeleteVariant(ctx context.Context, id uuid.UUID) error
}

// MenuAdminHandler handles menu, variant and stock management.
type MenuAdminHandler struct {
	store MenuAdminStore
}

func NewMenuAdminHandler(store MenuAdminStore) *MenuAdminHandler {
	return &MenuAdminHandler{store: store}
}

// RegisterRoutes registers menu admin endpoints.
// Expected to be mounted inside the store-scoped admin subrouter.
func (h *MenuAdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.List)
	r.Post("/menu", h.Create)
	r.Put("/menu/{id}", h.Update)
	r.Delete("/menu/{id}", h.Delete)
	r.Put("/menu/{id}/stock", h.UpdateStock)
	r.Post("/menu/{id}/variants", h.CreateVariant)
	r.Put("/variants/{id}", h.UpdateVariant)
	r.Delete("/variants/{id}", h.DeleteVariant)
}

// --- Request / Response types ---

type menuItemRequest struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url"`
	IsAvailable *bool  `json:"is_available"`
	SortOrder   int32  `json:"sort_order"`
}

type stockRequest struct {
	StockQuantity *int32 `json:"stock_quantity"` // null disables tracking
	ShowStock     bool   `json:"show_stock"`
}

type variantRequest struct {
	Name      string `json:"name"`
	Price     string `json:"price"`
	SortOrder int32  `json:"sort_order"`
}

type adminMenuItemResponse struct {
	ID            uuid.UUID `json:"id"`
	Category      string    `json:"category"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	Price         string    `json:"price"`
	ImageURL      *string   `json:"image_url"`
	StockQuantity *int32    `json:"stock_quantity"`
	ShowStock     bool      `json:"show_stock"`
	IsAvailable   bool      `json:"is_available"`
	SortOrder     int32     `json:"sort_order"`
}

type adminVariantResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	SortOrder  int32     `json:"sort_order"`
}

func toAdminMenuItemResponse(m database.MenuItem) adminMenuItemResponse {
	resp := adminMenuItemResponse{
		ID:          m.ID,
		Category:    m.Category,
		Name:        m.Name,
		Description: textOrNil(m.Description),
		Price:       numericToString(m.Price),
		ImageURL:    textOrNil(m.ImageUrl),
		ShowStock:   m.ShowStock,
		IsAvailable: m.IsAvailable,
		SortOrder:   m.SortOrder,
	}
	if m.StockQuantity.Valid {
		qty := m.StockQuantity.Int32
		resp.StockQuantity = &qty
	}
	return resp
}

func toAdminVariantResponse(v database.Variant) adminVariantResponse {
	return adminVariantResponse{
		ID:         v.ID,
		MenuItemID: v.MenuItemID,
		Name:       v.Name,
		Price:      numericToString(v.Price),
		SortOrder:  v.SortOrder,
	}
}

// --- Handlers ---

// List returns all active menu items for the store, admin view.
func (h *MenuAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	items, err := h.store.ListMenuItems(r.Context(), storeID)
	if err != nil {
		logrus.WithError(err).Error("list menu items")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]adminMenuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toAdminMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a menu item to the store.
func (h *MenuAdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Category == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category is required"})
		return
	}
	if req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price is required"})
		return
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
		} else {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		}
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		StoreID:     storeID,
		Category:    req.Category,
		Name:        req.Name,
		Description: textParam(req.Description),
		Price:       price,
		ImageUrl:    textParam(req.ImageURL),
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		logrus.WithError(err).Error("create menu item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toAdminMenuItemResponse(item))
}

// Update modifies a menu item.
func (h *MenuAdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" || req.Category == "" || req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category, name and price are required"})
		return
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
		} else {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		}
		return
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:          itemID,
		StoreID:     storeID,
		Category:    req.Category,
		Name:        req.Name,
		Description: textParam(req.Description),
		Price:       price,
		ImageUrl:    textParam(req.ImageURL),
		IsAvailable: isAvailable,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		logrus.WithError(err).Error("update menu item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toAdminMenuItemResponse(item))
}

// Delete soft-deletes a menu item.
func (h *MenuAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	if err := h.store.DeleteMenuItem(r.Context(), itemID, storeID); err != nil {
		logrus.WithError(err).Error("delete menu item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateStock sets or clears stock tracking on a menu item.
func (h *MenuAdminHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	stock := pgtype.Int4{}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "stock_quantity must be >= 0"})
			return
		}
		stock = pgtype.Int4{Int32: *req.StockQuantity, Valid: true}
	}

	item, err := h.store.UpdateStock(r.Context(), database.UpdateStockParams{
		ID:            itemID,
		StoreID:       storeID,
		StockQuantity: stock,
		ShowStock:     req.ShowStock,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		logrus.WithError(err).Error("update stock")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toAdminMenuItemResponse(item))
}

// CreateVariant adds a variant to a menu item.
func (h *MenuAdminHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req variantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price is required"})
		return
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
		} else {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		}
		return
	}

	variant, err := h.store.CreateVariant(r.Context(), database.CreateVariantParams{
		MenuItemID: itemID,
		Name:       req.Name,
		Price:      price,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "variant name already exists"})
			return
		}
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
			return
		}
		logrus.WithError(err).Error("create variant")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toAdminVariantResponse(variant))
}

// UpdateVariant modifies a variant.
func (h *MenuAdminHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	variantID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid variant ID"})
		return
	}

	var req variantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" || req.Price == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and price are required"})
		return
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}

	variant, err := h.store.UpdateVariant(r.Context(), database.UpdateVariantParams{
		ID:        variantID,
		Name:      req.Name,
		Price:     price,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "variant not found"})
			return
		}
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "variant name already exists"})
			return
		}
		logrus.WithError(err).Error("update variant")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toAdminVariantResponse(variant))
}

// DeleteVariant soft-deletes a variant.
func (h *MenuAdminHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	variantID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid variant ID"})
		return
	}

	if err := h.store.DeleteVariant(r.Context(), variantID); err != nil {
		logrus.WithError(err).Error("delete variant")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
