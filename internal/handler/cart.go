package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/dineup/api/internal/cart"
	"github.com/dineup/api/internal/database"
	"github.com/dineup/api/internal/order"
	"github.com/dineup/api/internal/pricing"
)

const sessionHeader = "X-Session-ID"

// CartStore defines the database methods needed for cart pricing.
type CartStore interface {
	GetStore(ctx context.Context, id uuid.UUID) (database.Store, error)
	GetMenuItem(ctx context.Context, id, storeID uuid.UUID) (database.MenuItem, error)
	ListVariantsByItem(ctx context.Context, menuItemID uuid.UUID) ([]database.Variant, error)
	ListCurrentOffers(ctx context.Context, storeID uuid.UUID) ([]database.Offer, error)
}

// CartHandler manages in-memory guest carts with a running totals preview.
// Carts are keyed by store and the X-Session-ID header the storefront
// generates per browser.
type CartHandler struct {
	store CartStore
	carts *cart.Manager
}

func NewCartHandler(store CartStore, carts *cart.Manager) *CartHandler {
	return &CartHandler{store: store, carts: carts}
}

// RegisterRoutes registers cart endpoints.
// Expected to be mounted inside /stores/{sid}.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.Get)
	r.Post("/cart/items", h.AddItem)
	r.Post("/cart/items/decrease", h.DecreaseItem)
	r.Post("/cart/items/remove", h.RemoveItem)
	r.Delete("/cart", h.Clear)
}

type cartItemRequest struct {
	MenuItemID  string `json:"menu_item_id"`
	VariantName string `json:"variant_name"`
}

type cartResponse struct {
	Lines  []cartLineResponse `json:"lines"`
	Totals order.Breakdown    `json:"totals"`
}

type cartLineResponse struct {
	ID          cart.LineID `json:"id"`
	MenuItemID  uuid.UUID   `json:"menu_item_id"`
	Name        string      `json:"name"`
	VariantName string      `json:"variant_name,omitempty"`
	UnitPrice   string      `json:"unit_price"`
	Quantity    int         `json:"quantity"`
	Total       string      `json:"total"`
}

// sessionCart resolves the request's cart, or writes a 400 and returns nil
// when the session header is missing.
func (h *CartHandler) sessionCart(w http.ResponseWriter, r *http.Request) (*cart.Cart, uuid.UUID, bool) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return nil, uuid.Nil, false
	}
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing " + sessionHeader + " header"})
		return nil, uuid.Nil, false
	}
	return h.carts.Cart(storeID, sessionID), storeID, true
}

// respondCart renders the cart with a totals preview. Delivery is not part of
// the preview; the storefront fetches it from the delivery-quote endpoint.
func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, c *cart.Cart, storeID uuid.UUID) {
	st, err := h.store.GetStore(r.Context(), storeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "store not found"})
			return
		}
		logrus.WithError(err).Error("get store")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	cartLines := c.Lines()
	lines := make([]order.Line, len(cartLines))
	resp := cartResponse{Lines: make([]cartLineResponse, len(cartLines))}
	for i, l := range cartLines {
		lines[i] = order.Line{
			Name:        l.Name,
			VariantName: l.VariantName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
		}
		resp.Lines[i] = cartLineResponse{
			ID:          l.ID,
			MenuItemID:  l.MenuItemID,
			Name:        l.Name,
			VariantName: l.VariantName,
			UnitPrice:   l.UnitPrice.StringFixed(2),
			Quantity:    l.Quantity,
			Total:       lines[i].Total().StringFixed(2),
		}
	}

	resp.Totals = order.CalculateTotals(lines, storeGSTPercent(st), nil, storeExtraCharge(st))
	writeJSON(w, http.StatusOK, resp)
}

// Get returns the session's cart with totals.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, storeID, ok := h.sessionCart(w, r)
	if !ok {
		return
	}
	h.respondCart(w, r, c, storeID)
}

// AddItem adds one unit of a menu item (optionally a variant) to the cart.
// The charged price is resolved against current offers at add time.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	c, storeID, ok := h.sessionCart(w, r)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	menuItemID, err := uuid.Parse(req.MenuItemID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu_item_id"})
		return
	}

	m, err := h.store.GetMenuItem(r.Context(), menuItemID, storeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		logrus.WithError(err).Error("get menu item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if !m.IsAvailable {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "menu item is unavailable"})
		return
	}

	variants, err := h.store.ListVariantsByItem(r.Context(), menuItemID)
	if err != nil {
		logrus.WithError(err).Error("list variants")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if req.VariantName != "" && !variantNameExists(variants, req.VariantName) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "variant not found"})
		return
	}

	offers, err := h.store.ListCurrentOffers(r.Context(), storeID)
	if err != nil {
		logrus.WithError(err).Error("list offers")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	unitPrice := pricing.ChargeablePrice(
		pricingItem(m, variants), pricingOffers(offers), req.VariantName, time.Now())
	c.AddItem(menuItemID, m.Name, req.VariantName, unitPrice)

	h.respondCart(w, r, c, storeID)
}

// DecreaseItem decrements a line; the line disappears at zero.
func (h *CartHandler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	c, storeID, ok := h.sessionCart(w, r)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	menuItemID, err := uuid.Parse(req.MenuItemID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu_item_id"})
		return
	}

	c.DecreaseQuantity(cart.NewLineID(menuItemID, req.VariantName))
	h.respondCart(w, r, c, storeID)
}

// RemoveItem drops a line regardless of quantity.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, storeID, ok := h.sessionCart(w, r)
	if !ok {
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	menuItemID, err := uuid.Parse(req.MenuItemID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu_item_id"})
		return
	}

	c.RemoveItem(cart.NewLineID(menuItemID, req.VariantName))
	h.respondCart(w, r, c, storeID)
}

// Clear empties the session's cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.sessionCart(w, r)
	if !ok {
		return
	}
	c.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func variantNameExists(variants []database.Variant, name string) bool {
	for _, v := range variants {
		if v.Name == name {
			return true
		}
	}
	return false
}
