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

	"github.com/dineup/api/internal/database"
	"github.com/dineup/api/internal/delivery"
	"github.com/dineup/api/internal/pricing"
	"github.com/dineup/api/internal/service"
)

// StorefrontStore defines the database methods needed by the public
// storefront endpoints. Satisfied by *database.Queries.
type StorefrontStore interface {
	GetStore(ctx context.Context, id uuid.UUID) (database.Store, error)
	ListMenuItems(ctx context.Context, storeID uuid.UUID) ([]database.MenuItem, error)
	ListVariantsByStore(ctx context.Context, storeID uuid.UUID) ([]database.Variant, error)
	ListCurrentOffers(ctx context.Context, storeID uuid.UUID) ([]database.Offer, error)
}

// StorefrontHandler serves the unauthenticated customer-facing endpoints.
type StorefrontHandler struct {
	store      StorefrontStore
	calculator *delivery.Calculator
	quoteCache *delivery.Cache
}

func NewStorefrontHandler(store StorefrontStore, calculator *delivery.Calculator, quoteCache *delivery.Cache) *StorefrontHandler {
	return &StorefrontHandler{store: store, calculator: calculator, quoteCache: quoteCache}
}

// RegisterRoutes mounts the public storefront endpoints.
// Expected to be mounted inside /stores/{sid}.
func (h *StorefrontHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Menu)
	r.Get("/theme", h.Theme)
	r.Post("/delivery-quote", h.DeliveryQuote)
}

// --- Response types ---

type storeResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	CurrencySymbol string    `json:"currency_symbol"`
	WhatsappPhone  string    `json:"whatsapp_phone"`
}

type variantResponse struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type menuItemResponse struct {
	ID                  uuid.UUID         `json:"id"`
	Category            string            `json:"category"`
	Name                string            `json:"name"`
	Description         *string           `json:"description"`
	ImageURL            *string           `json:"image_url"`
	DisplayPrice        string            `json:"display_price"`
	StrikethroughPrice  *string           `json:"strikethrough_price"`
	DiscountPercent     int               `json:"discount_percent"`
	HasOffer            bool              `json:"has_offer"`
	IsUpcomingOffer     bool              `json:"is_upcoming_offer"`
	IsMultiVariantOffer bool              `json:"is_multi_variant_offer"`
	Variants            []variantResponse `json:"variants"`
	InStock             bool              `json:"in_stock"`
	StockQuantity       *int32            `json:"stock_quantity,omitempty"`
	SortOrder           int32             `json:"sort_order"`
}

type menuResponse struct {
	Store storeResponse      `json:"store"`
	Items []menuItemResponse `json:"items"`
}

// --- Handlers ---

// Menu returns the store's menu with offer-resolved display prices.
func (h *StorefrontHandler) Menu(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

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

	items, err := h.store.ListMenuItems(r.Context(), storeID)
	if err != nil {
		logrus.WithError(err).Error("list menu items")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	variants, err := h.store.ListVariantsByStore(r.Context(), storeID)
	if err != nil {
		logrus.WithError(err).Error("list variants")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	variantsByItem := make(map[uuid.UUID][]database.Variant)
	for _, v := range variants {
		variantsByItem[v.MenuItemID] = append(variantsByItem[v.MenuItemID], v)
	}

	offerRows, err := h.store.ListCurrentOffers(r.Context(), storeID)
	if err != nil {
		logrus.WithError(err).Error("list offers")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	offers := pricingOffers(offerRows)

	now := time.Now()
	resp := menuResponse{
		Store: storeResponse{
			ID:             st.ID,
			Name:           st.Name,
			Slug:           st.Slug,
			CurrencySymbol: st.CurrencySymbol,
			WhatsappPhone:  st.WhatsappPhone,
		},
		Items: make([]menuItemResponse, 0, len(items)),
	}
	for _, m := range items {
		resp.Items = append(resp.Items, toMenuItemResponse(m, variantsByItem[m.ID], offers, now))
	}

	writeJSON(w, http.StatusOK, resp)
}

func toMenuItemResponse(m database.MenuItem, variants []database.Variant, offers []pricing.Offer, now time.Time) menuItemResponse {
	quote := pricing.Resolve(pricingItem(m, variants), offers, now)

	resp := menuItemResponse{
		ID:                  m.ID,
		Category:            m.Category,
		Name:                m.Name,
		Description:         textOrNil(m.Description),
		ImageURL:            textOrNil(m.ImageUrl),
		DisplayPrice:        quote.DisplayPrice.StringFixed(2),
		DiscountPercent:     quote.DiscountPercent,
		HasOffer:            quote.HasOffer,
		IsUpcomingOffer:     quote.IsUpcoming,
		IsMultiVariantOffer: quote.IsMultiVariantOffer,
		Variants:            make([]variantResponse, 0, len(variants)),
		SortOrder:           m.SortOrder,
	}
	if quote.HasOffer {
		s := quote.StrikethroughPrice.StringFixed(2)
		resp.StrikethroughPrice = &s
	}
	for _, v := range variants {
		resp.Variants = append(resp.Variants, variantResponse{Name: v.Name, Price: numericToString(v.Price)})
	}

	// Null stock means untracked; tracked stock at zero hides the item from
	// ordering but keeps it on the menu.
	resp.InStock = m.IsAvailable && (!m.StockQuantity.Valid || m.StockQuantity.Int32 > 0)
	if m.StockQuantity.Valid && m.ShowStock {
		qty := m.StockQuantity.Int32
		resp.StockQuantity = &qty
	}
	return resp
}

// Theme returns the store's theme document as stored.
func (h *StorefrontHandler) Theme(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

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

	theme := json.RawMessage(st.Theme)
	if len(theme) == 0 {
		theme = json.RawMessage(`{}`)
	}
	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"theme": theme})
}

// --- Delivery quote ---

type deliveryQuoteRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type deliveryQuoteResponse struct {
	Available  bool    `json:"available"`
	DistanceKm float64 `json:"distance_km,omitempty"`
	Cost       string  `json:"cost,omitempty"`
	OutOfRange bool    `json:"out_of_range,omitempty"`
}

// DeliveryQuote quotes the delivery charge for a customer location. Stores
// without delivery configuration simply report unavailable.
func (h *StorefrontHandler) DeliveryQuote(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	var req deliveryQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

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

	customer := delivery.Point{Lat: req.Lat, Lng: req.Lng}
	info, ok := h.quoteCache.Get(storeID, customer)
	if !ok {
		info = h.calculator.Quote(r.Context(), service.DeliveryConfig(st), &customer)
		h.quoteCache.Put(storeID, customer, info)
	}

	if info == nil {
		writeJSON(w, http.StatusOK, deliveryQuoteResponse{Available: false})
		return
	}
	writeJSON(w, http.StatusOK, deliveryQuoteResponse{
		Available:  true,
		DistanceKm: info.DistanceKm,
		Cost:       info.Cost.StringFixed(2),
		OutOfRange: info.OutOfRange,
	})
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
