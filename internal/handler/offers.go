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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sirupsen/logrus"

	"github.com/dineup/api/internal/database"
)

// OfferStore defines the database methods needed by offer admin handlers.
type OfferStore interface {
	ListOffersByStore(ctx context.Context, storeID uuid.UUID) ([]database.Offer, error)
	CreateOffer(ctx context.Context, arg database.CreateOfferParams) (database.Offer, error)
	UpdateOffer(ctx context.Context, arg database.UpdateOfferParams) (database.Offer, error)
	DeleteOffer(ctx context.Context, id, storeID uuid.UUID) error
}

// OfferHandler handles time-windowed offer management.
type OfferHandler struct {
	store OfferStore
}

func NewOfferHandler(store OfferStore) *OfferHandler {
	return &OfferHandler{store: store}
}

func (h *OfferHandler) RegisterRoutes(r chi.Router) {
	r.Get("/offers", h.List)
	r.Post("/offers", h.Create)
	r.Put("/offers/{id}", h.Update)
	r.Delete("/offers/{id}", h.Delete)
}

type offerRequest struct {
	MenuItemID  string  `json:"menu_item_id"`
	VariantName *string `json:"variant_name"` // null targets the whole item
	OfferPrice  string  `json:"offer_price"`
	StartsAt    string  `json:"starts_at"` // RFC3339
	EndsAt      string  `json:"ends_at"`
}

type offerResponse struct {
	ID          uuid.UUID `json:"id"`
	MenuItemID  uuid.UUID `json:"menu_item_id"`
	VariantName *string   `json:"variant_name"`
	OfferPrice  string    `json:"offer_price"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

func toOfferResponse(o database.Offer) offerResponse {
	return offerResponse{
		ID:          o.ID,
		MenuItemID:  o.MenuItemID,
		VariantName: textOrNil(o.VariantName),
		OfferPrice:  numericToString(o.OfferPrice),
		StartsAt:    o.StartsAt.Time,
		EndsAt:      o.EndsAt.Time,
	}
}

// parseOfferWindow validates the offer price and time window shared by
// Create and Update.
func parseOfferWindow(req offerRequest) (pgtype.Numeric, pgtype.Timestamptz, pgtype.Timestamptz, string) {
	var zero pgtype.Numeric

	if req.OfferPrice == "" {
		return zero, pgtype.Timestamptz{}, pgtype.Timestamptz{}, "offer_price is required"
	}
	price, err := parsePrice(req.OfferPrice)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			return zero, pgtype.Timestamptz{}, pgtype.Timestamptz{}, "offer_price must be >= 0"
		}
		return zero, pgtype.Timestamptz{}, pgtype.Timestamptz{}, "invalid offer_price"
	}

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return zero, pgtype.Timestamptz{}, pgtype.Timestamptz{}, "starts_at must be RFC3339"
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return zero, pgtype.Timestamptz{}, pgtype.Timestamptz{}, "ends_at must be RFC3339"
	}
	if !endsAt.After(startsAt) {
		return zero, pgtype.Timestamptz{}, pgtype.Timestamptz{}, "ends_at must be after starts_at"
	}

	return price,
		pgtype.Timestamptz{Time: startsAt, Valid: true},
		pgtype.Timestamptz{Time: endsAt, Valid: true},
		""
}

func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	offers, err := h.store.ListOffersByStore(r.Context(), storeID)
	if err != nil {
		logrus.WithError(err).Error("list offers")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]offerResponse, len(offers))
	for i, o := range offers {
		resp[i] = toOfferResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	menuItemID, err := uuid.Parse(req.MenuItemID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu_item_id"})
		return
	}

	price, startsAt, endsAt, msg := parseOfferWindow(req)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	variantName := pgtype.Text{}
	if req.VariantName != nil && *req.VariantName != "" {
		variantName = pgtype.Text{String: *req.VariantName, Valid: true}
	}

	offer, err := h.store.CreateOffer(r.Context(), database.CreateOfferParams{
		StoreID:     storeID,
		MenuItemID:  menuItemID,
		VariantName: variantName,
		OfferPrice:  price,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu_item_id"})
			return
		}
		logrus.WithError(err).Error("create offer")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toOfferResponse(offer))
}

func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}
	offerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offer ID"})
		return
	}

	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, startsAt, endsAt, msg := parseOfferWindow(req)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	variantName := pgtype.Text{}
	if req.VariantName != nil && *req.VariantName != "" {
		variantName = pgtype.Text{String: *req.VariantName, Valid: true}
	}

	offer, err := h.store.UpdateOffer(r.Context(), database.UpdateOfferParams{
		ID:          offerID,
		StoreID:     storeID,
		VariantName: variantName,
		OfferPrice:  price,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "offer not found"})
			return
		}
		logrus.WithError(err).Error("update offer")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOfferResponse(offer))
}

func (h *OfferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}
	offerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offer ID"})
		return
	}

	if err := h.store.DeleteOffer(r.Context(), offerID, storeID); err != nil {
		logrus.WithError(err).Error("delete offer")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
