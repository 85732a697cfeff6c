package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/dineup/api/internal/database"
)

// StoreAdminStore defines the database methods needed by store settings
// handlers.
type StoreAdminStore interface {
	UpdateStoreTheme(ctx context.Context, id uuid.UUID, theme []byte) ([]byte, error)
	UpdateStoreDelivery(ctx context.Context, arg database.UpdateStoreDeliveryParams) (database.Store, error)
}

// StoreAdminHandler handles store-level settings: theme and delivery
// configuration.
type StoreAdminHandler struct {
	store StoreAdminStore
}

func NewStoreAdminHandler(store StoreAdminStore) *StoreAdminHandler {
	return &StoreAdminHandler{store: store}
}

func (h *StoreAdminHandler) RegisterRoutes(r chi.Router) {
	r.Put("/theme", h.UpdateTheme)
	r.Put("/delivery-config", h.UpdateDeliveryConfig)
}

type themeRequest struct {
	Theme json.RawMessage `json:"theme"`
}

// UpdateTheme replaces the store's theme document. The document is opaque to
// the API; only JSON validity is enforced.
func (h *StoreAdminHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Theme) == 0 || !json.Valid(req.Theme) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "theme must be a JSON document"})
		return
	}

	theme, err := h.store.UpdateStoreTheme(r.Context(), storeID, req.Theme)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "store not found"})
			return
		}
		logrus.WithError(err).Error("update store theme")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"theme": theme})
}

type deliveryConfigRequest struct {
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	DeliveryRate     *string  `json:"delivery_rate"`
	DeliveryRadiusKm *float64 `json:"delivery_radius_km"`
	FirstKmFree      *float64 `json:"first_km_free"`
	IsFixedRate      bool     `json:"is_fixed_rate"`
}

type deliveryConfigResponse struct {
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	DeliveryRate     *string  `json:"delivery_rate"`
	DeliveryRadiusKm *float64 `json:"delivery_radius_km"`
	FirstKmFree      *float64 `json:"first_km_free"`
	IsFixedRate      bool     `json:"is_fixed_rate"`
}

// UpdateDeliveryConfig sets the store's delivery parameters. Null fields
// disable the corresponding part of the quote; a store with no coordinates
// or rate never quotes delivery.
func (h *StoreAdminHandler) UpdateDeliveryConfig(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	var req deliveryConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if (req.Latitude == nil) != (req.Longitude == nil) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "latitude and longitude must be set together"})
		return
	}
	if req.DeliveryRate != nil {
		rate, err := decimal.NewFromString(*req.DeliveryRate)
		if err != nil || rate.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delivery_rate must be a number >= 0"})
			return
		}
	}
	if req.DeliveryRadiusKm != nil && *req.DeliveryRadiusKm < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delivery_radius_km must be >= 0"})
		return
	}
	if req.FirstKmFree != nil && *req.FirstKmFree < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "first_km_free must be >= 0"})
		return
	}

	st, err := h.store.UpdateStoreDelivery(r.Context(), database.UpdateStoreDeliveryParams{
		ID:               storeID,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		DeliveryRate:     req.DeliveryRate,
		DeliveryRadiusKm: req.DeliveryRadiusKm,
		FirstKmFree:      req.FirstKmFree,
		IsFixedRate:      req.IsFixedRate,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "store not found"})
			return
		}
		logrus.WithError(err).Error("update store delivery config")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := deliveryConfigResponse{IsFixedRate: st.IsFixedRate}
	if st.Latitude.Valid {
		v := st.Latitude.Float64
		resp.Latitude = &v
	}
	if st.Longitude.Valid {
		v := st.Longitude.Float64
		resp.Longitude = &v
	}
	if st.DeliveryRate.Valid {
		s := numericToString(st.DeliveryRate)
		resp.DeliveryRate = &s
	}
	if st.DeliveryRadiusKm.Valid {
		v := st.DeliveryRadiusKm.Float64
		resp.DeliveryRadiusKm = &v
	}
	if st.FirstKmFree.Valid {
		v := st.FirstKmFree.Float64
		resp.FirstKmFree = &v
	}
	writeJSON(w, http.StatusOK, resp)
}
