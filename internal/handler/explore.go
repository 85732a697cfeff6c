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
	"github.com/dineup/api/internal/enum"
)

// ExploreStore defines the database methods needed by explore feed handlers.
type ExploreStore interface {
	ListExploreFeed(ctx context.Context) ([]database.ExploreFeedRow, error)
	CreateExploreItem(ctx context.Context, arg database.CreateExploreItemParams) (database.ExploreItem, error)
	UpdateExploreItem(ctx context.Context, arg database.UpdateExploreItemParams) (database.ExploreItem, error)
	DeleteExploreItem(ctx context.Context, id uuid.UUID) error
}

// ExploreHandler serves the cross-store discovery feed. Reads are public;
// curation is superadmin-only.
type ExploreHandler struct {
	store ExploreStore
}

func NewExploreHandler(store ExploreStore) *ExploreHandler {
	return &ExploreHandler{store: store}
}

// RegisterPublicRoutes mounts the public feed endpoint.
func (h *ExploreHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/explore", h.Feed)
}

// RegisterAdminRoutes mounts the superadmin curation endpoints.
func (h *ExploreHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/explore", h.Create)
	r.Put("/explore/{id}", h.Update)
	r.Delete("/explore/{id}", h.Delete)
}

type exploreItemRequest struct {
	StoreID   string  `json:"store_id"`
	Kind      string  `json:"kind"`
	Title     string  `json:"title"`
	MediaURL  string  `json:"media_url"`
	OfferID   *string `json:"offer_id"`
	SortOrder int32   `json:"sort_order"`
}

type exploreItemResponse struct {
	ID        uuid.UUID  `json:"id"`
	StoreID   uuid.UUID  `json:"store_id"`
	StoreName string     `json:"store_name,omitempty"`
	StoreSlug string     `json:"store_slug,omitempty"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	MediaURL  string     `json:"media_url"`
	OfferID   *uuid.UUID `json:"offer_id"`
	SortOrder int32      `json:"sort_order"`
}

func toExploreItemResponse(e database.ExploreItem) exploreItemResponse {
	resp := exploreItemResponse{
		ID:        e.ID,
		StoreID:   e.StoreID,
		Kind:      e.Kind,
		Title:     e.Title,
		MediaURL:  e.MediaUrl,
		SortOrder: e.SortOrder,
	}
	if e.OfferID.Valid {
		id := uuid.UUID(e.OfferID.Bytes)
		resp.OfferID = &id
	}
	return resp
}

// Feed returns the curated feed across all active stores.
func (h *ExploreHandler) Feed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.store.ListExploreFeed(r.Context())
	if err != nil {
		logrus.WithError(err).Error("list explore feed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]exploreItemResponse, len(feed))
	for i, row := range feed {
		item := toExploreItemResponse(row.ExploreItem)
		item.StoreName = row.StoreName
		item.StoreSlug = row.StoreSlug
		resp[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ExploreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req exploreItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store_id"})
		return
	}
	if req.Kind != enum.ExploreKindReel && req.Kind != enum.ExploreKindOffer {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid kind"})
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	if req.MediaURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "media_url is required"})
		return
	}

	offerID := pgtype.UUID{}
	if req.OfferID != nil {
		id, err := uuid.Parse(*req.OfferID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offer_id"})
			return
		}
		offerID = pgtype.UUID{Bytes: id, Valid: true}
	}

	item, err := h.store.CreateExploreItem(r.Context(), database.CreateExploreItemParams{
		StoreID:   storeID,
		Kind:      req.Kind,
		Title:     req.Title,
		MediaUrl:  req.MediaURL,
		OfferID:   offerID,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store_id or offer_id"})
			return
		}
		logrus.WithError(err).Error("create explore item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toExploreItemResponse(item))
}

func (h *ExploreHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid explore item ID"})
		return
	}

	var req exploreItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Title == "" || req.MediaURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and media_url are required"})
		return
	}

	item, err := h.store.UpdateExploreItem(r.Context(), database.UpdateExploreItemParams{
		ID:        itemID,
		Title:     req.Title,
		MediaUrl:  req.MediaURL,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "explore item not found"})
			return
		}
		logrus.WithError(err).Error("update explore item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toExploreItemResponse(item))
}

func (h *ExploreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid explore item ID"})
		return
	}

	if err := h.store.DeleteExploreItem(r.Context(), itemID); err != nil {
		logrus.WithError(err).Error("delete explore item")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
