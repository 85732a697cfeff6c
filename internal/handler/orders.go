package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/dineup/api/internal/database"
	"github.com/dineup/api/internal/enum"
	"github.com/dineup/api/internal/service"
	"github.com/dineup/api/internal/ws"
)

const defaultOrderListLimit = 50

// OrderCreator places orders. Satisfied by *service.OrderService.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderAdminStore defines the database methods needed by order admin handlers.
type OrderAdminStore interface {
	ListOrdersByStore(ctx context.Context, storeID uuid.UUID, limit int32) ([]database.Order, error)
	GetOrder(ctx context.Context, id, storeID uuid.UUID) (database.Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, id, storeID uuid.UUID, status string) (database.Order, error)
}

// Broadcaster pushes events to the store's live order feed.
type Broadcaster interface {
	BroadcastToStore(storeID uuid.UUID, event ws.Event)
}

// OrderHandler handles guest checkout and admin order management.
type OrderHandler struct {
	creator OrderCreator
	store   OrderAdminStore
	hub     Broadcaster
}

func NewOrderHandler(creator OrderCreator, store OrderAdminStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{creator: creator, store: store, hub: hub}
}

// RegisterPublicRoutes registers the guest checkout endpoint.
// Expected to be mounted inside /stores/{sid}.
func (h *OrderHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
}

// RegisterAdminRoutes registers order management endpoints.
// Expected to be mounted inside the store-scoped admin subrouter.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Put("/orders/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type createOrderRequest struct {
	OrderType       string                   `json:"order_type"`
	CustomerName    string                   `json:"customer_name"`
	CustomerPhone   string                   `json:"customer_phone"`
	DeliveryAddress string                   `json:"delivery_address"`
	DeliveryLat     *float64                 `json:"delivery_lat"`
	DeliveryLng     *float64                 `json:"delivery_lng"`
	Notes           string                   `json:"notes"`
	Items           []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuItemID  string `json:"menu_item_id"`
	VariantName string `json:"variant_name"`
	Quantity    int32  `json:"quantity"`
}

type orderItemResponse struct {
	ID          uuid.UUID `json:"id"`
	MenuItemID  uuid.UUID `json:"menu_item_id"`
	Name        string    `json:"name"`
	VariantName *string   `json:"variant_name"`
	UnitPrice   string    `json:"unit_price"`
	Quantity    int32     `json:"quantity"`
	Subtotal    string    `json:"subtotal"`
}

type orderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	OrderNumber        string              `json:"order_number"`
	OrderType          string              `json:"order_type"`
	Status             string              `json:"status"`
	CustomerName       string              `json:"customer_name"`
	CustomerPhone      *string             `json:"customer_phone"`
	DeliveryAddress    *string             `json:"delivery_address"`
	DeliveryDistanceKm *float64            `json:"delivery_distance_km"`
	Notes              *string             `json:"notes"`
	Subtotal           string              `json:"subtotal"`
	GSTAmount          string              `json:"gst_amount"`
	ExtraCharge        string              `json:"extra_charge"`
	DeliveryCharge     string              `json:"delivery_charge"`
	TotalAmount        string              `json:"total_amount"`
	CreatedAt          time.Time           `json:"created_at"`
	Items              []orderItemResponse `json:"items,omitempty"`
}

type createOrderResponse struct {
	orderResponse
	Summary      string `json:"summary"`
	WhatsAppLink string `json:"whatsapp_link"`
}

func toOrderItemResponse(i database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:          i.ID,
		MenuItemID:  i.MenuItemID,
		Name:        i.Name,
		VariantName: textOrNil(i.VariantName),
		UnitPrice:   numericToString(i.UnitPrice),
		Quantity:    i.Quantity,
		Subtotal:    numericToString(i.Subtotal),
	}
}

func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		OrderType:       o.OrderType,
		Status:          o.Status,
		CustomerName:    o.CustomerName,
		CustomerPhone:   textOrNil(o.CustomerPhone),
		DeliveryAddress: textOrNil(o.DeliveryAddress),
		Notes:           textOrNil(o.Notes),
		Subtotal:        numericToString(o.Subtotal),
		GSTAmount:       numericToString(o.GstAmount),
		ExtraCharge:     numericToString(o.ExtraCharge),
		DeliveryCharge:  numericToString(o.DeliveryCharge),
		TotalAmount:     numericToString(o.TotalAmount),
		CreatedAt:       o.CreatedAt.Time,
	}
	if o.DeliveryDistanceKm.Valid {
		km := o.DeliveryDistanceKm.Float64
		resp.DeliveryDistanceKm = &km
	}
	for _, i := range items {
		resp.Items = append(resp.Items, toOrderItemResponse(i))
	}
	return resp
}

// --- Handlers ---

// Create places a guest order. No authentication; the store is addressed by
// URL and all pricing is recomputed server-side.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	svcReq := service.CreateOrderRequest{
		StoreID:         storeID,
		OrderType:       req.OrderType,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryLat:     req.DeliveryLat,
		DeliveryLng:     req.DeliveryLng,
		Notes:           req.Notes,
	}
	for _, item := range req.Items {
		svcReq.Items = append(svcReq.Items, service.CreateOrderItemRequest{
			MenuItemID:  item.MenuItemID,
			VariantName: item.VariantName,
			Quantity:    item.Quantity,
		})
	}

	result, err := h.creator.CreateOrder(r.Context(), svcReq)
	if err != nil {
		if isOrderValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "store not found"})
			return
		}
		logrus.WithError(err).Error("create order")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.hub.BroadcastToStore(storeID, ws.NewOrderCreated(
		result.Order.ID,
		result.Order.OrderNumber,
		result.Order.OrderType,
		result.Totals.GrandTotal.StringFixed(2),
	))

	writeJSON(w, http.StatusCreated, createOrderResponse{
		orderResponse: toOrderResponse(result.Order, result.Items),
		Summary:       result.Summary,
		WhatsAppLink:  result.WhatsAppLink,
	})
}

func isOrderValidationError(err error) bool {
	for _, target := range []error{
		service.ErrEmptyItems,
		service.ErrInvalidOrderType,
		service.ErrInvalidQuantity,
		service.ErrInvalidMenuItemID,
		service.ErrItemNotFound,
		service.ErrItemUnavailable,
		service.ErrVariantNotFound,
		service.ErrInsufficientStock,
		service.ErrCustomerName,
		service.ErrDeliveryAddress,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// List returns recent orders for the store.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}

	limit := int32(defaultOrderListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = int32(n)
	}

	orders, err := h.store.ListOrdersByStore(r.Context(), storeID, limit)
	if err != nil {
		logrus.WithError(err).Error("list orders")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o, nil)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single order with its items.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	o, err := h.store.GetOrder(r.Context(), orderID, storeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		logrus.WithError(err).Error("get order")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItems(r.Context(), orderID)
	if err != nil {
		logrus.WithError(err).Error("list order items")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o, items))
}

// validStatusTransitions is the order status machine. CANCELLED is reachable
// from any non-final status.
var validStatusTransitions = map[string][]string{
	enum.OrderStatusNew:       {enum.OrderStatusPreparing, enum.OrderStatusCancelled},
	enum.OrderStatusPreparing: {enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusReady:     {enum.OrderStatusCompleted, enum.OrderStatusCancelled},
}

func canTransition(from, to string) bool {
	for _, s := range validStatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// UpdateStatus moves an order through the status machine and notifies the
// store's live feed.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid store ID"})
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	current, err := h.store.GetOrder(r.Context(), orderID, storeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		logrus.WithError(err).Error("get order")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if !canTransition(current.Status, req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "cannot transition from " + current.Status + " to " + req.Status,
		})
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), orderID, storeID, req.Status)
	if err != nil {
		logrus.WithError(err).Error("update order status")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.hub.BroadcastToStore(storeID, ws.NewOrderStatusChanged(updated.ID, updated.Status))

	writeJSON(w, http.StatusOK, toOrderResponse(updated, nil))
}
