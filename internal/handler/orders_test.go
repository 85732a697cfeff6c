package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/dineup/api/internal/database"
	"github.com/dineup/api/internal/enum"
	"github.com/dineup/api/internal/order"
	"github.com/dineup/api/internal/service"
	"github.com/dineup/api/internal/ws"
)

type mockOrderCreator struct {
	createOrderFn func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

func (m *mockOrderCreator) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
	return m.createOrderFn(ctx, req)
}

type mockOrderAdminStore struct {
	listOrdersFn        func(ctx context.Context, storeID uuid.UUID, limit int32) ([]database.Order, error)
	getOrderFn          func(ctx context.Context, id, storeID uuid.UUID) (database.Order, error)
	listOrderItemsFn    func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	updateOrderStatusFn func(ctx context.Context, id, storeID uuid.UUID, status string) (database.Order, error)
}

func (m *mockOrderAdminStore) ListOrdersByStore(ctx context.Context, storeID uuid.UUID, limit int32) ([]database.Order, error) {
	return m.listOrdersFn(ctx, storeID, limit)
}

func (m *mockOrderAdminStore) GetOrder(ctx context.Context, id, storeID uuid.UUID) (database.Order, error) {
	return m.getOrderFn(ctx, id, storeID)
}

func (m *mockOrderAdminStore) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	return m.listOrderItemsFn(ctx, orderID)
}

func (m *mockOrderAdminStore) UpdateOrderStatus(ctx context.Context, id, storeID uuid.UUID, status string) (database.Order, error) {
	return m.updateOrderStatusFn(ctx, id, storeID, status)
}

type mockBroadcaster struct {
	events []ws.Event
}

func (m *mockBroadcaster) BroadcastToStore(_ uuid.UUID, event ws.Event) {
	m.events = append(m.events, event)
}

func orderRouter(h *OrderHandler) chi.Router {
	r := chi.NewRouter()
	r.Route("/stores/{sid}", func(r chi.Router) {
		h.RegisterPublicRoutes(r)
		r.Route("/admin", h.RegisterAdminRoutes)
	})
	return r
}

func testNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("scan numeric %q: %v", s, err)
	}
	return n
}

func TestCreateOrderEndpoint(t *testing.T) {
	storeID := uuid.New()
	orderID := uuid.New()

	creator := &mockOrderCreator{
		createOrderFn: func(_ context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			if req.StoreID != storeID {
				t.Errorf("expected store ID %s, got %s", storeID, req.StoreID)
			}
			if len(req.Items) != 1 || req.Items[0].Quantity != 2 {
				t.Errorf("unexpected items: %+v", req.Items)
			}
			return &service.CreateOrderResult{
				Order: database.Order{
					ID:           orderID,
					StoreID:      storeID,
					OrderNumber:  "ORD-0001",
					OrderType:    enum.OrderTypePickup,
					Status:       enum.OrderStatusNew,
					CustomerName: "Asha",
					Subtotal:     testNumeric(t, "400.00"),
					TotalAmount:  testNumeric(t, "400.00"),
				},
				Totals:       order.Breakdown{GrandTotal: decimal.NewFromInt(400)},
				Summary:      "order summary",
				WhatsAppLink: "https://wa.me/911234567890?text=order+summary",
			}, nil
		},
	}
	hub := &mockBroadcaster{}
	h := NewOrderHandler(creator, &mockOrderAdminStore{}, hub)

	body, _ := json.Marshal(map[string]interface{}{
		"order_type":    "PICKUP",
		"customer_name": "Asha",
		"items": []map[string]interface{}{
			{"menu_item_id": uuid.New().String(), "quantity": 2},
		},
	})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/stores/%s/orders", storeID), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	orderRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		OrderNumber  string `json:"order_number"`
		Summary      string `json:"summary"`
		WhatsAppLink string `json:"whatsapp_link"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.OrderNumber != "ORD-0001" {
		t.Errorf("expected ORD-0001, got %s", resp.OrderNumber)
	}
	if resp.Summary == "" || resp.WhatsAppLink == "" {
		t.Error("expected summary and whatsapp link")
	}

	if len(hub.events) != 1 {
		t.Fatalf("expected 1 broadcast event, got %d", len(hub.events))
	}
	if hub.events[0].Type != ws.EventOrderCreated {
		t.Errorf("expected %s event, got %s", ws.EventOrderCreated, hub.events[0].Type)
	}
}

func TestCreateOrderEndpoint_ValidationError(t *testing.T) {
	creator := &mockOrderCreator{
		createOrderFn: func(_ context.Context, _ service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			return nil, service.ErrEmptyItems
		},
	}
	hub := &mockBroadcaster{}
	h := NewOrderHandler(creator, &mockOrderAdminStore{}, hub)

	body, _ := json.Marshal(map[string]interface{}{
		"order_type":    "PICKUP",
		"customer_name": "Asha",
	})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/stores/%s/orders", uuid.New()), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	orderRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if len(hub.events) != 0 {
		t.Error("no event should be broadcast on failure")
	}
}

func TestCreateOrderEndpoint_StoreNotFound(t *testing.T) {
	creator := &mockOrderCreator{
		createOrderFn: func(_ context.Context, _ service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			return nil, fmt.Errorf("get store: %w", pgx.ErrNoRows)
		},
	}
	h := NewOrderHandler(creator, &mockOrderAdminStore{}, &mockBroadcaster{})

	body, _ := json.Marshal(map[string]interface{}{
		"order_type":    "PICKUP",
		"customer_name": "Asha",
		"items":         []map[string]interface{}{{"menu_item_id": uuid.New().String(), "quantity": 1}},
	})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/stores/%s/orders", uuid.New()), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	orderRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestListOrders(t *testing.T) {
	storeID := uuid.New()
	store := &mockOrderAdminStore{
		listOrdersFn: func(_ context.Context, sid uuid.UUID, limit int32) ([]database.Order, error) {
			if sid != storeID {
				t.Errorf("expected store ID %s, got %s", storeID, sid)
			}
			if limit != 50 {
				t.Errorf("expected default limit 50, got %d", limit)
			}
			return []database.Order{
				{ID: uuid.New(), OrderNumber: "ORD-0002", Status: enum.OrderStatusNew},
				{ID: uuid.New(), OrderNumber: "ORD-0001", Status: enum.OrderStatusCompleted},
			}, nil
		},
	}
	h := NewOrderHandler(&mockOrderCreator{}, store, &mockBroadcaster{})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/stores/%s/admin/orders", storeID), nil)
	rec := httptest.NewRecorder()
	orderRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []orderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(resp))
	}
	if resp[0].OrderNumber != "ORD-0002" {
		t.Errorf("expected newest order first, got %s", resp[0].OrderNumber)
	}
}

func TestGetOrder_WithItems(t *testing.T) {
	storeID := uuid.New()
	orderID := uuid.New()
	store := &mockOrderAdminStore{
		getOrderFn: func(_ context.Context, id, _ uuid.UUID) (database.Order, error) {
			if id != orderID {
				return database.Order{}, pgx.ErrNoRows
			}
			return database.Order{ID: orderID, OrderNumber: "ORD-0001"}, nil
		},
		listOrderItemsFn: func(_ context.Context, _ uuid.UUID) ([]database.OrderItem, error) {
			return []database.OrderItem{
				{ID: uuid.New(), OrderID: orderID, Name: "Paneer Tikka", Quantity: 2},
			}, nil
		},
	}
	h := NewOrderHandler(&mockOrderCreator{}, store, &mockBroadcaster{})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/stores/%s/admin/orders/%s", storeID, orderID), nil)
	rec := httptest.NewRecorder()
	orderRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp orderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Name != "Paneer Tikka" {
		t.Errorf("unexpected items: %+v", resp.Items)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	store := &mockOrderAdminStore{
		getOrderFn: func(_ context.Context, _, _ uuid.UUID) (database.Order, error) {
			return database.Order{}, pgx.ErrNoRows
		},
	}
	h := NewOrderHandler(&mockOrderCreator{}, store, &mockBroadcaster{})

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/stores/%s/admin/orders/%s", uuid.New(), uuid.New()), nil)
	rec := httptest.NewRecorder()
	orderRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	storeID := uuid.New()
	orderID := uuid.New()
	store := &mockOrderAdminStore{
		getOrderFn: func(_ context.Context, _, _ uuid.UUID) (database.Order, error) {
			return database.Order{ID: orderID, Status: enum.OrderStatusNew}, nil
		},
		updateOrderStatusFn: func(_ context.Context, id, _ uuid.UUID, status string) (database.Order, error) {
			if status != enum.OrderStatusPreparing {
				t.Errorf("expected PREPARING, got %s", status)
			}
			return database.Order{ID: id, Status: status}, nil
		},
	}
	hub := &mockBroadcaster{}
	h := NewOrderHandler(&mockOrderCreator{}, store, hub)

	body, _ := json.Marshal(map[string]string{"status": "PREPARING"})
	req := httptest.NewRequest(http.MethodPut,
		fmt.Sprintf("/stores/%s/admin/orders/%s/status", storeID, orderID), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	orderRouter(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(hub.events) != 1 || hub.events[0].Type != ws.EventOrderStatusChanged {
		t.Errorf("expected a status change broadcast, got %+v", hub.events)
	}
}

func TestUpdateOrderStatus_InvalidTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
	}{
		{"completed is final", enum.OrderStatusCompleted, enum.OrderStatusPreparing},
		{"cancelled is final", enum.OrderStatusCancelled, enum.OrderStatusNew},
		{"no skipping ahead", enum.OrderStatusNew, enum.OrderStatusCompleted},
		{"no moving backwards", enum.OrderStatusReady, enum.OrderStatusPreparing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockOrderAdminStore{
				getOrderFn: func(_ context.Context, _, _ uuid.UUID) (database.Order, error) {
					return database.Order{ID: uuid.New(), Status: tt.from}, nil
				},
			}
			hub := &mockBroadcaster{}
			h := NewOrderHandler(&mockOrderCreator{}, store, hub)

			body, _ := json.Marshal(map[string]string{"status": tt.to})
			req := httptest.NewRequest(http.MethodPut,
				fmt.Sprintf("/stores/%s/admin/orders/%s/status", uuid.New(), uuid.New()), bytes.NewReader(body))
			rec := httptest.NewRecorder()
			orderRouter(h).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if len(hub.events) != 0 {
				t.Error("no event should be broadcast on rejected transition")
			}
		})
	}
}

func TestUpdateOrderStatus_CancelFromAnyActive(t *testing.T) {
	for _, from := range []string{enum.OrderStatusNew, enum.OrderStatusPreparing, enum.OrderStatusReady} {
		t.Run(from, func(t *testing.T) {
			store := &mockOrderAdminStore{
				getOrderFn: func(_ context.Context, _, _ uuid.UUID) (database.Order, error) {
					return database.Order{ID: uuid.New(), Status: from}, nil
				},
				updateOrderStatusFn: func(_ context.Context, id, _ uuid.UUID, status string) (database.Order, error) {
					return database.Order{ID: id, Status: status}, nil
				},
			}
			h := NewOrderHandler(&mockOrderCreator{}, store, &mockBroadcaster{})

			body, _ := json.Marshal(map[string]string{"status": "CANCELLED"})
			req := httptest.NewRequest(http.MethodPut,
				fmt.Sprintf("/stores/%s/admin/orders/%s/status", uuid.New(), uuid.New()), bytes.NewReader(body))
			rec := httptest.NewRecorder()
			orderRouter(h).ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("expected 200 cancelling from %s, got %d", from, rec.Code)
			}
		})
	}
}
