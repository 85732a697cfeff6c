package ws

import (
	"encoding/json"

	"github.com/google/uuid"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

type orderCreatedPayload struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	OrderType   string    `json:"order_type"`
	Total       string    `json:"total"`
}

// NewOrderCreated builds the event broadcast to a store's room when a
// customer places an order.
func NewOrderCreated(orderID uuid.UUID, orderNumber, orderType, total string) Event {
	payload, _ := json.Marshal(orderCreatedPayload{
		OrderID:     orderID,
		OrderNumber: orderNumber,
		OrderType:   orderType,
		Total:       total,
	})
	return Event{Type: EventOrderCreated, Payload: payload}
}

type orderStatusChangedPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	Status  string    `json:"status"`
}

// NewOrderStatusChanged builds the event broadcast when staff move an order
// through the status machine.
func NewOrderStatusChanged(orderID uuid.UUID, status string) Event {
	payload, _ := json.Marshal(orderStatusChangedPayload{OrderID: orderID, Status: status})
	return Event{Type: EventOrderStatusChanged, Payload: payload}
}
