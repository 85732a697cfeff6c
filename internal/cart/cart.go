// Package cart holds guest carts in memory, keyed by store and browser
// session. Carts never outlive the process; checkout snapshots the lines
// into an order.
package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineID identifies a cart line. An item with a variant selected gets a
// separate line from the same item without one, so the same dish can sit in
// the cart at two sizes.
type LineID string

func NewLineID(menuItemID uuid.UUID, variantName string) LineID {
	if variantName == "" {
		return LineID(menuItemID.String())
	}
	return LineID(menuItemID.String() + "|" + variantName)
}

// Line is one priced row of a cart.
type Line struct {
	ID          LineID          `json:"id"`
	MenuItemID  uuid.UUID       `json:"menu_item_id"`
	Name        string          `json:"name"`
	VariantName string          `json:"variant_name,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// Cart is a mutable guest cart. AddItem, DecreaseQuantity and RemoveItem are
// the only write paths; Lines returns a snapshot.
type Cart struct {
	mu    sync.Mutex
	lines map[LineID]*Line
	order []LineID
}

func New() *Cart {
	return &Cart{lines: make(map[LineID]*Line)}
}

// AddItem increments the matching line's quantity, creating the line on
// first add. UnitPrice is the charged (offer-resolved) price at add time.
func (c *Cart) AddItem(menuItemID uuid.UUID, name, variantName string, unitPrice decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := NewLineID(menuItemID, variantName)
	if line, ok := c.lines[id]; ok {
		line.Quantity++
		return
	}
	c.lines[id] = &Line{
		ID:          id,
		MenuItemID:  menuItemID,
		Name:        name,
		VariantName: variantName,
		UnitPrice:   unitPrice,
		Quantity:    1,
	}
	c.order = append(c.order, id)
}

// DecreaseQuantity decrements the line, removing it entirely when the
// quantity reaches zero. Unknown lines are a no-op.
func (c *Cart) DecreaseQuantity(id LineID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lines[id]
	if !ok {
		return
	}
	line.Quantity--
	if line.Quantity <= 0 {
		c.removeLocked(id)
	}
}

// RemoveItem drops the line regardless of quantity.
func (c *Cart) RemoveItem(id LineID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(id)
}

func (c *Cart) removeLocked(id LineID) {
	if _, ok := c.lines[id]; !ok {
		return
	}
	delete(c.lines, id)
	for i, lid := range c.order {
		if lid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Lines returns the cart contents in the order lines were first added.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.lines[id])
	}
	return out
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = make(map[LineID]*Line)
	c.order = nil
}

// Manager hands out carts keyed by store and session.
type Manager struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewManager() *Manager {
	return &Manager{carts: make(map[string]*Cart)}
}

func cartKey(storeID uuid.UUID, sessionID string) string {
	return storeID.String() + "|" + sessionID
}

// Cart returns the cart for the session, creating it on first use.
func (m *Manager) Cart(storeID uuid.UUID, sessionID string) *Cart {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := cartKey(storeID, sessionID)
	if c, ok := m.carts[key]; ok {
		return c
	}
	c := New()
	m.carts[key] = c
	return c
}

// Drop discards the session's cart, typically after checkout.
func (m *Manager) Drop(storeID uuid.UUID, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, cartKey(storeID, sessionID))
}
