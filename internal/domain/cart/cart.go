// Package cart owns the shopping cart: an ordered list of lines, one
// per product, persisted as a whole snapshot after every mutation.
package cart

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/store"
)

// Line is one cart entry. Identity is the product ID; quantity is
// always >= 1 — removal is the only way to drop a line.
type Line struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Manager is the sole owner and mutator of the cart. Operations never
// fail: invalid input is absorbed as a no-op and persistence errors
// are logged, not surfaced.
type Manager struct {
	mu    sync.RWMutex
	lines []Line
	store store.Store
	log   logrus.FieldLogger
}

// NewManager rehydrates the cart from the store. A missing or
// unreadable snapshot yields an empty cart.
func NewManager(st store.Store, log logrus.FieldLogger) *Manager {
	m := &Manager{store: st, log: log}
	if _, err := store.LoadJSON(st, store.KeyCart, &m.lines); err != nil {
		log.WithError(err).Warn("cart: failed to rehydrate, starting empty")
		m.lines = nil
	}
	return m
}

// Add puts the product in the cart. A product already present gets
// its quantity incremented instead of a duplicate line.
func (m *Manager) Add(p product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.lines {
		if m.lines[i].Product.ID == p.ID {
			m.lines[i].Quantity++
			m.persist()
			return
		}
	}
	m.lines = append(m.lines, Line{Product: p, Quantity: 1})
	m.persist()
}

// Remove deletes the line for productID. Absent products are a no-op.
func (m *Manager) Remove(productID int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.lines {
		if m.lines[i].Product.ID == productID {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			m.persist()
			return
		}
	}
}

// SetQuantity sets the quantity for productID. Quantities below 1 are
// rejected and the current value kept; absent products are a no-op.
func (m *Manager) SetQuantity(productID, quantity int) {
	if quantity < 1 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.lines {
		if m.lines[i].Product.ID == productID {
			m.lines[i].Quantity = quantity
			m.persist()
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lines = nil
	m.persist()
}

// Total is the sum of price*quantity over all lines, kept at full
// precision. Rounding happens at presentation time only.
func (m *Manager) Total() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total float64
	for _, l := range m.lines {
		total += l.Product.Price * float64(l.Quantity)
	}
	return total
}

// Count is the sum of quantities, not the number of lines.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int
	for _, l := range m.lines {
		count += l.Quantity
	}
	return count
}

// Lines returns a copy of the cart in insertion order.
func (m *Manager) Lines() []Line {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Line, len(m.lines))
	copy(out, m.lines)
	return out
}

// persist writes the whole cart snapshot. Callers must hold mu.
func (m *Manager) persist() {
	if err := store.SaveJSON(m.store, store.KeyCart, m.lines); err != nil {
		m.log.WithError(err).Error("cart: failed to persist snapshot")
	}
}
