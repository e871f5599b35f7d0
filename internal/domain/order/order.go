// Package order owns the history of placed orders. Orders are
// append-only snapshots: they copy the cart lines at checkout time
// and are never mutated afterwards.
package order

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/store"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
)

const EventOrderPlaced = "OrderPlaced"

// OrderPlaced is published to the broker when an order is created.
type OrderPlaced struct {
	OrderID   string    `json:"order_id"`
	Total     float64   `json:"total"`
	ItemCount int       `json:"item_count"`
	PlacedAt  time.Time `json:"placed_at"`
}

type Order struct {
	ID              string      `json:"id"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []cart.Line `json:"items"`
	Total           float64     `json:"total"`
	Status          Status      `json:"status"`
	ShippingAddress string      `json:"shipping_address"`
}

// Manager owns the order list, newest first.
type Manager struct {
	mu        sync.RWMutex
	orders    []Order
	store     store.Store
	publisher events.Publisher
	log       logrus.FieldLogger
}

func NewManager(st store.Store, pub events.Publisher, log logrus.FieldLogger) *Manager {
	m := &Manager{store: st, publisher: pub, log: log}
	if _, err := store.LoadJSON(st, store.KeyOrders, &m.orders); err != nil {
		log.WithError(err).Warn("order: failed to rehydrate, starting empty")
		m.orders = nil
	}
	return m
}

// AddOrder creates a pending order from a snapshot of the given lines
// and prepends it to the history. The lines are copied; later cart
// mutations do not touch the order.
func (m *Manager) AddOrder(ctx context.Context, items []cart.Line, total float64, shippingAddress string) Order {
	snapshot := make([]cart.Line, len(items))
	copy(snapshot, items)

	o := Order{
		ID:              "ORD-" + uuid.New().String(),
		CreatedAt:       time.Now(),
		Items:           snapshot,
		Total:           total,
		Status:          StatusPending,
		ShippingAddress: shippingAddress,
	}

	m.mu.Lock()
	m.orders = append([]Order{o}, m.orders...)
	m.persist()
	m.mu.Unlock()

	// Best-effort: a broker failure never fails the checkout.
	event := OrderPlaced{
		OrderID:   o.ID,
		Total:     o.Total,
		ItemCount: len(o.Items),
		PlacedAt:  o.CreatedAt,
	}
	if err := m.publisher.Publish(ctx, o.ID, event); err != nil {
		m.log.WithError(err).WithField("order_id", o.ID).Error("order: failed to publish OrderPlaced")
	}

	return o
}

// GetOrderByID is a linear lookup. A miss is a normal empty result.
func (m *Manager) GetOrderByID(id string) (Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, o := range m.orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

// Orders returns a copy of the history, newest first.
func (m *Manager) Orders() []Order {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Order, len(m.orders))
	copy(out, m.orders)
	return out
}

func (m *Manager) persist() {
	if err := store.SaveJSON(m.store, store.KeyOrders, m.orders); err != nil {
		m.log.WithError(err).Error("order: failed to persist snapshot")
	}
}
