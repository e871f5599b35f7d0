// Package wishlist owns the saved-products list. Membership is a set
// keyed by product ID; insertion order is preserved.
package wishlist

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/store"
)

type Manager struct {
	mu       sync.RWMutex
	products []product.Product
	store    store.Store
	log      logrus.FieldLogger
}

func NewManager(st store.Store, log logrus.FieldLogger) *Manager {
	m := &Manager{store: st, log: log}
	if _, err := store.LoadJSON(st, store.KeyWishlist, &m.products); err != nil {
		log.WithError(err).Warn("wishlist: failed to rehydrate, starting empty")
		m.products = nil
	}
	return m
}

// Add saves the product. Idempotent: adding a product already on the
// list leaves exactly one entry.
func (m *Manager) Add(p product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.products {
		if existing.ID == p.ID {
			return
		}
	}
	m.products = append(m.products, p)
	m.persist()
}

// Remove drops the product. Idempotent: absent products are a no-op.
func (m *Manager) Remove(productID int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.products {
		if m.products[i].ID == productID {
			m.products = append(m.products[:i], m.products[i+1:]...)
			m.persist()
			return
		}
	}
}

func (m *Manager) Contains(productID int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.products {
		if p.ID == productID {
			return true
		}
	}
	return false
}

// Products returns a copy of the list in insertion order.
func (m *Manager) Products() []product.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]product.Product, len(m.products))
	copy(out, m.products)
	return out
}

func (m *Manager) persist() {
	if err := store.SaveJSON(m.store, store.KeyWishlist, m.products); err != nil {
		m.log.WithError(err).Error("wishlist: failed to persist snapshot")
	}
}
