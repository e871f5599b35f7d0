// Package review owns product reviews: a single append-only list,
// newest first, filtered per product on read.
package review

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/example/storefront/internal/store"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type Review struct {
	ID        string    `json:"id"`
	ProductID int       `json:"product_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Manager struct {
	mu      sync.RWMutex
	reviews []Review
	store   store.Store
	log     logrus.FieldLogger
}

func NewManager(st store.Store, log logrus.FieldLogger) *Manager {
	m := &Manager{store: st, log: log}
	if _, err := store.LoadJSON(st, store.KeyReviews, &m.reviews); err != nil {
		log.WithError(err).Warn("review: failed to rehydrate, starting empty")
		m.reviews = nil
	}
	return m
}

// AddReview validates the rating bound and prepends a new review.
// The author fields are copied from the submitting identity, not
// referenced.
func (m *Manager) AddReview(productID, rating int, comment, userID, userName string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, ErrInvalidRating
	}

	r := Review{
		ID:        "REV-" + uuid.New().String(),
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reviews = append([]Review{r}, m.reviews...)
	m.persist()
	return r, nil
}

// ProductReviews filters the global list by product, preserving its
// newest-first order.
func (m *Manager) ProductReviews(productID int) []Review {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Review
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out
}

// AverageRating is the arithmetic mean of the product's ratings, and
// exactly 0 when the product has no reviews.
func (m *Manager) AverageRating(productID int) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sum, n int
	for _, r := range m.reviews {
		if r.ProductID == productID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func (m *Manager) persist() {
	if err := store.SaveJSON(m.store, store.KeyReviews, m.reviews); err != nil {
		m.log.WithError(err).Error("review: failed to persist snapshot")
	}
}
