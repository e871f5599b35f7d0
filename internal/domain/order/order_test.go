package order

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/store"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []any
	keys   []string
}

func (p *capturePublisher) Publish(ctx context.Context, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func newTestManager() (*Manager, *store.MemoryStore, *capturePublisher) {
	st := store.NewMemoryStore()
	pub := &capturePublisher{}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewManager(st, pub, log), st, pub
}

func testLines() []cart.Line {
	return []cart.Line{
		{Product: product.Product{ID: 1, Title: "first", Price: 9.99}, Quantity: 2},
		{Product: product.Product{ID: 2, Title: "second", Price: 5.00}, Quantity: 1},
	}
}

func TestManager_AddOrder(t *testing.T) {
	m, _, _ := newTestManager()

	o := m.AddOrder(context.Background(), testLines(), 24.98, "1 Main St")

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "1 Main St", o.ShippingAddress)
	assert.InDelta(t, 24.98, o.Total, 1e-9)
	assert.Len(t, o.Items, 2)
	assert.False(t, o.CreatedAt.IsZero())
}

func TestManager_AddOrder_PrependsNewestFirst(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	a := m.AddOrder(ctx, testLines(), 10, "A")
	b := m.AddOrder(ctx, testLines(), 20, "B")

	orders := m.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, b.ID, orders[0].ID)
	assert.Equal(t, a.ID, orders[1].ID)
}

func TestManager_AddOrder_UniqueIDs(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		o := m.AddOrder(ctx, testLines(), 1, "addr")
		assert.False(t, seen[o.ID], "duplicate order id %s", o.ID)
		seen[o.ID] = true
	}
}

func TestManager_AddOrder_SnapshotsLines(t *testing.T) {
	m, _, _ := newTestManager()
	lines := testLines()

	o := m.AddOrder(context.Background(), lines, 24.98, "addr")

	// Mutating the caller's slice must not reach into the order.
	lines[0].Quantity = 99

	stored, ok := m.GetOrderByID(o.ID)
	require.True(t, ok)
	assert.Equal(t, 2, stored.Items[0].Quantity)
}

func TestManager_AddOrder_PublishesEvent(t *testing.T) {
	m, _, pub := newTestManager()

	o := m.AddOrder(context.Background(), testLines(), 24.98, "addr")

	require.Len(t, pub.events, 1)
	assert.Equal(t, o.ID, pub.keys[0])

	event := pub.events[0].(OrderPlaced)
	assert.Equal(t, o.ID, event.OrderID)
	assert.Equal(t, 2, event.ItemCount)
	assert.InDelta(t, 24.98, event.Total, 1e-9)
}

func TestManager_GetOrderByID(t *testing.T) {
	m, _, _ := newTestManager()
	o := m.AddOrder(context.Background(), testLines(), 24.98, "addr")

	found, ok := m.GetOrderByID(o.ID)
	assert.True(t, ok)
	assert.Equal(t, o.ID, found.ID)
}

func TestManager_GetOrderByID_Miss(t *testing.T) {
	m, _, _ := newTestManager()

	_, ok := m.GetOrderByID("ORD-does-not-exist")

	assert.False(t, ok)
}

func TestManager_RehydratesFromStore(t *testing.T) {
	m, st, _ := newTestManager()
	ctx := context.Background()
	m.AddOrder(ctx, testLines(), 10, "A")
	b := m.AddOrder(ctx, testLines(), 20, "B")

	log := logrus.New()
	log.SetOutput(io.Discard)
	reloaded := NewManager(st, &capturePublisher{}, log)

	orders := reloaded.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, b.ID, orders[0].ID, "newest-first order survives reload")
}
