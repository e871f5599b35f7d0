package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsJSON = `[
	{"id":1,"title":"Backpack","price":109.95,"category":"men's clothing","image":"https://img/1.jpg","rating":{"rate":3.9,"count":120}},
	{"id":2,"title":"T-Shirt","price":22.3}
]`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productsJSON))
	})
	mux.HandleFunc("/products/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"title":"Backpack","price":109.95,"rating":{"rate":3.9,"count":120}}`))
	})
	mux.HandleFunc("/products/99", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_Products(t *testing.T) {
	server := newTestServer(t)
	c := NewClient(server.URL, time.Second)

	products, err := c.Products(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 1, products[0].ID)
	assert.Equal(t, "Backpack", products[0].Title)
	assert.InDelta(t, 109.95, products[0].Price, 1e-9)
	require.NotNil(t, products[0].Rating)
	assert.Equal(t, 120, products[0].Rating.Count)
	assert.Nil(t, products[1].Rating)
}

func TestClient_Product(t *testing.T) {
	server := newTestServer(t)
	c := NewClient(server.URL, time.Second)

	p, err := c.Product(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, p.ID)
	assert.InDelta(t, 109.95, p.Price, 1e-9)
}

func TestClient_Product_ErrorStatus(t *testing.T) {
	server := newTestServer(t)
	c := NewClient(server.URL, time.Second)

	_, err := c.Product(context.Background(), 99)

	assert.Error(t, err)
}

func TestClient_NetworkFailure(t *testing.T) {
	server := newTestServer(t)
	server.Close() // refuse connections

	c := NewClient(server.URL, time.Second)
	_, err := c.Products(context.Background())

	assert.Error(t, err)
}
