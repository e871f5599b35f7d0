// Package catalog is the client for the remote read-only product
// catalog. The catalog owns all product data; a failed fetch surfaces
// to the caller as a plain error, with no retry or backoff.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/storefront/internal/domain/product"
)

const DefaultBaseURL = "https://fakestoreapi.com"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Products fetches the full product list.
func (c *Client) Products(ctx context.Context) ([]product.Product, error) {
	var products []product.Product
	if err := c.get(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches a single product by its catalog-assigned ID.
func (c *Client) Product(ctx context.Context, id int) (product.Product, error) {
	var p product.Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d", id), &p); err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
