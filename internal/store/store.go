package store

import (
	"encoding/json"
	"fmt"
)

// Well-known collection keys. Each key holds one whole serialized
// collection; every write overwrites the previous snapshot.
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
	KeyUser     = "user"
	KeyOrders   = "orders"
	KeyReviews  = "reviews"
	KeyAccounts = "accounts"
)

// Store is a durable string-keyed snapshot store. Values are opaque
// bytes (JSON in practice) and survive process restarts.
type Store interface {
	// Get returns the value for key. The bool is false when the key
	// has never been written or was deleted.
	Get(key string) ([]byte, bool, error)
	// Set overwrites the value for key.
	Set(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	Close() error
}

// SaveJSON marshals v and overwrites key with the result.
func SaveJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.Set(key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// LoadJSON unmarshals the value for key into v. Returns false (and
// leaves v untouched) when the key is absent.
func LoadJSON(s Store, key string, v any) (bool, error) {
	data, ok, err := s.Get(key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}
