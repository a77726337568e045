// Package memory keeps the persisted cart in process memory.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/xenking/storefront-cart/internal/domain/cart"
)

var _ cart.Storage = (*Storage)(nil)

// Storage is a map-backed cart.Storage.
type Storage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{data: make(map[string][]byte)}
}

// Load returns a copy of the value stored under key.
func (s *Storage) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, cart.ErrNoState
	}
	return bytes.Clone(v), nil
}

// Save stores a copy of data under key.
func (s *Storage) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	s.data[key] = bytes.Clone(data)
	s.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (s *Storage) Ping(context.Context) error { return nil }
