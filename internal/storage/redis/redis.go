// Package redis persists the cart in Redis.
package redis

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/storefront-cart/internal/domain/cart"
)

const keyPrefix = "cart:"

var _ cart.Storage = (*Storage)(nil)

// Storage stores each cart as a plain string value.
type Storage struct {
	client *redis.Client
}

// New returns a Storage using client.
func New(client *redis.Client) *Storage {
	return &Storage{client: client}
}

// Load returns the value for key.
func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cart.ErrNoState
		}
		return nil, errors.Wrapf(err, "get %q", key)
	}
	return data, nil
}

// Save sets the value for key without expiry.
func (s *Storage) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, keyPrefix+key, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

// Ping checks the connection.
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
