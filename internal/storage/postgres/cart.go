package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-cart/internal/domain/cart"
)

const (
	getCartSQL = `SELECT data FROM cart_state WHERE key = $1`

	saveCartSQL = `INSERT INTO cart_state (key, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
)

var _ cart.Storage = (*CartStorage)(nil)

// CartStorage keeps serialized carts in the cart_state table.
type CartStorage struct {
	pool *pgxpool.Pool
}

// NewCartStorage returns a CartStorage that uses the given pool.
func NewCartStorage(pool *pgxpool.Pool) *CartStorage {
	return &CartStorage{pool: pool}
}

// Load returns the stored cart for key.
func (s *CartStorage) Load(ctx context.Context, key string) ([]byte, error) {
	var data string
	if err := s.pool.QueryRow(ctx, getCartSQL, key).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNoState
		}
		return nil, fmt.Errorf("loading cart %q: %w", key, err)
	}
	return []byte(data), nil
}

// Save upserts the cart for key.
func (s *CartStorage) Save(ctx context.Context, key string, data []byte) error {
	if _, err := s.pool.Exec(ctx, saveCartSQL, key, string(data)); err != nil {
		return fmt.Errorf("saving cart %q: %w", key, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *CartStorage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
