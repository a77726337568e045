// Package file persists the cart as one JSON file per key, the way a browser
// keeps it in local storage.
package file

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-cart/internal/domain/cart"
)

var _ cart.Storage = (*Storage)(nil)

// Storage writes values under a directory.
type Storage struct {
	dir string
}

// New returns a Storage rooted at dir, creating it if needed.
func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errors.Wrap(err, "create storage dir")
	}
	return &Storage{dir: dir}, nil
}

func (s *Storage) path(key string) string {
	return filepath.Join(s.dir, filepath.Base(key)+".json")
}

// Load reads the file for key.
func (s *Storage) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, cart.ErrNoState
		}
		return nil, errors.Wrapf(err, "read %q", key)
	}
	return data, nil
}

// Save replaces the file for key. The write goes to a temporary file that is
// renamed into place so readers never see a partial cart.
func (s *Storage) Save(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".cart-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "write %q", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %q", key)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return errors.Wrapf(err, "rename %q", key)
	}
	return nil
}

// Ping checks that the directory is still accessible.
func (s *Storage) Ping(_ context.Context) error {
	if _, err := os.Stat(s.dir); err != nil {
		return errors.Wrap(err, "stat storage dir")
	}
	return nil
}
