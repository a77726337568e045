// Package catalog fetches the static product list the storefront sells.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"

	"github.com/xenking/storefront-cart/internal/domain/product"
)

// maxCatalogSize bounds the decompressed catalog document.
const maxCatalogSize = 32 << 20

// LoadError is returned when the catalog cannot be fetched or parsed.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load catalog from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load lists products from src, wrapping any failure in a LoadError.
func Load(ctx context.Context, src product.Source) ([]product.Product, error) {
	products, err := src.List(ctx)
	if err != nil {
		name := "catalog source"
		if s, ok := src.(fmt.Stringer); ok {
			name = s.String()
		}
		return nil, &LoadError{Source: name, Err: err}
	}
	return products, nil
}

var (
	_ product.Source = (*HTTPSource)(nil)
	_ product.Source = (*FileSource)(nil)
)

// HTTPSource fetches a JSON catalog from a URL.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource returns an HTTPSource. A nil client uses http.DefaultClient.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{url: url, client: client}
}

func (s *HTTPSource) String() string { return s.url }

// List fetches and decodes the catalog. Bodies served as gzip files (".gz"
// suffix) are decompressed.
func (s *HTTPSource) List(ctx context.Context) ([]product.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}
	return decode(resp.Body, strings.HasSuffix(req.URL.Path, ".gz"))
}

// FileSource reads a JSON catalog from disk, optionally gzip-compressed.
type FileSource struct {
	path string
}

// NewFileSource returns a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) String() string { return s.path }

// List reads and decodes the catalog file.
func (s *FileSource) List(_ context.Context) ([]product.Product, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	return decode(f, strings.HasSuffix(s.path, ".gz"))
}

func decode(r io.Reader, gzipped bool) ([]product.Product, error) {
	if gzipped {
		zr, err := pgzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	data, err := io.ReadAll(io.LimitReader(r, maxCatalogSize))
	if err != nil {
		return nil, errors.Wrap(err, "read")
	}
	return product.DecodeCatalog(data)
}
