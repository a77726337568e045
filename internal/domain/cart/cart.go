// Package cart implements the storefront cart: an ordered list of lines
// constrained by catalog stock, persisted as a single blob after every
// mutation.
package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-cart/internal/domain/product"
)

// DefaultKey is the storage key the cart is persisted under.
const DefaultKey = "proyecto_carrito_v1"

// Line is one product's entry in the cart. Title and Price are captured when
// the product is first added and are not re-synced with the catalog.
type Line struct {
	ProductID int64
	Title     string
	Price     decimal.Decimal
	Quantity  int
}

// Subtotal returns Price × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is a read-only copy of the cart state handed to views.
type Snapshot struct {
	Lines []Line
	Count int
	Total decimal.Decimal
}

// Storage persists the serialized cart under a fixed key.
type Storage interface {
	// Load returns ErrNoState when nothing is stored under key.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// View is signalled after every state change so it can re-render.
type View interface {
	RefreshCart(s Snapshot)
	RefreshCatalog(products []product.Product)
}

type nopView struct{}

func (nopView) RefreshCart(Snapshot)               {}
func (nopView) RefreshCatalog([]product.Product) {}

// Count returns the sum of all line quantities.
func Count(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// Total returns the sum of Price × Quantity over all lines.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func findLine(lines []Line, productID int64) int {
	for i := range lines {
		if lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
