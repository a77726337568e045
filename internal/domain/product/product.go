package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item available for purchase.
type Product struct {
	ID          int64
	Title       string
	Description string
	Price       decimal.Decimal
	Stock       int
	Image       string
}

// Source provides the static product catalog. It is read once at startup.
type Source interface {
	List(ctx context.Context) ([]Product, error)
}

// Find returns the index of the product with the given id, or -1.
func Find(products []Product, id int64) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
