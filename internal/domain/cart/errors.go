package cart

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for cart operations.
var (
	// ErrEmptyCart is returned by Clear and Checkout when there is nothing in
	// the cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNoState is returned by Storage.Load when no cart was ever saved.
	ErrNoState = errors.New("no persisted cart")
)

// ProductNotFoundError indicates the product id has no match in the catalog.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError indicates the requested quantity exceeds the
// product's current stock.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// InvalidQuantityError indicates a non-positive quantity passed to Add.
type InvalidQuantityError struct {
	ProductID int64
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d, got %d", e.ProductID, e.Quantity)
}
