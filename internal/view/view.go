// Package view keeps the rendered state of the cart panel and product grid.
package view

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-cart/internal/domain/cart"
	"github.com/xenking/storefront-cart/internal/domain/product"
)

// EmptyCartMessage is shown in place of lines when the cart is empty.
const EmptyCartMessage = "El carrito está vacío."

// CartRow is one rendered cart line.
type CartRow struct {
	ProductID    int64
	Title        string
	Price        decimal.Decimal
	PriceText    string
	Quantity     int
	Subtotal     decimal.Decimal
	SubtotalText string
}

// CartPanel is the rendered cart: line rows, the badge count and the total.
type CartPanel struct {
	Rows      []CartRow
	Count     int
	Total     decimal.Decimal
	TotalText string
	Message   string
	Version   uint64
}

// ProductCard is one rendered catalog entry.
type ProductCard struct {
	ID          int64
	Title       string
	Description string
	Price       decimal.Decimal
	PriceText   string
	Stock       int
	Image       string
	SoldOut     bool
}

var _ cart.View = (*Board)(nil)

// Board implements cart.View by rendering every refresh into immutable
// panel values that readers can fetch at any time.
type Board struct {
	format *Formatter

	mu      sync.RWMutex
	panel   CartPanel
	grid    []ProductCard
	version uint64
}

// NewBoard returns a Board with an empty cart panel.
func NewBoard(format *Formatter) *Board {
	b := &Board{format: format}
	b.panel = b.renderCart(cart.Snapshot{Total: decimal.Zero})
	return b
}

// RefreshCart re-renders the cart panel.
func (b *Board) RefreshCart(s cart.Snapshot) {
	panel := b.renderCart(s)

	b.mu.Lock()
	b.version++
	panel.Version = b.version
	b.panel = panel
	b.mu.Unlock()
}

// RefreshCatalog re-renders the product grid.
func (b *Board) RefreshCatalog(products []product.Product) {
	grid := make([]ProductCard, len(products))
	for i, p := range products {
		grid[i] = ProductCard{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			PriceText:   b.format.Money(p.Price),
			Stock:       p.Stock,
			Image:       p.Image,
			SoldOut:     p.Stock == 0,
		}
	}

	b.mu.Lock()
	b.grid = grid
	b.mu.Unlock()
}

func (b *Board) renderCart(s cart.Snapshot) CartPanel {
	panel := CartPanel{
		Rows:      make([]CartRow, len(s.Lines)),
		Count:     s.Count,
		Total:     s.Total,
		TotalText: b.format.Money(s.Total),
	}
	for i, l := range s.Lines {
		sub := l.Subtotal()
		panel.Rows[i] = CartRow{
			ProductID:    l.ProductID,
			Title:        l.Title,
			Price:        l.Price,
			PriceText:    b.format.Money(l.Price),
			Quantity:     l.Quantity,
			Subtotal:     sub,
			SubtotalText: b.format.Money(sub),
		}
	}
	if len(s.Lines) == 0 {
		panel.Message = EmptyCartMessage
	}
	return panel
}

// Cart returns the last rendered cart panel.
func (b *Board) Cart() CartPanel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.panel
}

// Products returns the last rendered product grid.
func (b *Board) Products() []ProductCard {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.grid
}

// Formatter returns the money formatter used by the board.
func (b *Board) Formatter() *Formatter { return b.format }
