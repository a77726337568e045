package cart

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/storefront-cart/internal/domain/product"
)

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key (DefaultKey).
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithView sets the view signalled after state changes.
func WithView(v View) Option {
	return func(s *Store) { s.view = v }
}

// WithLogger sets the logger used for restore fallbacks.
func WithLogger(lg *zap.Logger) Option {
	return func(s *Store) { s.lg = lg }
}

// Store owns the catalog snapshot and the cart. It is the only writer of the
// persisted cart.
//
// All methods are serialized by a single mutex, so a mutation always runs to
// completion before the next one starts. View callbacks are invoked while the
// lock is held and must not call back into the Store.
type Store struct {
	storage Storage
	view    View
	key     string
	lg      *zap.Logger

	mu      sync.Mutex
	catalog []product.Product
	lines   []Line
}

// NewStore creates an empty Store persisting through storage.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		view:    nopView{},
		key:     DefaultKey,
		lg:      zap.NewNop(),
		lines:   make([]Line, 0),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CheckoutResult describes what a checkout debited.
type CheckoutResult struct {
	Lines []Line
	Count int
	Total decimal.Decimal
}

// Restore replaces the in-memory cart with the persisted one. Missing or
// unparsable data yields an empty cart.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = s.load(ctx)
	s.view.RefreshCart(s.snapshot())
}

func (s *Store) load(ctx context.Context) []Line {
	data, err := s.storage.Load(ctx, s.key)
	switch {
	case errors.Is(err, ErrNoState):
		return make([]Line, 0)
	case err != nil:
		s.lg.Warn("Cart storage unavailable, starting empty", zap.Error(err))
		return make([]Line, 0)
	}

	lines, err := Decode(data)
	if err != nil {
		s.lg.Debug("Discarding unparsable cart", zap.Error(err))
		return make([]Line, 0)
	}
	return lines
}

// SetCatalog replaces the catalog wholesale.
func (s *Store) SetCatalog(products []product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog = slices.Clone(products)
	s.view.RefreshCatalog(slices.Clone(s.catalog))
}

// Add adds quantity units of the product, merging into an existing line.
func (s *Store) Add(ctx context.Context, productID int64, quantity int) (Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return Line{}, &InvalidQuantityError{ProductID: productID, Quantity: quantity}
	}

	pi := product.Find(s.catalog, productID)
	if pi < 0 {
		return Line{}, &ProductNotFoundError{ProductID: productID}
	}
	p := s.catalog[pi]

	li := findLine(s.lines, productID)
	existing := 0
	if li >= 0 {
		existing = s.lines[li].Quantity
	}
	// Compare against the remaining headroom so huge quantities cannot wrap.
	if quantity > p.Stock-existing {
		requested := math.MaxInt
		if quantity <= math.MaxInt-existing {
			requested = existing + quantity
		}
		return Line{}, &InsufficientStockError{
			ProductID: productID,
			Requested: requested,
			Available: p.Stock,
		}
	}

	if li >= 0 {
		s.lines[li].Quantity = existing + quantity
	} else {
		li = len(s.lines)
		s.lines = append(s.lines, Line{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Quantity:  quantity,
		})
	}
	return s.lines[li], s.commit(ctx)
}

// Remove deletes the line for productID. Missing lines are ignored.
func (s *Store) Remove(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove(ctx, productID)
}

func (s *Store) remove(ctx context.Context, productID int64) error {
	s.lines = slices.DeleteFunc(s.lines, func(l Line) bool {
		return l.ProductID == productID
	})
	return s.commit(ctx)
}

// SetQuantity sets the line quantity. Quantities <= 0 remove the line; a
// missing line is a no-op.
func (s *Store) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	li := findLine(s.lines, productID)
	if li < 0 {
		return nil
	}
	if quantity <= 0 {
		return s.remove(ctx, productID)
	}

	available := 0
	if pi := product.Find(s.catalog, productID); pi >= 0 {
		available = s.catalog[pi].Stock
	}
	if quantity > available {
		return &InsufficientStockError{
			ProductID: productID,
			Requested: quantity,
			Available: available,
		}
	}

	s.lines[li].Quantity = quantity
	return s.commit(ctx)
}

// Clear empties the cart. It returns ErrEmptyCart if there is nothing to clear.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return ErrEmptyCart
	}
	s.lines = make([]Line, 0)
	return s.commit(ctx)
}

// Checkout debits every line's quantity from the matching product stock,
// floored at zero, and empties the cart. Lines whose product is no longer in
// the catalog are emptied without a debit.
func (s *Store) Checkout(ctx context.Context) (*CheckoutResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return nil, ErrEmptyCart
	}

	for _, l := range s.lines {
		pi := product.Find(s.catalog, l.ProductID)
		if pi < 0 {
			continue
		}
		s.catalog[pi].Stock = max(0, s.catalog[pi].Stock-l.Quantity)
	}

	res := &CheckoutResult{
		Lines: s.lines,
		Count: Count(s.lines),
		Total: Total(s.lines),
	}
	s.lines = make([]Line, 0)

	err := s.commit(ctx)
	s.view.RefreshCatalog(slices.Clone(s.catalog))
	return res, err
}

// commit persists the cart and refreshes the cart view. The view is refreshed
// even if saving fails since the in-memory state already changed.
func (s *Store) commit(ctx context.Context) error {
	s.view.RefreshCart(s.snapshot())
	if err := s.storage.Save(ctx, s.key, Encode(s.lines)); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{
		Lines: slices.Clone(s.lines),
		Count: Count(s.lines),
		Total: Total(s.lines),
	}
}

// Count returns the total number of units in the cart.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Count(s.lines)
}

// Total returns the cart total.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.lines)
}

// Snapshot returns a copy of the current cart state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Lines returns a copy of the cart lines in display order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

// Catalog returns a copy of the catalog.
func (s *Store) Catalog() []product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.catalog)
}

// Product returns the catalog entry for id.
func (s *Store) Product(id int64) (product.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pi := product.Find(s.catalog, id)
	if pi < 0 {
		return product.Product{}, false
	}
	return s.catalog[pi], true
}
