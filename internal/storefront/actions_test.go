package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront-cart/internal/catalog"
	"github.com/xenking/storefront-cart/internal/domain/cart"
	"github.com/xenking/storefront-cart/internal/domain/product"
	"github.com/xenking/storefront-cart/internal/storage/memory"
	"github.com/xenking/storefront-cart/internal/view"
)

// --- Mock implementations ---

type failingUI struct {
	ScriptedUI
}

func (u *failingUI) Confirm(context.Context, Prompt) (bool, error) {
	return false, errors.New("dialog crashed")
}

type failingStorage struct {
	*memory.Storage
}

func (failingStorage) Save(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

// --- Helpers ---

var testCatalog = []product.Product{
	{ID: 1, Title: "Mate", Price: decimal.NewFromInt(100), Stock: 5},
	{ID: 2, Title: "Yerba", Price: decimal.NewFromInt(40), Stock: 2},
}

func newTestActions(t *testing.T, storage cart.Storage) (*Actions, *view.Board) {
	t.Helper()
	board := view.NewBoard(view.NewFormatter("en-US"))
	store := cart.NewStore(storage, cart.WithView(board))
	store.SetCatalog(testCatalog)

	a, err := New(store, board.Formatter(), Config{
		PaymentDelay:    time.Second,
		DefaultCustomer: Customer{Name: "Daiana Majul", Email: "dayito@example.com", Address: "Calle Falsa 123"},
	})
	require.NoError(t, err)
	a.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return a, board
}

func lastNotice(t *testing.T, ui *ScriptedUI) Notice {
	t.Helper()
	notices := ui.Notices()
	require.NotEmpty(t, notices)
	return notices[len(notices)-1]
}

// --- Tests ---

type staticSource struct {
	products []product.Product
	err      error
}

func (s staticSource) List(context.Context) ([]product.Product, error) {
	return s.products, s.err
}

func TestLoadCatalog(t *testing.T) {
	ctx := context.Background()
	board := view.NewBoard(view.NewFormatter("en-US"))
	store := cart.NewStore(memory.New(), cart.WithView(board))
	a, err := New(store, board.Formatter(), Config{})
	require.NoError(t, err)

	ui := &ScriptedUI{}
	require.NoError(t, a.LoadCatalog(ctx, ui, staticSource{products: testCatalog}))
	assert.Empty(t, ui.Notices())
	assert.Len(t, board.Products(), 2)

	ui = &ScriptedUI{}
	err = a.LoadCatalog(ctx, ui, staticSource{err: errors.New("connection refused")})
	var loadErr *catalog.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, LevelError, lastNotice(t, ui).Level)
	assert.Len(t, store.Catalog(), 2, "failed reload keeps the previous catalog")
}

func TestAddToCart_Toast(t *testing.T) {
	a, board := newTestActions(t, memory.New())
	ui := &ScriptedUI{}

	require.NoError(t, a.AddToCart(context.Background(), ui, 1, 2))

	n := lastNotice(t, ui)
	assert.Equal(t, LevelSuccess, n.Level)
	assert.True(t, n.Toast)
	assert.Equal(t, "Mate agregado al carrito", n.Title)
	assert.Equal(t, 2, board.Cart().Count)
}

func TestAddToCart_Errors(t *testing.T) {
	tests := []struct {
		name      string
		productID int64
		quantity  int
		wantLevel Level
		wantTitle string
	}{
		{name: "unknown product", productID: 99, quantity: 1, wantLevel: LevelError, wantTitle: "Error"},
		{name: "insufficient stock", productID: 2, quantity: 3, wantLevel: LevelWarning, wantTitle: "Sin stock"},
		{name: "invalid quantity", productID: 1, quantity: 0, wantLevel: LevelWarning, wantTitle: "Cantidad inválida"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestActions(t, memory.New())
			ui := &ScriptedUI{}

			err := a.AddToCart(context.Background(), ui, tt.productID, tt.quantity)
			require.Error(t, err)

			n := lastNotice(t, ui)
			assert.Equal(t, tt.wantLevel, n.Level)
			assert.Equal(t, tt.wantTitle, n.Title)
			assert.Zero(t, a.Store().Count())
		})
	}
}

func TestAddToCart_StorageFailure(t *testing.T) {
	a, _ := newTestActions(t, &failingStorage{Storage: memory.New()})
	ui := &ScriptedUI{}

	err := a.AddToCart(context.Background(), ui, 1, 1)
	require.Error(t, err)
	assert.Equal(t, "No se pudo guardar el carrito", lastNotice(t, ui).Text)
}

func TestRemoveLine_RequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestActions(t, memory.New())
	require.NoError(t, a.AddToCart(ctx, &ScriptedUI{}, 1, 1))

	confirmed, err := a.RemoveLine(ctx, &ScriptedUI{Confirmed: false}, 1)
	require.NoError(t, err)
	assert.False(t, confirmed)
	assert.Equal(t, 1, a.Store().Count())

	ui := &ScriptedUI{Confirmed: true}
	confirmed, err = a.RemoveLine(ctx, ui, 1)
	require.NoError(t, err)
	assert.True(t, confirmed)
	assert.Zero(t, a.Store().Count())
	require.Len(t, ui.Prompts(), 1)
	assert.Equal(t, "¿Eliminar producto?", ui.Prompts()[0].Title)
}

func TestRemoveLine_UIError(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestActions(t, memory.New())
	require.NoError(t, a.AddToCart(ctx, &ScriptedUI{}, 1, 1))

	_, err := a.RemoveLine(ctx, &failingUI{}, 1)
	require.Error(t, err)
	assert.Equal(t, 1, a.Store().Count())
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	a, board := newTestActions(t, memory.New())
	require.NoError(t, a.AddToCart(ctx, &ScriptedUI{}, 2, 1))

	ui := &ScriptedUI{}
	var stockErr *cart.InsufficientStockError
	require.ErrorAs(t, a.SetQuantity(ctx, ui, 2, 3), &stockErr)
	assert.Equal(t, "Sin stock", lastNotice(t, ui).Title)

	require.NoError(t, a.SetQuantity(ctx, ui, 2, 2))
	assert.Equal(t, "$80", board.Cart().TotalText)

	require.NoError(t, a.SetQuantity(ctx, ui, 2, 0))
	assert.Equal(t, view.EmptyCartMessage, board.Cart().Message)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestActions(t, memory.New())

	ui := &ScriptedUI{Confirmed: true}
	_, err := a.Clear(ctx, ui)
	require.ErrorIs(t, err, cart.ErrEmptyCart)
	assert.Equal(t, Notice{Level: LevelInfo, Title: "Carrito vacío"}, lastNotice(t, ui))
	assert.Empty(t, ui.Prompts())

	require.NoError(t, a.AddToCart(ctx, &ScriptedUI{}, 1, 2))

	confirmed, err := a.Clear(ctx, &ScriptedUI{Confirmed: false})
	require.NoError(t, err)
	assert.False(t, confirmed)
	assert.Equal(t, 2, a.Store().Count())

	ui = &ScriptedUI{Confirmed: true}
	confirmed, err = a.Clear(ctx, ui)
	require.NoError(t, err)
	assert.True(t, confirmed)
	assert.Zero(t, a.Store().Count())
	assert.Equal(t, "Carrito vaciado", lastNotice(t, ui).Title)
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	a, board := newTestActions(t, memory.New())
	require.NoError(t, a.AddToCart(ctx, &ScriptedUI{}, 1, 3))
	require.NoError(t, a.AddToCart(ctx, &ScriptedUI{}, 2, 2))

	ui := &ScriptedUI{
		Confirmed:   true,
		Customer:    &Customer{Name: "Ana"},
		SkipLoading: true,
	}
	receipt, err := a.Checkout(ctx, ui)
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.NotEmpty(t, receipt.ID)
	assert.Equal(t, "Ana", receipt.Customer.Name)
	assert.Equal(t, "dayito@example.com", receipt.Customer.Email)
	assert.Equal(t, 5, receipt.Count)
	assert.True(t, decimal.NewFromInt(380).Equal(receipt.Total))
	assert.Equal(t, "$380", receipt.TotalText)

	prompts := ui.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0].Text, "Total a pagar: $380")
	assert.Contains(t, prompts[0].Text, "Nombre: Ana")
	assert.Equal(t, "Compra exitosa", lastNotice(t, ui).Title)

	grid := board.Products()
	require.Len(t, grid, 2)
	assert.Equal(t, 2, grid[0].Stock)
	assert.Equal(t, 0, grid[1].Stock)
	assert.True(t, grid[1].SoldOut)
	assert.Zero(t, board.Cart().Count)
}

func TestCheckout_Dismissed(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestActions(t, memory.New())
	require.NoError(t, a.AddToCart(ctx, &ScriptedUI{}, 1, 1))

	receipt, err := a.Checkout(ctx, &ScriptedUI{DismissForm: true})
	require.NoError(t, err)
	assert.Nil(t, receipt)

	receipt, err = a.Checkout(ctx, &ScriptedUI{Confirmed: false})
	require.NoError(t, err)
	assert.Nil(t, receipt)

	assert.Equal(t, 1, a.Store().Count())
	p, _ := a.Store().Product(1)
	assert.Equal(t, 5, p.Stock)
}

func TestCheckout_Empty(t *testing.T) {
	a, _ := newTestActions(t, memory.New())
	ui := &ScriptedUI{Confirmed: true}

	_, err := a.Checkout(context.Background(), ui)
	require.ErrorIs(t, err, cart.ErrEmptyCart)
	assert.Equal(t, "No hay items en el carrito", lastNotice(t, ui).Title)
}

func TestCheckout_LoadingCancelled(t *testing.T) {
	a, _ := newTestActions(t, memory.New())
	require.NoError(t, a.AddToCart(context.Background(), &ScriptedUI{}, 1, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Checkout(ctx, &ScriptedUI{Confirmed: true})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, a.Store().Count())
}
