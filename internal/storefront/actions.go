// Package storefront implements the user-facing cart commands: it asks the UI
// for confirmations, invokes the cart store and reports outcomes as notices.
package storefront

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/storefront-cart/internal/catalog"
	"github.com/xenking/storefront-cart/internal/domain/cart"
	"github.com/xenking/storefront-cart/internal/domain/product"
	"github.com/xenking/storefront-cart/internal/view"
)

// Config holds checkout behaviour.
type Config struct {
	// PaymentDelay is how long the simulated payment indicator is shown.
	PaymentDelay time.Duration
	// DefaultCustomer prefills the checkout form.
	DefaultCustomer Customer
}

// Receipt describes a completed simulated purchase.
type Receipt struct {
	ID        string
	Customer  Customer
	Lines     []cart.Line
	Count     int
	Total     decimal.Decimal
	TotalText string
	PlacedAt  time.Time
}

// Option configures Actions.
type Option func(*Actions)

// WithTracerProvider sets the tracer provider for command spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *Actions) { a.tracer = tp.Tracer("storefront") }
}

// WithMeterProvider sets the meter provider for command counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(a *Actions) { a.meter = mp.Meter("storefront") }
}

// Actions orchestrates cart commands. The store methods stay synchronous;
// dialogs are awaited here, outside the store lock.
type Actions struct {
	store  *cart.Store
	format *view.Formatter
	cfg    Config
	now    func() time.Time

	tracer   trace.Tracer
	meter    metric.Meter
	commands metric.Int64Counter
}

// New creates Actions over store.
func New(store *cart.Store, format *view.Formatter, cfg Config, opts ...Option) (*Actions, error) {
	a := &Actions{
		store:  store,
		format: format,
		cfg:    cfg,
		now:    time.Now,
		tracer: tracenoop.NewTracerProvider().Tracer("storefront"),
		meter:  metricnoop.NewMeterProvider().Meter("storefront"),
	}
	for _, o := range opts {
		o(a)
	}

	commands, err := a.meter.Int64Counter("storefront.commands",
		metric.WithDescription("Cart commands by name and result"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create commands counter")
	}
	a.commands = commands
	return a, nil
}

// Store returns the underlying cart store.
func (a *Actions) Store() *cart.Store { return a.store }

func (a *Actions) start(ctx context.Context, command string) (context.Context, func(result string, err error)) {
	ctx, span := a.tracer.Start(ctx, "storefront."+command)
	return ctx, func(result string, err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			zctx.From(ctx).Info("Command rejected",
				zap.String("command", command),
				zap.String("result", result),
				zap.Error(err),
			)
		}
		span.SetAttributes(attribute.String("storefront.result", result))
		span.End()
		a.commands.Add(ctx, 1, metric.WithAttributes(
			attribute.String("command", command),
			attribute.String("result", result),
		))
	}
}

// LoadCatalog fetches the catalog from src and hands it to the store. On
// failure the user gets a blocking error notice and the catalog stays empty;
// the returned error is a *catalog.LoadError.
func (a *Actions) LoadCatalog(ctx context.Context, ui UI, src product.Source) (err error) {
	ctx, done := a.start(ctx, "load_catalog")
	result := "ok"
	defer func() { done(result, err) }()

	products, err := catalog.Load(ctx, src)
	if err != nil {
		result = "load_failed"
		ui.Notify(ctx, Notice{
			Level: LevelError,
			Title: "Error",
			Text:  "No se pudieron cargar los productos. Revisa el catálogo",
		})
		return err
	}
	a.store.SetCatalog(products)
	zctx.From(ctx).Info("Catalog loaded", zap.Int("products", len(products)))
	return nil
}

// AddToCart adds quantity units of a product and shows a success toast.
func (a *Actions) AddToCart(ctx context.Context, ui UI, productID int64, quantity int) (err error) {
	ctx, done := a.start(ctx, "add")
	result := "ok"
	defer func() { done(result, err) }()

	line, err := a.store.Add(ctx, productID, quantity)
	if err != nil {
		result = a.reportMutationError(ctx, ui, err)
		return err
	}

	ui.Notify(ctx, Notice{
		Level: LevelSuccess,
		Title: fmt.Sprintf("%s agregado al carrito", line.Title),
		Toast: true,
	})
	return nil
}

// RemoveLine asks for confirmation and removes the product's line. It reports
// whether the removal was confirmed.
func (a *Actions) RemoveLine(ctx context.Context, ui UI, productID int64) (confirmed bool, err error) {
	ctx, done := a.start(ctx, "remove")
	result := "ok"
	defer func() { done(result, err) }()

	confirmed, err = ui.Confirm(ctx, Prompt{
		Title: "¿Eliminar producto?",
		Text:  "Se quitará del carrito",
	})
	if err != nil {
		result = "ui_error"
		return false, errors.Wrap(err, "confirm remove")
	}
	if !confirmed {
		result = "dismissed"
		return false, nil
	}

	if err := a.store.Remove(ctx, productID); err != nil {
		result = a.reportMutationError(ctx, ui, err)
		return true, err
	}
	return true, nil
}

// SetQuantity changes a line's quantity; zero or less removes the line.
func (a *Actions) SetQuantity(ctx context.Context, ui UI, productID int64, quantity int) (err error) {
	ctx, done := a.start(ctx, "set_quantity")
	result := "ok"
	defer func() { done(result, err) }()

	if err := a.store.SetQuantity(ctx, productID, quantity); err != nil {
		result = a.reportMutationError(ctx, ui, err)
		return err
	}
	return nil
}

// Clear asks for confirmation and empties the cart. An empty cart yields an
// informational notice and cart.ErrEmptyCart.
func (a *Actions) Clear(ctx context.Context, ui UI) (confirmed bool, err error) {
	ctx, done := a.start(ctx, "clear")
	result := "ok"
	defer func() { done(result, err) }()

	if a.store.Count() == 0 {
		result = a.reportMutationError(ctx, ui, cart.ErrEmptyCart)
		return false, cart.ErrEmptyCart
	}

	confirmed, err = ui.Confirm(ctx, Prompt{
		Title:       "Vaciar carrito?",
		ConfirmText: "Sí, vaciar",
	})
	if err != nil {
		result = "ui_error"
		return false, errors.Wrap(err, "confirm clear")
	}
	if !confirmed {
		result = "dismissed"
		return false, nil
	}

	if err := a.store.Clear(ctx); err != nil {
		result = a.reportMutationError(ctx, ui, err)
		return true, err
	}
	ui.Notify(ctx, Notice{Level: LevelSuccess, Title: "Carrito vaciado"})
	return true, nil
}

// Checkout collects the customer form, asks for a final confirmation, shows
// the payment indicator and then debits stock and empties the cart. A nil
// Receipt with a nil error means the user dismissed one of the dialogs.
func (a *Actions) Checkout(ctx context.Context, ui UI) (receipt *Receipt, err error) {
	ctx, done := a.start(ctx, "checkout")
	result := "ok"
	defer func() { done(result, err) }()

	if a.store.Count() == 0 {
		ui.Notify(ctx, Notice{Level: LevelInfo, Title: "No hay items en el carrito"})
		result = "empty"
		return nil, cart.ErrEmptyCart
	}

	customer, err := ui.CustomerForm(ctx, a.cfg.DefaultCustomer)
	if err != nil {
		result = "ui_error"
		return nil, errors.Wrap(err, "customer form")
	}
	if customer == nil {
		result = "dismissed"
		return nil, nil
	}

	confirmed, err := ui.Confirm(ctx, Prompt{
		Title: "Confirmar compra",
		Text: fmt.Sprintf("Total a pagar: %s\nNombre: %s\nEmail: %s",
			a.format.Money(a.store.Total()), customer.Name, customer.Email),
		ConfirmText: "Pagar (simulado)",
	})
	if err != nil {
		result = "ui_error"
		return nil, errors.Wrap(err, "confirm checkout")
	}
	if !confirmed {
		result = "dismissed"
		return nil, nil
	}

	if err := ui.Loading(ctx, "Procesando pago...", a.cfg.PaymentDelay); err != nil {
		result = "ui_error"
		return nil, errors.Wrap(err, "payment indicator")
	}

	res, err := a.store.Checkout(ctx)
	if err != nil {
		result = a.reportMutationError(ctx, ui, err)
		if res == nil {
			return nil, err
		}
	}

	receipt = &Receipt{
		ID:        uuid.New().String(),
		Customer:  *customer,
		Lines:     res.Lines,
		Count:     res.Count,
		Total:     res.Total,
		TotalText: a.format.Money(res.Total),
		PlacedAt:  a.now(),
	}
	ui.Notify(ctx, Notice{
		Level: LevelSuccess,
		Title: "Compra exitosa",
		Text:  "¡Gracias por tu compra! (simulado)",
	})
	zctx.From(ctx).Info("Checkout completed",
		zap.String("receipt_id", receipt.ID),
		zap.Int("items", receipt.Count),
		zap.String("total", receipt.Total.String()),
	)
	return receipt, err
}

// reportMutationError shows the notice matching a store error and returns the
// metric result label.
func (a *Actions) reportMutationError(ctx context.Context, ui UI, err error) string {
	var (
		notFound *cart.ProductNotFoundError
		noStock  *cart.InsufficientStockError
		badQty   *cart.InvalidQuantityError
	)
	switch {
	case errors.As(err, &notFound):
		ui.Notify(ctx, Notice{Level: LevelError, Title: "Error", Text: "Producto no encontrado"})
		return "not_found"
	case errors.As(err, &noStock):
		ui.Notify(ctx, Notice{Level: LevelWarning, Title: "Sin stock", Text: "No hay suficiente stock para esa cantidad"})
		return "insufficient_stock"
	case errors.As(err, &badQty):
		ui.Notify(ctx, Notice{Level: LevelWarning, Title: "Cantidad inválida", Text: "La cantidad debe ser mayor a cero"})
		return "invalid_quantity"
	case errors.Is(err, cart.ErrEmptyCart):
		ui.Notify(ctx, Notice{Level: LevelInfo, Title: "Carrito vacío"})
		return "empty"
	default:
		ui.Notify(ctx, Notice{Level: LevelError, Title: "Error", Text: "No se pudo guardar el carrito"})
		return "storage_error"
	}
}
