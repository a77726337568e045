package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront-cart/internal/catalog"
	"github.com/xenking/storefront-cart/internal/domain/cart"
	"github.com/xenking/storefront-cart/internal/domain/product"
	"github.com/xenking/storefront-cart/internal/handler"
	"github.com/xenking/storefront-cart/internal/storage/file"
	"github.com/xenking/storefront-cart/internal/storage/memory"
	"github.com/xenking/storefront-cart/internal/storage/postgres"
	"github.com/xenking/storefront-cart/internal/storage/redis"
	"github.com/xenking/storefront-cart/internal/storefront"
	"github.com/xenking/storefront-cart/internal/view"
	"github.com/xenking/storefront-cart/pkg/health"
	"github.com/xenking/storefront-cart/pkg/httpmiddleware"
)

// cartStorage is a cart.Storage the readiness probe can ping.
type cartStorage interface {
	cart.Storage
	health.Pinger
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("catalog", cfg.Catalog.Source),
	)

	// PostgreSQL pool + migrations, only when a component needs it.
	var pool *pgxpool.Pool
	if cfg.needsPostgres() {
		var err error
		if pool, err = postgres.NewPool(ctx, cfg.Storage.DatabaseURL); err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
	}

	// Cart storage.
	storage, closeStorage, err := openStorage(cfg.Storage, pool)
	if err != nil {
		return errors.Wrap(err, "open cart storage")
	}
	defer closeStorage()

	// Domain: store rendering into the board, actions on top.
	board := view.NewBoard(view.NewFormatter(cfg.Locale))
	store := cart.NewStore(storage,
		cart.WithKey(cfg.Storage.Key),
		cart.WithView(board),
		cart.WithLogger(lg.Named("cart")),
	)
	actions, err := storefront.New(store, board.Formatter(), storefront.Config{
		PaymentDelay: cfg.Checkout.PaymentDelay,
		DefaultCustomer: storefront.Customer{
			Name:    cfg.Checkout.DefaultName,
			Email:   cfg.Checkout.DefaultEmail,
			Address: cfg.Checkout.DefaultAddress,
		},
	},
		storefront.WithTracerProvider(m.TracerProvider()),
		storefront.WithMeterProvider(m.MeterProvider()),
	)
	if err != nil {
		return errors.Wrap(err, "create actions")
	}

	// Catalog fetch and cart restore are independent: run them together.
	src := catalogSource(cfg.Catalog, pool, m)
	startupUI := &storefront.ScriptedUI{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loadCtx, cancel := context.WithTimeout(gctx, cfg.Catalog.Timeout)
		defer cancel()
		if err := actions.LoadCatalog(loadCtx, startupUI, src); err != nil {
			// Serve with an empty catalog; the cart is still restorable.
			lg.Error("Catalog unavailable", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		store.Restore(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "startup")
	}
	lg.Info("Cart restored",
		zap.Int("items", store.Count()),
		zap.String("total", store.Total().String()),
	)

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("storage", 5*time.Second, health.PingCheck(storage))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// HTTP handlers.
	h := handler.NewHandler(handler.HandlerConfig{
		ImageBaseURL:   cfg.ImageBaseURL,
		CatalogNotices: startupUI.Notices(),
	}, actions, board)

	mux := chi.NewRouter()
	mux.Get("/livez", healthSvc.LiveEndpoint)
	mux.Get("/readyz", healthSvc.ReadyEndpoint)
	mux.Mount("/api", h.Routes())
	routeFinder := httpmiddleware.MakeRouteFinder(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		// Checkout holds the request for the simulated payment.
		WriteTimeout:   10*time.Second + cfg.Checkout.PaymentDelay,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Addr:           cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", httpmiddleware.RequestIDHeader},
				ExposeHeaders:    []string{httpmiddleware.RequestIDHeader},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				RPS:   cfg.RateLimit.RPS,
				Burst: cfg.RateLimit.Burst,
			}),
			httpmiddleware.Instrument("storefront-api", routeFinder, m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Labeler(routeFinder),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// openStorage returns the configured cart storage and a func releasing it.
func openStorage(cfg StorageConfig, pool *pgxpool.Pool) (cartStorage, func(), error) {
	nop := func() {}
	switch cfg.Driver {
	case StorageMemory:
		return memory.New(), nop, nil
	case StorageFile:
		s, err := file.New(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, nop, nil
	case StoragePostgres:
		return postgres.NewCartStorage(pool), nop, nil
	case StorageRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		return redis.New(client), func() { _ = client.Close() }, nil
	default:
		return nil, nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// catalogSource returns the configured product source. The HTTP client is
// instrumented so catalog fetches show up in traces.
func catalogSource(cfg CatalogConfig, pool *pgxpool.Pool, m *app.Telemetry) product.Source {
	switch cfg.Source {
	case CatalogHTTP:
		client := &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
		}
		return catalog.NewHTTPSource(cfg.URL, client)
	case CatalogPostgres:
		return postgres.NewProductRepository(pool)
	default:
		return catalog.NewFileSource(cfg.Path)
	}
}
