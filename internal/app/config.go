package app

import (
	"os"
	"slices"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (CART_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	ImageBaseURL string `default:"" usage:"Base URL prepended to product image paths" flag:"image-base-url"`
	Locale       string `default:"es-AR" usage:"Locale used to format prices"`
	Catalog      CatalogConfig
	Storage      StorageConfig
	Checkout     CheckoutConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// Catalog sources.
const (
	CatalogHTTP     = "http"
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
)

// CatalogConfig selects where the product list is loaded from.
type CatalogConfig struct {
	Source  string        `default:"file" usage:"Catalog source: http, file or postgres"`
	URL     string        `usage:"Catalog URL for the http source"`
	Path    string        `default:"db/seed/products.json" usage:"Catalog file for the file source (.gz supported)"`
	Timeout time.Duration `default:"10s" usage:"Catalog load timeout"`
}

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// StorageConfig selects the cart persistence backend.
type StorageConfig struct {
	Driver      string `default:"file" usage:"Cart storage: memory, file, postgres or redis"`
	Key         string `default:"proyecto_carrito_v1" usage:"Key the cart is persisted under"`
	Path        string `default:"data" usage:"Directory for the file driver"`
	DatabaseURL string `usage:"PostgreSQL connection URL (CART_STORAGE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisAddr   string `default:"localhost:6379" usage:"Redis address for the redis driver" flag:"redis-addr"`
	RedisDB     int    `default:"0" usage:"Redis database for the redis driver" flag:"redis-db"`
}

// CheckoutConfig controls the simulated payment and the prefilled form.
type CheckoutConfig struct {
	PaymentDelay   time.Duration `default:"1s" usage:"Duration of the simulated payment" flag:"payment-delay"`
	DefaultName    string        `default:"Daiana Majul" usage:"Prefilled customer name"`
	DefaultEmail   string        `default:"dayito@example.com" usage:"Prefilled customer email"`
	DefaultAddress string        `default:"Calle Falsa 123" usage:"Prefilled customer address"`
}

// RateLimitConfig controls the per-client token bucket limiter.
type RateLimitConfig struct {
	RPS   float64 `default:"10" usage:"Sustained requests per second per client"`
	Burst int     `default:"20" usage:"Burst size per client"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files, applies platform defaults and validates the result.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CART",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the conventional DATABASE_URL and PORT variables
// set by hosting platforms.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		c.Storage.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

// Validate checks that the selected drivers have what they need.
func (c *Config) Validate() error {
	if !slices.Contains([]string{StorageMemory, StorageFile, StoragePostgres, StorageRedis}, c.Storage.Driver) {
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if !slices.Contains([]string{CatalogHTTP, CatalogFile, CatalogPostgres}, c.Catalog.Source) {
		return errors.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	if c.Storage.Key == "" {
		return errors.New("storage key is required")
	}
	if c.Catalog.Source == CatalogHTTP && c.Catalog.URL == "" {
		return errors.New("catalog URL is required for the http source")
	}
	if c.Catalog.Source == CatalogFile && c.Catalog.Path == "" {
		return errors.New("catalog path is required for the file source")
	}
	if c.needsPostgres() && c.Storage.DatabaseURL == "" {
		return errors.New("database URL is required: set CART_STORAGE_DATABASE_URL or DATABASE_URL")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit RPS and burst must be positive")
	}
	if c.Checkout.PaymentDelay < 0 {
		return errors.New("payment delay must not be negative")
	}
	return nil
}

func (c *Config) needsPostgres() bool {
	return c.Storage.Driver == StoragePostgres || c.Catalog.Source == CatalogPostgres
}
