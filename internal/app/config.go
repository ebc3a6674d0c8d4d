package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/grocer-kart/internal/domain/cart"
)

// Config holds the complete application configuration, loadable from
// environment variables (GROCER_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL (GROCER_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	APIKeyPepper string `usage:"HMAC pepper for API key hashing (GROCER_API_KEY_PEPPER)" flag:"api-key-pepper"`
	BcryptCost   int    `default:"10" usage:"bcrypt cost for password hashes" flag:"bcrypt-cost"`
	Store        StoreConfig
	Reference    ReferenceConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Graceful     GracefulConfig
}

// StoreConfig holds the business limits of the shop.
type StoreConfig struct {
	MaxAddresses    int    `default:"5" usage:"Maximum saved addresses per user" flag:"max-addresses"`
	MaxCartQuantity int    `default:"5" usage:"Maximum quantity of a single cart line" flag:"max-cart-quantity"`
	Timezone        string `default:"Asia/Kolkata" usage:"Timezone for coupon windows and earnings days"`
}

// ReferenceConfig is the static data served to the shopper app.
type ReferenceConfig struct {
	ContactPhone string   `default:"" usage:"Customer care phone number" flag:"contact-phone"`
	ContactEmail string   `default:"" usage:"Customer care email" flag:"contact-email"`
	ContactHours string   `default:"" usage:"Customer care working hours" flag:"contact-hours"`
	Pincodes     []string `usage:"Serviceable postal codes"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
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
// files, then applies platform-specific defaults and validates the result.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "GROCER",
		SkipFlags: true,
		Files:     []string{"config.yaml", "/etc/grocer/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL is required: set GROCER_DATABASE_URL or DATABASE_URL")
	}
	if c.Store.MaxAddresses < 1 {
		return errors.Errorf("store max addresses must be positive, got %d", c.Store.MaxAddresses)
	}
	if q := c.Store.MaxCartQuantity; q < 1 || q > cart.MaxQuantity {
		return errors.Errorf("store max cart quantity must be in [1, %d], got %d", cart.MaxQuantity, q)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured store timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Store.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %q", c.Store.Timezone)
	}
	return loc, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's GROCER_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
