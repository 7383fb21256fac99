// Package config handles loading and validating the cartsync configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Cart          CartConfig          `yaml:"cart"`
	Gateway       GatewayConfig       `yaml:"gateway"`
	State         StateConfig         `yaml:"state"`
	Page          PageConfig          `yaml:"page"`
	Watchdog      WatchdogConfig      `yaml:"watchdog"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Tracing       TracingConfig       `yaml:"tracing"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// CartConfig describes the remote cart resource and the text shown to shoppers.
type CartConfig struct {
	APIBase       string         `yaml:"api_base"`
	ItemsPath     string         `yaml:"items_path"`     // default: /items/
	QuantityParam string         `yaml:"quantity_param"` // default: quantity
	Debounce      time.Duration  `yaml:"debounce"`       // default: 500ms
	Messages      MessagesConfig `yaml:"messages"`
}

// MessagesConfig holds the localized strings rendered into the page.
type MessagesConfig struct {
	CartError502 string `yaml:"cart_error_502"`
	EmptyCart    string `yaml:"empty_cart"`
}

// GatewayConfig defines the HTTP client used against the cart API.
type GatewayConfig struct {
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines outbound request rate limiting. A zero PerSecond
// after defaults means unlimited.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// StateConfig selects where the persisted client tokens live.
type StateConfig struct {
	Backend   string `yaml:"backend"` // memory, file
	Path      string `yaml:"path"`
	CartID    string `yaml:"cart_id"` // seed value for the memory backend
	ItemCount int    `yaml:"item_count"`
}

// PageConfig points at the storefront markup served by the page host.
type PageConfig struct {
	Path string `yaml:"path"`
}

// WatchdogConfig defines the periodic lock-state refresh. Zero disables it.
type WatchdogConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// NotificationsConfig defines outbound event targets.
type NotificationsConfig struct {
	Webhook WebhookConfig `yaml:"webhook"`
}

// WebhookConfig defines the cart/updated webhook.
type WebhookConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

// TracingConfig defines the OTLP trace exporter.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// State backends.
const (
	StateBackendMemory = "memory"
	StateBackendFile   = "file"
)

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes raw YAML the same way Load does.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyCartDefaults(&cfg.Cart)
	applyGatewayDefaults(&cfg.Gateway)
	applyStateDefaults(&cfg.State)
	applyTracingDefaults(&cfg.Tracing)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyCartDefaults(c *CartConfig) {
	if c.ItemsPath == "" {
		c.ItemsPath = "/items/"
	}
	if c.QuantityParam == "" {
		c.QuantityParam = "quantity"
	}
	if c.Debounce == 0 {
		c.Debounce = 500 * time.Millisecond
	}
	if c.Messages.CartError502 == "" {
		c.Messages.CartError502 = "There was an error updating your cart. Please try again."
	}
	if c.Messages.EmptyCart == "" {
		c.Messages.EmptyCart = "Your cart is empty."
	}
}

func applyGatewayDefaults(g *GatewayConfig) {
	if g.Timeout == 0 {
		g.Timeout = 15 * time.Second
	}
	if g.RateLimit.Burst == 0 {
		g.RateLimit.Burst = 1
	}
}

func applyStateDefaults(s *StateConfig) {
	if s.Backend == "" {
		s.Backend = StateBackendMemory
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "cartsync"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Cart.APIBase == "" {
		errs = append(errs, fmt.Errorf("cart.api_base is required"))
	} else if u, err := url.Parse(cfg.Cart.APIBase); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("cart.api_base must be an absolute URL (got %q)", cfg.Cart.APIBase))
	}

	if cfg.Cart.Debounce < 0 {
		errs = append(errs, fmt.Errorf("cart.debounce must not be negative"))
	}
	if cfg.Gateway.RateLimit.PerSecond < 0 {
		errs = append(errs, fmt.Errorf("gateway.rate_limit.per_second must not be negative"))
	}
	if cfg.Watchdog.Interval < 0 {
		errs = append(errs, fmt.Errorf("watchdog.interval must not be negative"))
	}

	switch cfg.State.Backend {
	case StateBackendMemory:
	case StateBackendFile:
		if cfg.State.Path == "" {
			errs = append(errs, fmt.Errorf("state.path is required when backend is file"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"state.backend must be one of: memory, file (got %q)", cfg.State.Backend,
		))
	}

	if cfg.Notifications.Webhook.Enabled && cfg.Notifications.Webhook.URL == "" {
		errs = append(errs, fmt.Errorf("notifications.webhook.url is required when enabled"))
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, fmt.Errorf("tracing.endpoint is required when enabled"))
	}

	return errors.Join(errs...)
}
