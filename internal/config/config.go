package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Store     StoreConfig     `envPrefix:"STORE_"`
	Logger    LoggerConfig    `envPrefix:"LOG_"`
	Security  SecurityConfig  `envPrefix:"SECURITY_"`
	Analytics AnalyticsConfig `envPrefix:"ANALYTICS_"`
}

type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"8084"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

type StoreConfig struct {
	// Driver selects the Query Interface backend: "sqlite" or "memory".
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	Path   string `env:"PATH" envDefault:"pos.db"`
}

type LoggerConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS    int      `env:"RATE_LIMIT_RPS" envDefault:"100"`
	RateLimitBurst  int      `env:"RATE_LIMIT_BURST" envDefault:"10"`
	AllowedOrigins  []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:8084"`
	TrustedProxies  []string `env:"TRUSTED_PROXIES" envDefault:"127.0.0.1"`
}

// AnalyticsConfig collects the business assumptions the forecasting formulas
// lean on. The defaults are the documented heuristics; operators can override
// any of them per deployment.
type AnalyticsConfig struct {
	OrderCost          float64       `env:"ORDER_COST" envDefault:"100"`
	HoldingCostRate    float64       `env:"HOLDING_COST_RATE" envDefault:"0.25"`
	CLVHorizonYears    float64       `env:"CLV_HORIZON_YEARS" envDefault:"3"`
	MinLifespanYears   float64       `env:"MIN_LIFESPAN_YEARS" envDefault:"0.25"`
	LeadTimeDays       int           `env:"LEAD_TIME_DAYS" envDefault:"7"`
	SafetyStockDays    int           `env:"SAFETY_STOCK_DAYS" envDefault:"3"`
	ProfitWindowDays   int           `env:"PROFIT_WINDOW_DAYS" envDefault:"30"`
	DemandLookbackDays int           `env:"DEMAND_LOOKBACK_DAYS" envDefault:"60"`
	CacheTTL           time.Duration `env:"CACHE_TTL" envDefault:"30s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store path cannot be empty for the sqlite driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store driver %q, must be sqlite or memory", c.Store.Driver)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 || c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit RPS and burst must be positive")
	}

	return c.Analytics.validate()
}

func (a AnalyticsConfig) validate() error {
	if a.OrderCost <= 0 {
		return fmt.Errorf("order cost must be positive")
	}
	if a.HoldingCostRate <= 0 || a.HoldingCostRate > 1 {
		return fmt.Errorf("holding cost rate must be in (0, 1]")
	}
	if a.CLVHorizonYears <= 0 {
		return fmt.Errorf("CLV horizon must be positive")
	}
	if a.MinLifespanYears <= 0 {
		return fmt.Errorf("minimum lifespan must be positive")
	}
	if a.LeadTimeDays < 0 || a.SafetyStockDays < 0 {
		return fmt.Errorf("lead time and safety stock days cannot be negative")
	}
	if a.ProfitWindowDays <= 0 || a.DemandLookbackDays <= 0 {
		return fmt.Errorf("profit window and demand lookback must be positive")
	}
	if a.CacheTTL < 0 {
		return fmt.Errorf("cache TTL cannot be negative")
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
