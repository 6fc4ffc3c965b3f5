// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds the complete application configuration.
type Config struct {
	Server           ServerConfig
	Database         DatabaseConfig
	Redis            RedisConfig
	ExchangeRateHost ExchangeRateHostConfig `mapstructure:"exchangerate_host"`
	Frankfurter      FrankfurterConfig      `mapstructure:"frankfurter"`
	Yahoo            YahooConfig            `mapstructure:"yahoo"`
	Arbitrage        ArbitrageConfig        `mapstructure:"arbitrage"`
	Forecast         ForecastConfig         `mapstructure:"forecast"`
	Signal           SignalConfig           `mapstructure:"signal"`
	Archive          ArchiveConfig          `mapstructure:"archive"`
	Worker           WorkerConfig
	Cache            CacheConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int  `mapstructure:"port"`
	ServeSwagger  bool `mapstructure:"serve_swagger"`
	ServeAsynqmon bool `mapstructure:"serve_asynqmon"`
	ServeMetrics  bool `mapstructure:"serve_metrics"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
	DSN                string
}

// RedisConfig holds connection settings for both Redis instances.
type RedisConfig struct {
	AsynqAddr string `mapstructure:"asynq_addr"` // Redis instance for the archive task queue.
	CacheAddr string `mapstructure:"cache_addr"` // Redis instance for the rate cache (redis backend only).
}

// ExchangeRateHostConfig holds settings for the exchangerate.host provider.
type ExchangeRateHostConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// FrankfurterConfig holds settings for the primary interbank provider.
type FrankfurterConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// YahooConfig holds settings for the chart API used as the fiat fallback
// and as the daily price-history source.
type YahooConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// ArbitrageConfig holds the margin model.
type ArbitrageConfig struct {
	BankMargin     float64 `mapstructure:"bank_margin"`
	PlatformMargin float64 `mapstructure:"platform_margin"`
	CryptoPremium  float64 `mapstructure:"crypto_premium"`
}

// ForecastConfig holds forecasting settings.
type ForecastConfig struct {
	Horizon               int     `mapstructure:"horizon"`
	MaxHorizon            int     `mapstructure:"max_horizon"`
	HistoryRange          string  `mapstructure:"history_range"`
	HistoryPoints         int     `mapstructure:"history_points"`
	TimeoutSec            int     `mapstructure:"timeout_sec"`
	ArimaP                int     `mapstructure:"arima_p"`
	ArimaD                int     `mapstructure:"arima_d"`
	ArimaQ                int     `mapstructure:"arima_q"`
	ChangepointPriorScale float64 `mapstructure:"changepoint_prior_scale"`
}

// SignalConfig holds the trend-deviation advisor settings.
type SignalConfig struct {
	EMAPeriod  int    `mapstructure:"ema_period"`
	Lookback   string `mapstructure:"lookback"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// ArchiveConfig holds quote archival settings.
type ArchiveConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	SubmitTimeoutSec int  `mapstructure:"submit_timeout_sec"`
}

// WorkerConfig holds background worker and task queue settings.
type WorkerConfig struct {
	Concurrency      int `mapstructure:"concurrency"`
	MaxRetry         int `mapstructure:"max_retry"`
	TimeoutSec       int `mapstructure:"timeout_sec"`
	CheckIntervalSec int `mapstructure:"check_interval_sec"`
}

// CacheConfig holds spot-rate caching settings.
type CacheConfig struct {
	Backend          string `mapstructure:"backend"`
	SpotTTLSec       int    `mapstructure:"spot_ttl_sec"`
	SweepIntervalSec int    `mapstructure:"sweep_interval_sec"`
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./internal/config")

	v.SetEnvPrefix("SMARTRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if no config file, we have defaults and env
		fmt.Printf("Config file not found: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeSec <= 0 {
		cfg.Database.ConnMaxLifetimeSec = 300
	}

	cfg.Database.DSN = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Name, cfg.Database.SSLMode)

	return &cfg, nil
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.serve_swagger", true)
	v.SetDefault("server.serve_asynqmon", false)
	v.SetDefault("server.serve_metrics", true)
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "smartrate")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_sec", 300)
	v.SetDefault("redis.asynq_addr", "redis_asynq:6380")
	v.SetDefault("redis.cache_addr", "redis_cache:6381")
	v.SetDefault("exchangerate_host.base_url", "https://api.exchangerate.host")
	v.SetDefault("exchangerate_host.api_key", "")
	v.SetDefault("exchangerate_host.timeout_sec", 2)
	v.SetDefault("frankfurter.base_url", "https://api.frankfurter.dev/v1")
	v.SetDefault("frankfurter.timeout_sec", 2)
	v.SetDefault("yahoo.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("yahoo.timeout_sec", 5)
	v.SetDefault("arbitrage.bank_margin", 0.025)
	v.SetDefault("arbitrage.platform_margin", 0.005)
	v.SetDefault("arbitrage.crypto_premium", 0.015)
	v.SetDefault("forecast.horizon", 7)
	v.SetDefault("forecast.max_horizon", 30)
	v.SetDefault("forecast.history_range", "1y")
	v.SetDefault("forecast.history_points", 30)
	v.SetDefault("forecast.timeout_sec", 10)
	v.SetDefault("forecast.arima_p", 5)
	v.SetDefault("forecast.arima_d", 1)
	v.SetDefault("forecast.arima_q", 0)
	v.SetDefault("forecast.changepoint_prior_scale", 0.05)
	v.SetDefault("signal.ema_period", 5)
	v.SetDefault("signal.lookback", "1mo")
	v.SetDefault("signal.timeout_sec", 5)
	v.SetDefault("archive.enabled", true)
	v.SetDefault("archive.submit_timeout_sec", 2)
	v.SetDefault("worker.concurrency", 2)
	v.SetDefault("worker.max_retry", 3)
	v.SetDefault("worker.timeout_sec", 30)
	v.SetDefault("worker.check_interval_sec", 5)
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.spot_ttl_sec", 60)
	v.SetDefault("cache.sweep_interval_sec", 300)
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}

	if c.Archive.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required"))
		}
		if c.Database.Port <= 0 {
			errs = append(errs, fmt.Errorf("database.port must be positive, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required"))
		}
		if c.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required"))
		}
		if c.Redis.AsynqAddr == "" {
			errs = append(errs, fmt.Errorf("redis.asynq_addr is required (set SMARTRATE_REDIS_ASYNQ_ADDR)"))
		}
		if c.Archive.SubmitTimeoutSec <= 0 {
			errs = append(errs, fmt.Errorf("archive.submit_timeout_sec must be positive, got %d", c.Archive.SubmitTimeoutSec))
		}
		if c.Worker.Concurrency <= 0 {
			errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
		}
		if c.Worker.MaxRetry < 0 {
			errs = append(errs, fmt.Errorf("worker.max_retry must be non-negative, got %d", c.Worker.MaxRetry))
		}
		if c.Worker.TimeoutSec <= 0 {
			errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
		}
		if c.Worker.CheckIntervalSec <= 0 {
			errs = append(errs, fmt.Errorf("worker.check_interval_sec must be positive, got %d", c.Worker.CheckIntervalSec))
		}
	}

	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Redis.CacheAddr == "" {
			errs = append(errs, fmt.Errorf("redis.cache_addr is required for the redis cache backend (set SMARTRATE_REDIS_CACHE_ADDR)"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be %q or %q, got %q", CacheBackendMemory, CacheBackendRedis, c.Cache.Backend))
	}
	if c.Cache.SpotTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.spot_ttl_sec must be positive, got %d", c.Cache.SpotTTLSec))
	}
	if c.Cache.SweepIntervalSec < 0 {
		errs = append(errs, fmt.Errorf("cache.sweep_interval_sec must be non-negative, got %d", c.Cache.SweepIntervalSec))
	}

	if c.Frankfurter.BaseURL == "" {
		errs = append(errs, fmt.Errorf("frankfurter.base_url is required"))
	}
	if c.Frankfurter.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("frankfurter.timeout_sec must be positive, got %d", c.Frankfurter.Timeout))
	}
	if c.Yahoo.BaseURL == "" {
		errs = append(errs, fmt.Errorf("yahoo.base_url is required"))
	}
	if c.Yahoo.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("yahoo.timeout_sec must be positive, got %d", c.Yahoo.Timeout))
	}

	if c.Arbitrage.BankMargin < 0 || c.Arbitrage.BankMargin >= 1 {
		errs = append(errs, fmt.Errorf("arbitrage.bank_margin must be in [0,1), got %v", c.Arbitrage.BankMargin))
	}
	if c.Arbitrage.PlatformMargin < 0 || c.Arbitrage.PlatformMargin >= 1 {
		errs = append(errs, fmt.Errorf("arbitrage.platform_margin must be in [0,1), got %v", c.Arbitrage.PlatformMargin))
	}
	if c.Arbitrage.CryptoPremium <= -1 {
		errs = append(errs, fmt.Errorf("arbitrage.crypto_premium must be greater than -1, got %v", c.Arbitrage.CryptoPremium))
	}

	if c.Forecast.Horizon <= 0 {
		errs = append(errs, fmt.Errorf("forecast.horizon must be positive, got %d", c.Forecast.Horizon))
	}
	if c.Forecast.MaxHorizon < c.Forecast.Horizon {
		errs = append(errs, fmt.Errorf("forecast.max_horizon must be >= forecast.horizon, got %d", c.Forecast.MaxHorizon))
	}
	if c.Forecast.HistoryRange == "" {
		errs = append(errs, fmt.Errorf("forecast.history_range is required"))
	}
	if c.Forecast.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("forecast.timeout_sec must be positive, got %d", c.Forecast.TimeoutSec))
	}
	if c.Forecast.ArimaP < 0 || c.Forecast.ArimaD < 0 || c.Forecast.ArimaQ < 0 {
		errs = append(errs, fmt.Errorf("forecast ARIMA order must be non-negative, got (%d,%d,%d)",
			c.Forecast.ArimaP, c.Forecast.ArimaD, c.Forecast.ArimaQ))
	}
	if c.Forecast.ArimaP+c.Forecast.ArimaQ == 0 {
		errs = append(errs, fmt.Errorf("forecast ARIMA order needs p or q > 0"))
	}
	if c.Forecast.ChangepointPriorScale <= 0 {
		errs = append(errs, fmt.Errorf("forecast.changepoint_prior_scale must be positive, got %v", c.Forecast.ChangepointPriorScale))
	}

	if c.Signal.EMAPeriod <= 0 {
		errs = append(errs, fmt.Errorf("signal.ema_period must be positive, got %d", c.Signal.EMAPeriod))
	}
	if c.Signal.Lookback == "" {
		errs = append(errs, fmt.Errorf("signal.lookback is required"))
	}
	if c.Signal.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("signal.timeout_sec must be positive, got %d", c.Signal.TimeoutSec))
	}

	return errors.Join(errs...)
}
