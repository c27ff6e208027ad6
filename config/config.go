// Package config carrega a configuração do servidor.
//
// Prioridade: valores padrão → arquivo YAML (CONFIG_FILE) → variáveis de ambiente.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Log         LogConfig         `yaml:"log"`
	KV          KVConfig          `yaml:"kv"`
	Redis       RedisConfig       `yaml:"redis"`
	DB          DBConfig          `yaml:"db"`
	Bucket      BucketConfig      `yaml:"bucket"`
	Cache       CacheConfig       `yaml:"cache"`
	Rate        RateConfig        `yaml:"rate"`
	Guard       GuardConfig       `yaml:"guard"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

type KVConfig struct {
	Backend string `yaml:"backend"` // memory, redis
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DBConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres
	DSN    string `yaml:"dsn"`
}

type BucketConfig struct {
	Dir string `yaml:"dir"`
}

type CacheConfig struct {
	Prefix     string `yaml:"prefix"`
	TTLSeconds int    `yaml:"ttl"`
}

type RateConfig struct {
	Prefix         string `yaml:"prefix"`
	Max            int    `yaml:"max"`
	WindowSeconds  int    `yaml:"window"`
	KeyHeader      string `yaml:"key_header"`
	TrustForwarded bool   `yaml:"trust_forwarded"`
	Atomic         bool   `yaml:"atomic"`
	// Stats: none, memory, redis, prometheus
	Stats          string `yaml:"stats"`
	StatsTrackKeys bool   `yaml:"stats_track_keys"`
}

// GuardConfig é o token bucket local na frente do roteador. RPS 0 desliga.
type GuardConfig struct {
	RPS        float64       `yaml:"rps"`
	Burst      int           `yaml:"burst"`
	RetryAfter time.Duration `yaml:"retry_after"`
	AddHeaders bool          `yaml:"add_headers"`
}

type ConcurrencyConfig struct {
	Max     int           `yaml:"max"`
	Timeout time.Duration `yaml:"timeout"`
}

func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		ShutdownTimeout: 10 * time.Second,
		Log:             LogConfig{Level: "info", Format: "json"},
		KV:              KVConfig{Backend: "memory"},
		DB:              DBConfig{Driver: "sqlite", DSN: "file:starter.db"},
		Bucket:          BucketConfig{Dir: "./data/bucket"},
		Cache:           CacheConfig{Prefix: "cache", TTLSeconds: 60},
		Rate: RateConfig{
			Prefix:         "ratelimit",
			Max:            100,
			WindowSeconds:  60,
			TrustForwarded: true,
			Stats:          "none",
		},
		Guard:       GuardConfig{Burst: 20, RetryAfter: time.Second},
		Concurrency: ConcurrencyConfig{Max: 100},
	}
}

// Load monta a configuração a partir do arquivo em CONFIG_FILE (opcional) e do ambiente.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ListenAddr = getenvDefault("LISTEN_ADDR", c.ListenAddr)
	c.ShutdownTimeout = getenvDurationDefault("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.Log.Level = getenvDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getenvDefault("LOG_FORMAT", c.Log.Format)

	c.KV.Backend = getenvDefault("KV_BACKEND", c.KV.Backend)
	c.Redis.Addr = getenvDefault("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getenvDefault("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getenvIntDefault("REDIS_DB", c.Redis.DB)

	c.DB.Driver = getenvDefault("DB_DRIVER", c.DB.Driver)
	c.DB.DSN = getenvDefault("DB_DSN", c.DB.DSN)
	c.Bucket.Dir = getenvDefault("BUCKET_DIR", c.Bucket.Dir)

	c.Cache.Prefix = getenvDefault("CACHE_PREFIX", c.Cache.Prefix)
	c.Cache.TTLSeconds = getenvIntDefault("CACHE_TTL", c.Cache.TTLSeconds)

	c.Rate.Prefix = getenvDefault("RATE_PREFIX", c.Rate.Prefix)
	c.Rate.Max = getenvIntDefault("RATE_MAX", c.Rate.Max)
	c.Rate.WindowSeconds = getenvIntDefault("RATE_WINDOW", c.Rate.WindowSeconds)
	c.Rate.KeyHeader = getenvDefault("RATE_KEY_HEADER", c.Rate.KeyHeader)
	c.Rate.TrustForwarded = getenvBoolDefault("RATE_TRUST_FORWARDED", c.Rate.TrustForwarded)
	c.Rate.Atomic = getenvBoolDefault("RATE_ATOMIC", c.Rate.Atomic)
	c.Rate.Stats = getenvDefault("RATE_STATS", c.Rate.Stats)
	c.Rate.StatsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", c.Rate.StatsTrackKeys)

	c.Guard.RPS = getenvFloatDefault("GUARD_RPS", c.Guard.RPS)
	// Com RPS muito baixo (ex: 0.02) o burst padrão deixa passar as primeiras ~20.
	if burst, ok := getenvInt("GUARD_BURST"); ok {
		c.Guard.Burst = burst
	} else if getenvIsSet("GUARD_RPS") && c.Guard.RPS > 0 && c.Guard.RPS < 1 {
		c.Guard.Burst = 1
	}
	c.Guard.RetryAfter = getenvDurationDefault("GUARD_RETRY_AFTER", c.Guard.RetryAfter)
	c.Guard.AddHeaders = getenvBoolDefault("GUARD_ADD_HEADERS", c.Guard.AddHeaders)

	c.Concurrency.Max = getenvIntDefault("CONCURRENCY_MAX", c.Concurrency.Max)
	c.Concurrency.Timeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", c.Concurrency.Timeout)
}

func (c Config) Validate() error {
	var errs []error

	switch c.KV.Backend {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Redis.Addr) == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when KV_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("KV_BACKEND must be memory or redis, got %q", c.KV.Backend))
	}

	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DB.Driver))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}
	if c.Bucket.Dir == "" {
		errs = append(errs, errors.New("BUCKET_DIR is required"))
	}

	if c.Cache.TTLSeconds < 0 {
		errs = append(errs, errors.New("CACHE_TTL must be >= 0"))
	}
	if c.Rate.Max <= 0 {
		errs = append(errs, errors.New("RATE_MAX must be > 0"))
	}
	if c.Rate.WindowSeconds < 1 {
		errs = append(errs, errors.New("RATE_WINDOW must be >= 1"))
	}
	switch c.Rate.Stats {
	case "none", "memory", "prometheus":
	case "redis":
		if strings.TrimSpace(c.Redis.Addr) == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when RATE_STATS=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("RATE_STATS must be none, memory, redis or prometheus, got %q", c.Rate.Stats))
	}

	if c.Guard.RPS < 0 {
		errs = append(errs, errors.New("GUARD_RPS must be >= 0"))
	}
	if c.Guard.RPS > 0 && c.Guard.Burst <= 0 {
		errs = append(errs, errors.New("GUARD_BURST must be > 0"))
	}
	if c.Concurrency.Max < 0 {
		errs = append(errs, errors.New("CONCURRENCY_MAX must be >= 0"))
	}
	return errors.Join(errs...)
}

func (c Config) CacheTTL() time.Duration { return time.Duration(c.Cache.TTLSeconds) * time.Second }

func (c Config) RateWindow() time.Duration { return time.Duration(c.Rate.WindowSeconds) * time.Second }

// UsesRedis indica se algum componente precisa do cliente Redis.
func (c Config) UsesRedis() bool { return c.KV.Backend == "redis" || c.Rate.Stats == "redis" }
