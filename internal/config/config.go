package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName       = "AuthState"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultLogFormat     = "json"
	defaultBackend       = BackendMemory
	defaultKeyPrefix     = "authstate:"
	defaultSQLitePath    = "authstate.db"
	defaultFileStorePath = "authstate.json"
	defaultShutdownDelay = 10 * time.Second
	defaultStoreTimeout  = 2 * time.Second
	defaultIdemTTL       = 24 * time.Hour
	defaultPINVerifyRate = 5
)

// Supported STORE_BACKEND values.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendFile     = "file"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName         string
	AppEnv          string
	Port            string
	LogLevel        string
	LogFormat       string
	StoreBackend    string
	RedisURL        string
	DatabaseURL     string
	SQLitePath      string
	FileStorePath   string
	KeyPrefix       string
	StoreTimeout    time.Duration
	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration
	PINVerifyPerMin int
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", defaultBackend)),
		RedisURL:        os.Getenv("REDIS_URL"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      getEnv("SQLITE_PATH", defaultSQLitePath),
		FileStorePath:   getEnv("FILE_STORE_PATH", defaultFileStorePath),
		KeyPrefix:       os.Getenv("KEY_PREFIX"),
		PINVerifyPerMin: defaultPINVerifyRate,
	}
	if _, set := os.LookupEnv("KEY_PREFIX"); !set {
		cfg.KeyPrefix = defaultKeyPrefix
	}

	var err error
	if cfg.StoreTimeout, err = durationEnv("STORE_TIMEOUT", defaultStoreTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", defaultIdemTTL); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("PIN_VERIFY_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PIN_VERIFY_PER_MINUTE: %w", err)
		}
		cfg.PINVerifyPerMin = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs to connect.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL must be set when STORE_BACKEND=%s", c.StoreBackend)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when STORE_BACKEND=%s", c.StoreBackend)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must be set when STORE_BACKEND=%s", c.StoreBackend)
		}
	case BackendFile:
		if c.FileStorePath == "" {
			return fmt.Errorf("FILE_STORE_PATH must be set when STORE_BACKEND=%s", c.StoreBackend)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a local/development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// durationEnv reads NAME_SECONDS as an integer first, then NAME as a Go duration.
func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	secondsVar := name + "_SECONDS"
	if v := os.Getenv(secondsVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsVar, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(name); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", name, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
