package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverMongo    = "mongo"
)

const (
	defaultPort       = "8083"
	defaultCatalogURL = "https://www.freetogame.com/api/games"
	defaultCatalogTTL = 60 * time.Second
	defaultSQLiteDSN  = "file:reviews.db"
	defaultMongoDB    = "gamereviews"
)

// Config holds the service settings resolved from the environment.
type Config struct {
	Port        string
	StoreDriver string
	DatabaseURL string
	MongoURI    string
	MongoDB     string
	CatalogURL  string
	CatalogTTL  time.Duration
	LogLevel    string
}

// Load reads .env (if present) and then the process environment.
// The returned bool reports whether a .env file was loaded.
func Load() (*Config, bool, error) {
	loaded := godotenv.Load() == nil
	cfg, err := FromEnv(os.Getenv)
	return cfg, loaded, err
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:        getenv("PORT"),
		StoreDriver: getenv("STORE_DRIVER"),
		DatabaseURL: getenv("DATABASE_URL"),
		MongoURI:    getenv("MONGO_URI"),
		MongoDB:     getenv("MONGO_DB"),
		CatalogURL:  getenv("CATALOG_URL"),
		LogLevel:    getenv("LOG_LEVEL"),
		CatalogTTL:  defaultCatalogTTL,
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = DriverSQLite
	}
	if cfg.CatalogURL == "" {
		cfg.CatalogURL = defaultCatalogURL
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = defaultMongoDB
	}
	if v := getenv("CATALOG_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: CATALOG_TTL: %w", err)
		}
		if ttl < 0 {
			return nil, fmt.Errorf("config: CATALOG_TTL must not be negative, got %s", v)
		}
		cfg.CatalogTTL = ttl
	}

	switch cfg.StoreDriver {
	case DriverMemory:
	case DriverSQLite:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = defaultSQLiteDSN
		}
	case DriverPostgres, DriverPgx:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("config: DATABASE_URL is required for driver %q", cfg.StoreDriver)
		}
	case DriverMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("config: MONGO_URI is required for driver %q", cfg.StoreDriver)
		}
	default:
		return nil, fmt.Errorf("config: unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}
