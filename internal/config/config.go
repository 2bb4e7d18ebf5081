// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Catalog CatalogConfig
	Enrich  EnrichConfig
	Upload  UploadConfig
	Share   ShareConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 2m;
	// uploads wait on enrichment before responding)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// StoreConfig selects and configures the list store backend.
type StoreConfig struct {
	// Driver selects the backend: postgres, sqlite, pebble, memory (default: postgres)
	Driver string `env:"STORE_DRIVER" default:"postgres"`

	// URL is the PostgreSQL connection string (required by the postgres driver)
	// Supports both DATABASE_URL and DB_URL for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of pooled connections (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of open connections (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// SQLitePath is the database file for the sqlite driver (default: card_lists.db)
	SQLitePath string `env:"SQLITE_PATH" default:"card_lists.db"`

	// PebblePath is the data directory for the pebble driver (default: card_lists.pebble)
	PebblePath string `env:"PEBBLE_PATH" default:"card_lists.pebble"`
}

// CatalogConfig holds external card catalog client settings.
type CatalogConfig struct {
	// BaseURL is the catalog API endpoint (default: https://api.scryfall.com)
	BaseURL string `env:"CATALOG_BASE_URL" default:"https://api.scryfall.com"`

	// Timeout is the per-request HTTP timeout (default: 15s)
	Timeout time.Duration `env:"CATALOG_TIMEOUT" default:"15s"`

	// RPS is the courtesy rate limit toward the catalog (default: 10)
	RPS int `env:"CATALOG_RPS" default:"10"`

	// MaxRetries is the retry budget for 429/5xx responses (default: 2)
	MaxRetries int `env:"CATALOG_MAX_RETRIES" default:"2"`
}

// EnrichConfig holds enrichment fan-out settings.
type EnrichConfig struct {
	// Concurrency is the maximum parallel catalog lookups per upload (default: 8)
	Concurrency int `env:"ENRICH_CONCURRENCY" default:"8"`
}

// UploadConfig holds upload processing settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed upload size in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the maximum number of parallel uploads (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for an upload slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// ShareConfig holds shareable-link settings.
type ShareConfig struct {
	// FallbackIP is returned when no LAN address can be discovered (default: 127.0.0.1)
	FallbackIP string `env:"SHARE_FALLBACK_IP" default:"127.0.0.1"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
