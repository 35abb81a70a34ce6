package db

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
)

// Config holds database configuration
type Config struct {
	Type         string // "postgres", "sqlite", "memory"
	DSN          string // Data Source Name / Connection String
	UseInMemory  bool   // Force in-memory usage
	MaxOpenConns int    // Maximum open connections (postgres only)
	MaxIdleConns int    // Maximum idle connections (postgres only)
}

// NewDatabase creates a new database instance based on configuration.
// The returned database is not connected yet.
func NewDatabase(config *Config) (*Database, error) {
	if config == nil {
		config = &Config{}
	}
	cfg := *config

	// Default configuration from environment
	if cfg.Type == "" {
		cfg.Type = getEnvOrDefault("BLOG_DB_TYPE", "memory")
	}
	if cfg.DSN == "" {
		cfg.DSN = os.Getenv("BLOG_DB_DSN")
	}
	if !cfg.UseInMemory && os.Getenv("BLOG_USE_IN_MEMORY") == "true" {
		cfg.UseInMemory = true
	}
	if cfg.UseInMemory {
		cfg.Type = "memory"
	}

	switch strings.ToLower(cfg.Type) {
	case "memory":
		// Each in-memory database gets its own name so tests stay isolated.
		cfg.DSN = sqliteDSN("file:" + uuid.NewString() + "?mode=memory&cache=shared")
		return newDatabase(&cfg, sqliteDialect), nil
	case "sqlite":
		if cfg.DSN == "" {
			cfg.DSN = "file:blog.db"
		}
		cfg.DSN = sqliteDSN(cfg.DSN)
		return newDatabase(&cfg, sqliteDialect), nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres database requires a DSN")
		}
		return newDatabase(&cfg, postgresDialect), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// MustNewDatabase creates a new database instance and panics on error
func MustNewDatabase(config *Config) *Database {
	db, err := NewDatabase(config)
	if err != nil {
		panic(fmt.Sprintf("failed to create database: %v", err))
	}
	return db
}

// NewInMemoryDatabase creates a new in-memory SQLite database instance
func NewInMemoryDatabase() *Database {
	return MustNewDatabase(&Config{Type: "memory"})
}

// ConnectAndMigrate connects to the database and runs migrations
func ConnectAndMigrate(ctx context.Context, db interfaces.Database) error {
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if !db.IsHealthy(ctx) {
		return fmt.Errorf("database health check failed")
	}

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
