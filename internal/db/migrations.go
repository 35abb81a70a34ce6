package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/leafsii/blog-backend/internal/db/interfaces"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

func newMigrationProvider(d dialect, conn *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(migrationsFS, d.migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s migrations: %w", d.name, err)
	}
	provider, err := goose.NewProvider(d.goose, conn, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// MigrationProvider returns a goose provider over the connected database,
// for callers that need status or rollback rather than Migrate.
func (db *Database) MigrationProvider() (*goose.Provider, error) {
	if db.conn == nil {
		return nil, fmt.Errorf("migration provider: %w", interfaces.ErrDatabaseNotConnected)
	}
	return newMigrationProvider(db.dialect, db.conn.DB)
}
