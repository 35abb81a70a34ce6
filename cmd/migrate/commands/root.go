package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/leafsii/blog-backend/internal/config"
	gdb "github.com/leafsii/blog-backend/internal/db"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbType string
	dbDSN  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the blog database schema",
	Long: `Apply, roll back and inspect schema migrations for the blog database,
and load the development fixtures.

The connection is read from BLOG_DB_TYPE and BLOG_DB_DSN unless overridden
with --type and --dsn.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbType, "type", "", "Database type: postgres or sqlite (default from config)")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "dsn", "", "Database DSN (default from config)")
}

// connect opens the configured database without applying migrations.
func connect(ctx context.Context) (*gdb.Database, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	dbCfg := &gdb.Config{
		Type: cfg.Database.Type,
		DSN:  cfg.Database.DSN,
	}
	if dbType != "" {
		dbCfg.Type = dbType
	}
	if dbDSN != "" {
		dbCfg.DSN = dbDSN
	}
	if dbCfg.Type == "memory" {
		return nil, nil, fmt.Errorf("an in-memory database does not outlive this command; use sqlite or postgres")
	}

	db, err := gdb.NewDatabase(dbCfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Connect(ctx); err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}
