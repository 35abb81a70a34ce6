package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	// Migrate flags
	steps     int
	toVersion int64
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Long: `Apply pending migrations.

Examples:
  migrate up                 # Apply everything pending
  migrate up --to 2          # Apply up to and including version 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, _, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Disconnect(ctx)

		provider, err := db.MigrationProvider()
		if err != nil {
			return err
		}
		var results []*goose.MigrationResult
		if toVersion > 0 {
			results, err = provider.UpTo(ctx, toVersion)
		} else {
			results, err = provider.Up(ctx)
		}
		if err != nil {
			return fmt.Errorf("migration up failed: %w", err)
		}
		printResults(cmd, results)
		return nil
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Long: `Roll back applied migrations, newest first.

Examples:
  migrate down               # Roll back the latest migration
  migrate down --steps 2     # Roll back the latest two`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if steps < 1 {
			return fmt.Errorf("--steps must be at least 1")
		}
		ctx := cmd.Context()
		db, _, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Disconnect(ctx)

		provider, err := db.MigrationProvider()
		if err != nil {
			return err
		}
		for i := 0; i < steps; i++ {
			res, err := provider.Down(ctx)
			if err != nil {
				return fmt.Errorf("migration down failed: %w", err)
			}
			printResults(cmd, []*goose.MigrationResult{res})
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, _, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Disconnect(ctx)

		provider, err := db.MigrationProvider()
		if err != nil {
			return err
		}
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status failed: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
		for _, s := range statuses {
			applied := "-"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
		}
		return w.Flush()
	},
}

func init() {
	upCmd.Flags().Int64Var(&toVersion, "to", 0, "Apply up to this version")
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	rootCmd.AddCommand(upCmd, downCmd, statusCmd)
}

func printResults(cmd *cobra.Command, results []*goose.MigrationResult) {
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No migrations to run")
		return
	}
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%-4s %d %s (%s)\n", r.Direction, r.Source.Version, r.Source.Path, r.Duration)
	}
}
