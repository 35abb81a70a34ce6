package commands

import (
	"fmt"

	"github.com/leafsii/blog-backend/internal/auth"
	gdb "github.com/leafsii/blog-backend/internal/db"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load development fixtures",
	Long: `Apply pending migrations, then insert the development users, posts,
comments and likes in a single transaction. Seeding twice fails on the
unique usernames and leaves the database unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, cfg, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Disconnect(ctx)

		if err := db.Migrate(ctx); err != nil {
			return err
		}
		hasher, err := auth.NewHasher(cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}

		result, err := gdb.Seed(ctx, db, hasher.Hash)
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d posts, %d comments\n",
			len(result.Users), len(result.Posts), len(result.Comments))
		for _, u := range gdb.UserFixtures {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s / %s\n", u.Username, u.Password)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
