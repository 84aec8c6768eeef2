package commands

import (
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/careboard/careboard/internal/cli/ui"
	"github.com/careboard/careboard/internal/database"
	"github.com/careboard/careboard/internal/models"
	"github.com/careboard/careboard/internal/orm/crud"
	"github.com/careboard/careboard/internal/orm/transaction"
	"github.com/careboard/careboard/internal/seed"
)

// NewSeedCommand creates the seed command
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo data into an empty database",
		Long: `Apply pending migrations, then insert the built-in demo records in one
transaction. Nothing is inserted when the database already holds users.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := database.Open(ctx, database.Config{URL: cfg.DatabaseURL()})
			if err != nil {
				return err
			}
			defer db.Close()

			if _, err := db.Migrate(ctx, nil); err != nil {
				return err
			}

			loader := seed.NewLoader(models.NewRegistry(), crud.NewStore(db.Dialect), transaction.NewManager(db.DB), nil)
			result, err := loader.Load(ctx, seed.Default())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Skipped {
				color.New(color.FgYellow).Fprintln(out, "Database already seeded.")
				return nil
			}

			names := make([]string, 0, len(result.Counts))
			for name := range result.Counts {
				names = append(names, name)
			}
			sort.Strings(names)

			table := ui.NewKeyValueTable(out, color.NoColor)
			for _, name := range names {
				table.AddRow(name, strconv.Itoa(result.Counts[name]))
			}
			table.Render()
			color.New(color.FgGreen, color.Bold).Fprintln(out, "Database seeded successfully.")
			return nil
		},
	}
}
