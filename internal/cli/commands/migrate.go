package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/careboard/careboard/internal/cli/ui"
	"github.com/careboard/careboard/internal/database"
)

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	var status, rollback bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Apply every pending schema migration.

  --status    list applied and pending migrations without changing anything
  --rollback  revert the most recently applied migration`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status && rollback {
				return fmt.Errorf("--status and --rollback cannot be combined")
			}

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

			out := cmd.OutOrStdout()
			success := color.New(color.FgGreen, color.Bold)
			notice := color.New(color.FgYellow)

			switch {
			case status:
				st, err := db.MigrationStatus(ctx)
				if err != nil {
					return err
				}
				table := ui.NewTable(out, []string{"VERSION", "NAME", "STATUS"}, color.NoColor)
				for _, m := range st.Applied {
					table.AddRow(fmt.Sprint(m.Version), m.Name, "applied")
				}
				for _, m := range st.Pending {
					table.AddRow(fmt.Sprint(m.Version), m.Name, "pending")
				}
				table.Render()
				fmt.Fprintln(out, st.Summary())

			case rollback:
				m, err := db.Rollback(ctx, nil)
				if err != nil {
					return err
				}
				if m == nil {
					notice.Fprintln(out, "No migrations to roll back")
					return nil
				}
				success.Fprintf(out, "Rolled back %d_%s\n", m.Version, m.Name)

			default:
				applied, err := db.Migrate(ctx, nil)
				if err != nil {
					return err
				}
				if applied == 0 {
					notice.Fprintln(out, "No pending migrations")
					return nil
				}
				success.Fprintf(out, "Applied %d migration(s)\n", applied)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "show migration status")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the last migration")
	return cmd
}
