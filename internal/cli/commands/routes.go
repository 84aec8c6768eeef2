package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/careboard/careboard/internal/app"
	"github.com/careboard/careboard/internal/cli/ui"
)

// NewRoutesCommand creates the routes command
func NewRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the HTTP routes",
		Long:  "Print every route the server registers, in registration order, with its name.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			routes, err := app.Routes(cfg)
			if err != nil {
				return err
			}

			table := ui.NewTable(cmd.OutOrStdout(), []string{"METHOD", "PATTERN", "NAME"}, color.NoColor)
			for _, r := range routes {
				table.AddRow(r.Method, r.Pattern, r.Name)
			}
			table.Render()
			return nil
		},
	}
}
