// Package commands implements the careboard command line.
package commands

import (
	"runtime"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/careboard/careboard/internal/cli/config"
	"github.com/careboard/careboard/internal/cli/ui"
)

// Version is stamped with -ldflags "-X ...commands.Version=v1.0.0"
var Version = "dev"

// NewRootCommand assembles the careboard command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "careboard",
		Short: "Caregiver platform administration",
		Long: `careboard serves a web interface for browsing and editing the records of a
caregiver platform: users, caregivers, members, addresses, jobs, job
applications and appointments.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "config file (default: ./careboard.yml)")

	root.AddCommand(
		NewServeCommand(),
		NewMigrateCommand(),
		NewSeedCommand(),
		NewRoutesCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			revision, built := "unknown", "unknown"
			if info, ok := debug.ReadBuildInfo(); ok {
				for _, s := range info.Settings {
					switch s.Key {
					case "vcs.revision":
						revision = s.Value
					case "vcs.time":
						built = s.Value
					}
				}
			}

			table := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			table.AddRow("careboard version", Version)
			table.AddRow("Revision", revision)
			table.AddRow("Built", built)
			table.AddRow("Go version", runtime.Version())
			table.Render()
		},
	}
}

// loadConfig reads the file named by --config, or searches for one
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.LoadFile(path)
}

// Execute runs the command line and reports a failure in red on stderr
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}
