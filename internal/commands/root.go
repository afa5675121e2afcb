package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vestcheck/vestcheck/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "vestcheck",
		Short:   "Check RSU vesting in payroll against the brokerage records",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug details to stderr")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newRSUCommand(&verbose))

	return rootCmd
}
