package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rmap",
		Short:         "Roadmapper provisions a data engineering learning roadmap",
		Long:          "Roadmapper creates the learning-plan database in Notion, scaffolds the project repositories on GitHub, and optionally mirrors them locally and sets up an AWS cost budget. Re-running it only creates what is missing.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newProvisionCmd())
	cmd.AddCommand(newPlanCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newNotionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rmap %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
