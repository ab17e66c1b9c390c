package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tubbz-alt/thor/internal/version"
)

// CreateVersionCmd creates the version command.
func CreateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(c *cobra.Command, _ []string) {
			info := version.Get()
			fmt.Fprintln(c.OutOrStdout(), version.String())
			fmt.Fprintf(c.OutOrStdout(), "  commit: %s\n  built:  %s\n  go:     %s %s\n",
				info.GitCommit, info.BuildDate, info.GoVersion, info.Platform)
		},
	}
}
