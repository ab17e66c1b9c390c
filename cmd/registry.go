package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Tubbz-alt/thor/internal/params"
)

// CreateRegistryCmd creates the registry command.
func CreateRegistryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "registry",
		Short: "List the encoder parameters",
		Run: func(c *cobra.Command, _ []string) {
			exitOnError(os.Stderr, runRegistry(c.OutOrStdout()))
		},
	}
}

func runRegistry(w io.Writer) error {
	reg, err := params.DefaultRegistry(new(params.Params))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tDEFAULT\tDESCRIPTION")
	for _, e := range reg.Entries() {
		def := e.Default
		if def == "" {
			def = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Kind(), def, e.Help)
	}
	return tw.Flush()
}
