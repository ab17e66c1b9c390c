package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Tubbz-alt/thor/internal/lint"
)

// CreateLintCmd creates the lint command.
func CreateLintCmd(s *Settings) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lint <file>... [-- encoder arguments]",
		Short: "Check many configuration files in parallel",
		Long: `Resolves every configuration file as if passed with -cf, followed by the encoder arguments ` +
			`after "--", and reports each outcome. Exits with status 1 if any file fails.`,
		Example: `  thor lint configs/*.cfg -- -if /dev/null`,
		Args:    cobra.MinimumNArgs(1),
		Run: func(c *cobra.Command, args []string) {
			paths, extra := args, []string(nil)
			if dash := c.ArgsLenAtDash(); dash >= 0 {
				paths, extra = args[:dash], args[dash:]
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			failed, err := runLint(ctx, c.OutOrStdout(), s, paths, extra, asJSON)
			exitOnError(os.Stderr, err)
			if failed > 0 {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the reports as JSON")
	return cmd
}

func runLint(ctx context.Context, w io.Writer, s *Settings, paths, extra []string, asJSON bool) (int, error) {
	if len(paths) == 0 {
		return 0, eris.New("no configuration files given")
	}

	reports, err := lint.Run(ctx, paths, lint.Options{
		Concurrency: s.Concurrency,
		Args:        extra,
		Session:     s.sessionOptions("lint"),
	})
	if err != nil {
		return 0, err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return 0, eris.Wrap(err, "encode reports")
		}
		return lint.Failed(reports), nil
	}

	for _, r := range reports {
		if r.OK {
			fmt.Fprintf(w, "ok    %s\n", r.Path)
		} else {
			fmt.Fprintf(w, "FAIL  %s: %s\n", r.Path, r.Message)
		}
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "      warning: %s\n", warning)
		}
	}
	failed := lint.Failed(reports)
	fmt.Fprintf(w, "%d file(s), %d failed\n", len(reports), failed)
	return failed, nil
}
