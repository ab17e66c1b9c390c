package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tubbz-alt/thor/internal/params"
)

// CreateCheckCmd creates the check command.
func CreateCheckCmd(s *Settings) *cobra.Command {
	var showOrigins bool

	cmd := &cobra.Command{
		Use:   "check -- [encoder arguments]",
		Short: "Resolve and validate an encoder command line",
		Long: `Parses the encoder arguments, following -cf configuration files and the input file's ` +
			`YUV4MPEG2 header, then validates the result. Exits with status 1 on the first error.`,
		Example: `  thor check -- -cf low_delay.cfg -if foreman_cif.y4m -qp 30`,
		Run: func(c *cobra.Command, args []string) {
			err := runCheck(c.OutOrStdout(), s.sessionOptions("cli"), encoderArgs(c, args), showOrigins)
			exitOnError(os.Stderr, err)
		},
	}

	cmd.Flags().BoolVar(&showOrigins, "origins", false, "List every assigned parameter with where its value came from")
	return cmd
}

func runCheck(w io.Writer, opts params.Options, args []string, showOrigins bool) error {
	session := params.NewSession(opts)
	res, err := session.Resolve(args)
	if err != nil {
		return err
	}

	p := res.Params
	fmt.Fprintf(w, "ok: %dx%d, %g fps, qp %d, subsample %d, bitdepth %d\n",
		p.Width, p.Height, p.FrameRate, p.QP, p.Subsample, p.BitDepth)
	if len(res.Includes) > 0 {
		fmt.Fprintf(w, "config files: %s\n", strings.Join(res.Includes, ", "))
	}
	if res.Header != nil {
		fmt.Fprintf(w, "stream header: %s (%d byte header)\n", p.InFile, res.Header.HeaderLen)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}

	if showOrigins {
		return writeOrigins(w, res)
	}
	return nil
}

func writeOrigins(w io.Writer, res *params.Result) error {
	reg, err := params.DefaultRegistry(res.Params)
	if err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, e := range reg.Entries() {
		origin, ok := res.Origins[e.Name]
		if !ok || seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		value, ok := e.Value()
		if !ok {
			value = "-"
		}
		fmt.Fprintf(w, "  %-20s %-12s %s\n", e.Name, value, origin)
	}
	return nil
}
