package cmd

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Tubbz-alt/thor/internal/params"
)

// Dump formats.
const (
	FormatConfig = "cfg"
	FormatTOML   = "toml"
	FormatJSON   = "json"
)

// CreateDumpCmd creates the dump command.
func CreateDumpCmd(s *Settings) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump -- [encoder arguments]",
		Short: "Print the resolved encoder parameters",
		Long: `Resolves and validates the encoder arguments and prints every parameter. The cfg format ` +
			`is a configuration file that -cf reads back into the same parameters.`,
		Example: `  thor dump --format toml -- -cf low_delay.cfg -qp 30 > resolved.toml`,
		Run: func(c *cobra.Command, args []string) {
			err := runDump(c.OutOrStdout(), s.sessionOptions("cli"), encoderArgs(c, args), format)
			exitOnError(os.Stderr, err)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatConfig, "Output format: cfg, toml or json")
	return cmd
}

func runDump(w io.Writer, opts params.Options, args []string, format string) error {
	if format != FormatConfig && format != FormatTOML && format != FormatJSON {
		return eris.Errorf("unknown format %q", format)
	}

	res, err := params.NewSession(opts).Resolve(args)
	if err != nil {
		return err
	}
	return writeParams(w, res.Params, format)
}

func writeParams(w io.Writer, p *params.Params, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatTOML:
		data, err = params.MarshalTOML(p)
	case FormatJSON:
		data, err = params.MarshalJSON(p)
		data = append(data, '\n')
	default:
		return params.WriteConfig(w, p)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return eris.Wrap(err, "write parameters")
}
