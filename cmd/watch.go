package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Tubbz-alt/thor/internal/config"
	"github.com/Tubbz-alt/thor/internal/logging"
	"github.com/Tubbz-alt/thor/internal/params"
)

// CreateWatchCmd creates the watch command.
func CreateWatchCmd(s *Settings) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "watch -- [encoder arguments]",
		Short: "Re-resolve the parameters whenever a configuration file changes",
		Long: `Resolves the encoder arguments, then watches every configuration file they read through -cf ` +
			`and the input file. After each change the parameters are resolved again and, when they ` +
			`differ from the last good set, written to stdout or --output.`,
		Example: `  thor watch --output resolved.cfg -- -cf low_delay.cfg -if foreman_cif.y4m`,
		Run: func(c *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var w io.Writer = c.OutOrStdout()
			if output != "" {
				w = &fileSink{path: output}
			}
			err := runWatch(ctx, w, s.sessionOptions("watch"), encoderArgs(c, args), format, s.Debounce)
			exitOnError(os.Stderr, err)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatConfig, "Output format: cfg, toml or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Replace this file instead of writing to stdout")
	return cmd
}

// fileSink replaces the file at path on every write.
type fileSink struct {
	path string
}

func (f *fileSink) Write(p []byte) (int, error) {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, p, 0o644); err != nil {
		return 0, eris.Wrapf(err, "write %s", tmp)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return 0, eris.Wrapf(err, "replace %s", f.path)
	}
	return len(p), nil
}

func paramsLoader(opts params.Options, args []string) config.Loader[*params.Result] {
	return func() (*params.Result, []string, error) {
		session := params.NewSession(opts)
		res, err := session.Resolve(args)

		paths := session.Includes()
		if res != nil && res.Params.InFile != "" {
			if _, statErr := os.Stat(res.Params.InFile); statErr == nil {
				paths = append(paths, res.Params.InFile)
			}
		}
		return res, paths, err
	}
}

func runWatch(ctx context.Context, w io.Writer, opts params.Options, args []string, format string, debounce time.Duration) error {
	if format != FormatConfig && format != FormatTOML && format != FormatJSON {
		return eris.Errorf("unknown format %q", format)
	}

	logger := logging.GetLogger("watch")
	watcher := config.NewWatcher(paramsLoader(opts, args), logger,
		config.WithDebounce[*params.Result](debounce),
	)

	var last []byte
	watcher.OnReload(func(res *params.Result) {
		var buf bytes.Buffer
		if err := writeParams(&buf, res.Params, format); err != nil {
			logger.Error("Cannot render parameters", "error", err)
			return
		}
		if bytes.Equal(buf.Bytes(), last) {
			logger.Debug("Parameters unchanged")
			return
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			logger.Error("Cannot write parameters", "error", err)
			return
		}
		last = buf.Bytes()
		logger.Info("Parameters resolved", "includes", len(res.Includes), "warnings", len(res.Warnings))
		for _, warning := range res.Warnings {
			fmt.Fprintln(os.Stderr, "warning:", warning)
		}
	})

	if err := watcher.Start(); err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	if len(watcher.Watched()) == 0 {
		logger.Warn("No configuration files to watch; waiting for interrupt")
	}
	<-ctx.Done()
	return nil
}
