// Package cmd holds the subcommands of the thor binary.
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tubbz-alt/thor/internal/events"
	"github.com/Tubbz-alt/thor/internal/params"
)

// Settings carries the tool options the subcommands need. The root command fills
// it after loading flags, environment and the settings file, so subcommands must
// only read it once they run.
type Settings struct {
	MaxIncludeDepth int
	MaxTokens       int
	Probe           bool
	Debounce        time.Duration
	Concurrency     int

	// Bus receives session events; metrics subscribe to it.
	Bus *events.Bus
}

func (s *Settings) sessionOptions(source string) params.Options {
	return params.Options{
		Bus:             s.Bus,
		MaxIncludeDepth: s.MaxIncludeDepth,
		MaxTokens:       s.MaxTokens,
		SkipProbe:       !s.Probe,
		Source:          source,
	}
}

// encoderArgs returns the arguments after "--", or all positional arguments when
// there is no separator.
func encoderArgs(c *cobra.Command, args []string) []string {
	if dash := c.ArgsLenAtDash(); dash >= 0 {
		return args[dash:]
	}
	return args
}

// exitOnError prints err and exits with status 1.
func exitOnError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, "error:", err)
	os.Exit(1)
}
