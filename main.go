package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/Tubbz-alt/thor/cmd"
	"github.com/Tubbz-alt/thor/internal/api"
	"github.com/Tubbz-alt/thor/internal/config"
	"github.com/Tubbz-alt/thor/internal/events"
	"github.com/Tubbz-alt/thor/internal/lexer"
	"github.com/Tubbz-alt/thor/internal/logging"
	"github.com/Tubbz-alt/thor/internal/metrics"
	"github.com/Tubbz-alt/thor/internal/params"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"thor.toml"`

	// Server settings
	Port        string `help:"Port to listen on" short:"p" default:":8095" toml:"server.port" env:"SERVER_PORT"`
	IncludeRoot string `help:"Directory the API may read -cf and -if files from, relative paths start here" default:"." toml:"server.include_root" env:"SERVER_INCLUDE_ROOT"`

	// Parameter session settings
	MaxIncludeDepth int  `help:"Maximum -cf nesting depth" default:"16" toml:"parse.max_include_depth" env:"PARSE_MAX_INCLUDE_DEPTH"`
	MaxTokens       int  `help:"Maximum tokens read from one configuration file" default:"200" toml:"parse.max_tokens" env:"PARSE_MAX_TOKENS"`
	Probe           bool `help:"Apply the YUV4MPEG2 header of the input file" default:"true" toml:"parse.probe" env:"PARSE_PROBE"`

	// Watch and lint settings
	Debounce    string `help:"Quiet period before re-resolving after a change" default:"500ms" toml:"watch.debounce" env:"WATCH_DEBOUNCE"`
	Concurrency int    `help:"Files linted in parallel, 0 for one per CPU" default:"0" toml:"lint.concurrency" env:"LINT_CONCURRENCY"`

	// Observability settings
	Metrics bool `help:"Serve Prometheus metrics at /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Auth settings
	AuthUsername string `help:"Basic auth username, empty disables auth" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
}

func main() {
	settings := &cmd.Settings{}

	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Flags given on the command line win over the file and environment.
		loadErr := config.LoadConfig(opts, cli.Root().PersistentFlags())

		// Module levels such as [logging] params = "debug" come from the file only.
		loggingConfig := config.LoadLoggingConfig(opts.Config)
		loggingConfig.Level = opts.LoggingLevel
		loggingConfig.Format = opts.LoggingFormat
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")
		if loadErr != nil {
			logger.Warn("Failed to load config", "error", loadErr)
		}

		eventBus := events.New()
		unsubscribeMetrics := metrics.Subscribe(eventBus)

		debounce, err := time.ParseDuration(opts.Debounce)
		if err != nil {
			logger.Warn("Invalid watch debounce, using default", "value", opts.Debounce, "error", err)
			debounce = config.DefaultDebounce
		}

		*settings = cmd.Settings{
			MaxIncludeDepth: opts.MaxIncludeDepth,
			MaxTokens:       opts.MaxTokens,
			Probe:           opts.Probe,
			Debounce:        debounce,
			Concurrency:     opts.Concurrency,
			Bus:             eventBus,
		}
		if settings.MaxTokens <= 0 {
			settings.MaxTokens = lexer.DefaultMaxTokens
		}
		if settings.MaxIncludeDepth <= 0 {
			settings.MaxIncludeDepth = params.DefaultMaxIncludeDepth
		}

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Bus:          eventBus,
			Session: params.Options{
				MaxIncludeDepth: settings.MaxIncludeDepth,
				MaxTokens:       settings.MaxTokens,
				SkipProbe:       !settings.Probe,
				IncludeRoot:     opts.IncludeRoot,
			},
		}
		if opts.IncludeRoot == "" {
			logger.Warn("No include root set, API requests may read any file the process can read")
		}
		if opts.Metrics {
			apiOpts.MetricsHandler = metrics.Handler()
		}
		server := api.NewServer(apiOpts)

		hooks.OnStart(func() {
			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if stopErr := server.Stop(ctx); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
			unsubscribeMetrics()
		})
	})

	root := cli.Root()
	root.Use = "thor"
	root.Short = "Thor encoder parameter engine"

	root.AddCommand(
		cmd.CreateCheckCmd(settings),
		cmd.CreateDumpCmd(settings),
		cmd.CreateLintCmd(settings),
		cmd.CreateWatchCmd(settings),
		cmd.CreateRegistryCmd(),
		cmd.CreateVersionCmd(),
	)

	cli.Run()
}
