// Package logging provides structured logging with per-module log levels.
//
// # Usage
//
// Initialize once at startup, then ask for a module logger:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"params": "debug",
//			"api":    "warn",
//		},
//	})
//
//	logger := logging.GetLogger("params")
//	logger.Debug("Reading config file", "path", path, "depth", 2)
//
// Loggers obtained before Initialize are reconfigured by it.
//
// # Output
//
// Records go to stderr (or Config.Output) as text or JSON, to the systemd
// journal when it is reachable, and to an in-memory ring buffer served by the
// HTTP logs endpoint. Stdout is left to command output such as parameter dumps.
//
// With journald:
//
//	journalctl -t thor                # All thor logs
//	journalctl -t thor MODULE=params  # Parameter sessions only
//	journalctl -t thor -p warning     # Warnings and errors
//
// # Configuration
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//	params = "debug"
//	api = "warn"
package logging
