// Package main provides the CLI entrypoint for notifarea.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/notifarea/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		logFile    string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "notifarea",
	Short: "Toast notifications with an animated stacking overlay",
	Long: `notifarea shows transient toast notifications in an always-on-top
overlay that grows and shrinks as notifications come and go.

Notifications are composed in a form and listed in a history view. Each one
dismisses itself after its duration, or when its Dismiss button is pressed.

Running notifarea without a subcommand launches the terminal interface.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(os.Stderr)

		var err error
		cfg, err = config.Load(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	// Default to the TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and runs it until
// it returns or an interrupt arrives.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/notifarea/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.logFile, "log-file", "",
		"Write logs to this file (default for tui: ~/.local/state/notifarea/notifarea.log)")
}

// setupLogger configures the global slog logger. --log-file overrides w.
func setupLogger(w io.Writer) {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	if globalOpts.logFile != "" {
		if f, err := openLogFile(globalOpts.logFile); err == nil {
			w = f
		} else {
			fmt.Fprintln(os.Stderr, "failed to open log file:", err)
		}
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// openLogFile opens path for appending, creating its directory.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// watchedConfigPath returns the config file to watch for changes.
func watchedConfigPath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.Path()
}
