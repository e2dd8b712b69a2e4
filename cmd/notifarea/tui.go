package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/notifarea/internal/config"
	"github.com/jmylchreest/notifarea/internal/tui"
)

var tuiOpts struct {
	noWatch bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the terminal interface",
	Long: `Launch the terminal interface: a compose form, the notification
history, and the overlay drawn over both.

Logs go to a file because the terminal is in use (see --log-file).

Key bindings:
  ctrl+o      Cycle focus (form, history, overlay)
  ctrl+d      Dismiss the newest notification
  enter       Open details (history) or press a button (overlay)
  d           Dismiss the selected notification (history)
  r           Show the selected notification again (history)
  esc         Back
  ctrl+h, f1  Toggle help
  ctrl+c      Quit

Overlay buttons can also be clicked with the mouse.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().BoolVar(&tuiOpts.noWatch, "no-watch", false,
		"Don't reload the config file when it changes")
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the tui needs an interactive terminal; try 'notifarea simulate'")
	}

	tuiLogger := logger
	if globalOpts.logFile == "" {
		f, err := openLogFile(config.LogPath())
		if err != nil {
			return err
		}
		defer f.Close()
		level := slog.LevelInfo
		if globalOpts.verbose {
			level = slog.LevelDebug
		}
		tuiLogger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(tuiLogger)
	}

	configPath := watchedConfigPath()
	if tuiOpts.noWatch {
		configPath = ""
	}

	return tui.Run(cmd.Context(), tui.RunOptions{
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     tuiLogger,
	})
}
