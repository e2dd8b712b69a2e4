package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/notifarea/internal/config"
	"github.com/jmylchreest/notifarea/internal/display"
)

var gtkOpts struct {
	noWatch bool
}

var gtkCmd = &cobra.Command{
	Use:   "gtk",
	Short: "Launch the GTK interface",
	Long: `Launch the GTK4/libadwaita interface. The compose form and history
live in a regular window; notifications appear on a layer-shell overlay
anchored to the top-left corner of the first monitor.

Requires a Wayland compositor that supports wlr-layer-shell.

Themes are loaded from ~/.config/notifarea/themes and reloaded when their
files change.`,
	RunE: runGTK,
}

func init() {
	rootCmd.AddCommand(gtkCmd)

	gtkCmd.Flags().BoolVar(&gtkOpts.noWatch, "no-watch", false,
		"Don't reload the config file and themes when they change")
}

func runGTK(cmd *cobra.Command, args []string) error {
	configPath := watchedConfigPath()
	if gtkOpts.noWatch {
		configPath = ""
	}

	return display.Run(cmd.Context(), display.RunOptions{
		Config:     cfg,
		ConfigPath: configPath,
		ThemesDir:  config.ThemesDir(),
		Logger:     logger,
	})
}
