package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/notifarea/internal/config"
	"github.com/jmylchreest/notifarea/internal/theme"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the effective configuration as TOML: the defaults with the
config file applied on top. Redirect it to a file to start a config:

  notifarea config > ~/.config/notifarea/config.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config, themes and log locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "config:", watchedConfigPath())
		fmt.Fprintln(out, "themes:", config.ThemesDir())
		fmt.Fprintln(out, "log:   ", config.LogPath())
		return nil
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	RunE: func(cmd *cobra.Command, args []string) error {
		themes, err := theme.ListAvailableThemes(config.ThemesDir())
		if err != nil {
			return fmt.Errorf("failed to list themes: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, t := range themes {
			marker := " "
			if t.Name == cfg.Theme.Name {
				marker = "*"
			}
			source := t.Path
			if t.IsBundled {
				source = "bundled"
			}
			fmt.Fprintf(out, "%s %-16s %s\n", marker, t.Name, source)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configThemesCmd)
}
