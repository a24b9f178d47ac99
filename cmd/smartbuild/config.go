// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudtek/smartbuild/internal/config"
)

// newConfigCommand creates the `smartbuild config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect smartbuild settings",
		Long: `Inspect smartbuild settings.

Settings are resolved from, lowest to highest precedence: defaults,
smartbuild.cue in the root (or --config), SMARTBUILD_* environment
variables, and command-line flags.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings (API key masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.loadSettings(cmd)
			if err != nil {
				return app.fail(err, verboseFlag(cmd))
			}
			if asJSON {
				return app.showConfigJSON(s)
			}
			app.showConfig(s)
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print the settings as JSON")

	dump := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective settings as a smartbuild.cue document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.loadSettings(cmd)
			if err != nil {
				return app.fail(err, verboseFlag(cmd))
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(s))
			return nil
		},
	}

	cfgCmd.AddCommand(show, dump)
	return cfgCmd
}

func (a *App) showConfig(s *config.Settings) {
	masked := s.Masked()
	keyStyle := NameStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(a.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(a.stdout)
	if masked.ConfigFile != "" {
		fmt.Fprintf(a.stdout, "%s: %s\n", keyStyle.Render("Config file"), masked.ConfigFile)
	} else {
		fmt.Fprintf(a.stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(a.stdout)

	row := func(key, value string) {
		if value == "" {
			value = SubtitleStyle.Render("(not set)")
		} else {
			value = valueStyle.Render(value)
		}
		fmt.Fprintf(a.stdout, "%s: %s\n", keyStyle.Render(key), value)
	}
	row("root", string(masked.Root))
	row("manifest", string(masked.Manifest))
	row("configuration", masked.Configuration.String())
	row("build_number", masked.BuildNumber)
	row("registry_url", masked.RegistryURL)
	row("api_key", masked.APIKey)
	row("parallelism", fmt.Sprint(masked.Parallelism))
	row("version", masked.Version)
	row("metrics_file", string(masked.MetricsFile))
	row("verbose", fmt.Sprint(masked.Verbose))
}

func (a *App) showConfigJSON(s *config.Settings) error {
	data, err := json.MarshalIndent(s.Masked(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	fmt.Fprintln(a.stdout, string(data))
	return nil
}
