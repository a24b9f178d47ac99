// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudtek/smartbuild/internal/build"
	"github.com/cloudtek/smartbuild/internal/config"
	"github.com/cloudtek/smartbuild/internal/target"
	"github.com/cloudtek/smartbuild/internal/version"
	"github.com/cloudtek/smartbuild/pkg/manifest"
	"github.com/cloudtek/smartbuild/pkg/types"
)

func newTargetsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the available targets and their edges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets, err := listTargets()
			if err != nil {
				return app.fail(err, verboseFlag(cmd))
			}
			app.printTargets(targets)
			return nil
		},
	}
}

// graph returns a Build over an empty manifest. The target graph is fixed,
// so listing and planning need no manifest or settings.
func graph() (*build.Build, error) {
	return build.New(&manifest.Manifest{}, &config.Settings{Parallelism: 1}, version.Fields{}, nil)
}

func listTargets() ([]target.Target, error) {
	b, err := graph()
	if err != nil {
		return nil, err
	}
	return b.Targets(), nil
}

// planTargets returns the execution order of names.
func planTargets(names []string) ([]string, error) {
	b, err := graph()
	if err != nil {
		return nil, err
	}
	order, err := b.Plan(names...)
	if err != nil {
		return nil, &ExitError{Code: types.ExitConfiguration, Err: err}
	}
	return order, nil
}

func targetNames() []string {
	targets, err := listTargets()
	if err != nil {
		return nil
	}
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return names
}

func (a *App) printTargets(targets []target.Target) {
	fmt.Fprintln(a.stdout, TitleStyle.Render("Targets"))
	for _, t := range targets {
		name := t.Name
		if name == build.DefaultTarget {
			name += " (default)"
		}
		fmt.Fprintf(a.stdout, "  %-28s %s\n", NameStyle.Render(name), t.Description)
		if len(t.DependsOn) > 0 {
			fmt.Fprintf(a.stdout, "      %s %s\n", SubtitleStyle.Render("depends on:"), strings.Join(t.DependsOn, ", "))
		}
		if len(t.Before) > 0 {
			fmt.Fprintf(a.stdout, "      %s %s\n", SubtitleStyle.Render("runs before:"), strings.Join(t.Before, ", "))
		}
	}
}
