// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPlanCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "plan [targets...]",
		Short:             "Print the execution order of targets without running them",
		ValidArgsFunction: completeTargets,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := planTargets(args)
			if err != nil {
				return app.fail(err, verboseFlag(cmd))
			}
			app.printPlan(order)
			return nil
		},
	}
}

func (a *App) printPlan(order []string) {
	fmt.Fprintln(a.stdout, TitleStyle.Render("Execution plan"))
	for i, name := range order {
		fmt.Fprintf(a.stdout, "  %d. %s\n", i+1, NameStyle.Render(name))
	}
	fmt.Fprintf(a.stdout, "%s\n", SubtitleStyle.Render(strings.Join(order, " -> ")))
}
