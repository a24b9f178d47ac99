// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudtek/smartbuild/internal/build"
	"github.com/cloudtek/smartbuild/internal/metrics"
	"github.com/cloudtek/smartbuild/pkg/types"
)

func newRunCommand(app *App) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Run targets and their dependencies (default: " + build.DefaultTarget + ")",
		Long: `Run targets and everything they depend on, in dependency order.

Each target runs at most once. The first failing target stops the run.
Push requires --registry-url and --api-key; their absence is reported
before any target starts.`,
		ValidArgsFunction: completeTargets,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.run(cmd, args, dryRun); err != nil {
				return app.fail(err, verboseFlag(cmd))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the execution order without running anything")
	return cmd
}

func (a *App) run(cmd *cobra.Command, names []string, dryRun bool) error {
	sess, err := a.openSession(cmd)
	if err != nil {
		return err
	}

	order, err := planTargets(names)
	if err != nil {
		return err
	}
	if dryRun {
		a.printPlan(order)
		return nil
	}
	// Missing parameters fail before the toolchain or version is touched.
	if err := sess.settings.ValidateFor(order); err != nil {
		return &ExitError{Code: types.ExitConfiguration, Err: err}
	}

	if sess.settings.MetricsFile != "" {
		sess.metrics = metrics.New()
	}
	fields, err := a.resolveVersion(cmd.Context(), sess)
	if err != nil {
		return err
	}
	tc, err := a.newToolchain(a.stdout, a.stderr, sess.metrics.ObserveInvocation)
	if err != nil {
		return &ExitError{Code: types.ExitConfiguration, Err: err}
	}
	b, err := a.newBuild(sess, fields, tc)
	if err != nil {
		return err
	}

	start := time.Now()
	runErr := b.Run(cmd.Context(), names...)
	if sess.metrics != nil {
		if err := sess.metrics.WriteTextfile(sess.settings.MetricsFile); err != nil {
			sess.logger.Error("failed to write metrics", "path", sess.settings.MetricsFile, "err", err)
		}
	}
	if runErr != nil {
		return &ExitError{Code: exitCodeFor(runErr), Err: runErr}
	}

	requested := names
	if len(requested) == 0 {
		requested = []string{build.DefaultTarget}
	}
	fmt.Fprintf(a.stdout, "%s %s (version %s, %s)\n",
		SuccessStyle.Render("✓ Build succeeded:"),
		strings.Join(requested, ", "),
		fields.PackageVersion,
		time.Since(start).Round(time.Millisecond))
	return nil
}

// completeTargets offers target names for shell completion.
func completeTargets(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return targetNames(), cobra.ShellCompDirectiveNoFileComp
}
