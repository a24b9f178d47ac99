// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudtek/smartbuild/internal/issue"
	"github.com/cloudtek/smartbuild/internal/version"
	"github.com/cloudtek/smartbuild/pkg/fsutil"
)

func newManifestCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Show modules, artifacts, test projects and the final coverage artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.showManifest(cmd); err != nil {
				return app.fail(err, verboseFlag(cmd))
			}
			return nil
		},
	}
}

func (a *App) showManifest(cmd *cobra.Command) error {
	sess, err := a.openSession(cmd)
	if err != nil {
		return err
	}
	b, err := a.newBuild(sess, version.Fields{}, nil)
	if err != nil {
		return err
	}
	r := b.Resolver()

	fmt.Fprintln(a.stdout, TitleStyle.Render("Build manifest"))
	fmt.Fprintf(a.stdout, "%s: %s\n\n", SubtitleStyle.Render("File"), sess.manifestPath)

	for _, mod := range sess.manifest.Modules {
		fmt.Fprintf(a.stdout, "%s\n", NameStyle.Render(mod.Name))
		if len(mod.Artifacts) == 0 {
			fmt.Fprintf(a.stdout, "  %s\n", SubtitleStyle.Render("(no artifacts)"))
		}
		for _, art := range mod.Artifacts {
			tests := SubtitleStyle.Render("no tests")
			if fsutil.FileExists(r.TestProject(mod.Name, art)) {
				tests = SuccessStyle.Render("tests")
			}
			fmt.Fprintf(a.stdout, "  - %s (%s, %s, %s) [%s]\n", art.Name, art.Project, art.Type, art.Stability, tests)
		}
	}

	fmt.Fprintln(a.stdout)
	if final, ok := b.Final(); ok {
		fmt.Fprintf(a.stdout, "%s: %s\n", SubtitleStyle.Render("Final coverage artifact"), NameStyle.Render(final.String()))
	} else {
		fmt.Fprintf(a.stdout, "%s: %s\n", SubtitleStyle.Render("Final coverage artifact"), WarningStyle.Render("none (coverage will never be finalized)"))
		if verboseFlag(cmd) {
			renderIssue(a.stdout, issue.CoverageNotFinalizedId)
		}
	}
	return nil
}
