// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"

	"github.com/cloudtek/smartbuild/internal/config"
	"github.com/cloudtek/smartbuild/internal/dag"
	"github.com/cloudtek/smartbuild/internal/issue"
	"github.com/cloudtek/smartbuild/internal/target"
	"github.com/cloudtek/smartbuild/internal/toolchain"
	"github.com/cloudtek/smartbuild/internal/version"
	"github.com/cloudtek/smartbuild/pkg/manifest"
	"github.com/cloudtek/smartbuild/pkg/types"
)

// issueFor maps an error to the catalog entry that explains it.
func issueFor(err error) (issue.Id, bool) {
	if id, ok := issue.IssueOf(err); ok {
		return id, true
	}
	var cycle *dag.CycleError
	switch {
	case errors.Is(err, manifest.ErrManifestNotFound):
		return issue.ManifestNotFoundId, true
	case errors.Is(err, manifest.ErrInvalidManifest):
		return issue.ManifestInvalidId, true
	case errors.Is(err, manifest.ErrUnsupportedFormat):
		return issue.ManifestParseErrorId, true
	case errors.Is(err, config.ErrMissingParameter):
		return issue.MissingParameterId, true
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, config.ErrInvalidConfiguration):
		return issue.ConfigLoadFailedId, true
	case errors.Is(err, dag.ErrUnknownNode):
		return issue.TargetNotFoundId, true
	case errors.As(err, &cycle):
		return issue.DependencyCycleId, true
	case errors.Is(err, toolchain.ErrToolchainNotFound):
		return issue.ToolchainNotFoundId, true
	case errors.Is(err, version.ErrInvalidVersion):
		return issue.VersionResolveFailedId, true
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId, true
	case errors.Is(err, target.ErrTargetFailed):
		return issue.TargetFailedId, true
	default:
		return 0, false
	}
}

// exitCodeFor classifies a run failure. Only target body failures are
// ExitTargetFailed; everything detected before a target ran is a
// configuration error.
func exitCodeFor(err error) types.ExitCode {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, target.ErrTargetFailed) {
		return types.ExitTargetFailed
	}
	return types.ExitConfiguration
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// fail prints guidance for err and returns it as an *ExitError. In verbose
// mode the matching issue catalog entry is rendered too.
func (a *App) fail(err error, verbose bool) error {
	if verbose {
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, true))
		if id, ok := issueFor(err); ok {
			renderIssue(a.stderr, id)
		}
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: exitCodeFor(err), Err: err}
}

// renderIssue writes the catalog entry for id to w.
func renderIssue(w io.Writer, id issue.Id) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render("dark")
	if err != nil {
		log.Warn("failed to render issue catalog entry", "issueID", id, "err", err)
		return
	}
	fmt.Fprint(w, rendered)
}
