// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/depfetch/depfetch/internal/issue"
	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/cueutil"
	"github.com/depfetch/depfetch/pkg/manifest"
	"github.com/depfetch/depfetch/pkg/pom"
	"github.com/depfetch/depfetch/pkg/resolver"
)

// ServiceError is an error that carries rendering information for the CLI
// layer: an optional pre-styled message and an optional catalog entry.
// Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError maps err to the catalog entry that explains it, or 0.
// An ActionableError that names an entry wins over the cause-based mapping.
func classifyError(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.IssueId != 0 {
		return ae.IssueId
	}

	var verr *cueutil.ValidationError
	switch {
	case errors.Is(err, pom.ErrParse):
		return issue.DescriptorParseFailedId
	case errors.Is(err, artifact.ErrInvalidCoordinate), errors.Is(err, artifact.ErrInvalidScope):
		return issue.InvalidCoordinateId
	case errors.Is(err, resolver.ErrChecksumMismatch):
		return issue.ChecksumMismatchId
	case errors.Is(err, resolver.ErrDownload):
		return issue.DownloadFailedId
	case errors.Is(err, manifest.ErrNotFound):
		return issue.ManifestNotFoundId
	case errors.As(err, &verr):
		return issue.ManifestParseFailedId
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId
	default:
		return 0
	}
}

// toServiceError returns err as a ServiceError, classifying and styling it
// when it is not one already.
func toServiceError(err error, verbose bool) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	styled := ErrorStyle.Render("Error:") + " " + formatErrorForDisplay(err, verbose) + "\n"
	return newServiceError(err, classifyError(err), styled)
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their own Format; verbose mode adds the full cause chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	if verbose {
		return issue.WrapWithOperation(err, "complete command").Format(true)
	}
	return err.Error()
}

// renderServiceError prints the styled message first, then the issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, style string) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(style)
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// fail reports err on stderr and converts it into an ExitError so cobra and
// fang do not print it a second time.
func (a *App) fail(cmd *cobra.Command, err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	renderServiceError(a.stderr, toServiceError(err, a.flags.verbose), a.helpStyle)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: 1, Err: err}
}
