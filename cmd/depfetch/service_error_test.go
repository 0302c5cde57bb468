// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/depfetch/depfetch/internal/issue"
	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/cueutil"
	"github.com/depfetch/depfetch/pkg/manifest"
	"github.com/depfetch/depfetch/pkg/pom"
	"github.com/depfetch/depfetch/pkg/repository"
	"github.com/depfetch/depfetch/pkg/resolver"
)

func TestNewServiceErrorPanicsOnNil(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil error")
		}
	}()
	_ = newServiceError(nil, 0, "")
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	dep := artifact.NewDependency("org.example", "lib", "1.0")
	download := &resolver.DownloadError{
		Operation:  resolver.OpFetch,
		Dependency: dep,
		Causes: []resolver.RepositoryFailure{
			{Repository: "https://a.example", Err: repository.ErrNotFound},
		},
	}
	mismatch := &resolver.DownloadError{
		Operation:  resolver.OpFetch,
		Dependency: dep,
		Causes: []resolver.RepositoryFailure{
			{Repository: "https://a.example", Err: &resolver.ChecksumMismatchError{Path: "lib-1.0.jar", Expected: "aa", Actual: "bb"}},
		},
	}

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{name: "download", err: fmt.Errorf("resolve: %w", download), want: issue.DownloadFailedId},
		{name: "checksum", err: mismatch, want: issue.ChecksumMismatchId},
		{name: "coordinate", err: &artifact.InvalidCoordinateError{Value: "x", Reason: "bad"}, want: issue.InvalidCoordinateId},
		{name: "scope", err: &artifact.InvalidScopeError{Value: "bogus"}, want: issue.InvalidCoordinateId},
		{name: "descriptor", err: &pom.ParseError{Field: "dependencies[0].groupId", Err: pom.ErrMissingField}, want: issue.DescriptorParseFailedId},
		{name: "manifest missing", err: &manifest.NotFoundError{Path: "depfetch.cue"}, want: issue.ManifestNotFoundId},
		{name: "manifest invalid", err: &cueutil.ValidationError{FilePath: "depfetch.cue"}, want: issue.ManifestParseFailedId},
		{name: "permission", err: fmt.Errorf("write cache: %w", fs.ErrPermission), want: issue.PermissionDeniedId},
		{name: "unknown", err: errors.New("boom"), want: 0},
		{
			name: "actionable wins",
			err: issue.NewErrorContext().
				WithOperation("check lock file").
				WithIssue(issue.LockDriftId).
				Wrap(download).
				BuildError(),
			want: issue.LockDriftId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := classifyError(tt.err); got != tt.want {
				t.Errorf("classifyError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestToServiceErrorKeepsExisting(t *testing.T) {
	t.Parallel()

	svcErr := newServiceError(errors.New("boom"), issue.CacheCorruptedId, "styled\n")
	if got := toServiceError(fmt.Errorf("wrapped: %w", svcErr), false); got != svcErr {
		t.Errorf("toServiceError() = %v, want the wrapped ServiceError", got)
	}
}

func TestFormatErrorForDisplayVerbose(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("dependency of org.example:app: %w", errors.New("connection refused"))

	if got := formatErrorForDisplay(err, false); got != err.Error() {
		t.Errorf("non-verbose = %q, want %q", got, err.Error())
	}
	verbose := formatErrorForDisplay(err, true)
	for _, want := range []string{"Error chain:", "1. dependency of org.example:app", "2. connection refused"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("verbose output missing %q:\n%s", want, verbose)
		}
	}
}

func TestRenderServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		svcErr     *ServiceError
		wantOutput []string
		wantEmpty  bool
	}{
		{name: "nil", svcErr: nil, wantEmpty: true},
		{
			name:       "styled only",
			svcErr:     newServiceError(errors.New("boom"), 0, "Error: boom\n"),
			wantOutput: []string{"Error: boom"},
		},
		{
			name:       "styled with issue",
			svcErr:     newServiceError(errors.New("boom"), issue.DownloadFailedId, "Error: boom\n"),
			wantOutput: []string{"Error: boom", "Download failed!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			renderServiceError(&buf, tt.svcErr, "notty")
			if tt.wantEmpty && buf.Len() != 0 {
				t.Errorf("expected no output, got %q", buf.String())
			}
			for _, want := range tt.wantOutput {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	t.Parallel()

	if got := (&ExitError{Code: 3}).Error(); got != "exit status 3" {
		t.Errorf("Error() = %q", got)
	}
	inner := errors.New("boom")
	e := &ExitError{Code: 1, Err: inner}
	if e.Error() != "boom" || !errors.Is(e, inner) {
		t.Errorf("ExitError should report and unwrap its cause")
	}
}
