// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for the user. Errors can link to a catalog entry whose Markdown
// guidance is rendered with glamour when the CLI reports the failure.
package issue
