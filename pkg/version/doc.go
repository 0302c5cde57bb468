// SPDX-License-Identifier: MPL-2.0

// Package version implements the ordering used to pick between artifact versions.
//
// A version string is split into tokens on every non-alphanumeric separator
// ("1.10.0-beta_2" becomes 1, 10, 0, beta, 2). Numeric tokens compare as integers,
// textual tokens compare case-insensitively, and a numeric token always outranks a
// textual one at the same position, so qualifiers such as "alpha" or "SNAPSHOT"
// sort below the plain release. Missing trailing tokens count as numeric zero.
//
// Parsing never fails: any string yields a [Version].
package version
