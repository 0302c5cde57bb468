// SPDX-License-Identifier: MPL-2.0

// Package resolver resolves dependencies and their transitive closure into a
// local cache.
//
// Each dependency is resolved at most once per Session. A dependency without
// a version takes the newest version reported by the first repository that
// answers; when every repository fails, the highest version already in the
// cache is used instead. Files are fetched from repositories in order, and the
// first repository that supplies both the descriptor and the artifact wins.
// Failures from every repository tried are collected into a *DownloadError.
//
// The cache mirrors the repository layout. Every file is stored next to a
// ".sha1" sidecar holding the hex SHA-1 of its content, and a cached pair is
// reused only when re-hashing the file reproduces the sidecar.
//
// Resolution is all-or-nothing per call: on failure no partial result is returned.
package resolver
