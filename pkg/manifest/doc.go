// SPDX-License-Identifier: MPL-2.0

// Package manifest reads the project manifest (depfetch.cue) and reads and
// writes its lock file (depfetch.lock.cue).
//
// The manifest lists the top-level dependencies of a project together with the
// repositories and scopes used to resolve them:
//
//	dependencies: [
//		{group: "com.google.code.gson", artifact: "gson", version: "2.10.1"},
//		{group: "org.slf4j", artifact: "slf4j-api", scope: "runtime"},
//	]
//	repositories: [{url: "https://repo1.maven.org/maven2"}]
//	scopes: ["compile", "runtime"]
//
// The lock file records the exact version, cache path and sha256 digest of
// every dependency in the resolved closure so later runs can detect drift.
package manifest
