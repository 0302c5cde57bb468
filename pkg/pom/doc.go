// SPDX-License-Identifier: MPL-2.0

// Package pom parses Maven project object model descriptors into a typed Project.
//
// Optional fields fall back to their documented defaults: scope is compile,
// optional is false and packaging is jar. Identity fields of a declared
// dependency (groupId, artifactId, version) are mandatory, and their absence
// is reported as a *ParseError naming the missing field.
//
// Property references such as ${project.version} or entries from <properties>
// are substituted before validation. Missing versions are taken from the
// descriptor's own <dependencyManagement> section when it declares one.
package pom
