// SPDX-License-Identifier: MPL-2.0

// Package repository provides the artifact sources a resolver pulls from.
//
// A repository is addressed with the Maven layout: files live under
// <group path>/<artifact>/<version>/ and each artifact directory carries a
// maven-metadata.xml version index. Both remote HTTP(S) repositories and local
// directory mirrors implement the same Repository interface.
package repository
