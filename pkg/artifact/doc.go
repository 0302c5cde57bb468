// SPDX-License-Identifier: MPL-2.0

// Package artifact defines the identity of a fetchable artifact and the
// dependency values the resolver passes around.
//
// A [Coordinate] (group, artifact, optional classifier) is the identity of a
// dependency. Two [Dependency] values with the same coordinate are the same
// dependency regardless of version, scope or optionality; the resolver relies
// on this to break cycles and collapse diamonds.
//
// The package also owns the repository path layout shared by remote
// repositories and the local cache:
//
//	<group with dots as slashes>/<artifact>/<version>/<artifact>-<version>[-<classifier>].<ext>
package artifact
