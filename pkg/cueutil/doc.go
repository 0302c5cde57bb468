// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
// Configuration, project manifests and lock files all follow the same flow:
// compile the schema, unify the user document with one of its definitions,
// validate and decode into a Go struct.
//
//	//go:embed manifest_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseFile[Manifest](schema, "depfetch.cue", "#Manifest")
//	if err != nil {
//	    return nil, err // *ValidationError with CUE paths
//	}
//	return result.Value, nil
package cueutil
