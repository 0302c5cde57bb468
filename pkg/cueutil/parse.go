// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseResult contains the result of a successful parse.
type ParseResult[T any] struct {
	// Value is the decoded Go struct.
	Value *T

	// Unified is the unified CUE value, for callers that need fields the struct does not carry.
	Unified cue.Value
}

// ParseAndDecode compiles schema, unifies data with the definition at
// schemaPath (e.g. "#Manifest"), validates the result and decodes it into T.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), filename)
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(userValue)

	var validateOpts []cue.Option
	if options.concrete {
		validateOpts = append(validateOpts, cue.Concrete(true))
	}
	if err := unified.Validate(validateOpts...); err != nil {
		return nil, FormatError(err, filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filename)
	}

	return &ParseResult[T]{
		Value:   &result,
		Unified: unified,
	}, nil
}

// ParseFile reads path and decodes it with ParseAndDecode. The file name
// defaults to path in error messages.
func ParseFile[T any](schema []byte, path, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if info.Size() > options.maxFileSize {
		return nil, fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, info.Size(), options.maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseAndDecode[T](schema, data, schemaPath, append([]Option{WithFilename(path)}, opts...)...)
}
