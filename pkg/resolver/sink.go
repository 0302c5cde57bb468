// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"sync"

	"github.com/depfetch/depfetch/pkg/artifact"
)

type (
	// Sink receives the artifacts of a completed resolution so the host can load them.
	// Inject is called once per dependency whose artifact file exists, dependencies
	// first. An error from Inject is logged and does not affect the resolution.
	Sink interface {
		Inject(ctx context.Context, dep artifact.Dependency, path string) error
	}

	// SinkFunc adapts a function to the Sink interface.
	SinkFunc func(ctx context.Context, dep artifact.Dependency, path string) error

	// Injection is one call recorded by a Collector.
	Injection struct {
		Dependency artifact.Dependency
		Path       string
	}

	// Collector is a Sink that records every injection, for building class paths.
	Collector struct {
		mu      sync.Mutex
		entries []Injection
	}
)

// Inject calls f.
func (f SinkFunc) Inject(ctx context.Context, dep artifact.Dependency, path string) error {
	return f(ctx, dep, path)
}

// Inject records the injection.
func (c *Collector) Inject(_ context.Context, dep artifact.Dependency, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, Injection{Dependency: dep, Path: path})
	return nil
}

// Injections returns the recorded injections in call order.
func (c *Collector) Injections() []Injection {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Injection, len(c.entries))
	copy(out, c.entries)
	return out
}

// Paths returns the injected file paths in call order.
func (c *Collector) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Path
	}
	return out
}
