// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers that fail the test on error instead of
// returning it: working directory and environment changes, file fixtures,
// and a semaphore bounding concurrent container tests.
package testutil
