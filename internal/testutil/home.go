// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// SetHomeDir points the platform's home variable at dir and returns a
// cleanup function to restore the original value.
//
// Platform handling:
//   - Windows: Sets USERPROFILE
//   - Linux/macOS: Sets HOME
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    tmpDir := t.TempDir()
//	    cleanup := testutil.SetHomeDir(t, tmpDir)
//	    defer cleanup()
//
//	    // Test code that uses home directory...
//	}

func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		return MustSetenv(t, "USERPROFILE", dir)
	default:
		return MustSetenv(t, "HOME", dir)
	}
}
