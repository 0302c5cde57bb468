// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // Maven repositories publish SHA-1 sidecars; it is the integrity format, not a security boundary.
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/depfetch/depfetch/pkg/artifact"
)

// fileFingerprint returns the hex SHA-1 of the file at path.
func fileFingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha1.New() //nolint:gosec // see import
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// parseSidecar extracts the hex digest from sidecar content. Published
// sidecars sometimes append the file name after the digest.
func parseSidecar(data []byte) string {
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// pairStatus is the outcome of checking a file against its sidecar.
type pairStatus int

const (
	pairValid pairStatus = iota
	pairMissingFile
	pairMissingSidecar
	pairMismatch
)

func (s pairStatus) String() string {
	switch s {
	case pairValid:
		return "ok"
	case pairMissingFile:
		return "missing file"
	case pairMissingSidecar:
		return "missing sidecar"
	default:
		return "mismatch"
	}
}

// checkPair re-hashes path and compares it with the stored sidecar.
func checkPair(path string) pairStatus {
	if _, err := os.Stat(path); err != nil {
		return pairMissingFile
	}
	stored, err := os.ReadFile(path + artifact.ExtChecksum)
	if err != nil {
		return pairMissingSidecar
	}
	actual, err := fileFingerprint(path)
	if err != nil {
		return pairMismatch
	}
	if strings.TrimSpace(string(stored)) != actual {
		return pairMismatch
	}
	return pairValid
}

// writeFileAtomic writes data to path through a temporary file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	return writeAtomic(path, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	})
}

// writeAtomic streams content produced by write into path. The file appears
// under its final name only after write succeeds.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err = write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
