package pack

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile stores the archive at path via a temporary file in the same
// directory, so a failed write never leaves a partial pack behind.
func WriteFile(path string, a *Archive) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("pack: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".mcpack-*")
	if err != nil {
		return fmt.Errorf("pack: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("pack: chmod %s: %w", tmpName, err)
	}
	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		return fmt.Errorf("pack: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pack: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("pack: rename to %s: %w", path, err)
	}
	return nil
}
