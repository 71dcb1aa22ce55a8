// Package atomicfile writes whole files so that readers observe either the
// previous content or the new content, never a partial write.
package atomicfile

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WriteFile writes data to a temporary file in the directory of path, syncs it,
// then renames it over path. The temporary file is removed on every failure.
// The parent directory must already exist.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "unable to create temporary file for %s", path)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return errors.Wrapf(err, "unable to write temporary file for %s", path)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return errors.Wrapf(err, "unable to sync temporary file for %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)

		return errors.Wrapf(err, "unable to close temporary file for %s", path)
	}
	// CreateTemp always uses 0600.
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)

		return errors.Wrapf(err, "unable to set mode on temporary file for %s", path)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)

		return errors.Wrapf(err, "unable to rename temporary file into %s", path)
	}

	if parent, err := os.Open(dir); err == nil {
		parent.Sync()
		parent.Close()
	}

	return nil
}
