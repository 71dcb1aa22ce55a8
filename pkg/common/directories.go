package common

import (
	"os"
)

// EnsureDirectories creates every path with its missing parents. Existing
// directories are left alone, so it is safe to call on every run. It stops at
// the first path that cannot be created and returns ErrDirectoryCreation
// wrapping the cause, leaving the remaining paths untouched.
func (t *Toolkit) EnsureDirectories(paths []string, verbose bool) error {
	for _, path := range paths {
		err := os.MkdirAll(path, t.dirMode)
		if err != nil {
			return newError("ensure directory", path, ErrDirectoryCreation, err)
		}

		if verbose {
			t.logger.Info("created directory", "path", path)
		}
	}

	return nil
}
