package common

import (
	"fmt"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// GetSize returns the size of the file at path in kibibytes, rounded half to
// even, formatted as "<N> KB".
func (t *Toolkit) GetSize(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(err, "unable to get size of %s", path)
	}

	kb := int64(math.RoundToEven(float64(info.Size()) / 1024))

	t.logger.Debug("file size", "path", path, "size", humanize.IBytes(uint64(info.Size())))

	return fmt.Sprintf("%d KB", kb), nil
}
