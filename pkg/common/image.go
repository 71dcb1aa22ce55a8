package common

import (
	"encoding/base64"
	"os"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/internal/atomicfile"
)

// DecodeImage decodes the standard base64 text encoded and writes the bytes to
// filename, replacing any existing file. Line breaks in encoded are ignored.
// Invalid input fails with ErrDecode and nothing is written.
func (t *Toolkit) DecodeImage(encoded, filename string) error {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return newError("decode image", filename, ErrDecode, err)
	}

	err = atomicfile.WriteFile(filename, data, t.fileMode)
	if err != nil {
		return errors.Wrapf(err, "unable to write image %s", filename)
	}

	t.logger.Info("image decoded", "path", filename)

	return nil
}

// EncodeImageToText returns the standard base64 encoding of the file at path.
func (t *Toolkit) EncodeImageToText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "unable to read image %s", path)
	}

	t.logger.Info("image encoded", "path", path)

	return base64.StdEncoding.EncodeToString(data), nil
}
