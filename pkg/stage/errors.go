package stage

import "github.com/pkg/errors"

var (
	ErrDownload         = errors.New("unable to download data")
	ErrUnsafeArchive    = errors.New("archive entry escapes the extraction directory")
	ErrUnexpectedObject = errors.New("unexpected object in model file")
)
