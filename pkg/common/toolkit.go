package common

import (
	"os"

	"github.com/askiada/go-mlpipeline/internal/codec"
	"github.com/askiada/go-mlpipeline/pkg/logging"
)

// Compression selects the algorithm applied to object payloads.
type Compression = codec.CompressionTag

const (
	CompressionNone = codec.CompressionNone
	CompressionLZ4  = codec.CompressionLZ4
	CompressionZstd = codec.CompressionZstd
)

// ParseCompression returns the compression named none, lz4 or zstd.
func ParseCompression(name string) (Compression, error) {
	return codec.ParseCompressionTag(name)
}

// Toolkit carries the collaborators shared by every operation of the layer.
// It holds no per-path state and is safe for concurrent use; callers writing
// the same path concurrently must serialise access themselves.
type Toolkit struct {
	logger      logging.Logger
	compression Compression
	fileMode    os.FileMode
	dirMode     os.FileMode
}

// Option configures a Toolkit.
type Option func(t *Toolkit)

// WithLogger sets the logger operations report to.
func WithLogger(logger logging.Logger) Option {
	return func(t *Toolkit) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithCompression sets the compression used by SaveObject.
func WithCompression(compression Compression) Option {
	return func(t *Toolkit) {
		t.compression = compression
	}
}

// WithFileMode sets the permission bits of written files.
func WithFileMode(mode os.FileMode) Option {
	return func(t *Toolkit) {
		t.fileMode = mode
	}
}

// WithDirMode sets the permission bits of directories created by
// EnsureDirectories.
func WithDirMode(mode os.FileMode) Option {
	return func(t *Toolkit) {
		t.dirMode = mode
	}
}

// New creates a Toolkit. Without options it logs through slog.Default,
// compresses objects with zstd and writes files 0644 and directories 0755.
func New(opts ...Option) *Toolkit {
	t := &Toolkit{
		logger:      logging.NewDefaultSlogLogger(),
		compression: CompressionZstd,
		fileMode:    0o644,
		dirMode:     0o755,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Logger returns the logger operations report to.
func (t *Toolkit) Logger() logging.Logger {
	return t.logger
}
