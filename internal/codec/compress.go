package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
)

// CompressionTag identifies the algorithm applied to an object payload. The
// values are written to disk and must not change.
type CompressionTag uint8

const (
	// CompressionNone stores the payload as is.
	CompressionNone CompressionTag = 0
	// CompressionLZ4 is LZ4 block compression, fast on dense numeric data.
	CompressionLZ4 CompressionTag = 1
	// CompressionZstd is zstd at the default level.
	CompressionZstd CompressionTag = 2
)

// MaxPayloadSize bounds the uncompressed size Decompress accepts.
const MaxPayloadSize = 1 << 30

// lz4MaxRatio is the largest expansion an LZ4 block can encode.
const lz4MaxRatio = 255

var (
	errIncompressible = errors.New("data is incompressible")

	// ErrPayloadTooLarge is returned by Decompress when the declared size
	// cannot be produced from the compressed input.
	ErrPayloadTooLarge = errors.New("payload size out of range")
)

// String returns the name of the compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// ParseCompressionTag parses the name returned by String.
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, errors.Errorf("unknown compression tag: %q", name)
	}
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("codec: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxPayloadSize))
	if err != nil {
		panic("codec: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress compresses data with the requested algorithm. When the output
// would not be smaller than the input, data is returned unchanged with
// CompressionNone.
func Compress(data []byte, tag CompressionTag) ([]byte, CompressionTag, error) {
	var (
		compressed []byte
		err        error
	)

	switch tag {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZstd:
		compressed, err = compressZstd(data)
	default:
		return nil, tag, errors.Errorf("unsupported compression tag: %d", tag)
	}

	if errors.Is(err, errIncompressible) {
		return data, CompressionNone, nil
	}
	if err != nil {
		return nil, tag, err
	}

	return compressed, tag, nil
}

// Decompress reverses Compress. size is the uncompressed length and is
// verified. A size above MaxPayloadSize, or one the compressed input cannot
// expand to, fails with ErrPayloadTooLarge before anything is allocated.
func Decompress(compressed []byte, tag CompressionTag, size int) ([]byte, error) {
	if size < 0 || size > MaxPayloadSize {
		return nil, errors.Wrapf(ErrPayloadTooLarge, "size %d", size)
	}

	switch tag {
	case CompressionNone:
		if len(compressed) != size {
			return nil, errors.Errorf("uncompressed payload: size %d does not match expected %d", len(compressed), size)
		}

		return compressed, nil
	case CompressionLZ4:
		return decompressLZ4(compressed, size)
	case CompressionZstd:
		return decompressZstd(compressed, size)
	default:
		return nil, errors.Errorf("unsupported compression tag: %d", tag)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	written, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 compress")
	}
	// CompressBlock returns 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}

	return dst[:written], nil
}

func decompressLZ4(compressed []byte, size int) ([]byte, error) {
	if size > len(compressed)*lz4MaxRatio {
		return nil, errors.Wrapf(ErrPayloadTooLarge, "lz4 decompress: size %d from %d bytes", size, len(compressed))
	}

	dst := make([]byte, size)

	read, err := lz4.UncompressBlock(compressed, dst)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 decompress")
	}
	if read != size {
		return nil, errors.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
	}

	return dst, nil
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}

	return compressed, nil
}

func decompressZstd(compressed []byte, size int) ([]byte, error) {
	// The decoder grows the buffer up to MaxPayloadSize.
	result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, min(size, 4*len(compressed))))
	if err != nil {
		return nil, errors.Wrap(err, "zstd decompress")
	}
	if len(result) != size {
		return nil, errors.Errorf("zstd decompress: got %d bytes, expected %d", len(result), size)
	}

	return result, nil
}

// Checksum returns the BLAKE3-256 digest of data.
func Checksum(data []byte) []byte {
	sum := blake3.Sum256(data)

	return sum[:]
}
