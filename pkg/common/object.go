package common

import (
	"bytes"
	"os"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/internal/atomicfile"
	"github.com/askiada/go-mlpipeline/internal/codec"
)

// Object files start with objectMagic and a format version byte, followed by
// a CBOR encoded objectEnvelope.
const (
	objectMagic   = "MLOB"
	objectVersion = 1
)

type objectEnvelope struct {
	Kind        Kind                 `cbor:"1,keyasint"`
	Compression codec.CompressionTag `cbor:"2,keyasint"`
	Size        int                  `cbor:"3,keyasint"`
	Checksum    []byte               `cbor:"4,keyasint"`
	Payload     []byte               `cbor:"5,keyasint"`
}

// SaveObject serializes value and writes it to path, replacing any existing
// file in one rename. The supported values are []byte, string, bool, signed
// and unsigned integers of any width (loaded as int64), float32 and float64
// (loaded as float64), []float64, []int64, []string, map[string]any (and Record) holding
// JSON-like values, *mat.Dense and *mat.VecDense. Any other value fails with
// ErrUnsupportedType before the filesystem is touched.
func (t *Toolkit) SaveObject(path string, value any) error {
	kind, payload, err := encodeObject(value)
	if err != nil {
		if errors.Is(err, ErrUnsupportedType) {
			return newError("save object", path, ErrUnsupportedType, err)
		}

		return errors.Wrapf(err, "unable to encode object for %s", path)
	}

	compressed, tag, err := codec.Compress(payload, t.compression)
	if err != nil {
		return errors.Wrapf(err, "unable to compress object for %s", path)
	}

	envelope, err := codec.Marshal(objectEnvelope{
		Kind:        kind,
		Compression: tag,
		Size:        len(payload),
		Checksum:    codec.Checksum(payload),
		Payload:     compressed,
	})
	if err != nil {
		return errors.Wrapf(err, "unable to encode envelope for %s", path)
	}

	data := make([]byte, 0, len(objectMagic)+1+len(envelope))
	data = append(data, objectMagic...)
	data = append(data, objectVersion)
	data = append(data, envelope...)

	err = atomicfile.WriteFile(path, data, t.fileMode)
	if err != nil {
		return errors.Wrapf(err, "unable to save object %s", path)
	}

	t.logger.Info("binary file saved", "path", path, "kind", kind, "compression", tag.String())

	return nil
}

// LoadObject reads the object stored at path by SaveObject. Files with an
// unknown header or version, a corrupt envelope or a checksum mismatch fail
// with ErrDeserialization.
func (t *Toolkit) LoadObject(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load object %s", path)
	}

	header := len(objectMagic) + 1
	if len(data) < header || !bytes.Equal(data[:len(objectMagic)], []byte(objectMagic)) {
		return nil, newError("load object", path, ErrDeserialization, errors.New("missing object header"))
	}

	if version := data[len(objectMagic)]; version != objectVersion {
		return nil, newError("load object", path, ErrDeserialization, errors.Errorf("unsupported format version %d", version))
	}

	var envelope objectEnvelope

	err = codec.Unmarshal(data[header:], &envelope)
	if err != nil {
		return nil, newError("load object", path, ErrDeserialization, err)
	}

	if envelope.Size < 0 || envelope.Size > codec.MaxPayloadSize {
		return nil, newError("load object", path, ErrDeserialization, errors.Errorf("payload size %d out of range", envelope.Size))
	}

	payload, err := codec.Decompress(envelope.Payload, envelope.Compression, envelope.Size)
	if err != nil {
		return nil, newError("load object", path, ErrDeserialization, err)
	}

	if !bytes.Equal(codec.Checksum(payload), envelope.Checksum) {
		return nil, newError("load object", path, ErrDeserialization, errors.New("checksum mismatch"))
	}

	value, err := decodeObject(envelope.Kind, payload)
	if err != nil {
		return nil, newError("load object", path, ErrDeserialization, err)
	}

	t.logger.Info("binary file loaded", "path", path, "kind", envelope.Kind)

	return value, nil
}
