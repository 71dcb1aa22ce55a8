package common

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-mlpipeline/internal/codec"
)

// Kind tags the variant of a stored object. Values are written to disk.
type Kind string

const (
	KindBytes   Kind = "bytes"
	KindString  Kind = "string"
	KindBool    Kind = "bool"
	KindInt     Kind = "int"
	KindFloat   Kind = "float"
	KindFloats  Kind = "floats"
	KindInts    Kind = "ints"
	KindStrings Kind = "strings"
	KindMap     Kind = "map"
	KindMatrix  Kind = "matrix"
	KindVector  Kind = "vector"
)

// encodeObject maps v onto one of the supported kinds and returns its
// payload. Integers of any width are stored as int64 and floats as float64,
// which is what decodeObject returns for them. A uint64 above math.MaxInt64
// is stored as a float, as it is inside maps.
func encodeObject(v any) (Kind, []byte, error) {
	switch val := v.(type) {
	case []byte:
		return marshalKind(KindBytes, val)
	case string:
		return marshalKind(KindString, val)
	case bool:
		return marshalKind(KindBool, val)
	case int64:
		return marshalKind(KindInt, val)
	case float64:
		return marshalKind(KindFloat, val)
	case int, int8, int16, int32, uint, uint8, uint16, uint32, uint64, float32:
		return encodeObject(normalize(val))
	case []float64:
		return marshalKind(KindFloats, val)
	case []int64:
		return marshalKind(KindInts, val)
	case []string:
		return marshalKind(KindStrings, val)
	case map[string]any:
		normalized, err := plainValue(val)
		if err != nil {
			return "", nil, err
		}

		return marshalKind(KindMap, normalized)
	case Record:
		return encodeObject(map[string]any(val))
	case *mat.Dense:
		if val == nil || val.IsEmpty() {
			return "", nil, errors.Wrap(ErrUnsupportedType, "empty matrix")
		}

		payload, err := val.MarshalBinary()
		if err != nil {
			return "", nil, errors.Wrap(err, "unable to marshal matrix")
		}

		return KindMatrix, payload, nil
	case *mat.VecDense:
		if val == nil || val.IsEmpty() {
			return "", nil, errors.Wrap(ErrUnsupportedType, "empty vector")
		}

		payload, err := val.MarshalBinary()
		if err != nil {
			return "", nil, errors.Wrap(err, "unable to marshal vector")
		}

		return KindVector, payload, nil
	default:
		return "", nil, errors.Wrapf(ErrUnsupportedType, "%T", v)
	}
}

func marshalKind(kind Kind, v any) (Kind, []byte, error) {
	payload, err := codec.Marshal(v)
	if err != nil {
		return "", nil, errors.Wrapf(err, "unable to marshal %s", kind)
	}

	return kind, payload, nil
}

func decodeObject(kind Kind, payload []byte) (any, error) {
	switch kind {
	case KindBytes:
		return unmarshalKind[[]byte](payload)
	case KindString:
		return unmarshalKind[string](payload)
	case KindBool:
		return unmarshalKind[bool](payload)
	case KindInt:
		return unmarshalKind[int64](payload)
	case KindFloat:
		return unmarshalKind[float64](payload)
	case KindFloats:
		return unmarshalKind[[]float64](payload)
	case KindInts:
		return unmarshalKind[[]int64](payload)
	case KindStrings:
		return unmarshalKind[[]string](payload)
	case KindMap:
		return unmarshalKind[map[string]any](payload)
	case KindMatrix:
		m := &mat.Dense{}

		err := m.UnmarshalBinary(payload)
		if err != nil {
			return nil, err
		}

		return m, nil
	case KindVector:
		v := &mat.VecDense{}

		err := v.UnmarshalBinary(payload)
		if err != nil {
			return nil, err
		}

		return v, nil
	default:
		return nil, errors.Errorf("unknown object kind %q", kind)
	}
}

func unmarshalKind[T any](payload []byte) (any, error) {
	var v T

	err := codec.Unmarshal(payload, &v)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// plainValue checks that v only holds JSON-like values and returns it with
// numbers normalized, so a decoded map compares equal to what was saved.
func plainValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool, string, []byte:
		return val, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return normalize(val), nil
	case Record:
		return plainValue(map[string]any(val))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			normalized, err := plainValue(item)
			if err != nil {
				return nil, errors.Wrapf(err, "key %q", k)
			}

			out[k] = normalized
		}

		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			normalized, err := plainValue(item)
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}

			out[i] = normalized
		}

		return out, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "%T", v)
	}
}
