package common

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"

	"github.com/askiada/go-mlpipeline/internal/atomicfile"
)

// Record is a structured record: string keys mapped to JSON-compatible
// values.
type Record map[string]any

// SaveRecord writes record as indented JSON at path, replacing any existing
// file in one rename. Values JSON cannot represent fail with
// ErrUnsupportedType and nothing is written.
func (t *Toolkit) SaveRecord(path string, record Record) error {
	data, err := json.MarshalIndent(keepFloats(map[string]any(record)), "", "    ")
	if err != nil {
		return newError("save record", path, ErrUnsupportedType, err)
	}

	data = append(data, '\n')

	err = atomicfile.WriteFile(path, data, t.fileMode)
	if err != nil {
		return errors.Wrapf(err, "unable to save record %s", path)
	}

	t.logger.Info("json file saved", "path", path)

	return nil
}

// LoadRecord reads the JSON record at path. Comments and trailing commas are
// tolerated so hand-edited records load. A file that does not hold a single
// JSON object fails with ErrMalformedRecord.
func (t *Toolkit) LoadRecord(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load record %s", path)
	}

	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.UseNumber()

	var doc any

	err = decoder.Decode(&doc)
	if err != nil {
		return nil, newError("load record", path, ErrMalformedRecord, err)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, newError("load record", path, ErrMalformedRecord, errors.New("trailing data after top-level value"))
	}

	values, ok := normalize(doc).(map[string]any)
	if !ok {
		return nil, newError("load record", path, ErrMalformedRecord, errors.Errorf("top level is %T, not an object", doc))
	}

	t.logger.Info("json file loaded", "path", path)

	return newTree(values), nil
}

// jsonFloat marshals like float64 but always keeps a fraction or exponent,
// so whole numbers load back as floats.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	return marshalFloat(float64(f))
}

type jsonFloat32 float32

func (f jsonFloat32) MarshalJSON() ([]byte, error) {
	return marshalFloat(float32(f))
}

func marshalFloat(f any) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}

	if !strings.ContainsAny(string(data), ".eE") {
		data = append(data, ".0"...)
	}

	return data, nil
}

// keepFloats returns v with every float replaced by a jsonFloat.
func keepFloats(v any) any {
	switch val := v.(type) {
	case float64:
		return jsonFloat(val)
	case float32:
		return jsonFloat32(val)
	case Record:
		return keepFloats(map[string]any(val))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = keepFloats(item)
		}

		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = keepFloats(item)
		}

		return out
	case []float64:
		out := make([]jsonFloat, len(val))
		for i, item := range val {
			out[i] = jsonFloat(item)
		}

		return out
	default:
		return v
	}
}
