package common_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-mlpipeline/internal/codec"
	"github.com/askiada/go-mlpipeline/pkg/common"
)

func TestObjectRoundTrip(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		value any
		want  any
	}{
		"bytes":   {value: []byte{0, 1, 2, 255}, want: []byte{0, 1, 2, 255}},
		"string":  {value: "vgg16", want: "vgg16"},
		"bool":    {value: true, want: true},
		"int":     {value: 42, want: int64(42)},
		"int64":   {value: int64(-7), want: int64(-7)},
		"int8":    {value: int8(-8), want: int64(-8)},
		"int16":   {value: int16(300), want: int64(300)},
		"uint":    {value: uint(9), want: int64(9)},
		"uint8":   {value: uint8(255), want: int64(255)},
		"uint16":  {value: uint16(65535), want: int64(65535)},
		"uint32":  {value: uint32(1 << 31), want: int64(1 << 31)},
		"uint64":  {value: uint64(1 << 40), want: int64(1 << 40)},
		"float32": {value: float32(0.5), want: float64(0.5)},
		"float64": {value: 0.91, want: 0.91},
		"floats":  {value: []float64{1, 2.5, -3}, want: []float64{1, 2.5, -3}},
		"ints":    {value: []int64{224, 224, 3}, want: []int64{224, 224, 3}},
		"strings": {value: []string{"cat", "dog"}, want: []string{"cat", "dog"}},
		"map": {
			value: map[string]any{
				"epochs":  1,
				"rate":    0.01,
				"weights": "imagenet",
				"shape":   []any{224, 224, 3},
				"nested":  map[string]any{"top": false, "empty": nil},
			},
			want: map[string]any{
				"epochs":  int64(1),
				"rate":    0.01,
				"weights": "imagenet",
				"shape":   []any{int64(224), int64(224), int64(3)},
				"nested":  map[string]any{"top": false, "empty": nil},
			},
		},
		"record": {
			value: common.Record{"accuracy": 0.91, "epoch": 5},
			want:  map[string]any{"accuracy": 0.91, "epoch": int64(5)},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tk, logger := newToolkit(t)
			path := filepath.Join(t.TempDir(), "object.bin")

			require.NoError(t, tk.SaveObject(path, tc.value))

			got, err := tk.LoadObject(path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, []string{"binary file saved " + path, "binary file loaded " + path}, logger.messages())
		})
	}
}

func TestObjectMatrix(t *testing.T) {
	t.Parallel()

	for _, compression := range []common.Compression{common.CompressionNone, common.CompressionLZ4, common.CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			t.Parallel()

			tk, _ := newToolkit(t, common.WithCompression(compression))
			dir := t.TempDir()

			data := make([]float64, 64*32)
			for i := range data {
				data[i] = float64(i%7) * 0.25
			}

			weights := mat.NewDense(64, 32, data)
			bias := mat.NewVecDense(4, []float64{0.1, -0.2, 0.3, -0.4})

			require.NoError(t, tk.SaveObject(filepath.Join(dir, "weights.bin"), weights))
			require.NoError(t, tk.SaveObject(filepath.Join(dir, "bias.bin"), bias))

			got, err := tk.LoadObject(filepath.Join(dir, "weights.bin"))
			require.NoError(t, err)
			require.IsType(t, &mat.Dense{}, got)
			assert.True(t, mat.Equal(weights, got.(*mat.Dense)))

			got, err = tk.LoadObject(filepath.Join(dir, "bias.bin"))
			require.NoError(t, err)
			require.IsType(t, &mat.VecDense{}, got)
			assert.True(t, mat.Equal(bias, got.(*mat.VecDense)))
		})
	}
}

func TestObjectReadableAcrossCompression(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "object.bin")
	writer, _ := newToolkit(t, common.WithCompression(common.CompressionLZ4))
	reader, _ := newToolkit(t, common.WithCompression(common.CompressionNone))

	require.NoError(t, writer.SaveObject(path, []string{"a", "b", "a", "b", "a", "b"}))

	got, err := reader.LoadObject(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "a", "b", "a", "b"}, got)
}

func TestSaveObjectUnsupported(t *testing.T) {
	t.Parallel()

	type config struct{ Name string }

	tests := map[string]any{
		"struct":      config{Name: "x"},
		"chan":        make(chan int),
		"nil":         nil,
		"nil matrix":  (*mat.Dense)(nil),
		"empty vec":   &mat.VecDense{},
		"nested func": map[string]any{"fn": func() {}},
	}

	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tk, logger := newToolkit(t)
			path := filepath.Join(t.TempDir(), "object.bin")

			err := tk.SaveObject(path, value)
			assert.ErrorIs(t, err, common.ErrUnsupportedType)
			assertNoFile(t, path)
			assert.Empty(t, logger.messages())
		})
	}
}

func TestSaveObjectKeepsPreviousOnFailure(t *testing.T) {
	t.Parallel()

	tk, _ := newToolkit(t)
	path := filepath.Join(t.TempDir(), "object.bin")

	require.NoError(t, tk.SaveObject(path, "first"))
	require.Error(t, tk.SaveObject(path, struct{}{}))

	got, err := tk.LoadObject(path)
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestLoadObjectCorrupt(t *testing.T) {
	t.Parallel()

	tk, _ := newToolkit(t, common.WithCompression(common.CompressionNone))
	dir := t.TempDir()
	good := filepath.Join(dir, "good.bin")
	require.NoError(t, tk.SaveObject(good, []float64{1, 2, 3, 4}))

	content, err := os.ReadFile(good)
	require.NoError(t, err)

	flipped := append([]byte(nil), content...)
	flipped[len(flipped)-1] ^= 0xff

	version := append([]byte(nil), content...)
	version[4] = 2

	tests := map[string][]byte{
		"empty":     {},
		"magic":     append([]byte("NOPE"), content[4:]...),
		"version":   version,
		"truncated": content[:len(content)/2],
		"checksum":  flipped,
		"garbage":   append([]byte("MLOB\x01"), 0xff, 0x00, 0x13),
	}

	for name, data := range tests {
		path := filepath.Join(dir, name+".bin")
		require.NoError(t, os.WriteFile(path, data, 0o644))

		_, err := tk.LoadObject(path)
		assert.ErrorIs(t, err, common.ErrDeserialization, name)
	}
}

func TestLoadObjectOversizedPayload(t *testing.T) {
	t.Parallel()

	tk, _ := newToolkit(t)
	dir := t.TempDir()

	for _, tag := range []codec.CompressionTag{codec.CompressionNone, codec.CompressionLZ4, codec.CompressionZstd} {
		for _, size := range []int64{1 << 60, 1 << 40, 1 << 20} {
			envelope, err := codec.Marshal(map[int]any{
				1: string(common.KindFloats),
				2: uint8(tag),
				3: size,
				4: []byte{1},
				5: []byte{1, 2, 3},
			})
			require.NoError(t, err)

			path := filepath.Join(dir, tag.String()+".bin")
			require.NoError(t, os.WriteFile(path, append([]byte("MLOB\x01"), envelope...), 0o644))

			_, err = tk.LoadObject(path)
			assert.ErrorIs(t, err, common.ErrDeserialization, "%s %d", tag, size)
		}
	}
}

func TestLoadObjectNotFound(t *testing.T) {
	t.Parallel()

	tk, _ := newToolkit(t)

	_, err := tk.LoadObject(filepath.Join(t.TempDir(), "missing.bin"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
