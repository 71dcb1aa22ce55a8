package stage_test

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-mlpipeline/pkg/common"
	"github.com/askiada/go-mlpipeline/pkg/logging"
)

func newToolkit() *common.Toolkit {
	return common.New(common.WithLogger(logging.NoOpLogger{}))
}

type entry struct {
	name    string
	content string
}

func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()

	var buf bytes.Buffer

	wrt := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := wrt.Create(e.name)
		require.NoError(t, err)

		if e.content != "" {
			_, err = f.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}

	require.NoError(t, wrt.Close())

	return buf.Bytes()
}
