package main

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDocuments(t *testing.T, dir, url string) (string, string) {
	t.Helper()

	root := filepath.Join(dir, "artifacts")
	configPath := filepath.Join(dir, "config.yaml")
	paramsPath := filepath.Join(dir, "params.yaml")

	configContent := `artifacts_root: ` + root + `
data_ingestion:
  root_dir: ` + root + `/data_ingestion
  source_URL: ` + url + `
  local_data_file: ` + root + `/data_ingestion/data.zip
  unzip_dir: ` + root + `/data_ingestion
prepare_base_model:
  root_dir: ` + root + `/prepare_base_model
  base_model_path: ` + root + `/prepare_base_model/base_model.bin
  updated_base_model_path: ` + root + `/prepare_base_model/base_model_updated.bin
`
	paramsContent := `AUGMENTATION: True
IMAGE_SIZE: [224, 224, 3]
BATCH_SIZE: 16
INCLUDE_TOP: False
EPOCHS: 1
CLASSES: 2
WEIGHTS: imagenet
LEARNING_RATE: 0.01
`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))
	require.NoError(t, os.WriteFile(paramsPath, []byte(paramsContent), 0o644))

	return configPath, paramsPath
}

func zipServer(t *testing.T) *httptest.Server {
	t.Helper()

	var buf bytes.Buffer

	wrt := zip.NewWriter(&buf)
	f, err := wrt.Create("images/Healthy/healthy.0.jpg")
	require.NoError(t, err)
	_, err = f.Write([]byte("healthy"))
	require.NoError(t, err)
	require.NoError(t, wrt.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srv := zipServer(t)
	configPath, paramsPath := writeDocuments(t, dir, srv.URL+"/data.zip")
	graphPath := filepath.Join(dir, "run.dot")
	logPath := filepath.Join(dir, "logs", "running_logs.log")

	var out bytes.Buffer

	err := run(context.Background(), []string{
		"--config", configPath,
		"--params", paramsPath,
		"--log-file", logPath,
		"--log-format", "text",
		"--graph", graphPath,
		"--compression", "lz4",
	}, &out)
	require.NoError(t, err)

	root := filepath.Join(dir, "artifacts")
	assert.FileExists(t, filepath.Join(root, "data_ingestion", "images", "Healthy", "healthy.0.jpg"))
	assert.FileExists(t, filepath.Join(root, "prepare_base_model", "base_model.bin"))
	assert.FileExists(t, filepath.Join(root, "prepare_base_model", "base_model_updated.bin"))
	assert.FileExists(t, filepath.Join(root, "prepare_base_model", "model_summary.json"))

	logs := out.String()
	assert.Contains(t, logs, ">>>>>> stage Data Ingestion stage started <<<<<<")
	assert.Contains(t, logs, ">>>>>> stage Prepare Base Model completed <<<<<<")
	assert.Contains(t, logs, "run_id=")

	fileLogs, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, logs, string(fileLogs))

	graph, err := os.ReadFile(graphPath)
	require.NoError(t, err)
	assert.Contains(t, string(graph), `"Data Ingestion stage" -> "Prepare Base Model"`)
}

func TestRunStageFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	configPath, paramsPath := writeDocuments(t, dir, srv.URL)

	var out bytes.Buffer

	err := run(context.Background(), []string{
		"--config", configPath,
		"--params", paramsPath,
		"--log-file", "",
	}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Data Ingestion stage")
	assert.Contains(t, out.String(), ">>>>>> stage Data Ingestion stage failed <<<<<<")
	assert.NotContains(t, out.String(), "Prepare Base Model")
}

func TestRunFlags(t *testing.T) {
	t.Parallel()

	tests := map[string][]string{
		"unknown flag":        {"--nope"},
		"extra argument":      {"extra"},
		"unknown log level":   {"--log-level", "loud", "--log-file", ""},
		"unknown log format":  {"--log-format", "xml"},
		"unknown compression": {"--compression", "gzip", "--log-file", ""},
		"missing config":      {"--config", filepath.Join(t.TempDir(), "missing.yaml"), "--log-file", ""},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			assert.Error(t, run(context.Background(), args, &out))
		})
	}
}

func TestRunHelp(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--help"}, &out))
	assert.False(t, strings.Contains(out.String(), "stage"))
}
