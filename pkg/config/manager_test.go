package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-mlpipeline/pkg/common"
	"github.com/askiada/go-mlpipeline/pkg/config"
	"github.com/askiada/go-mlpipeline/pkg/logging"
)

const paramsYAML = `AUGMENTATION: True
IMAGE_SIZE: [224, 224, 3]
BATCH_SIZE: 16
INCLUDE_TOP: False
EPOCHS: 1
CLASSES: 2
WEIGHTS: imagenet
LEARNING_RATE: 0.01
`

func configYAML(root string) string {
	return `artifacts_root: ` + root + `
data_ingestion:
  root_dir: ` + root + `/data_ingestion
  source_URL: https://example.com/data.zip
  local_data_file: ` + root + `/data_ingestion/data.zip
  unzip_dir: ` + root + `/data_ingestion
prepare_base_model:
  root_dir: ` + root + `/prepare_base_model
  base_model_path: ` + root + `/prepare_base_model/base_model.bin
  updated_base_model_path: ` + root + `/prepare_base_model/base_model_updated.bin
`
}

func writeDocs(t *testing.T, configContent, paramsContent string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	paramsPath := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))
	require.NoError(t, os.WriteFile(paramsPath, []byte(paramsContent), 0o644))

	return configPath, paramsPath
}

func newToolkit() *common.Toolkit {
	return common.New(common.WithLogger(logging.NoOpLogger{}))
}

func TestManager(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "artifacts")
	configPath, paramsPath := writeDocs(t, configYAML(root), paramsYAML)

	m, err := config.NewManager(newToolkit(), configPath, paramsPath)
	require.NoError(t, err)
	assert.DirExists(t, root)

	params := m.Params()
	assert.Equal(t, config.Params{
		Augmentation: true,
		ImageSize:    []int{224, 224, 3},
		BatchSize:    16,
		IncludeTop:   false,
		Epochs:       1,
		Classes:      2,
		Weights:      "imagenet",
		LearningRate: 0.01,
	}, params)

	params.ImageSize[0] = 1
	assert.Equal(t, []int{224, 224, 3}, m.Params().ImageSize)

	ingestion, err := m.DataIngestionConfig()
	require.NoError(t, err)
	assert.Equal(t, &config.DataIngestionConfig{
		RootDir:       root + "/data_ingestion",
		SourceURL:     "https://example.com/data.zip",
		LocalDataFile: root + "/data_ingestion/data.zip",
		UnzipDir:      root + "/data_ingestion",
	}, ingestion)
	assert.DirExists(t, ingestion.RootDir)

	baseModel, err := m.PrepareBaseModelConfig()
	require.NoError(t, err)
	assert.Equal(t, &config.PrepareBaseModelConfig{
		RootDir:              root + "/prepare_base_model",
		BaseModelPath:        root + "/prepare_base_model/base_model.bin",
		UpdatedBaseModelPath: root + "/prepare_base_model/base_model_updated.bin",
		ParamsImageSize:      []int{224, 224, 3},
		ParamsLearningRate:   0.01,
		ParamsIncludeTop:     false,
		ParamsWeights:        "imagenet",
		ParamsClasses:        2,
	}, baseModel)
	assert.DirExists(t, baseModel.RootDir)
}

func TestManagerShippedDocuments(t *testing.T) {
	t.Parallel()

	tree, err := newToolkit().LoadConfig(filepath.Join("..", "..", config.DefaultConfigPath))
	require.NoError(t, err)

	var root config.Root
	require.NoError(t, tree.Decode(&root))

	tree, err = newToolkit().LoadConfig(filepath.Join("..", "..", config.DefaultParamsPath))
	require.NoError(t, err)

	var params config.Params
	require.NoError(t, tree.Decode(&params))
	assert.Equal(t, []int{224, 224, 3}, params.ImageSize)
}

func TestManagerInvalid(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "artifacts")

	tests := map[string]struct {
		config string
		params string
	}{
		"missing section": {
			config: "artifacts_root: " + root + "\n",
			params: paramsYAML,
		},
		"bad image size": {
			config: configYAML(root),
			params: "IMAGE_SIZE: [224, 224]\nBATCH_SIZE: 16\nEPOCHS: 1\nCLASSES: 2\nLEARNING_RATE: 0.01\n",
		},
		"one class": {
			config: configYAML(root),
			params: "IMAGE_SIZE: [224, 224, 3]\nBATCH_SIZE: 16\nEPOCHS: 1\nCLASSES: 1\nLEARNING_RATE: 0.01\n",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			configPath, paramsPath := writeDocs(t, tc.config, tc.params)

			_, err := config.NewManager(newToolkit(), configPath, paramsPath)
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestManagerEmptyDocument(t *testing.T) {
	t.Parallel()

	configPath, paramsPath := writeDocs(t, configYAML(filepath.Join(t.TempDir(), "a")), "")

	_, err := config.NewManager(newToolkit(), configPath, paramsPath)
	assert.ErrorIs(t, err, common.ErrEmptyConfig)
}
