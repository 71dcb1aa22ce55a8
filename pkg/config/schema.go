package config

import (
	"github.com/pkg/errors"
)

var ErrInvalidConfig = errors.New("invalid config")

// Root is the artifact layout loaded from config.yaml.
type Root struct {
	ArtifactsRoot    string                  `yaml:"artifacts_root"`
	DataIngestion    DataIngestionSection    `yaml:"data_ingestion"`
	PrepareBaseModel PrepareBaseModelSection `yaml:"prepare_base_model"`
}

type DataIngestionSection struct {
	RootDir       string `yaml:"root_dir"`
	SourceURL     string `yaml:"source_URL"`
	LocalDataFile string `yaml:"local_data_file"`
	UnzipDir      string `yaml:"unzip_dir"`
}

type PrepareBaseModelSection struct {
	RootDir              string `yaml:"root_dir"`
	BaseModelPath        string `yaml:"base_model_path"`
	UpdatedBaseModelPath string `yaml:"updated_base_model_path"`
}

func (r *Root) Validate() error {
	required := map[string]string{
		"artifacts_root":                             r.ArtifactsRoot,
		"data_ingestion.root_dir":                    r.DataIngestion.RootDir,
		"data_ingestion.source_URL":                  r.DataIngestion.SourceURL,
		"data_ingestion.local_data_file":             r.DataIngestion.LocalDataFile,
		"data_ingestion.unzip_dir":                   r.DataIngestion.UnzipDir,
		"prepare_base_model.root_dir":                r.PrepareBaseModel.RootDir,
		"prepare_base_model.base_model_path":         r.PrepareBaseModel.BaseModelPath,
		"prepare_base_model.updated_base_model_path": r.PrepareBaseModel.UpdatedBaseModelPath,
	}

	for _, key := range sortedKeys(required) {
		if required[key] == "" {
			return errors.Wrapf(ErrInvalidConfig, "%s is required", key)
		}
	}

	return nil
}

// Params holds the model parameters loaded from params.yaml.
type Params struct {
	Augmentation bool    `yaml:"AUGMENTATION"`
	ImageSize    []int   `yaml:"IMAGE_SIZE"`
	BatchSize    int     `yaml:"BATCH_SIZE"`
	IncludeTop   bool    `yaml:"INCLUDE_TOP"`
	Epochs       int     `yaml:"EPOCHS"`
	Classes      int     `yaml:"CLASSES"`
	Weights      string  `yaml:"WEIGHTS"`
	LearningRate float64 `yaml:"LEARNING_RATE"`
}

func (p *Params) Validate() error {
	if len(p.ImageSize) != 3 {
		return errors.Wrapf(ErrInvalidConfig, "IMAGE_SIZE must have 3 dimensions, got %d", len(p.ImageSize))
	}

	for _, dim := range p.ImageSize {
		if dim <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "IMAGE_SIZE dimensions must be positive, got %v", p.ImageSize)
		}
	}

	switch {
	case p.BatchSize <= 0:
		return errors.Wrap(ErrInvalidConfig, "BATCH_SIZE must be positive")
	case p.Epochs <= 0:
		return errors.Wrap(ErrInvalidConfig, "EPOCHS must be positive")
	case p.Classes < 2:
		return errors.Wrap(ErrInvalidConfig, "CLASSES must be at least 2")
	case p.LearningRate <= 0:
		return errors.Wrap(ErrInvalidConfig, "LEARNING_RATE must be positive")
	}

	return nil
}
