// Package config turns the configuration documents of a run into the settings of each stage.
package config

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/pkg/common"
)

const (
	DefaultConfigPath = "config/config.yaml"
	DefaultParamsPath = "config/params.yaml"
)

// Manager loads config.yaml and params.yaml once and hands out the settings of each stage,
// creating the directories they write to.
type Manager struct {
	tk     *common.Toolkit
	root   Root
	params Params
}

// NewManager loads and validates both documents and creates the artifacts root.
func NewManager(tk *common.Toolkit, configPath, paramsPath string) (*Manager, error) {
	if tk == nil {
		tk = common.New()
	}

	m := &Manager{tk: tk}

	err := m.load(configPath, &m.root)
	if err != nil {
		return nil, err
	}

	err = m.load(paramsPath, &m.params)
	if err != nil {
		return nil, err
	}

	err = tk.EnsureDirectories([]string{m.root.ArtifactsRoot}, true)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create artifacts root")
	}

	return m, nil
}

func (m *Manager) load(path string, out any) error {
	tree, err := m.tk.LoadConfig(path)
	if err != nil {
		return errors.Wrapf(err, "unable to load %s", path)
	}

	err = tree.Decode(out)
	if err != nil {
		return errors.Wrapf(err, "unable to decode %s", path)
	}

	return nil
}

// Params returns a copy of the model parameters.
func (m *Manager) Params() Params {
	params := m.params
	params.ImageSize = append([]int(nil), m.params.ImageSize...)

	return params
}

// DataIngestionConfig creates the data ingestion root and returns the stage settings.
func (m *Manager) DataIngestionConfig() (*DataIngestionConfig, error) {
	section := m.root.DataIngestion

	err := m.tk.EnsureDirectories([]string{section.RootDir}, true)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create data ingestion root")
	}

	return &DataIngestionConfig{
		RootDir:       section.RootDir,
		SourceURL:     section.SourceURL,
		LocalDataFile: section.LocalDataFile,
		UnzipDir:      section.UnzipDir,
	}, nil
}

// PrepareBaseModelConfig creates the base model root and returns the stage settings.
func (m *Manager) PrepareBaseModelConfig() (*PrepareBaseModelConfig, error) {
	section := m.root.PrepareBaseModel

	err := m.tk.EnsureDirectories([]string{section.RootDir}, true)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create base model root")
	}

	return &PrepareBaseModelConfig{
		RootDir:              section.RootDir,
		BaseModelPath:        section.BaseModelPath,
		UpdatedBaseModelPath: section.UpdatedBaseModelPath,
		ParamsImageSize:      append([]int(nil), m.params.ImageSize...),
		ParamsLearningRate:   m.params.LearningRate,
		ParamsIncludeTop:     m.params.IncludeTop,
		ParamsWeights:        m.params.Weights,
		ParamsClasses:        m.params.Classes,
	}, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
