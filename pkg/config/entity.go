package config

// DataIngestionConfig is what the data ingestion stage needs.
type DataIngestionConfig struct {
	RootDir       string
	SourceURL     string
	LocalDataFile string
	UnzipDir      string
}

// PrepareBaseModelConfig is what the base model preparation stage needs.
type PrepareBaseModelConfig struct {
	RootDir              string
	BaseModelPath        string
	UpdatedBaseModelPath string
	ParamsImageSize      []int
	ParamsLearningRate   float64
	ParamsIncludeTop     bool
	ParamsWeights        string
	ParamsClasses        int
}
