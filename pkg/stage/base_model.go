package stage

import (
	"context"
	"encoding/binary"
	"math"
	"math/rand/v2"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-mlpipeline/internal/codec"
	"github.com/askiada/go-mlpipeline/pkg/common"
	"github.com/askiada/go-mlpipeline/pkg/config"
)

const (
	PrepareBaseModelName = "Prepare Base Model"

	kernelSize      = 3
	baseFilters     = 64
	imagenetClasses = 1000
	summaryFileName = "model_summary.json"
)

// PrepareBaseModel builds the feature extractor the classifier is trained from, then adds a
// classification head for the configured classes.
//
// The base model is a kernelSize*kernelSize*channels x features matrix seeded from the weights
// name, so the same configuration always produces the same file. The updated model is the head:
// a (features+1) x classes matrix whose last row is the bias.
type PrepareBaseModel struct {
	cfg *config.PrepareBaseModelConfig
	tk  *common.Toolkit
}

func NewPrepareBaseModel(cfg *config.PrepareBaseModelConfig, tk *common.Toolkit) *PrepareBaseModel {
	return &PrepareBaseModel{cfg: cfg, tk: tk}
}

// Run saves the base model then the updated model.
func (p *PrepareBaseModel) Run(_ context.Context) error {
	err := p.GetBaseModel()
	if err != nil {
		return err
	}

	return p.UpdateBaseModel()
}

// GetBaseModel builds the base model and saves it to the base model path.
func (p *PrepareBaseModel) GetBaseModel() error {
	if len(p.cfg.ParamsImageSize) != 3 || p.cfg.ParamsImageSize[2] <= 0 {
		return errors.Errorf("image size must be height, width, channels, got %v", p.cfg.ParamsImageSize)
	}

	fanIn := kernelSize * kernelSize * p.cfg.ParamsImageSize[2]
	features := p.features()

	rnd := p.rand("base")
	scale := math.Sqrt(2 / float64(fanIn))

	data := make([]float64, fanIn*features)
	for i := range data {
		data[i] = rnd.NormFloat64() * scale
	}

	err := p.tk.SaveObject(p.cfg.BaseModelPath, mat.NewDense(fanIn, features, data))
	if err != nil {
		return errors.Wrap(err, "unable to save base model")
	}

	return nil
}

// UpdateBaseModel loads the base model, freezes it and adds the classification head. The head
// is saved to the updated model path and a summary of both to the stage root.
func (p *PrepareBaseModel) UpdateBaseModel() error {
	value, err := p.tk.LoadObject(p.cfg.BaseModelPath)
	if err != nil {
		return errors.Wrap(err, "unable to load base model")
	}

	base, ok := value.(*mat.Dense)
	if !ok {
		return errors.Wrapf(ErrUnexpectedObject, "%s holds %T", p.cfg.BaseModelPath, value)
	}

	_, features := base.Dims()

	classes := p.cfg.ParamsClasses
	if classes <= 0 {
		return errors.Errorf("classes must be positive, got %d", classes)
	}

	rnd := p.rand("head")
	limit := math.Sqrt(6 / float64(features+classes))

	head := mat.NewDense(features+1, classes, nil)
	for i := 0; i < features; i++ {
		for j := 0; j < classes; j++ {
			head.Set(i, j, (2*rnd.Float64()-1)*limit)
		}
	}

	err = p.tk.SaveObject(p.cfg.UpdatedBaseModelPath, head)
	if err != nil {
		return errors.Wrap(err, "unable to save updated base model")
	}

	err = p.tk.SaveRecord(filepath.Join(p.cfg.RootDir, summaryFileName), p.summary(base, head))
	if err != nil {
		return errors.Wrap(err, "unable to save model summary")
	}

	return nil
}

func (p *PrepareBaseModel) summary(base, head *mat.Dense) common.Record {
	baseRows, baseCols := base.Dims()
	headRows, headCols := head.Dims()

	return common.Record{
		"base_model_path":         p.cfg.BaseModelPath,
		"updated_base_model_path": p.cfg.UpdatedBaseModelPath,
		"image_size":              p.cfg.ParamsImageSize,
		"include_top":             p.cfg.ParamsIncludeTop,
		"weights":                 p.cfg.ParamsWeights,
		"classes":                 p.cfg.ParamsClasses,
		"learning_rate":           p.cfg.ParamsLearningRate,
		"layers": []any{
			map[string]any{"name": "features", "shape": []int{baseRows, baseCols}, "trainable": false},
			map[string]any{"name": "head", "shape": []int{headRows, headCols}, "trainable": true, "activation": "softmax"},
		},
		"total_params":     baseRows*baseCols + headRows*headCols,
		"trainable_params": headRows * headCols,
	}
}

// features is the width of the base model output. With the top included it is the output of
// the pretrained classifier.
func (p *PrepareBaseModel) features() int {
	if p.cfg.ParamsIncludeTop {
		return imagenetClasses
	}

	return baseFilters
}

func (p *PrepareBaseModel) rand(layer string) *rand.Rand {
	sum := codec.Checksum([]byte(p.cfg.ParamsWeights + "/" + layer))

	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(sum[:8]), binary.LittleEndian.Uint64(sum[8:16]))) //nolint:gosec
}
