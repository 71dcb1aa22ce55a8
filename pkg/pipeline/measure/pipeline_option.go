package measure

import (
	"time"

	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.StartStage.Name)

	return nil
}

func (pm *pipelineMeasure) BeforeStage(_, stage *model.StageInfo) error {
	pm.AddMetric(stage.Name)

	return nil
}

func (pm *pipelineMeasure) AfterStage(stage *model.StageInfo, duration time.Duration, stageErr error) error {
	mt := pm.AddMetric(stage.Name)
	mt.AddDuration(duration)
	mt.SetTotalDuration(duration)

	if stageErr != nil {
		mt.SetError(stageErr)
	}

	return nil
}

func (pm *pipelineMeasure) Finish(totalDuration time.Duration) error {
	pm.AddMetric(model.EndStage.Name).SetTotalDuration(totalDuration)

	return nil
}

// PipelineMeasure records the duration and the outcome of every stage in measure. The total
// duration of the run is stored under model.EndStage.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
