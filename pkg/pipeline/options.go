package pipeline

import (
	"time"

	"github.com/askiada/go-mlpipeline/pkg/logging"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

type stageLogger struct {
	logger logging.Logger
}

// StageLogger reports the start, the end and the failure of every stage to logger.
func StageLogger(logger logging.Logger) model.PipelineOption {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	return &stageLogger{logger: logger}
}

func (sl *stageLogger) New() error {
	return nil
}

func (sl *stageLogger) BeforeStage(_, stage *model.StageInfo) error {
	sl.logger.Info(">>>>>> stage "+stage.Name+" started <<<<<<", "stage", stage.Name)

	return nil
}

func (sl *stageLogger) AfterStage(stage *model.StageInfo, duration time.Duration, stageErr error) error {
	if stageErr != nil {
		sl.logger.Error(">>>>>> stage "+stage.Name+" failed <<<<<<", "stage", stage.Name, "duration", duration, "error", stageErr)

		return nil
	}

	sl.logger.Info(">>>>>> stage "+stage.Name+" completed <<<<<<", "stage", stage.Name, "duration", duration)

	return nil
}

func (sl *stageLogger) Finish(totalDuration time.Duration) error {
	sl.logger.Info("pipeline finished", "duration", totalDuration)

	return nil
}
