package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error

	pipelineStageOption

	// Finish runs after the pipeline is finished, whether a stage failed or not.
	Finish(totalDuration time.Duration) error
}

// pipelineStageOption defines the interface for stage options at the pipeline level.
type pipelineStageOption interface {
	// BeforeStage runs before the stage is executed. parentStage is the stage that ran
	// before it, or StartStage.
	BeforeStage(parentStage, stage *StageInfo) error
	// AfterStage runs once the stage returned. stageErr is the error returned by the stage.
	AfterStage(stage *StageInfo, duration time.Duration, stageErr error) error
}
