package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

// StageFn is the work done by a stage.
type StageFn func(ctx context.Context) error

type stage struct {
	details *model.StageInfo
	fn      StageFn
}

// Pipeline is a sequence of stages.
type Pipeline struct {
	opts   []model.PipelineOption
	stages []*stage
	names  map[string]struct{}
	ran    bool
}

// New creates a new pipeline.
func New(opts ...model.PipelineOption) (*Pipeline, error) {
	pipe := &Pipeline{
		opts:  opts,
		names: make(map[string]struct{}),
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// AddStage appends a stage to the pipeline. Stages run in the order they are added.
func AddStage(p *Pipeline, name string, fn StageFn) (*model.StageInfo, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	if name == "" {
		return nil, ErrStageNameMustBeSet
	}

	if fn == nil {
		return nil, ErrStageFnMustBeSet
	}

	if name == model.StartStage.Name || name == model.EndStage.Name {
		return nil, errors.Wrap(ErrStageNameReserved, name)
	}

	if _, ok := p.names[name]; ok {
		return nil, errors.Wrap(ErrStageNameExists, name)
	}

	details := &model.StageInfo{Name: name, Index: len(p.stages)}
	p.names[name] = struct{}{}
	p.stages = append(p.stages, &stage{details: details, fn: fn})

	return details, nil
}

// Run executes the stages one after the other and stops on the first error, which is
// returned wrapped with the name of the stage. A pipeline runs at most once.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.ran {
		return ErrPipelineAlreadyRun
	}

	p.ran = true
	startTime := time.Now()

	runErr := p.runStages(ctx)

	err := p.finishRun(time.Since(startTime))
	if runErr != nil {
		return runErr
	}

	return err
}

func (p *Pipeline) runStages(ctx context.Context) error {
	parent := model.StartStage

	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, s.details.Name)
		}

		for _, opt := range p.opts {
			err := opt.BeforeStage(parent, s.details)
			if err != nil {
				return errors.Wrapf(err, "unable to prepare stage %s", s.details.Name)
			}
		}

		start := time.Now()
		stageErr := s.fn(ctx)
		elapsed := time.Since(start)

		for _, opt := range p.opts {
			err := opt.AfterStage(s.details, elapsed, stageErr)
			if err != nil && stageErr == nil {
				return errors.Wrapf(err, "unable to complete stage %s", s.details.Name)
			}
		}

		if stageErr != nil {
			return errors.Wrap(stageErr, s.details.Name)
		}

		parent = s.details
	}

	return nil
}

func (p *Pipeline) finishRun(totalDuration time.Duration) error {
	for _, opt := range p.opts {
		err := opt.Finish(totalDuration)
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}
