package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-mlpipeline/pkg/pipeline/measure"
	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	lastStage *model.StageInfo
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStage(model.StartStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}

	err = pd.AddStage(model.EndStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}

	pd.lastStage = model.StartStage

	return nil
}

func (pd *pipelineDrawer) BeforeStage(parentStage, stage *model.StageInfo) error {
	err := pd.AddStage(stage.Name)
	if err != nil {
		return err
	}

	err = pd.AddLink(parentStage.Name, stage.Name)
	if err != nil {
		return err
	}

	pd.lastStage = stage

	return nil
}

func (pd *pipelineDrawer) AfterStage(*model.StageInfo, time.Duration, error) error {
	return nil
}

func (pd *pipelineDrawer) Finish(totalDuration time.Duration) error {
	err := pd.AddLink(pd.lastStage.Name, model.EndStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to link last stage")
	}

	err = pd.SetTotalTime(model.EndStage.Name, totalDuration)
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}

	if pd.m != nil {
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the stages of the run with drawer once the pipeline is finished. When
// measure is set, stages are labelled with their duration and coloured by it.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure}
}
