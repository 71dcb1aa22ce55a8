package pipeline

import (
	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet  = errors.New("p must be set")
	ErrStageNameMustBeSet = errors.New("stage name must be set")
	ErrStageFnMustBeSet   = errors.New("stage function must be set")
	ErrStageNameExists    = errors.New("stage name already exists")
	ErrStageNameReserved  = errors.New("stage name is reserved")
	ErrPipelineAlreadyRun = errors.New("pipeline already run")
)
