package pipeline_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/askiada/go-mlpipeline/pkg/pipeline/model"
)

// recordingOption records every hook call as a string.
type recordingOption struct {
	mu       sync.Mutex
	calls    []string
	failWith map[string]error
}

func (o *recordingOption) record(call string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, call)

	return o.failWith[call]
}

func (o *recordingOption) New() error {
	return o.record("new")
}

func (o *recordingOption) BeforeStage(parentStage, stage *model.StageInfo) error {
	return o.record(fmt.Sprintf("before %s->%s", parentStage.Name, stage.Name))
}

func (o *recordingOption) AfterStage(stage *model.StageInfo, _ time.Duration, stageErr error) error {
	return o.record(fmt.Sprintf("after %s %v", stage.Name, stageErr != nil))
}

func (o *recordingOption) Finish(time.Duration) error {
	return o.record("finish")
}

type logLine struct {
	level string
	msg   string
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (l *recordingLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, logLine{level: level, msg: msg})
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.log("debug", msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.log("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.log("warn", msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.log("error", msg) }
