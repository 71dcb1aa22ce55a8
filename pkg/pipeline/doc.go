// Package pipeline runs the stages of a training pipeline.
//
// Stages are added with AddStage and executed one after the other by Run. Each stage receives the
// context given to Run and is expected to read what previous stages persisted through the artifact
// layer rather than through shared memory. The pipeline stops on the first error, which is returned
// wrapped with the name of the failing stage, and the remaining stages are not run.
//
// Options implementing model.PipelineOption observe the run: StageLogger reports stage boundaries,
// measure.PipelineMeasure records durations and drawer.PipelineDrawer renders the run as a graph.
package pipeline
