// Package stage holds the stages of the training pipeline. Each stage reads its settings from
// a config.Manager and persists its outputs through the common artifact layer so that later
// stages, or later runs, can pick them up from disk.
package stage
