package model

import "time"

// Reporter observes a pipeline from assembly through the end of a run.
// Implementations must not mutate the StageInfo they receive and must not
// assume any ordering between StageDone calls for parallel stages.
type Reporter interface {
	// Init runs once when the reporter is attached to a pipeline.
	Init() error

	// PrepareStage runs when a stage is added to the pipeline, after the
	// stage passed validation. parent is the stage it is chained after:
	// the previous sequential stage, or Start when there is none. Every
	// fan-out member shares the same parent.
	PrepareStage(parent, stage *StageInfo) error

	// StageDone runs once per stage per run with the stage's terminal
	// status and measured duration. Skipped stages report a zero duration.
	StageDone(stage *StageInfo, status string, duration time.Duration) error

	// Finish runs after the run joined, regardless of outcome.
	Finish() error
}
