// Package measure collects per-stage timing and status metrics across
// pipeline runs.
package measure

import "time"

// Metric accumulates observations for a single stage.
type Metric interface {
	// AddRun records one terminal observation of the stage.
	AddRun(status string, duration time.Duration)
	// AVGDuration returns the average duration over non-skipped runs.
	AVGDuration() time.Duration
	// Runs returns how many times the stage reached a terminal status.
	Runs() int64
	// LastStatus returns the status of the most recent run.
	LastStatus() string
}

// Measure owns the metrics of every stage in a pipeline.
type Measure interface {
	AddMetric(stageName string) Metric
	GetMetric(stageName string) Metric
	AllMetrics() map[string]Metric
}
