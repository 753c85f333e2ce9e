// Package drawer renders a validated pipeline graph to an SVG-compatible
// DOT file, annotated with per-stage durations and statuses from the most
// recent run.
package drawer

import "time"

// Drawer is the rendering contract used by the pipeline reporter.
type Drawer interface {
	// AddStage adds a stage vertex to the graph. Adding the same stage
	// twice is not an error.
	AddStage(stageName string) error
	// AddLink adds a directed edge from parent to child.
	AddLink(parentName, childName string) error
	// SetOutcome annotates a stage with its terminal status and duration.
	SetOutcome(stageName, status string, duration time.Duration) error
	// Draw writes the graph to its destination.
	Draw() error
}
