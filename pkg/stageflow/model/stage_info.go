package model

type StageType string

const (
	SequentialStageType StageType = "sequential"
	ParallelStageType   StageType = "parallel"
)

// StageInfo describes one stage of a validated pipeline. It is the
// informational contract handed to reporters; the engine owns the
// authoritative copy and reporters must treat it as read-only.
type StageInfo struct {
	Type     StageType
	Name     string
	Requires []string
	Produces string
	Artifact bool
}

// Start and End are the virtual vertices bracketing every pipeline graph.
var (
	Start = &StageInfo{Name: "start"}
	End   = &StageInfo{Name: "end"}
)
