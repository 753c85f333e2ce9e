package measure

import (
	"time"

	"github.com/locsight/go-stageflow/pkg/stageflow/model"
)

type pipelineMeasure struct {
	m Measure
}

func (pm *pipelineMeasure) Init() error {
	return nil
}

func (pm *pipelineMeasure) PrepareStage(parent, stage *model.StageInfo) error {
	if stage == model.End {
		return nil
	}

	pm.m.AddMetric(stage.Name)

	return nil
}

func (pm *pipelineMeasure) StageDone(stage *model.StageInfo, status string, duration time.Duration) error {
	mt := pm.m.GetMetric(stage.Name)
	if mt == nil {
		mt = pm.m.AddMetric(stage.Name)
	}

	mt.AddRun(status, duration)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

// PipelineMeasure wraps a Measure as a pipeline reporter.
func PipelineMeasure(m Measure) model.Reporter {
	return &pipelineMeasure{m: m}
}
