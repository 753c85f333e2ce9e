package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/locsight/go-stageflow/pkg/stageflow/model"
)

type pipelineDrawer struct {
	Drawer
}

func (pd *pipelineDrawer) Init() error {
	err := pd.AddStage(model.Start.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}

	err = pd.AddStage(model.End.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStage(parent, stage *model.StageInfo) error {
	err := pd.AddStage(stage.Name)
	if err != nil {
		return err
	}

	return pd.AddLink(parent.Name, stage.Name)
}

func (pd *pipelineDrawer) StageDone(stage *model.StageInfo, status string, duration time.Duration) error {
	return pd.SetOutcome(stage.Name, status, duration)
}

func (pd *pipelineDrawer) Finish() error {
	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer wraps a Drawer as a pipeline reporter.
func PipelineDrawer(d Drawer) model.Reporter {
	return &pipelineDrawer{d}
}
