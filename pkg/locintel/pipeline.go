package locintel

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/locsight/go-stageflow/pkg/log"
	"github.com/locsight/go-stageflow/pkg/stageflow"
	"github.com/locsight/go-stageflow/pkg/stageflow/model"
)

// Collaborators groups every external dependency of the workflow.
type Collaborators struct {
	Intake  IntakeParser
	Search  Searcher
	Places  PlacesFinder
	Analyst Generator
	Advisor StrategyAdvisor
	Report  ReportRenderer
	Images  ImageGenerator
	Speech  SpeechSynthesizer
}

func (c Collaborators) validate() error {
	switch {
	case c.Intake == nil:
		return errors.New("intake parser must be set")
	case c.Search == nil:
		return errors.New("searcher must be set")
	case c.Places == nil:
		return errors.New("places finder must be set")
	case c.Analyst == nil:
		return errors.New("analyst generator must be set")
	case c.Advisor == nil:
		return errors.New("strategy advisor must be set")
	case c.Report == nil:
		return errors.New("report renderer must be set")
	case c.Images == nil:
		return errors.New("image generator must be set")
	case c.Speech == nil:
		return errors.New("speech synthesizer must be set")
	}

	return nil
}

// Config carries the run-level knobs of the workflow.
type Config struct {
	Logger       log.Logger
	Reporters    []model.Reporter
	StageTimeout time.Duration
	FanOutLimit  int
}

// Build assembles the full location-intelligence pipeline: the four-stage
// sequential analysis chain followed by the three-way artifact fan-out.
// After-hooks append each completed sequential stage to the
// completed_stages list; the fan-out group gets no list bookkeeping, as
// list-typed read-modify-write is only safe with a single writer.
func Build(c Collaborators, cfg Config) (*stageflow.Pipeline, error) {
	if err := c.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid collaborators")
	}

	hooks := stageflow.NewHookRegistry()

	for _, name := range []string{StageMarketResearch, StageCompetitorMapping, StageGapAnalysis, StageStrategyAdvisor} {
		name := name
		hooks.After(name, func(ctx context.Context, state stageflow.State, outcome stageflow.StageOutcome) {
			if outcome.Status != stageflow.StatusOK {
				return
			}

			completed, _ := stageflow.ListValue(state, KeyCompletedStages)
			state.Set(KeyCompletedStages, append(completed, name))
		})
	}

	opts := []stageflow.Option{stageflow.WithHooks(hooks)}

	if cfg.Logger != nil {
		opts = append(opts, stageflow.WithLogger(cfg.Logger))
	}

	if len(cfg.Reporters) > 0 {
		opts = append(opts, stageflow.WithReporters(cfg.Reporters...))
	}

	if cfg.StageTimeout > 0 {
		opts = append(opts, stageflow.WithStageTimeout(cfg.StageTimeout))
	}

	if cfg.FanOutLimit > 0 {
		opts = append(opts, stageflow.WithFanOutLimit(cfg.FanOutLimit))
	}

	pipe, err := stageflow.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pipeline")
	}

	if err := pipe.DeclareInput(KeyTargetLocation, KeyBusinessType); err != nil {
		return nil, err
	}

	stages := []stageflow.Stage{
		NewMarketResearchStage(c.Search, c.Analyst),
		NewCompetitorMappingStage(c.Places, c.Analyst),
		NewGapAnalysisStage(c.Analyst),
		NewStrategyAdvisorStage(c.Advisor),
	}

	for _, st := range stages {
		if err := pipe.Append(st); err != nil {
			return nil, err
		}
	}

	err = pipe.FanOut(
		NewReportArtifactStage(c.Report),
		NewInfographicStage(c.Images),
		NewAudioOverviewStage(c.Analyst, c.Speech),
	)
	if err != nil {
		return nil, err
	}

	return pipe, nil
}

// Intake runs the intake collaborator against a free-text request and
// returns the initial pipeline state. It is invoked once, before
// Pipeline.Run.
func Intake(ctx context.Context, parser IntakeParser, request string) (map[string]any, error) {
	if parser == nil {
		return nil, errors.New("intake parser must be set")
	}

	parsed, err := parser.Parse(ctx, request)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse request")
	}

	if strings.TrimSpace(parsed.TargetLocation) == "" {
		return nil, errors.New("request has no target location")
	}

	if strings.TrimSpace(parsed.BusinessType) == "" {
		return nil, errors.New("request has no business type")
	}

	return map[string]any{
		KeyTargetLocation: parsed.TargetLocation,
		KeyBusinessType:   parsed.BusinessType,
	}, nil
}
