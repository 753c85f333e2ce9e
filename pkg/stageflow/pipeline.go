package stageflow

import (
	"context"
	"sync"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/locsight/go-stageflow/internal/store"
	"github.com/locsight/go-stageflow/pkg/log"
	"github.com/locsight/go-stageflow/pkg/stageflow/model"
)

// Pipeline composes a sequential chain of stages terminating in an optional
// fan-out group. The stage graph is validated as it is assembled and is
// immutable for the duration of a run.
type Pipeline struct {
	logger       log.Logger
	hooks        *HookRegistry
	reporters    []model.Reporter
	fanOutLimit  int
	stageTimeout time.Duration

	graph      graph.Graph[string, string]
	inputs     []string
	producedBy map[string]string
	names      map[string]struct{}
	sequential []*boundStage
	parallel   []*boundStage
	sealed     bool
	finalized  bool

	durMu     sync.Mutex
	durations map[string]time.Duration
}

// New creates an empty pipeline.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		logger:     log.NewNoop(),
		hooks:      NewHookRegistry(),
		graph:      graph.New(graph.StringHash, graph.Directed(), graph.Acyclic()),
		producedBy: make(map[string]string),
		names:      make(map[string]struct{}),
		durations:  make(map[string]time.Duration),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	if err := p.graph.AddVertex(model.Start.Name); err != nil {
		return nil, errors.Wrap(err, "unable to add start vertex")
	}

	if err := p.graph.AddVertex(model.End.Name); err != nil {
		return nil, errors.Wrap(err, "unable to add end vertex")
	}

	for _, rep := range p.reporters {
		if err := rep.Init(); err != nil {
			return nil, errors.Wrap(err, "unable to initialise reporter")
		}
	}

	return p, nil
}

// DeclareInput declares state keys the caller seeds into the initial state.
// Declared inputs count as produced before the first stage; Run verifies
// they are actually present before anything executes.
func (p *Pipeline) DeclareInput(keys ...string) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	if len(p.sequential) > 0 || p.sealed {
		return configErrorf("", "inputs must be declared before stages")
	}

	for _, key := range keys {
		if key == "" {
			return configErrorf("", "input key must not be empty")
		}

		if owner, ok := p.producedBy[key]; ok {
			return configErrorf("", "input key %q already declared by %q", key, owner)
		}

		p.producedBy[key] = model.Start.Name
		p.inputs = append(p.inputs, key)
	}

	return nil
}

// Append adds the next sequential stage. Each required key must be
// producible by a strictly earlier stage or a declared input, and the
// produced key must be new: both are enforced here, at assembly time.
func (p *Pipeline) Append(st Stage) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	if st == nil {
		return ErrStageMustBeSet
	}

	if p.sealed {
		return errors.Wrap(ErrFanOutSealed, st.Name())
	}

	info, err := p.validate(st, model.SequentialStageType, p.producedBy, nil)
	if err != nil {
		return err
	}

	parent := model.Start
	if n := len(p.sequential); n > 0 {
		parent = p.sequential[n-1].info
	}

	if err := p.link(parent, info); err != nil {
		return err
	}

	if info.Produces != "" {
		p.producedBy[info.Produces] = info.Name
	}

	p.names[info.Name] = struct{}{}
	p.sequential = append(p.sequential, &boundStage{stage: st, info: info})

	return nil
}

// FanOut sets the terminal parallel group. Members run concurrently against
// one snapshot of the state at fan-out time; their required keys must all
// be producible by the sequential chain, never by a sibling. Calling FanOut
// seals the pipeline.
func (p *Pipeline) FanOut(stages ...Stage) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	if p.sealed {
		return ErrFanOutSealed
	}

	if len(stages) == 0 {
		return configErrorf("", "fan-out group must contain at least one stage")
	}

	parent := model.Start
	if n := len(p.sequential); n > 0 {
		parent = p.sequential[n-1].info
	}

	members := make([]*boundStage, 0, len(stages))
	groupOutputs := make(map[string]string, len(stages))

	for _, st := range stages {
		if st == nil {
			return ErrStageMustBeSet
		}

		// Requires are checked against the sequential chain only: a member
		// never sees a sibling's output.
		info, err := p.validate(st, model.ParallelStageType, p.producedBy, groupOutputs)
		if err != nil {
			return err
		}

		if err := p.link(parent, info); err != nil {
			return err
		}

		if info.Produces != "" {
			groupOutputs[info.Produces] = info.Name
		}

		p.names[info.Name] = struct{}{}
		members = append(members, &boundStage{stage: st, info: info})
	}

	for key, name := range groupOutputs {
		p.producedBy[key] = name
	}

	p.parallel = members
	p.sealed = true

	return nil
}

// validate checks one stage's declared contract and returns its bound
// metadata. Requires must exist in available; the produced key must collide
// with neither available nor pending (outputs of an in-progress fan-out
// group that are not yet visible as producers).
func (p *Pipeline) validate(st Stage, typ model.StageType, available, pending map[string]string) (*model.StageInfo, error) {
	name := st.Name()
	if name == "" {
		return nil, configErrorf("", "stage name must not be empty")
	}

	if name == model.Start.Name || name == model.End.Name {
		return nil, configErrorf(name, "stage name is reserved")
	}

	if _, ok := p.names[name]; ok {
		return nil, configErrorf(name, "duplicate stage name")
	}

	for _, key := range st.Requires() {
		if _, ok := available[key]; !ok {
			return nil, configErrorf(name, "required key %q has no earlier producer", key)
		}
	}

	_, artifact := st.(ArtifactProducer)

	produces := st.Produces()
	if produces == "" && !artifact {
		return nil, configErrorf(name, "stage must produce a key or artifacts")
	}

	if produces != "" {
		if owner, ok := available[produces]; ok {
			return nil, configErrorf(name, "output key %q already produced by %q", produces, owner)
		}

		if owner, ok := pending[produces]; ok {
			return nil, configErrorf(name, "output key %q already produced by %q", produces, owner)
		}
	}

	return &model.StageInfo{
		Type:     typ,
		Name:     name,
		Requires: st.Requires(),
		Produces: produces,
		Artifact: artifact,
	}, nil
}

// link records the stage in the graph: the chain edge from its parent plus
// a dependency edge from each producer of a required key. Reporters observe
// the chain edge only, matching the declared execution order.
func (p *Pipeline) link(parent, info *model.StageInfo) error {
	if err := p.graph.AddVertex(info.Name); err != nil {
		return errors.Wrapf(err, "unable to add vertex %q", info.Name)
	}

	if err := p.graph.AddEdge(parent.Name, info.Name); err != nil {
		return errors.Wrapf(err, "unable to add edge from %q to %q", parent.Name, info.Name)
	}

	for _, key := range info.Requires {
		producer := p.producedBy[key]
		if producer == parent.Name {
			continue
		}

		err := p.graph.AddEdge(producer, info.Name)
		if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return errors.Wrapf(err, "unable to add dependency edge from %q to %q", producer, info.Name)
		}
	}

	for _, rep := range p.reporters {
		if err := rep.PrepareStage(parent, info); err != nil {
			return errors.Wrap(err, "unable to prepare stage reporter")
		}
	}

	return nil
}

// finalize closes the graph by linking terminal stages to the end vertex.
// Idempotent; runs once on the first Run.
func (p *Pipeline) finalize() error {
	if p.finalized {
		return nil
	}

	terminals := p.parallel
	if len(terminals) == 0 && len(p.sequential) > 0 {
		terminals = p.sequential[len(p.sequential)-1:]
	}

	for _, bs := range terminals {
		if err := p.graph.AddEdge(bs.info.Name, model.End.Name); err != nil {
			return errors.Wrapf(err, "unable to close graph after %q", bs.info.Name)
		}

		for _, rep := range p.reporters {
			if err := rep.PrepareStage(bs.info, model.End); err != nil {
				return errors.Wrap(err, "unable to close reporter graph")
			}
		}
	}

	p.finalized = true

	return nil
}

// RunResult is everything a completed or aborted run hands back: the final
// state, the per-stage outcome report, and the registered artifacts.
type RunResult struct {
	State     State
	Outcome   *RunOutcome
	Artifacts []Artifact
}

// Run executes the pipeline against a copy of initial. The result always
// carries one outcome entry per declared stage; on a sequential-phase
// failure the error is returned alongside the partial result so progress is
// never silently lost. Fan-out member failures are aggregated in the
// outcome and do not surface as a run error.
func (p *Pipeline) Run(ctx context.Context, initial map[string]any) (*RunResult, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	if err := p.finalize(); err != nil {
		return nil, err
	}

	infos := p.stageInfos()
	rec := newRecorder(uuid.NewString(), infos)
	board := store.NewFrom(initial)
	state := boardState{Blackboard: board}
	artifacts := newArtifactRegistry()

	sinks := func(stage string) ArtifactSink {
		return &stageSink{reg: artifacts, stage: stage}
	}

	result := &RunResult{State: state, Outcome: rec.outcome}

	if err := p.checkInputs(board); err != nil {
		p.finishReporters(rec)

		return result, err
	}

	p.logger.Info("run starting",
		log.String("run_id", rec.outcome.RunID),
		log.Int("sequential", len(p.sequential)),
		log.Int("parallel", len(p.parallel)),
	)

	done := func(o StageOutcome) {
		p.recordDuration(o)

		for _, rep := range p.reporters {
			if err := rep.StageDone(p.infoFor(o.Stage), string(o.Status), o.Duration); err != nil {
				p.logger.Warn("reporter rejected stage outcome", log.String("stage", o.Stage), log.Err(err))
			}
		}
	}

	seq := &sequentialRunner{stages: p.sequential, hooks: p.hooks, logger: p.logger, timeout: p.stageTimeout}

	if err := seq.run(ctx, state, sinks, rec, done); err != nil {
		p.finishReporters(rec)
		result.Artifacts = artifacts.list()

		return result, err
	}

	if len(p.parallel) > 0 {
		par := &parallelRunner{stages: p.parallel, hooks: p.hooks, logger: p.logger, limit: p.fanOutLimit, timeout: p.stageTimeout}
		par.run(ctx, board, sinks, rec, done)
	}

	p.finishReporters(rec)
	result.Artifacts = artifacts.list()

	if rec.outcome.Partial() {
		p.logger.Warn("run completed with partial artifacts", log.String("run_id", rec.outcome.RunID))
	} else {
		p.logger.Info("run completed", log.String("run_id", rec.outcome.RunID))
	}

	return result, nil
}

// checkInputs verifies the caller actually seeded every declared input.
// This is the runtime tail of build-time validation: it fails before any
// stage executes.
func (p *Pipeline) checkInputs(board *store.Blackboard) error {
	for _, key := range p.inputs {
		if _, ok := board.Get(key); !ok {
			return configErrorf("", "declared input %q missing from initial state", key)
		}
	}

	return nil
}

func (p *Pipeline) stageInfos() []*model.StageInfo {
	infos := make([]*model.StageInfo, 0, len(p.sequential)+len(p.parallel))

	for _, bs := range p.sequential {
		infos = append(infos, bs.info)
	}

	for _, bs := range p.parallel {
		infos = append(infos, bs.info)
	}

	return infos
}

func (p *Pipeline) infoFor(name string) *model.StageInfo {
	for _, bs := range p.sequential {
		if bs.info.Name == name {
			return bs.info
		}
	}

	for _, bs := range p.parallel {
		if bs.info.Name == name {
			return bs.info
		}
	}

	return &model.StageInfo{Name: name}
}

func (p *Pipeline) recordDuration(o StageOutcome) {
	p.durMu.Lock()
	defer p.durMu.Unlock()

	p.durations[o.Stage] = o.Duration
}

func (p *Pipeline) finishReporters(rec *recorder) {
	for _, bs := range p.stageInfos() {
		if rec.get(bs.Name).Status == StatusSkipped {
			for _, rep := range p.reporters {
				if err := rep.StageDone(bs, string(StatusSkipped), 0); err != nil {
					p.logger.Warn("reporter rejected skipped stage", log.String("stage", bs.Name), log.Err(err))
				}
			}
		}
	}

	for _, rep := range p.reporters {
		if err := rep.Finish(); err != nil {
			p.logger.Warn("reporter finish failed", log.Err(err))
		}
	}
}
