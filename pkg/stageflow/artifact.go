package stageflow

import (
	"sync"

	"github.com/pkg/errors"
)

// Artifact is a named, typed byte payload produced by an artifact stage.
// Artifacts are the externally visible deliverable of a run, registered
// against the run itself rather than the state blackboard.
type Artifact struct {
	// Name is the artifact filename and registry key.
	Name string
	// MIME is the payload content type, e.g. "text/html" or "image/png".
	MIME string
	Data []byte
	// Stage is the name of the producing stage, stamped by the engine.
	Stage string
}

// ArtifactSink accepts artifacts from a producing stage during its run.
type ArtifactSink interface {
	Register(a Artifact) error
}

// artifactRegistry is the write-once, filename-keyed artifact store of a
// single run. Registration is safe from concurrent fan-out members.
type artifactRegistry struct {
	mu     sync.Mutex
	order  []string
	byName map[string]Artifact
}

func newArtifactRegistry() *artifactRegistry {
	return &artifactRegistry{byName: make(map[string]Artifact)}
}

func (r *artifactRegistry) register(a Artifact) error {
	if a.Name == "" {
		return ErrArtifactNameMustBeSet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[a.Name]; ok {
		return errors.Wrap(ErrArtifactExists, a.Name)
	}

	r.byName[a.Name] = a
	r.order = append(r.order, a.Name)

	return nil
}

func (r *artifactRegistry) list() []Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Artifact, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}

	return out
}

// stageSink stamps the producing stage onto every registered artifact.
type stageSink struct {
	reg   *artifactRegistry
	stage string
}

func (s *stageSink) Register(a Artifact) error {
	a.Stage = s.stage

	return s.reg.register(a)
}
