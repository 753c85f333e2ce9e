package locintel

import (
	"context"
	"time"

	"github.com/locsight/go-stageflow/internal/retry"
)

// IntakeParser extracts the target location and business type from a
// free-text request. It runs once, before the pipeline begins; it is not a
// pipeline stage.
type IntakeParser interface {
	Parse(ctx context.Context, request string) (ParsedRequest, error)
}

// Searcher answers a market research query with a status-tagged result
// set.
type Searcher interface {
	Search(ctx context.Context, query string) (SearchResult, error)
}

// PlacesFinder lists competitor venues of a category near a location.
type PlacesFinder interface {
	Nearby(ctx context.Context, location, category string) (PlacesResult, error)
}

// Generator produces free text from a prompt. Implementations are expected
// to retry transient provider errors internally; stages only ever see
// success or terminal failure.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StrategyAdvisor produces the typed strategic report. This is the
// structured-output counterpart of Generator: the two are distinct
// collaborator contracts chosen explicitly at pipeline definition time.
type StrategyAdvisor interface {
	Advise(ctx context.Context, prompt string) (StrategicReport, error)
}

// ReportRenderer renders the strategic report as an HTML document.
type ReportRenderer interface {
	Render(ctx context.Context, report StrategicReport) ([]byte, error)
}

// ImageGenerator produces an infographic image for the report.
type ImageGenerator interface {
	Infographic(ctx context.Context, report StrategicReport) ([]byte, error)
}

// SpeechSynthesizer converts a narration script into audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, script string) ([]byte, error)
}

// RetryingGenerator wraps a Generator with bounded retries and exponential
// backoff, mirroring how generative providers expose transient errors.
type RetryingGenerator struct {
	gen      Generator
	attempts int
	base     time.Duration
	max      time.Duration
}

func NewRetryingGenerator(gen Generator, attempts int, base, max time.Duration) *RetryingGenerator {
	return &RetryingGenerator{gen: gen, attempts: attempts, base: base, max: max}
}

func (r *RetryingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var out string

	err := retry.Do(ctx, r.attempts, retry.NewBackoff(r.base, r.max), func(ctx context.Context) error {
		var genErr error
		out, genErr = r.gen.Generate(ctx, prompt)

		return genErr
	})
	if err != nil {
		return "", err
	}

	return out, nil
}

var _ Generator = (*RetryingGenerator)(nil)
