package locintel

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/locsight/go-stageflow/pkg/stageflow"
)

// NewMarketResearchStage researches market conditions for the requested
// business and location, producing free-text findings.
func NewMarketResearchStage(search Searcher, gen Generator) stageflow.Stage {
	return stageflow.NewStage(
		StageMarketResearch,
		[]string{KeyTargetLocation, KeyBusinessType},
		KeyMarketResearchFindings,
		func(ctx context.Context, view stageflow.View) (any, error) {
			location, _ := stageflow.TextValue(view, KeyTargetLocation)
			business, _ := stageflow.TextValue(view, KeyBusinessType)

			result, err := search.Search(ctx, fmt.Sprintf("%s market conditions in %s", business, location))
			if err != nil {
				return nil, errors.Wrap(err, "market search failed")
			}

			if result.Status != StatusSuccess {
				return nil, errors.Errorf("market search returned status %q", result.Status)
			}

			findings, err := gen.Generate(ctx, marketResearchPrompt(location, business, result.Findings))
			if err != nil {
				return nil, errors.Wrap(err, "unable to summarise market findings")
			}

			return findings, nil
		},
	)
}

// NewCompetitorMappingStage maps competitor venues near the target
// location, producing a structured analysis record.
func NewCompetitorMappingStage(places PlacesFinder, gen Generator) stageflow.Stage {
	return stageflow.NewStructuredStage(
		StageCompetitorMapping,
		[]string{KeyTargetLocation, KeyBusinessType, KeyMarketResearchFindings},
		KeyCompetitorAnalysis,
		func(ctx context.Context, view stageflow.View) (CompetitorAnalysis, error) {
			location, _ := stageflow.TextValue(view, KeyTargetLocation)
			business, _ := stageflow.TextValue(view, KeyBusinessType)
			findings, _ := stageflow.TextValue(view, KeyMarketResearchFindings)

			result, err := places.Nearby(ctx, location, business)
			if err != nil {
				return CompetitorAnalysis{}, errors.Wrap(err, "places lookup failed")
			}

			if result.Status != StatusSuccess {
				return CompetitorAnalysis{}, errors.Errorf("places lookup returned status %q", result.Status)
			}

			summary, err := gen.Generate(ctx, competitorPrompt(location, business, findings, result.Places))
			if err != nil {
				return CompetitorAnalysis{}, errors.Wrap(err, "unable to summarise competitors")
			}

			return CompetitorAnalysis{
				Summary:    summary,
				TotalFound: len(result.Places),
				Places:     result.Places,
			}, nil
		},
	)
}

// NewGapAnalysisStage quantifies the opportunity gap between market demand
// and competitor coverage.
func NewGapAnalysisStage(gen Generator) stageflow.Stage {
	return stageflow.NewStage(
		StageGapAnalysis,
		[]string{KeyMarketResearchFindings, KeyCompetitorAnalysis},
		KeyGapAnalysisResults,
		func(ctx context.Context, view stageflow.View) (any, error) {
			findings, _ := stageflow.TextValue(view, KeyMarketResearchFindings)

			competitors, ok := competitorAnalysis(view)
			if !ok {
				return nil, errors.Errorf("state key %q holds an unexpected type", KeyCompetitorAnalysis)
			}

			analysis, err := gen.Generate(ctx, gapAnalysisPrompt(findings, competitors))
			if err != nil {
				return nil, errors.Wrap(err, "gap analysis failed")
			}

			return analysis, nil
		},
	)
}

// NewStrategyAdvisorStage turns the accumulated analysis into the typed
// strategic report every artifact generator consumes.
func NewStrategyAdvisorStage(advisor StrategyAdvisor) stageflow.Stage {
	return stageflow.NewStructuredStage(
		StageStrategyAdvisor,
		[]string{KeyTargetLocation, KeyBusinessType, KeyGapAnalysisResults, KeyCompetitorAnalysis},
		KeyStrategicReport,
		func(ctx context.Context, view stageflow.View) (StrategicReport, error) {
			location, _ := stageflow.TextValue(view, KeyTargetLocation)
			business, _ := stageflow.TextValue(view, KeyBusinessType)
			gap, _ := stageflow.TextValue(view, KeyGapAnalysisResults)

			competitors, ok := competitorAnalysis(view)
			if !ok {
				return StrategicReport{}, errors.Errorf("state key %q holds an unexpected type", KeyCompetitorAnalysis)
			}

			report, err := advisor.Advise(ctx, strategyPrompt(location, business, gap, competitors))
			if err != nil {
				return StrategicReport{}, errors.Wrap(err, "strategy advisor failed")
			}

			report.TargetLocation = location
			report.BusinessType = business
			report.TotalCompetitors = competitors.TotalFound

			return report, nil
		},
	)
}

// NewReportArtifactStage renders the HTML executive report.
func NewReportArtifactStage(renderer ReportRenderer) stageflow.Stage {
	return stageflow.NewArtifactStage(
		StageReportGenerator,
		[]string{KeyStrategicReport},
		KeyHTMLReportResult,
		func(ctx context.Context, view stageflow.View, sink stageflow.ArtifactSink) (any, error) {
			report, ok := strategicReport(view)
			if !ok {
				return nil, errors.Errorf("state key %q holds an unexpected type", KeyStrategicReport)
			}

			payload, err := renderer.Render(ctx, report)
			if err != nil {
				return nil, errors.Wrap(err, "unable to render report")
			}

			err = sink.Register(stageflow.Artifact{Name: ReportFileName, MIME: "text/html", Data: payload})
			if err != nil {
				return nil, errors.Wrap(err, "unable to register report artifact")
			}

			return ArtifactResult{Status: StatusSuccess, Artifact: ReportFileName}, nil
		},
	)
}

// NewInfographicStage generates the infographic image.
func NewInfographicStage(images ImageGenerator) stageflow.Stage {
	return stageflow.NewArtifactStage(
		StageInfographicGenerator,
		[]string{KeyStrategicReport},
		KeyInfographicResult,
		func(ctx context.Context, view stageflow.View, sink stageflow.ArtifactSink) (any, error) {
			report, ok := strategicReport(view)
			if !ok {
				return nil, errors.Errorf("state key %q holds an unexpected type", KeyStrategicReport)
			}

			payload, err := images.Infographic(ctx, report)
			if err != nil {
				return nil, errors.Wrap(err, "unable to generate infographic")
			}

			err = sink.Register(stageflow.Artifact{Name: InfographicFileName, MIME: "image/png", Data: payload})
			if err != nil {
				return nil, errors.Wrap(err, "unable to register infographic artifact")
			}

			return ArtifactResult{Status: StatusSuccess, Artifact: InfographicFileName}, nil
		},
	)
}

// NewAudioOverviewStage writes a narration script for the analysis and
// synthesizes it to audio.
func NewAudioOverviewStage(gen Generator, speech SpeechSynthesizer) stageflow.Stage {
	return stageflow.NewArtifactStage(
		StageAudioOverview,
		[]string{KeyStrategicReport},
		KeyAudioOverviewResult,
		func(ctx context.Context, view stageflow.View, sink stageflow.ArtifactSink) (any, error) {
			report, ok := strategicReport(view)
			if !ok {
				return nil, errors.Errorf("state key %q holds an unexpected type", KeyStrategicReport)
			}

			script, err := gen.Generate(ctx, audioScriptPrompt(report))
			if err != nil {
				return nil, errors.Wrap(err, "unable to write narration script")
			}

			payload, err := speech.Synthesize(ctx, script)
			if err != nil {
				return nil, errors.Wrap(err, "unable to synthesize audio")
			}

			err = sink.Register(stageflow.Artifact{Name: AudioFileName, MIME: "audio/wav", Data: payload})
			if err != nil {
				return nil, errors.Wrap(err, "unable to register audio artifact")
			}

			return ArtifactResult{Status: StatusSuccess, Artifact: AudioFileName}, nil
		},
	)
}

func competitorAnalysis(view stageflow.View) (CompetitorAnalysis, bool) {
	v, ok := view.Get(KeyCompetitorAnalysis)
	if !ok {
		return CompetitorAnalysis{}, false
	}

	ca, ok := v.(CompetitorAnalysis)

	return ca, ok
}

func strategicReport(view stageflow.View) (StrategicReport, bool) {
	v, ok := view.Get(KeyStrategicReport)
	if !ok {
		return StrategicReport{}, false
	}

	report, ok := v.(StrategicReport)

	return report, ok
}

func marketResearchPrompt(location, business string, findings []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Summarise the market for a %s in %s.\n\nSources:\n", business, location)

	for _, f := range findings {
		sb.WriteString("- ")
		sb.WriteString(f)
		sb.WriteString("\n")
	}

	return sb.String()
}

func competitorPrompt(location, business, findings string, places []Place) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Assess the competitive landscape for a %s in %s.\n\nMarket findings:\n%s\n\nCompetitors (%d):\n", business, location, findings, len(places))

	for _, p := range places {
		fmt.Fprintf(&sb, "- %s (%s), rating %.1f\n", p.Name, p.Address, p.Rating)
	}

	return sb.String()
}

func gapAnalysisPrompt(findings string, competitors CompetitorAnalysis) string {
	return fmt.Sprintf(
		"Quantify the opportunity gap.\n\nMarket findings:\n%s\n\nCompetitor summary (%d found):\n%s\n",
		findings, competitors.TotalFound, competitors.Summary,
	)
}

func strategyPrompt(location, business, gap string, competitors CompetitorAnalysis) string {
	return fmt.Sprintf(
		"Recommend a location strategy for a %s in %s.\n\nGap analysis:\n%s\n\nCompetitor summary:\n%s\n",
		business, location, gap, competitors.Summary,
	)
}

func audioScriptPrompt(report StrategicReport) string {
	return fmt.Sprintf(
		"Write a two-minute narration of this analysis. Business: %s. Location: %s. Verdict: %s. Top pick: %s (score %d). Insights: %s.",
		report.BusinessType,
		report.TargetLocation,
		report.MarketValidation,
		report.TopPick.LocationName,
		report.TopPick.OverallScore,
		strings.Join(report.KeyInsights, "; "),
	)
}
