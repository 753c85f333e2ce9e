package locintel

// Stage names as they appear in run outcomes and hook registrations.
const (
	StageMarketResearch       = "market-research"
	StageCompetitorMapping    = "competitor-mapping"
	StageGapAnalysis          = "gap-analysis"
	StageStrategyAdvisor      = "strategy-advisor"
	StageReportGenerator      = "report-generator"
	StageInfographicGenerator = "infographic-generator"
	StageAudioOverview        = "audio-overview"
)

// State keys threaded through the blackboard.
const (
	KeyTargetLocation         = "target_location"
	KeyBusinessType           = "business_type"
	KeyMarketResearchFindings = "market_research_findings"
	KeyCompetitorAnalysis     = "competitor_analysis"
	KeyGapAnalysisResults     = "gap_analysis_results"
	KeyStrategicReport        = "strategic_report"
	KeyHTMLReportResult       = "html_report_result"
	KeyInfographicResult      = "infographic_result"
	KeyAudioOverviewResult    = "audio_overview_result"
	KeyCompletedStages        = "completed_stages"
)

// Artifact filenames registered by the fan-out stages.
const (
	ReportFileName      = "report.html"
	InfographicFileName = "infographic.png"
	AudioFileName       = "audio_overview.wav"
)

// StatusSuccess tags a successful collaborator result set.
const StatusSuccess = "success"

// ParsedRequest is the two-field record the intake collaborator extracts
// from a free-text request.
type ParsedRequest struct {
	TargetLocation string
	BusinessType   string
}

// SearchResult is a status-tagged result set from a search collaborator.
// The engine never interprets Findings; only the stages do.
type SearchResult struct {
	Status   string
	Findings []string
}

// Place is one competitor venue returned by the places collaborator.
type Place struct {
	Name    string
	Address string
	Rating  float64
}

// PlacesResult is a status-tagged competitor listing.
type PlacesResult struct {
	Status string
	Places []Place
}

// CompetitorAnalysis is the structured record the competitor-mapping stage
// writes to state.
type CompetitorAnalysis struct {
	Summary    string
	TotalFound int
	Places     []Place
}

// Recommendation scores one candidate location.
type Recommendation struct {
	LocationName    string
	OverallScore    int
	OpportunityType string
}

// StrategicReport is the typed record produced by the strategy advisor and
// consumed by every artifact generator.
type StrategicReport struct {
	TargetLocation   string
	BusinessType     string
	MarketValidation string
	TotalCompetitors int
	TopPick          Recommendation
	KeyInsights      []string
}

// ArtifactResult is the status record an artifact stage writes to its
// output key once its payload is registered.
type ArtifactResult struct {
	Status   string
	Artifact string
}
