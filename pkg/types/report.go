// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunStatus is the terminal status of an analysis run.
type RunStatus string

const (
	// RunCompleted means the run produced a report from a fetched seed,
	// even if the budget truncated expansion.
	RunCompleted RunStatus = "completed"

	// RunFailed means the seed paper could not be fetched or analyzed at
	// all; the report carries zero gaps and a failure reason.
	RunFailed RunStatus = "failed"
)

// ValidatedGap is a gap candidate that survived validation, enriched with
// derived metrics for the final report.
type ValidatedGap struct {
	GapID            string `json:"gap_id" yaml:"gap_id"`
	GapTitle         string `json:"gap_title" yaml:"gap_title"`
	Description      string `json:"description" yaml:"description"`
	SourcePaper      string `json:"source_paper" yaml:"source_paper"`
	SourcePaperTitle string `json:"source_paper_title" yaml:"source_paper_title"`

	// ValidationEvidence explains why the gap survived validation.
	ValidationEvidence string `json:"validation_evidence" yaml:"validation_evidence"`

	// PotentialImpact describes what solving the gap would enable.
	PotentialImpact string `json:"potential_impact" yaml:"potential_impact"`

	SuggestedApproaches []string `json:"suggested_approaches" yaml:"suggested_approaches"`
	Category            string   `json:"category" yaml:"category"`

	GapMetrics GapMetrics `json:"gap_metrics" yaml:"gap_metrics"`

	ValidationAttempts   int     `json:"validation_attempts" yaml:"validation_attempts"`
	PapersCheckedAgainst int     `json:"papers_checked_against" yaml:"papers_checked_against"`
	ConfidenceScore      float64 `json:"confidence_score" yaml:"confidence_score"`

	RelatedPapers []string `json:"related_papers,omitempty" yaml:"related_papers,omitempty"`
}

// FrontierStats summarizes the expansion behavior of one run.
type FrontierStats struct {
	// FrontierExpansions counts papers whose extraction added new candidates.
	FrontierExpansions int `json:"frontier_expansions" yaml:"frontier_expansions"`

	// ResearchDomainsExplored counts unique domains seen across fetched papers.
	ResearchDomainsExplored int `json:"research_domains_explored" yaml:"research_domains_explored"`

	// ResearchVelocity is papers analyzed per minute.
	ResearchVelocity float64 `json:"research_velocity" yaml:"research_velocity"`

	// GapDiscoveryRate is candidates proposed per paper analyzed.
	GapDiscoveryRate float64 `json:"gap_discovery_rate" yaml:"gap_discovery_rate"`

	// EliminationEffectiveness is the percentage of discovered gaps that
	// were eliminated.
	EliminationEffectiveness float64 `json:"elimination_effectiveness" yaml:"elimination_effectiveness"`

	// FrontierCoverage estimates, 0-100, how much of the reachable domain
	// neighborhood the budget allowed the run to visit.
	FrontierCoverage float64 `json:"frontier_coverage" yaml:"frontier_coverage"`
}

// ResearchLandscape maps the territory one run explored.
type ResearchLandscape struct {
	// DominantResearchAreas lists the categories with the most validated gaps.
	DominantResearchAreas []string `json:"dominant_research_areas" yaml:"dominant_research_areas"`

	// EmergingTrends lists trend labels keyed off validated gap text.
	EmergingTrends []string `json:"emerging_trends" yaml:"emerging_trends"`

	// ResearchClusters maps category to validated gap count.
	ResearchClusters map[string]int `json:"research_clusters" yaml:"research_clusters"`

	// InterdisciplinaryBridges names category pairs the run connected.
	InterdisciplinaryBridges []string `json:"interdisciplinary_bridges" yaml:"interdisciplinary_bridges"`
}

// ProcessMetadata records what the run did: counts, timings, and rates.
// All values derive from the event log.
type ProcessMetadata struct {
	RequestID              string    `json:"request_id" yaml:"request_id"`
	SeedPaperURL           string    `json:"seed_paper_url" yaml:"seed_paper_url"`
	AnalysisDate           time.Time `json:"analysis_date" yaml:"analysis_date"`
	ProcessingTimeSeconds  float64   `json:"processing_time_seconds" yaml:"processing_time_seconds"`
	TotalPapersAnalyzed    int       `json:"total_papers_analyzed" yaml:"total_papers_analyzed"`
	GapsDiscovered         int       `json:"gaps_discovered" yaml:"gaps_discovered"`
	GapsValidated          int       `json:"gaps_validated" yaml:"gaps_validated"`
	GapsEliminated         int       `json:"gaps_eliminated" yaml:"gaps_eliminated"`
	GapsInconclusive       int       `json:"gaps_inconclusive" yaml:"gaps_inconclusive"`
	SearchQueriesExecuted  int       `json:"search_queries_executed" yaml:"search_queries_executed"`
	SearchQueriesSkipped   int       `json:"search_queries_skipped" yaml:"search_queries_skipped"`
	ValidationAttempts     int       `json:"validation_attempts" yaml:"validation_attempts"`
	SuccessfulExtractions  int       `json:"successful_paper_extractions" yaml:"successful_paper_extractions"`
	FailedExtractions      int       `json:"failed_extractions" yaml:"failed_extractions"`
	FailureReason          string    `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`

	FrontierStats     FrontierStats     `json:"frontier_stats" yaml:"frontier_stats"`
	ResearchLandscape ResearchLandscape `json:"research_landscape" yaml:"research_landscape"`
}

// ExecutiveSummary is the report's high-level narrative, assembled from
// actual run counts.
type ExecutiveSummary struct {
	FrontierOverview   string   `json:"frontier_overview" yaml:"frontier_overview"`
	KeyInsights        []string `json:"key_insights" yaml:"key_insights"`
	ResearchPriorities []string `json:"research_priorities" yaml:"research_priorities"`
	RiskAssessment     string   `json:"risk_assessment" yaml:"risk_assessment"`
}

// ResearchIntelligence carries elimination records and per-category derived
// indicators.
type ResearchIntelligence struct {
	// EliminatedGaps lists the run's actual elimination records.
	EliminatedGaps []EliminationRecord `json:"eliminated_gaps" yaml:"eliminated_gaps"`

	// ResearchMomentum scores activity by category.
	ResearchMomentum map[string]float64 `json:"research_momentum" yaml:"research_momentum"`

	// TechnologyReadiness estimates readiness levels by category, 1-9.
	TechnologyReadiness map[string]int `json:"technology_readiness" yaml:"technology_readiness"`

	// PatentLandscape estimates patent activity by category.
	PatentLandscape map[string]int `json:"patent_landscape" yaml:"patent_landscape"`

	// FundingTrends characterizes funding outlook by category.
	FundingTrends map[string]string `json:"funding_trends" yaml:"funding_trends"`
}

// AnalysisReport is the terminal immutable aggregate of one run. Produced
// exactly once, strictly from terminal-state data.
type AnalysisReport struct {
	RequestID    string    `json:"request_id" yaml:"request_id"`
	SeedPaperURL string    `json:"seed_paper_url" yaml:"seed_paper_url"`
	Status       RunStatus `json:"status" yaml:"status"`

	ValidatedGaps        []ValidatedGap       `json:"validated_gaps" yaml:"validated_gaps"`
	ExecutiveSummary     ExecutiveSummary     `json:"executive_summary" yaml:"executive_summary"`
	ProcessMetadata      ProcessMetadata      `json:"process_metadata" yaml:"process_metadata"`
	ResearchIntelligence ResearchIntelligence `json:"research_intelligence" yaml:"research_intelligence"`

	Timestamp       time.Time `json:"timestamp" yaml:"timestamp"`
	AnalysisVersion string    `json:"analysis_version" yaml:"analysis_version"`
}
