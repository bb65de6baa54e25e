// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles the terminal analysis report. The builder only
// reads terminal-state candidates, elimination records, and the event log;
// it never mutates them and it never calls a model. Everything derived here
// (gap metrics, summary text, landscape) is a deterministic function of the
// run's actual data.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/gap-engine/internal/metrics"
	"github.com/pdiddy/gap-engine/pkg/types"
)

// AnalysisVersion tags every report produced by this engine revision.
const AnalysisVersion = "2.0"

var defaultApproaches = []string{
	"Detailed analysis required",
	"Empirical investigation",
	"Theoretical exploration",
}

// Input carries everything the builder needs from a finished run.
type Input struct {
	RequestID    string
	SeedPaperURL string
	Candidates   []*types.GapCandidate
	Eliminations []types.EliminationRecord
	Events       []types.Event
	Elapsed      time.Duration
}

// Build assembles the completed-run report from terminal run state.
func Build(in Input) *types.AnalysisReport {
	now := time.Now().UTC()
	counts := metrics.Tally(in.Events)
	elapsedSeconds := in.Elapsed.Seconds()
	stats := metrics.Stats(counts, elapsedSeconds)

	var validated []types.ValidatedGap
	for _, c := range in.Candidates {
		if c.State != types.GapValidated {
			continue
		}
		validated = append(validated, enrich(c))
	}
	if validated == nil {
		validated = []types.ValidatedGap{}
	}

	landscape := metrics.Landscape(validated)

	return &types.AnalysisReport{
		RequestID:    in.RequestID,
		SeedPaperURL: in.SeedPaperURL,
		Status:       types.RunCompleted,

		ValidatedGaps:    validated,
		ExecutiveSummary: summarize(validated, counts, stats, landscape),
		ProcessMetadata: types.ProcessMetadata{
			RequestID:             in.RequestID,
			SeedPaperURL:          in.SeedPaperURL,
			AnalysisDate:          now,
			ProcessingTimeSeconds: elapsedSeconds,
			TotalPapersAnalyzed:   counts.PapersAnalyzed(),
			GapsDiscovered:        counts.GapsDiscovered,
			GapsValidated:         counts.GapsValidated,
			GapsEliminated:        counts.GapsEliminated,
			GapsInconclusive:      counts.GapsExhausted,
			SearchQueriesExecuted: counts.QueriesExecuted,
			SearchQueriesSkipped:  counts.QueriesSkipped,
			ValidationAttempts:    counts.ValidationAttempts,
			SuccessfulExtractions: counts.PapersAnalyzed(),
			FailedExtractions:     counts.ExtractionsFailed,
			FrontierStats:         stats,
			ResearchLandscape:     landscape,
		},
		ResearchIntelligence: metrics.Intelligence(landscape.ResearchClusters, in.Eliminations),

		Timestamp:       now,
		AnalysisVersion: AnalysisVersion,
	}
}

// Failed builds the terminal report for a run whose seed paper could not
// be fetched or analyzed. It carries zero gaps and the failure reason.
func Failed(requestID, seedURL, reason string, elapsed time.Duration) *types.AnalysisReport {
	now := time.Now().UTC()
	return &types.AnalysisReport{
		RequestID:    requestID,
		SeedPaperURL: seedURL,
		Status:       types.RunFailed,

		ValidatedGaps: []types.ValidatedGap{},
		ExecutiveSummary: types.ExecutiveSummary{
			FrontierOverview:   "Analysis failed during processing",
			KeyInsights:        []string{"Error occurred during analysis"},
			ResearchPriorities: []string{},
			RiskAssessment:     "Analysis incomplete due to processing error",
		},
		ProcessMetadata: types.ProcessMetadata{
			RequestID:             requestID,
			SeedPaperURL:          seedURL,
			AnalysisDate:          now,
			ProcessingTimeSeconds: elapsed.Seconds(),
			FailureReason:         reason,
		},
		ResearchIntelligence: metrics.Intelligence(nil, nil),

		Timestamp:       now,
		AnalysisVersion: AnalysisVersion,
	}
}

// enrich converts a validated candidate into its report form, deriving the
// metrics from the candidate's own text rather than another model call.
func enrich(c *types.GapCandidate) types.ValidatedGap {
	approaches := c.SuggestedApproaches
	if len(approaches) == 0 {
		approaches = defaultApproaches
	}

	evidence := fmt.Sprintf(
		"Survived %d corroborating checks against %d papers, reaching %.1f%% confidence without a solving paper being found.",
		c.ValidationAttempts, c.PapersCheckedAgainst, c.ConfidenceScore)

	return types.ValidatedGap{
		GapID:            c.ID,
		GapTitle:         c.Title,
		Description:      c.Description,
		SourcePaper:      c.SourcePaperID,
		SourcePaperTitle: c.SourcePaperTitle,

		ValidationEvidence:  evidence,
		PotentialImpact:     "Significant research opportunity identified",
		SuggestedApproaches: approaches,
		Category:            c.Category,

		GapMetrics: deriveMetrics(c.Description),

		ValidationAttempts:   c.ValidationAttempts,
		PapersCheckedAgainst: c.PapersCheckedAgainst,
		ConfidenceScore:      c.ConfidenceScore,
		RelatedPapers:        c.RelatedPaperIDs,
	}
}

// deriveMetrics scores a gap from the length and word count of its
// description. The formulas are bounded so scores stay on their scales.
func deriveMetrics(description string) types.GapMetrics {
	words := float64(len(strings.Fields(description)))
	chars := float64(len(description))

	return types.GapMetrics{
		DifficultyScore:       clamp(5.0+words/20, 4.0, 8.0),
		InnovationPotential:   clamp(7.0+chars/100, 6.0, 9.0),
		CommercialViability:   clamp(5.5+words/30, 4.0, 8.0),
		TimeToSolution:        fmt.Sprintf("%d-%d years", maxInt(1, int(words)/10), maxInt(2, int(words)/8)),
		FundingLikelihood:     clamp(60+words*2, 50, 90),
		CollaborationScore:    clamp(5.0+words/15, 4.0, 9.0),
		EthicalConsiderations: clamp(3.0+words/25, 2.0, 7.0),
	}
}

func summarize(validated []types.ValidatedGap, counts metrics.Counts, stats types.FrontierStats, landscape types.ResearchLandscape) types.ExecutiveSummary {
	categories := landscape.DominantResearchAreas

	overview := fmt.Sprintf(
		"Analysis of the research frontier revealed %d high-impact research opportunities across %d domains, with %d previously identified gaps eliminated due to existing solutions.",
		len(validated), len(landscape.ResearchClusters), counts.GapsEliminated)

	firstInsight := "Analysis identified promising research directions"
	if len(categories) > 0 {
		firstInsight = fmt.Sprintf("Identified %d unexplored research gaps across %s",
			len(validated), strings.Join(categories, ", "))
	}
	insights := []string{
		firstInsight,
		fmt.Sprintf("Research velocity achieved %.1f papers/minute with %d papers analyzed",
			stats.ResearchVelocity, counts.PapersAnalyzed()),
		fmt.Sprintf("Gap elimination rate of %.1f%% indicates robust validation process",
			stats.EliminationEffectiveness),
		fmt.Sprintf("Frontier coverage reached %.1f%% of identified research landscape",
			stats.FrontierCoverage),
	}

	var priorities []string
	if len(categories) > 0 {
		priorities = append(priorities, fmt.Sprintf("Advanced research in %s", categories[0]))
	}
	if len(categories) > 1 {
		priorities = append(priorities, fmt.Sprintf("Integration of %s methodologies", categories[1]))
	}
	if len(categories) > 2 {
		priorities = append(priorities, fmt.Sprintf("Cross-domain applications in %s", categories[2]))
	}
	priorities = append(priorities, "Novel algorithmic approaches for identified limitations")

	risk := fmt.Sprintf(
		"Technical risk varies by gap complexity. With %d validated opportunities and %d eliminated false positives, the analysis shows promising research directions with measurable validation rigor.",
		len(validated), counts.GapsEliminated)

	return types.ExecutiveSummary{
		FrontierOverview:   overview,
		KeyInsights:        insights,
		ResearchPriorities: priorities,
		RiskAssessment:     risk,
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, x))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
