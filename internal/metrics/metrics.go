// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics derives run statistics from the event log. Everything
// here is a pure function: same events in, same numbers out, so a stored
// run can be re-aggregated after the fact.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// Counts is the tally of one run's event log.
type Counts struct {
	PapersFetched      int
	ExtractionsFailed  int
	GapsDiscovered     int
	GapsMerged         int
	GapsValidated      int
	GapsEliminated     int
	GapsExhausted      int
	QueriesExecuted    int
	QueriesSkipped     int
	ValidationAttempts int

	// FrontierExpansions counts distinct papers that contributed at least
	// one new candidate.
	FrontierExpansions int

	// DomainsExplored counts unique domains across fetched papers.
	DomainsExplored int
}

// PapersAnalyzed is the number of fetched papers whose extraction
// succeeded.
func (c Counts) PapersAnalyzed() int {
	n := c.PapersFetched - c.ExtractionsFailed
	if n < 0 {
		return 0
	}
	return n
}

// Tally walks the event log once and counts everything the report needs.
func Tally(events []types.Event) Counts {
	var c Counts
	domains := make(map[string]bool)
	expandingPapers := make(map[string]bool)

	for _, ev := range events {
		switch ev.Kind {
		case types.EventPaperFetched:
			c.PapersFetched++
			if ev.Domain != "" {
				domains[ev.Domain] = true
			}
		case types.EventExtractionFailed:
			c.ExtractionsFailed++
		case types.EventGapProposed:
			c.GapsDiscovered++
			if ev.PaperID != "" {
				expandingPapers[ev.PaperID] = true
			}
		case types.EventGapMerged:
			c.GapsMerged++
		case types.EventGapCorroborated:
			c.ValidationAttempts++
		case types.EventGapValidated:
			c.GapsValidated++
		case types.EventGapEliminated:
			c.GapsEliminated++
		case types.EventGapExhausted:
			c.GapsExhausted++
		case types.EventQueryExecuted:
			c.QueriesExecuted++
		case types.EventQuerySkipped:
			c.QueriesSkipped++
		}
	}

	c.FrontierExpansions = len(expandingPapers)
	c.DomainsExplored = len(domains)
	return c
}

// Stats derives frontier statistics from the tally.
func Stats(c Counts, elapsedSeconds float64) types.FrontierStats {
	analyzed := c.PapersAnalyzed()

	var velocity float64
	if elapsedSeconds > 0 {
		velocity = round2(float64(analyzed) / (elapsedSeconds / 60))
	}

	discovered := c.GapsDiscovered
	if discovered < 1 {
		discovered = 1
	}
	papers := analyzed
	if papers < 1 {
		papers = 1
	}

	return types.FrontierStats{
		FrontierExpansions:       c.FrontierExpansions,
		ResearchDomainsExplored:  c.DomainsExplored,
		ResearchVelocity:         velocity,
		GapDiscoveryRate:         round2(float64(c.GapsDiscovered) / float64(papers)),
		EliminationEffectiveness: round1(float64(c.GapsEliminated) / float64(discovered) * 100),
		FrontierCoverage:         round1(math.Min(85.0, 20.0+float64(analyzed)*8)),
	}
}

// trendRules maps gap-text keywords to trend labels.
var trendRules = []struct {
	keywords []string
	label    string
}{
	{[]string{"edge", "real-time"}, "Real-Time Edge Computing"},
	{[]string{"robust", "adversarial"}, "Robust AI Systems"},
	{[]string{"cross-domain", "generalization"}, "Cross-Domain Adaptation"},
	{[]string{"multi-modal", "fusion"}, "Multi-Modal AI"},
}

// Landscape maps the validated gaps into research territory: clusters by
// category, dominant areas, keyword-derived trends, and category bridges.
func Landscape(gaps []types.ValidatedGap) types.ResearchLandscape {
	clusters := make(map[string]int)
	var textParts []string
	for _, g := range gaps {
		category := g.Category
		if category == "" {
			category = "General Research"
		}
		clusters[category]++
		textParts = append(textParts, strings.ToLower(g.Description))
	}

	areas := rankedCategories(clusters)
	dominant := areas
	if len(dominant) > 4 {
		dominant = dominant[:4]
	}

	gapText := strings.Join(textParts, " ")
	var trends []string
	for _, rule := range trendRules {
		for _, kw := range rule.keywords {
			if strings.Contains(gapText, kw) {
				trends = append(trends, rule.label)
				break
			}
		}
	}
	if len(trends) == 0 && len(gaps) > 0 {
		trends = []string{"Advanced AI Techniques"}
	}

	var bridges []string
	for i := 0; i+1 < len(areas) && i < 2; i++ {
		bridges = append(bridges, fmt.Sprintf("%s-%s Integration", areas[i], areas[i+1]))
	}

	return types.ResearchLandscape{
		DominantResearchAreas:    dominant,
		EmergingTrends:           trends,
		ResearchClusters:         clusters,
		InterdisciplinaryBridges: bridges,
	}
}

// Intelligence derives the per-category indicator maps and attaches the
// run's actual elimination records.
func Intelligence(clusters map[string]int, eliminations []types.EliminationRecord) types.ResearchIntelligence {
	momentum := make(map[string]float64, len(clusters))
	readiness := make(map[string]int, len(clusters))
	patents := make(map[string]int, len(clusters))
	funding := make(map[string]string, len(clusters))

	for category, count := range clusters {
		momentum[category] = round1(5.0 + float64(count)*2.5 + float64(len(category))*0.1)
		readiness[category] = clampInt(4+count, 3, 9)
		patents[category] = maxInt(50, count*150+len(category)*10)

		label := "Emerging"
		if count > 1 {
			label = "Active"
		}
		growth := minInt(80, 20+count*15)
		funding[category] = fmt.Sprintf("%s research area, %d%% growth potential", label, growth)
	}

	if eliminations == nil {
		eliminations = []types.EliminationRecord{}
	}
	return types.ResearchIntelligence{
		EliminatedGaps:      eliminations,
		ResearchMomentum:    momentum,
		TechnologyReadiness: readiness,
		PatentLandscape:     patents,
		FundingTrends:       funding,
	}
}

// rankedCategories sorts categories by gap count descending, name
// ascending for determinism.
func rankedCategories(clusters map[string]int) []string {
	categories := make([]string, 0, len(clusters))
	for c := range clusters {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if clusters[categories[i]] != clusters[categories[j]] {
			return clusters[categories[i]] > clusters[categories[j]]
		}
		return categories[i] < categories[j]
	})
	return categories
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
