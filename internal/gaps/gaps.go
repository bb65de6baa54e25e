// Package gaps mints gap candidates from paper analyses and merges
// near-duplicate statements of the same open problem. The extractor is
// driven from the engine's expansion loop; it is not safe for concurrent
// use, which the single-writer loop guarantees.
package gaps

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/pdiddy/gap-engine/internal/extraction"
	"github.com/pdiddy/gap-engine/pkg/types"
)

// Candidate categories.
const (
	CategoryLimitation = "Limitation"
	CategoryFutureWork = "Future Work"
)

// Extractor accumulates gap candidates across the run.
type Extractor struct {
	cfg        types.GapsConfig
	candidates []*types.GapCandidate
}

// NewExtractor builds an extractor with the given settings.
func NewExtractor(cfg types.GapsConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// FromAnalysis mints candidates from a paper's limitations and future work
// statements. Fragments below the minimum length are dropped; statements
// near-duplicating an existing candidate are merged into it instead of
// creating a second candidate. Returns the lifecycle events produced.
func (e *Extractor) FromAnalysis(paper types.Paper, analysis extraction.PaperAnalysis) []types.Event {
	var events []types.Event
	events = append(events, e.mint(paper, analysis.Limitations, CategoryLimitation)...)
	events = append(events, e.mint(paper, analysis.FutureWork, CategoryFutureWork)...)
	return events
}

func (e *Extractor) mint(paper types.Paper, fragments []string, category string) []types.Event {
	minLen := e.cfg.MinFragmentLength
	if minLen <= 0 {
		minLen = 20
	}

	var events []types.Event
	for _, fragment := range fragments {
		desc := strings.TrimSpace(fragment)
		if len(desc) < minLen {
			continue
		}

		if existing := e.findDuplicate(desc); existing != nil {
			if paper.ID != existing.SourcePaperID && !containsString(existing.RelatedPaperIDs, paper.ID) {
				existing.RelatedPaperIDs = append(existing.RelatedPaperIDs, paper.ID)
			}
			events = append(events, types.Event{
				Kind:    types.EventGapMerged,
				At:      time.Now(),
				GapID:   existing.ID,
				PaperID: paper.ID,
				Domain:  paper.PrimaryDomain(),
			})
			continue
		}

		candidate := &types.GapCandidate{
			ID:               shortID(),
			Title:            gapTitle(desc),
			Description:      desc,
			Category:         category,
			SourcePaperID:    paper.ID,
			SourcePaperTitle: paper.Title,
			State:            types.GapProposed,
			CreatedAt:        time.Now(),
		}
		e.candidates = append(e.candidates, candidate)
		events = append(events, types.Event{
			Kind:    types.EventGapProposed,
			At:      time.Now(),
			GapID:   candidate.ID,
			PaperID: paper.ID,
			Domain:  paper.PrimaryDomain(),
		})
	}
	return events
}

// findDuplicate returns the existing candidate the description duplicates,
// or nil. Containment of one normalized description in the other
// short-circuits; otherwise Levenshtein similarity decides.
func (e *Extractor) findDuplicate(desc string) *types.GapCandidate {
	threshold := e.cfg.DedupSimilarity
	if threshold <= 0 {
		threshold = 0.82
	}

	norm := normalize(desc)
	for _, c := range e.candidates {
		existing := normalize(c.Description)
		if strings.Contains(existing, norm) || strings.Contains(norm, existing) {
			return c
		}
		if similarity(norm, existing) >= threshold {
			return c
		}
	}
	return nil
}

// Candidates returns all candidates minted so far.
func (e *Extractor) Candidates() []*types.GapCandidate {
	return e.candidates
}

// Active returns the candidates still eligible for checks.
func (e *Extractor) Active() []*types.GapCandidate {
	var active []*types.GapCandidate
	for _, c := range e.candidates {
		if c.Active() {
			active = append(active, c)
		}
	}
	return active
}

// SolutionQueries derives solution-seeking corpus queries from the gap
// text. Used when the AI query generator is unavailable, so a candidate
// is always searchable.
func SolutionQueries(gap *types.GapCandidate) []string {
	frag := truncateWords(gap.Description, 50)
	return []string{
		fmt.Sprintf("solving %s", frag),
		fmt.Sprintf("addressing %s", frag),
		fmt.Sprintf("solution for %s", frag),
	}
}

// gapTitle derives a concise title from the description.
func gapTitle(desc string) string {
	return truncateWords(desc, 100)
}

// truncateWords cuts s at the last word boundary within maxLen bytes.
func truncateWords(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}

// normalize lowercases and strips punctuation for comparison.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// shortID returns the first 8 characters of a fresh UUID.
func shortID() string {
	return uuid.NewString()[:8]
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
