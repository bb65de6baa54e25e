// Package validate runs gap candidates through elimination and
// corroboration checks against newly fetched papers. Elimination is
// checked first and is final; corroboration raises a candidate's
// confidence asymptotically toward 100 until it validates, exhausts its
// check budget, or gets eliminated.
package validate

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/gap-engine/internal/extraction"
	"github.com/pdiddy/gap-engine/pkg/types"
)

// Engine applies checks to candidates. Safe for concurrent use; each
// candidate is serialized under its own lock so checks for one candidate
// never interleave.
type Engine struct {
	cfg      types.ValidationConfig
	analyzer extraction.Analyzer
	sem      *semaphore.Weighted

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Outcome collects what one round of checks produced.
type Outcome struct {
	Events       []types.Event
	Eliminations []types.EliminationRecord
}

// NewEngine builds an engine over the analyzer.
func NewEngine(analyzer extraction.Analyzer, cfg types.ValidationConfig) *Engine {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Engine{
		cfg:      cfg,
		analyzer: analyzer,
		sem:      semaphore.NewWeighted(int64(concurrency)),
		locks:    make(map[string]*sync.Mutex),
	}
}

// CheckAll checks every active candidate against the paper. Candidates
// with fewer prior attempts go first, so check budget spreads evenly
// across the pool. Blocks until all checks finish.
func (e *Engine) CheckAll(ctx context.Context, candidates []*types.GapCandidate, paper types.Paper) Outcome {
	ordered := make([]*types.GapCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Active() && c.SourcePaperID != paper.ID {
			ordered = append(ordered, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ValidationAttempts < ordered[j].ValidationAttempts
	})

	var (
		wg      sync.WaitGroup
		outMu   sync.Mutex
		outcome Outcome
	)

	for _, c := range ordered {
		if err := e.sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(c *types.GapCandidate) {
			defer wg.Done()
			defer e.sem.Release(1)

			events, record := e.checkOne(ctx, c, paper)

			outMu.Lock()
			outcome.Events = append(outcome.Events, events...)
			if record != nil {
				outcome.Eliminations = append(outcome.Eliminations, *record)
			}
			outMu.Unlock()
		}(c)
	}

	wg.Wait()
	return outcome
}

// checkOne runs a single check under the candidate's lock. Terminal
// candidates are left untouched, which makes repeated delivery of the
// same paper a no-op.
func (e *Engine) checkOne(ctx context.Context, c *types.GapCandidate, paper types.Paper) ([]types.Event, *types.EliminationRecord) {
	lock := e.candidateLock(c.ID)
	lock.Lock()
	defer lock.Unlock()

	if !c.Active() {
		return nil, nil
	}

	check, err := e.analyzer.CheckGapAgainstPaper(ctx, *c, paper)
	if err != nil {
		// A failed or malformed check is inconclusive: it consumes no
		// budget and moves no counters.
		return []types.Event{{
			Kind:    types.EventGapInconclusive,
			At:      time.Now(),
			GapID:   c.ID,
			PaperID: paper.ID,
			Err:     err.Error(),
		}}, nil
	}

	c.PapersCheckedAgainst++

	if check.EliminationConfidence >= e.eliminationThreshold() {
		c.State = types.GapEliminated
		record := &types.EliminationRecord{
			GapID:              c.ID,
			GapTitle:           c.Title,
			Reason:             check.Reason,
			SolvedByPaperID:    paper.ID,
			SolvedByPaperTitle: paper.Title,
			Confidence:         check.EliminationConfidence,
			RecordedAt:         time.Now(),
		}
		return []types.Event{{
			Kind:       types.EventGapEliminated,
			At:         time.Now(),
			GapID:      c.ID,
			PaperID:    paper.ID,
			Confidence: check.EliminationConfidence,
		}}, record
	}

	c.ValidationAttempts++
	c.State = types.GapValidating

	// Asymptotic update: each corroboration closes part of the remaining
	// distance to 100, so confidence never decreases and never overshoots.
	weight := check.ReinforcementConfidence * e.weightScale()
	c.ConfidenceScore += (1 - c.ConfidenceScore/100) * weight
	if c.ConfidenceScore > 100 {
		c.ConfidenceScore = 100
	}

	events := []types.Event{{
		Kind:       types.EventGapCorroborated,
		At:         time.Now(),
		GapID:      c.ID,
		PaperID:    paper.ID,
		Confidence: c.ConfidenceScore,
	}}

	switch {
	case c.ConfidenceScore >= e.validationThreshold() && c.ValidationAttempts >= e.minAttempts():
		c.State = types.GapValidated
		events = append(events, types.Event{
			Kind:       types.EventGapValidated,
			At:         time.Now(),
			GapID:      c.ID,
			Confidence: c.ConfidenceScore,
		})
	case c.ValidationAttempts >= e.maxChecks():
		c.State = types.GapExhausted
		events = append(events, types.Event{
			Kind:       types.EventGapExhausted,
			At:         time.Now(),
			GapID:      c.ID,
			Confidence: c.ConfidenceScore,
		})
	}

	return events, nil
}

func (e *Engine) candidateLock(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	return lock
}

func (e *Engine) eliminationThreshold() float64 {
	if e.cfg.EliminationThreshold <= 0 {
		return 85
	}
	return e.cfg.EliminationThreshold
}

func (e *Engine) validationThreshold() float64 {
	if e.cfg.ValidationThreshold <= 0 {
		return 90
	}
	return e.cfg.ValidationThreshold
}

func (e *Engine) minAttempts() int {
	if e.cfg.MinAttempts <= 0 {
		return 2
	}
	return e.cfg.MinAttempts
}

func (e *Engine) maxChecks() int {
	if e.cfg.MaxChecks <= 0 {
		return 6
	}
	return e.cfg.MaxChecks
}

func (e *Engine) weightScale() float64 {
	if e.cfg.WeightScale <= 0 {
		return 1.0
	}
	return e.cfg.WeightScale
}
