// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine drives one frontier expansion run end to end: fetch the
// seed, mint gap candidates, expand the corpus with solution-seeking
// queries, validate candidates against every fresh paper, and assemble
// the terminal report. Each run owns its own state; concurrent runs do
// not share anything.
package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/gap-engine/internal/corpus"
	"github.com/pdiddy/gap-engine/internal/extraction"
	"github.com/pdiddy/gap-engine/internal/frontier"
	"github.com/pdiddy/gap-engine/internal/gaps"
	"github.com/pdiddy/gap-engine/internal/report"
	"github.com/pdiddy/gap-engine/internal/validate"
	"github.com/pdiddy/gap-engine/pkg/types"
)

// Corpus is the paper retrieval surface the engine drives.
type Corpus interface {
	Search(ctx context.Context, query corpus.Query) ([]types.Paper, error)
	Fetch(ctx context.Context, id string) (types.Paper, error)
}

// Recorder persists a finished report and its event log.
type Recorder interface {
	Save(ctx context.Context, report *types.AnalysisReport, events []types.Event) error
}

// Request describes one analysis run.
type Request struct {
	// SeedPaperURL is the paper the frontier expands from. Required.
	SeedPaperURL string

	// RequestID keys the run and its report. Generated when empty.
	RequestID string

	// Budget overrides the configured budget field by field; zero values
	// keep the configured defaults.
	Budget types.Budget
}

// Engine runs frontier expansions. Safe for concurrent Run calls; all
// per-run state lives on the stack of Run.
type Engine struct {
	cfg      types.EngineConfig
	corpus   Corpus
	analyzer extraction.Analyzer
	store    Recorder
	w        io.Writer
}

// New builds an engine. store may be nil to skip persistence; w may be
// nil to discard progress output.
func New(cfg types.EngineConfig, c Corpus, analyzer extraction.Analyzer, store Recorder, w io.Writer) *Engine {
	if w == nil {
		w = io.Discard
	}
	return &Engine{cfg: cfg, corpus: c, analyzer: analyzer, store: store, w: w}
}

// Run executes one frontier expansion and returns the terminal report.
// A run that cannot fetch or analyze its seed still returns a report,
// with failed status; Run only returns an error for requests that are
// malformed before any work starts.
func (e *Engine) Run(ctx context.Context, req Request) (*types.AnalysisReport, error) {
	if req.SeedPaperURL == "" {
		return nil, fmt.Errorf("seed paper URL is required")
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	start := time.Now()

	fmt.Fprintf(e.w, "run %s: fetching seed %s\n", req.RequestID, req.SeedPaperURL)
	seed, err := e.corpus.Fetch(ctx, req.SeedPaperURL)
	if err != nil {
		return e.finish(ctx, report.Failed(req.RequestID, req.SeedPaperURL,
			fmt.Sprintf("fetching seed paper: %v", err), time.Since(start)), nil)
	}

	analysis, err := e.analyzer.AnalyzeForGaps(ctx, seed)
	if err != nil {
		return e.finish(ctx, report.Failed(req.RequestID, req.SeedPaperURL,
			fmt.Sprintf("analyzing seed paper: %v", err), time.Since(start)), nil)
	}

	frontierCfg := e.cfg.Frontier
	frontierCfg.Budget = overrideBudget(frontierCfg.Budget, req.Budget)

	ctrl := frontier.NewController(e.corpus, frontierCfg, e.w)
	extractor := gaps.NewExtractor(e.cfg.Gaps)
	validator := validate.NewEngine(e.analyzer, e.cfg.Validation)

	ctrl.MarkSeed(seed)

	var events []types.Event
	var eliminations []types.EliminationRecord

	// Paper ID to primary domain, so candidate queries inherit the domain
	// of the paper that proposed them.
	domains := map[string]string{seed.ID: seed.PrimaryDomain()}

	minted := extractor.FromAnalysis(seed, analysis)
	events = append(events, minted...)
	fmt.Fprintf(e.w, "run %s: %d candidates from seed %q\n", req.RequestID, len(minted), seed.Title)

	queried := make(map[string]bool)
	planned := make(map[string]bool)

	for !ctrl.BudgetExhausted() && ctx.Err() == nil {
		batch := e.planQueries(ctx, extractor, domains, planned, queried)
		if len(batch) == 0 {
			break
		}

		for _, q := range batch {
			if ctrl.BudgetExhausted() || ctx.Err() != nil {
				break
			}
			for _, paper := range ctrl.Execute(ctx, q) {
				domains[paper.ID] = paper.PrimaryDomain()

				if pa, err := e.analyzer.AnalyzeForGaps(ctx, paper); err != nil {
					events = append(events, types.Event{
						Kind:    types.EventExtractionFailed,
						At:      time.Now().UTC(),
						PaperID: paper.ID,
						Err:     err.Error(),
					})
					fmt.Fprintf(e.w, "extraction failed for %s: %v\n", paper.ID, err)
				} else {
					events = append(events, extractor.FromAnalysis(paper, pa)...)
				}

				outcome := validator.CheckAll(ctx, extractor.Candidates(), paper)
				events = append(events, outcome.Events...)
				eliminations = append(eliminations, outcome.Eliminations...)
			}
		}
	}

	events = append(events, ctrl.Events()...)

	rep := report.Build(report.Input{
		RequestID:    req.RequestID,
		SeedPaperURL: req.SeedPaperURL,
		Candidates:   extractor.Candidates(),
		Eliminations: eliminations,
		Events:       events,
		Elapsed:      ctrl.Elapsed(),
	})
	fmt.Fprintf(e.w, "run %s complete: %d validated, %d eliminated, %d papers, %d queries\n",
		req.RequestID, rep.ProcessMetadata.GapsValidated, rep.ProcessMetadata.GapsEliminated,
		ctrl.PapersFetched(), ctrl.QueriesExecuted())

	return e.finish(ctx, rep, events)
}

// finish persists the report when a store is configured. Persistence
// failure never loses the report.
func (e *Engine) finish(ctx context.Context, rep *types.AnalysisReport, events []types.Event) (*types.AnalysisReport, error) {
	if e.store != nil {
		if err := e.store.Save(ctx, rep, events); err != nil {
			fmt.Fprintf(e.w, "warning: report save failed: %v\n", err)
		}
	}
	return rep, nil
}

// planQueries generates solution-seeking queries for active candidates
// that do not have queries yet. The analyzer proposes them; when it
// cannot, deterministic queries derived from the gap text stand in.
func (e *Engine) planQueries(ctx context.Context, extractor *gaps.Extractor, domains map[string]string, planned, queried map[string]bool) []corpus.Query {
	var batch []corpus.Query
	for _, c := range extractor.Active() {
		if planned[c.ID] {
			continue
		}
		planned[c.ID] = true

		texts, err := e.analyzer.ValidationQueries(ctx, *c)
		if err != nil {
			texts = gaps.SolutionQueries(c)
		}
		for _, text := range texts {
			if text == "" || queried[text] {
				continue
			}
			queried[text] = true
			batch = append(batch, corpus.Query{Text: text, Domain: domains[c.SourcePaperID]})
		}
	}
	return batch
}

func overrideBudget(base, override types.Budget) types.Budget {
	if override.MaxPapers > 0 {
		base.MaxPapers = override.MaxPapers
	}
	if override.MaxQueries > 0 {
		base.MaxQueries = override.MaxQueries
	}
	if override.MaxElapsed > 0 {
		base.MaxElapsed = override.MaxElapsed
	}
	return base
}
