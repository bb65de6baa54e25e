// Package frontier drives budgeted breadth-first expansion of the paper
// frontier. The controller owns the run's query and paper budgets, the
// seen-paper set, and the domain diversity policy; the engine's single
// expansion loop is the only writer.
package frontier

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/pdiddy/gap-engine/internal/corpus"
	"github.com/pdiddy/gap-engine/pkg/types"
)

// queryRetries is how many times a failing query is retried before the
// controller skips it and records the failure.
const queryRetries = 3

// domainCapFloor is the number of executed queries below which the
// domain share cap is not enforced. A cap of 0.6 would otherwise block
// the very first query.
const domainCapFloor = 5

// retryBackoffBase controls the base duration for query retry backoff.
// Tests override this to avoid real sleeps.
var retryBackoffBase = time.Second

// Searcher is the corpus surface the controller needs.
type Searcher interface {
	Search(ctx context.Context, query corpus.Query) ([]types.Paper, error)
}

// Controller tracks expansion state across one run.
type Controller struct {
	searcher Searcher
	cfg      types.FrontierConfig
	w        io.Writer
	start    time.Time

	fetched         map[string]bool
	papersFetched   int
	queriesExecuted int
	queriesSkipped  int
	domainQueries   map[string]int

	events []types.Event
}

// NewController builds a controller. The budget clock starts here.
func NewController(searcher Searcher, cfg types.FrontierConfig, w io.Writer) *Controller {
	if w == nil {
		w = io.Discard
	}
	return &Controller{
		searcher:      searcher,
		cfg:           cfg,
		w:             w,
		start:         time.Now(),
		fetched:       make(map[string]bool),
		domainQueries: make(map[string]int),
	}
}

// MarkSeed records the seed paper against the paper budget.
func (c *Controller) MarkSeed(paper types.Paper) {
	c.fetched[paper.ID] = true
	c.papersFetched++
	c.events = append(c.events, types.Event{
		Kind:    types.EventPaperFetched,
		At:      time.Now(),
		PaperID: paper.ID,
		Domain:  paper.PrimaryDomain(),
	})
}

// BudgetExhausted reports whether any ceiling has been crossed. Once true
// it stays true; the engine finishes in-flight work and assembles the
// report.
func (c *Controller) BudgetExhausted() bool {
	if c.cfg.MaxPapers > 0 && c.papersFetched >= c.cfg.MaxPapers {
		return true
	}
	if c.cfg.MaxQueries > 0 && c.queriesExecuted >= c.cfg.MaxQueries {
		return true
	}
	if c.cfg.MaxElapsed > 0 && time.Since(c.start) >= c.cfg.MaxElapsed {
		return true
	}
	return false
}

// Elapsed returns wall-clock time since the controller started.
func (c *Controller) Elapsed() time.Duration {
	return time.Since(c.start)
}

// Execute runs one corpus query if the budget and the domain policy
// allow, returning only papers this run has not seen before. A query that
// keeps failing after retries is skipped and recorded, never fatal.
func (c *Controller) Execute(ctx context.Context, query corpus.Query) []types.Paper {
	if query.IsEmpty() || c.BudgetExhausted() {
		return nil
	}

	if c.overDomainCap(query.Domain) {
		c.skip(query, fmt.Sprintf("domain %q over share cap", query.Domain))
		return nil
	}

	papers, err := c.searchWithRetry(ctx, query)
	if err != nil {
		c.skip(query, err.Error())
		return nil
	}

	c.queriesExecuted++
	if query.Domain != "" {
		c.domainQueries[query.Domain]++
	}
	c.events = append(c.events, types.Event{
		Kind:   types.EventQueryExecuted,
		At:     time.Now(),
		Query:  query.Text,
		Domain: query.Domain,
	})
	fmt.Fprintf(c.w, "query %q returned %d papers\n", query.Text, len(papers))

	var fresh []types.Paper
	for _, p := range papers {
		if c.fetched[p.ID] {
			continue
		}
		if c.cfg.MaxPapers > 0 && c.papersFetched >= c.cfg.MaxPapers {
			break
		}
		c.fetched[p.ID] = true
		c.papersFetched++
		fresh = append(fresh, p)
		c.events = append(c.events, types.Event{
			Kind:    types.EventPaperFetched,
			At:      time.Now(),
			PaperID: p.ID,
			Domain:  p.PrimaryDomain(),
		})
	}
	return fresh
}

// Seen reports whether the run already fetched the paper.
func (c *Controller) Seen(id string) bool {
	return c.fetched[id]
}

// PapersFetched returns the count of distinct papers fetched, seed
// included.
func (c *Controller) PapersFetched() int { return c.papersFetched }

// QueriesExecuted returns the count of queries that ran.
func (c *Controller) QueriesExecuted() int { return c.queriesExecuted }

// Events returns the controller's event log in order.
func (c *Controller) Events() []types.Event { return c.events }

func (c *Controller) skip(query corpus.Query, reason string) {
	c.queriesSkipped++
	c.events = append(c.events, types.Event{
		Kind:   types.EventQuerySkipped,
		At:     time.Now(),
		Query:  query.Text,
		Domain: query.Domain,
		Err:    reason,
	})
	fmt.Fprintf(c.w, "skipped query %q: %s\n", query.Text, reason)
}

// overDomainCap reports whether executing one more query for the domain
// would push its share of executed queries past the configured cap.
func (c *Controller) overDomainCap(domain string) bool {
	if domain == "" || c.cfg.DomainShareCap <= 0 {
		return false
	}
	if c.queriesExecuted < domainCapFloor {
		return false
	}
	share := float64(c.domainQueries[domain]+1) / float64(c.queriesExecuted+1)
	return share > c.cfg.DomainShareCap
}

func (c *Controller) searchWithRetry(ctx context.Context, query corpus.Query) ([]types.Paper, error) {
	var lastErr error
	for attempt := 0; attempt <= queryRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * retryBackoffBase
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		papers, err := c.searcher.Search(ctx, query)
		if err == nil {
			return papers, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d retries: %w", queryRetries, lastErr)
}
