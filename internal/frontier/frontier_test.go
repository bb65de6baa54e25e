package frontier

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/gap-engine/internal/corpus"
	"github.com/pdiddy/gap-engine/pkg/types"
)

type mockSearcher struct {
	papers  []types.Paper
	err     error
	failN   int
	calls   int
	queries []corpus.Query
}

func (m *mockSearcher) Search(_ context.Context, query corpus.Query) ([]types.Paper, error) {
	m.calls++
	m.queries = append(m.queries, query)
	if m.failN > 0 && m.calls <= m.failN {
		return nil, fmt.Errorf("transient failure %d", m.calls)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.papers, nil
}

func testCfg() types.FrontierConfig {
	return types.FrontierConfig{
		Budget: types.Budget{
			MaxPapers:  10,
			MaxQueries: 30,
			MaxElapsed: time.Minute,
		},
		DomainShareCap: 0.6,
	}
}

func papers(ids ...string) []types.Paper {
	var ps []types.Paper
	for _, id := range ids {
		ps = append(ps, types.Paper{ID: id, Title: "Paper " + id, Domains: []string{"cs.CV"}})
	}
	return ps
}

func TestExecuteReturnsFreshPapers(t *testing.T) {
	searcher := &mockSearcher{papers: papers("p1", "p2")}
	var buf bytes.Buffer
	c := NewController(searcher, testCfg(), &buf)

	fresh := c.Execute(context.Background(), corpus.Query{Text: "test"})
	if len(fresh) != 2 {
		t.Fatalf("len(fresh) = %d, want 2", len(fresh))
	}
	if c.PapersFetched() != 2 || c.QueriesExecuted() != 1 {
		t.Errorf("papers = %d queries = %d, want 2 and 1", c.PapersFetched(), c.QueriesExecuted())
	}

	// Same papers again: nothing new.
	fresh = c.Execute(context.Background(), corpus.Query{Text: "test again"})
	if len(fresh) != 0 {
		t.Errorf("len(fresh) = %d, want 0 on repeat", len(fresh))
	}
	if !c.Seen("p1") {
		t.Error("p1 should be marked seen")
	}
}

func TestExecuteEmptyQuery(t *testing.T) {
	searcher := &mockSearcher{papers: papers("p1")}
	c := NewController(searcher, testCfg(), nil)

	if got := c.Execute(context.Background(), corpus.Query{}); got != nil {
		t.Errorf("empty query returned papers: %v", got)
	}
	if searcher.calls != 0 {
		t.Error("empty query should not reach the searcher")
	}
}

func TestMarkSeedCountsAgainstBudget(t *testing.T) {
	cfg := testCfg()
	cfg.MaxPapers = 1
	c := NewController(&mockSearcher{}, cfg, nil)

	c.MarkSeed(types.Paper{ID: "seed"})
	if !c.BudgetExhausted() {
		t.Error("budget should be exhausted with MaxPapers 1 after seed")
	}
}

func TestPaperBudgetTruncatesResults(t *testing.T) {
	cfg := testCfg()
	cfg.MaxPapers = 3
	searcher := &mockSearcher{papers: papers("p1", "p2", "p3", "p4", "p5")}
	c := NewController(searcher, cfg, nil)

	c.MarkSeed(types.Paper{ID: "seed"})
	fresh := c.Execute(context.Background(), corpus.Query{Text: "test"})
	if len(fresh) != 2 {
		t.Errorf("len(fresh) = %d, want 2 (seed plus 2 = MaxPapers)", len(fresh))
	}
	if !c.BudgetExhausted() {
		t.Error("budget should be exhausted at MaxPapers")
	}
}

func TestQueryBudget(t *testing.T) {
	cfg := testCfg()
	cfg.MaxQueries = 2
	searcher := &mockSearcher{}
	c := NewController(searcher, cfg, nil)

	for i := 0; i < 5; i++ {
		c.Execute(context.Background(), corpus.Query{Text: fmt.Sprintf("q%d", i)})
	}
	if c.QueriesExecuted() != 2 {
		t.Errorf("QueriesExecuted = %d, want 2", c.QueriesExecuted())
	}
	if searcher.calls != 2 {
		t.Errorf("searcher calls = %d, want 2", searcher.calls)
	}
}

func TestElapsedBudget(t *testing.T) {
	cfg := testCfg()
	cfg.MaxElapsed = time.Nanosecond
	c := NewController(&mockSearcher{}, cfg, nil)

	time.Sleep(time.Millisecond)
	if !c.BudgetExhausted() {
		t.Error("budget should be exhausted after MaxElapsed")
	}
}

func TestFailingQuerySkippedAfterRetries(t *testing.T) {
	oldBase := retryBackoffBase
	retryBackoffBase = time.Millisecond
	defer func() { retryBackoffBase = oldBase }()

	searcher := &mockSearcher{err: fmt.Errorf("provider down")}
	var buf bytes.Buffer
	c := NewController(searcher, testCfg(), &buf)

	fresh := c.Execute(context.Background(), corpus.Query{Text: "doomed"})
	if fresh != nil {
		t.Errorf("failing query returned papers: %v", fresh)
	}
	if searcher.calls != queryRetries+1 {
		t.Errorf("searcher calls = %d, want %d", searcher.calls, queryRetries+1)
	}
	if c.QueriesExecuted() != 0 {
		t.Errorf("QueriesExecuted = %d, want 0", c.QueriesExecuted())
	}

	var skipped bool
	for _, ev := range c.Events() {
		if ev.Kind == types.EventQuerySkipped && ev.Err != "" {
			skipped = true
		}
	}
	if !skipped {
		t.Error("missing query_skipped event with failure reason")
	}
	if !strings.Contains(buf.String(), "skipped query") {
		t.Error("progress output should mention the skip")
	}
}

func TestQueryRecoversWithinRetries(t *testing.T) {
	oldBase := retryBackoffBase
	retryBackoffBase = time.Millisecond
	defer func() { retryBackoffBase = oldBase }()

	searcher := &mockSearcher{failN: 2, papers: papers("p1")}
	c := NewController(searcher, testCfg(), nil)

	fresh := c.Execute(context.Background(), corpus.Query{Text: "flaky"})
	if len(fresh) != 1 {
		t.Errorf("len(fresh) = %d, want 1 after recovery", len(fresh))
	}
	if c.QueriesExecuted() != 1 {
		t.Errorf("QueriesExecuted = %d, want 1", c.QueriesExecuted())
	}
}

func TestDomainShareCap(t *testing.T) {
	searcher := &mockSearcher{}
	c := NewController(searcher, testCfg(), nil)

	// Saturate one domain past the floor.
	for i := 0; i < 6; i++ {
		c.Execute(context.Background(), corpus.Query{Text: fmt.Sprintf("q%d", i), Domain: "cs.CV"})
	}
	executedBefore := c.QueriesExecuted()

	c.Execute(context.Background(), corpus.Query{Text: "one more", Domain: "cs.CV"})
	if c.QueriesExecuted() != executedBefore {
		t.Error("over-cap domain query should be skipped")
	}

	// Another domain still goes through.
	c.Execute(context.Background(), corpus.Query{Text: "other", Domain: "cs.CL"})
	if c.QueriesExecuted() != executedBefore+1 {
		t.Error("other domains should not be blocked by the cap")
	}
}

func TestDomainCapNotEnforcedEarly(t *testing.T) {
	searcher := &mockSearcher{}
	c := NewController(searcher, testCfg(), nil)

	c.Execute(context.Background(), corpus.Query{Text: "first", Domain: "cs.CV"})
	if c.QueriesExecuted() != 1 {
		t.Error("cap must not block the first query of a run")
	}
}
