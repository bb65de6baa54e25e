// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus retrieves papers from academic APIs behind a uniform
// adapter. Providers (arXiv, OpenAlex, Semantic Scholar) implement the
// Provider interface per the Strategy pattern; the adapter fans queries
// out, deduplicates results, and caches every fetched paper for the run's
// lifetime.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/time/rate"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// Query holds the search parameters for one corpus query.
type Query struct {
	// Text is the free-text query.
	Text string

	// Domain optionally narrows the query to one research domain.
	Domain string
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == "" && strings.TrimSpace(q.Domain) == ""
}

// Provider searches a single academic API.
type Provider interface {
	Name() string
	Search(ctx context.Context, query Query, cfg types.CorpusConfig) ([]types.Paper, error)
}

// Fetcher is implemented by providers that can resolve a single paper by
// its canonical identifier.
type Fetcher interface {
	FetchByID(ctx context.Context, id string, cfg types.CorpusConfig) (types.Paper, error)
}

// Adapter is the run-scoped corpus facade. It owns the result cache;
// papers are immutable once cached.
type Adapter struct {
	providers []Provider
	cfg       types.CorpusConfig
	limiters  map[string]*rate.Limiter

	mu    sync.RWMutex
	cache map[string]types.Paper
}

// ProvidersFromConfig builds the enabled providers for cfg. The returned
// slice preserves a stable order so dedup merges are deterministic.
func ProvidersFromConfig(cfg types.CorpusConfig) []Provider {
	client := &http.Client{Timeout: cfg.Timeout}

	var providers []Provider
	if cfg.EnableArxiv {
		providers = append(providers, &ArxivProvider{Client: client})
	}
	if cfg.EnableOpenAlex {
		providers = append(providers, &OpenAlexProvider{Client: client, Email: cfg.OpenAlexEmail})
	}
	if cfg.EnableSemanticScholar {
		providers = append(providers, &SemanticScholarProvider{Client: client, APIKey: cfg.SemanticScholarAPIKey})
	}
	return providers
}

// NewAdapter builds an adapter over the given providers. One rate limiter
// per provider paces outgoing queries.
func NewAdapter(providers []Provider, cfg types.CorpusConfig) *Adapter {
	qps := cfg.QueriesPerSecond
	if qps <= 0 {
		qps = 1.0
	}
	limiters := make(map[string]*rate.Limiter, len(providers))
	for _, p := range providers {
		limiters[p.Name()] = rate.NewLimiter(rate.Limit(qps), 1)
	}
	return &Adapter{
		providers: providers,
		cfg:       cfg,
		limiters:  limiters,
		cache:     make(map[string]types.Paper),
	}
}

// Search fans the query out to all providers concurrently, deduplicates
// and merges results, and caches every returned paper. A single provider
// failure degrades to partial results; Search fails only when every
// provider fails.
func (a *Adapter) Search(ctx context.Context, query Query) ([]types.Paper, error) {
	if query.IsEmpty() {
		return nil, fmt.Errorf("corpus query is empty")
	}
	if len(a.providers) == 0 {
		return nil, fmt.Errorf("no corpus providers configured")
	}

	type providerResult struct {
		papers []types.Paper
		err    error
		name   string
	}

	ch := make(chan providerResult, len(a.providers))
	var wg sync.WaitGroup

	for _, p := range a.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			if err := a.limiters[p.Name()].Wait(ctx); err != nil {
				ch <- providerResult{err: err, name: p.Name()}
				return
			}
			papers, err := p.Search(ctx, query, a.cfg)
			ch <- providerResult{papers: papers, err: err, name: p.Name()}
		}(p)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.Paper
	var errs []error
	for pr := range ch {
		if pr.err != nil {
			errs = append(errs, &RetrievalError{Provider: pr.name, Err: pr.err})
			continue
		}
		all = append(all, pr.papers...)
	}

	if len(all) == 0 && len(errs) == len(a.providers) {
		return nil, errs[0]
	}

	deduped := deduplicate(all)
	now := time.Now()
	for i := range deduped {
		deduped[i].FetchedAt = now
	}

	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].RelevanceScore > deduped[j].RelevanceScore
	})

	a.mu.Lock()
	for _, p := range deduped {
		if _, ok := a.cache[p.ID]; !ok {
			a.cache[p.ID] = p
		}
	}
	a.mu.Unlock()

	return deduped, nil
}

// Fetch returns the paper with the given identifier, consulting the run
// cache first and then any provider that supports direct lookup.
func (a *Adapter) Fetch(ctx context.Context, id string) (types.Paper, error) {
	a.mu.RLock()
	if p, ok := a.cache[id]; ok {
		a.mu.RUnlock()
		return p, nil
	}
	a.mu.RUnlock()

	for _, prov := range a.providers {
		f, ok := prov.(Fetcher)
		if !ok {
			continue
		}
		if err := a.limiters[prov.Name()].Wait(ctx); err != nil {
			return types.Paper{}, err
		}
		paper, err := f.FetchByID(ctx, id, a.cfg)
		if err != nil {
			var nf *NotFoundError
			if errors.As(err, &nf) {
				continue
			}
			return types.Paper{}, &RetrievalError{Provider: prov.Name(), Err: err}
		}
		paper.FetchedAt = time.Now()
		a.mu.Lock()
		a.cache[paper.ID] = paper
		a.mu.Unlock()
		return paper, nil
	}

	return types.Paper{}, &NotFoundError{ID: id}
}

// Cached returns the cached paper for id, if the run has fetched it.
func (a *Adapter) Cached(id string) (types.Paper, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.cache[id]
	return p, ok
}

// deduplicate merges papers that share an identifier or normalized title.
func deduplicate(papers []types.Paper) []types.Paper {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.Paper

	for _, p := range papers {
		key := ""
		if p.ID != "" {
			key = "id:" + p.ID
		}
		if idx, ok := seen[key]; key != "" && ok {
			mergeInto(&deduped[idx], p)
			continue
		}

		titleKey := "title:" + normalizeTitle(p.Title)
		if titleKey != "title:" {
			if idx, ok := seen[titleKey]; ok {
				mergeInto(&deduped[idx], p)
				continue
			}
		}

		idx := len(deduped)
		deduped = append(deduped, p)
		if key != "" {
			seen[key] = idx
		}
		if titleKey != "title:" {
			seen[titleKey] = idx
		}
	}
	return deduped
}

// mergeInto fills empty fields of dst from src and keeps the higher score.
func mergeInto(dst *types.Paper, src types.Paper) {
	if dst.Title == "" && src.Title != "" {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 && len(src.Authors) > 0 {
		dst.Authors = src.Authors
	}
	if dst.Abstract == "" && src.Abstract != "" {
		dst.Abstract = src.Abstract
	}
	if dst.Date.IsZero() && !src.Date.IsZero() {
		dst.Date = src.Date
	}
	if dst.URL == "" && src.URL != "" {
		dst.URL = src.URL
	}
	if src.RelevanceScore > dst.RelevanceScore {
		dst.RelevanceScore = src.RelevanceScore
	}
	for _, d := range src.Domains {
		if !containsString(dst.Domains, d) {
			dst.Domains = append(dst.Domains, d)
		}
	}
	if dst.Source != src.Source && !strings.Contains(dst.Source, src.Source) {
		dst.Source = dst.Source + "," + src.Source
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
