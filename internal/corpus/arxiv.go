// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/gap-engine/internal/httputil"
	"github.com/pdiddy/gap-engine/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivProvider queries the arXiv API.
type ArxivProvider struct {
	Client *http.Client
}

// Name returns the provider identifier.
func (p *ArxivProvider) Name() string { return "arxiv" }

// Search queries the arXiv API and returns normalized papers.
func (p *ArxivProvider) Search(ctx context.Context, query Query, cfg types.CorpusConfig) ([]types.Paper, error) {
	q := buildArxivQuery(query)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	maxResults := cfg.MaxResultsPerQuery
	if maxResults <= 0 {
		maxResults = 5
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, q, maxResults)

	feed, err := p.getFeed(ctx, reqURL, cfg)
	if err != nil {
		return nil, err
	}
	return feedToPapers(feed), nil
}

// FetchByID resolves a single arXiv paper via the id_list parameter.
// Accepts bare arXiv IDs and abs/ URLs.
func (p *ArxivProvider) FetchByID(ctx context.Context, id string, cfg types.CorpusConfig) (types.Paper, error) {
	arxivID := id
	if strings.Contains(id, "/abs/") {
		arxivID = extractArxivID(id)
	}
	if !looksLikeArxivID(arxivID) {
		return types.Paper{}, &NotFoundError{ID: id}
	}

	reqURL := fmt.Sprintf("%s?id_list=%s&max_results=1", arxivAPIBase, url.QueryEscape(arxivID))

	feed, err := p.getFeed(ctx, reqURL, cfg)
	if err != nil {
		return types.Paper{}, err
	}

	papers := feedToPapers(feed)
	if len(papers) == 0 {
		return types.Paper{}, &NotFoundError{ID: id}
	}
	return papers[0], nil
}

func (p *ArxivProvider) getFeed(ctx context.Context, reqURL string, cfg types.CorpusConfig) (*arxivFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return &feed, nil
}

func feedToPapers(feed *arxivFeed) []types.Paper {
	total := len(feed.Entries)
	var papers []types.Paper
	for i, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		if arxivID == "" {
			continue
		}

		paper := types.Paper{
			ID:       arxivID,
			Title:    strings.TrimSpace(entry.Title),
			Abstract: strings.TrimSpace(entry.Summary),
			Source:   "arxiv",
			URL:      "https://arxiv.org/abs/" + arxivID,
		}

		for _, a := range entry.Authors {
			paper.Authors = append(paper.Authors, strings.TrimSpace(a.Name))
		}
		for _, c := range entry.Categories {
			if c.Term != "" {
				paper.Domains = append(paper.Domains, c.Term)
			}
		}

		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			paper.Date = t
		}

		// Position-based relevance score.
		if total > 1 {
			paper.RelevanceScore = 1.0 - float64(i)/float64(total-1)*0.9
		} else {
			paper.RelevanceScore = 1.0
		}

		papers = append(papers, paper)
	}
	return papers
}

// buildArxivQuery constructs the search_query parameter. Domain filters
// become an arXiv category clause.
func buildArxivQuery(q Query) string {
	var parts []string

	if q.Text != "" {
		terms := strings.Fields(q.Text)
		parts = append(parts, "all:"+strings.Join(terms, "+"))
	}
	if q.Domain != "" {
		terms := strings.Fields(q.Domain)
		parts = append(parts, "cat:"+strings.Join(terms, "+"))
	}

	return strings.Join(parts, "+AND+")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// looksLikeArxivID returns true for modern arXiv IDs like "2301.07041".
func looksLikeArxivID(s string) bool {
	if len(s) < 9 {
		return false
	}
	return s[4] == '.' && s[0] >= '0' && s[0] <= '9'
}
