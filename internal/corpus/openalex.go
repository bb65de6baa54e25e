// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/gap-engine/internal/httputil"
	"github.com/pdiddy/gap-engine/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// OpenAlexProvider queries the OpenAlex API.
type OpenAlexProvider struct {
	Client *http.Client
	// Email is sent as mailto parameter for polite pool access.
	Email string
}

// Name returns the provider identifier.
func (p *OpenAlexProvider) Name() string { return "openalex" }

// Search queries the OpenAlex API and returns normalized papers.
func (p *OpenAlexProvider) Search(ctx context.Context, query Query, cfg types.CorpusConfig) ([]types.Paper, error) {
	searchText := strings.TrimSpace(query.Text + " " + query.Domain)
	if searchText == "" {
		return nil, fmt.Errorf("empty OpenAlex query")
	}

	maxResults := cfg.MaxResultsPerQuery
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{
		"search":   {searchText},
		"per_page": {fmt.Sprintf("%d", maxResults)},
		"page":     {"1"},
	}
	if p.Email != "" {
		params.Set("mailto", p.Email)
	}

	reqURL := openAlexSearchBase + "?" + params.Encode()

	var oar openAlexResponse
	if err := p.getJSON(ctx, reqURL, cfg, &oar); err != nil {
		return nil, err
	}

	total := len(oar.Results)
	var papers []types.Paper
	for i, work := range oar.Results {
		paper := workToPaper(work)
		if paper.ID == "" {
			continue
		}

		// Position-based relevance score. OpenAlex returns results
		// sorted by relevance by default.
		if total > 1 {
			paper.RelevanceScore = 1.0 - float64(i)/float64(total-1)*0.9
		} else {
			paper.RelevanceScore = 1.0
		}

		papers = append(papers, paper)
	}
	return papers, nil
}

// FetchByID resolves a single work by DOI or OpenAlex ID via /works/{id}.
func (p *OpenAlexProvider) FetchByID(ctx context.Context, id string, cfg types.CorpusConfig) (types.Paper, error) {
	lookup := strings.TrimSpace(id)
	if lookup == "" {
		return types.Paper{}, &NotFoundError{ID: id}
	}
	if strings.HasPrefix(lookup, "10.") {
		lookup = "https://doi.org/" + lookup
	}

	reqURL := openAlexSearchBase + "/" + url.PathEscape(lookup)
	if p.Email != "" {
		reqURL += "?mailto=" + url.QueryEscape(p.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.Paper{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return types.Paper{}, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return types.Paper{}, &NotFoundError{ID: id}
	}
	if resp.StatusCode != http.StatusOK {
		return types.Paper{}, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var work openAlexWork
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return types.Paper{}, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	paper := workToPaper(work)
	if paper.ID == "" {
		return types.Paper{}, &NotFoundError{ID: id}
	}
	paper.RelevanceScore = 1.0
	return paper, nil
}

func (p *OpenAlexProvider) getJSON(ctx context.Context, reqURL string, cfg types.CorpusConfig, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return nil
}

func workToPaper(work openAlexWork) types.Paper {
	paper := types.Paper{
		Title:    work.Title,
		Abstract: reconstructAbstract(work.AbstractInvertedIndex),
		Source:   "openalex",
	}

	for _, authorship := range work.Authorships {
		if authorship.Author.DisplayName != "" {
			paper.Authors = append(paper.Authors, authorship.Author.DisplayName)
		}
	}
	for _, c := range work.Concepts {
		if c.DisplayName != "" {
			paper.Domains = append(paper.Domains, c.DisplayName)
		}
	}

	if work.PublicationDate != "" {
		if t, parseErr := time.Parse("2006-01-02", work.PublicationDate); parseErr == nil {
			paper.Date = t
		}
	} else if work.PublicationYear > 0 {
		paper.Date = time.Date(work.PublicationYear, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	// Prefer DOI as identifier since OpenAlex is DOI-centric.
	// Strip the https://doi.org/ prefix to get the bare DOI.
	if work.DOI != "" {
		doi := strings.TrimPrefix(work.DOI, "https://doi.org/")
		paper.ID = doi
		paper.URL = work.DOI
	} else if work.ID != "" {
		paper.ID = work.ID
		paper.URL = work.ID
	}

	return paper
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to a list of positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	// Build position→word map.
	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationDate       string               `json:"publication_date"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	Concepts              []openAlexConcept    `json:"concepts"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexConcept struct {
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}
