// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/gap-engine/internal/httputil"
	"github.com/pdiddy/gap-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,externalIds,year,publicationDate,fieldsOfStudy"

// SemanticScholarProvider queries the Semantic Scholar API.
type SemanticScholarProvider struct {
	Client *http.Client
	APIKey string
}

// Name returns the provider identifier.
func (p *SemanticScholarProvider) Name() string { return "semantic_scholar" }

// Search queries the Semantic Scholar API and returns normalized papers.
func (p *SemanticScholarProvider) Search(ctx context.Context, query Query, cfg types.CorpusConfig) ([]types.Paper, error) {
	q := strings.TrimSpace(query.Text)
	if q == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}

	maxResults := cfg.MaxResultsPerQuery
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{
		"query":  {q},
		"limit":  {fmt.Sprintf("%d", maxResults)},
		"fields": {semanticFields},
	}

	reqURL := semanticAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if p.APIKey != "" {
		req.Header.Set("x-api-key", p.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	total := len(sr.Data)
	var papers []types.Paper
	for i, sp := range sr.Data {
		paper := types.Paper{
			Title:    sp.Title,
			Abstract: sp.Abstract,
			Domains:  sp.FieldsOfStudy,
			Source:   "semantic_scholar",
		}
		if query.Domain != "" && len(paper.Domains) == 0 {
			paper.Domains = []string{query.Domain}
		}

		for _, a := range sp.Authors {
			paper.Authors = append(paper.Authors, a.Name)
		}

		if sp.PublicationDate != "" {
			if t, parseErr := time.Parse("2006-01-02", sp.PublicationDate); parseErr == nil {
				paper.Date = t
			}
		} else if sp.Year > 0 {
			paper.Date = time.Date(sp.Year, 1, 1, 0, 0, 0, 0, time.UTC)
		}

		// Prefer arXiv ID, then DOI, then the Semantic Scholar paper ID,
		// so duplicates line up with the other providers.
		if sp.ExternalIDs.ArXiv != "" {
			paper.ID = sp.ExternalIDs.ArXiv
			paper.URL = "https://arxiv.org/abs/" + sp.ExternalIDs.ArXiv
		} else if sp.ExternalIDs.DOI != "" {
			paper.ID = sp.ExternalIDs.DOI
			paper.URL = "https://doi.org/" + sp.ExternalIDs.DOI
		} else {
			paper.ID = sp.PaperID
			paper.URL = "https://www.semanticscholar.org/paper/" + sp.PaperID
		}

		// Position-based relevance score.
		if total > 1 {
			paper.RelevanceScore = 1.0 - float64(i)/float64(total-1)*0.9
		} else {
			paper.RelevanceScore = 1.0
		}

		papers = append(papers, paper)
	}
	return papers, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string              `json:"paperId"`
	Title           string              `json:"title"`
	Abstract        string              `json:"abstract"`
	Year            int                 `json:"year"`
	PublicationDate string              `json:"publicationDate"`
	FieldsOfStudy   []string            `json:"fieldsOfStudy"`
	Authors         []semanticAuthor    `json:"authors"`
	ExternalIDs     semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	CorpusID int    `json:"CorpusId"`
}
