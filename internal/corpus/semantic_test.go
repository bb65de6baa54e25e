package corpus

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleSemanticJSON = `{
  "total": 2,
  "offset": 0,
  "data": [
    {
      "paperId": "abc123",
      "title": "Attention Is All You Need",
      "abstract": "We propose the Transformer.",
      "year": 2017,
      "publicationDate": "2017-06-12",
      "fieldsOfStudy": ["Computer Science"],
      "authors": [{"authorId": "a1", "name": "Ashish Vaswani"}],
      "externalIds": {"ArXiv": "1706.03762", "DOI": "10.48550/arXiv.1706.03762"}
    },
    {
      "paperId": "def456",
      "title": "Some Journal Paper",
      "abstract": "No arXiv version exists.",
      "year": 2019,
      "authors": [],
      "externalIds": {"DOI": "10.1038/s41586-019-1"}
    }
  ]
}`

func TestSemanticScholarProviderSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "attention" {
			t.Errorf("query = %q, want attention", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleSemanticJSON)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	p := &SemanticScholarProvider{Client: ts.Client()}
	papers, err := p.Search(context.Background(), Query{Text: "attention"}, testCfg())
	if err != nil {
		t.Fatalf("SemanticScholarProvider.Search: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}

	// arXiv ID preferred over DOI so cross-provider dedup lines up.
	first := papers[0]
	if first.ID != "1706.03762" {
		t.Errorf("ID = %q, want arXiv ID", first.ID)
	}
	if len(first.Domains) != 1 || first.Domains[0] != "Computer Science" {
		t.Errorf("Domains = %v, want fieldsOfStudy mapped", first.Domains)
	}

	// DOI fallback when no arXiv ID.
	if papers[1].ID != "10.1038/s41586-019-1" {
		t.Errorf("fallback ID = %q, want DOI", papers[1].ID)
	}
}

func TestSemanticScholarProviderAPIKeyHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "secret-key" {
			t.Errorf("x-api-key = %q, want secret-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total": 0, "offset": 0, "data": []}`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	p := &SemanticScholarProvider{Client: ts.Client(), APIKey: "secret-key"}
	if _, err := p.Search(context.Background(), Query{Text: "test"}, testCfg()); err != nil {
		t.Fatalf("Search: %v", err)
	}
}

func TestSemanticScholarProviderEmptyQuery(t *testing.T) {
	p := &SemanticScholarProvider{Client: http.DefaultClient}
	if _, err := p.Search(context.Background(), Query{}, testCfg()); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestSemanticScholarProviderDomainFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total": 1, "offset": 0, "data": [
  {"paperId": "p1", "title": "Untagged Paper", "externalIds": {}}
]}`)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	p := &SemanticScholarProvider{Client: ts.Client()}
	papers, err := p.Search(context.Background(), Query{Text: "test", Domain: "robotics"}, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("len(papers) = %d, want 1", len(papers))
	}
	if len(papers[0].Domains) != 1 || papers[0].Domains[0] != "robotics" {
		t.Errorf("Domains = %v, want query domain fallback", papers[0].Domains)
	}
}
