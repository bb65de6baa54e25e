package corpus

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleOpenAlexJSON = `{
  "meta": {"count": 2, "per_page": 5, "page": 1},
  "results": [
    {
      "id": "https://openalex.org/W2741809807",
      "title": "Deep Residual Learning",
      "doi": "https://doi.org/10.1109/CVPR.2016.90",
      "publication_date": "2016-06-27",
      "publication_year": 2016,
      "authorships": [
        {"author": {"id": "https://openalex.org/A1", "display_name": "Kaiming He"}}
      ],
      "concepts": [
        {"display_name": "Computer Science", "score": 0.9},
        {"display_name": "Artificial Intelligence", "score": 0.8}
      ],
      "abstract_inverted_index": {"Deeper": [0], "networks": [1], "are": [2], "harder": [3]}
    },
    {
      "id": "https://openalex.org/W99",
      "title": "No DOI Paper",
      "publication_year": 2020,
      "authorships": [],
      "concepts": []
    }
  ]
}`

func TestOpenAlexProviderSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got == "" {
			t.Error("search parameter missing")
		}
		if got := r.URL.Query().Get("mailto"); got != "test@example.com" {
			t.Errorf("mailto = %q, want test@example.com", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleOpenAlexJSON)
	}))
	defer ts.Close()

	old := openAlexSearchBase
	openAlexSearchBase = ts.URL
	defer func() { openAlexSearchBase = old }()

	p := &OpenAlexProvider{Client: ts.Client(), Email: "test@example.com"}
	papers, err := p.Search(context.Background(), Query{Text: "residual learning"}, testCfg())
	if err != nil {
		t.Fatalf("OpenAlexProvider.Search: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}

	first := papers[0]
	if first.ID != "10.1109/CVPR.2016.90" {
		t.Errorf("ID = %q, want bare DOI", first.ID)
	}
	if first.Abstract != "Deeper networks are harder" {
		t.Errorf("Abstract = %q, inverted index not reconstructed", first.Abstract)
	}
	if len(first.Domains) != 2 || first.Domains[0] != "Computer Science" {
		t.Errorf("Domains = %v, want concepts mapped", first.Domains)
	}
	if len(first.Authors) != 1 || first.Authors[0] != "Kaiming He" {
		t.Errorf("Authors = %v", first.Authors)
	}

	// Falls back to the OpenAlex work ID when no DOI exists.
	if papers[1].ID != "https://openalex.org/W99" {
		t.Errorf("fallback ID = %q", papers[1].ID)
	}
}

func TestOpenAlexProviderFetchByID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
  "id": "https://openalex.org/W2741809807",
  "title": "Deep Residual Learning",
  "doi": "https://doi.org/10.1109/CVPR.2016.90",
  "publication_date": "2016-06-27"
}`)
	}))
	defer ts.Close()

	old := openAlexSearchBase
	openAlexSearchBase = ts.URL
	defer func() { openAlexSearchBase = old }()

	p := &OpenAlexProvider{Client: ts.Client()}
	paper, err := p.FetchByID(context.Background(), "10.1109/CVPR.2016.90", testCfg())
	if err != nil {
		t.Fatalf("FetchByID: %v", err)
	}
	if paper.ID != "10.1109/CVPR.2016.90" {
		t.Errorf("ID = %q", paper.ID)
	}
	if paper.RelevanceScore != 1.0 {
		t.Errorf("RelevanceScore = %f, want 1.0", paper.RelevanceScore)
	}
}

func TestOpenAlexProviderFetchByIDNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	old := openAlexSearchBase
	openAlexSearchBase = ts.URL
	defer func() { openAlexSearchBase = old }()

	p := &OpenAlexProvider{Client: ts.Client()}
	_, err := p.FetchByID(context.Background(), "10.9999/missing", testCfg())
	if _, ok := err.(*NotFoundError); !ok {
		t.Errorf("expected *NotFoundError, got %v", err)
	}
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{"nil index", nil, ""},
		{"single word", map[string][]int{"Hello": {0}}, "Hello"},
		{
			"repeated word",
			map[string][]int{"the": {0, 3}, "cat": {1}, "sat": {2}, "mat": {4}},
			"the cat sat the mat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reconstructAbstract(tt.index); got != tt.want {
				t.Errorf("reconstructAbstract() = %q, want %q", got, tt.want)
			}
		})
	}
}
