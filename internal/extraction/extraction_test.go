package extraction

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	name     string
	response string
	err      error
	prompts  []string
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Complete(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

// failNTimesBackend fails the first n calls, then succeeds.
type failNTimesBackend struct {
	n        int
	calls    int
	response string
}

func (f *failNTimesBackend) Name() string { return "flaky" }

func (f *failNTimesBackend) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.calls <= f.n {
		return "", fmt.Errorf("transient failure %d", f.calls)
	}
	return f.response, nil
}

func testCfg() types.ExtractionConfig {
	return types.ExtractionConfig{
		AIConfig: types.AIConfig{Model: "test-model", MaxRetries: 3},
		Provider: "gemini",
	}
}

func testPaper() types.Paper {
	return types.Paper{
		ID:       "2301.07041",
		Title:    "Robust Perception in Fog",
		Abstract: "We study object detection under heavy fog.",
		Authors:  []string{"A. Author"},
		Domains:  []string{"cs.CV"},
	}
}

func testGap() types.GapCandidate {
	return types.GapCandidate{
		ID:          "gap-1",
		Title:       "Fog generalization",
		Description: "Object detection fails in foggy conditions with under 40% accuracy",
		Category:    "Limitation",
	}
}

// --- AnalyzeForGaps ---

func TestAnalyzeForGaps(t *testing.T) {
	backend := &mockBackend{
		name: "mock",
		response: `{"key_findings": ["94.2% mAP on KITTI"],
			"methods": ["transformer detector"],
			"limitations": ["fails on novel classes with 34% accuracy"],
			"future_work": ["few-shot adaptation for novel classes"]}`,
	}
	a := NewAdapter(backend, testCfg())

	analysis, err := a.AnalyzeForGaps(context.Background(), testPaper())
	if err != nil {
		t.Fatalf("AnalyzeForGaps: %v", err)
	}
	if len(analysis.Limitations) != 1 || len(analysis.FutureWork) != 1 {
		t.Errorf("analysis = %+v, want 1 limitation and 1 future work item", analysis)
	}
	if len(backend.prompts) != 1 || !strings.Contains(backend.prompts[0], "Robust Perception in Fog") {
		t.Error("prompt should contain the paper title")
	}
}

func TestAnalyzeForGapsMalformedJSON(t *testing.T) {
	backend := &mockBackend{name: "mock", response: "not json at all"}
	a := NewAdapter(backend, testCfg())

	_, err := a.AnalyzeForGaps(context.Background(), testPaper())
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Errorf("expected *MalformedResponseError, got %v", err)
	}
}

func TestAnalyzeForGapsStripsCodeFence(t *testing.T) {
	backend := &mockBackend{
		name: "mock",
		response: "```json\n{\"key_findings\": [], \"methods\": [], " +
			"\"limitations\": [\"a specific limitation\"], \"future_work\": []}\n```",
	}
	a := NewAdapter(backend, testCfg())

	analysis, err := a.AnalyzeForGaps(context.Background(), testPaper())
	if err != nil {
		t.Fatalf("AnalyzeForGaps: %v", err)
	}
	if len(analysis.Limitations) != 1 {
		t.Errorf("Limitations = %v, fence not stripped", analysis.Limitations)
	}
}

// --- CheckGapAgainstPaper ---

func TestCheckGapAgainstPaper(t *testing.T) {
	backend := &mockBackend{
		name: "mock",
		response: `{"verdict": "solved", "elimination_confidence": 92,
			"reinforcement_confidence": 5, "reason": "89% accuracy in fog reported"}`,
	}
	a := NewAdapter(backend, testCfg())

	check, err := a.CheckGapAgainstPaper(context.Background(), testGap(), testPaper())
	if err != nil {
		t.Fatalf("CheckGapAgainstPaper: %v", err)
	}
	if check.Verdict != VerdictSolved {
		t.Errorf("Verdict = %q, want solved", check.Verdict)
	}
	if check.EliminationConfidence != 92 {
		t.Errorf("EliminationConfidence = %f, want 92", check.EliminationConfidence)
	}
}

func TestCheckGapValidation(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"unknown verdict", `{"verdict": "maybe", "elimination_confidence": 50, "reinforcement_confidence": 50, "reason": "r"}`},
		{"elimination out of range", `{"verdict": "solved", "elimination_confidence": 150, "reinforcement_confidence": 50, "reason": "r"}`},
		{"negative reinforcement", `{"verdict": "not_addressed", "elimination_confidence": 0, "reinforcement_confidence": -1, "reason": "r"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(&mockBackend{name: "mock", response: tt.response}, testCfg())
			_, err := a.CheckGapAgainstPaper(context.Background(), testGap(), testPaper())
			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Errorf("expected *MalformedResponseError, got %v", err)
			}
		})
	}
}

// --- ValidationQueries ---

func TestValidationQueries(t *testing.T) {
	backend := &mockBackend{
		name:     "mock",
		response: `{"queries": ["solution to fog detection", "  ", "overcoming fog in perception"]}`,
	}
	a := NewAdapter(backend, testCfg())

	queries, err := a.ValidationQueries(context.Background(), testGap())
	if err != nil {
		t.Fatalf("ValidationQueries: %v", err)
	}
	if len(queries) != 2 {
		t.Errorf("len(queries) = %d, want 2 (blank dropped)", len(queries))
	}
}

func TestValidationQueriesEmpty(t *testing.T) {
	a := NewAdapter(&mockBackend{name: "mock", response: `{"queries": []}`}, testCfg())
	_, err := a.ValidationQueries(context.Background(), testGap())
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Errorf("expected *MalformedResponseError, got %v", err)
	}
}

// --- retry ---

func TestCallWithRetrySucceedsAfterFailures(t *testing.T) {
	oldBase := backoffBase
	backoffBase = time.Millisecond
	defer func() { backoffBase = oldBase }()

	backend := &failNTimesBackend{n: 2, response: "ok"}
	raw, err := callWithRetry(context.Background(), backend, "prompt", 3)
	if err != nil {
		t.Fatalf("callWithRetry: %v", err)
	}
	if raw != "ok" {
		t.Errorf("raw = %q, want ok", raw)
	}
	if backend.calls != 3 {
		t.Errorf("calls = %d, want 3", backend.calls)
	}
}

func TestCallWithRetryExhaustsRetries(t *testing.T) {
	oldBase := backoffBase
	backoffBase = time.Millisecond
	defer func() { backoffBase = oldBase }()

	backend := &failNTimesBackend{n: 10}
	_, err := callWithRetry(context.Background(), backend, "prompt", 2)
	var provider *ProviderError
	if !errors.As(err, &provider) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if provider.Provider != "flaky" {
		t.Errorf("Provider = %q, want flaky", provider.Provider)
	}
	if backend.calls != 3 {
		t.Errorf("calls = %d, want 3", backend.calls)
	}
}

func TestCallWithRetryContextCancelled(t *testing.T) {
	oldBase := backoffBase
	backoffBase = time.Hour
	defer func() { backoffBase = oldBase }()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	backend := &failNTimesBackend{n: 10}
	_, err := callWithRetry(ctx, backend, "prompt", 3)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// --- stripFences ---

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// --- FromConfig ---

func TestFromConfig(t *testing.T) {
	tests := []struct {
		provider string
		wantErr  bool
		wantName string
	}{
		{"gemini", false, "gemini"},
		{"", false, "gemini"},
		{"openai", false, "openai"},
		{"mystery", true, ""},
	}
	for _, tt := range tests {
		cfg := testCfg()
		cfg.Provider = tt.provider
		a, err := FromConfig(cfg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("FromConfig(%q): expected error", tt.provider)
			}
			continue
		}
		if err != nil {
			t.Errorf("FromConfig(%q): %v", tt.provider, err)
			continue
		}
		if a.backend.Name() != tt.wantName {
			t.Errorf("FromConfig(%q) backend = %q, want %q", tt.provider, a.backend.Name(), tt.wantName)
		}
	}
}

// --- Gemini backend ---

func TestGeminiBackendComplete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("x-goog-api-key = %q, want test-key", got)
		}
		if !strings.Contains(r.URL.Path, "test-model:generateContent") {
			t.Errorf("path = %q, want model endpoint", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates": [{"content": {"parts": [{"text": "{\"queries\": [\"q\"]}"}]}}]}`)
	}))
	defer ts.Close()

	old := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = old }()

	b := &GeminiBackend{APIKey: "test-key", Model: "test-model", Client: ts.Client()}
	raw, err := b.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !strings.Contains(raw, "queries") {
		t.Errorf("raw = %q", raw)
	}
}

func TestGeminiBackendHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": "bad key"}`)
	}))
	defer ts.Close()

	old := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = old }()

	b := &GeminiBackend{APIKey: "bad", Model: "test-model", Client: ts.Client()}
	_, err := b.Complete(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("expected HTTP 403 error, got %v", err)
	}
}

func TestGeminiBackendEmptyContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	defer ts.Close()

	old := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = old }()

	b := &GeminiBackend{Model: "test-model", Client: ts.Client()}
	_, err := b.Complete(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "empty content") {
		t.Errorf("expected empty content error, got %v", err)
	}
}
