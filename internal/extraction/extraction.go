// Package extraction turns paper text into structured gap-analysis data
// via a Generative AI API. Backends (Gemini, OpenAI) implement the
// Backend interface per the Strategy pattern; the adapter renders
// prompts, retries transient failures, and validates responses strictly
// before handing them to callers.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// PaperAnalysis is the structured reading of one paper.
type PaperAnalysis struct {
	KeyFindings []string `json:"key_findings"`
	Methods     []string `json:"methods"`
	Limitations []string `json:"limitations"`
	FutureWork  []string `json:"future_work"`
}

// GapCheck is the outcome of checking one gap candidate against one paper.
// Both confidences are on a 0-100 scale.
type GapCheck struct {
	Verdict                 string  `json:"verdict"`
	EliminationConfidence   float64 `json:"elimination_confidence"`
	ReinforcementConfidence float64 `json:"reinforcement_confidence"`
	Reason                  string  `json:"reason"`
}

// Check verdicts.
const (
	VerdictSolved             = "solved"
	VerdictPartiallyAddressed = "partially_addressed"
	VerdictNotAddressed       = "not_addressed"
)

// Analyzer is the surface the engine depends on. Tests supply a mock.
type Analyzer interface {
	// AnalyzeForGaps extracts findings, limitations, and future work
	// from a paper.
	AnalyzeForGaps(ctx context.Context, paper types.Paper) (PaperAnalysis, error)

	// CheckGapAgainstPaper judges whether the paper solves or reinforces
	// the gap candidate.
	CheckGapAgainstPaper(ctx context.Context, gap types.GapCandidate, paper types.Paper) (GapCheck, error)

	// ValidationQueries proposes solution-seeking corpus queries for the
	// candidate.
	ValidationQueries(ctx context.Context, gap types.GapCandidate) ([]string, error)
}

// Backend abstracts the Generative AI API so tests can supply a mock.
// Complete sends one prompt and returns the raw model text.
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Adapter implements Analyzer over a Backend.
type Adapter struct {
	backend Backend
	cfg     types.ExtractionConfig
}

// NewAdapter wraps the given backend.
func NewAdapter(backend Backend, cfg types.ExtractionConfig) *Adapter {
	return &Adapter{backend: backend, cfg: cfg}
}

// FromConfig builds the adapter for the configured provider.
func FromConfig(cfg types.ExtractionConfig) (*Adapter, error) {
	switch cfg.Provider {
	case "", "gemini":
		return NewAdapter(&GeminiBackend{APIKey: cfg.APIKey, Model: cfg.Model}, cfg), nil
	case "openai":
		return NewAdapter(NewOpenAIBackend(cfg.APIKey, cfg.Model), cfg), nil
	default:
		return nil, fmt.Errorf("unknown extraction provider %q", cfg.Provider)
	}
}

// AnalyzeForGaps extracts the paper's findings, limitations, and future
// work directions.
func (a *Adapter) AnalyzeForGaps(ctx context.Context, paper types.Paper) (PaperAnalysis, error) {
	prompt, err := renderAnalysisPrompt(paper)
	if err != nil {
		return PaperAnalysis{}, fmt.Errorf("rendering analysis prompt: %w", err)
	}

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		return PaperAnalysis{}, err
	}

	var analysis PaperAnalysis
	if err := json.Unmarshal([]byte(stripFences(raw)), &analysis); err != nil {
		return PaperAnalysis{}, &MalformedResponseError{Reason: fmt.Sprintf("analysis response is not valid JSON: %v", err)}
	}
	return analysis, nil
}

// CheckGapAgainstPaper judges whether the paper closes the gap. The
// response is validated strictly: an unknown verdict or an out-of-range
// confidence is a malformed response, not a provider failure.
func (a *Adapter) CheckGapAgainstPaper(ctx context.Context, gap types.GapCandidate, paper types.Paper) (GapCheck, error) {
	prompt, err := renderCheckPrompt(gap, paper)
	if err != nil {
		return GapCheck{}, fmt.Errorf("rendering check prompt: %w", err)
	}

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		return GapCheck{}, err
	}

	var check GapCheck
	if err := json.Unmarshal([]byte(stripFences(raw)), &check); err != nil {
		return GapCheck{}, &MalformedResponseError{Reason: fmt.Sprintf("check response is not valid JSON: %v", err)}
	}
	if err := validateCheck(check); err != nil {
		return GapCheck{}, err
	}
	return check, nil
}

// ValidationQueries proposes solution-seeking corpus queries for the gap.
func (a *Adapter) ValidationQueries(ctx context.Context, gap types.GapCandidate) ([]string, error) {
	prompt, err := renderQueriesPrompt(gap)
	if err != nil {
		return nil, fmt.Errorf("rendering queries prompt: %w", err)
	}

	raw, err := a.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("queries response is not valid JSON: %v", err)}
	}

	var queries []string
	for _, q := range resp.Queries {
		if strings.TrimSpace(q) != "" {
			queries = append(queries, strings.TrimSpace(q))
		}
	}
	if len(queries) == 0 {
		return nil, &MalformedResponseError{Reason: "queries response contains no queries"}
	}
	return queries, nil
}

func (a *Adapter) complete(ctx context.Context, prompt string) (string, error) {
	maxRetries := a.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return callWithRetry(ctx, a.backend, prompt, maxRetries)
}

func validateCheck(check GapCheck) error {
	switch check.Verdict {
	case VerdictSolved, VerdictPartiallyAddressed, VerdictNotAddressed:
	default:
		return &MalformedResponseError{Reason: fmt.Sprintf("invalid verdict %q", check.Verdict)}
	}
	if check.EliminationConfidence < 0 || check.EliminationConfidence > 100 {
		return &MalformedResponseError{Reason: fmt.Sprintf("elimination confidence %f out of range [0,100]", check.EliminationConfidence)}
	}
	if check.ReinforcementConfidence < 0 || check.ReinforcementConfidence > 100 {
		return &MalformedResponseError{Reason: fmt.Sprintf("reinforcement confidence %f out of range [0,100]", check.ReinforcementConfidence)}
	}
	return nil
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the backend with exponential backoff. Transport
// failures are wrapped in *ProviderError after the last attempt.
func callWithRetry(ctx context.Context, backend Backend, prompt string, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		raw, err := backend.Complete(ctx, prompt)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return "", &ProviderError{
		Provider: backend.Name(),
		Err:      fmt.Errorf("after %d retries: %w", maxRetries, lastErr),
	}
}

// stripFences removes a Markdown code fence around a JSON payload. Models
// sometimes wrap JSON output despite being told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
