// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "gap-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for components that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// CorpusConfig holds settings for the corpus adapter.
type CorpusConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResultsPerQuery caps results returned per provider query (default 5).
	MaxResultsPerQuery int `json:"max_results_per_query" yaml:"max_results_per_query"`

	// EnableArxiv controls whether the arXiv provider is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableOpenAlex controls whether the OpenAlex provider is used.
	EnableOpenAlex bool `json:"enable_openalex" yaml:"enable_openalex"`

	// EnableSemanticScholar controls whether the Semantic Scholar provider is used.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// OpenAlexEmail joins the OpenAlex polite pool when set.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// QueriesPerSecond rate-limits each provider (default 1.0).
	QueriesPerSecond float64 `json:"queries_per_second" yaml:"queries_per_second"`
}

// ExtractionConfig holds settings for the extraction adapter.
type ExtractionConfig struct {
	AIConfig `yaml:",inline"`

	// Provider selects the extraction backend: "gemini" or "openai".
	Provider string `json:"provider" yaml:"provider"`
}

// Budget bounds one frontier-expansion run. Crossing any ceiling ends
// expansion and triggers report assembly with whatever state exists.
type Budget struct {
	// MaxPapers caps the number of papers fetched, seed included (default 10).
	MaxPapers int `json:"max_papers" yaml:"max_papers"`

	// MaxQueries caps corpus queries issued (default 30).
	MaxQueries int `json:"max_queries" yaml:"max_queries"`

	// MaxElapsed caps wall-clock run time (default 10m).
	MaxElapsed time.Duration `json:"max_elapsed" yaml:"max_elapsed"`
}

// FrontierConfig holds settings for the frontier controller.
type FrontierConfig struct {
	Budget `yaml:",inline"`

	// DomainShareCap is the maximum fraction of executed queries any one
	// domain may consume (default 0.6).
	DomainShareCap float64 `json:"domain_share_cap" yaml:"domain_share_cap"`
}

// GapsConfig holds settings for the gap extractor.
type GapsConfig struct {
	// MinFragmentLength drops extracted statements shorter than this many
	// characters (default 20).
	MinFragmentLength int `json:"min_fragment_length" yaml:"min_fragment_length"`

	// DedupSimilarity is the normalized-title similarity above which two
	// candidates are merged (default 0.82).
	DedupSimilarity float64 `json:"dedup_similarity" yaml:"dedup_similarity"`
}

// ValidationConfig holds settings for the validation engine.
type ValidationConfig struct {
	// EliminationThreshold is the elimination confidence, 0-100, at or
	// above which a candidate is eliminated (default 85).
	EliminationThreshold float64 `json:"elimination_threshold" yaml:"elimination_threshold"`

	// ValidationThreshold is the confidence score, 0-100, a candidate must
	// reach to become validated (default 90).
	ValidationThreshold float64 `json:"validation_threshold" yaml:"validation_threshold"`

	// MinAttempts is the minimum corroboration count before a candidate
	// can validate (default 2).
	MinAttempts int `json:"min_attempts" yaml:"min_attempts"`

	// MaxChecks is the per-candidate check budget; exhausting it without
	// validating drops the candidate as inconclusive (default 6).
	MaxChecks int `json:"max_checks" yaml:"max_checks"`

	// WeightScale multiplies the reinforcement confidence when updating
	// the running score (default 1.0).
	WeightScale float64 `json:"weight_scale" yaml:"weight_scale"`

	// Concurrency caps in-flight checks per run (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// StoreConfig holds settings for the report store.
type StoreConfig struct {
	// Dir is the directory holding the reports database (default "reports").
	Dir string `json:"dir" yaml:"dir"`
}

// EngineConfig groups all component configurations for one run.
type EngineConfig struct {
	Corpus     CorpusConfig     `json:"corpus" yaml:"corpus"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Frontier   FrontierConfig   `json:"frontier" yaml:"frontier"`
	Gaps       GapsConfig       `json:"gaps" yaml:"gaps"`
	Validation ValidationConfig `json:"validation" yaml:"validation"`
	Store      StoreConfig      `json:"store" yaml:"store"`
}

// DefaultEngineConfig returns the calibrated defaults. Every threshold here
// is a tuning choice, not a hidden constant; config files and flags may
// override any of them.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Corpus: CorpusConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "gap-engine/0.1",
			},
			MaxResultsPerQuery:    5,
			EnableArxiv:           true,
			EnableOpenAlex:        true,
			EnableSemanticScholar: false,
			QueriesPerSecond:      1.0,
		},
		Extraction: ExtractionConfig{
			AIConfig: AIConfig{
				Model:      "gemini-2.5-flash",
				MaxRetries: 3,
			},
			Provider: "gemini",
		},
		Frontier: FrontierConfig{
			Budget: Budget{
				MaxPapers:  10,
				MaxQueries: 30,
				MaxElapsed: 10 * time.Minute,
			},
			DomainShareCap: 0.6,
		},
		Gaps: GapsConfig{
			MinFragmentLength: 20,
			DedupSimilarity:   0.82,
		},
		Validation: ValidationConfig{
			EliminationThreshold: 85,
			ValidationThreshold:  90,
			MinAttempts:          2,
			MaxChecks:            6,
			WeightScale:          1.0,
			Concurrency:          4,
		},
		Store: StoreConfig{
			Dir: "reports",
		},
	}
}
