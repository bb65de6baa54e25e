// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// loadEngineConfig builds the engine configuration from defaults, the
// viper config file, and loaded secrets, in that order.
func loadEngineConfig() types.EngineConfig {
	cfg := types.DefaultEngineConfig()

	if viper.IsSet("corpus.enable_arxiv") {
		cfg.Corpus.EnableArxiv = viper.GetBool("corpus.enable_arxiv")
	}
	if viper.IsSet("corpus.enable_openalex") {
		cfg.Corpus.EnableOpenAlex = viper.GetBool("corpus.enable_openalex")
	}
	if viper.IsSet("corpus.enable_semantic_scholar") {
		cfg.Corpus.EnableSemanticScholar = viper.GetBool("corpus.enable_semantic_scholar")
	}
	if v := viper.GetInt("corpus.max_results_per_query"); v > 0 {
		cfg.Corpus.MaxResultsPerQuery = v
	}
	if v := viper.GetFloat64("corpus.queries_per_second"); v > 0 {
		cfg.Corpus.QueriesPerSecond = v
	}
	if v := viper.GetDuration("corpus.timeout"); v > 0 {
		cfg.Corpus.Timeout = v
	}

	if v := viper.GetString("extraction.provider"); v != "" {
		cfg.Extraction.Provider = v
	}
	if v := viper.GetString("extraction.model"); v != "" {
		cfg.Extraction.Model = v
	}
	if v := viper.GetInt("extraction.max_retries"); v > 0 {
		cfg.Extraction.MaxRetries = v
	}

	if v := viper.GetInt("frontier.max_papers"); v > 0 {
		cfg.Frontier.MaxPapers = v
	}
	if v := viper.GetInt("frontier.max_queries"); v > 0 {
		cfg.Frontier.MaxQueries = v
	}
	if v := viper.GetDuration("frontier.max_elapsed"); v > 0 {
		cfg.Frontier.MaxElapsed = v
	}
	if v := viper.GetFloat64("frontier.domain_share_cap"); v > 0 {
		cfg.Frontier.DomainShareCap = v
	}

	if v := viper.GetInt("gaps.min_fragment_length"); v > 0 {
		cfg.Gaps.MinFragmentLength = v
	}
	if v := viper.GetFloat64("gaps.dedup_similarity"); v > 0 {
		cfg.Gaps.DedupSimilarity = v
	}

	if v := viper.GetFloat64("validation.elimination_threshold"); v > 0 {
		cfg.Validation.EliminationThreshold = v
	}
	if v := viper.GetFloat64("validation.validation_threshold"); v > 0 {
		cfg.Validation.ValidationThreshold = v
	}
	if v := viper.GetInt("validation.min_attempts"); v > 0 {
		cfg.Validation.MinAttempts = v
	}
	if v := viper.GetInt("validation.max_checks"); v > 0 {
		cfg.Validation.MaxChecks = v
	}
	if v := viper.GetFloat64("validation.weight_scale"); v > 0 {
		cfg.Validation.WeightScale = v
	}
	if v := viper.GetInt("validation.concurrency"); v > 0 {
		cfg.Validation.Concurrency = v
	}

	if v := viper.GetString("store.dir"); v != "" {
		cfg.Store.Dir = v
	}

	// Secrets fill credentials the config file left empty.
	switch cfg.Extraction.Provider {
	case "openai":
		cfg.Extraction.APIKey = secretDefault("openai-api-key", cfg.Extraction.APIKey)
	default:
		cfg.Extraction.APIKey = secretDefault("gemini-api-key", cfg.Extraction.APIKey)
	}
	cfg.Corpus.SemanticScholarAPIKey = secretDefault("semantic-scholar-api-key", cfg.Corpus.SemanticScholarAPIKey)
	cfg.Corpus.OpenAlexEmail = secretDefault("openalex-email", cfg.Corpus.OpenAlexEmail)

	return cfg
}
