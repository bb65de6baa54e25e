// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gap-engine/internal/corpus"
	"github.com/pdiddy/gap-engine/internal/engine"
	"github.com/pdiddy/gap-engine/internal/extraction"
	"github.com/pdiddy/gap-engine/internal/reportstore"
	"github.com/pdiddy/gap-engine/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a frontier expansion and gap validation from a seed paper",
	Long: `Analyze fetches the seed paper, extracts candidate research gaps from its
limitations and future work, expands the paper frontier with solution-seeking
queries, validates each candidate against the fresh papers, and writes the
resulting analysis report as JSON. Progress goes to stderr; the report goes
to stdout or --out. Every report is also stored for later retrieval with
the report subcommand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, _ := cmd.Flags().GetString("seed")
		if seed == "" {
			return fmt.Errorf("--seed is required")
		}
		requestID, _ := cmd.Flags().GetString("request-id")
		maxPapers, _ := cmd.Flags().GetInt("max-papers")
		maxQueries, _ := cmd.Flags().GetInt("max-queries")
		maxElapsed, _ := cmd.Flags().GetDuration("max-elapsed")
		outPath, _ := cmd.Flags().GetString("out")

		cfg := loadEngineConfig()

		providers := corpus.ProvidersFromConfig(cfg.Corpus)
		if len(providers) == 0 {
			return fmt.Errorf("no corpus providers enabled")
		}
		corpusAdapter := corpus.NewAdapter(providers, cfg.Corpus)

		analyzer, err := extraction.FromConfig(cfg.Extraction)
		if err != nil {
			return fmt.Errorf("configuring extraction: %w", err)
		}

		store, err := reportstore.NewStore(cfg.Store)
		if err != nil {
			return fmt.Errorf("opening report store: %w", err)
		}
		defer store.Close()

		eng := engine.New(cfg, corpusAdapter, analyzer, store, os.Stderr)
		rep, err := eng.Run(cmd.Context(), engine.Request{
			SeedPaperURL: seed,
			RequestID:    requestID,
			Budget: types.Budget{
				MaxPapers:  maxPapers,
				MaxQueries: maxQueries,
				MaxElapsed: maxElapsed,
			},
		})
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		data = append(data, '\n')

		if outPath != "" {
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("writing report to %s: %w", outPath, err)
			}
			fmt.Fprintf(os.Stderr, "report written to %s\n", outPath)
			return nil
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	analyzeCmd.Flags().String("seed", "", "seed paper URL or identifier (required)")
	analyzeCmd.Flags().String("request-id", "", "request ID for the run (generated if empty)")
	analyzeCmd.Flags().Int("max-papers", 0, "override the fetched-paper budget")
	analyzeCmd.Flags().Int("max-queries", 0, "override the executed-query budget")
	analyzeCmd.Flags().Duration("max-elapsed", 0, "override the elapsed-time budget")
	analyzeCmd.Flags().String("out", "", "write the JSON report to a file instead of stdout")

	rootCmd.AddCommand(analyzeCmd)
}
