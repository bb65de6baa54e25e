// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gap-engine/internal/reportstore"
)

var reportCmd = &cobra.Command{
	Use:   "report [request-id]",
	Short: "Retrieve stored analysis reports",
	Long: `Report retrieves a stored analysis report by request ID, or lists all
stored runs with --list. Reports print as JSON by default; --format yaml
switches to YAML.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, _ := cmd.Flags().GetBool("list")
		format, _ := cmd.Flags().GetString("format")

		cfg := loadEngineConfig()
		store, err := reportstore.NewStore(cfg.Store)
		if err != nil {
			return fmt.Errorf("opening report store: %w", err)
		}
		defer store.Close()

		if list {
			summaries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "REQUEST ID\tSTATUS\tGAPS\tCREATED\tSEED")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					s.RequestID, s.Status, s.GapsValidated,
					s.CreatedAt.Format(time.RFC3339), s.SeedPaperURL)
			}
			return tw.Flush()
		}

		if len(args) != 1 {
			return fmt.Errorf("a request ID is required (or use --list)")
		}

		rep, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var data []byte
		switch format {
		case "json", "":
			data, err = json.MarshalIndent(rep, "", "  ")
			if err == nil {
				data = append(data, '\n')
			}
		case "yaml":
			data, err = yaml.Marshal(rep)
		default:
			return fmt.Errorf("unknown format %q (want json or yaml)", format)
		}
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}

		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	reportCmd.Flags().Bool("list", false, "list stored runs")
	reportCmd.Flags().String("format", "json", "output format: json or yaml")

	rootCmd.AddCommand(reportCmd)
}
