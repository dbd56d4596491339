// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/jcodagnone/addrlookup/lookup"
	"github.com/jcodagnone/addrlookup/model"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var batchOptions struct {
	input   string
	output  string
	workers int
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Resolves every company listed in a CSV file",
	Long: `
Reads company/site pairs from a CSV file and writes one row per input with
the resolved address. The output is XLSX when its name ends in .xlsx and CSV
otherwise.
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		in, err := os.Open(batchOptions.input)
		if err != nil {
			return err
		}
		defer in.Close()

		queries, err := readQueries(in)
		if err != nil {
			return fmt.Errorf("%s: %w", batchOptions.input, err)
		}

		svc, closer, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		workers := batchOptions.workers
		if workers <= 0 {
			workers = cfg.BatchWorkers
		}

		n := len(queries)

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(n,
				progressbar.OptionSetDescription("Resolving "+batchOptions.input),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		results := svc.LookupAll(cmd.Context(), queries, workers, func(done, total int, r lookup.Result) {
			if bar != nil {
				_ = bar.Add(1)

				return
			}

			if r.Err != nil {
				log.Printf("✗ [%d/%d] %s: %v", done, total, r.Company, r.Err)
			} else {
				log.Printf("✓ [%d/%d] %s: %s", done, total, r.Company, r.Source)
			}
		})

		if bar != nil {
			_ = bar.Finish()
		}

		if err := writeResults(batchOptions.output, results); err != nil {
			return err
		}

		counts := batchSummary(results)
		log.Printf("✓ wrote %d results to %s", n, batchOptions.output)

		for _, src := range []model.Source{
			model.SourceCache, model.SourceStorage, model.SourceStorageFuzzy,
			model.SourceGeocoded, model.SourceNotFound, model.SourceInvalidInput,
		} {
			if counts[src] > 0 {
				log.Printf("  %-14s %d", src, counts[src])
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVarP(&batchOptions.input, "input", "i", "", "CSV file with company and site columns")
	batchCmd.Flags().StringVarP(&batchOptions.output, "output", "o", "results.csv", "output file, .csv or .xlsx")
	batchCmd.Flags().IntVarP(&batchOptions.workers, "workers", "w", 0, "concurrent lookups (default: batch_workers)")
	_ = batchCmd.MarkFlagRequired("input")
}
