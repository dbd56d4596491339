// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jcodagnone/addrlookup/lookup"
	"github.com/jcodagnone/addrlookup/model"
	"github.com/xuri/excelize/v2"
)

const resultsSheet = "results"

var (
	companyHeaders = []string{"company", "company_name", "company name", "name"}
	siteHeaders    = []string{"site", "site_hint", "site hint", "location"}
)

// readQueries reads company/site pairs from CSV. A header naming a company
// column is optional; without it the first column is the company and the
// second the site hint. Rows with an empty company are skipped.
func readQueries(r io.Reader) ([]lookup.Query, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(rows) == 0 {
		return nil, errors.New("empty input")
	}

	companyCol, siteCol := 0, 1

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	if i := slices.IndexFunc(header, func(h string) bool { return slices.Contains(companyHeaders, h) }); i >= 0 {
		companyCol = i
		siteCol = slices.IndexFunc(header, func(h string) bool { return slices.Contains(siteHeaders, h) })
		rows = rows[1:]
	}

	queries := make([]lookup.Query, 0, len(rows))

	for _, row := range rows {
		var q lookup.Query

		if companyCol < len(row) {
			q.Company = strings.TrimSpace(row[companyCol])
		}

		if siteCol >= 0 && siteCol < len(row) {
			q.Site = strings.TrimSpace(row[siteCol])
		}

		if q.Company != "" {
			queries = append(queries, q)
		}
	}

	return queries, nil
}

func resultHeader() []string {
	header := []string{"INPUT COMPANY", "INPUT SITE", "LOOKUP SOURCE"}
	for _, c := range model.Columns {
		header = append(header, model.DisplayNames[c])
	}

	return append(header, "ERROR")
}

func resultRow(r lookup.Result) []string {
	row := []string{r.Company, r.Site, string(r.Source)}

	if r.Record != nil {
		row = append(row, r.Record.Row()...)
	} else {
		row = append(row, make([]string, len(model.Columns))...)
	}

	var errMsg string
	if r.Err != nil {
		errMsg = r.Err.Error()
	}

	return append(row, errMsg)
}

// writeResults writes results to path, as XLSX when the extension says so
// and as CSV otherwise.
func writeResults(path string, results []lookup.Result) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return writeXLSX(path, results)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := writeCSV(f, results); err != nil {
		return err
	}

	return f.Close()
}

func writeCSV(w io.Writer, results []lookup.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(resultHeader()); err != nil {
		return err
	}

	for _, r := range results {
		if err := cw.Write(resultRow(r)); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func writeXLSX(path string, results []lookup.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return err
	}

	write := func(excelRow int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, excelRow)
		if err != nil {
			return err
		}

		row := make([]any, len(values))
		for i, v := range values {
			row[i] = v
		}

		return f.SetSheetRow(resultsSheet, cell, &row)
	}

	if err := write(1, resultHeader()); err != nil {
		return err
	}

	for i, r := range results {
		if err := write(i+2, resultRow(r)); err != nil {
			return err
		}
	}

	if err := f.SetPanes(resultsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	return nil
}

// batchSummary counts results per source.
func batchSummary(results []lookup.Result) map[model.Source]int {
	counts := map[model.Source]int{}
	for _, r := range results {
		counts[r.Source]++
	}

	return counts
}
