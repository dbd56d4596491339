// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jcodagnone/addrlookup/lookup"
	"github.com/jcodagnone/addrlookup/model"
	"github.com/jcodagnone/addrlookup/utils/textutils"
	"github.com/spf13/cobra"
)

var lookupOptions struct {
	company string
	site    string
	json    bool
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func printRecord(w io.Writer, r *model.AddressRecord, src model.Source) {
	rows := [][2]string{
		{"Source", string(src)},
		{"Company", r.CompanyNormalized},
		{"Street", strings.TrimSpace(r.Street1 + " " + r.Street2)},
		{"City", r.City},
		{"State/Region", r.StateRegion},
		{"Postal code", r.PostalCode},
		{"Country", r.Country},
		{"Confidence", textutils.Percent(r.Confidence)},
		{"QA status", string(r.QAStatus)},
	}

	if r.Point != nil {
		rows = append(rows, [2]string{"Location", fmt.Sprintf("%.6f, %.6f", r.Point.Lat, r.Point.Lng)})
	}

	if r.Notes != "" {
		rows = append(rows, [2]string{"Notes", r.Notes})
	}

	for _, row := range rows {
		fmt.Fprintf(w, "%-13s │ %s\n", row[0], row[1])
	}
}

func resolve(cmd *cobra.Command, company, site string) (*lookup.Service, func(), *model.AddressRecord, error) {
	svc, closer, err := openService(cmd.Context())
	if err != nil {
		return nil, nil, nil, err
	}

	r, src, err := svc.Lookup(cmd.Context(), company, site)
	if err != nil {
		closer()

		return nil, nil, nil, err
	}

	switch src {
	case model.SourceInvalidInput:
		closer()

		return nil, nil, nil, fmt.Errorf("%q: %w", company, lookup.ErrInvalidInput)
	case model.SourceNotFound:
		defer closer()

		err = fmt.Errorf("%q: %w", company, lookup.ErrNotFound)
		if names, serr := svc.Suggest(company); serr == nil && len(names) > 0 {
			err = fmt.Errorf("%w\n\nDid you mean this?\n\t%s", err, strings.Join(names, "\n\t"))
		}

		return nil, nil, nil, err
	}

	if lookupOptions.json {
		err = printJSON(os.Stdout, r)
	} else {
		printRecord(os.Stdout, r, src)
	}

	return svc, closer, r, err
}

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolves the address of a company",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, closer, _, err := resolve(cmd, lookupOptions.company, lookupOptions.site)
		if err != nil {
			return err
		}
		defer closer()

		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Resolves the address of a company and checks it against the web",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closer, r, err := resolve(cmd, lookupOptions.company, lookupOptions.site)
		if err != nil {
			return err
		}
		defer closer()

		v, err := svc.Verify(cmd.Context(), r)
		if err != nil {
			return err
		}

		if lookupOptions.json {
			return printJSON(os.Stdout, v)
		}

		fmt.Printf("\n%s\n", v.Note())

		if v.FoundAddress != "" {
			fmt.Printf("Found address │ %s\n", v.FoundAddress)
		}

		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{lookupCmd, verifyCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringVar(&lookupOptions.company, "company", "", "company name")
		c.Flags().StringVar(&lookupOptions.site, "site", "", `site hint, "City, Country"`)
		c.Flags().BoolVar(&lookupOptions.json, "json", false, "print JSON")
		_ = c.MarkFlagRequired("company")
	}
}
