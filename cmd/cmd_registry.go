// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/jcodagnone/addrlookup/lookup"
	"github.com/jcodagnone/addrlookup/registry"
	"github.com/jcodagnone/addrlookup/utils/textutils"
	"github.com/spf13/cobra"
)

var registryOptions struct {
	json    bool
	lat     float64
	lng     float64
	k       int
	km      float64
	ifEmpty bool
}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspects the address registry",
}

func printStats(st lookup.Stats) {
	r := st.Registry
	fmt.Printf("Registry\n")
	fmt.Printf("  %-16s %s\n", "records", textutils.FormatInt(int64(r.Total)))
	fmt.Printf("  %-16s %s\n", "auto approved", textutils.FormatInt(int64(r.AutoCount)))
	fmt.Printf("  %-16s %s\n", "needs review", textutils.FormatInt(int64(r.ReviewCount)))

	sources := make([]string, 0, len(r.Sources))
	for s := range r.Sources {
		sources = append(sources, s)
	}

	slices.Sort(sources)

	for _, s := range sources {
		fmt.Printf("  %-16s %s\n", "source "+s, textutils.FormatInt(int64(r.Sources[s])))
	}

	printCacheStats(st.Cache)
}

var registryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints registry and cache statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closer, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		st, err := svc.Stats()
		if err != nil {
			return err
		}

		if registryOptions.json {
			return printJSON(os.Stdout, st)
		}

		printStats(st)

		return nil
	},
}

var registryReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Lists the records whose confidence is below the threshold",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closer, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		records, err := svc.ReviewQueue()
		if err != nil {
			return err
		}

		if registryOptions.json {
			return printJSON(os.Stdout, records)
		}

		for _, r := range records {
			fmt.Printf("%-40s │ %6s │ %s\n", r.CompanyNormalized, textutils.Percent(r.Confidence), lookup.Address(r))
		}

		fmt.Printf("%s records need review\n", textutils.FormatInt(int64(len(records))))

		return nil
	},
}

var registryNearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "Lists the records around a location, closest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closer, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		ranked, err := svc.Nearby(registryOptions.lat, registryOptions.lng, registryOptions.k)
		if err != nil {
			return err
		}

		if registryOptions.json {
			return printJSON(os.Stdout, ranked)
		}

		for _, r := range ranked {
			fmt.Printf("%8.2f km │ %-40s │ %s\n", r.DistanceKm, r.Record.CompanyNormalized, lookup.Address(r.Record))
		}

		return nil
	},
}

var registryClustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Lists groups of records sharing a location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, closer, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		clusters, err := svc.Clusters(registryOptions.km)
		if err != nil {
			return err
		}

		if registryOptions.json {
			return printJSON(os.Stdout, clusters)
		}

		for i, c := range clusters {
			fmt.Printf("#%d\n", i+1)

			for _, r := range c {
				fmt.Printf("  %-40s │ %s\n", r.CompanyNormalized, lookup.Address(r))
			}
		}

		return nil
	},
}

var registryExportCmd = &cobra.Command{
	Use:   "export <file.json>",
	Short: "Writes every record to a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		reg, err := openRegistry(cfg)
		if err != nil {
			return err
		}
		defer reg.Close()

		n, err := registry.Export(reg, args[0])
		if err != nil {
			return err
		}

		log.Printf("✓ exported %s records to %s", textutils.FormatInt(int64(n)), args[0])

		return nil
	},
}

var registryImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Loads the records of a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		reg, err := openRegistry(cfg)
		if err != nil {
			return err
		}
		defer reg.Close()

		if registryOptions.ifEmpty {
			seeded, n, err := registry.SeedIfEmpty(reg, args[0])
			if err != nil {
				return err
			}

			if !seeded {
				log.Printf("registry holds %s records, nothing imported", textutils.FormatInt(int64(n)))

				return nil
			}

			log.Printf("✓ imported %s records", textutils.FormatInt(int64(n)))

			return nil
		}

		n, err := registry.Import(reg, args[0])
		if err != nil {
			return err
		}

		log.Printf("✓ imported %s records", textutils.FormatInt(int64(n)))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(registryCmd)
	registryCmd.PersistentFlags().BoolVar(&registryOptions.json, "json", false, "print JSON")
	registryCmd.AddCommand(
		registryStatsCmd, registryReviewCmd, registryNearbyCmd,
		registryClustersCmd, registryExportCmd, registryImportCmd,
	)

	registryNearbyCmd.Flags().Float64Var(&registryOptions.lat, "lat", 0, "latitude")
	registryNearbyCmd.Flags().Float64Var(&registryOptions.lng, "lng", 0, "longitude")
	registryNearbyCmd.Flags().IntVar(&registryOptions.k, "k", 1, "H3 rings to search")
	_ = registryNearbyCmd.MarkFlagRequired("lat")
	_ = registryNearbyCmd.MarkFlagRequired("lng")

	registryClustersCmd.Flags().Float64Var(&registryOptions.km, "km", 0.2, "maximum distance between neighbors")
	registryImportCmd.Flags().BoolVar(&registryOptions.ifEmpty, "if-empty", false, "only import into an empty registry")
}
