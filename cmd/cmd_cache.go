// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"

	"github.com/jcodagnone/addrlookup/cache"
	"github.com/jcodagnone/addrlookup/utils/textutils"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manages the lookup cache",
}

func printCacheStats(st cache.Stats) {
	fmt.Printf("Cache (%s)\n", st.Type)
	fmt.Printf("  %-16s %t\n", "enabled", st.Enabled)
	fmt.Printf("  %-16s %s\n", "memory entries", textutils.FormatInt(int64(st.MemoryEntries)))
	fmt.Printf("  %-16s %s\n", "durable entries", textutils.FormatInt(int64(st.DurableEntries)))
	fmt.Printf("  %-16s %.0f\n", "ttl hours", st.TTLHours)
	fmt.Printf("  %-16s %s\n", "max size", textutils.FormatInt(int64(st.MaxSize)))
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints cache statistics",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer c.Close()

		printCacheStats(c.Stats())

		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Removes every cached entry",
	RunE: func(_ *cobra.Command, _ []string) error {
		c, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Clear(); err != nil {
			return err
		}

		log.Printf("✓ cleared %s cache", cfg.CacheType)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}
