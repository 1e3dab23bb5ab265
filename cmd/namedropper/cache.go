// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/namedropper/internal/xref"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the cross-reference cache",
	Long: `Cache manages the SQLite database that remembers VIAF and GeoNames
lookups between runs, including lookups that found nothing.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached cross-references per authority",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached cross-reference",
	RunE:  runCacheClear,
}

func init() {
	cacheStatsCmd.Flags().Bool("json", false, "output statistics as JSON")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (*xref.SQLiteStore, error) {
	path := loadConfig().Cache.Path
	if path == "" {
		return nil, fmt.Errorf("no cache configured: set cache.path or --cache")
	}
	return xref.OpenSQLite(path)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatCacheStats(os.Stdout, stats, jsonOutput)
}

func formatCacheStats(w io.Writer, stats []xref.Stats, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	if len(stats) == 0 {
		fmt.Fprintln(w, "Cache is empty.")
		return nil
	}
	fmt.Fprintf(w, "%-10s  %8s  %8s\n", "Authority", "Found", "Missing")
	for _, s := range stats {
		fmt.Fprintf(w, "%-10s  %8d  %8d\n", s.Authority, s.Found, s.Missing)
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Clear(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d cached cross-references\n", n)
	return nil
}
