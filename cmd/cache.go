package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zorak1103/logsieve/internal/state"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent header cache",
	Long: `Cache management commands for inspecting and resetting the header cache.

The cache file stores the extracted application header for each scanned event
log, keyed by path and invalidated by file size and modification time. It lets
repeated runs skip re-reading unchanged logs.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached event-log headers",
	Long: `Display the cached header for each event log: application id, name,
start time, and when the header was last extracted.`,
	Example: `  # List all cached headers
  logsieve cache list`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg = GetConfig()
		if err := validateConfigOrExit(cfg, "cache"); err != nil {
			return err
		}

		cache, err := state.Load(cfg.Cache.File)
		if err != nil {
			return fmt.Errorf("failed to load header cache: %w", err)
		}

		entries := cache.All()

		// Write output to stdout; errors writing to stdout are not actionable in CLI context
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "📊 Cached Event Log Headers:")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "")

		if len(entries) == 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "ℹ️  No entries in header cache")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "   Cache file: %s\n", cfg.Cache.File)
			return nil
		}

		paths := make([]string, 0, len(entries))
		for path := range entries {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, "Path\tApp ID\tApp Name\tStart Time\tScanned At")
		_, _ = fmt.Fprintln(w, "----\t------\t--------\t----------\t----------")

		for _, path := range paths {
			entry := entries[path]
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				path,
				entry.AppID,
				entry.AppName,
				entry.StartTime.UTC().Format("2006-01-02 15:04:05"),
				entry.ScannedAt.Format("2006-01-02 15:04:05"),
			)
		}

		_ = w.Flush() // Flush buffered output; error not actionable in CLI display context
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "")
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Total: %d entr(y/ies)\n", len(entries))

		return nil
	},
}

var cacheResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the header cache",
	Long: `Delete the header cache file. The next scan re-reads every log header.

This is safe: the cache is purely an optimization.`,
	Example: `  # Delete the cache
  logsieve cache reset`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg = GetConfig()
		if err := validateConfigOrExit(cfg, "cache"); err != nil {
			return err
		}

		if err := os.Remove(cfg.Cache.File); err != nil {
			if os.IsNotExist(err) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "ℹ️  No header cache to remove")
				return nil
			}
			return fmt.Errorf("failed to remove header cache %s: %w", cfg.Cache.File, err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ Removed header cache: %s\n", cfg.Cache.File)
		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheResetCmd)
}
