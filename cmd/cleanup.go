package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/zorak1103/logsieve/internal/state"
)

var (
	cleanupDryRun bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove stale cache entries and old reports",
	Long: `Cleanup prunes header cache entries that have not been refreshed within
the configured retention window (cache.retention_days) and deletes selection
reports older than the same window.

Note: This command requires logsieve to be initialized. Run 'logsieve init'
first if you encounter configuration errors.`,
	Example: `  # Preview what would be removed
  logsieve cleanup --dry-run

  # Remove stale data
  logsieve cleanup`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg = GetConfig()
		if err := validateConfigOrExit(cfg, "cleanup"); err != nil {
			return err
		}

		retention := time.Duration(cfg.Cache.RetentionDays) * 24 * time.Hour

		prunedEntries, err := pruneCache(retention)
		if err != nil {
			return err
		}

		prunedReports, err := pruneReports(retention)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "🧹 Cleanup complete")
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "   Cache entries pruned: %d\n", prunedEntries)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "   Reports removed:      %d\n", prunedReports)
		if cleanupDryRun {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "   (dry-run: nothing was modified)")
		}

		return nil
	},
}

// pruneCache removes cache entries older than the retention window.
func pruneCache(retention time.Duration) (int, error) {
	cache, err := state.Load(cfg.Cache.File)
	if err != nil {
		return 0, fmt.Errorf("failed to load header cache: %w", err)
	}

	if cleanupDryRun {
		cutoff := time.Now().Add(-retention)
		stale := 0
		for _, entry := range cache.All() {
			if entry.ScannedAt.Before(cutoff) {
				stale++
			}
		}
		return stale, nil
	}

	removed := cache.Prune(retention)
	if removed > 0 {
		if err := cache.Save(); err != nil {
			return removed, fmt.Errorf("failed to save pruned cache: %w", err)
		}
	}
	return removed, nil
}

// pruneReports deletes report files older than the retention window.
// Only files matching the report naming scheme are considered.
func pruneReports(retention time.Duration) (int, error) {
	entries, err := os.ReadDir(cfg.Output.ReportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read reports directory: %w", err)
	}

	cutoff := time.Now().Add(-retention)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		info, infoErr := entry.Info()
		if infoErr != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		if !cleanupDryRun {
			if rmErr := os.Remove(filepath.Join(cfg.Output.ReportsDir, entry.Name())); rmErr != nil {
				return removed, fmt.Errorf("failed to remove report %s: %w", entry.Name(), rmErr)
			}
		}
		removed++
	}

	return removed, nil
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "preview removals without deleting anything")
}
