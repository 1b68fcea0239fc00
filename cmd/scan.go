package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zorak1103/logsieve/internal/config"
	"github.com/zorak1103/logsieve/internal/criteria"
	"github.com/zorak1103/logsieve/internal/discovery"
	"github.com/zorak1103/logsieve/internal/eventlog"
	"github.com/zorak1103/logsieve/internal/logging"
	"github.com/zorak1103/logsieve/internal/reporting"
	"github.com/zorak1103/logsieve/internal/scanner"
	"github.com/zorak1103/logsieve/internal/selection"
	"github.com/zorak1103/logsieve/internal/state"
)

var scanCmd = &cobra.Command{
	Use:   "scan [specifiers...]",
	Short: "Discover, filter, and select event logs",
	Long: `Scan expands each path specifier into candidate event logs, reads the
application header of each candidate under a bounded worker pool, applies
the requested filter, and prints the surviving logs in a deterministic order.

Specifiers may be files, directories (expanded non-recursively), or glob
patterns, optionally embedding {DATE} / {DATE-n} tokens that expand to
today / today minus n days.`,
	Example: `  # Select everything under a directory
  logsieve scan /var/logs/eventlogs

  # The 20 most recently started applications
  logsieve scan /var/logs/eventlogs --filter-criteria 20-newest

  # Applications whose name does NOT contain "nightly", newest 5 first
  logsieve scan '/data/**/eventlog*' --match-app '~nightly' --filter-criteria 5-newest

  # Applications started within the last 5 days
  logsieve scan /var/logs/{DATE} /var/logs/{DATE-1} --min-start 5d

  # Tight scan budget for huge logs
  logsieve scan /var/logs/eventlogs --pool-size 16 --timeout 600`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Bool("dry-run", false, "resolve specifiers and validate filters without scanning")
	scanCmd.Flags().String("match-app", "", "substring matched against application names, prefix with ~ to negate")
	scanCmd.Flags().String("filter-criteria", "", "ranked selection of the form <count>-{newest|oldest}")
	scanCmd.Flags().String("min-start", "", "relative start-time bound of the form <count>[min|h|d|w|m]")
	scanCmd.Flags().Int("pool-size", 0, "number of scan workers (overrides config)")
	scanCmd.Flags().Int("timeout", 0, "scan timeout in seconds (overrides config)")
	scanCmd.Flags().Int("header-rows", 0, "event lines to read per log (overrides config)")
	scanCmd.Flags().Bool("no-cache", false, "disable the header cache for this run")
	scanCmd.Flags().Bool("report", false, "write a markdown selection report")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg = GetConfig()
	if err := validateConfigOrExit(cfg, "scan"); err != nil {
		return err
	}

	scanCfg := newScanConfigFromCmd(cmd)

	// Parse the filter policy first: configuration errors fail fast before
	// any filesystem or pool work starts.
	policy, err := criteria.BuildPolicy(scanCfg.matchApp, scanCfg.filterCriteria, scanCfg.minStart)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := newScanLogger(cfg, scanCfg).WithField("run", runID[:8])

	displayScanHeader(scanCfg, policy)

	resolver := discovery.NewResolver(log)
	descriptors, warnings := resolver.Resolve(args)
	if warnings != nil && scanCfg.verbose {
		fmt.Printf("⚠️  Some specifiers were skipped:\n%v\n\n", warnings)
	}

	if len(descriptors) == 0 {
		fmt.Println("ℹ️  No event logs found")
		return nil
	}

	fmt.Printf("📦 Found %d event log(s) to scan\n\n", len(descriptors))

	if scanCfg.dryRun {
		displayDryRun(descriptors)
		return nil
	}

	cache := loadCacheIfEnabled(cfg, scanCfg, log)

	sc, err := newScanner(cfg, scanCfg, cache, log)
	if err != nil {
		return err
	}

	results := sc.Scan(context.Background(), descriptors)

	engine := selection.NewEngine(log)
	selected := engine.Select(results, policy)

	displaySelection(selected, headersByPath(results))

	if scanCfg.report {
		if path, reportErr := writeSelectionReport(selected, results, policy, sc, descriptors, runID); reportErr != nil {
			fmt.Printf("⚠️  Failed to save report: %v\n", reportErr)
		} else {
			fmt.Printf("📄 Report written to %s\n", path)
		}
	}

	saveCacheIfNeeded(cache, log)

	displayScanSummary(sc, len(descriptors), len(selected))
	return nil
}

// newScanLogger builds the run logger; --verbose forces debug level.
func newScanLogger(cfg *config.Config, scanCfg *scanConfig) *logrus.Logger {
	logCfg := cfg.Log
	if scanCfg.verbose {
		logCfg.Level = "debug"
	}
	return logging.New(logCfg)
}

// newScanner assembles the scanner from config with flag overrides.
func newScanner(cfg *config.Config, scanCfg *scanConfig, cache *state.Cache, log logrus.FieldLogger) (*scanner.Scanner, error) {
	opts := scanner.Options{
		PoolSize:       cfg.Scan.PoolSize,
		Timeout:        time.Duration(cfg.Scan.TimeoutSeconds) * time.Second,
		HeaderRowLimit: cfg.Scan.HeaderRowLimit,
	}
	if scanCfg.poolSize != 0 {
		opts.PoolSize = scanCfg.poolSize
	}
	if scanCfg.timeoutSeconds != 0 {
		opts.Timeout = time.Duration(scanCfg.timeoutSeconds) * time.Second
	}
	if scanCfg.headerRows != 0 {
		opts.HeaderRowLimit = scanCfg.headerRows
	}

	sc, err := scanner.New(eventlog.NewFileExtractor(), opts, log)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		sc = sc.WithCache(cache)
	}
	return sc, nil
}

// loadCacheIfEnabled loads the header cache, degrading to no cache on error.
func loadCacheIfEnabled(cfg *config.Config, scanCfg *scanConfig, log logrus.FieldLogger) *state.Cache {
	if scanCfg.noCache || !cfg.Cache.Enabled {
		return nil
	}

	cache, err := state.Load(cfg.Cache.File)
	if err != nil {
		log.Warnf("header cache unavailable, scanning everything: %v", err)
		return nil
	}
	if scanCfg.verbose {
		fmt.Printf("📊 Loaded header cache with %d entr(y/ies)\n", cache.Count())
	}
	return cache
}

func saveCacheIfNeeded(cache *state.Cache, log logrus.FieldLogger) {
	if cache == nil {
		return
	}
	if err := cache.Save(); err != nil {
		log.Warnf("failed to save header cache: %v", err)
	}
}

func displayScanHeader(scanCfg *scanConfig, policy criteria.FilterPolicy) {
	fmt.Println("🔍 Starting event log scan...")
	fmt.Printf("   Filter: %s\n", policy.Describe())

	if scanCfg.dryRun {
		fmt.Println("⚠️  DRY RUN MODE - No logs will be read, cache will not be updated")
	}
	fmt.Println()
}

func displayDryRun(descriptors []eventlog.Descriptor) {
	for _, d := range descriptors {
		fmt.Printf("   %s (modified %s)\n", d.Path, d.ModTime.Format(time.RFC3339))
	}
	fmt.Println()
}

// headersByPath indexes extracted headers for display and reporting.
func headersByPath(results []eventlog.ScanResult) map[string]*eventlog.HeaderInfo {
	headers := make(map[string]*eventlog.HeaderInfo, len(results))
	for _, r := range results {
		headers[r.Descriptor.Path] = r.Header
	}
	return headers
}

func displaySelection(selected []eventlog.Descriptor, headers map[string]*eventlog.HeaderInfo) {
	if len(selected) == 0 {
		fmt.Println("ℹ️  No event logs survived the filter")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tPath\tApp ID\tApp Name\tStart Time")
	_, _ = fmt.Fprintln(w, "-\t----\t------\t--------\t----------")

	for i, d := range selected {
		appID, appName, start := "-", "-", "-"
		if h := headers[d.Path]; h != nil {
			appID, appName = h.AppID, h.AppName
			start = h.StartTime.UTC().Format("2006-01-02 15:04:05")
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, d.Path, appID, appName, start)
	}

	_ = w.Flush() // Flush buffered output; error not actionable in CLI display context
	fmt.Println()
}

func writeSelectionReport(selected []eventlog.Descriptor, results []eventlog.ScanResult, policy criteria.FilterPolicy, sc *scanner.Scanner, descriptors []eventlog.Descriptor, runID string) (string, error) {
	stats := sc.Stats()
	summary := reporting.RunSummary{
		RunID:         runID,
		Discovered:    len(descriptors),
		Scanned:       stats.Scanned.Load(),
		MissingHeader: stats.MissingHeader.Load(),
		Failed:        stats.Failed.Load(),
		CacheHits:     stats.CacheHits.Load(),
		Discarded:     stats.Discarded.Load(),
	}
	content := reporting.GenerateSelectionReport(selected, headersByPath(results), policy, summary)
	return reporting.SaveReport(content, cfg, runID[:8])
}

func displayScanSummary(sc *scanner.Scanner, discovered, selected int) {
	stats := sc.Stats()

	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("✅ Scan complete!\n")
	fmt.Printf("   Discovered:       %d\n", discovered)
	fmt.Printf("   Headers read:     %d (%d from cache)\n", stats.Scanned.Load(), stats.CacheHits.Load())
	fmt.Printf("   Missing headers:  %d\n", stats.MissingHeader.Load())
	fmt.Printf("   Failures:         %d\n", stats.Failed.Load())
	if discarded := stats.Discarded.Load(); discarded > 0 {
		fmt.Printf("   Discarded (timeout): %d\n", discarded)
	}
	fmt.Printf("   Selected:         %d\n", selected)
	fmt.Println()
}
