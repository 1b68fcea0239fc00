package cmd

import "github.com/spf13/cobra"

// scanConfig holds all scan-specific configuration flags.
// This structure replaces package-level global variables
// to enable better testing and dependency injection.
type scanConfig struct {
	// dryRun resolves specifiers and validates the filter policy without
	// scanning any log or touching the cache.
	dryRun bool

	// matchApp is a substring matched against application names.
	// A leading "~" negates the match.
	matchApp string

	// filterCriteria is a ranked selection spec of the form
	// "<count>-newest" or "<count>-oldest".
	filterCriteria string

	// minStart is a relative start-time bound of the form "<count>[unit]"
	// with unit one of min, h, d, w, m (default d).
	minStart string

	// poolSize overrides scan.pool_size from the config when > 0.
	poolSize int

	// timeoutSeconds overrides scan.timeout_seconds from the config when > 0.
	timeoutSeconds int

	// headerRows overrides scan.header_row_limit from the config when > 0.
	headerRows int

	// noCache disables the header cache for this run.
	noCache bool

	// report writes a markdown selection report under the reports directory.
	report bool

	// verbose enables detailed output during scan operations.
	// Inherited from root command but included here for explicit dependency tracking.
	verbose bool
}

// newScanConfigFromCmd creates a new scanConfig from Cobra command flags.
// This function reads flag values directly from the command, avoiding global state.
func newScanConfigFromCmd(cmd *cobra.Command) *scanConfig {
	// GetBool/GetString/GetInt never return errors when flags are properly defined
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	matchApp, _ := cmd.Flags().GetString("match-app")
	filterCriteria, _ := cmd.Flags().GetString("filter-criteria")
	minStart, _ := cmd.Flags().GetString("min-start")
	poolSize, _ := cmd.Flags().GetInt("pool-size")
	timeoutSeconds, _ := cmd.Flags().GetInt("timeout")
	headerRows, _ := cmd.Flags().GetInt("header-rows")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	report, _ := cmd.Flags().GetBool("report")

	return &scanConfig{
		dryRun:         dryRun,
		matchApp:       matchApp,
		filterCriteria: filterCriteria,
		minStart:       minStart,
		poolSize:       poolSize,
		timeoutSeconds: timeoutSeconds,
		headerRows:     headerRows,
		noCache:        noCache,
		report:         report,
		verbose:        verbose, // Still using global from root command
	}
}

// newTestScanConfig creates a scanConfig for testing with default values.
// This helps tests avoid depending on Cobra commands or global variables.
func newTestScanConfig() *scanConfig {
	return &scanConfig{}
}
