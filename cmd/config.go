package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zorak1103/logsieve/internal/config"
)

// validateConfigOrExit validates that the configuration is properly initialized
// and all required directories exist. Returns a user-friendly error if validation fails.
func validateConfigOrExit(cfg *config.Config, _ string) error {
	// Check if config was loaded
	if cfg == nil {
		return fmt.Errorf("configuration not loaded\n\nLogsieve has not been initialized in this directory.\nRun 'logsieve init' to set up logsieve and create the necessary configuration")
	}

	// Validate required directories exist
	var missingDirs []string

	if _, err := os.Stat(cfg.Output.ReportsDir); os.IsNotExist(err) {
		missingDirs = append(missingDirs, fmt.Sprintf("Reports directory: %s", cfg.Output.ReportsDir))
	}

	// Check cache file parent directory
	if cfg.Cache.Enabled {
		cacheDir := filepath.Dir(cfg.Cache.File)
		if cacheDir != "." && cacheDir != "" {
			if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
				missingDirs = append(missingDirs, fmt.Sprintf("Cache file directory: %s", cacheDir))
			}
		}
	}

	// If directories are missing, return helpful error
	if len(missingDirs) > 0 {
		errMsg := "required directories are missing:\n\n"
		for _, dir := range missingDirs {
			errMsg += fmt.Sprintf("  - %s\n", dir)
		}
		errMsg += "\nRun 'logsieve init' to create the required directory structure"
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the effective configuration",
	Long: `Display the effective configuration that logsieve will use at runtime.

This shows the merged configuration from:
  1. Default values
  2. Configuration file (config.yaml)
  3. Environment variables (highest priority)`,
	Example: `  # Show current configuration
  logsieve config

  # Show with custom config file
  logsieve config --config /etc/logsieve/config.yaml`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded\n\nTo get started, run: logsieve init")
		}

		fmt.Println("=== Logsieve Effective Configuration ===")
		fmt.Println()

		fmt.Println("🔍 Scan Configuration:")
		fmt.Printf("   Pool Size:        %d\n", cfg.Scan.PoolSize)
		fmt.Printf("   Timeout:          %ds\n", cfg.Scan.TimeoutSeconds)
		fmt.Printf("   Header Row Limit: %d\n", cfg.Scan.HeaderRowLimit)
		fmt.Println()

		fmt.Println("📊 Cache Configuration:")
		fmt.Printf("   Enabled:          %v\n", cfg.Cache.Enabled)
		fmt.Printf("   File:             %s\n", cfg.Cache.File)
		fmt.Printf("   Retention:        %d days\n", cfg.Cache.RetentionDays)
		fmt.Println()

		fmt.Println("📁 Output Configuration:")
		fmt.Printf("   Reports Dir:      %s\n", cfg.Output.ReportsDir)
		fmt.Println()

		fmt.Println("📝 Log Configuration:")
		fmt.Printf("   Level:            %s\n", cfg.Log.Level)
		fmt.Printf("   Format:           %s\n", cfg.Log.Format)
		fmt.Println()

		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(configCmd)
}
