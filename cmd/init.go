package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zorak1103/logsieve/internal/templates"
)

var (
	force bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize logsieve configuration and directory structure",
	Long: `Init creates the necessary configuration files and directories for logsieve.

This command will create:
  - config.yaml (sample configuration file)
  - .env (environment variable template)
  - reports/ (directory for selection reports)

Run this once when setting up logsieve for the first time.`,
	Example: `  # Initialize in current directory
  logsieve init

  # Force overwrite existing files
  logsieve init --force`,
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Println("🔧 Initializing logsieve...")

		dirs := []string{
			"reports",
		}

		for _, dir := range dirs {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
			fmt.Printf("✅ Created directory: %s\n", dir)
		}

		files := map[string][]byte{
			"config.yaml": templates.ConfigYAML,
			".env":        templates.EnvFile,
		}

		for filename, content := range files {
			if _, err := os.Stat(filename); err == nil && !force {
				fmt.Printf("⚠️  Skipping %s (already exists, use --force to overwrite)\n", filename)
				continue
			}

			if err := os.WriteFile(filename, content, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", filename, err)
			}
			fmt.Printf("✅ Created file: %s\n", filename)
		}

		fmt.Println()
		fmt.Println("🎉 Logsieve initialized successfully!")
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  1. Review config.yaml and adjust scan limits if needed")
		fmt.Println("  2. Run 'logsieve scan <event-log-dir>' to select logs for profiling")

		return nil
	},
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
}
