// Package reporting renders the final selection as a report.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zorak1103/logsieve/internal/config"
	"github.com/zorak1103/logsieve/internal/criteria"
	"github.com/zorak1103/logsieve/internal/eventlog"
	"github.com/zorak1103/logsieve/internal/sanitize"
)

// RunSummary carries the scan counters the report displays.
type RunSummary struct {
	RunID         string
	Discovered    int
	Scanned       int64
	MissingHeader int64
	Failed        int64
	CacheHits     int64
	Discarded     int64
}

// GenerateSelectionReport formats the ordered selection as a markdown report.
// Headers may be nil for logs that survived under the empty policy.
func GenerateSelectionReport(selected []eventlog.Descriptor, headers map[string]*eventlog.HeaderInfo, policy criteria.FilterPolicy, summary RunSummary) string {
	var sb strings.Builder

	timestamp := time.Now().Format(time.RFC1123)

	// Header
	sb.WriteString("# Event Log Selection Report\n\n")
	sb.WriteString(fmt.Sprintf("**Date:** %s  \n", timestamp))
	sb.WriteString(fmt.Sprintf("**Run:** `%s`  \n", summary.RunID))
	sb.WriteString(fmt.Sprintf("**Filter:** %s  \n", policy.Describe()))
	sb.WriteString(fmt.Sprintf("**Selected:** %d of %d discovered\n\n", len(selected), summary.Discovered))

	// Selection table
	sb.WriteString("## Selected Event Logs\n\n")
	if len(selected) == 0 {
		sb.WriteString("No event logs survived the filter.\n\n")
	} else {
		sb.WriteString("| # | Path | App ID | App Name | Start Time |\n")
		sb.WriteString("|---|------|--------|----------|------------|\n")
		for i, d := range selected {
			appID, appName, start := "-", "-", "-"
			if h := headers[d.Path]; h != nil {
				appID, appName = h.AppID, h.AppName
				start = h.StartTime.UTC().Format(time.RFC3339)
			}
			sb.WriteString(fmt.Sprintf("| %d | `%s` | %s | %s | %s |\n", i+1, d.Path, appID, appName, start))
		}
		sb.WriteString("\n")
	}

	// Statistics Section
	sb.WriteString("## Scan Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Discovered Logs | %d |\n", summary.Discovered))
	sb.WriteString(fmt.Sprintf("| Headers Extracted | %d |\n", summary.Scanned))
	sb.WriteString(fmt.Sprintf("| Headers Missing | %d |\n", summary.MissingHeader))
	sb.WriteString(fmt.Sprintf("| Scan Failures | %d |\n", summary.Failed))
	sb.WriteString(fmt.Sprintf("| Cache Hits | %d |\n", summary.CacheHits))
	if summary.Discarded > 0 {
		sb.WriteString(fmt.Sprintf("| Discarded (timeout) | %d |\n", summary.Discarded))
	}

	return sb.String()
}

// SaveReport writes a report under the reports directory and returns the file path.
func SaveReport(content string, cfg *config.Config, runID string) (string, error) {
	if err := os.MkdirAll(cfg.Output.ReportsDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	// Filename: YYYY-MM-DD_HH-MM-SS_<run>.md
	filename := fmt.Sprintf("%s_%s.md", time.Now().Format("2006-01-02_15-04-05"), sanitize.Name(runID))
	path := filepath.Join(cfg.Output.ReportsDir, filename)

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}

	return path, nil
}
