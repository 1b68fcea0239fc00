package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorak1103/logsieve/internal/criteria"
	"github.com/zorak1103/logsieve/internal/discovery"
	"github.com/zorak1103/logsieve/internal/eventlog"
	"github.com/zorak1103/logsieve/internal/scanner"
	"github.com/zorak1103/logsieve/internal/selection"
)

// writeEventLog writes a minimal event log whose application started at the
// given epoch-millisecond timestamp.
func writeEventLog(t *testing.T, dir, name, appName string, startMillis int64) string {
	t.Helper()
	content := fmt.Sprintf(
		`{"Event":"SparkListenerLogStart","Spark Version":"3.5.1"}
{"Event":"SparkListenerApplicationStart","App Name":%q,"App ID":"app-%s","Timestamp":%d,"User":"svc"}
`, appName, name, startMillis)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestPipeline_ResolveScanSelect drives the full resolve -> scan -> select
// sequence the scan command wires together, without going through cobra.
func TestPipeline_ResolveScanSelect(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	tmpDir := t.TempDir()
	writeEventLog(t, tmpDir, "first", "etl-daily", 100_000)
	writeEventLog(t, tmpDir, "second", "training", 200_000)
	writeEventLog(t, tmpDir, "third", "etl-hourly", 300_000)
	// A corrupt log must not abort the run.
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "corrupt"), []byte("\x00\x01\x02"), 0o600))

	resolver := discovery.NewResolver(log)
	descriptors, warnings := resolver.Resolve([]string{tmpDir, filepath.Join(tmpDir, "missing")})
	assert.Error(t, warnings, "the missing specifier should be reported")
	require.Len(t, descriptors, 4)

	sc, err := scanner.New(eventlog.NewFileExtractor(), scanner.Options{
		PoolSize:       4,
		Timeout:        10 * time.Second,
		HeaderRowLimit: 100,
	}, log)
	require.NoError(t, err)

	results := sc.Scan(context.Background(), descriptors)
	require.Len(t, results, 4)

	engine := selection.NewEngine(log)

	t.Run("two newest", func(t *testing.T) {
		policy, buildErr := criteria.BuildPolicy("", "2-newest", "")
		require.NoError(t, buildErr)

		selected := engine.Select(results, policy)
		require.Len(t, selected, 2)
		assert.Equal(t, filepath.Join(tmpDir, "third"), selected[0].Path)
		assert.Equal(t, filepath.Join(tmpDir, "second"), selected[1].Path)
	})

	t.Run("name match restricts ranking", func(t *testing.T) {
		policy, buildErr := criteria.BuildPolicy("etl", "1-newest", "")
		require.NoError(t, buildErr)

		selected := engine.Select(results, policy)
		require.Len(t, selected, 1)
		assert.Equal(t, filepath.Join(tmpDir, "third"), selected[0].Path)
	})

	t.Run("no policy keeps the corrupt log", func(t *testing.T) {
		selected := engine.Select(results, criteria.FilterPolicy{Kind: criteria.PolicyNone})
		assert.Len(t, selected, 4)
	})

	t.Run("name filter drops the corrupt log", func(t *testing.T) {
		policy, buildErr := criteria.BuildPolicy("e", "", "")
		require.NoError(t, buildErr)

		selected := engine.Select(results, policy)
		for _, d := range selected {
			assert.NotEqual(t, filepath.Join(tmpDir, "corrupt"), d.Path)
		}
	})
}
