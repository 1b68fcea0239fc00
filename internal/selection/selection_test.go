package selection

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorak1103/logsieve/internal/criteria"
	"github.com/zorak1103/logsieve/internal/eventlog"
)

func testEngine() *Engine {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewEngine(log)
}

// result builds a header-present scan result. start is an epoch-second offset.
func result(index int, path, appName string, start int64) eventlog.ScanResult {
	return eventlog.ScanResult{
		Descriptor: eventlog.Descriptor{Path: path, Index: index},
		Header: &eventlog.HeaderInfo{
			AppID:     "app-" + path,
			AppName:   appName,
			StartTime: time.Unix(start, 0),
		},
	}
}

func headerless(index int, path string) eventlog.ScanResult {
	return eventlog.ScanResult{Descriptor: eventlog.Descriptor{Path: path, Index: index}}
}

func paths(descriptors []eventlog.Descriptor) []string {
	out := make([]string, len(descriptors))
	for i, d := range descriptors {
		out[i] = d.Path
	}
	return out
}

func TestSelect_NoneKeepsEverythingInDiscoveryOrder(t *testing.T) {
	// Arrival order deliberately scrambled: completion order must not matter.
	results := []eventlog.ScanResult{
		result(2, "c", "X", 300),
		headerless(0, "a"),
		result(1, "b", "Y", 200),
	}

	selected := testEngine().Select(results, criteria.FilterPolicy{Kind: criteria.PolicyNone})
	assert.Equal(t, []string{"a", "b", "c"}, paths(selected))
}

func TestSelect_NameMatch(t *testing.T) {
	results := []eventlog.ScanResult{
		result(0, "a", "etl-daily", 100),
		result(1, "b", "training", 200),
		result(2, "c", "etl-hourly", 300),
		headerless(3, "d"),
	}

	tests := []struct {
		name   string
		negate bool
		want   []string
	}{
		{name: "match", negate: false, want: []string{"a", "c"}},
		{name: "negated match", negate: true, want: []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := criteria.FilterPolicy{
				Kind:      criteria.PolicyNameMatch,
				Substring: "etl",
				Negate:    tt.negate,
			}
			selected := testEngine().Select(results, policy)
			assert.Equal(t, tt.want, paths(selected))
		})
	}
}

func TestSelect_NameMatchPartitionsHeaderPresentSubset(t *testing.T) {
	results := []eventlog.ScanResult{
		result(0, "a", "etl", 100),
		result(1, "b", "ml", 200),
		result(2, "c", "etl-2", 300),
		headerless(3, "d"),
	}
	engine := testEngine()

	match := engine.Select(results, criteria.FilterPolicy{Kind: criteria.PolicyNameMatch, Substring: "etl"})
	inverse := engine.Select(results, criteria.FilterPolicy{Kind: criteria.PolicyNameMatch, Substring: "etl", Negate: true})

	// Disjoint union equals the header-present subset.
	assert.Len(t, match, 2)
	assert.Len(t, inverse, 1)
	combined := append(paths(match), paths(inverse)...)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, combined)
}

func TestSelect_TimeBound(t *testing.T) {
	results := []eventlog.ScanResult{
		result(0, "old", "X", 100),
		result(1, "boundary", "Y", 200),
		result(2, "recent", "Z", 300),
		headerless(3, "unknown"),
	}

	policy := criteria.FilterPolicy{
		Kind:         criteria.PolicyTimeBound,
		MinStartTime: time.Unix(200, 0),
	}
	selected := testEngine().Select(results, policy)

	// Boundary is inclusive; headerless is dropped.
	assert.Equal(t, []string{"boundary", "recent"}, paths(selected))
}

func TestSelect_RankedTakeNewest(t *testing.T) {
	results := []eventlog.ScanResult{
		result(0, "a", "X", 100),
		result(1, "b", "Y", 200),
		result(2, "c", "X", 300),
	}

	policy := criteria.FilterPolicy{Kind: criteria.PolicyRankedTakeN, N: 2, Order: criteria.OrderNewest}
	selected := testEngine().Select(results, policy)

	require.Len(t, selected, 2)
	assert.Equal(t, []string{"c", "b"}, paths(selected))
}

func TestSelect_RankedTakeOldest(t *testing.T) {
	results := []eventlog.ScanResult{
		result(0, "a", "X", 300),
		result(1, "b", "Y", 100),
		result(2, "c", "Z", 200),
	}

	policy := criteria.FilterPolicy{Kind: criteria.PolicyRankedTakeN, N: 2, Order: criteria.OrderOldest}
	selected := testEngine().Select(results, policy)

	assert.Equal(t, []string{"b", "c"}, paths(selected))
}

func TestSelect_RankedTiesKeepDiscoveryOrder(t *testing.T) {
	// Same start time everywhere: output must be discovery order even though
	// arrival order is reversed.
	results := []eventlog.ScanResult{
		result(3, "d", "X", 100),
		result(2, "c", "X", 100),
		result(1, "b", "X", 100),
		result(0, "a", "X", 100),
	}

	policy := criteria.FilterPolicy{Kind: criteria.PolicyRankedTakeN, N: 4, Order: criteria.OrderNewest}
	selected := testEngine().Select(results, policy)

	assert.Equal(t, []string{"a", "b", "c", "d"}, paths(selected))
}

func TestSelect_RankedFewerThanNIsNotAnError(t *testing.T) {
	results := []eventlog.ScanResult{
		result(0, "a", "X", 100),
		headerless(1, "b"),
	}

	policy := criteria.FilterPolicy{Kind: criteria.PolicyRankedTakeN, N: 10, Order: criteria.OrderNewest}
	selected := testEngine().Select(results, policy)

	assert.Equal(t, []string{"a"}, paths(selected))
}

func TestSelect_RankedIsIdempotent(t *testing.T) {
	results := []eventlog.ScanResult{
		result(0, "a", "X", 100),
		result(1, "b", "Y", 300),
		result(2, "c", "Z", 200),
	}
	engine := testEngine()
	policy := criteria.FilterPolicy{Kind: criteria.PolicyRankedTakeN, N: 2, Order: criteria.OrderNewest}

	first := engine.Select(results, policy)

	// Re-apply to the survivors with the same and a larger n.
	survivors := make([]eventlog.ScanResult, 0, len(first))
	for _, r := range results {
		for _, d := range first {
			if r.Descriptor.Path == d.Path {
				survivors = append(survivors, r)
			}
		}
	}

	again := engine.Select(survivors, policy)
	assert.Equal(t, paths(first), paths(again))

	larger := engine.Select(survivors, criteria.FilterPolicy{Kind: criteria.PolicyRankedTakeN, N: 5, Order: criteria.OrderNewest})
	assert.Equal(t, paths(first), paths(larger))
}

func TestSelect_RankedWithNameMatch(t *testing.T) {
	results := []eventlog.ScanResult{
		result(0, "a", "etl-1", 100),
		result(1, "b", "training", 400),
		result(2, "c", "etl-2", 300),
		result(3, "d", "etl-3", 200),
	}

	policy := criteria.FilterPolicy{
		Kind:      criteria.PolicyRankedTakeNWithNameMatch,
		Substring: "etl",
		N:         2,
		Order:     criteria.OrderNewest,
	}
	selected := testEngine().Select(results, policy)

	// "training" never competes for a slot despite being the newest overall.
	assert.Equal(t, []string{"c", "d"}, paths(selected))
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	results := []eventlog.ScanResult{
		result(1, "b", "X", 200),
		result(0, "a", "X", 100),
	}

	_ = testEngine().Select(results, criteria.FilterPolicy{Kind: criteria.PolicyRankedTakeN, N: 1, Order: criteria.OrderNewest})

	assert.Equal(t, "b", results[0].Descriptor.Path, "input slice must not be reordered")
}
