// Package selection reduces scan results to the final ordered selection.
package selection

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/zorak1103/logsieve/internal/criteria"
	"github.com/zorak1103/logsieve/internal/eventlog"
)

// Engine applies a filter policy to a set of scan results. Pure except for
// logging; the output sequence is the only effect.
type Engine struct {
	log logrus.FieldLogger
}

// NewEngine creates a selection engine with the given logger.
func NewEngine(log logrus.FieldLogger) *Engine {
	return &Engine{log: log}
}

// Select filters results by policy and returns the surviving descriptors.
//
// Ordering rules: non-ranked policies preserve discovery order; ranked
// policies order by application start time (direction per the policy) with
// ties broken by discovery order. Arrival order of results never matters.
//
// Results without header metadata cannot satisfy any header-dependent
// predicate; they survive only under the empty policy.
func (e *Engine) Select(results []eventlog.ScanResult, policy criteria.FilterPolicy) []eventlog.Descriptor {
	switch policy.Kind {
	case criteria.PolicyNameMatch:
		return descriptors(byDiscoveryOrder(e.matchName(results, policy.Substring, policy.Negate)))

	case criteria.PolicyTimeBound:
		kept := filter(withHeader(results), func(r eventlog.ScanResult) bool {
			return !r.Header.StartTime.Before(policy.MinStartTime)
		})
		e.logDropped(results, kept, policy)
		return descriptors(byDiscoveryOrder(kept))

	case criteria.PolicyRankedTakeN:
		return descriptors(e.rank(withHeader(results), policy.N, policy.Order))

	case criteria.PolicyRankedTakeNWithNameMatch:
		matched := e.matchName(results, policy.Substring, policy.Negate)
		return descriptors(e.rank(matched, policy.N, policy.Order))

	default: // PolicyNone keeps everything, headerless logs included
		return descriptors(byDiscoveryOrder(results))
	}
}

// matchName keeps the header-present results whose application name contains
// the substring (case-sensitive), inverted when negate is set.
func (e *Engine) matchName(results []eventlog.ScanResult, substring string, negate bool) []eventlog.ScanResult {
	var kept []eventlog.ScanResult
	for _, r := range withHeader(results) {
		if strings.Contains(r.Header.AppName, substring) != negate {
			kept = append(kept, r)
			continue
		}
		e.log.WithField("path", r.Descriptor.Path).
			Debugf("application %q does not satisfy the name filter", r.Header.AppName)
	}
	return kept
}

// rank sorts header-present results by start time in the requested direction
// and takes the first n. Ties keep discovery order. Fewer than n survivors is
// not an error.
func (e *Engine) rank(results []eventlog.ScanResult, n int, order criteria.Order) []eventlog.ScanResult {
	ranked := byDiscoveryOrder(results)
	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := ranked[i].Header.StartTime, ranked[j].Header.StartTime
		if order == criteria.OrderOldest {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// logDropped emits one summary line when a policy discarded results.
func (e *Engine) logDropped(all, kept []eventlog.ScanResult, policy criteria.FilterPolicy) {
	if dropped := len(all) - len(kept); dropped > 0 {
		e.log.Debugf("filter %q dropped %d of %d event logs", policy.Describe(), dropped, len(all))
	}
}

// withHeader returns the header-present subset.
func withHeader(results []eventlog.ScanResult) []eventlog.ScanResult {
	return filter(results, eventlog.ScanResult.HasHeader)
}

func filter(results []eventlog.ScanResult, keep func(eventlog.ScanResult) bool) []eventlog.ScanResult {
	out := make([]eventlog.ScanResult, 0, len(results))
	for _, r := range results {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// byDiscoveryOrder returns a copy sorted by discovery index. The scan result
// set arrives in completion order, which carries no meaning.
func byDiscoveryOrder(results []eventlog.ScanResult) []eventlog.ScanResult {
	out := make([]eventlog.ScanResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Descriptor.Index < out[j].Descriptor.Index
	})
	return out
}

func descriptors(results []eventlog.ScanResult) []eventlog.Descriptor {
	out := make([]eventlog.Descriptor, len(results))
	for i, r := range results {
		out[i] = r.Descriptor
	}
	return out
}
