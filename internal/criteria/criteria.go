// Package criteria parses string-encoded filter criteria into typed policies.
// Parsing happens once at the CLI boundary; nothing downstream re-parses.
package criteria

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/zorak1103/logsieve/internal/errors"
)

// Order selects the ranking direction for take-N policies.
type Order int

const (
	// OrderNewest keeps the applications with the most recent start times.
	OrderNewest Order = iota
	// OrderOldest keeps the applications with the earliest start times.
	OrderOldest
)

// String returns the criteria-string spelling of the order.
func (o Order) String() string {
	if o == OrderOldest {
		return "oldest"
	}
	return "newest"
}

// Kind discriminates the FilterPolicy variants.
type Kind int

const (
	// PolicyNone keeps every discovered log, header or not.
	PolicyNone Kind = iota
	// PolicyNameMatch keeps logs whose application name contains (or, negated,
	// does not contain) a substring.
	PolicyNameMatch
	// PolicyTimeBound keeps logs whose application started at or after a bound.
	PolicyTimeBound
	// PolicyRankedTakeN keeps the N newest or oldest logs by start time.
	PolicyRankedTakeN
	// PolicyRankedTakeNWithNameMatch restricts by name first, then ranks.
	PolicyRankedTakeNWithNameMatch
)

// FilterPolicy is the validated, typed form of the CLI filter flags.
// Constructed once per run by BuildPolicy; immutable thereafter. Only the
// fields relevant to Kind are meaningful.
type FilterPolicy struct {
	Kind         Kind
	Substring    string
	Negate       bool
	MinStartTime time.Time
	N            int
	Order        Order
}

// negatePrefix on a match substring inverts the match.
const negatePrefix = "~"

var (
	rankCriteriaRe = regexp.MustCompile(`^(\d+)-(newest|oldest)$`)
	timeBoundRe    = regexp.MustCompile(`^(\d+)(min|h|d|w|m)?$`)
)

// ParseRankCriteria parses a criteria string of the form
// "<positive-integer>-{newest|oldest}" (e.g. "20-newest").
func ParseRankCriteria(s string) (int, Order, error) {
	m := rankCriteriaRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, OrderNewest, &apperrors.ConfigurationError{
			Flag:  "--filter-criteria",
			Value: s,
			Err:   errors.New("expected the form <count>-newest or <count>-oldest"),
		}
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, OrderNewest, &apperrors.ConfigurationError{
			Flag:  "--filter-criteria",
			Value: s,
			Err:   errors.New("count must be a positive integer"),
		}
	}

	order := OrderNewest
	if m[2] == "oldest" {
		order = OrderOldest
	}
	return n, order, nil
}

// ParseTimeBound parses a period string of the form "<positive-integer>[unit]"
// with unit one of min, h, d, w, m (months). The unit defaults to days when
// omitted. The returned instant is "now minus the period"; now is sampled
// once per call.
func ParseTimeBound(s string) (time.Time, error) {
	return parseTimeBoundAt(s, time.Now())
}

// parseTimeBoundAt is ParseTimeBound against an explicit reference instant.
func parseTimeBoundAt(s string, now time.Time) (time.Time, error) {
	m := timeBoundRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, &apperrors.ConfigurationError{
			Flag:  "--min-start",
			Value: s,
			Err:   errors.New("expected <count>[unit] with unit one of min, h, d, w, m (default d)"),
		}
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return time.Time{}, &apperrors.ConfigurationError{
			Flag:  "--min-start",
			Value: s,
			Err:   errors.New("period count must be a positive integer"),
		}
	}

	unit := m[2]
	if unit == "" {
		unit = "d"
	}

	switch unit {
	case "min":
		return now.Add(-time.Duration(n) * time.Minute), nil
	case "h":
		return now.Add(-time.Duration(n) * time.Hour), nil
	case "d":
		return now.AddDate(0, 0, -n), nil
	case "w":
		return now.AddDate(0, 0, -7*n), nil
	case "m":
		return now.AddDate(0, -n, 0), nil
	default:
		// Unreachable while the regexp and this switch agree on the unit set.
		return time.Time{}, &apperrors.ConfigurationError{
			Flag:  "--min-start",
			Value: s,
			Err:   fmt.Errorf("unknown unit %q, allowed units are min, h, d, w, m", unit),
		}
	}
}

// BuildPolicy combines the three CLI filter strings into a single policy.
//
// A leading "~" on matchSpec negates the substring match. A match substring
// and a rank criteria combine into the explicit combined policy; a time bound
// is mutually exclusive with a rank criteria. Empty strings mean the
// corresponding filter is not requested.
func BuildPolicy(matchSpec, rankSpec, timeBoundSpec string) (FilterPolicy, error) {
	if rankSpec != "" && timeBoundSpec != "" {
		return FilterPolicy{}, &apperrors.ConfigurationError{
			Flag:  "--min-start",
			Value: timeBoundSpec,
			Err:   errors.New("a start-time bound cannot be combined with a ranked filter criteria"),
		}
	}
	if matchSpec != "" && timeBoundSpec != "" {
		return FilterPolicy{}, &apperrors.ConfigurationError{
			Flag:  "--min-start",
			Value: timeBoundSpec,
			Err:   errors.New("a start-time bound cannot be combined with an application name match"),
		}
	}

	substring, negate := splitMatchSpec(matchSpec)

	switch {
	case rankSpec != "" && matchSpec != "":
		n, order, err := ParseRankCriteria(rankSpec)
		if err != nil {
			return FilterPolicy{}, err
		}
		return FilterPolicy{
			Kind:      PolicyRankedTakeNWithNameMatch,
			Substring: substring,
			Negate:    negate,
			N:         n,
			Order:     order,
		}, nil

	case rankSpec != "":
		n, order, err := ParseRankCriteria(rankSpec)
		if err != nil {
			return FilterPolicy{}, err
		}
		return FilterPolicy{Kind: PolicyRankedTakeN, N: n, Order: order}, nil

	case matchSpec != "":
		return FilterPolicy{Kind: PolicyNameMatch, Substring: substring, Negate: negate}, nil

	case timeBoundSpec != "":
		minStart, err := ParseTimeBound(timeBoundSpec)
		if err != nil {
			return FilterPolicy{}, err
		}
		return FilterPolicy{Kind: PolicyTimeBound, MinStartTime: minStart}, nil

	default:
		return FilterPolicy{Kind: PolicyNone}, nil
	}
}

// splitMatchSpec strips the negation prefix from a match substring.
func splitMatchSpec(spec string) (substring string, negate bool) {
	if strings.HasPrefix(spec, negatePrefix) {
		return strings.TrimPrefix(spec, negatePrefix), true
	}
	return spec, false
}

// Describe renders the policy for log output and reports.
func (p FilterPolicy) Describe() string {
	switch p.Kind {
	case PolicyNameMatch:
		if p.Negate {
			return fmt.Sprintf("app name not containing %q", p.Substring)
		}
		return fmt.Sprintf("app name containing %q", p.Substring)
	case PolicyTimeBound:
		return fmt.Sprintf("app started at or after %s", p.MinStartTime.Format(time.RFC3339))
	case PolicyRankedTakeN:
		return fmt.Sprintf("%d %s by start time", p.N, p.Order)
	case PolicyRankedTakeNWithNameMatch:
		match := fmt.Sprintf("containing %q", p.Substring)
		if p.Negate {
			match = fmt.Sprintf("not containing %q", p.Substring)
		}
		return fmt.Sprintf("%d %s by start time, app name %s", p.N, p.Order, match)
	default:
		return "all discovered event logs"
	}
}
