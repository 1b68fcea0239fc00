// Package scanner runs header extraction over many event logs under a
// bounded worker pool with a global timeout.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/zorak1103/logsieve/internal/errors"
	"github.com/zorak1103/logsieve/internal/eventlog"
	"github.com/zorak1103/logsieve/internal/state"
)

// Options bound a single scan invocation.
type Options struct {
	// PoolSize is the fixed number of concurrent workers. Must be >= 1.
	PoolSize int

	// Timeout bounds the whole scan, submission included. Must be > 0.
	// On expiry, unsubmitted work is discarded and in-flight extractions are
	// cancelled; whatever results were collected so far are returned.
	Timeout time.Duration

	// HeaderRowLimit is how many event lines the extractor may read per log.
	// Must be >= 1.
	HeaderRowLimit int
}

// Stats counts per-run scan outcomes. Safe for concurrent access.
type Stats struct {
	Scanned       atomic.Int64 // results produced, header present
	MissingHeader atomic.Int64 // results produced, header absent
	Failed        atomic.Int64 // extraction errors and panics (header absent)
	CacheHits     atomic.Int64 // headers served from the cache
	Discarded     atomic.Int64 // tasks dropped by the timeout
}

// Scanner scans event-log candidates concurrently. The pool it runs is
// created, used, and torn down entirely inside one Scan call; a Scanner may
// be reused for sequential scans but never shares a pool between them.
type Scanner struct {
	extractor eventlog.HeaderExtractor
	cache     *state.Cache
	opts      Options
	log       logrus.FieldLogger
	stats     Stats
}

// New validates the options and creates a scanner.
// Pool size and timeout are fatal to get wrong; everything that can go wrong
// per log later is not.
func New(extractor eventlog.HeaderExtractor, opts Options, log logrus.FieldLogger) (*Scanner, error) {
	if extractor == nil {
		return nil, errors.New("scanner requires a header extractor")
	}
	if opts.PoolSize < 1 {
		return nil, &apperrors.ConfigurationError{
			Flag:  "--pool-size",
			Value: fmt.Sprintf("%d", opts.PoolSize),
			Err:   errors.New("worker pool size must be at least 1"),
		}
	}
	if opts.Timeout <= 0 {
		return nil, &apperrors.ConfigurationError{
			Flag:  "--timeout",
			Value: opts.Timeout.String(),
			Err:   errors.New("scan timeout must be positive"),
		}
	}
	if opts.HeaderRowLimit < 1 {
		return nil, &apperrors.ConfigurationError{
			Flag:  "--header-rows",
			Value: fmt.Sprintf("%d", opts.HeaderRowLimit),
			Err:   errors.New("header row limit must be at least 1"),
		}
	}
	return &Scanner{extractor: extractor, opts: opts, log: log}, nil
}

// WithCache attaches a header cache; a hit on (path, size, mtime)
// short-circuits extraction for that log.
func (s *Scanner) WithCache(cache *state.Cache) *Scanner {
	s.cache = cache
	return s
}

// Stats returns the scanner's outcome counters.
func (s *Scanner) Stats() *Stats {
	return &s.stats
}

// Scan submits one task per descriptor to a fixed pool of workers and drains
// the results, bounded by the configured timeout. Every submitted task yields
// exactly one ScanResult; per-log failures become absent headers. On timeout
// the partial result set is returned — never an error.
//
// Result order is arrival order and carries no meaning; callers order by
// discovery index.
func (s *Scanner) Scan(ctx context.Context, descriptors []eventlog.Descriptor) []eventlog.ScanResult {
	if len(descriptors) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	jobs := make(chan eventlog.Descriptor)
	// Buffered to the task count so workers never block on send and the
	// collector can drain after the pool is gone.
	results := make(chan eventlog.ScanResult, len(descriptors))

	var g errgroup.Group
	for i := 0; i < s.opts.PoolSize; i++ {
		g.Go(func() error {
			s.worker(ctx, jobs, results)
			return nil
		})
	}

	submitted := s.submit(ctx, descriptors, jobs)
	close(jobs)

	if err := g.Wait(); err != nil {
		// Workers never return errors; the task boundary swallows them.
		s.log.Errorf("scan pool reported an unexpected error: %v", err)
	}
	close(results)

	collected := make([]eventlog.ScanResult, 0, submitted)
	for r := range results {
		collected = append(collected, r)
	}

	if dropped := int64(len(descriptors) - len(collected)); dropped > 0 {
		s.log.Warnf("scan timed out after %s: %d of %d event logs were not scanned",
			s.opts.Timeout, dropped, len(descriptors))
	}

	return collected
}

// submit feeds descriptors to the pool until the deadline cuts it short.
func (s *Scanner) submit(ctx context.Context, descriptors []eventlog.Descriptor, jobs chan<- eventlog.Descriptor) int {
	for i, d := range descriptors {
		select {
		case jobs <- d:
		case <-ctx.Done():
			s.stats.Discarded.Add(int64(len(descriptors) - i))
			return i
		}
	}
	return len(descriptors)
}

// worker consumes jobs until the channel closes. Once the deadline passes,
// remaining jobs are drained without being scanned so the pool winds down
// promptly instead of blocking the submitter.
func (s *Scanner) worker(ctx context.Context, jobs <-chan eventlog.Descriptor, results chan<- eventlog.ScanResult) {
	for desc := range jobs {
		if ctx.Err() != nil {
			s.stats.Discarded.Inc()
			continue
		}
		results <- s.scanOne(ctx, desc)
	}
}

// scanOne produces exactly one result for a descriptor. The task boundary
// catches everything: an extraction error or panic becomes an absent header,
// never a pool-ending fault.
func (s *Scanner) scanOne(ctx context.Context, desc eventlog.Descriptor) (result eventlog.ScanResult) {
	result = eventlog.ScanResult{Descriptor: desc}

	defer func() {
		if p := recover(); p != nil {
			s.stats.Failed.Inc()
			s.log.WithField("path", desc.Path).Errorf("header extraction panicked: %v", p)
			result.Header = nil
		}
	}()

	if s.cache != nil {
		if header, ok := s.cache.Lookup(desc.Path, desc.Size, desc.ModTime); ok {
			s.stats.CacheHits.Inc()
			s.stats.Scanned.Inc()
			result.Header = header
			return result
		}
	}

	header, err := s.extractor.Extract(ctx, desc, s.opts.HeaderRowLimit)
	switch {
	case err != nil:
		s.stats.Failed.Inc()
		serr := &apperrors.ScanError{Path: desc.Path, Err: err}
		s.log.WithField("path", desc.Path).Warnf("treating event log as headerless: %v", serr)
	case header == nil:
		s.stats.MissingHeader.Inc()
		s.log.WithField("path", desc.Path).Debug("no application header within the row limit")
	default:
		s.stats.Scanned.Inc()
		if s.cache != nil {
			s.cache.Store(desc, header)
		}
	}

	result.Header = header
	return result
}
