// Package discovery expands raw path specifiers into event-log descriptors.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	apperrors "github.com/zorak1103/logsieve/internal/errors"
	"github.com/zorak1103/logsieve/internal/eventlog"
)

// dateToken expands to a concrete date inside a specifier before matching:
// {DATE} is today, {DATE-n} is today minus n days, formatted 2006-01-02.
var dateToken = regexp.MustCompile(`\{DATE(?:-(\d+))?\}`)

const dateLayout = "2006-01-02"

// Resolver expands path specifiers (files, directories, glob patterns, date
// tokens) into descriptors. An invalid specifier yields zero descriptors and
// a warning; it never fails the run.
type Resolver struct {
	log logrus.FieldLogger
	now func() time.Time
}

// NewResolver creates a resolver with the given logger.
func NewResolver(log logrus.FieldLogger) *Resolver {
	return &Resolver{log: log, now: time.Now}
}

// Resolve expands every specifier and concatenates the results in specifier
// order, each specifier's own matches in provider-native order. Duplicate
// paths across specifiers are emitted once, first occurrence wins. Discovery
// indices are assigned 0..n-1 in emission order.
//
// The returned error aggregates per-specifier warnings; it is informational
// and never fatal — callers may ignore it.
func (r *Resolver) Resolve(specifiers []string) ([]eventlog.Descriptor, error) {
	var (
		descriptors []eventlog.Descriptor
		warnings    *multierror.Error
		seen        = make(map[string]bool)
	)

	for _, spec := range specifiers {
		expanded, err := r.expand(spec)
		if err != nil {
			derr := &apperrors.DiscoveryError{Specifier: spec, Err: err}
			r.log.WithField("specifier", spec).Warnf("skipping event log location: %v", err)
			warnings = multierror.Append(warnings, derr)
			continue
		}

		for _, d := range expanded {
			if seen[d.Path] {
				continue
			}
			seen[d.Path] = true
			d.Index = len(descriptors)
			descriptors = append(descriptors, d)
		}
	}

	return descriptors, warnings.ErrorOrNil()
}

// expand resolves a single specifier into zero or more descriptors.
func (r *Resolver) expand(spec string) ([]eventlog.Descriptor, error) {
	spec, err := r.expandDateTokens(spec)
	if err != nil {
		return nil, err
	}

	info, statErr := os.Stat(spec)
	switch {
	case statErr == nil && info.IsDir():
		return r.expandDir(spec)
	case statErr == nil:
		return []eventlog.Descriptor{describe(spec, info)}, nil
	case isPattern(spec):
		return r.expandGlob(spec)
	default:
		return nil, statErr
	}
}

// expandDir lists the direct regular-file children of a directory in
// provider-native (ReadDir) order. Hidden files are skipped; everything else
// is a candidate — the scanner decides whether it really is an event log.
func (r *Resolver) expandDir(dir string) ([]eventlog.Descriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var descriptors []eventlog.Descriptor
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, infoErr := entry.Info()
		if infoErr != nil {
			r.log.WithField("path", filepath.Join(dir, entry.Name())).
				Warnf("cannot stat directory entry: %v", infoErr)
			continue
		}
		descriptors = append(descriptors, describe(filepath.Join(dir, entry.Name()), info))
	}
	return descriptors, nil
}

// expandGlob matches a doublestar pattern against the filesystem.
func (r *Resolver) expandGlob(pattern string) ([]eventlog.Descriptor, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern: %w", err)
	}

	var descriptors []eventlog.Descriptor
	for _, m := range matches {
		info, statErr := os.Stat(m)
		if statErr != nil || info.IsDir() {
			continue
		}
		descriptors = append(descriptors, describe(m, info))
	}
	return descriptors, nil
}

// expandDateTokens substitutes {DATE} / {DATE-n} tokens with concrete dates.
func (r *Resolver) expandDateTokens(spec string) (string, error) {
	var tokenErr error
	expanded := dateToken.ReplaceAllStringFunc(spec, func(token string) string {
		m := dateToken.FindStringSubmatch(token)
		days := 0
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				tokenErr = fmt.Errorf("bad date token %s: %w", token, err)
				return token
			}
			days = n
		}
		return r.now().AddDate(0, 0, -days).Format(dateLayout)
	})
	return expanded, tokenErr
}

// isPattern reports whether the specifier contains glob metacharacters.
func isPattern(spec string) bool {
	return strings.ContainsAny(spec, "*?[{")
}

func describe(path string, info os.FileInfo) eventlog.Descriptor {
	return eventlog.Descriptor{
		Path:    path,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}
}
