package eventlog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fastjson"
)

const (
	// applicationStartEvent is the event type carrying the application header.
	applicationStartEvent = "SparkListenerApplicationStart"

	// inProgressSuffix marks an event log still being written by the engine.
	inProgressSuffix = ".inprogress"

	// maxLineBytes caps how far a single event line is read. Event headers are
	// small; anything beyond this is not a log we can extract a header from.
	maxLineBytes = 1 << 20
)

// HeaderExtractor reads just enough of an event log to produce its header
// metadata. Implementations must return (nil, nil) for logs whose header
// cannot be determined (truncated, corrupt, no start event within rowLimit)
// and reserve errors for I/O-level failures.
type HeaderExtractor interface {
	Extract(ctx context.Context, desc Descriptor, rowLimit int) (*HeaderInfo, error)
}

// FileExtractor extracts headers from event-log files on the local
// filesystem, transparently decompressing gzip, zstd, and snappy logs.
type FileExtractor struct{}

// Compile-time verification that FileExtractor implements HeaderExtractor
var _ HeaderExtractor = (*FileExtractor)(nil)

// NewFileExtractor returns a filesystem-backed header extractor.
func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

// Extract scans up to rowLimit event lines looking for the application start
// event. Malformed lines are skipped; a log with no start event within the
// limit yields (nil, nil).
func (e *FileExtractor) Extract(ctx context.Context, desc Descriptor, rowLimit int) (*HeaderInfo, error) {
	if rowLimit < 1 {
		return nil, fmt.Errorf("header row limit must be at least 1, got %d", rowLimit)
	}

	f, err := os.Open(desc.Path) // #nosec G304 -- path comes from our own discovery stage
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", desc.Path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file, close error not actionable

	reader, closeCodec, err := decompressed(f, desc.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open codec for %s: %w", desc.Path, err)
	}
	if closeCodec != nil {
		defer closeCodec()
	}

	return scanHeader(ctx, reader, rowLimit)
}

// decompressed wraps the raw file reader with the codec implied by the file
// extension. The ".inprogress" suffix is stripped before codec detection.
func decompressed(f io.Reader, path string) (io.Reader, func(), error) {
	name := strings.TrimSuffix(path, inProgressSuffix)

	switch filepath.Ext(name) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return gz, func() { _ = gz.Close() }, nil
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case ".snappy":
		return snappy.NewReader(f), nil, nil
	default:
		return f, nil, nil
	}
}

// scanHeader walks event lines until it finds the application start event or
// exhausts rowLimit. Lines that are not valid JSON are skipped, not fatal:
// partially written or garbled logs are expected under real clusters.
func scanHeader(ctx context.Context, r io.Reader, rowLimit int) (*HeaderInfo, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var parser fastjson.Parser

	for rows := 0; rows < rowLimit && scanner.Scan(); rows++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		v, err := parser.Parse(scanner.Text())
		if err != nil {
			continue
		}

		if string(v.GetStringBytes("Event")) != applicationStartEvent {
			continue
		}

		header := &HeaderInfo{
			AppID:     string(v.GetStringBytes("App ID")),
			AppName:   string(v.GetStringBytes("App Name")),
			StartTime: time.UnixMilli(v.GetInt64("Timestamp")),
		}
		if header.AppID == "" && header.AppName == "" {
			// Start event with no identifying fields: treat as absent.
			return nil, nil
		}
		return header, nil
	}

	// Scanner errors (binary garbage past the line cap, codec corruption mid
	// stream) mean the header is undeterminable, not that the run should fail.
	return nil, nil //nolint:nilnil // absent header is a valid outcome
}
