// Package eventlog defines the event-log value types and header extraction.
package eventlog

import "time"

// Descriptor identifies a single discovered event-log file.
// Index is the discovery index assigned by the resolver; it is the stable
// tie-break key for all downstream ordering. Two descriptors are the same
// log iff their Path is equal.
type Descriptor struct {
	Path    string
	ModTime time.Time
	Size    int64
	Index   int
}

// HeaderInfo is the minimal application metadata extracted from the head of
// an event log without fully parsing it.
type HeaderInfo struct {
	AppID     string
	AppName   string
	StartTime time.Time
}

// ScanResult pairs a descriptor with its extracted header.
// Header is nil when the log is incomplete, corrupt, or unreadable.
type ScanResult struct {
	Descriptor Descriptor
	Header     *HeaderInfo
}

// HasHeader reports whether header metadata was extracted for this result.
func (r ScanResult) HasHeader() bool {
	return r.Header != nil
}
