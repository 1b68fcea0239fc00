// Package state manages the persistent header cache between runs.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zorak1103/logsieve/internal/eventlog"
)

// Cache is the persistent cache of extracted event-log headers. A repeated
// run skips re-reading the head of any log whose size and modification time
// are unchanged.
type Cache struct {
	Version     string            `json:"version"`
	LastUpdated time.Time         `json:"last_updated"`
	Entries     map[string]*Entry `json:"entries"`
	mu          sync.RWMutex      `json:"-"`
	filePath    string            `json:"-"`
	modified    bool              `json:"-"`
}

// Entry caches the header of a single event log, keyed by path.
// Size and ModTime invalidate the entry when the file changes.
type Entry struct {
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	AppID     string    `json:"app_id"`
	AppName   string    `json:"app_name"`
	StartTime time.Time `json:"start_time"`
	ScannedAt time.Time `json:"scanned_at"`
}

// Load loads the cache from a JSON file at the specified path.
// Returns an empty cache if the file doesn't exist.
// Returns error if the file cannot be read or parsed.
func Load(filePath string) (*Cache, error) {
	c := &Cache{
		Version:  "1",
		Entries:  make(map[string]*Entry),
		filePath: filePath,
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return c, nil
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- filePath is controlled by application, not user input
	if err != nil {
		return nil, fmt.Errorf("failed to read header cache from %s: %w", filePath, err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse header cache %s: %w", filePath, err)
	}

	c.filePath = filePath
	if c.Entries == nil {
		c.Entries = make(map[string]*Entry)
	}
	return c, nil
}

// Save saves the cache to its JSON file atomically.
// Uses a temporary file and rename operation to ensure atomic writes.
// Only saves if the cache has been modified since the last save.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.modified {
		return nil // No changes to save
	}

	c.LastUpdated = time.Now()

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal header cache for %s: %w", c.filePath, err)
	}

	// Atomic write: write to temp file, then rename
	dir := filepath.Dir(c.filePath)
	tmpFile, err := os.CreateTemp(dir, "headercache-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in directory %s for cache %s: %w", dir, c.filePath, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()    // Best effort cleanup
		_ = os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("failed to write temp file %s for cache %s: %w", tmpPath, c.filePath, err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()    // Best effort cleanup
		_ = os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("failed to sync temp file %s for cache %s: %w", tmpPath, c.filePath, err)
	}

	_ = tmpFile.Close() // Explicit ignore - we've already synced

	if err := os.Rename(tmpPath, c.filePath); err != nil {
		_ = os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("failed to rename temp file %s to %s: %w", tmpPath, c.filePath, err)
	}

	c.modified = false
	return nil
}

// Lookup returns the cached header for a log iff its size and modification
// time still match. A changed file is a miss, never stale data.
func (c *Cache) Lookup(path string, size int64, modTime time.Time) (*eventlog.HeaderInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.Entries[path]
	if !exists || entry.Size != size || !entry.ModTime.Equal(modTime) {
		return nil, false
	}

	return &eventlog.HeaderInfo{
		AppID:     entry.AppID,
		AppName:   entry.AppName,
		StartTime: entry.StartTime,
	}, true
}

// Store records an extracted header for a log.
// Marks the cache as modified requiring a save operation.
func (c *Cache) Store(desc eventlog.Descriptor, header *eventlog.HeaderInfo) {
	if header == nil {
		// Absent headers are not cached: an in-progress log may grow a header
		// by the next run even without a metadata change we can observe.
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.Entries[desc.Path] = &Entry{
		Size:      desc.Size,
		ModTime:   desc.ModTime,
		AppID:     header.AppID,
		AppName:   header.AppName,
		StartTime: header.StartTime,
		ScannedAt: time.Now(),
	}
	c.modified = true
}

// Prune removes entries last scanned more than maxAge ago and returns how
// many were removed.
func (c *Cache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for path, entry := range c.Entries {
		if entry.ScannedAt.Before(cutoff) {
			delete(c.Entries, path)
			removed++
		}
	}
	if removed > 0 {
		c.modified = true
	}
	return removed
}

// Remove deletes a single entry by path.
// Marks the cache as modified if the entry existed.
func (c *Cache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.Entries[path]; exists {
		delete(c.Entries, path)
		c.modified = true
	}
}

// Count returns the number of cached entries.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Entries)
}

// All returns a copy of the entries map for display purposes.
func (c *Cache) All() map[string]*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]*Entry, len(c.Entries))
	for path, entry := range c.Entries {
		cp := *entry
		out[path] = &cp
	}
	return out
}
