package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zorak1103/logsieve/internal/eventlog"
)

func testDescriptor(path string) eventlog.Descriptor {
	return eventlog.Descriptor{
		Path:    path,
		Size:    1024,
		ModTime: time.Unix(1000, 0),
	}
}

func testHeader() *eventlog.HeaderInfo {
	return &eventlog.HeaderInfo{
		AppID:     "app-1",
		AppName:   "etl-daily",
		StartTime: time.Unix(500, 0),
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		setupFile func(string) error
		wantErr   bool
		wantCount int
	}{
		{
			name: "non-existent file returns empty cache",
			setupFile: func(_ string) error {
				return nil // Don't create file
			},
			wantErr:   false,
			wantCount: 0,
		},
		{
			name: "valid file loads correctly",
			setupFile: func(path string) error {
				c := &Cache{Version: "1", Entries: map[string]*Entry{}, filePath: path, modified: true}
				c.Store(testDescriptor("/logs/a"), testHeader())
				return c.Save()
			},
			wantErr:   false,
			wantCount: 1,
		},
		{
			name: "invalid JSON returns error",
			setupFile: func(path string) error {
				return os.WriteFile(path, []byte("invalid json"), 0o600)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "headercache.json")
			if err := tt.setupFile(path); err != nil {
				t.Fatalf("setup failed: %v", err)
			}

			c, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if c.Count() != tt.wantCount {
				t.Errorf("Count() = %d, want %d", c.Count(), tt.wantCount)
			}
		})
	}
}

func TestCache_StoreAndLookup(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "headercache.json"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	desc := testDescriptor("/logs/a")
	c.Store(desc, testHeader())

	header, ok := c.Lookup(desc.Path, desc.Size, desc.ModTime)
	if !ok {
		t.Fatal("Lookup() miss for freshly stored entry")
	}
	if header.AppID != "app-1" || header.AppName != "etl-daily" {
		t.Errorf("Lookup() returned wrong header: %+v", header)
	}
	if !header.StartTime.Equal(time.Unix(500, 0)) {
		t.Errorf("Lookup() start time = %v", header.StartTime)
	}
}

func TestCache_LookupMisses(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "headercache.json"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	desc := testDescriptor("/logs/a")
	c.Store(desc, testHeader())

	tests := []struct {
		name    string
		path    string
		size    int64
		modTime time.Time
	}{
		{name: "unknown path", path: "/logs/b", size: desc.Size, modTime: desc.ModTime},
		{name: "size changed", path: desc.Path, size: desc.Size + 1, modTime: desc.ModTime},
		{name: "mtime changed", path: desc.Path, size: desc.Size, modTime: desc.ModTime.Add(time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := c.Lookup(tt.path, tt.size, tt.modTime); ok {
				t.Error("Lookup() hit, want miss")
			}
		})
	}
}

func TestCache_AbsentHeaderIsNotCached(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "headercache.json"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	c.Store(testDescriptor("/logs/a"), nil)

	if c.Count() != 0 {
		t.Errorf("Count() = %d, want 0", c.Count())
	}
}

func TestCache_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headercache.json")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	desc := testDescriptor("/logs/a")
	c.Store(desc, testHeader())
	if err := c.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	header, ok := reloaded.Lookup(desc.Path, desc.Size, desc.ModTime)
	if !ok {
		t.Fatal("Lookup() miss after reload")
	}
	if header.AppName != "etl-daily" {
		t.Errorf("AppName = %q after reload", header.AppName)
	}
}

func TestCache_SaveWithoutChangesIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headercache.json")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := c.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// No modification: no file should have been created.
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("Save() wrote a file despite no modifications")
	}
}

func TestCache_Prune(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "headercache.json"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	c.Store(testDescriptor("/logs/fresh"), testHeader())
	c.Entries["/logs/stale"] = &Entry{
		Size:      1,
		ModTime:   time.Unix(0, 0),
		AppID:     "old",
		ScannedAt: time.Now().Add(-48 * time.Hour),
	}

	removed := c.Prune(24 * time.Hour)

	if removed != 1 {
		t.Errorf("Prune() removed = %d, want 1", removed)
	}
	if c.Count() != 1 {
		t.Errorf("Count() = %d after prune, want 1", c.Count())
	}
	if _, exists := c.Entries["/logs/fresh"]; !exists {
		t.Error("fresh entry was pruned")
	}
}

func TestCache_Remove(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "headercache.json"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	desc := testDescriptor("/logs/a")
	c.Store(desc, testHeader())
	c.Remove(desc.Path)

	if c.Count() != 0 {
		t.Errorf("Count() = %d after remove, want 0", c.Count())
	}
}

func TestCache_AllReturnsCopies(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "headercache.json"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	c.Store(testDescriptor("/logs/a"), testHeader())

	all := c.All()
	all["/logs/a"].AppName = "mutated"

	header, ok := c.Lookup("/logs/a", 1024, time.Unix(1000, 0))
	if !ok {
		t.Fatal("Lookup() miss")
	}
	if header.AppName != "etl-daily" {
		t.Error("All() exposed internal entries")
	}
}
