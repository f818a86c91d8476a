package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"sync"
)

// Manifest resolves asset versions. A path listed in the manifest file
// uses that version; otherwise the file's modification time is used when
// the file exists; otherwise the theme version.
type Manifest struct {
	mu           sync.RWMutex
	entries      map[string]string
	files        fs.FS
	themeVersion string
}

// NewManifest returns a Manifest reading files from fsys. fsys may be nil.
func NewManifest(fsys fs.FS, themeVersion string) *Manifest {
	return &Manifest{
		entries:      map[string]string{},
		files:        fsys,
		themeVersion: themeVersion,
	}
}

// Load replaces the entries with the JSON object in data.
func (m *Manifest) Load(data []byte) error {
	entries := map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("assets: parse manifest: %w", err)
		}
	}
	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
	return nil
}

// LoadFile reads name from the manifest's file system. A missing file
// leaves the manifest empty.
func (m *Manifest) LoadFile(name string) error {
	if m.files == nil {
		return m.Load(nil)
	}
	data, err := fs.ReadFile(m.files, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m.Load(nil)
		}
		return fmt.Errorf("assets: read manifest: %w", err)
	}
	return m.Load(data)
}

// Version implements Versioner.
func (m *Manifest) Version(path string) string {
	m.mu.RLock()
	v, ok := m.entries[path]
	m.mu.RUnlock()
	if ok {
		return v
	}
	if m.files != nil {
		if info, err := fs.Stat(m.files, path); err == nil && !info.ModTime().IsZero() {
			return strconv.FormatInt(info.ModTime().Unix(), 10)
		}
	}
	return m.themeVersion
}

// Len returns the number of manifest entries.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
