package types

import (
	"encoding/json"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/cogsync/pkg/fingerprint"
)

// Manifest is an installation's persisted sync state.
type Manifest struct {
	// FrameworkVersion is the template version the installation tracks.
	// Advisory only.
	FrameworkVersion string `json:"framework_version,omitempty"`

	// InstalledAt is set once by provisioning and carried over by every sync.
	InstalledAt time.Time `json:"installed_at,omitzero"`

	// SyncedAt is stamped on every run that saves the manifest.
	SyncedAt time.Time `json:"synced_at,omitzero"`

	// SourceLocation is where the template tree was last found.
	SourceLocation string `json:"source_location,omitempty"`

	// Selection is installation-specific configuration recorded at
	// provisioning time. Opaque to reconciliation; see DecodeSelection.
	Selection map[string]any `json:"selection,omitempty"`

	Entries []ManifestEntry `json:"files"`
}

// ManifestEntry is one tracked file.
type ManifestEntry struct {
	// Path is relative to the installed tree and always slash separated.
	Path string `json:"path"`

	// Fingerprint is the digest of the bytes the engine last considered
	// template-intended: set at provisioning, by a discovery copy, or by a
	// safe update. Never changed because the file changed by other means.
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
}

// UnmarshalJSON accepts the legacy "sha256" key written by older
// provisioning scripts.
func (e *ManifestEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Path        string `json:"path"`
		Fingerprint string `json:"fingerprint"`
		SHA256      string `json:"sha256"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Path = CleanPath(raw.Path)
	e.Fingerprint = fingerprint.Fingerprint(raw.Fingerprint)
	if e.Fingerprint.IsZero() && raw.SHA256 != "" {
		e.Fingerprint = fingerprint.Fingerprint(raw.SHA256).Normalize()
	}
	return nil
}

// CleanPath normalizes an installed relative path to slash form.
func CleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}

// Lookup returns the entry for path.
func (m *Manifest) Lookup(p string) (ManifestEntry, bool) {
	p = CleanPath(p)
	for _, e := range m.Entries {
		if e.Path == p {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

// Index returns a path -> position map over Entries.
func (m *Manifest) Index() map[string]int {
	idx := make(map[string]int, len(m.Entries))
	for i, e := range m.Entries {
		idx[e.Path] = i
	}
	return idx
}

// Set records fp for path, adding an entry if none exists.
func (m *Manifest) Set(p string, fp fingerprint.Fingerprint) {
	p = CleanPath(p)
	for i := range m.Entries {
		if m.Entries[i].Path == p {
			m.Entries[i].Fingerprint = fp
			return
		}
	}
	m.Entries = append(m.Entries, ManifestEntry{Path: p, Fingerprint: fp})
}

// Remove drops the entry for path and reports whether it existed.
func (m *Manifest) Remove(p string) bool {
	p = CleanPath(p)
	for i := range m.Entries {
		if m.Entries[i].Path == p {
			m.Entries = append(m.Entries[:i], m.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// Dedupe keeps the first entry for each path and returns the dropped paths.
func (m *Manifest) Dedupe() []string {
	seen := make(map[string]bool, len(m.Entries))
	kept := m.Entries[:0]
	var dropped []string
	for _, e := range m.Entries {
		e.Path = CleanPath(e.Path)
		if seen[e.Path] {
			dropped = append(dropped, e.Path)
			continue
		}
		seen[e.Path] = true
		kept = append(kept, e)
	}
	m.Entries = kept
	return dropped
}

// Sort orders entries by path.
func (m *Manifest) Sort() {
	sort.Slice(m.Entries, func(i, j int) bool {
		return m.Entries[i].Path < m.Entries[j].Path
	})
}

// Clone returns a deep copy of the manifest's entries and metadata.
// Selection values are shared.
func (m *Manifest) Clone() *Manifest {
	c := *m
	c.Entries = append([]ManifestEntry(nil), m.Entries...)
	if m.Selection != nil {
		c.Selection = make(map[string]any, len(m.Selection))
		for k, v := range m.Selection {
			c.Selection[k] = v
		}
	}
	return &c
}
