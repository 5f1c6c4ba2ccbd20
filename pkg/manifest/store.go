// Package manifest persists an installation's sync state and rebuilds it
// from the installed tree after each run.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/rs/zerolog"
	"github.com/tidwall/jsonc"
)

// Store reads and writes one manifest file.
type Store struct {
	path   string
	logger zerolog.Logger
}

// NewStore creates a store for the manifest at path.
func NewStore(path string) *Store {
	return &Store{
		path:   path,
		logger: logging.GetLogger("manifest"),
	}
}

// Path returns the manifest file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and decodes the manifest. A missing, unreadable or corrupt
// manifest is fatal for a run.
func (s *Store) Load() (*types.Manifest, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestRead, "cannot read manifest").
			WithDetail("path", s.path)
	}

	m, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "manifest is corrupt").
			WithDetail("path", s.path)
	}

	for _, p := range m.Dedupe() {
		s.logger.Warn().Str("path", p).Msg("Duplicate manifest entry, keeping the first")
	}
	for _, p := range dropUnsafe(m) {
		s.logger.Warn().Str("path", p).Msg("Ignoring manifest entry outside the installed tree")
	}

	s.logger.Debug().
		Str("manifest", s.path).
		Int("entries", len(m.Entries)).
		Msg("Manifest loaded")
	return m, nil
}

// Save writes the manifest atomically: encode to a temp file in the same
// directory, then rename over the old manifest.
func (s *Store) Save(m *types.Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite, "cannot encode manifest")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite, "cannot create manifest directory").
			WithDetail("path", dir)
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.tmp")
	if err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite, "cannot create temp manifest").
			WithDetail("path", dir)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, errors.ErrManifestWrite, "cannot write temp manifest")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, errors.ErrManifestWrite, "cannot sync temp manifest")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrManifestWrite, "cannot close temp manifest")
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrManifestWrite, "cannot chmod temp manifest")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return errors.Wrapf(err, errors.ErrManifestWrite, "cannot replace manifest").
			WithDetail("path", s.path)
	}

	s.logger.Debug().
		Str("manifest", s.path).
		Int("entries", len(m.Entries)).
		Msg("Manifest saved")
	return nil
}

// Decode parses manifest JSON. Comments and trailing commas are tolerated
// and unknown fields are ignored.
func Decode(data []byte) (*types.Manifest, error) {
	var m types.Manifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Encode renders the manifest with entries sorted by path.
func Encode(m *types.Manifest) ([]byte, error) {
	m.Sort()
	if m.Entries == nil {
		m.Entries = []types.ManifestEntry{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// dropUnsafe removes entries that are empty, absolute, or escape the
// installed tree. Such entries can never be reconciled safely.
func dropUnsafe(m *types.Manifest) []string {
	var dropped []string
	kept := m.Entries[:0]
	for _, e := range m.Entries {
		if e.Path == "" || e.Path == "." || strings.HasPrefix(e.Path, "/") ||
			e.Path == ".." || strings.HasPrefix(e.Path, "../") {
			dropped = append(dropped, e.Path)
			continue
		}
		kept = append(kept, e)
	}
	m.Entries = kept
	return dropped
}
