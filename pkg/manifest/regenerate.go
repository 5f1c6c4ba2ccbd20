package manifest

import (
	"io/fs"
	"path/filepath"
	"time"

	"github.com/arthur-debert/cogsync/pkg/fingerprint"
	"github.com/arthur-debert/cogsync/pkg/fsops"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/arthur-debert/cogsync/pkg/types"
)

// TemplateLookup resolves an installed path to its template file.
type TemplateLookup interface {
	ResolvePath(rel string) (string, types.Category, bool)
}

// RegenerateOptions carries everything the full-tree pass needs.
type RegenerateOptions struct {
	// InstalledTree is the absolute directory the manifest paths are relative to.
	InstalledTree string

	// SkipDir is the state directory (relative to InstalledTree) to leave out.
	SkipDir string

	// Previous is the manifest as left by reconciliation and discovery.
	Previous *types.Manifest

	// Written holds the paths the engine wrote during this run.
	Written map[string]bool

	// Templates is used to adopt untracked files. May be nil.
	Templates TemplateLookup

	Algorithm      fingerprint.Algorithm
	SourceLocation string
	Now            time.Time
}

// RegenerateResult describes how each path's recorded fingerprint was chosen.
type RegenerateResult struct {
	Manifest *types.Manifest

	// Adopted are untracked files that now have an entry.
	Adopted []string
	// CarriedMissing are tracked paths absent from disk, kept as-is.
	CarriedMissing []string
	// Omitted are untracked files that could not be fingerprinted.
	Omitted []string
}

// Regenerate walks the installed tree and builds the manifest to persist.
// Recorded fingerprints follow provenance, never the file's current bytes
// alone:
//
//	written this run          fresh fingerprint
//	tracked and present       previous recorded fingerprint
//	tracked and missing       previous entry carried forward
//	untracked, not written    template fingerprint if a template exists,
//	                          else the current fingerprint
//	fingerprint failure       previous entry if any, else omitted
func Regenerate(opts RegenerateOptions) (*RegenerateResult, error) {
	logger := logging.GetLogger("manifest.regenerate")

	prev := opts.Previous
	if prev == nil {
		prev = &types.Manifest{}
	}
	algo := opts.Algorithm
	if algo == "" {
		algo = fingerprint.Default
	}

	out := &types.Manifest{
		FrameworkVersion: prev.FrameworkVersion,
		InstalledAt:      prev.InstalledAt,
		SyncedAt:         opts.Now,
		SourceLocation:   prev.SourceLocation,
		Selection:        prev.Selection,
	}
	if opts.SourceLocation != "" {
		out.SourceLocation = opts.SourceLocation
	}
	if out.InstalledAt.IsZero() {
		out.InstalledAt = opts.Now
	}

	recorded := make(map[string]types.ManifestEntry, len(prev.Entries))
	for _, e := range prev.Entries {
		recorded[e.Path] = e
	}
	seen := make(map[string]bool, len(prev.Entries))
	result := &RegenerateResult{}
	skip := filepath.ToSlash(filepath.Clean(opts.SkipDir))

	err := filepath.WalkDir(opts.InstalledTree, func(path string, d fs.DirEntry, walkErr error) error {
		rel, relErr := filepath.Rel(opts.InstalledTree, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if walkErr != nil {
			if rel == "." {
				return walkErr
			}
			// An unreadable directory loses nothing: tracked entries below
			// it are carried forward as unseen.
			logger.Warn().Err(walkErr).Str("path", rel).Msg("Skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if rel != "." && skip != "" && skip != "." && rel == skip {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || fsops.IsTempFile(rel) {
			return nil
		}

		seen[rel] = true
		prevEntry, tracked := recorded[rel]

		if tracked && !opts.Written[rel] {
			out.Entries = append(out.Entries, prevEntry)
			return nil
		}

		current, fpErr := fingerprint.File(algo, path)
		if fpErr != nil {
			if tracked {
				logger.Warn().Err(fpErr).Str("path", rel).Msg("Cannot fingerprint written file, keeping previous entry")
				out.Entries = append(out.Entries, prevEntry)
			} else {
				logger.Warn().Err(fpErr).Str("path", rel).Msg("Cannot fingerprint untracked file, leaving it out of the manifest")
				result.Omitted = append(result.Omitted, rel)
			}
			return nil
		}

		if opts.Written[rel] {
			out.Entries = append(out.Entries, types.ManifestEntry{Path: rel, Fingerprint: current})
			return nil
		}

		adopted := current
		if opts.Templates != nil {
			if tmpl, _, ok := opts.Templates.ResolvePath(rel); ok {
				if latest, err := fingerprint.File(algo, tmpl); err == nil {
					adopted = latest
				}
			}
		}
		logger.Debug().
			Str("path", rel).
			Str("fingerprint", adopted.Short()).
			Bool("matchesTemplate", adopted.Equal(current)).
			Msg("Adopting untracked file")
		out.Entries = append(out.Entries, types.ManifestEntry{Path: rel, Fingerprint: adopted})
		result.Adopted = append(result.Adopted, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, e := range prev.Entries {
		if seen[e.Path] {
			continue
		}
		out.Entries = append(out.Entries, e)
		result.CarriedMissing = append(result.CarriedMissing, e.Path)
	}

	out.Sort()
	result.Manifest = out

	logger.Info().
		Int("entries", len(out.Entries)).
		Int("adopted", len(result.Adopted)).
		Int("carriedMissing", len(result.CarriedMissing)).
		Int("omitted", len(result.Omitted)).
		Msg("Manifest regenerated")
	return result, nil
}
