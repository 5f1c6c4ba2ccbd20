// Package reconcile applies the three-way decision matrix to every tracked
// file of an installation.
//
// For each manifest entry the installed bytes (current) are compared with
// the template bytes (latest) and the fingerprint recorded when the engine
// last wrote the file (recorded):
//
//	latest == current                    unchanged
//	latest != current, recorded == current  updated (template copied in)
//	latest != current, recorded != current  conflict, file preserved
//
// Missing installed files and files without a template are reported and
// left alone. Nothing is ever deleted.
package reconcile

import (
	"context"
	"fmt"
	"os"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/fingerprint"
	"github.com/arthur-debert/cogsync/pkg/fsops"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/rs/zerolog"
)

// Resolver locates the template file for an installed path.
type Resolver interface {
	Resolve(rel string, category types.Category) (string, bool)
}

// Installed maps manifest paths to absolute installed paths.
type Installed interface {
	Installed(rel string) string
}

// Options configures a Reconciler.
type Options struct {
	Layout    Installed
	Resolver  Resolver
	Writer    fsops.Writer
	Algorithm fingerprint.Algorithm
	DryRun    bool
}

// Reconciler runs the decision matrix.
type Reconciler struct {
	opts   Options
	logger zerolog.Logger
}

// Result is what a reconciliation pass produced.
type Result struct {
	Items []types.Item
	// Written holds the paths whose bytes were replaced this pass.
	Written map[string]bool
}

// New creates a Reconciler.
func New(opts Options) *Reconciler {
	if opts.Algorithm == "" {
		opts.Algorithm = fingerprint.Default
	}
	if opts.Writer == nil {
		opts.Writer = fsops.New()
	}
	return &Reconciler{
		opts:   opts,
		logger: logging.GetLogger("reconcile"),
	}
}

// Run reconciles every entry of m, in order. Safe updates rewrite the
// entry's recorded fingerprint in m; no entry is ever added or removed.
// ctx is checked between entries only.
func (r *Reconciler) Run(ctx context.Context, m *types.Manifest) (*Result, error) {
	result := &Result{Written: make(map[string]bool)}

	for i := range m.Entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		item := r.reconcileEntry(ctx, &m.Entries[i])
		if item.Outcome == types.OutcomeUpdated && !r.opts.DryRun {
			result.Written[item.Path] = true
		}
		result.Items = append(result.Items, item)
	}

	r.logger.Debug().
		Int("entries", len(m.Entries)).
		Int("written", len(result.Written)).
		Bool("dryRun", r.opts.DryRun).
		Msg("Reconciliation pass complete")
	return result, nil
}

func (r *Reconciler) reconcileEntry(ctx context.Context, entry *types.ManifestEntry) types.Item {
	category := types.Classify(entry.Path)
	item := types.Item{
		Path:     entry.Path,
		Category: category,
		Recorded: entry.Fingerprint,
	}
	logger := r.logger.With().Str("path", entry.Path).Str("category", category.String()).Logger()
	installed := r.opts.Layout.Installed(entry.Path)

	info, err := os.Stat(installed)
	switch {
	case os.IsNotExist(err):
		logger.Warn().Msg("Tracked file missing, not recreating")
		item.Outcome = types.OutcomeMissing
		item.Message = "tracked file missing; left absent"
		return item
	case err != nil:
		return r.fail(logger, item, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", entry.Path))
	case !info.Mode().IsRegular():
		return r.fail(logger, item, errors.Newf(errors.ErrFileAccess, "%s is not a regular file", entry.Path))
	}

	tmpl, found := r.opts.Resolver.Resolve(entry.Path, category)
	if !found {
		logger.Info().Msg("No template source, leaving as-is")
		item.Outcome = types.OutcomeLocal
		item.Message = "no template source, leaving as-is"
		return item
	}
	item.Template = tmpl

	algo := fingerprint.Matching(entry.Fingerprint, r.opts.Algorithm)
	current, err := fingerprint.File(algo, installed)
	if err != nil {
		return r.fail(logger, item, err)
	}
	item.Current = current

	latest, err := fingerprint.File(algo, tmpl)
	if err != nil {
		return r.fail(logger, item, err)
	}
	item.Latest = latest

	recordedMatches := entry.Fingerprint.Equal(current)

	switch {
	case latest.Equal(current):
		logger.Debug().Bool("recordedMatches", recordedMatches).Msg("Unchanged")
		item.Outcome = types.OutcomeUnchanged
		return item

	case recordedMatches:
		if r.opts.DryRun {
			logger.Info().Str("latest", latest.Short()).Msg("Would update from template")
			item.Outcome = types.OutcomeUpdated
			item.Message = "would update from template"
			return item
		}
		if err := r.opts.Writer.CopyFile(ctx, tmpl, installed, fsops.KeepMode); err != nil {
			return r.fail(logger, item, err)
		}
		entry.Fingerprint = latest
		logger.Info().
			Str("from", current.Short()).
			Str("to", latest.Short()).
			Msg("Updated from template")
		item.Outcome = types.OutcomeUpdated
		item.Message = "updated from template"
		return item

	default:
		logger.Warn().
			Str("installed", current.Short()).
			Str("template", latest.Short()).
			Str("recorded", entry.Fingerprint.Short()).
			Msg("Local edits and template changes diverge, preserving installed file")
		item.Outcome = types.OutcomeConflict
		item.Message = fmt.Sprintf("installed %s and template %s both changed; compare manually: diff %s %s",
			current.Short(), latest.Short(), installed, tmpl)
		return item
	}
}

func (r *Reconciler) fail(logger zerolog.Logger, item types.Item, err error) types.Item {
	logger.Error().Err(err).Msg("Skipping file")
	item.Outcome = types.OutcomeError
	item.Error = err.Error()
	item.Message = string(errors.GetErrorCode(err))
	return item
}
