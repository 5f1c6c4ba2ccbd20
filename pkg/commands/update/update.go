// Package update provides the sync run: reconcile every tracked file,
// discover new template files, then rebuild and save the manifest.
package update

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/cogsync/pkg/clock"
	"github.com/arthur-debert/cogsync/pkg/discovery"
	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/fingerprint"
	"github.com/arthur-debert/cogsync/pkg/fsops"
	"github.com/arthur-debert/cogsync/pkg/lock"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/arthur-debert/cogsync/pkg/manifest"
	"github.com/arthur-debert/cogsync/pkg/paths"
	"github.com/arthur-debert/cogsync/pkg/reconcile"
	"github.com/arthur-debert/cogsync/pkg/resolver"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/google/uuid"
)

// VersionFile at the template root names the template's version.
const VersionFile = "VERSION"

// UpdateOptions holds options for a sync run
type UpdateOptions struct {
	// Layout locates the installation. Required.
	Layout *paths.Layout

	// Source overrides the manifest's source location when set.
	Source string

	Algorithm fingerprint.Algorithm

	// DryRun computes every outcome without writing files, the manifest or
	// the lock.
	DryRun bool

	// LockStaleAfter overrides the default lock staleness.
	LockStaleAfter time.Duration

	// Command names the run in reports and the lock file.
	Command string

	Writer fsops.Writer
	Clock  clock.Clock
}

// Update runs one sync. Fatal conditions (manifest unreadable or corrupt,
// template root unreachable, installation locked) return an error before
// any write. Per-file problems are items in the returned report.
func Update(ctx context.Context, opts UpdateOptions) (*types.Report, error) {
	logger := logging.GetLogger("commands.update")

	if opts.Layout == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no installation layout")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Writer == nil {
		opts.Writer = fsops.New()
	}
	if opts.Algorithm == "" {
		opts.Algorithm = fingerprint.Default
	}
	if opts.Command == "" {
		opts.Command = "update"
	}

	began := time.Now()
	report := &types.Report{
		RunID:       uuid.NewString(),
		Command:     opts.Command,
		DryRun:      opts.DryRun,
		InstallRoot: opts.Layout.InstallRoot,
		StartedAt:   opts.Clock.Now(),
		Items:       []types.Item{},
	}
	logger = logger.With().Str("runID", report.RunID).Logger()

	store := manifest.NewStore(opts.Layout.ManifestPath())
	m, err := store.Load()
	if err != nil {
		logger.Error().Err(err).Msg("Cannot load manifest")
		return nil, err
	}

	source := ResolveSource(opts.Source, m.SourceLocation)
	report.SourceLocation = source

	sel, selErr := types.DecodeSelection(m.Selection)
	if selErr != nil {
		logger.Warn().Err(selErr).Msg("Unreadable selection metadata, skipping discovery")
	}
	packs := paths.ExtensionPackOrder(source, sel.ExtensionPacks(), len(m.Selection) > 0)
	res := resolver.New(source, packs)
	if err := res.CheckRoot(); err != nil {
		logger.Error().Err(err).Msg("Template root unreachable")
		return nil, err
	}

	if !opts.DryRun {
		runLock := lock.New(opts.Layout.LockPath())
		runLock.Clock = opts.Clock
		if opts.LockStaleAfter > 0 {
			runLock.StaleAfter = opts.LockStaleAfter
		}
		release, err := runLock.Acquire(opts.Command, report.RunID)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(); err != nil {
				logger.Warn().Err(err).Msg("Failed to release run lock")
			}
		}()

		// Pick up anything saved between the read-only checks and the lock
		if m, err = store.Load(); err != nil {
			return nil, err
		}

		if _, err := fsops.RemoveStaleTemps(opts.Layout.InstalledTree()); err != nil {
			logger.Warn().Err(err).Msg("Cannot sweep stale temp files")
		}
	}

	logger.Info().
		Str("install", opts.Layout.InstalledTree()).
		Str("source", source).
		Strs("packs", packs).
		Int("entries", len(m.Entries)).
		Bool("dryRun", opts.DryRun).
		Msg("Starting sync")

	rec := reconcile.New(reconcile.Options{
		Layout:    opts.Layout,
		Resolver:  res,
		Writer:    opts.Writer,
		Algorithm: opts.Algorithm,
		DryRun:    opts.DryRun,
	})
	recResult, runErr := rec.Run(ctx, m)
	report.Append(recResult.Items...)
	written := recResult.Written

	if runErr == nil && selErr == nil {
		disc := discovery.New(discovery.Options{
			Layout:    opts.Layout,
			Source:    source,
			Selection: sel,
			Packs:     sel.ExtensionPacks(),
			Writer:    opts.Writer,
			Algorithm: opts.Algorithm,
			DryRun:    opts.DryRun,
		})
		discResult, err := disc.Run(ctx, m)
		report.Append(discResult.Items...)
		for p := range discResult.Written {
			written[p] = true
		}
		runErr = err
	}

	if !opts.DryRun {
		// Save even after a cancel so completed writes are recorded
		regenDone := logging.LogOperationStart(logger, "regenerate manifest")
		regen, err := manifest.Regenerate(manifest.RegenerateOptions{
			InstalledTree:  opts.Layout.InstalledTree(),
			SkipDir:        opts.Layout.StateDir,
			Previous:       m,
			Written:        written,
			Templates:      res,
			Algorithm:      opts.Algorithm,
			SourceLocation: source,
			Now:            opts.Clock.Now(),
		})
		regenDone()
		if err != nil {
			return report, errors.Wrapf(err, errors.ErrManifestWrite, "cannot rebuild manifest")
		}
		if v := readTemplateVersion(source); v != "" {
			regen.Manifest.FrameworkVersion = v
		}
		if err := store.Save(regen.Manifest); err != nil {
			return report, err
		}
	}

	report.Duration = time.Since(began)
	logger.Info().
		Int("updated", report.Counts.Updated).
		Int("added", report.Counts.Added).
		Int("unchanged", report.Counts.Unchanged).
		Int("preserved", report.Counts.Preserved).
		Int("missing", report.Counts.Missing).
		Int("errors", report.Counts.Errors).
		Dur("duration", report.Duration).
		Msg("Sync finished")

	return report, runErr
}

// ResolveSource picks the template root: an explicit override wins over
// the manifest's recorded location.
func ResolveSource(override, recorded string) string {
	source := override
	if source == "" {
		source = recorded
	}
	if source == "" {
		return ""
	}
	source = paths.ExpandHome(source)
	if abs, err := filepath.Abs(source); err == nil {
		source = abs
	}
	return source
}

func readTemplateVersion(source string) string {
	data, err := os.ReadFile(filepath.Join(source, VersionFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
