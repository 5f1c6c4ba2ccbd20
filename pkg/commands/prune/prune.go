// Package prune provides the prune command: drop manifest entries whose
// installed file is gone. It is the only operation that removes entries,
// and it never touches installed files.
package prune

import (
	"context"
	"os"
	"time"

	"github.com/arthur-debert/cogsync/pkg/clock"
	"github.com/arthur-debert/cogsync/pkg/commands/update"
	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/lock"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/arthur-debert/cogsync/pkg/manifest"
	"github.com/arthur-debert/cogsync/pkg/paths"
	"github.com/arthur-debert/cogsync/pkg/resolver"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/google/uuid"
)

// PruneOptions holds options for the prune command
type PruneOptions struct {
	Layout *paths.Layout

	// OrphansOnly limits pruning to entries whose template is gone too.
	OrphansOnly bool

	// Source overrides the manifest's source location for OrphansOnly.
	Source string

	DryRun bool

	// LockStaleAfter overrides the default lock staleness.
	LockStaleAfter time.Duration

	Clock clock.Clock
}

// Prune removes stale entries and reports each one it removed (or would
// remove) as a missing item.
func Prune(ctx context.Context, opts PruneOptions) (*types.Report, error) {
	logger := logging.GetLogger("commands.prune")
	if opts.Layout == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no installation layout")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}

	began := time.Now()
	report := &types.Report{
		RunID:       uuid.NewString(),
		Command:     "prune",
		DryRun:      opts.DryRun,
		InstallRoot: opts.Layout.InstallRoot,
		StartedAt:   opts.Clock.Now(),
		Items:       []types.Item{},
	}

	store := manifest.NewStore(opts.Layout.ManifestPath())
	m, err := store.Load()
	if err != nil {
		return nil, err
	}

	if !opts.DryRun {
		runLock := lock.New(opts.Layout.LockPath())
		runLock.Clock = opts.Clock
		if opts.LockStaleAfter > 0 {
			runLock.StaleAfter = opts.LockStaleAfter
		}
		release, err := runLock.Acquire("prune", report.RunID)
		if err != nil {
			return nil, err
		}
		defer func() { _ = release() }()

		if m, err = store.Load(); err != nil {
			return nil, err
		}
	}

	var res *resolver.Resolver
	if opts.OrphansOnly {
		source := update.ResolveSource(opts.Source, m.SourceLocation)
		report.SourceLocation = source
		sel, _ := types.DecodeSelection(m.Selection)
		res = resolver.New(source, paths.ExtensionPackOrder(source, sel.ExtensionPacks(), len(m.Selection) > 0))
		if err := res.CheckRoot(); err != nil {
			return nil, err
		}
	}

	kept := m.Entries[:0]
	for _, e := range m.Entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, err := os.Lstat(opts.Layout.Installed(e.Path)); !os.IsNotExist(err) {
			kept = append(kept, e)
			continue
		}
		if res != nil {
			if tmpl, _, ok := res.ResolvePath(e.Path); ok {
				logger.Debug().Str("path", e.Path).Str("template", tmpl).Msg("Template still exists, keeping entry")
				kept = append(kept, e)
				continue
			}
		}

		item := types.Item{
			Path:     e.Path,
			Category: types.Classify(e.Path),
			Recorded: e.Fingerprint,
			Outcome:  types.OutcomeMissing,
			Message:  "entry pruned",
		}
		if opts.DryRun {
			item.Message = "entry would be pruned"
		}
		logger.Info().Str("path", e.Path).Bool("dryRun", opts.DryRun).Msg("Pruning stale entry")
		report.Append(item)
	}
	m.Entries = kept

	if !opts.DryRun && len(report.Items) > 0 {
		m.SyncedAt = opts.Clock.Now()
		if err := store.Save(m); err != nil {
			return report, err
		}
	}

	report.Duration = time.Since(began)
	return report, nil
}
