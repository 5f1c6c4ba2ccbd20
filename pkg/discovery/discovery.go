// Package discovery adopts template files that have no installed
// counterpart yet. It only ever adds files: a destination that exists on
// disk is never touched, tracked or not.
package discovery

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/fingerprint"
	"github.com/arthur-debert/cogsync/pkg/fsops"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/arthur-debert/cogsync/pkg/paths"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/rs/zerolog"
)

// Installed maps manifest paths to absolute installed paths.
type Installed interface {
	Installed(rel string) string
}

// Options configures a Discoverer.
type Options struct {
	Layout Installed

	// Source is the template tree root.
	Source string

	// Selection is the provisioning-time choice of categories and names.
	Selection types.Selection

	// Packs are the extension packs whose skills may be adopted, in
	// priority order. Usually Selection.ExtensionPacks().
	Packs []string

	Writer    fsops.Writer
	Algorithm fingerprint.Algorithm
	DryRun    bool
}

// Candidate is one template file discovery may copy in.
type Candidate struct {
	// Rel is the installed manifest path.
	Rel      string
	Source   string
	Category types.Category
	// Pack is empty for core files.
	Pack string
	Mode fs.FileMode
}

// Result is what a discovery pass produced.
type Result struct {
	Items   []types.Item
	Written map[string]bool
	// Skipped counts candidates left alone because the destination exists
	// or the operator removed a tracked copy.
	Skipped int
}

// Discoverer walks template categories for new files.
type Discoverer struct {
	opts   Options
	logger zerolog.Logger
}

// New creates a Discoverer.
func New(opts Options) *Discoverer {
	if opts.Algorithm == "" {
		opts.Algorithm = fingerprint.Default
	}
	if opts.Writer == nil {
		opts.Writer = fsops.New()
	}
	return &Discoverer{
		opts:   opts,
		logger: logging.GetLogger("discovery"),
	}
}

// Candidates lists the template files the selection allows, core first,
// then each pack in order. A path contributed by an earlier source shadows
// later ones, matching the resolver's precedence.
func (d *Discoverer) Candidates() []Candidate {
	sel := d.opts.Selection
	var out []Candidate
	seen := make(map[string]bool)
	add := func(c Candidate) {
		if seen[c.Rel] {
			return
		}
		seen[c.Rel] = true
		out = append(out, c)
	}

	if sel.CategorySelected(types.CategoryHook) {
		for _, name := range d.flatFiles(paths.TemplateCategoryDir(d.opts.Source, types.CategoryHook)) {
			add(Candidate{
				Rel:      path.Join(types.HooksDir, name),
				Source:   filepath.Join(paths.TemplateCategoryDir(d.opts.Source, types.CategoryHook), name),
				Category: types.CategoryHook,
				Mode:     fsops.ExecMode,
			})
		}
	}

	if sel.CategorySelected(types.CategoryAgent) {
		for _, name := range d.flatFiles(paths.TemplateCategoryDir(d.opts.Source, types.CategoryAgent)) {
			if !sel.AgentSelected(name) {
				continue
			}
			add(Candidate{
				Rel:      path.Join(types.AgentsDir, name),
				Source:   filepath.Join(paths.TemplateCategoryDir(d.opts.Source, types.CategoryAgent), name),
				Category: types.CategoryAgent,
				Mode:     fsops.DataMode,
			})
		}
	}

	if sel.CategorySelected(types.CategorySkill) {
		for _, c := range d.skillFiles(paths.TemplateCategoryDir(d.opts.Source, types.CategorySkill), "") {
			add(c)
		}
		for _, pack := range d.opts.Packs {
			for _, c := range d.skillFiles(paths.PackSkillsDir(d.opts.Source, pack), pack) {
				add(c)
			}
		}
	}

	return out
}

// Run copies every eligible candidate that has no installed counterpart and
// records it in m.
func (d *Discoverer) Run(ctx context.Context, m *types.Manifest) (*Result, error) {
	result := &Result{Written: make(map[string]bool)}
	tracked := make(map[string]bool, len(m.Entries))
	for _, e := range m.Entries {
		tracked[e.Path] = true
	}

	for _, c := range d.Candidates() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		item, wrote, skipped := d.adopt(ctx, c, tracked[c.Rel], m)
		if skipped {
			result.Skipped++
			continue
		}
		if wrote {
			result.Written[c.Rel] = true
		}
		result.Items = append(result.Items, item)
	}

	d.logger.Debug().
		Int("added", len(result.Written)).
		Int("skipped", result.Skipped).
		Bool("dryRun", d.opts.DryRun).
		Msg("Discovery pass complete")
	return result, nil
}

func (d *Discoverer) adopt(ctx context.Context, c Candidate, tracked bool, m *types.Manifest) (types.Item, bool, bool) {
	logger := d.logger.With().Str("path", c.Rel).Str("category", c.Category.String()).Logger()
	item := types.Item{
		Path:     c.Rel,
		Category: c.Category,
		Template: c.Source,
	}
	dst := d.opts.Layout.Installed(c.Rel)

	_, err := os.Lstat(dst)
	switch {
	case err == nil:
		logger.Trace().Msg("Destination exists, leaving it alone")
		return item, false, true
	case !os.IsNotExist(err):
		logger.Error().Err(err).Msg("Cannot inspect destination")
		item.Outcome = types.OutcomeError
		item.Error = errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", c.Rel).Error()
		item.Message = string(errors.ErrFileAccess)
		return item, false, false
	case tracked:
		logger.Debug().Msg("Tracked file was removed by the operator, not re-adding")
		return item, false, true
	}

	latest, err := fingerprint.File(d.opts.Algorithm, c.Source)
	if err != nil {
		logger.Error().Err(err).Msg("Cannot fingerprint template")
		item.Outcome = types.OutcomeError
		item.Error = err.Error()
		item.Message = string(errors.ErrFingerprint)
		return item, false, false
	}
	item.Latest = latest
	item.Outcome = types.OutcomeAdded

	if d.opts.DryRun {
		logger.Info().Msg("Would add new template file")
		item.Message = "would add from template"
		return item, false, false
	}

	if err := d.opts.Writer.CopyFile(ctx, c.Source, dst, c.Mode); err != nil {
		logger.Error().Err(err).Msg("Cannot copy new template file")
		item.Outcome = types.OutcomeError
		item.Error = err.Error()
		item.Message = string(errors.GetErrorCode(err))
		return item, false, false
	}

	copied, err := fingerprint.File(d.opts.Algorithm, dst)
	if err != nil {
		logger.Warn().Err(err).Msg("Cannot fingerprint copied file, manifest rebuild will retry")
	} else {
		m.Set(c.Rel, copied)
		item.Current = copied
		item.Recorded = copied
	}

	logger.Info().Str("mode", c.Mode.String()).Str("pack", c.Pack).Msg("Added new template file")
	item.Message = "added from template"
	if c.Pack != "" {
		item.Message = "added from " + c.Pack
	}
	return item, true, false
}

// flatFiles lists regular files directly inside dir, sorted.
func (d *Discoverer) flatFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger.Warn().Err(err).Str("dir", dir).Msg("Cannot list template directory")
		}
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names
}

// skillFiles lists every regular file below each selected bundle of root.
func (d *Discoverer) skillFiles(root, pack string) []Candidate {
	bundles, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger.Warn().Err(err).Str("dir", root).Msg("Cannot list skills directory")
		}
		return nil
	}

	var out []Candidate
	for _, b := range bundles {
		if !b.IsDir() || !d.opts.Selection.SkillSelected(b.Name()) {
			continue
		}
		bundleDir := filepath.Join(root, b.Name())
		err := filepath.WalkDir(bundleDir, func(p string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				d.logger.Warn().Err(walkErr).Str("path", p).Msg("Skipping unreadable template path")
				if entry != nil && entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !entry.Type().IsRegular() {
				return nil
			}
			inner, err := filepath.Rel(bundleDir, p)
			if err != nil {
				return nil
			}
			out = append(out, Candidate{
				Rel:      path.Join(types.SkillsDir, b.Name(), filepath.ToSlash(inner)),
				Source:   p,
				Category: types.CategorySkill,
				Pack:     pack,
				Mode:     fsops.SkillMode(p),
			})
			return nil
		})
		if err != nil {
			d.logger.Warn().Err(err).Str("bundle", b.Name()).Msg("Stopped walking skill bundle")
		}
	}
	return out
}
