// Package resolver maps installed paths to their template counterparts.
package resolver

import (
	"os"
	"path"
	"path/filepath"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/arthur-debert/cogsync/pkg/paths"
	"github.com/arthur-debert/cogsync/pkg/types"
)

// Resolver locates template files for installed paths. It never writes and
// holds no state beyond its constructor arguments.
type Resolver struct {
	source string
	packs  []string
}

// New creates a resolver over the template tree at source. packs is the
// ordered extension pack search list used as the skill fallback chain.
func New(source string, packs []string) *Resolver {
	return &Resolver{
		source: source,
		packs:  append([]string(nil), packs...),
	}
}

// Source returns the template root.
func (r *Resolver) Source() string {
	return r.source
}

// Packs returns the extension pack search order.
func (r *Resolver) Packs() []string {
	return append([]string(nil), r.packs...)
}

// CheckRoot verifies the template root is reachable. A missing or unreadable
// root is fatal for a run.
func (r *Resolver) CheckRoot() error {
	if r.source == "" {
		return errors.New(errors.ErrTemplateRoot, "no template source location configured")
	}
	info, err := os.Stat(r.source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrTemplateRoot, "template root %s is unreachable", r.source).
			WithDetail("source", r.source)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrTemplateRoot, "template root %s is not a directory", r.source).
			WithDetail("source", r.source)
	}
	core := filepath.Join(r.source, paths.CoreDir)
	if _, err := os.ReadDir(core); err != nil {
		return errors.Wrapf(err, errors.ErrTemplateRoot, "template root %s has no readable %s directory", r.source, paths.CoreDir).
			WithDetail("source", r.source)
	}
	return nil
}

// Resolve returns the template file for an installed relative path of the
// given category. found is false when no candidate exists, which is an
// expected outcome rather than an error.
func (r *Resolver) Resolve(rel string, category types.Category) (string, bool) {
	logger := logging.GetLogger("resolver")
	rel = types.CleanPath(rel)

	switch category {
	case types.CategoryHook, types.CategoryAgent:
		candidate := filepath.Join(paths.TemplateCategoryDir(r.source, category), path.Base(rel))
		if isFile(candidate) {
			return candidate, true
		}
		return "", false

	case types.CategorySkill:
		bundle, inner, ok := types.SkillBundle(rel)
		if !ok {
			return "", false
		}
		candidate := filepath.Join(paths.TemplateCategoryDir(r.source, category), bundle, filepath.FromSlash(inner))
		if isFile(candidate) {
			return candidate, true
		}
		for _, pack := range r.packs {
			candidate = filepath.Join(paths.PackSkillsDir(r.source, pack), bundle, filepath.FromSlash(inner))
			if isFile(candidate) {
				logger.Trace().Str("path", rel).Str("pack", pack).Msg("skill resolved from extension pack")
				return candidate, true
			}
		}
		return "", false

	case types.CategoryLocal:
		return "", false
	}

	return "", false
}

// ResolvePath classifies rel and resolves it.
func (r *Resolver) ResolvePath(rel string) (string, types.Category, bool) {
	category := types.Classify(rel)
	tmpl, ok := r.Resolve(rel, category)
	return tmpl, category, ok
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
