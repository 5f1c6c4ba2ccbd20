package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/cogsync/pkg/manifest"
	"github.com/arthur-debert/cogsync/pkg/paths"
	"github.com/arthur-debert/cogsync/pkg/types"
)

// InstalledAt is the provisioning time stamped on fixture manifests.
var InstalledAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// Installation is an installation root plus a template tree, both in temp
// directories, and the manifest the test is building.
type Installation struct {
	t *testing.T

	// Root is the installation root.
	Root string
	// Source is the template tree root.
	Source string

	Layout   *paths.Layout
	Manifest *types.Manifest
}

// NewInstallation creates an empty installation with an empty template tree.
func NewInstallation(t *testing.T) *Installation {
	t.Helper()

	base := t.TempDir()
	root := filepath.Join(base, "project")
	source := filepath.Join(base, "template")
	for _, dir := range []string{
		filepath.Join(root, paths.DefaultInstallDir, paths.DefaultStateDir),
		filepath.Join(source, paths.CoreDir, types.HooksDir),
		filepath.Join(source, paths.CoreDir, types.AgentsDir),
		filepath.Join(source, paths.CoreDir, types.SkillsDir),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	layout, err := paths.New(root)
	if err != nil {
		t.Fatalf("Failed to create layout: %v", err)
	}

	return &Installation{
		t:      t,
		Root:   root,
		Source: source,
		Layout: layout,
		Manifest: &types.Manifest{
			FrameworkVersion: "1.0.0",
			InstalledAt:      InstalledAt,
			SourceLocation:   source,
		},
	}
}

// WriteTemplate writes a template file relative to Source.
func (i *Installation) WriteTemplate(rel, content string) string {
	i.t.Helper()
	return CreateFile(i.t, filepath.Join(i.Source, filepath.FromSlash(rel)), content, 0644)
}

// WriteTemplateMode writes a template file with an explicit mode.
func (i *Installation) WriteTemplateMode(rel, content string, mode os.FileMode) string {
	i.t.Helper()
	return CreateFile(i.t, filepath.Join(i.Source, filepath.FromSlash(rel)), content, mode)
}

// WriteInstalled writes a file into the installed tree without tracking it.
func (i *Installation) WriteInstalled(rel, content string) string {
	i.t.Helper()
	return CreateFile(i.t, i.Layout.Installed(rel), content, 0644)
}

// Track records content's fingerprint for rel without touching the disk.
func (i *Installation) Track(rel, content string) {
	i.Manifest.Set(rel, FP(content))
}

// Provision writes content into the installed tree and tracks it, the way
// first provisioning leaves a file.
func (i *Installation) Provision(rel, content string) string {
	i.t.Helper()
	p := i.WriteInstalled(rel, content)
	i.Track(rel, content)
	return p
}

// Select sets the manifest's selection metadata.
func (i *Installation) Select(selection map[string]any) {
	i.Manifest.Selection = selection
}

// SaveManifest writes the fixture manifest where runs expect it.
func (i *Installation) SaveManifest() {
	i.t.Helper()
	if err := manifest.NewStore(i.Layout.ManifestPath()).Save(i.Manifest.Clone()); err != nil {
		i.t.Fatalf("Failed to save manifest: %v", err)
	}
}

// LoadManifest reads the persisted manifest.
func (i *Installation) LoadManifest() *types.Manifest {
	i.t.Helper()
	m, err := manifest.NewStore(i.Layout.ManifestPath()).Load()
	if err != nil {
		i.t.Fatalf("Failed to load manifest: %v", err)
	}
	return m
}

// Installed returns the absolute path of an installed file.
func (i *Installation) Installed(rel string) string {
	return i.Layout.Installed(rel)
}

// ReadInstalled returns an installed file's content.
func (i *Installation) ReadInstalled(rel string) string {
	i.t.Helper()
	return ReadFile(i.t, i.Layout.Installed(rel))
}

// InstalledExists reports whether an installed file exists.
func (i *Installation) InstalledExists(rel string) bool {
	i.t.Helper()
	return FileExists(i.t, i.Layout.Installed(rel))
}

// RemoveInstalled deletes an installed file, as an operator would.
func (i *Installation) RemoveInstalled(rel string) {
	i.t.Helper()
	if err := os.Remove(i.Layout.Installed(rel)); err != nil {
		i.t.Fatalf("Failed to remove %s: %v", rel, err)
	}
}

// Snapshot returns the installed tree's files, excluding the state dir.
func (i *Installation) Snapshot() map[string]string {
	i.t.Helper()
	return SnapshotTree(i.t, i.Layout.InstalledTree(), i.Layout.StateDir)
}
