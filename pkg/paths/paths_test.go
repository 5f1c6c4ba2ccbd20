// pkg/paths/paths_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (temp dir)
// PURPOSE: Test installation layout and extension pack ordering

package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/cogsync/pkg/paths"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ExplicitRoot(t *testing.T) {
	root := t.TempDir()

	l, err := paths.New(root)
	require.NoError(t, err)

	assert.Equal(t, root, l.InstallRoot)
	assert.False(t, l.UsedFallback)
	assert.Equal(t, filepath.Join(root, ".claude"), l.InstalledTree())
	assert.Equal(t, filepath.Join(root, ".claude", "cognitive-core", "version.json"), l.ManifestPath())
	assert.Equal(t, filepath.Join(root, ".claude", "cognitive-core", ".sync.lock"), l.LockPath())
	assert.Equal(t, filepath.Join(root, ".cogsync.toml"), l.ProjectConfigPath())
	assert.Equal(t, filepath.Join(root, ".claude", "hooks", "a.sh"), l.Installed("hooks/a.sh"))
}

func TestNew_FromEnv(t *testing.T) {
	root := t.TempDir()
	t.Setenv(paths.EnvInstallRoot, root)

	l, err := paths.New("")
	require.NoError(t, err)
	assert.Equal(t, root, l.InstallRoot)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, paths.ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "proj"), paths.ExpandHome("~/proj"))
	assert.Equal(t, "~other/proj", paths.ExpandHome("~other/proj"))
	assert.Equal(t, "/abs", paths.ExpandHome("/abs"))
}

func TestLayout_RelAndIsState(t *testing.T) {
	l, err := paths.New(t.TempDir())
	require.NoError(t, err)

	rel, err := l.Rel(filepath.Join(l.InstalledTree(), "skills", "x", "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "skills/x/SKILL.md", rel)

	_, err = l.Rel(filepath.Join(l.InstallRoot, "elsewhere"))
	assert.Error(t, err)

	assert.True(t, l.IsState("cognitive-core/version.json"))
	assert.True(t, l.IsState("cognitive-core"))
	assert.False(t, l.IsState("cognitive-core-extra/file"))
}

func TestConfigDir_Override(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(paths.EnvConfigDir, dir)

	assert.Equal(t, dir, paths.ConfigDir())
	assert.Equal(t, filepath.Join(dir, "config.toml"), paths.UserConfigPath())
}

func TestExtensionPackOrder(t *testing.T) {
	source := t.TempDir()
	for _, d := range []string{
		"language-packs/rust", "language-packs/go", "database-packs/postgres",
	} {
		require.NoError(t, os.MkdirAll(filepath.Join(source, d), 0755))
	}

	selected := []string{"language-packs/rust", "extras/team"}

	t.Run("no recorded selection searches every pack", func(t *testing.T) {
		order := paths.ExtensionPackOrder(source, selected, false)
		assert.Equal(t, []string{
			"language-packs/rust",
			"extras/team",
			"database-packs/postgres",
			"language-packs/go",
		}, order)
	})

	t.Run("recorded selection searches only selected packs", func(t *testing.T) {
		order := paths.ExtensionPackOrder(source, selected, true)
		assert.Equal(t, []string{"language-packs/rust", "extras/team"}, order)
	})

	t.Run("selection opting out of every pack", func(t *testing.T) {
		assert.Empty(t, paths.ExtensionPackOrder(source, nil, true))
	})
}

func TestTemplateCategoryDir(t *testing.T) {
	assert.Equal(t, filepath.Join("/src", "core", "hooks"), paths.TemplateCategoryDir("/src", types.CategoryHook))
	assert.Equal(t, "", paths.TemplateCategoryDir("/src", types.CategoryLocal))
	assert.Equal(t, filepath.Join("/src", "language-packs", "go", "skills"), paths.PackSkillsDir("/src", "language-packs/go"))
}
