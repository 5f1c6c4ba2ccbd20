// pkg/resolver/resolver_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (temp dir)
// PURPOSE: Test per-category template resolution and the skill fallback chain

package resolver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/resolver"
	"github.com/arthur-debert/cogsync/pkg/testutil"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_HookAndAgent(t *testing.T) {
	inst := testutil.NewInstallation(t)
	hook := inst.WriteTemplate("core/hooks/validate.sh", "h")
	agent := inst.WriteTemplate("core/agents/reviewer.md", "a")
	r := resolver.New(inst.Source, nil)

	got, ok := r.Resolve("hooks/validate.sh", types.CategoryHook)
	require.True(t, ok)
	assert.Equal(t, hook, got)

	got, ok = r.Resolve("agents/reviewer.md", types.CategoryAgent)
	require.True(t, ok)
	assert.Equal(t, agent, got)

	_, ok = r.Resolve("hooks/missing.sh", types.CategoryHook)
	assert.False(t, ok)
}

func TestResolve_HookHasNoFallback(t *testing.T) {
	inst := testutil.NewInstallation(t)
	inst.WriteTemplate("language-packs/go/hooks/validate.sh", "h")
	r := resolver.New(inst.Source, []string{"language-packs/go"})

	_, ok := r.Resolve("hooks/validate.sh", types.CategoryHook)
	assert.False(t, ok)
}

func TestResolve_SkillFallbackChain(t *testing.T) {
	inst := testutil.NewInstallation(t)
	core := inst.WriteTemplate("core/skills/testing/SKILL.md", "core")
	inst.WriteTemplate("language-packs/go/skills/testing/SKILL.md", "go shadowed")
	goOnly := inst.WriteTemplate("language-packs/go/skills/gotest/SKILL.md", "go")
	pgOnly := inst.WriteTemplate("database-packs/postgres/skills/gotest/SKILL.md", "pg")
	nested := inst.WriteTemplate("database-packs/postgres/skills/migrate/scripts/run.sh", "run")

	r := resolver.New(inst.Source, []string{"language-packs/go", "database-packs/postgres"})

	got, ok := r.Resolve("skills/testing/SKILL.md", types.CategorySkill)
	require.True(t, ok)
	assert.Equal(t, core, got, "core wins over packs")

	got, ok = r.Resolve("skills/gotest/SKILL.md", types.CategorySkill)
	require.True(t, ok)
	assert.Equal(t, goOnly, got, "first pack in order wins")

	got, ok = r.Resolve("skills/migrate/scripts/run.sh", types.CategorySkill)
	require.True(t, ok)
	assert.Equal(t, nested, got)

	reversed := resolver.New(inst.Source, []string{"database-packs/postgres", "language-packs/go"})
	got, ok = reversed.Resolve("skills/gotest/SKILL.md", types.CategorySkill)
	require.True(t, ok)
	assert.Equal(t, pgOnly, got)
}

func TestResolve_LocalNeverFound(t *testing.T) {
	inst := testutil.NewInstallation(t)
	inst.WriteTemplate("settings.json", "{}")
	r := resolver.New(inst.Source, nil)

	_, ok := r.Resolve("settings.json", types.CategoryLocal)
	assert.False(t, ok)

	_, category, ok := r.ResolvePath("settings.json")
	assert.False(t, ok)
	assert.Equal(t, types.CategoryLocal, category)
}

func TestResolve_DirectoryIsNotACandidate(t *testing.T) {
	inst := testutil.NewInstallation(t)
	require.NoError(t, os.MkdirAll(filepath.Join(inst.Source, "core", "agents", "dir.md"), 0755))
	r := resolver.New(inst.Source, nil)

	_, ok := r.Resolve("agents/dir.md", types.CategoryAgent)
	assert.False(t, ok)
}

func TestCheckRoot(t *testing.T) {
	inst := testutil.NewInstallation(t)
	assert.NoError(t, resolver.New(inst.Source, nil).CheckRoot())

	for name, source := range map[string]string{
		"empty":   "",
		"missing": filepath.Join(inst.Source, "nope"),
		"file":    inst.WriteTemplate("plain", "x"),
		"no core": t.TempDir(),
	} {
		t.Run(name, func(t *testing.T) {
			err := resolver.New(source, nil).CheckRoot()
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateRoot))
			assert.Equal(t, errors.ExitTemplate, errors.ExitCode(err))
		})
	}
}
