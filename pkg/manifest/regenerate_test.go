// pkg/manifest/regenerate_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (temp dir)
// PURPOSE: Test the provenance rules of the full-tree manifest rebuild

package manifest_test

import (
	"os"
	"testing"
	"time"

	"github.com/arthur-debert/cogsync/pkg/fingerprint"
	"github.com/arthur-debert/cogsync/pkg/manifest"
	"github.com/arthur-debert/cogsync/pkg/paths"
	"github.com/arthur-debert/cogsync/pkg/resolver"
	"github.com/arthur-debert/cogsync/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var syncTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func regenerate(t *testing.T, inst *testutil.Installation, written map[string]bool) *manifest.RegenerateResult {
	t.Helper()
	res, err := manifest.Regenerate(manifest.RegenerateOptions{
		InstalledTree: inst.Layout.InstalledTree(),
		SkipDir:       inst.Layout.StateDir,
		Previous:      inst.Manifest,
		Written:       written,
		Templates:     resolver.New(inst.Source, nil),
		Algorithm:     fingerprint.Default,
		Now:           syncTime,
	})
	require.NoError(t, err)
	return res
}

func TestRegenerate_Metadata(t *testing.T) {
	inst := testutil.NewInstallation(t)
	inst.Select(map[string]any{"language": "go"})

	res := regenerate(t, inst, nil)

	assert.True(t, testutil.InstalledAt.Equal(res.Manifest.InstalledAt), "installed_at is carried over")
	assert.True(t, syncTime.Equal(res.Manifest.SyncedAt))
	assert.Equal(t, inst.Source, res.Manifest.SourceLocation)
	assert.Equal(t, "go", res.Manifest.Selection["language"])
	assert.Equal(t, "1.0.0", res.Manifest.FrameworkVersion)
}

func TestRegenerate_TrackedEditedKeepsRecorded(t *testing.T) {
	inst := testutil.NewInstallation(t)
	inst.Provision("hooks/validate.sh", "v1")
	inst.WriteInstalled("hooks/validate.sh", "operator edit")

	res := regenerate(t, inst, nil)

	e, ok := res.Manifest.Lookup("hooks/validate.sh")
	require.True(t, ok)
	assert.Equal(t, testutil.FP("v1"), e.Fingerprint)
}

func TestRegenerate_WrittenGetsFreshFingerprint(t *testing.T) {
	inst := testutil.NewInstallation(t)
	inst.Track("hooks/validate.sh", "v1")
	inst.WriteInstalled("hooks/validate.sh", "v2")

	res := regenerate(t, inst, map[string]bool{"hooks/validate.sh": true})

	e, _ := res.Manifest.Lookup("hooks/validate.sh")
	assert.Equal(t, testutil.FP("v2"), e.Fingerprint)
}

func TestRegenerate_MissingCarriedForward(t *testing.T) {
	inst := testutil.NewInstallation(t)
	inst.Track("agents/gone.md", "old")

	res := regenerate(t, inst, nil)

	e, ok := res.Manifest.Lookup("agents/gone.md")
	require.True(t, ok)
	assert.Equal(t, testutil.FP("old"), e.Fingerprint)
	assert.Equal(t, []string{"agents/gone.md"}, res.CarriedMissing)
}

func TestRegenerate_AdoptsUntracked(t *testing.T) {
	inst := testutil.NewInstallation(t)
	inst.WriteTemplate("core/agents/planner.md", "template")
	inst.WriteInstalled("agents/planner.md", "hand written")
	inst.WriteInstalled("settings.local.json", "{}")

	res := regenerate(t, inst, nil)

	planner, ok := res.Manifest.Lookup("agents/planner.md")
	require.True(t, ok)
	assert.Equal(t, testutil.FP("template"), planner.Fingerprint, "adopted with the template fingerprint")

	settings, ok := res.Manifest.Lookup("settings.local.json")
	require.True(t, ok)
	assert.Equal(t, testutil.FP("{}"), settings.Fingerprint)

	assert.ElementsMatch(t, []string{"agents/planner.md", "settings.local.json"}, res.Adopted)
}

func TestRegenerate_SkipsStateDir(t *testing.T) {
	inst := testutil.NewInstallation(t)
	inst.SaveManifest()
	testutil.CreateFile(t, inst.Layout.LockPath(), "{}", 0644)

	res := regenerate(t, inst, nil)

	for _, e := range res.Manifest.Entries {
		assert.False(t, inst.Layout.IsState(e.Path), e.Path)
	}
}

func TestRegenerate_UnreadableUntrackedOmitted(t *testing.T) {
	inst := testutil.NewInstallation(t)
	inst.Provision("hooks/a.sh", "a")
	p := inst.WriteInstalled("agents/secret.md", "x")
	require.NoError(t, os.Chmod(p, 0000))
	t.Cleanup(func() { _ = os.Chmod(p, 0644) })
	if os.Geteuid() == 0 {
		t.Skip("root can read mode 0000 files")
	}

	res := regenerate(t, inst, nil)

	_, ok := res.Manifest.Lookup("agents/secret.md")
	assert.False(t, ok)
	assert.Equal(t, []string{"agents/secret.md"}, res.Omitted)
	_, ok = res.Manifest.Lookup("hooks/a.sh")
	assert.True(t, ok)
}

func TestRegenerate_Sorted(t *testing.T) {
	inst := testutil.NewInstallation(t)
	inst.Provision("skills/z/SKILL.md", "z")
	inst.Provision("agents/a.md", "a")
	inst.Provision("hooks/h.sh", "h")

	res := regenerate(t, inst, nil)

	var got []string
	for _, e := range res.Manifest.Entries {
		got = append(got, e.Path)
	}
	assert.Equal(t, []string{"agents/a.md", "hooks/h.sh", "skills/z/SKILL.md"}, got)
	assert.Equal(t, paths.DefaultStateDir, inst.Layout.StateDir)
}

func TestRegenerate_TempFilesOnlyByExactName(t *testing.T) {
	inst := testutil.NewInstallation(t)
	inst.WriteInstalled("hooks/.a.sh.cogsync-0123456789abcdef0123456789abcdef.tmp", "half")
	inst.WriteInstalled("hooks/notes.cogsync-tmp", "operator")

	res := regenerate(t, inst, nil)

	_, ok := res.Manifest.Lookup("hooks/.a.sh.cogsync-0123456789abcdef0123456789abcdef.tmp")
	assert.False(t, ok)
	_, ok = res.Manifest.Lookup("hooks/notes.cogsync-tmp")
	assert.True(t, ok, "operator files are tracked whatever their suffix")
}
