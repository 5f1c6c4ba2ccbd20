// pkg/manifest/store_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (temp dir)
// PURPOSE: Test manifest load/save, tolerant decoding and fatal error codes

package manifest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/fingerprint"
	"github.com/arthur-debert/cogsync/pkg/manifest"
	"github.com/arthur-debert/cogsync/pkg/testutil"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "version.json")
	store := manifest.NewStore(path)

	m := &types.Manifest{
		FrameworkVersion: "2.1.0",
		InstalledAt:      testutil.InstalledAt,
		SourceLocation:   "/opt/template",
		Selection:        map[string]any{"language": "go"},
		Entries: []types.ManifestEntry{
			{Path: "skills/x/SKILL.md", Fingerprint: testutil.FP("x")},
			{Path: "hooks/a.sh", Fingerprint: testutil.FP("a")},
		},
	}
	require.NoError(t, store.Save(m))

	loaded, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "2.1.0", loaded.FrameworkVersion)
	assert.True(t, testutil.InstalledAt.Equal(loaded.InstalledAt))
	assert.True(t, loaded.SyncedAt.IsZero())
	assert.Equal(t, "/opt/template", loaded.SourceLocation)
	assert.Equal(t, "go", loaded.Selection["language"])
	require.Len(t, loaded.Entries, 2)
	assert.Equal(t, "hooks/a.sh", loaded.Entries[0].Path, "entries are saved sorted")
	assert.Equal(t, testutil.FP("a"), loaded.Entries[0].Fingerprint)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".manifest-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestStore_SnakeCaseKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.json")
	require.NoError(t, manifest.NewStore(path).Save(&types.Manifest{
		FrameworkVersion: "1",
		InstalledAt:      testutil.InstalledAt,
	}))

	raw := testutil.ReadFile(t, path)
	assert.Contains(t, raw, `"framework_version": "1"`)
	assert.Contains(t, raw, `"installed_at"`)
	assert.Contains(t, raw, `"files": []`)
	assert.NotContains(t, raw, `"synced_at"`)
}

func TestStore_TolerantDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.json")
	content := `{
  // written by an older provisioner
  "framework_version": "0.9",
  "future_field": {"nested": true},
  "files": [
    {"path": "hooks/a.sh", "sha256": "` + strings.Repeat("ab", 32) + `", "size": 12},
    {"path": "hooks/a.sh", "fingerprint": "sha256:ff"},
    {"path": "../outside", "fingerprint": "sha256:00"},
    {"path": "agents/b.md", "fingerprint": "blake3:01",},
  ],
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	m, err := manifest.NewStore(path).Load()
	require.NoError(t, err)

	require.Len(t, m.Entries, 2)
	a, ok := m.Lookup("hooks/a.sh")
	require.True(t, ok)
	assert.Equal(t, fingerprint.Fingerprint("sha256:"+strings.Repeat("ab", 32)), a.Fingerprint, "first duplicate wins")
	_, ok = m.Lookup("../outside")
	assert.False(t, ok)
}

func TestStore_LoadMissingIsFatal(t *testing.T) {
	_, err := manifest.NewStore(filepath.Join(t.TempDir(), "missing.json")).Load()

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestRead))
	assert.True(t, errors.IsFatal(err))
	assert.Equal(t, errors.ExitManifest, errors.ExitCode(err))
}

func TestStore_LoadCorruptIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"files": [`), 0644))

	_, err := manifest.NewStore(path).Load()

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestParse))
	assert.Equal(t, path, errors.GetErrorDetails(err)["path"])
}
