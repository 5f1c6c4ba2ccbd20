// pkg/commands/prune/prune_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (temp dir)
// PURPOSE: Test explicit removal of stale manifest entries

package prune_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/cogsync/pkg/commands/prune"
	"github.com/arthur-debert/cogsync/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *testutil.Installation {
	t.Helper()
	inst := testutil.NewInstallation(t)
	inst.Provision("hooks/present.sh", "p")
	inst.WriteTemplate("core/hooks/deleted.sh", "d")
	inst.Track("hooks/deleted.sh", "d")
	inst.Track("agents/orphan.md", "o")
	inst.SaveManifest()
	return inst
}

func TestPrune_AllMissing(t *testing.T) {
	inst := setup(t)

	report, err := prune.Prune(context.Background(), prune.PruneOptions{Layout: inst.Layout})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Counts.Missing)
	m := inst.LoadManifest()
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "hooks/present.sh", m.Entries[0].Path)
	assert.Equal(t, "p", inst.ReadInstalled("hooks/present.sh"))
}

func TestPrune_OrphansOnly(t *testing.T) {
	inst := setup(t)

	report, err := prune.Prune(context.Background(), prune.PruneOptions{Layout: inst.Layout, OrphansOnly: true})
	require.NoError(t, err)

	require.Len(t, report.Items, 1)
	assert.Equal(t, "agents/orphan.md", report.Items[0].Path)
	_, ok := inst.LoadManifest().Lookup("hooks/deleted.sh")
	assert.True(t, ok, "template still exists, entry kept")
}

func TestPrune_DryRun(t *testing.T) {
	inst := setup(t)
	before := testutil.ReadFile(t, inst.Layout.ManifestPath())

	report, err := prune.Prune(context.Background(), prune.PruneOptions{Layout: inst.Layout, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Counts.Missing)
	assert.Equal(t, "entry would be pruned", report.Items[0].Message)
	assert.Equal(t, before, testutil.ReadFile(t, inst.Layout.ManifestPath()))
}
