// pkg/metrics/metrics_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (temp dir)
// PURPOSE: Test run counts exported as a Prometheus textfile

package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/metrics"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_WriteTextfile(t *testing.T) {
	report := &types.Report{
		Command:   "update",
		StartedAt: time.Unix(1700000000, 0).UTC(),
		Duration:  2 * time.Second,
	}
	report.Append(
		types.Item{Path: "hooks/a.sh", Outcome: types.OutcomeUpdated},
		types.Item{Path: "hooks/b.sh", Outcome: types.OutcomeUpdated},
		types.Item{Path: "agents/c.md", Outcome: types.OutcomeConflict},
	)

	rec := metrics.NewRecorder()
	rec.Observe(report, nil)

	path := filepath.Join(t.TempDir(), "nested", "cogsync.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `cogsync_run_files{command="update",outcome="updated"} 2`)
	assert.Contains(t, out, `cogsync_run_files{command="update",outcome="preserved"} 1`)
	assert.Contains(t, out, `cogsync_run_files{command="update",outcome="missing"} 0`)
	assert.Contains(t, out, "cogsync_run_duration_seconds 2")
	assert.Contains(t, out, "cogsync_run_timestamp_seconds 1.7e+09")
	assert.Contains(t, out, "cogsync_run_success 1")
	assert.Contains(t, out, "cogsync_run_dry_run 0")
}

func TestRecorder_FatalRun(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.Observe(nil, errors.New(errors.ErrLocked, "locked"))

	families, err := rec.Gatherer().Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if mf.GetName() == "cogsync_run_success" {
			found = true
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, 0.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found)
}

func TestRecorder_PerFileErrorsAreNotFatal(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.Observe(&types.Report{Command: "update", DryRun: true}, errors.New(errors.ErrFileCopy, "copy failed"))

	path := filepath.Join(t.TempDir(), "m.prom")
	require.NoError(t, rec.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cogsync_run_success 1")
	assert.Contains(t, string(data), "cogsync_run_dry_run 1")
}
