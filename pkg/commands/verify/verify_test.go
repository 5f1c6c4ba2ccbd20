// pkg/commands/verify/verify_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (temp dir)
// PURPOSE: Test detection of local edits against recorded fingerprints

package verify_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/cogsync/pkg/commands/verify"
	"github.com/arthur-debert/cogsync/pkg/testutil"
	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	inst := testutil.NewInstallation(t)
	inst.Provision("hooks/a.sh", "a")
	inst.Track("agents/b.md", "b")
	inst.WriteInstalled("agents/b.md", "edited")
	inst.Track("skills/x/SKILL.md", "x")
	inst.SaveManifest()
	// The template tree is not needed
	inst.Source = "/nowhere"

	report, err := verify.Verify(context.Background(), verify.VerifyOptions{Layout: inst.Layout})
	require.NoError(t, err)

	assert.Equal(t, types.Counts{Unchanged: 1, Modified: 1, Missing: 1}, report.Counts)
	for _, it := range report.Items {
		if it.Path == "agents/b.md" {
			assert.Equal(t, types.OutcomeModified, it.Outcome)
			assert.Equal(t, testutil.FP("edited"), it.Current)
		}
	}
}
