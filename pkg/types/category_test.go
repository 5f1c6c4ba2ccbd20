// pkg/types/category_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test path classification and the closed category set

package types_test

import (
	"testing"

	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want types.Category
	}{
		{"hooks/validate.sh", types.CategoryHook},
		{"./hooks/validate.sh", types.CategoryHook},
		{"agents/reviewer.md", types.CategoryAgent},
		{"skills/testing/SKILL.md", types.CategorySkill},
		{"skills/testing/scripts/run.sh", types.CategorySkill},
		{`skills\testing\SKILL.md`, types.CategorySkill},
		{"settings.json", types.CategoryLocal},
		{"hooks/nested/deep.sh", types.CategoryLocal},
		{"skills/README.md", types.CategoryLocal},
		{"cognitive-core/version.json", types.CategoryLocal},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, types.Classify(tt.path))
		})
	}
}

func TestSkillBundle(t *testing.T) {
	bundle, inner, ok := types.SkillBundle("skills/testing/scripts/run.sh")
	require.True(t, ok)
	assert.Equal(t, "testing", bundle)
	assert.Equal(t, "scripts/run.sh", inner)

	_, _, ok = types.SkillBundle("hooks/validate.sh")
	assert.False(t, ok)
}

func TestCategory_Reconcilable(t *testing.T) {
	for _, c := range types.Categories {
		assert.Equal(t, c != types.CategoryLocal, c.Reconcilable(), c.String())
	}
}

func TestCategory_TextRoundTrip(t *testing.T) {
	for _, c := range types.Categories {
		text, err := c.MarshalText()
		require.NoError(t, err)

		var back types.Category
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, c, back)
	}

	var c types.Category
	assert.Error(t, c.UnmarshalText([]byte("widgets")))
}
