// pkg/types/selection_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test decoding of provisioning selection metadata

package types_test

import (
	"testing"

	"github.com/arthur-debert/cogsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSelection(t *testing.T) {
	raw := map[string]any{
		"categories": []any{"hooks", "skill"},
		"agents":     "reviewer, planner",
		"skills":     []string{"testing"},
		"language":   "go",
		"database":   "none",
		"packs":      []any{"language-packs/go", "extras/team"},
		"ignored":    42,
	}

	sel, err := types.DecodeSelection(raw)
	require.NoError(t, err)

	assert.True(t, sel.CategorySelected(types.CategoryHook))
	assert.True(t, sel.CategorySelected(types.CategorySkill))
	assert.False(t, sel.CategorySelected(types.CategoryAgent))
	assert.False(t, sel.CategorySelected(types.CategoryLocal))

	assert.True(t, sel.AgentSelected("reviewer.md"))
	assert.True(t, sel.AgentSelected("planner.md"))
	assert.False(t, sel.AgentSelected("other.md"))

	assert.True(t, sel.SkillSelected("testing"))
	assert.False(t, sel.SkillSelected("docs"))

	assert.Equal(t, []string{"language-packs/go", "extras/team"}, sel.ExtensionPacks())
}

func TestDecodeSelection_EmptyMeansEverything(t *testing.T) {
	sel, err := types.DecodeSelection(nil)
	require.NoError(t, err)

	assert.True(t, sel.CategorySelected(types.CategoryAgent))
	assert.True(t, sel.AgentSelected("anything.md"))
	assert.True(t, sel.SkillSelected("anything"))
	assert.Empty(t, sel.ExtensionPacks())
}

func TestDecodeSelection_BadShape(t *testing.T) {
	_, err := types.DecodeSelection(map[string]any{"language": map[string]any{"a": 1}})
	assert.Error(t, err)
}
