package achievement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flockhq/flock/internal/achievement"
)

func TestBuiltinCatalog_ParsesAndValidates(t *testing.T) {
	defs, err := achievement.BuiltinCatalog()
	require.NoError(t, err)
	require.NotEmpty(t, defs)

	names := make(map[string]bool, len(defs))
	for _, d := range defs {
		assert.True(t, achievement.ValidType(d.Type), "type of %q", d.Name)
		assert.GreaterOrEqual(t, d.Threshold, 1, "threshold of %q", d.Name)
		assert.NotEmpty(t, d.Name)
		assert.False(t, names[d.Name], "duplicate name %q", d.Name)
		names[d.Name] = true
	}
}

func TestBuiltinCatalog_InvitationMilestoneThresholds(t *testing.T) {
	defs, err := achievement.BuiltinCatalog()
	require.NoError(t, err)

	var thresholds []int
	for _, d := range defs {
		if d.Type == achievement.TypeInvitationMilestone {
			thresholds = append(thresholds, d.Threshold)
		}
	}

	assert.ElementsMatch(t, []int{1, 3, 5, 10}, thresholds)
}
