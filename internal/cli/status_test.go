package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/trellis/internal/model"
)

func TestBuildStatusResult(t *testing.T) {
	statuses := []model.BranchStatus{
		{
			Worktree: model.Worktree{Branch: "main", Path: "/proj/main"},
			State:    model.SyncState{},
		},
		{
			Worktree: model.Worktree{Branch: "feat", Path: "/proj/feat"},
			State:    model.SyncState{Ahead: 2, Behind: 1, Dirty: true},
		},
	}

	result := buildStatusResult(statuses, nil)

	require.Len(t, result.Branches, 2)
	assert.Equal(t, "feat", result.Branches[1].Branch)
	assert.Equal(t, 2, result.Branches[1].Ahead)
	assert.Equal(t, 1, result.Branches[1].Behind)
	assert.True(t, result.Branches[1].Dirty)
	assert.Empty(t, result.Inconsistencies)
}

func TestBuildStatusResultCarriesInconsistencies(t *testing.T) {
	// Drift must ride along in the JSON payload itself; agents reading
	// --json never see stderr warnings.
	problems := []model.RegistryInconsistency{
		{Kind: model.MissingDirectory, Branch: "gone", Path: "/proj/gone"},
	}

	result := buildStatusResult(nil, problems)

	assert.Empty(t, result.Branches)
	require.Len(t, result.Inconsistencies, 1)
	assert.Contains(t, result.Inconsistencies[0], "gone")
	assert.Contains(t, result.Inconsistencies[0], "missing")
}
