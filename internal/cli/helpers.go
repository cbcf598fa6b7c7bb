package cli

import (
	"fmt"
	"os"

	"github.com/mmr-tortoise/trellis/internal/project"
	"github.com/mmr-tortoise/trellis/internal/registry"
	"github.com/mmr-tortoise/trellis/internal/workspace"
)

// syncWorkspace refreshes the editor workspace file after a mutation.
// Failures are reported as warnings, not errors: the worktree operation
// itself already succeeded, and the workspace file is a convenience.
func syncWorkspace(p *project.Project) {
	worktrees, _, err := registry.New(p).List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: workspace file not updated: %v\n", err)
		return
	}

	branches := make([]string, 0, len(worktrees))
	for _, wt := range worktrees {
		branches = append(branches, wt.Branch)
	}

	if err := workspace.Sync(p.Root, branches); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: workspace file not updated: %v\n", err)
		return
	}
	VerboseLog("Workspace file updated")
}
