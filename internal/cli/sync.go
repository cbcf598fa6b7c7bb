// Package cli — sync.go implements the "trellis sync" command.
//
// Sync fetches once and fast-forwards every worktree that tracks an
// upstream. It is strictly non-destructive: branches with local commits on
// top of their upstream are skipped and reported, never rewound.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/trellis/internal/engine"
)

// NewSyncCommand creates the "sync" cobra command.
func NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch and fast-forward all tracking worktrees",
		Long: `Fetch from the remote once, then fast-forward every worktree whose
branch tracks an upstream. Worktrees with local commits that diverge
from upstream are skipped — sync never discards local history.

Examples:
  trellis sync
  trellis sync --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync()
		},
	}
}

// runSync fast-forwards the worktrees and reports per-branch outcomes.
func runSync() error {
	p, err := openProject()
	if err != nil {
		return err
	}

	VerboseLog("Fetching and fast-forwarding...")
	results, err := engine.New(p).Sync()
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	if IsJSONOutput() {
		type entryJSON struct {
			Branch string `json:"branch"`
			Action string `json:"action"`
			Error  string `json:"error,omitempty"`
		}
		entries := make([]entryJSON, 0, len(results))
		for _, r := range results {
			e := entryJSON{Branch: r.Branch, Action: string(r.Action)}
			if r.Err != nil {
				e.Error = r.Err.Error()
			}
			entries = append(entries, e)
		}
		data, _ := json.MarshalIndent(map[string]any{"results": entries}, "", "  ")
		fmt.Println(string(data))
	} else {
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			detail := ""
			if r.Err != nil {
				detail = dirtyStyle.Render(r.Err.Error())
			}
			rows = append(rows, []string{r.Branch, string(r.Action), detail})
		}
		fmt.Print(renderTable([]string{"BRANCH", "RESULT", "DETAIL"}, rows))
	}

	if failed > 0 {
		return fmt.Errorf("sync failed for %d worktree(s)", failed)
	}
	return nil
}
