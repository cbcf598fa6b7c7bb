// Package cli — clean.go implements the "trellis clean" command.
//
// Clean removes every worktree whose branch is fully merged into the target:
// the directory, the local branch, and the remote branch when one exists.
// --dry-run shows the candidates without touching anything; dirty candidates
// are always skipped rather than forced.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/trellis/internal/cleanup"
)

// cleanFlags holds the flag values for the clean command.
type cleanFlags struct {
	dryRun bool // --dry-run: plan only
}

// NewCleanCommand creates the "clean" cobra command.
func NewCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean [target]",
		Short: "Remove worktrees for branches merged into the target",
		Long: `Find branches fully merged into the target branch and remove their
worktrees, local branches, and remote branches. The target and default
branches are never candidates; dirty worktrees are skipped.

Examples:
  trellis clean --dry-run
  trellis clean
  trellis clean release/1.2`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runClean(target, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "Show what would be removed without removing anything")

	return cmd
}

// runClean plans and (unless --dry-run) executes merged-branch cleanup.
func runClean(target string, flags *cleanFlags) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	c := cleanup.New(p)
	candidates, err := c.Plan(target)
	if err != nil {
		return err
	}

	if flags.dryRun {
		if IsJSONOutput() {
			branches := make([]string, 0, len(candidates))
			for _, cand := range candidates {
				branches = append(branches, cand.Worktree.Branch)
			}
			data, _ := json.MarshalIndent(map[string]any{"candidates": branches}, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		if len(candidates) == 0 {
			fmt.Println("Nothing to clean.")
			return nil
		}
		fmt.Println("Would remove:")
		for _, cand := range candidates {
			fmt.Printf("  %s\n", cand.Worktree.Branch)
		}
		return nil
	}

	outcomes := c.Execute(candidates)
	syncWorkspace(p)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}

	if IsJSONOutput() {
		type outcomeJSON struct {
			Branch        string `json:"branch"`
			Removed       bool   `json:"removed"`
			RemoteDeleted bool   `json:"remoteDeleted"`
			Skipped       bool   `json:"skipped,omitempty"`
			Reason        string `json:"reason,omitempty"`
			Error         string `json:"error,omitempty"`
		}
		entries := make([]outcomeJSON, 0, len(outcomes))
		for _, o := range outcomes {
			e := outcomeJSON{
				Branch:        o.Branch,
				Removed:       o.Removed,
				RemoteDeleted: o.RemoteDeleted,
				Skipped:       o.Skipped,
				Reason:        o.Reason,
			}
			if o.Err != nil {
				e.Error = o.Err.Error()
			}
			entries = append(entries, e)
		}
		data, _ := json.MarshalIndent(map[string]any{"outcomes": entries}, "", "  ")
		fmt.Println(string(data))
	} else {
		printCleanText(outcomes)
	}

	if failed > 0 {
		return fmt.Errorf("clean failed for %d branch(es)", failed)
	}
	return nil
}

// printCleanText renders the per-branch cleanup outcomes.
func printCleanText(outcomes []cleanup.Outcome) {
	if len(outcomes) == 0 {
		fmt.Println("Nothing to clean.")
		return
	}

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			rows = append(rows, []string{o.Branch, dirtyStyle.Render("failed"), o.Err.Error()})
		case o.Skipped:
			rows = append(rows, []string{o.Branch, dimStyle.Render("skipped"), o.Reason})
		case o.RemoteDeleted:
			rows = append(rows, []string{o.Branch, mergedStyle.Render("removed"), "local and remote branch deleted"})
		default:
			rows = append(rows, []string{o.Branch, mergedStyle.Render("removed"), "local branch deleted"})
		}
	}
	fmt.Print(renderTable([]string{"BRANCH", "RESULT", "DETAIL"}, rows))
}
