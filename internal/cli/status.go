// Package cli — status.go implements the "trellis status" command.
//
// Status answers "where does every branch stand relative to the target":
// commits ahead, commits behind, merged or not, dirty or not. The numbers
// are a snapshot — with multiple agents committing to the shared store they
// can be stale by the time they are read.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/trellis/internal/engine"
	"github.com/mmr-tortoise/trellis/internal/model"
)

// statusFlags holds the flag values for the status command.
type statusFlags struct {
	branch string // --branch: restrict to a single branch
}

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	flags := &statusFlags{}

	cmd := &cobra.Command{
		Use:   "status [target]",
		Short: "Show each branch's relationship to the target branch",
		Long: `Show, for every worktree, how many commits its branch is ahead of and
behind the target, whether it is fully merged, and whether the directory
has uncommitted changes.

The target defaults to the project's default branch; its remote tracking
ref is used when one exists.

Examples:
  trellis status
  trellis status release/1.2
  trellis status --branch feat/login --json`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runStatus(target, flags)
		},
	}

	cmd.Flags().StringVar(&flags.branch, "branch", "", "Show only this branch")

	return cmd
}

// statusEntryJSON is the JSON output structure for one branch's status.
type statusEntryJSON struct {
	Branch string `json:"branch"`
	Path   string `json:"path"`
	Ahead  int    `json:"ahead"`
	Behind int    `json:"behind"`
	Merged bool   `json:"merged"`
	Dirty  bool   `json:"dirty"`
}

// statusResultJSON is the full status payload. Registry drift rides along in
// the same document, like in ls: the JSON surface is what automated agents
// read, so drift must never be visible only on the text path.
type statusResultJSON struct {
	Branches        []statusEntryJSON `json:"branches"`
	Inconsistencies []string          `json:"inconsistencies,omitempty"`
}

// buildStatusResult assembles the JSON payload from the engine's output.
func buildStatusResult(statuses []model.BranchStatus, problems []model.RegistryInconsistency) statusResultJSON {
	result := statusResultJSON{Branches: make([]statusEntryJSON, 0, len(statuses))}
	for _, s := range statuses {
		result.Branches = append(result.Branches, statusEntryJSON{
			Branch: s.Worktree.Branch,
			Path:   s.Worktree.Path,
			Ahead:  s.State.Ahead,
			Behind: s.State.Behind,
			Merged: s.State.Merged,
			Dirty:  s.State.Dirty,
		})
	}
	for _, problem := range problems {
		result.Inconsistencies = append(result.Inconsistencies, problem.String())
	}
	return result
}

// runStatus computes and prints the per-branch sync state.
func runStatus(target string, flags *statusFlags) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	statuses, problems, err := engine.New(p).Status(target)
	if err != nil {
		return err
	}

	if flags.branch != "" {
		filtered := statuses[:0]
		for _, s := range statuses {
			if s.Worktree.Branch == flags.branch {
				filtered = append(filtered, s)
			}
		}
		if len(filtered) == 0 {
			return &model.NotFoundError{Branch: flags.branch}
		}
		statuses = filtered
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(buildStatusResult(statuses, problems), "", "  ")
		fmt.Println(string(data))
	} else {
		printStatusText(statuses)
		for _, problem := range problems {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", problem)
		}
	}

	return nil
}

// printStatusText renders the status table.
func printStatusText(statuses []model.BranchStatus) {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := ""
		switch {
		case s.State.Merged:
			state = mergedStyle.Render("merged")
		case s.State.Ahead == 0 && s.State.Behind == 0:
			state = dimStyle.Render("current")
		default:
			state = "active"
		}

		dirty := dimStyle.Render("clean")
		if s.State.Dirty {
			dirty = dirtyStyle.Render("dirty")
		}

		rows = append(rows, []string{
			s.Worktree.Branch,
			formatAheadBehind(s.State.Ahead, s.State.Behind),
			state,
			dirty,
		})
	}
	fmt.Print(renderTable([]string{"BRANCH", "AHEAD/BEHIND", "STATE", "TREE"}, rows))
}
