// Package cli — ls.go implements the "trellis ls" command.
//
// The listing is driven by git's own worktree bookkeeping, not a directory
// scan, so it reflects the same truth every other command operates on. Drift
// between the bookkeeping and the filesystem is printed as warnings and
// makes the command exit non-zero, because automated agents must not treat a
// drifted listing as clean.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/trellis/internal/model"
	"github.com/mmr-tortoise/trellis/internal/registry"
)

// NewListCommand creates the "ls" cobra command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List all worktrees in this project",
		Long: `List every branch directory in the project, with its path, current
commit, and upstream.

Inconsistencies between git's worktree registrations and the directories
on disk are printed as warnings; when any exist the command exits with a
distinct code so scripts notice.

Examples:
  trellis ls
  trellis ls --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList()
		},
	}
}

// lsEntryJSON is the JSON output structure for a single worktree.
type lsEntryJSON struct {
	Branch   string `json:"branch"`
	Path     string `json:"path"`
	Head     string `json:"head"`
	Upstream string `json:"upstream,omitempty"`
}

// runList prints the worktree listing and surfaces registry drift.
func runList() error {
	p, err := openProject()
	if err != nil {
		return err
	}

	worktrees, problems, err := registry.New(p).List()
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		type resultJSON struct {
			Worktrees       []lsEntryJSON `json:"worktrees"`
			Inconsistencies []string      `json:"inconsistencies,omitempty"`
		}
		// Empty slice instead of nil so JSON output shows [] instead of null.
		result := resultJSON{Worktrees: make([]lsEntryJSON, 0, len(worktrees))}
		for _, wt := range worktrees {
			result.Worktrees = append(result.Worktrees, lsEntryJSON{
				Branch:   wt.Branch,
				Path:     wt.Path,
				Head:     wt.HEAD,
				Upstream: wt.Upstream,
			})
		}
		for _, problem := range problems {
			result.Inconsistencies = append(result.Inconsistencies, problem.String())
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		printListText(worktrees)
		for _, problem := range problems {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", problem)
		}
	}

	if len(problems) > 0 {
		return &model.InconsistentRegistryError{Problems: problems}
	}
	return nil
}

// printListText renders the listing as an aligned table.
func printListText(worktrees []model.Worktree) {
	if len(worktrees) == 0 {
		fmt.Println("No worktrees found.")
		return
	}

	rows := make([][]string, 0, len(worktrees))
	for _, wt := range worktrees {
		upstream := wt.Upstream
		if upstream == "" {
			upstream = dimStyle.Render("-")
		}
		rows = append(rows, []string{wt.Branch, shortSHA(wt.HEAD), upstream, wt.Path})
	}
	fmt.Print(renderTable([]string{"BRANCH", "HEAD", "UPSTREAM", "PATH"}, rows))
}

// shortSHA abbreviates a commit SHA for table display.
func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
