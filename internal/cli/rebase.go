// Package cli — rebase.go implements the "trellis rebase" command.
//
// Rebase operates on the worktree enclosing the current directory, so the
// user never names it: wherever they stand is what gets rebased. Uncommitted
// changes are autostashed around the rebase.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/trellis/internal/engine"
)

// NewRebaseCommand creates the "rebase" cobra command.
func NewRebaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rebase [target]",
		Short: "Rebase the current worktree onto a target branch",
		Long: `Rebase the worktree containing the current directory onto the target
branch (default: the default branch), fetching first so the target is
current. Uncommitted changes are stashed and reapplied automatically.

On conflict the worktree is left mid-rebase, exactly as git leaves it,
for resolution with the usual git tooling (rebase --continue / --abort).

Examples:
  trellis rebase
  trellis rebase release/1.2`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runRebase(target)
		},
	}
}

// runRebase rebases the enclosing worktree.
func runRebase(target string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	VerboseLog("Rebasing worktree containing %s...", cwd)
	if err := engine.New(p).Rebase(cwd, target); err != nil {
		return err
	}

	if !IsJSONOutput() {
		fmt.Println("Rebase complete")
	}
	return nil
}
