// Package cli — rename.go implements the "trellis rename" command.
//
// Rename keeps the branch<->directory bijection intact by moving both in one
// operation. When the second half fails, the first half is rolled back and
// the error says exactly which state the project is in.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/trellis/internal/lifecycle"
)

// NewRenameCommand creates the "rename" cobra command.
func NewRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old-branch> <new-branch>",
		Short: "Rename a branch and move its directory together",
		Long: `Rename a branch and relocate its worktree directory to match, so the
branch name and directory path stay in lockstep. Uncommitted changes
travel with the directory.

Examples:
  trellis rename feat experiment/feat
  trellis rename fix/typo fix/login-typo`,

		Args: cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(args[0], args[1])
		},
	}
}

// runRename renames the branch and moves its directory.
func runRename(old, new string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	VerboseLog("Renaming %q to %q...", old, new)
	if err := lifecycle.New(p).Rename(old, new); err != nil {
		return err
	}

	syncWorkspace(p)

	if !IsJSONOutput() {
		fmt.Printf("Renamed %q to %q\n", old, new)
	}
	return nil
}
