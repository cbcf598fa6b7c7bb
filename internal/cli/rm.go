// Package cli — rm.go implements the "trellis rm" command.
//
// Removing a worktree deletes the directory and the registration but keeps
// the branch, so committed work stays reachable and "trellis add" resumes it
// later. Uncommitted changes block removal unless --force is given.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/trellis/internal/lifecycle"
)

// rmFlags holds the flag values for the rm command.
type rmFlags struct {
	force bool // --force: discard uncommitted changes
}

// NewRemoveCommand creates the "rm" cobra command.
func NewRemoveCommand() *cobra.Command {
	flags := &rmFlags{}

	cmd := &cobra.Command{
		Use:   "rm <branch>",
		Short: "Remove a branch's directory (the branch survives)",
		Long: `Remove the worktree directory for a branch, along with any namespace
directories left empty by the removal. The branch itself is kept, so
nothing committed is lost.

A worktree with uncommitted changes is refused unless --force is given.

Examples:
  trellis rm feat/login
  trellis rm feat/login --force`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(args[0], flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Remove even with uncommitted changes (discards them)")

	return cmd
}

// runRemove removes the worktree for a branch.
func runRemove(branch string, flags *rmFlags) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	VerboseLog("Removing worktree for branch %q...", branch)
	if err := lifecycle.New(p).Remove(branch, flags.force); err != nil {
		return err
	}

	syncWorkspace(p)

	if !IsJSONOutput() {
		fmt.Printf("Removed worktree for branch %q (branch kept)\n", branch)
	}
	return nil
}
