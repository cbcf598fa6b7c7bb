// Package cli — add.go implements the "trellis add" command.
//
// Add creates the directory for a branch: an existing branch is checked out
// as-is, a new branch is created from the base. When the remote already has
// a branch of the same name, the new branch tracks it unless --no-track is
// given.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/trellis/internal/lifecycle"
)

// addFlags holds the flag values for the add command.
type addFlags struct {
	noTrack bool // --no-track: skip upstream wiring
}

// NewAddCommand creates the "add" cobra command.
func NewAddCommand() *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:   "add <branch> [base]",
		Short: "Create a directory (worktree) for a branch",
		Long: `Create a worktree directory for a branch under the project root.
The directory path mirrors the branch name, including slashes:
"feat/login" lives at <root>/feat/login.

An existing branch is checked out where it left off. A new branch starts
from the base ref, defaulting to the project's default branch.

Examples:
  trellis add feat/login
  trellis add hotfix release/1.2
  trellis add experiment --no-track`,

		Args: cobra.RangeArgs(1, 2),

		RunE: func(cmd *cobra.Command, args []string) error {
			base := ""
			if len(args) == 2 {
				base = args[1]
			}
			return runAdd(args[0], base, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noTrack, "no-track", false, "Do not set an upstream even when the remote has this branch")

	return cmd
}

// runAdd creates the worktree and reports where it landed.
func runAdd(branch, base string, flags *addFlags) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	VerboseLog("Creating worktree for branch %q...", branch)
	wt, err := lifecycle.New(p).Add(branch, base, !flags.noTrack)
	if err != nil {
		return err
	}

	syncWorkspace(p)

	if IsJSONOutput() {
		result := map[string]string{
			"branch":   wt.Branch,
			"path":     wt.Path,
			"upstream": wt.Upstream,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Created worktree for branch %q\n", wt.Branch)
	fmt.Printf("  Path: %s\n", wt.Path)
	if wt.Upstream != "" {
		fmt.Printf("  Tracking: %s\n", wt.Upstream)
	}
	return nil
}
