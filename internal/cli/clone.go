// Package cli — clone.go implements the "trellis clone" command.
//
// Clone is the project creation operation: it sets up the bare store,
// the gitdir pointer beside it, the remote tracking configuration, and a
// worktree for the remote's default branch.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/trellis/internal/lifecycle"
)

// NewCloneCommand creates the "clone" cobra command.
func NewCloneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clone <url> [directory]",
		Short: "Clone a repository into a new trellis project",
		Long: `Clone a repository into a new project root: a shared bare store under
.bare plus one directory per branch, starting with the remote's default
branch.

The target directory must be empty or absent. When omitted, it is
derived from the repository name in the URL.

Examples:
  trellis clone git@example.com:acme/widgets.git
  trellis clone git@example.com:acme/widgets.git ~/work/widgets`,

		Args: cobra.RangeArgs(1, 2),

		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 2 {
				dir = args[1]
			}
			return runClone(args[0], dir)
		},
	}
}

// runClone performs the clone and reports the created layout.
func runClone(url, dir string) error {
	VerboseLog("Cloning %s...", url)
	p, err := lifecycle.Clone(url, dir)
	if err != nil {
		return err
	}

	def, err := p.DefaultBranch()
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		result := map[string]string{
			"root":          p.Root,
			"defaultBranch": def,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Cloned %s\n", url)
	fmt.Printf("  Root:    %s\n", p.Root)
	fmt.Printf("  Default: %s\n", def)
	return nil
}
