// Package cli — lazygit.go implements the "trellis lazygit" command.
//
// A thin launcher: it opens the configured git TUI inside a worktree, with
// stdio handed straight through. Run from the project root it falls back to
// the default branch's worktree, since the root itself is not a checkout.
package cli

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/trellis/internal/project"
	"github.com/mmr-tortoise/trellis/internal/registry"
)

// NewLazygitCommand creates the "lazygit" cobra command.
func NewLazygitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lazygit [branch]",
		Short: "Open lazygit in a worktree",
		Long: `Open the configured git TUI (lazygit by default, see .trellis.yml) in
the named branch's worktree. Without an argument it uses the worktree
containing the current directory, or the default branch's worktree when
run from the project root.

Examples:
  trellis lazygit
  trellis lazygit feat/login`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			branch := ""
			if len(args) == 1 {
				branch = args[0]
			}
			return runLazygit(branch)
		},
	}
}

// runLazygit resolves the worktree directory and hands the terminal over.
func runLazygit(branch string) error {
	p, err := openProject()
	if err != nil {
		return err
	}

	dir, err := resolveLazygitDir(p, branch)
	if err != nil {
		return err
	}

	VerboseLog("Launching %s in %s", p.Config.Lazygit, dir)
	tui := exec.Command(p.Config.Lazygit)
	tui.Dir = dir
	tui.Stdin = os.Stdin
	tui.Stdout = os.Stdout
	tui.Stderr = os.Stderr
	return tui.Run()
}

// resolveLazygitDir picks the worktree to open: the named branch's, the one
// containing the current directory, or the default branch's when standing at
// the project root.
func resolveLazygitDir(p *project.Project, branch string) (string, error) {
	if branch != "" {
		wt, err := registry.New(p).Find(branch)
		if err != nil {
			return "", err
		}
		return wt.Path, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if cwd != p.Root {
		return cwd, nil
	}

	def, err := p.DefaultBranch()
	if err != nil {
		return "", err
	}
	wt, err := registry.New(p).Find(def)
	if err != nil {
		return "", err
	}
	return wt.Path, nil
}
