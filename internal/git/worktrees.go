package git

import "strings"

// WorktreeInfo holds metadata about a single worktree entry as parsed from
// `git worktree list --porcelain` output.
//
// Example porcelain block:
//
//	worktree /path/to/feat/login
//	HEAD abc123def456
//	branch refs/heads/feat/login
type WorktreeInfo struct {
	// Path is the absolute filesystem path to the worktree directory.
	Path string

	// Branch is the full branch reference (e.g., "refs/heads/main").
	// Empty if the worktree is in a detached HEAD state.
	Branch string

	// HEAD is the commit SHA the worktree currently points to.
	HEAD string

	// IsBare marks the entry for the bare store itself, which git reports
	// first in the listing.
	IsBare bool
}

// ShortBranch returns the branch name without the refs/heads/ prefix.
func (w WorktreeInfo) ShortBranch() string {
	return strings.TrimPrefix(w.Branch, "refs/heads/")
}

// Worktrees returns every worktree git knows about for this store, in git's
// own (stable) enumeration order.
func (r *Runner) Worktrees() ([]WorktreeInfo, error) {
	out, err := r.Run("worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parsePorcelain(out), nil
}

// parsePorcelain parses `git worktree list --porcelain` output. Blocks are
// separated by blank lines; each line is a space-separated key-value pair,
// with standalone markers like "bare" and "detached".
func parsePorcelain(output string) []WorktreeInfo {
	var worktrees []WorktreeInfo

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	var current *WorktreeInfo
	for _, line := range lines {
		// A blank line ends the current block.
		if line == "" {
			if current != nil {
				worktrees = append(worktrees, *current)
				current = nil
			}
			continue
		}

		key, value, _ := strings.Cut(line, " ")
		switch key {
		case "worktree":
			current = &WorktreeInfo{Path: value}
		case "HEAD":
			if current != nil {
				current.HEAD = value
			}
		case "branch":
			if current != nil {
				current.Branch = value
			}
		case "bare":
			if current != nil {
				current.IsBare = true
			}
			// "detached" needs no handling: a detached worktree simply has
			// an empty Branch field.
		}
	}

	if current != nil {
		worktrees = append(worktrees, *current)
	}

	return worktrees
}
