package git

import (
	"fmt"
	"strings"
)

// BranchExists reports whether a local branch exists in the shared store.
// Only the exit code of `rev-parse --verify` matters; a failure here is the
// expected negative, not an error.
func (r *Runner) BranchExists(branch string) bool {
	_, err := r.Run("rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

// RemoteBranchExists reports whether the remote tracking ref
// <remote>/<branch> exists.
func (r *Runner) RemoteBranchExists(remote, branch string) bool {
	_, err := r.Run("rev-parse", "--verify", "--quiet", "refs/remotes/"+remote+"/"+branch)
	return err == nil
}

// DefaultBranch returns the branch HEAD points at in the store. For a bare
// clone this is the remote's default branch, captured at clone time.
func (r *Runner) DefaultBranch() (string, error) {
	out, err := r.Run("symbolic-ref", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the short branch name checked out in dir.
// Returns "HEAD" for a detached worktree.
func (r *Runner) CurrentBranch(dir string) (string, error) {
	out, err := r.RunIn(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// TopLevel returns the root of the working tree containing dir.
func (r *Runner) TopLevel(dir string) (string, error) {
	out, err := r.RunIn(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// IsDirty reports whether the worktree at dir has uncommitted changes,
// including untracked files. Any porcelain output counts as dirty.
func (r *Runner) IsDirty(dir string) (bool, error) {
	out, err := r.RunIn(dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// IsAncestor reports whether ref is an ancestor of target, i.e. fully
// incorporated into it. `merge-base --is-ancestor` answers via exit code:
// 0 means yes, 1 means no, anything else is a real failure.
func (r *Runner) IsAncestor(ref, target string) (bool, error) {
	_, err := r.Run("merge-base", "--is-ancestor", ref, target)
	if err == nil {
		return true, nil
	}
	if ExitStatus(err) == 1 {
		return false, nil
	}
	return false, err
}

// AheadBehind counts the commits reachable only from branch (ahead) and only
// from target (behind), using a single symmetric-difference rev-list walk.
func (r *Runner) AheadBehind(branch, target string) (ahead, behind int, err error) {
	// Left side of A...B is commits only in A (the target), right side only
	// in B (the branch), so the output reads "<behind>\t<ahead>".
	out, err := r.Run("rev-list", "--left-right", "--count", target+"..."+branch)
	if err != nil {
		return 0, 0, err
	}

	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", strings.TrimSpace(out))
	}
	if _, err := fmt.Sscanf(fields[0], "%d", &behind); err != nil {
		return 0, 0, fmt.Errorf("parsing rev-list count %q: %w", fields[0], err)
	}
	if _, err := fmt.Sscanf(fields[1], "%d", &ahead); err != nil {
		return 0, 0, fmt.Errorf("parsing rev-list count %q: %w", fields[1], err)
	}
	return ahead, behind, nil
}

// RevParse resolves a ref to its commit SHA.
func (r *Runner) RevParse(ref string) (string, error) {
	out, err := r.Run("rev-parse", "--verify", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// HasRemote reports whether the store has a remote with the given name.
func (r *Runner) HasRemote(name string) bool {
	out, err := r.Run("remote")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == name {
			return true
		}
	}
	return false
}

// Upstream returns the short upstream ref of a branch (e.g. "origin/main"),
// or "" when the branch has no upstream configured.
func (r *Runner) Upstream(branch string) (string, error) {
	out, err := r.Run("for-each-ref", "--format=%(upstream:short)", "refs/heads/"+branch)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SetUpstream points branch at the remote tracking ref <remote>/<branch>.
func (r *Runner) SetUpstream(branch, remote string) error {
	_, err := r.Run("branch", "--set-upstream-to="+remote+"/"+branch, branch)
	return err
}

// Fetch updates remote tracking refs from the given remote, pruning refs
// whose remote branch is gone.
func (r *Runner) Fetch(remote string) error {
	_, err := r.Run("fetch", "--prune", remote)
	return err
}

// DeleteLocalBranch removes a local branch. force uses -D, which skips
// git's own merged-into-HEAD check; callers only pass force after
// establishing mergedness against the actual target themselves.
func (r *Runner) DeleteLocalBranch(branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := r.Run("branch", flag, branch)
	return err
}

// DeleteRemoteBranch deletes <branch> on <remote> via a push refspec.
func (r *Runner) DeleteRemoteBranch(remote, branch string) error {
	_, err := r.Run("push", remote, "--delete", branch)
	return err
}

// ConflictedPaths lists the unmerged paths in a worktree, as left behind by
// a conflicted rebase or stash application.
func (r *Runner) ConflictedPaths(dir string) ([]string, error) {
	out, err := r.RunIn(dir, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}
