package lifecycle

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/trellis/internal/model"
	"github.com/mmr-tortoise/trellis/internal/project"
	"github.com/mmr-tortoise/trellis/internal/registry"
)

// Controller performs the mutating worktree operations for one project.
// It holds no state of its own; every operation re-derives what it needs
// from the store and the filesystem, so concurrent invocations from other
// agents settle on git's own ref locking rather than anything in-process.
type Controller struct {
	p   *project.Project
	reg *registry.Registry
}

// New creates a Controller for the given project.
func New(p *project.Project) *Controller {
	return &Controller{p: p, reg: registry.New(p)}
}

// Add creates a worktree for branch at its derived path. An existing branch
// is checked out as-is; a new branch is created from base (defaulting to the
// project's default branch). When track is true and the remote has a
// matching branch, the new worktree's branch is wired to follow it so sync
// covers it immediately.
func (c *Controller) Add(branch, base string, track bool) (model.Worktree, error) {
	path, err := c.p.Layout.BranchPath(branch)
	if err != nil {
		return model.Worktree{}, err
	}

	// An empty directory is acceptable (git fills it); anything else
	// occupying the path is a collision.
	if occupied, err := pathOccupied(path); err != nil {
		return model.Worktree{}, err
	} else if occupied {
		return model.Worktree{}, &model.PathCollisionError{Branch: branch, Path: path}
	}

	if c.p.Git.BranchExists(branch) {
		// Existing branch: check it out into a new worktree. Git refuses a
		// branch already checked out elsewhere; that refusal (and the race
		// where another agent grabs the branch between our check and the
		// add) is classified below.
		if _, err := c.p.Git.Run("worktree", "add", path, branch); err != nil {
			return model.Worktree{}, classifyAdd(branch, err)
		}
	} else {
		if base == "" {
			base, err = c.p.DefaultBranch()
			if err != nil {
				return model.Worktree{}, err
			}
		}
		if _, err := c.p.Git.Run("worktree", "add", "-b", branch, path, base); err != nil {
			return model.Worktree{}, classifyAdd(branch, err)
		}
	}

	if track && c.p.Git.RemoteBranchExists(c.p.Config.Remote, branch) {
		if err := c.p.Git.SetUpstream(branch, c.p.Config.Remote); err != nil {
			return model.Worktree{}, err
		}
	}

	return c.reg.Find(branch)
}

// Remove deletes the worktree for branch: the registration, the directory,
// and any newly-empty parent directories up to (but not including) the
// project root. Uncommitted changes block removal unless force is set.
// The branch itself is kept — removing a worktree never deletes history.
//
// When the directory is already gone (a reported registry inconsistency),
// Remove prunes the stale registration; that is the explicit repair path.
func (c *Controller) Remove(branch string, force bool) error {
	wt, err := c.reg.Find(branch)
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(wt.Path); os.IsNotExist(statErr) {
		if _, err := c.p.Git.Run("worktree", "prune"); err != nil {
			return err
		}
		return c.removeOrphanedParents(wt.Path)
	}

	if !force {
		dirty, err := c.p.Git.IsDirty(wt.Path)
		if err != nil {
			return err
		}
		if dirty {
			return &model.DirtyWorktreeError{Branch: branch, Path: wt.Path}
		}
	}

	args := []string{"worktree", "remove", wt.Path}
	if force {
		args = []string{"worktree", "remove", "--force", wt.Path}
	}
	if _, err := c.p.Git.Run(args...); err != nil {
		// Our cleanliness probe and git's can disagree (a file appears
		// between the two); keep the classification honest either way.
		if gitSaysDirty(err) {
			return &model.DirtyWorktreeError{Branch: branch, Path: wt.Path}
		}
		return err
	}

	return c.removeOrphanedParents(wt.Path)
}

// Rename renames a branch and moves its worktree directory in one logical
// operation. From the caller's perspective it is all-or-nothing: on partial
// failure the side that succeeded is rolled back, and the returned
// *model.RenameError states exactly which state is in effect.
//
// The directory move itself is not atomic at the filesystem level; the
// rollback narrows the window but cannot close it entirely.
func (c *Controller) Rename(old, new string) error {
	newPath, err := c.p.Layout.BranchPath(new)
	if err != nil {
		return err
	}

	wt, err := c.reg.Find(old)
	if err != nil {
		return err
	}

	if occupied, err := pathOccupied(newPath); err != nil {
		return err
	} else if occupied {
		return &model.PathCollisionError{Branch: new, Path: newPath}
	}
	if c.p.Git.BranchExists(new) {
		return &model.BranchInUseError{Branch: new}
	}

	// Step 1: rename the branch. Git updates the worktree's HEAD symref,
	// branch config, and reflog in one ref transaction.
	if _, err := c.p.Git.Run("branch", "-m", old, new); err != nil {
		return &model.RenameError{Old: old, New: new,
			Residual: "branch and directory unchanged", Err: err}
	}

	// Step 2: move the directory. Nested targets need their namespace
	// directories created first; on failure those are cleaned up again.
	if err := os.MkdirAll(filepath.Dir(newPath), 0755); err != nil {
		return c.rollbackRename(old, new, newPath, err)
	}
	if _, err := c.p.Git.Run("worktree", "move", wt.Path, newPath); err != nil {
		return c.rollbackRename(old, new, newPath, err)
	}

	return c.removeOrphanedParents(wt.Path)
}

// rollbackRename undoes the branch rename after a failed directory move and
// reports the residual state either way.
func (c *Controller) rollbackRename(old, new, newPath string, cause error) error {
	// Drop any namespace directories created for the target first; they are
	// empty, so this cannot touch user data.
	if orphans, err := c.p.Layout.OrphanedParents(newPath); err == nil {
		for _, dir := range orphans {
			_ = os.Remove(dir)
		}
	}

	if _, err := c.p.Git.Run("branch", "-m", new, old); err != nil {
		return &model.RenameError{Old: old, New: new,
			Residual: "branch renamed to " + new + " but directory not moved; branch rollback also failed: " + err.Error(),
			Err:      cause}
	}
	return &model.RenameError{Old: old, New: new,
		Residual: "rolled back, branch and directory unchanged", Err: cause}
}

// removeOrphanedParents deletes the strictly-empty chain of namespace
// directories left behind by a removed or moved worktree.
func (c *Controller) removeOrphanedParents(path string) error {
	orphans, err := c.p.Layout.OrphanedParents(path)
	if err != nil {
		return err
	}
	for _, dir := range orphans {
		if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// pathOccupied reports whether path exists as anything other than an empty
// directory.
func pathOccupied(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.IsDir() {
		return true, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

// classifyAdd turns git's "branch already in use" refusals into the typed
// error; everything else keeps its original diagnostic text.
func classifyAdd(branch string, err error) error {
	var gitErr *model.GitError
	if errors.As(err, &gitErr) {
		stderr := gitErr.Stderr
		if strings.Contains(stderr, "already checked out") ||
			strings.Contains(stderr, "already used by worktree") ||
			strings.Contains(stderr, "already exists") {
			return &model.BranchInUseError{Branch: branch, Err: err}
		}
	}
	return err
}

// gitSaysDirty recognizes git's refusal to remove a worktree with local
// modifications.
func gitSaysDirty(err error) bool {
	var gitErr *model.GitError
	if errors.As(err, &gitErr) {
		return strings.Contains(gitErr.Stderr, "contains modified or untracked files")
	}
	return false
}
