// Package cleanup finds and removes worktrees whose branches are fully
// merged into a target branch.
//
// Plan and Execute are split so the caller can show what would happen
// before anything is touched. Execution is collect-all: every candidate is
// attempted and gets its own outcome, so one skipped worktree never hides
// the rest.
package cleanup

import (
	"errors"
	"fmt"

	"github.com/mmr-tortoise/trellis/internal/engine"
	"github.com/mmr-tortoise/trellis/internal/lifecycle"
	"github.com/mmr-tortoise/trellis/internal/model"
	"github.com/mmr-tortoise/trellis/internal/project"
)

// Cleaner plans and executes merged-branch cleanup for one project.
type Cleaner struct {
	p   *project.Project
	eng *engine.Engine
	ctl *lifecycle.Controller
}

// New creates a Cleaner for the given project.
func New(p *project.Project) *Cleaner {
	return &Cleaner{p: p, eng: engine.New(p), ctl: lifecycle.New(p)}
}

// Outcome reports what Execute did for one candidate branch.
type Outcome struct {
	// Branch is the candidate branch name.
	Branch string

	// Removed is true once the worktree and local branch are gone.
	Removed bool

	// RemoteDeleted is true when the remote branch was deleted as well.
	RemoteDeleted bool

	// Skipped is true when the candidate was deliberately left alone;
	// Reason says why.
	Skipped bool
	Reason  string

	// Err is set when removal was attempted but failed.
	Err error
}

// Plan returns the worktrees whose branches are merged into target and are
// therefore candidates for removal. The target branch and the default branch
// are never candidates, no matter what the merge computation says about them.
func (c *Cleaner) Plan(target string) ([]model.BranchStatus, error) {
	if target == "" {
		var err error
		if target, err = c.p.DefaultBranch(); err != nil {
			return nil, err
		}
	}
	def, err := c.p.DefaultBranch()
	if err != nil {
		return nil, err
	}

	statuses, _, err := c.eng.Status(target)
	if err != nil {
		return nil, err
	}

	var candidates []model.BranchStatus
	for _, s := range statuses {
		if !s.State.Merged {
			continue
		}
		if s.Worktree.Branch == target || s.Worktree.Branch == def {
			continue
		}
		candidates = append(candidates, s)
	}
	return candidates, nil
}

// Execute removes each candidate: the worktree, the local branch, and the
// remote branch when one exists. A dirty worktree is skipped rather than
// forced, since mergedness says nothing about uncommitted files.
func (c *Cleaner) Execute(candidates []model.BranchStatus) []Outcome {
	outcomes := make([]Outcome, 0, len(candidates))
	for _, cand := range candidates {
		outcomes = append(outcomes, c.executeOne(cand))
	}
	return outcomes
}

func (c *Cleaner) executeOne(cand model.BranchStatus) Outcome {
	branch := cand.Worktree.Branch

	if cand.State.Dirty {
		return Outcome{Branch: branch, Skipped: true, Reason: "uncommitted changes"}
	}

	if err := c.ctl.Remove(branch, false); err != nil {
		// The dirty check above and the removal race against concurrent
		// edits; a refusal at this point is a skip, not a failure.
		var dirtyErr *model.DirtyWorktreeError
		if errors.As(err, &dirtyErr) {
			return Outcome{Branch: branch, Skipped: true, Reason: "uncommitted changes"}
		}
		return Outcome{Branch: branch, Err: err}
	}

	// The merge computation already established the branch is contained in
	// the target, so git's own merged-into-HEAD heuristic is bypassed.
	if err := c.p.Git.DeleteLocalBranch(branch, true); err != nil {
		return Outcome{Branch: branch, Err: fmt.Errorf("worktree removed but branch deletion failed: %w", err)}
	}

	out := Outcome{Branch: branch, Removed: true}
	if c.p.Git.RemoteBranchExists(c.p.Config.Remote, branch) {
		if err := c.p.Git.DeleteRemoteBranch(c.p.Config.Remote, branch); err != nil {
			out.Err = fmt.Errorf("remote branch deletion failed: %w", err)
			return out
		}
		out.RemoteDeleted = true
	}
	return out
}
