// Package engine computes each worktree's relationship to a target branch
// and performs the two history-moving operations: fast-forward sync and
// rebase with autostash.
//
// Everything here is a snapshot: other agents commit concurrently to the
// shared store, so a status read can be stale by the time it returns.
// Nothing is cached across invocations for the same reason.
package engine

import (
	"errors"
	"os"
	"strings"

	"github.com/mmr-tortoise/trellis/internal/model"
	"github.com/mmr-tortoise/trellis/internal/project"
	"github.com/mmr-tortoise/trellis/internal/registry"
)

// Engine computes sync state and runs sync/rebase for one project.
type Engine struct {
	p   *project.Project
	reg *registry.Registry
}

// New creates an Engine for the given project.
func New(p *project.Project) *Engine {
	return &Engine{p: p, reg: registry.New(p)}
}

// Status computes the sync state of every worktree relative to target,
// in the registry's enumeration order. Registry drift is passed through for
// the caller to surface.
func (e *Engine) Status(target string) ([]model.BranchStatus, []model.RegistryInconsistency, error) {
	worktrees, problems, err := e.reg.List()
	if err != nil {
		return nil, nil, err
	}

	if target == "" {
		if target, err = e.p.DefaultBranch(); err != nil {
			return nil, nil, err
		}
	}
	targetRef := e.p.TargetRef(target)
	targetTip, err := e.p.Git.RevParse(targetRef)
	if err != nil {
		return nil, nil, err
	}

	statuses := make([]model.BranchStatus, 0, len(worktrees))
	for _, wt := range worktrees {
		state, err := e.stateOf(wt, targetRef, targetTip)
		if err != nil {
			return nil, nil, err
		}
		statuses = append(statuses, model.BranchStatus{Worktree: wt, State: state})
	}

	return statuses, problems, nil
}

// stateOf computes one worktree's SyncState against a resolved target ref.
func (e *Engine) stateOf(wt model.Worktree, targetRef, targetTip string) (model.SyncState, error) {
	var state model.SyncState

	ahead, behind, err := e.p.Git.AheadBehind(wt.Branch, targetRef)
	if err != nil {
		return state, err
	}
	state.Ahead = ahead
	state.Behind = behind

	ancestor, err := e.p.Git.IsAncestor(wt.Branch, targetRef)
	if err != nil {
		return state, err
	}
	// A branch sitting exactly on the target tip has no work of its own yet;
	// reporting it merged would feed it straight into cleanup, so identical
	// tips do not count.
	state.Merged = ancestor && wt.HEAD != targetTip

	// A registered-but-missing directory is reported by the registry; here
	// it simply cannot be dirty.
	if _, statErr := os.Stat(wt.Path); statErr == nil {
		dirty, err := e.p.Git.IsDirty(wt.Path)
		if err != nil {
			return state, err
		}
		state.Dirty = dirty
	}

	return state, nil
}

// SyncAction describes what Sync did (or declined to do) for one worktree.
type SyncAction string

const (
	// SyncUpdated means the worktree was fast-forwarded to its upstream.
	SyncUpdated SyncAction = "updated"

	// SyncUpToDate means the worktree had nothing to pull.
	SyncUpToDate SyncAction = "up-to-date"

	// SyncDiverged means local commits diverge from upstream; the worktree
	// was skipped because a fast-forward is impossible and forcing would
	// discard local history.
	SyncDiverged SyncAction = "diverged"

	// SyncNoUpstream means the branch has no upstream configured.
	SyncNoUpstream SyncAction = "no-upstream"

	// SyncFailed means the fast-forward itself failed (e.g. uncommitted
	// changes colliding with incoming files); the error says why.
	SyncFailed SyncAction = "failed"
)

// SyncResult reports the outcome for one worktree. Outcomes are collected
// for every worktree before anything is reported, so one failure never hides
// the rest.
type SyncResult struct {
	Branch string
	Action SyncAction
	Err    error
}

// Sync fetches from the remote once, then fast-forwards every worktree with
// a configured upstream. Worktrees that cannot fast-forward are skipped and
// reported, never force-updated: sync must not discard local history.
func (e *Engine) Sync() ([]SyncResult, error) {
	if e.p.Git.HasRemote(e.p.Config.Remote) {
		if err := e.p.Git.Fetch(e.p.Config.Remote); err != nil {
			return nil, err
		}
	}

	worktrees, _, err := e.reg.List()
	if err != nil {
		return nil, err
	}

	results := make([]SyncResult, 0, len(worktrees))
	for _, wt := range worktrees {
		results = append(results, e.syncOne(wt))
	}
	return results, nil
}

// syncOne applies the fast-forward decision table to a single worktree.
func (e *Engine) syncOne(wt model.Worktree) SyncResult {
	if wt.Upstream == "" {
		return SyncResult{Branch: wt.Branch, Action: SyncNoUpstream}
	}

	ahead, behind, err := e.p.Git.AheadBehind(wt.Branch, wt.Upstream)
	if err != nil {
		return SyncResult{Branch: wt.Branch, Action: SyncFailed, Err: err}
	}

	switch {
	case behind == 0:
		return SyncResult{Branch: wt.Branch, Action: SyncUpToDate}
	case ahead > 0:
		return SyncResult{Branch: wt.Branch, Action: SyncDiverged}
	}

	if _, err := e.p.Git.RunIn(wt.Path, "merge", "--ff-only", wt.Upstream); err != nil {
		return SyncResult{Branch: wt.Branch, Action: SyncFailed, Err: err}
	}
	return SyncResult{Branch: wt.Branch, Action: SyncUpdated}
}

// Rebase rebases the worktree containing dir onto target, stashing and
// restoring uncommitted changes around the rebase. On conflict the worktree
// is left mid-rebase — exactly the state git leaves for manual resolution —
// and the returned *model.RebaseConflictError names the conflicting paths.
func (e *Engine) Rebase(dir, target string) error {
	wtRoot, err := e.p.Git.TopLevel(dir)
	if err != nil {
		return err
	}
	if _, err := e.p.Layout.PathBranch(wtRoot); err != nil {
		return errors.New("rebase must run inside a worktree, not at the project root")
	}

	if e.p.Git.HasRemote(e.p.Config.Remote) {
		if err := e.p.Git.Fetch(e.p.Config.Remote); err != nil {
			return err
		}
	}
	if target == "" {
		if target, err = e.p.DefaultBranch(); err != nil {
			return err
		}
	}
	targetRef := e.p.TargetRef(target)

	// --autostash sets uncommitted changes aside and reapplies them after
	// the rebase; if reapplying conflicts, git keeps the stash so no work
	// is lost, and the conflict surfaces like any other.
	if _, err := e.p.Git.RunIn(wtRoot, "rebase", "--autostash", targetRef); err != nil {
		if paths, pathsErr := e.p.Git.ConflictedPaths(wtRoot); pathsErr == nil && len(paths) > 0 {
			return &model.RebaseConflictError{Target: target, Paths: paths, Err: err}
		}
		if isConflict(err) {
			return &model.RebaseConflictError{Target: target, Err: err}
		}
		return err
	}
	return nil
}

// isConflict recognizes git's rebase-conflict diagnostics when the unmerged
// path listing is unavailable.
func isConflict(err error) bool {
	var gitErr *model.GitError
	if errors.As(err, &gitErr) {
		return strings.Contains(gitErr.Stderr, "CONFLICT") ||
			strings.Contains(gitErr.Stderr, "could not apply")
	}
	return false
}
