package model

// Worktree is a checked-out branch materialized as a directory under the
// project root. The branch name may contain slashes (a nested branch
// namespace such as "feat/add-login"), in which case the directory path has
// the same nesting. Branch name and directory path form a bijection for the
// lifetime of the worktree.
type Worktree struct {
	// Branch is the short branch name (e.g., "feat/add-login",
	// not "refs/heads/feat/add-login").
	Branch string

	// Path is the absolute filesystem path to the worktree directory.
	Path string

	// HEAD is the commit the worktree currently points to.
	HEAD string

	// Upstream is the remote tracking branch this worktree's branch follows
	// (e.g., "origin/feat/add-login"). Empty if no upstream is configured.
	Upstream string
}

// SyncState describes a worktree's relationship to a target branch.
// It is recomputed on demand and never cached across invocations, because
// other worktrees commit concurrently to the shared store and any snapshot
// can be stale by the time it is read.
type SyncState struct {
	// Ahead is the number of commits on the worktree's branch that are not
	// reachable from the target.
	Ahead int

	// Behind is the number of commits on the target that are not reachable
	// from the worktree's branch.
	Behind int

	// Merged is true iff the branch tip is an ancestor of the target's tip,
	// i.e. the branch is fully incorporated.
	Merged bool

	// Dirty is true if the working tree has uncommitted changes
	// (including untracked files).
	Dirty bool
}

// BranchStatus pairs a worktree with its computed sync state, as produced
// by the status engine for one target branch.
type BranchStatus struct {
	Worktree Worktree
	State    SyncState
}

// InconsistencyKind classifies registry drift between git's worktree
// bookkeeping and the directories actually present under the project root.
type InconsistencyKind string

const (
	// MissingDirectory means git registers a worktree whose directory no
	// longer exists on disk.
	MissingDirectory InconsistencyKind = "missing-directory"

	// UnregisteredDirectory means a directory under the project root looks
	// like a worktree but git does not know about it.
	UnregisteredDirectory InconsistencyKind = "unregistered-directory"
)

// RegistryInconsistency is a single detected drift condition. It is reported
// to the caller, never auto-repaired: guessing intent (delete the stray
// directory? re-register it?) risks data loss, so repair always requires an
// explicit lifecycle operation.
type RegistryInconsistency struct {
	Kind   InconsistencyKind
	Branch string // may be empty for unregistered directories in detached state
	Path   string
}

// String renders the inconsistency as a one-line warning.
func (ri RegistryInconsistency) String() string {
	switch ri.Kind {
	case MissingDirectory:
		return "worktree " + ri.Branch + " is registered but its directory " + ri.Path + " is missing"
	case UnregisteredDirectory:
		return "directory " + ri.Path + " looks like a worktree but is not registered"
	default:
		return "registry inconsistency at " + ri.Path
	}
}
