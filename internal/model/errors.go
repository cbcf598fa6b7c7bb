package model

import (
	"fmt"
	"strings"
)

// ExitCode defines the stable CLI exit codes, one per error kind.
// Scripts and automated agents rely on these to classify failures,
// so values must never be renumbered.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitGitError indicates a git subprocess exited non-zero and no finer
	// classification was possible.
	ExitGitError ExitCode = 2

	// ExitReservedName indicates a branch name collides with a reserved
	// top-level directory (the bare store, configured reserved names).
	ExitReservedName ExitCode = 3

	// ExitPathCollision indicates the directory derived from a branch name
	// already exists and is not an empty directory.
	ExitPathCollision ExitCode = 4

	// ExitBranchInUse indicates the branch is already checked out in
	// another worktree, or was created concurrently by another agent.
	ExitBranchInUse ExitCode = 5

	// ExitDirtyWorktree indicates an operation refused to touch a worktree
	// with uncommitted changes and --force was not given.
	ExitDirtyWorktree ExitCode = 6

	// ExitRenameError indicates a rename could not complete atomically and
	// describes the residual state.
	ExitRenameError ExitCode = 7

	// ExitRebaseConflict indicates a rebase stopped on conflicts and the
	// worktree was left mid-rebase for manual resolution.
	ExitRebaseConflict ExitCode = 8

	// ExitInconsistentRegistry indicates drift between git's worktree
	// bookkeeping and the directories on disk.
	ExitInconsistentRegistry ExitCode = 9

	// ExitCloneError indicates project creation failed.
	ExitCloneError ExitCode = 10

	// ExitNotFound indicates the named branch has no worktree.
	ExitNotFound ExitCode = 11
)

// Coded is implemented by every typed error in this package. The CLI layer
// uses errors.As against this interface to choose the process exit code.
type Coded interface {
	error
	Code() ExitCode
}

// GitError reports a git subprocess that exited non-zero. Callers decide
// whether that is fatal or an expected negative result (a failed
// `rev-parse --verify` is how "branch does not exist" is detected).
// The stderr text is carried verbatim so nothing the underlying tool said
// is lost.
type GitError struct {
	// Args is the git argument vector that failed (without the leading "git").
	Args []string

	// Exit is git's own exit status.
	Exit int

	// Stderr is the trimmed stderr output of the failed invocation.
	Stderr string
}

func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed (exit %d)", strings.Join(e.Args, " "), e.Exit)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Code returns ExitGitError.
func (e *GitError) Code() ExitCode { return ExitGitError }

// ReservedNameError rejects a branch name that would claim a reserved
// top-level directory such as the bare store.
type ReservedNameError struct {
	Branch string
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("branch name %q is reserved and cannot be used for a worktree", e.Branch)
}

// Code returns ExitReservedName.
func (e *ReservedNameError) Code() ExitCode { return ExitReservedName }

// PathCollisionError reports that the directory derived from a branch name
// is already occupied.
type PathCollisionError struct {
	Branch string
	Path   string
}

func (e *PathCollisionError) Error() string {
	return fmt.Sprintf("path %s for branch %q already exists and is not an empty directory", e.Path, e.Branch)
}

// Code returns ExitPathCollision.
func (e *PathCollisionError) Code() ExitCode { return ExitPathCollision }

// BranchInUseError reports that a branch is already checked out elsewhere or
// already exists where a new branch was expected. With multiple agents
// operating on the same store, this is the expected loser's outcome of two
// concurrent adds for the same name.
type BranchInUseError struct {
	Branch string
	Err    error
}

func (e *BranchInUseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("branch %q is already in use: %v", e.Branch, e.Err)
	}
	return fmt.Sprintf("branch %q is already in use", e.Branch)
}

func (e *BranchInUseError) Unwrap() error { return e.Err }

// Code returns ExitBranchInUse.
func (e *BranchInUseError) Code() ExitCode { return ExitBranchInUse }

// DirtyWorktreeError refuses a destructive operation on a worktree with
// uncommitted changes.
type DirtyWorktreeError struct {
	Branch string
	Path   string
}

func (e *DirtyWorktreeError) Error() string {
	return fmt.Sprintf("worktree %q at %s has uncommitted changes (use --force to discard them)", e.Branch, e.Path)
}

// Code returns ExitDirtyWorktree.
func (e *DirtyWorktreeError) Code() ExitCode { return ExitDirtyWorktree }

// RenameError reports a rename that could not complete as a unit.
// Residual describes which side is in effect after the rollback attempt,
// so the user knows exactly what state the project is in.
type RenameError struct {
	Old      string
	New      string
	Residual string
	Err      error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename %q -> %q failed (%s): %v", e.Old, e.New, e.Residual, e.Err)
}

func (e *RenameError) Unwrap() error { return e.Err }

// Code returns ExitRenameError.
func (e *RenameError) Code() ExitCode { return ExitRenameError }

// RebaseConflictError reports a rebase stopped on conflicts. The worktree is
// intentionally left mid-rebase, matching git's own conflict state, so no
// work is lost and the user resolves with the usual git tooling.
type RebaseConflictError struct {
	Target string
	Paths  []string
	Err    error
}

func (e *RebaseConflictError) Error() string {
	if len(e.Paths) > 0 {
		return fmt.Sprintf("rebase onto %q stopped on conflicts in: %s", e.Target, strings.Join(e.Paths, ", "))
	}
	return fmt.Sprintf("rebase onto %q stopped on conflicts: %v", e.Target, e.Err)
}

func (e *RebaseConflictError) Unwrap() error { return e.Err }

// Code returns ExitRebaseConflict.
func (e *RebaseConflictError) Code() ExitCode { return ExitRebaseConflict }

// CloneError reports that project creation failed.
type CloneError struct {
	URL string
	Dir string
	Err error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("clone of %s into %s failed: %v", e.URL, e.Dir, e.Err)
}

func (e *CloneError) Unwrap() error { return e.Err }

// Code returns ExitCloneError.
func (e *CloneError) Code() ExitCode { return ExitCloneError }

// NotFoundError reports that a branch has no worktree in this project.
type NotFoundError struct {
	Branch string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no worktree found for branch %q", e.Branch)
}

// Code returns ExitNotFound.
func (e *NotFoundError) Code() ExitCode { return ExitNotFound }

// InconsistentRegistryError aggregates all drift conditions found during a
// listing, so one stray directory does not hide another.
type InconsistentRegistryError struct {
	Problems []RegistryInconsistency
}

func (e *InconsistentRegistryError) Error() string {
	lines := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		lines = append(lines, p.String())
	}
	return fmt.Sprintf("worktree registry is inconsistent: %s", strings.Join(lines, "; "))
}

// Code returns ExitInconsistentRegistry.
func (e *InconsistentRegistryError) Code() ExitCode { return ExitInconsistentRegistry }
