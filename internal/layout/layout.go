// Package layout owns the mapping between branch names and filesystem
// directories under the project root.
//
// A branch name with slashes forms a nested namespace: "feat/add-login"
// lives at <root>/feat/add-login, with "feat" as an intermediate directory.
// Intermediate directories belong to trellis only while they shelter a
// worktree; OrphanedParents computes the strictly-empty chain to delete once
// the last worktree beneath them is gone.
//
// Everything except OrphanedParents is pure string and path math, so the
// bijection between branch names and paths can be tested without touching
// git or the disk.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/trellis/internal/model"
)

// BareDir is the directory holding the shared object store, created once at
// clone time and never touched afterwards.
const BareDir = ".bare"

// builtinReserved are top-level names no branch may ever claim: the bare
// store, the gitdir pointer file beside it, and the project config.
var builtinReserved = []string{BareDir, ".git", ".trellis.yml"}

// Layout resolves branch names to directories under one project root and
// back. It carries the configured reserved names in addition to the
// built-in ones.
type Layout struct {
	root     string
	reserved map[string]bool
}

// New creates a Layout for the given absolute project root. extraReserved
// adds configured top-level names (a shared docs or local-data directory)
// that worktrees must never occupy.
func New(root string, extraReserved ...string) Layout {
	reserved := make(map[string]bool, len(builtinReserved)+len(extraReserved))
	for _, name := range builtinReserved {
		reserved[name] = true
	}
	for _, name := range extraReserved {
		if name != "" {
			reserved[name] = true
		}
	}
	return Layout{root: root, reserved: reserved}
}

// Root returns the project root directory.
func (l Layout) Root() string {
	return l.root
}

// IsReserved reports whether a top-level name is off-limits for worktrees.
func (l Layout) IsReserved(name string) bool {
	return l.reserved[name]
}

// BranchPath maps a branch name to its worktree directory. The branch's
// slash-separated segments become path components under the project root.
// Returns *model.ReservedNameError when the first segment would claim a
// reserved top-level name, and a validation error for names that cannot be
// represented as a safe relative path.
func (l Layout) BranchPath(branch string) (string, error) {
	segments, err := splitBranch(branch)
	if err != nil {
		return "", err
	}
	if l.reserved[segments[0]] {
		return "", &model.ReservedNameError{Branch: branch}
	}
	return filepath.Join(append([]string{l.root}, segments...)...), nil
}

// PathBranch is the inverse of BranchPath. It is defined only for paths that
// are valid worktree locations: inside the root, not the root itself, and
// not under a reserved top-level name.
func (l Layout) PathBranch(path string) (string, error) {
	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		return "", fmt.Errorf("path %s is not under project root %s", path, l.root)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is not a worktree location under %s", path, l.root)
	}

	branch := filepath.ToSlash(rel)
	segments := strings.Split(branch, "/")
	if l.reserved[segments[0]] {
		return "", fmt.Errorf("path %s is inside reserved directory %q", path, segments[0])
	}
	return branch, nil
}

// OrphanedParents walks upward from a removed worktree's parent directory
// toward the project root, stopping at the first directory that either is
// the root or still contains another entry. It returns the strictly-empty
// chain to delete, innermost first, so deleting in order always removes
// empty directories only.
//
// The walk inspects the filesystem as it is now, so it must run after the
// worktree directory itself has been removed.
func (l Layout) OrphanedParents(path string) ([]string, error) {
	var chain []string

	dir := filepath.Dir(path)
	child := path
	for dir != l.root && strings.HasPrefix(dir, l.root+string(filepath.Separator)) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				// Already gone; keep walking up.
				child = dir
				dir = filepath.Dir(dir)
				continue
			}
			return nil, err
		}

		// The directory is orphaned when its only remaining entry is the
		// (possibly already removed) child we came up from.
		occupied := false
		for _, entry := range entries {
			if filepath.Join(dir, entry.Name()) != child {
				occupied = true
				break
			}
		}
		if occupied {
			break
		}

		chain = append(chain, dir)
		child = dir
		dir = filepath.Dir(dir)
	}

	return chain, nil
}

// splitBranch validates a branch name and splits it into its namespace
// segments. Empty names, empty segments (leading/trailing or doubled
// slashes), and path-traversal segments are rejected.
func splitBranch(branch string) ([]string, error) {
	if branch == "" {
		return nil, fmt.Errorf("branch name must not be empty")
	}

	segments := strings.Split(branch, "/")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("invalid branch name %q: empty path segment", branch)
		}
		if seg == "." || seg == ".." {
			return nil, fmt.Errorf("invalid branch name %q: segment %q not allowed", branch, seg)
		}
	}
	return segments, nil
}
