// Package project locates and opens a trellis project root.
//
// A project root is the directory containing the .bare object store; every
// worktree lives directly beneath it. Discovery walks upward from the
// starting directory, so trellis commands work from anywhere inside a
// worktree as well as from the root itself.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/trellis/internal/config"
	"github.com/mmr-tortoise/trellis/internal/git"
	"github.com/mmr-tortoise/trellis/internal/layout"
)

// Project bundles everything an operation needs: the resolved root, the
// settings, a git runner bound to the bare store, and the layout resolver.
type Project struct {
	// Root is the absolute project root directory.
	Root string

	// Bare is the absolute path of the shared object store.
	Bare string

	// Config holds the loaded (or default) project settings.
	Config config.Config

	// Git runs commands against the bare store.
	Git *git.Runner

	// Layout resolves branch names to directories and back.
	Layout layout.Layout
}

// Find walks upward from start looking for a directory containing the .bare
// store, then opens the project it marks.
func Find(start string) (*Project, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}

	for {
		if isBareStore(filepath.Join(dir, layout.BareDir)) {
			return Open(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("no trellis project found above %s (missing %s store)", start, layout.BareDir)
		}
		dir = parent
	}
}

// Open opens a project at a known root.
func Open(root string) (*Project, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	bare := filepath.Join(root, layout.BareDir)
	if !isBareStore(bare) {
		return nil, fmt.Errorf("%s is not a trellis project root (missing %s store)", root, layout.BareDir)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	return &Project{
		Root:   root,
		Bare:   bare,
		Config: cfg,
		Git:    git.New(bare),
		Layout: layout.New(root, cfg.Reserved...),
	}, nil
}

// DefaultBranch returns the configured default branch, or the branch the
// bare store's HEAD points at when no override is set.
func (p *Project) DefaultBranch() (string, error) {
	if p.Config.DefaultBranch != "" {
		return p.Config.DefaultBranch, nil
	}
	return p.Git.DefaultBranch()
}

// TargetRef resolves the ref status and merge computations compare against:
// the remote tracking ref of target when it exists, falling back to the
// local branch for projects without a remote counterpart.
func (p *Project) TargetRef(target string) string {
	if p.Git.RemoteBranchExists(p.Config.Remote, target) {
		return p.Config.Remote + "/" + target
	}
	return target
}

// isBareStore reports whether dir looks like a git object store: a
// directory with a HEAD file. This keeps discovery from latching onto an
// unrelated directory that merely happens to be named .bare.
func isBareStore(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	if _, err := os.Stat(filepath.Join(dir, "HEAD")); err != nil {
		return false
	}
	return true
}
