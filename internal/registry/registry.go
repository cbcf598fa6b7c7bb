// Package registry is the read model for a project's worktrees.
//
// It reconciles two sources of truth that can drift apart: git's own
// worktree bookkeeping in the bare store, and the directories actually
// present under the project root. Drift is surfaced as explicit
// RegistryInconsistency values, never repaired here — repair always requires
// an explicit lifecycle operation, so nothing is deleted or re-registered on
// a guess.
package registry

import (
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/trellis/internal/model"
	"github.com/mmr-tortoise/trellis/internal/project"
)

// Registry enumerates the worktrees of one project.
type Registry struct {
	p *project.Project
}

// New creates a Registry for the given project.
func New(p *project.Project) *Registry {
	return &Registry{p: p}
}

// List returns every branch-mapped worktree in git's enumeration order
// (stable across invocations, not alphabetically resorted), plus any drift
// detected between the registration and the filesystem.
func (r *Registry) List() ([]model.Worktree, []model.RegistryInconsistency, error) {
	infos, err := r.p.Git.Worktrees()
	if err != nil {
		return nil, nil, err
	}

	var (
		worktrees  []model.Worktree
		problems   []model.RegistryInconsistency
		registered = make(map[string]bool)
	)

	for _, info := range infos {
		if info.IsBare {
			continue
		}
		// A detached worktree has no branch and therefore no place in the
		// branch<->directory mapping; it is left alone rather than guessed at.
		if info.Branch == "" {
			registered[info.Path] = true
			continue
		}

		branch := info.ShortBranch()
		registered[info.Path] = true

		upstream, err := r.p.Git.Upstream(branch)
		if err != nil {
			return nil, nil, err
		}

		worktrees = append(worktrees, model.Worktree{
			Branch:   branch,
			Path:     info.Path,
			HEAD:     info.HEAD,
			Upstream: upstream,
		})

		if _, statErr := os.Stat(info.Path); os.IsNotExist(statErr) {
			problems = append(problems, model.RegistryInconsistency{
				Kind:   model.MissingDirectory,
				Branch: branch,
				Path:   info.Path,
			})
		}
	}

	strays, err := r.findUnregistered(registered)
	if err != nil {
		return nil, nil, err
	}
	problems = append(problems, strays...)

	return worktrees, problems, nil
}

// Find returns the worktree for a branch, or *model.NotFoundError.
func (r *Registry) Find(branch string) (model.Worktree, error) {
	worktrees, _, err := r.List()
	if err != nil {
		return model.Worktree{}, err
	}

	for _, wt := range worktrees {
		if wt.Branch == branch {
			return wt, nil
		}
	}
	return model.Worktree{}, &model.NotFoundError{Branch: branch}
}

// findUnregistered scans the project root for directories that look like
// worktrees (they contain a .git entry) but are unknown to git. The scan
// descends through namespace directories but never into a worktree itself.
func (r *Registry) findUnregistered(registered map[string]bool) ([]model.RegistryInconsistency, error) {
	var problems []model.RegistryInconsistency

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			name := entry.Name()
			if dir == r.p.Root && r.p.Layout.IsReserved(name) {
				continue
			}

			path := filepath.Join(dir, name)
			if registered[path] {
				continue
			}

			// A .git entry (file for worktrees) marks a checkout boundary.
			if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
				branch, _ := r.p.Layout.PathBranch(path)
				problems = append(problems, model.RegistryInconsistency{
					Kind:   model.UnregisteredDirectory,
					Branch: branch,
					Path:   path,
				})
				continue
			}

			if err := walk(path); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(r.p.Root); err != nil {
		return nil, err
	}
	return problems, nil
}
