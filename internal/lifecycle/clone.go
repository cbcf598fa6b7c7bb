// Package lifecycle creates, removes, and renames worktrees. It is the only
// package that mutates the state behind the registry: the bare store's
// worktree bookkeeping and the directories under the project root.
package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/trellis/internal/git"
	"github.com/mmr-tortoise/trellis/internal/layout"
	"github.com/mmr-tortoise/trellis/internal/model"
	"github.com/mmr-tortoise/trellis/internal/project"
)

// gitdirPointer is written to <root>/.git so plain git commands run at the
// project root resolve through to the bare store. Without it, worktree
// listing and ref queries from the root would not find the repository.
const gitdirPointer = "gitdir: ./" + layout.BareDir + "\n"

// Clone creates a new project root: the bare store under <dir>/.bare,
// configured so remote tracking refs stay maintained, plus a worktree for
// the remote's default branch. When dir is empty it is derived from the
// repository name in the URL.
//
// The target directory must be empty (or absent). A non-empty directory is
// refused — including one that already holds a trellis layout, since cloning
// over a live project would corrupt it.
func Clone(url, dir string) (*project.Project, error) {
	if dir == "" {
		dir = repoNameFromURL(url)
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, &model.CloneError{URL: url, Dir: dir, Err: err}
	}

	if err := checkCloneTarget(url, dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &model.CloneError{URL: url, Dir: dir, Err: err}
	}

	runner := git.New(dir)

	// Step 1: bare-clone the history into the store. The store is created
	// exactly once here and never mutated by trellis afterwards.
	if _, err := runner.Run("clone", "--bare", url, layout.BareDir); err != nil {
		return nil, &model.CloneError{URL: url, Dir: dir, Err: err}
	}

	// Step 2: point <root>/.git at the store.
	if err := os.WriteFile(filepath.Join(dir, ".git"), []byte(gitdirPointer), 0644); err != nil {
		return nil, &model.CloneError{URL: url, Dir: dir, Err: err}
	}

	bare := git.New(filepath.Join(dir, layout.BareDir))

	// Step 3: a bare clone has no fetch refspec, so remote tracking refs
	// would never update. Configure the standard refspec and fetch once so
	// origin/<branch> refs exist from the start.
	if _, err := bare.Run("config", "remote.origin.fetch", "+refs/heads/*:refs/remotes/origin/*"); err != nil {
		return nil, &model.CloneError{URL: url, Dir: dir, Err: err}
	}
	if err := bare.Fetch("origin"); err != nil {
		return nil, &model.CloneError{URL: url, Dir: dir, Err: err}
	}

	p, err := project.Open(dir)
	if err != nil {
		return nil, &model.CloneError{URL: url, Dir: dir, Err: err}
	}

	// Step 4: materialize the default branch as the first worktree. By
	// convention it is treated as read-only — integration happens through
	// the remote, not by editing the default checkout.
	def, err := p.Git.DefaultBranch()
	if err != nil {
		return nil, &model.CloneError{URL: url, Dir: dir, Err: err}
	}
	defPath, err := p.Layout.BranchPath(def)
	if err != nil {
		return nil, &model.CloneError{URL: url, Dir: dir, Err: err}
	}
	if _, err := p.Git.Run("worktree", "add", defPath, def); err != nil {
		return nil, &model.CloneError{URL: url, Dir: dir, Err: err}
	}
	if err := p.Git.SetUpstream(def, p.Config.Remote); err != nil {
		return nil, &model.CloneError{URL: url, Dir: dir, Err: err}
	}

	return p, nil
}

// checkCloneTarget refuses a target directory that already has contents.
// The two refusal messages are distinct so the user can tell "pick another
// directory" apart from "you already cloned this".
func checkCloneTarget(url, dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &model.CloneError{URL: url, Dir: dir, Err: err}
	}
	if len(entries) == 0 {
		return nil
	}

	if _, err := os.Stat(filepath.Join(dir, layout.BareDir)); err == nil {
		return &model.CloneError{URL: url, Dir: dir,
			Err: fmt.Errorf("directory already contains a trellis project")}
	}
	return &model.CloneError{URL: url, Dir: dir,
		Err: fmt.Errorf("directory is not empty")}
}

// repoNameFromURL derives a directory name from the repository URL, the
// same way git derives a clone directory: the last path segment with any
// .git suffix removed. Works for both URL and scp-like syntax.
func repoNameFromURL(url string) string {
	name := strings.TrimRight(url, "/")
	if idx := strings.LastIndexAny(name, "/:"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSuffix(name, ".git")
}
