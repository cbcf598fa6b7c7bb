package engine_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/trellis/internal/engine"
	"github.com/mmr-tortoise/trellis/internal/lifecycle"
	"github.com/mmr-tortoise/trellis/internal/model"
	"github.com/mmr-tortoise/trellis/internal/project"
)

// runTestGit runs a git command in dir, failing the test on error.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, out)
	return string(out)
}

// commitFile writes a file and commits it in dir.
func commitFile(t *testing.T, dir, name, content, msg string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	runTestGit(t, dir, "add", name)
	runTestGit(t, dir, "commit", "-m", msg)
}

// setupRemote creates a plain repository with one commit on main, serving as
// the clone source.
func setupRemote(t *testing.T) string {
	t.Helper()
	remote := filepath.Join(t.TempDir(), "upstream.git")
	require.NoError(t, os.MkdirAll(remote, 0755))
	runTestGit(t, remote, "init", "-b", "main")
	commitFile(t, remote, "README.md", "hello\n", "initial commit")
	return remote
}

// setupProject clones the remote into a fresh project root.
func setupProject(t *testing.T) (string, *project.Project) {
	t.Helper()
	remote := setupRemote(t)
	p, err := lifecycle.Clone(remote, filepath.Join(t.TempDir(), "proj"))
	require.NoError(t, err)
	return remote, p
}

func findStatus(t *testing.T, statuses []model.BranchStatus, branch string) model.BranchStatus {
	t.Helper()
	for _, s := range statuses {
		if s.Worktree.Branch == branch {
			return s
		}
	}
	t.Fatalf("no status for branch %q", branch)
	return model.BranchStatus{}
}

func TestStatusFreshBranch(t *testing.T) {
	_, p := setupProject(t)
	ctl := lifecycle.New(p)
	_, err := ctl.Add("feat", "", false)
	require.NoError(t, err)

	statuses, problems, err := engine.New(p).Status("")
	require.NoError(t, err)
	assert.Empty(t, problems)

	feat := findStatus(t, statuses, "feat")
	assert.Zero(t, feat.State.Ahead)
	assert.Zero(t, feat.State.Behind)
	assert.False(t, feat.State.Merged, "a branch with no commits of its own is not merged")
	assert.False(t, feat.State.Dirty)
}

func TestStatusAheadAndDirty(t *testing.T) {
	_, p := setupProject(t)
	ctl := lifecycle.New(p)
	wt, err := ctl.Add("feat", "", false)
	require.NoError(t, err)

	commitFile(t, wt.Path, "feat.txt", "work\n", "feature work")
	require.NoError(t, os.WriteFile(filepath.Join(wt.Path, "scratch.txt"), []byte("wip"), 0644))

	statuses, _, err := engine.New(p).Status("")
	require.NoError(t, err)

	feat := findStatus(t, statuses, "feat")
	assert.Equal(t, 1, feat.State.Ahead)
	assert.Zero(t, feat.State.Behind)
	assert.False(t, feat.State.Merged)
	assert.True(t, feat.State.Dirty)
}

func TestStatusBehindAfterRemoteCommit(t *testing.T) {
	remote, p := setupProject(t)
	ctl := lifecycle.New(p)
	_, err := ctl.Add("feat", "", false)
	require.NoError(t, err)

	commitFile(t, remote, "new.txt", "upstream\n", "upstream moved on")
	require.NoError(t, p.Git.Fetch("origin"))

	statuses, _, err := engine.New(p).Status("")
	require.NoError(t, err)

	feat := findStatus(t, statuses, "feat")
	assert.Zero(t, feat.State.Ahead)
	assert.Equal(t, 1, feat.State.Behind)
}

func TestStatusMergedBranch(t *testing.T) {
	remote, p := setupProject(t)
	ctl := lifecycle.New(p)
	wt, err := ctl.Add("feat", "", false)
	require.NoError(t, err)

	commitFile(t, wt.Path, "feat.txt", "work\n", "feature work")
	runTestGit(t, wt.Path, "push", "-u", "origin", "feat")

	// Merge with an explicit merge commit so the target tip moves past the
	// branch tip.
	runTestGit(t, remote, "merge", "--no-ff", "-m", "merge feat", "feat")
	require.NoError(t, p.Git.Fetch("origin"))

	statuses, _, err := engine.New(p).Status("")
	require.NoError(t, err)

	feat := findStatus(t, statuses, "feat")
	assert.True(t, feat.State.Merged)
	assert.Zero(t, feat.State.Ahead)
	assert.Equal(t, 1, feat.State.Behind, "behind by the merge commit")
}

func TestStatusReportsMissingDirectory(t *testing.T) {
	_, p := setupProject(t)
	ctl := lifecycle.New(p)
	wt, err := ctl.Add("feat", "", false)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(wt.Path))

	statuses, problems, err := engine.New(p).Status("")
	require.NoError(t, err)

	require.Len(t, problems, 1)
	assert.Equal(t, model.MissingDirectory, problems[0].Kind)
	assert.Equal(t, "feat", problems[0].Branch)

	feat := findStatus(t, statuses, "feat")
	assert.False(t, feat.State.Dirty)
}

func TestSyncFastForwards(t *testing.T) {
	remote, p := setupProject(t)
	ctl := lifecycle.New(p)
	_, err := ctl.Add("feat", "", false)
	require.NoError(t, err)

	commitFile(t, remote, "new.txt", "upstream\n", "upstream moved on")

	results, err := engine.New(p).Sync()
	require.NoError(t, err)

	byBranch := make(map[string]engine.SyncResult)
	for _, r := range results {
		byBranch[r.Branch] = r
	}

	def, err := p.DefaultBranch()
	require.NoError(t, err)
	assert.Equal(t, engine.SyncUpdated, byBranch[def].Action)
	assert.Equal(t, engine.SyncNoUpstream, byBranch["feat"].Action)

	// The default worktree now has the upstream commit.
	defPath, err := p.Layout.BranchPath(def)
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(defPath, "new.txt"))
	assert.NoError(t, statErr)
}

func TestSyncSkipsDiverged(t *testing.T) {
	remote, p := setupProject(t)

	def, err := p.DefaultBranch()
	require.NoError(t, err)
	defPath, err := p.Layout.BranchPath(def)
	require.NoError(t, err)

	commitFile(t, remote, "theirs.txt", "upstream\n", "upstream commit")
	commitFile(t, defPath, "ours.txt", "local\n", "local commit")

	results, err := engine.New(p).Sync()
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, engine.SyncDiverged, results[0].Action)

	// Local history untouched.
	_, statErr := os.Stat(filepath.Join(defPath, "ours.txt"))
	assert.NoError(t, statErr)
}

func TestSyncUpToDate(t *testing.T) {
	_, p := setupProject(t)

	results, err := engine.New(p).Sync()
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, engine.SyncUpToDate, results[0].Action)
}

func TestRebaseOntoMovedTarget(t *testing.T) {
	remote, p := setupProject(t)
	ctl := lifecycle.New(p)
	wt, err := ctl.Add("feat", "", false)
	require.NoError(t, err)

	commitFile(t, wt.Path, "feat.txt", "work\n", "feature work")
	commitFile(t, remote, "new.txt", "upstream\n", "upstream moved on")

	require.NoError(t, engine.New(p).Rebase(wt.Path, ""))

	// Both the feature commit and the upstream commit are present.
	_, err = os.Stat(filepath.Join(wt.Path, "feat.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(wt.Path, "new.txt"))
	assert.NoError(t, err)
}

func TestRebaseAutostashesUncommittedWork(t *testing.T) {
	remote, p := setupProject(t)
	ctl := lifecycle.New(p)
	wt, err := ctl.Add("feat", "", false)
	require.NoError(t, err)

	commitFile(t, wt.Path, "feat.txt", "work\n", "feature work")
	require.NoError(t, os.WriteFile(filepath.Join(wt.Path, "scratch.txt"), []byte("wip"), 0644))
	runTestGit(t, wt.Path, "add", "scratch.txt")

	commitFile(t, remote, "new.txt", "upstream\n", "upstream moved on")

	require.NoError(t, engine.New(p).Rebase(wt.Path, ""))

	data, err := os.ReadFile(filepath.Join(wt.Path, "scratch.txt"))
	require.NoError(t, err)
	assert.Equal(t, "wip", string(data))
}

func TestRebaseConflict(t *testing.T) {
	remote, p := setupProject(t)
	ctl := lifecycle.New(p)
	wt, err := ctl.Add("feat", "", false)
	require.NoError(t, err)

	commitFile(t, wt.Path, "README.md", "ours\n", "our version")
	commitFile(t, remote, "README.md", "theirs\n", "their version")

	err = engine.New(p).Rebase(wt.Path, "")
	require.Error(t, err)

	var conflictErr *model.RebaseConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Contains(t, conflictErr.Paths, "README.md")
	assert.Equal(t, model.ExitRebaseConflict, conflictErr.Code())
}

func TestRebaseRefusedAtProjectRoot(t *testing.T) {
	_, p := setupProject(t)

	err := engine.New(p).Rebase(p.Root, "")
	assert.Error(t, err)
}
