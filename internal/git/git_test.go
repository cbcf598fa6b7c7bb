package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/trellis/internal/model"
)

// setupTestRepo creates a temporary repository with a single commit on main.
// A local user identity is configured so `git commit` works in CI
// environments without a global git config.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	runTestGit(t, dir, "init", "-b", "main")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test Repo\n"), 0644)
	require.NoError(t, err, "failed to create initial file")

	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")

	return dir
}

// runTestGit runs a git command in dir and fails the test on non-zero exit.
func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

// commitFile commits a file change in dir and returns nothing; used to grow
// histories in ahead/behind and ancestor tests.
func commitFile(t *testing.T, dir, name, content, msg string) {
	t.Helper()

	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
	require.NoError(t, err)
	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", msg)
}

// TestRunError verifies that a failing invocation surfaces a *model.GitError
// carrying the argument vector, git's exit status, and verbatim stderr.
func TestRunError(t *testing.T) {
	repo := setupTestRepo(t)
	r := New(repo)

	_, err := r.Run("rev-parse", "--verify", "refs/heads/does-not-exist")
	require.Error(t, err)

	var gitErr *model.GitError
	require.ErrorAs(t, err, &gitErr)
	assert.Equal(t, []string{"rev-parse", "--verify", "refs/heads/does-not-exist"}, gitErr.Args)
	assert.NotEqual(t, 0, gitErr.Exit)
	assert.NotEmpty(t, gitErr.Stderr)
}

// TestExitStatus verifies exit-code extraction for expected-negative probes.
func TestExitStatus(t *testing.T) {
	repo := setupTestRepo(t)
	r := New(repo)
	commitFile(t, repo, "b.txt", "b", "second commit")

	_, err := r.Run("merge-base", "--is-ancestor", "main", "main~1")
	// main is not an ancestor of its own parent; git answers with exit 1.
	require.Error(t, err)
	assert.Equal(t, 1, ExitStatus(err))

	// A non-git error has no embedded status.
	assert.Equal(t, -1, ExitStatus(os.ErrNotExist))
}

// TestBranchExists covers both the positive and the expected-negative case.
func TestBranchExists(t *testing.T) {
	repo := setupTestRepo(t)
	r := New(repo)

	assert.True(t, r.BranchExists("main"))
	assert.False(t, r.BranchExists("no-such-branch"))

	runTestGit(t, repo, "branch", "feat/login")
	assert.True(t, r.BranchExists("feat/login"))
}

// TestIsDirty verifies untracked files and modifications both count.
func TestIsDirty(t *testing.T) {
	repo := setupTestRepo(t)
	r := New(repo)

	dirty, err := r.IsDirty(repo)
	require.NoError(t, err)
	assert.False(t, dirty, "fresh repo should be clean")

	err = os.WriteFile(filepath.Join(repo, "scratch.txt"), []byte("wip"), 0644)
	require.NoError(t, err)

	dirty, err = r.IsDirty(repo)
	require.NoError(t, err)
	assert.True(t, dirty, "untracked file should make the tree dirty")
}

// TestIsAncestor verifies ancestor detection across a small history.
func TestIsAncestor(t *testing.T) {
	repo := setupTestRepo(t)
	r := New(repo)

	runTestGit(t, repo, "branch", "base")
	commitFile(t, repo, "a.txt", "a", "second commit")

	ok, err := r.IsAncestor("base", "main")
	require.NoError(t, err)
	assert.True(t, ok, "base should be an ancestor of main")

	ok, err = r.IsAncestor("main", "base")
	require.NoError(t, err)
	assert.False(t, ok, "main should not be an ancestor of base")
}

// TestAheadBehind verifies the symmetric-difference counts in both
// directions after the branches diverge.
func TestAheadBehind(t *testing.T) {
	repo := setupTestRepo(t)
	r := New(repo)

	runTestGit(t, repo, "checkout", "-b", "feat")
	commitFile(t, repo, "f1.txt", "1", "feat commit 1")
	commitFile(t, repo, "f2.txt", "2", "feat commit 2")

	runTestGit(t, repo, "checkout", "main")
	commitFile(t, repo, "m1.txt", "1", "main commit 1")

	ahead, behind, err := r.AheadBehind("feat", "main")
	require.NoError(t, err)
	assert.Equal(t, 2, ahead, "feat has two commits main lacks")
	assert.Equal(t, 1, behind, "feat lacks one commit from main")

	ahead, behind, err = r.AheadBehind("main", "main")
	require.NoError(t, err)
	assert.Zero(t, ahead)
	assert.Zero(t, behind)
}

// TestWorktrees verifies porcelain listing against real worktrees.
func TestWorktrees(t *testing.T) {
	repo := setupTestRepo(t)
	r := New(repo)

	wtPath := filepath.Join(t.TempDir(), "feat-wt")
	runTestGit(t, repo, "worktree", "add", "-b", "feat", wtPath)

	wts, err := r.Worktrees()
	require.NoError(t, err)
	require.Len(t, wts, 2, "main checkout plus one worktree")

	assert.Equal(t, "refs/heads/feat", wts[1].Branch)
	assert.Equal(t, "feat", wts[1].ShortBranch())
	assert.NotEmpty(t, wts[1].HEAD)
}

// TestParsePorcelain exercises the parser with canned porcelain output,
// including the bare-store entry and a detached worktree.
func TestParsePorcelain(t *testing.T) {
	input := `worktree /proj/.bare
HEAD abc123
bare

worktree /proj/main
HEAD def456
branch refs/heads/main

worktree /proj/spike
HEAD 789abc
detached

`
	result := parsePorcelain(input)
	require.Len(t, result, 3)

	assert.True(t, result[0].IsBare)
	assert.Equal(t, "/proj/main", result[1].Path)
	assert.Equal(t, "main", result[1].ShortBranch())
	assert.Empty(t, result[2].Branch, "detached worktree has no branch")
}

// TestParsePorcelainEmpty verifies empty input yields no entries.
func TestParsePorcelainEmpty(t *testing.T) {
	assert.Empty(t, parsePorcelain(""))
}

// TestUpstream verifies upstream resolution before and after wiring.
func TestUpstream(t *testing.T) {
	remote := setupTestRepo(t)

	clone := filepath.Join(t.TempDir(), "clone")
	runTestGit(t, filepath.Dir(clone), "clone", remote, clone)
	r := New(clone)

	up, err := r.Upstream("main")
	require.NoError(t, err)
	assert.Equal(t, "origin/main", up)

	runTestGit(t, clone, "branch", "feat")
	up, err = r.Upstream("feat")
	require.NoError(t, err)
	assert.Empty(t, up, "new local branch has no upstream")

	runTestGit(t, clone, "push", "origin", "feat")
	require.NoError(t, r.SetUpstream("feat", "origin"))
	up, err = r.Upstream("feat")
	require.NoError(t, err)
	assert.Equal(t, "origin/feat", up)
}
