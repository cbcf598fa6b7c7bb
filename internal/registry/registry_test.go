package registry_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/trellis/internal/lifecycle"
	"github.com/mmr-tortoise/trellis/internal/model"
	"github.com/mmr-tortoise/trellis/internal/project"
	"github.com/mmr-tortoise/trellis/internal/registry"
)

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

func setupProject(t *testing.T) *project.Project {
	t.Helper()
	remote := filepath.Join(t.TempDir(), "upstream.git")
	require.NoError(t, os.MkdirAll(remote, 0755))
	runTestGit(t, remote, "init", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(remote, "README.md"), []byte("hello\n"), 0644))
	runTestGit(t, remote, "add", "README.md")
	runTestGit(t, remote, "commit", "-m", "initial commit")

	p, err := lifecycle.Clone(remote, filepath.Join(t.TempDir(), "proj"))
	require.NoError(t, err)
	return p
}

func TestListAfterClone(t *testing.T) {
	p := setupProject(t)

	worktrees, problems, err := registry.New(p).List()
	require.NoError(t, err)
	assert.Empty(t, problems)

	require.Len(t, worktrees, 1)
	assert.Equal(t, "main", worktrees[0].Branch)
	assert.Equal(t, filepath.Join(p.Root, "main"), worktrees[0].Path)
	assert.Equal(t, "origin/main", worktrees[0].Upstream)
	assert.NotEmpty(t, worktrees[0].HEAD)
}

func TestListNestedBranches(t *testing.T) {
	p := setupProject(t)
	ctl := lifecycle.New(p)

	for _, branch := range []string{"feat/login", "feat/search", "fix/crash"} {
		_, err := ctl.Add(branch, "", false)
		require.NoError(t, err)
	}

	worktrees, problems, err := registry.New(p).List()
	require.NoError(t, err)
	assert.Empty(t, problems)

	branches := make([]string, len(worktrees))
	for i, wt := range worktrees {
		branches[i] = wt.Branch
	}
	assert.ElementsMatch(t, []string{"main", "feat/login", "feat/search", "fix/crash"}, branches)

	for _, wt := range worktrees {
		assert.Equal(t, filepath.Join(p.Root, filepath.FromSlash(wt.Branch)), wt.Path)
	}
}

func TestFind(t *testing.T) {
	p := setupProject(t)
	ctl := lifecycle.New(p)
	_, err := ctl.Add("feat", "", false)
	require.NoError(t, err)

	wt, err := registry.New(p).Find("feat")
	require.NoError(t, err)
	assert.Equal(t, "feat", wt.Branch)

	_, err = registry.New(p).Find("nope")
	var notFound *model.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.Branch)
}

func TestListReportsMissingDirectory(t *testing.T) {
	p := setupProject(t)
	ctl := lifecycle.New(p)
	wt, err := ctl.Add("feat", "", false)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(wt.Path))

	worktrees, problems, err := registry.New(p).List()
	require.NoError(t, err)

	// The registration itself is still listed; only the drift is reported.
	assert.Len(t, worktrees, 2)
	require.Len(t, problems, 1)
	assert.Equal(t, model.MissingDirectory, problems[0].Kind)
	assert.Equal(t, "feat", problems[0].Branch)
	assert.Equal(t, wt.Path, problems[0].Path)
}

func TestListReportsUnregisteredDirectory(t *testing.T) {
	p := setupProject(t)

	// A directory with a .git entry that git's bookkeeping knows nothing
	// about, e.g. copied in from elsewhere.
	stray := filepath.Join(p.Root, "stray")
	require.NoError(t, os.MkdirAll(stray, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(stray, ".git"), []byte("gitdir: /nowhere\n"), 0644))

	_, problems, err := registry.New(p).List()
	require.NoError(t, err)

	require.Len(t, problems, 1)
	assert.Equal(t, model.UnregisteredDirectory, problems[0].Kind)
	assert.Equal(t, stray, problems[0].Path)
}

func TestListIgnoresPlainDirectories(t *testing.T) {
	p := setupProject(t)

	// Non-worktree content under the root: no .git entry, no report.
	require.NoError(t, os.MkdirAll(filepath.Join(p.Root, "notes", "2026"), 0755))

	_, problems, err := registry.New(p).List()
	require.NoError(t, err)
	assert.Empty(t, problems)
}
