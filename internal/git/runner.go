package git

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/trellis/internal/model"
)

// Runner executes git commands against one repository. The zero directory is
// never used: New binds the runner to the repository it serves (for trellis,
// the project's bare store), and RunIn targets an explicit worktree instead.
type Runner struct {
	// dir is where Run points git via -C. For a trellis project this is the
	// bare store, so ref queries and worktree bookkeeping resolve against
	// the shared history.
	dir string
}

// New creates a Runner bound to the given repository directory.
func New(dir string) *Runner {
	return &Runner{dir: dir}
}

// Dir returns the repository directory this runner is bound to.
func (r *Runner) Dir() string {
	return r.dir
}

// Run executes git with the given arguments in the runner's repository and
// returns stdout. On non-zero exit it returns a *model.GitError.
func (r *Runner) Run(args ...string) (string, error) {
	return execGit(r.dir, args...)
}

// RunIn executes git in an explicit directory, typically a worktree. The
// directory is passed via -C, which git handles itself before dispatching
// the subcommand; the manager process never changes its own working
// directory, so concurrent invocations stay independent.
func (r *Runner) RunIn(dir string, args ...string) (string, error) {
	return execGit(dir, args...)
}

// execGit runs one git invocation and captures stdout and stderr separately,
// so stderr can travel inside the error while stdout is returned on success.
func execGit(dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		gitErr := &model.GitError{
			Args:   args,
			Exit:   -1,
			Stderr: strings.TrimSpace(stderr.String()),
		}

		// Extract git's own exit status when the process actually ran.
		// Exit -1 is kept for spawn failures (git not installed, etc.),
		// with the spawn error standing in for stderr.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			gitErr.Exit = exitErr.ExitCode()
		} else if gitErr.Stderr == "" {
			gitErr.Stderr = err.Error()
		}
		return "", gitErr
	}

	return stdout.String(), nil
}

// ExitStatus returns the git exit code inside err, or -1 if err does not
// wrap a *model.GitError. Probes that treat specific exit codes as expected
// negatives (merge-base --is-ancestor exits 1) use this to tell "no" apart
// from "broken".
func ExitStatus(err error) int {
	var gitErr *model.GitError
	if errors.As(err, &gitErr) {
		return gitErr.Exit
	}
	return -1
}
