// Package git is the subprocess adapter for the underlying version-control
// engine.
//
// All operations shell out to the git binary via os/exec rather than using a
// Git library like go-git. This approach:
//   - Avoids CGO dependencies (libgit2)
//   - Uses the exact same Git behavior the user sees in their terminal
//   - Covers worktree, rebase, and autostash operations that library
//     implementations handle poorly or not at all
//
// The adapter holds no state beyond the directory it points commands at.
// Non-zero exits become *model.GitError carrying the argument vector, exit
// status, and verbatim stderr; callers decide whether a failure is fatal or
// an expected negative result (existence probes rely on the latter). There
// are no retries and no added timeout layer — any single git invocation is
// atomic at git's level, and git owns its own network/IO timeouts.
package git
