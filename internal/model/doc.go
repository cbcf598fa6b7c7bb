// Package model defines the domain types and the error taxonomy for the
// trellis CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (Worktree, SyncState, RegistryInconsistency) are transient
// representations derived from the bare object store and the filesystem on
// every invocation — trellis keeps no state file of its own.
//
// The package also defines exit codes (ExitCode) and one typed error per
// failure kind. Every typed error implements the Coded interface so the CLI
// layer can translate it into a stable process exit code.
package model
