// Package workspace keeps an editor workspace file at the project root in
// step with the worktrees that exist.
//
// The file is the standard VS Code .code-workspace format: JSON with
// comments and trailing commas permitted. Comments inside the "folders"
// array are lost on rewrite (the array is regenerated wholesale), but the
// remaining top-level keys — settings, extensions, launch — pass through
// untouched.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/jsonc"
)

// Path returns the workspace file location for a project root, named after
// the root directory itself.
func Path(root string) string {
	return filepath.Join(root, filepath.Base(root)+".code-workspace")
}

// Sync rewrites the workspace file's folders list to exactly the given
// branches, one folder entry per worktree, sorted by name. When no workspace
// file exists the project has opted out and Sync does nothing.
func Sync(root string, branches []string) error {
	path := Path(root)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var doc map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(raw), &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc == nil {
		doc = make(map[string]any)
	}

	sorted := append([]string(nil), branches...)
	sort.Strings(sorted)

	folders := make([]map[string]string, 0, len(sorted))
	for _, branch := range sorted {
		folders = append(folders, map[string]string{"path": branch})
	}
	doc["folders"] = folders

	out, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(out, '\n'), 0644)
}
