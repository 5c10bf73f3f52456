package mcpserver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/just-mcp/just-mcp/parser"
	"github.com/just-mcp/just-mcp/registry"
	"github.com/just-mcp/just-mcp/watcher"
)

// target bundles one WatchTarget with the registry's view of it
// (registry.TargetInfo) and the per-file recipe aggregate that lets
// the runtime re-derive the target's full contribution whenever any
// one file under it changes. registry.Apply replaces a target's
// *entire* tool set per call, but a target directory may hold several
// justfiles, so the runtime (not the registry) owns the
// file-to-recipes map and flattens it before every Apply.
type target struct {
	wt   *watcher.WatchTarget
	info registry.TargetInfo

	mu            sync.Mutex
	recipesByFile map[string][]parser.Recipe
}

func newTarget(wt *watcher.WatchTarget) *target {
	return &target{
		wt:            wt,
		info:          registry.TargetInfo{ID: wt.ID, Name: wt.Name, Root: wt.Root},
		recipesByFile: make(map[string][]parser.Recipe),
	}
}

// setFile records path's parsed recipes (or forgets path entirely when
// recipes is nil, e.g. on deletion) and returns the flattened,
// path-ordered recipe set for the whole target.
func (t *target) setFile(path string, recipes []parser.Recipe) []parser.Recipe {
	t.mu.Lock()
	defer t.mu.Unlock()
	if recipes == nil {
		delete(t.recipesByFile, path)
	} else {
		t.recipesByFile[path] = recipes
	}
	return t.flattenLocked()
}

func (t *target) flattenLocked() []parser.Recipe {
	paths := make([]string, 0, len(t.recipesByFile))
	for p := range t.recipesByFile {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var flat []parser.Recipe
	for _, p := range paths {
		flat = append(flat, t.recipesByFile[p]...)
	}
	return flat
}

// walkJustfiles returns every path under root matching the watcher's
// own justfile-name rule, so startup discovery sees exactly the files
// the watcher would later react to.
func walkJustfiles(root string) []string {
	var out []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if watcher.MatchesJustfile(path) {
			out = append(out, path)
		}
		return nil
	})
	return out
}

// initialSync parses every justfile already present under t's root and
// applies the result to reg, so startup state reflects files already
// on disk without waiting for a filesystem event to arrive for them.
func initialSync(ctx context.Context, t *target, pipeline *parser.Pipeline, reg *registry.Registry) registry.ToolChangeSet {
	for _, path := range walkJustfiles(t.wt.Root) {
		recipes := parseFile(ctx, pipeline, path)
		t.setFile(path, recipes)
	}
	t.mu.Lock()
	flat := t.flattenLocked()
	t.mu.Unlock()
	return reg.Apply(t.info, flat)
}

// parseFile reads and parses one justfile, returning nil (not an
// error) on a read failure so the caller can treat it the same as a
// deletion: the file simply contributes nothing.
func parseFile(ctx context.Context, pipeline *parser.Pipeline, path string) []parser.Recipe {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	session, err := pipeline.Parse(ctx, path, data)
	if err != nil || session == nil {
		return nil
	}
	return session.Recipes
}
