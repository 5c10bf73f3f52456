package mcpserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/just-mcp/just-mcp/parser"
	"github.com/just-mcp/just-mcp/watcher"
)

func TestTarget_SetFileFlattensInPathOrder(t *testing.T) {
	tg := newTarget(watcher.NewWatchTarget("/srv/app", ""))

	flat := tg.setFile("/srv/app/b/justfile", []parser.Recipe{{Name: "b1"}})
	assert.Equal(t, []parser.Recipe{{Name: "b1"}}, flat)

	flat = tg.setFile("/srv/app/a/justfile", []parser.Recipe{{Name: "a1"}})
	require.Len(t, flat, 2)
	assert.Equal(t, "a1", flat[0].Name, "a/justfile sorts before b/justfile")
	assert.Equal(t, "b1", flat[1].Name)
}

func TestTarget_SetFileNilRecipesForgetsPath(t *testing.T) {
	tg := newTarget(watcher.NewWatchTarget("/srv/app", ""))

	tg.setFile("/srv/app/justfile", []parser.Recipe{{Name: "build"}})
	flat := tg.setFile("/srv/app/justfile", nil)

	assert.Empty(t, flat, "a nil recipe set deletes the file's contribution entirely")
}

func TestWalkJustfiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "justfile"), []byte("build:\n\techo hi\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "justfile"), []byte("test:\n\techo ok\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("not a justfile"), 0o644))

	got := walkJustfiles(root)

	assert.Len(t, got, 2)
	for _, p := range got {
		assert.True(t, watcher.MatchesJustfile(p))
	}
}

func TestParseFile_MissingFileReturnsNilNotError(t *testing.T) {
	pipeline, err := parser.New()
	require.NoError(t, err)

	recipes := parseFile(t.Context(), pipeline, filepath.Join(t.TempDir(), "missing-justfile"))
	assert.Nil(t, recipes)
}
