package mcpserver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/just-mcp/just-mcp/parser"
)

func TestBuildWatchTargets(t *testing.T) {
	dir := t.TempDir()

	wts, infos, err := buildWatchTargets([]WatchDirSpec{
		{Path: dir, Name: "svc"},
	})
	require.NoError(t, err)
	require.Len(t, wts, 1)
	require.Len(t, infos, 1)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, abs, wts[0].Root)
	assert.Equal(t, "svc", wts[0].Name)
	assert.Equal(t, wts[0].ID, infos[0].ID)
	assert.Equal(t, wts[0].Root, infos[0].Root)
	assert.Equal(t, "svc", infos[0].Name)
}

func TestParserOptions_ForcedTierSelection(t *testing.T) {
	logger := newLogger(false, "info")

	tests := []struct {
		tier     string
		wantTier parser.Tier
	}{
		{"ast", parser.TierGrammar},
		{"cli", parser.TierCLI},
		{"regex", parser.TierRegex},
	}
	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			rc := &resolvedConfig{parserTier: tt.tier}
			opts := parserOptions(rc, logger)
			pipeline, err := parser.New(opts...)
			require.NoError(t, err)
			require.NotNil(t, pipeline)

			// A forced CLI tier fails here (no such directory), so its tier
			// shows up in the fallback record rather than on a recipe.
			session, err := pipeline.Parse(context.Background(), "/nonexistent/justfile", []byte("build:\n\techo hi\n"))
			require.NoError(t, err)
			require.NotEmpty(t, session.Recipes)
			tier := session.Recipes[0].Tier
			if len(session.Fallbacks) > 0 {
				tier = session.Fallbacks[0].Tier
			}
			assert.Equal(t, tt.wantTier, tier)
		})
	}
}

func TestParserOptions_AutoAddsNoForcedTier(t *testing.T) {
	logger := newLogger(false, "info")
	rc := &resolvedConfig{parserTier: "auto"}
	opts := parserOptions(rc, logger)
	assert.Len(t, opts, 1, "auto tier should only carry the logger option")
}
