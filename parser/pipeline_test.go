package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_ParseSimpleFile(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	src := []byte("build:\n\techo built\n")
	session, err := p.Parse(context.Background(), "/proj/justfile", src)
	require.NoError(t, err)
	require.Len(t, session.Recipes, 1)
	assert.Equal(t, "build", session.Recipes[0].Name)
	assert.Equal(t, []Tier{TierGrammar}, session.TierUsed())
}

func TestPipeline_CacheHitSkipsReparse(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	src := []byte("build:\n\techo built\n")
	first, err := p.Parse(context.Background(), "/proj/justfile", src)
	require.NoError(t, err)

	second, err := p.Parse(context.Background(), "/proj/justfile", src)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestPipeline_CacheDisabledAlwaysReparses(t *testing.T) {
	p, err := New(WithCacheDisabled(true))
	require.NoError(t, err)

	src := []byte("build:\n\techo built\n")
	first, err := p.Parse(context.Background(), "/proj/justfile", src)
	require.NoError(t, err)
	second, err := p.Parse(context.Background(), "/proj/justfile", src)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.Recipes, second.Recipes)
}

func TestPipeline_EmptyFileProducesFloorRecipe(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	session, err := p.Parse(context.Background(), "/proj/justfile", []byte(""))
	require.NoError(t, err)
	require.Len(t, session.Recipes, 1)
	assert.Equal(t, TierFloor, session.Recipes[0].Tier)
	assert.Equal(t, "justfile", session.Recipes[0].Name)
}

func TestPipeline_ForcedRegexTier(t *testing.T) {
	p, err := New(WithForcedTier(TierRegex))
	require.NoError(t, err)

	src := []byte("[private]\nbuild:\n\techo built\n")
	session, err := p.Parse(context.Background(), "/proj/justfile", src)
	require.NoError(t, err)
	require.Len(t, session.Recipes, 1)
	assert.Equal(t, TierRegex, session.Recipes[0].Tier)
}

func TestPipeline_DeterministicAcrossRepeatedParses(t *testing.T) {
	p, err := New(WithCacheDisabled(true))
	require.NoError(t, err)

	src := []byte("b: a\n\techo b\na:\n\techo a\n")
	first, err := p.Parse(context.Background(), "/proj/justfile", src)
	require.NoError(t, err)
	second, err := p.Parse(context.Background(), "/proj/justfile", src)
	require.NoError(t, err)
	assert.Equal(t, first.Recipes, second.Recipes)
}

func TestPipeline_InvalidForcedTierRejected(t *testing.T) {
	_, err := New(WithForcedTier("bogus"))
	require.Error(t, err)
}
