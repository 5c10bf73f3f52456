package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegexTier_SimpleHeader(t *testing.T) {
	src := []byte("build:\n\techo built\n")
	recipes := parseRegexTier(src)
	require.Len(t, recipes, 1)
	assert.Equal(t, "build", recipes[0].Name)
	assert.Equal(t, TierRegex, recipes[0].Tier)
}

func TestParseRegexTier_ParamsAndDeps(t *testing.T) {
	src := []byte("deploy env=prod: build test\n\techo deploying\n")
	recipes := parseRegexTier(src)
	require.Len(t, recipes, 1)
	r := recipes[0]
	require.Len(t, r.Parameters, 1)
	assert.Equal(t, "env", r.Parameters[0].Name)
	assert.Equal(t, "prod", r.Parameters[0].Default)
	assert.Equal(t, []string{"build", "test"}, r.Dependencies)
}

func TestParseRegexTier_OmitsAttributes(t *testing.T) {
	src := []byte("[private]\nbuild:\n\techo hi\n")
	recipes := parseRegexTier(src)
	require.Len(t, recipes, 1)
	assert.Nil(t, recipes[0].Attributes)
}

func TestParseFloor_UsesFileStem(t *testing.T) {
	r := parseFloor("justfile", nil)
	assert.Equal(t, "justfile", r.Name)
	assert.Equal(t, TierFloor, r.Tier)
}
