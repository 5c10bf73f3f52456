package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/just-mcp/just-mcp/parser"
)

func TestRegistry_SingleUnnamedTargetUsesBareName(t *testing.T) {
	target := TargetInfo{ID: "/proj", Root: "/proj"}
	r := New([]TargetInfo{target})

	change := r.Apply(target, []parser.Recipe{{Name: "build"}})
	require.Len(t, change.Added, 1)
	assert.Equal(t, "just_build", change.Added[0].Name)
	assert.Equal(t, "Run just recipe build", change.Added[0].Description)
}

func TestRegistry_NamedTargetUsesAtSuffix(t *testing.T) {
	target := TargetInfo{ID: "/proj", Name: "x", Root: "/proj"}
	r := New([]TargetInfo{target})

	change := r.Apply(target, []parser.Recipe{{Name: "test"}})
	require.Len(t, change.Added, 1)
	assert.Equal(t, "just_test@x", change.Added[0].Name)
}

func TestRegistry_MultipleUnnamedTargetsUseSlug(t *testing.T) {
	a := TargetInfo{ID: "/a", Root: "/a"}
	b := TargetInfo{ID: "/b", Root: "/b"}
	r := New([]TargetInfo{a, b})

	change := r.Apply(a, []parser.Recipe{{Name: "build"}})
	require.Len(t, change.Added, 1)
	assert.Equal(t, "just_build__a", change.Added[0].Name)
}

func TestRegistry_NameCollisionAcrossNamedTargets(t *testing.T) {
	x := TargetInfo{ID: "/a", Name: "x", Root: "/a"}
	y := TargetInfo{ID: "/b", Name: "y", Root: "/b"}
	r := New([]TargetInfo{x, y})

	r.Apply(x, []parser.Recipe{{Name: "test"}})
	r.Apply(y, []parser.Recipe{{Name: "test"}})

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "just_test@x", snap[0].Name)
	assert.Equal(t, "just_test@y", snap[1].Name)
}

func TestRegistry_ApplyTwiceSameRecipesYieldsEmptyChangeSet(t *testing.T) {
	target := TargetInfo{ID: "/proj", Root: "/proj"}
	r := New([]TargetInfo{target})

	recipes := []parser.Recipe{{Name: "build"}}
	first := r.Apply(target, recipes)
	require.False(t, first.Empty())

	second := r.Apply(target, recipes)
	assert.True(t, second.Empty())
}

func TestRegistry_ApplyDetectsUpdateByContentHash(t *testing.T) {
	target := TargetInfo{ID: "/proj", Root: "/proj"}
	r := New([]TargetInfo{target})

	r.Apply(target, []parser.Recipe{{Name: "build", DocComments: []string{"v1"}}})
	change := r.Apply(target, []parser.Recipe{{Name: "build", DocComments: []string{"v2"}}})

	require.Len(t, change.Updated, 1)
	assert.Equal(t, "just_build", change.Updated[0].Name)
	assert.Equal(t, "v2", change.Updated[0].Description)
}

func TestRegistry_ApplyRemovesRecipesDroppedFromTarget(t *testing.T) {
	target := TargetInfo{ID: "/proj", Root: "/proj"}
	r := New([]TargetInfo{target})

	r.Apply(target, []parser.Recipe{{Name: "build"}, {Name: "test"}})
	change := r.Apply(target, []parser.Recipe{{Name: "build"}})

	require.Len(t, change.Removed, 1)
	assert.Equal(t, "just_test", change.Removed[0].Name)
	assert.Len(t, r.Snapshot(), 1)
}

func TestRegistry_SchemaRequiredOmitsDefaultsAndVariadic(t *testing.T) {
	target := TargetInfo{ID: "/proj", Root: "/proj"}
	r := New([]TargetInfo{target})

	r.Apply(target, []parser.Recipe{{
		Name: "deploy",
		Parameters: []parser.Parameter{
			{Name: "env", HasDefault: true, Default: "prod"},
			{Name: "region"},
			{Name: "extra", Variadic: true},
		},
	}})

	entry, ok := r.Lookup("just_deploy")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"region"}, entry.InputSchema.Required)
}

// "/a.b" and "/a_b" both slug to "_a_b" under the literal
// non-alphanumeric-to-underscore transform: a genuine, reachable
// collision for two distinct multiple-unnamed-target roots.
func TestRegistry_SlugCollisionShorterOrLexicographicallyEarlierRootWins(t *testing.T) {
	dot := TargetInfo{ID: "dot", Root: "/a.b"}
	underscore := TargetInfo{ID: "underscore", Root: "/a_b"}
	r := New([]TargetInfo{dot, underscore})

	changeDot := r.Apply(dot, []parser.Recipe{{Name: "build"}})
	require.Len(t, changeDot.Added, 1)
	assert.Equal(t, "just_build__a_b", changeDot.Added[0].Name)

	// Same root length, so the tie breaks lexicographically: "/a.b" <
	// "/a_b" ('.' < '_'), so the first applier keeps the name and the
	// second target's colliding recipe is withheld rather than
	// clobbering it.
	changeUnderscore := r.Apply(underscore, []parser.Recipe{{Name: "build"}})
	assert.True(t, changeUnderscore.Empty())

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "dot", snap[0].TargetID)

	// Re-applying the loser after the winner is gone reclaims the name.
	changeDotEmpty := r.Apply(dot, nil)
	require.Len(t, changeDotEmpty.Removed, 1)
	changeUnderscoreNow := r.Apply(underscore, []parser.Recipe{{Name: "build"}})
	require.Len(t, changeUnderscoreNow.Added, 1)
	assert.Equal(t, "underscore", changeUnderscoreNow.Added[0].TargetID)
}

func TestRegistry_ChallengerWinsTieBreaksLexicographically(t *testing.T) {
	a := TargetInfo{ID: "a", Root: "/same/len/a"}
	b := TargetInfo{ID: "b", Root: "/same/len/b"}
	r := New([]TargetInfo{a, b})

	assert.True(t, r.challengerWins(a, "b"))
	assert.False(t, r.challengerWins(b, "a"))
}

func TestRegistry_LookupMissingReturnsFalse(t *testing.T) {
	r := New(nil)
	_, ok := r.Lookup("just_nonexistent")
	assert.False(t, ok)
}
