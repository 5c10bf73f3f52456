// Package parser extracts Recipe values from justfile text through a
// three-tier fallback pipeline: a hand-written formal-grammar tier, an
// external `just` CLI tier, and a line-based regex tier, with a floor
// tier beneath all three so a file is never dropped entirely.
package parser

import "time"

// Tier identifies which pipeline stage produced a Recipe.
type Tier string

const (
	TierGrammar Tier = "grammar"
	TierCLI     Tier = "cli"
	TierRegex   Tier = "regex"
	TierFloor   Tier = "floor"
)

// Parameter is one recipe parameter.
type Parameter struct {
	Name        string
	Default     string // empty and HasDefault=false when required
	HasDefault  bool
	Description string // from an adjacent "# {{name}}: desc" doc comment
	Variadic    bool
}

// Recipe is the parsed result of one task definition in a justfile.
type Recipe struct {
	Name         string
	Body         string
	Parameters   []Parameter
	Dependencies []string
	DocComments  []string
	Attributes   map[string]string // e.g. "private" -> "", "group" -> "name"
	Line         int
	Tier         Tier
}

// IsPrivate reports whether the recipe carries a [private] attribute or
// a leading-underscore name, the two ways just marks a recipe private.
func (r Recipe) IsPrivate() bool {
	if _, ok := r.Attributes["private"]; ok {
		return true
	}
	return len(r.Name) > 0 && r.Name[0] == '_'
}

// Doc joins the recipe's doc comment lines, or falls back to its
// [doc(...)] attribute value if present. Returns "" if neither exists;
// callers apply the final "Run just recipe <name>" fallback themselves
// since that default belongs to the registry's derivation rule, not the
// parser's contract.
func (r Recipe) Doc() string {
	if len(r.DocComments) > 0 {
		joined := ""
		for i, l := range r.DocComments {
			if i > 0 {
				joined += "\n"
			}
			joined += l
		}
		return joined
	}
	if d, ok := r.Attributes["doc"]; ok {
		return d
	}
	return ""
}

// FallbackRecord captures one tier's failure for a recipe or a whole
// file, kept for diagnostics in a ParseSession.
type FallbackRecord struct {
	Tier    Tier
	Recipe  string // empty when the failure is file-wide
	Message string
}

// ParseSession is the per-file record returned alongside a parse: which
// tier produced each recipe, how long parsing took, and one record per
// fallback taken during the parse. Callers outside this package read
// only Recipes; the tier, timing, and fallback fields are diagnostic.
type ParseSession struct {
	Path      string
	Recipes   []Recipe
	Fallbacks []FallbackRecord
	Elapsed   time.Duration
}

// TierUsed reports the tiers exercised across all recipes in the
// session, in the order first observed.
func (s ParseSession) TierUsed() []Tier {
	seen := make(map[Tier]bool)
	var out []Tier
	for _, r := range s.Recipes {
		if !seen[r.Tier] {
			seen[r.Tier] = true
			out = append(out, r.Tier)
		}
	}
	return out
}
