package registry

import "strings"

// slug replaces every rune outside [A-Za-z0-9] with one underscore. This
// is a literal, uncollapsed, character-by-character transform: runs of
// non-alphanumerics become runs of underscores rather than being
// collapsed to one, so the mapping stays stable under the collision
// tie-break.
func slug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// toolName derives the fully-qualified tool name for a recipe:
//   - single unnamed target:     just_<recipe>
//   - named target:              just_<recipe>@<target-name>
//   - multiple unnamed targets:  just_<recipe>_<slug(absolute-path)>
func toolName(recipe, targetName, targetRoot string, multipleUnnamed bool) string {
	switch {
	case targetName != "":
		return "just_" + recipe + "@" + targetName
	case multipleUnnamed:
		return "just_" + recipe + "_" + slug(targetRoot)
	default:
		return "just_" + recipe
	}
}
