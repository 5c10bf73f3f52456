// Package registry maintains the canonical map of tool name to
// ToolEntry derived from parsed recipes, emitting change sets so only
// mutated tools are republished over MCP.
package registry

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// ToolEntry is what the registry publishes: a derived, addressable
// view of one parsed Recipe.
type ToolEntry struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	TargetID    string
	RecipeName  string
	// Variadic names the recipe's variadic parameter, if any; "" if
	// none. Not derivable from InputSchema alone (a variadic parameter
	// is simply absent from Required, same as any parameter with a
	// default), so the executor needs it carried separately to build
	// argv correctly.
	Variadic    string
	ContentHash [32]byte
}

// ToolChangeSet is the diff between two registry snapshots.
type ToolChangeSet struct {
	Added   []ToolEntry
	Removed []ToolEntry
	Updated []ToolEntry
}

// Empty reports whether the change set describes no difference.
func (c ToolChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Updated) == 0
}
