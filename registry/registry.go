package registry

import (
	"crypto/sha256"
	"sort"
	"sync"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/just-mcp/just-mcp/parser"
)

// CoalesceWindow is how long the server's coalescer holds a non-empty
// ToolChangeSet before publishing it, so a burst of `Apply` calls across
// multiple targets collapses into a single `tools/list_changed`. Apply
// itself returns its change set immediately.
const CoalesceWindow = 200 * time.Millisecond

// TargetInfo is the minimal per-target identity the registry needs to
// derive tool names. It is deliberately decoupled from the watcher
// package's WatchTarget type so the registry never shares mutable
// watcher state.
type TargetInfo struct {
	ID   string
	Name string
	Root string
}

// Registry is the canonical tool-name -> ToolEntry map. It is a
// single-writer, many-reader structure: Apply is the only mutator and
// holds the write lock; Snapshot and Lookup read the map under the
// read lock.
type Registry struct {
	mu              sync.RWMutex
	entries         map[string]ToolEntry  // tool name -> entry
	byTarget        map[string][]string   // target ID -> tool names it owns
	targets         map[string]TargetInfo // target ID -> its info, for collision tie-breaks
	multipleUnnamed bool
}

// New constructs a Registry. targets is the full, fixed set of
// WatchTargets known at startup; whether more than one is unnamed
// decides the naming scheme for every unnamed target's tools for the
// life of the process.
func New(targets []TargetInfo) *Registry {
	unnamed := 0
	byID := make(map[string]TargetInfo, len(targets))
	for _, t := range targets {
		if t.Name == "" {
			unnamed++
		}
		byID[t.ID] = t
	}
	return &Registry{
		entries:         make(map[string]ToolEntry),
		byTarget:        make(map[string][]string),
		targets:         byID,
		multipleUnnamed: unnamed > 1,
	}
}

// Apply replaces the set of entries originating from target with ones
// derived from recipes, returning the resulting ToolChangeSet. It is
// atomic from the perspective of concurrent Snapshot/Lookup callers:
// readers see either the full pre- or post-apply contribution of
// target, never a partial state.
func (r *Registry) Apply(target TargetInfo, recipes []parser.Recipe) ToolChangeSet {
	next := make(map[string]ToolEntry, len(recipes))
	for _, rec := range recipes {
		entry := deriveEntry(target, rec, r.multipleUnnamed)
		next[entry.Name] = entry
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.targets[target.ID] = target

	var change ToolChangeSet

	prevNames := r.byTarget[target.ID]
	prev := make(map[string]ToolEntry, len(prevNames))
	for _, name := range prevNames {
		if e, ok := r.entries[name]; ok && e.TargetID == target.ID {
			prev[name] = e
		}
	}

	// accepted is next, restricted to names target actually wins under
	// the collision rule: if the name is already published by
	// a different target, the shorter root path wins and ties break
	// lexicographically. Comparing by the fixed target roots (rather
	// than by Apply call order) keeps the outcome deterministic
	// regardless of which target happens to apply first or re-applies
	// later, so ownership of a colliding name never flips back and
	// forth between targets.
	accepted := make(map[string]ToolEntry, len(next))
	for name, entry := range next {
		if owner, ok := r.entries[name]; ok && owner.TargetID != target.ID {
			if !r.challengerWins(target, owner.TargetID) {
				continue
			}
			r.evict(owner)
		}
		accepted[name] = entry
	}

	for name, entry := range accepted {
		if old, existed := prev[name]; existed {
			if old.ContentHash != entry.ContentHash {
				change.Updated = append(change.Updated, entry)
			}
		} else {
			change.Added = append(change.Added, entry)
		}
		r.entries[name] = entry
	}
	for name, old := range prev {
		if _, stillPresent := accepted[name]; !stillPresent {
			change.Removed = append(change.Removed, old)
			delete(r.entries, name)
		}
	}

	newNames := make([]string, 0, len(accepted))
	for name := range accepted {
		newNames = append(newNames, name)
	}
	sort.Strings(newNames)
	r.byTarget[target.ID] = newNames

	sortEntries(change.Added)
	sortEntries(change.Removed)
	sortEntries(change.Updated)

	return change
}

// challengerWins reports whether challenger takes a tool name away
// from the target currently holding it (ownerID): the shorter root
// path wins; equal-length roots break the tie lexicographically.
func (r *Registry) challengerWins(challenger TargetInfo, ownerID string) bool {
	owner, ok := r.targets[ownerID]
	if !ok {
		return true
	}
	if len(challenger.Root) != len(owner.Root) {
		return len(challenger.Root) < len(owner.Root)
	}
	return challenger.Root < owner.Root
}

// evict drops a name a target just lost to a shorter (or
// lexicographically earlier) colliding root, keeping the losing
// target's own byTarget bookkeeping in sync so its next Apply call
// reads a prevNames list that no longer contains the name it no
// longer owns.
func (r *Registry) evict(owner ToolEntry) {
	delete(r.entries, owner.Name)
	names := r.byTarget[owner.TargetID]
	for i, n := range names {
		if n == owner.Name {
			r.byTarget[owner.TargetID] = append(names[:i:i], names[i+1:]...)
			break
		}
	}
}

func sortEntries(entries []ToolEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
}

// Snapshot returns the current list of ToolEntry, ordered by tool name.
func (r *Registry) Snapshot() []ToolEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sortEntries(out)
	return out
}

// Lookup returns the ToolEntry for name and whether it exists.
func (r *Registry) Lookup(name string) (ToolEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

func deriveEntry(target TargetInfo, rec parser.Recipe, multipleUnnamed bool) ToolEntry {
	name := toolName(rec.Name, target.Name, target.Root, multipleUnnamed)
	schema := deriveSchema(rec.Parameters)
	desc := recipeDescription(rec)

	return ToolEntry{
		Name:        name,
		Description: desc,
		InputSchema: schema,
		TargetID:    target.ID,
		RecipeName:  rec.Name,
		Variadic:    variadicParam(rec.Parameters),
		ContentHash: contentHash(name, desc, schema),
	}
}

// variadicParam returns the name of rec's variadic parameter, if any.
func variadicParam(params []parser.Parameter) string {
	for _, p := range params {
		if p.Variadic {
			return p.Name
		}
	}
	return ""
}

// recipeDescription returns the joined doc-comment lines, falling
// back to the [doc(...)] attribute value, falling back to
// "Run just recipe <name>".
func recipeDescription(rec parser.Recipe) string {
	if d := rec.Doc(); d != "" {
		return d
	}
	return "Run just recipe " + rec.Name
}

// contentHash is a cryptographic digest over (name, description,
// canonicalized schema).
func contentHash(name, description string, schema any) [32]byte {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(description))
	h.Write([]byte{0})
	if b, err := json.Marshal(schema); err == nil {
		h.Write(b)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
