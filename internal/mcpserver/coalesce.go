package mcpserver

import (
	"sync"
	"time"

	"github.com/just-mcp/just-mcp/registry"
)

// coalescer merges change sets arriving within registry.CoalesceWindow
// of each other and flushes them to the live MCP server as one batch.
type coalescer struct {
	apply func(registry.ToolChangeSet)

	mu      sync.Mutex
	pending registry.ToolChangeSet
	timer   *time.Timer
}

func newCoalescer(apply func(registry.ToolChangeSet)) *coalescer {
	return &coalescer{apply: apply}
}

// push merges cs into the pending batch and (re)arms the flush timer.
// A burst of push calls within one CoalesceWindow of each other
// produces exactly one flush.
func (c *coalescer) push(cs registry.ToolChangeSet) {
	if cs.Empty() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending.Added = append(c.pending.Added, cs.Added...)
	c.pending.Removed = append(c.pending.Removed, cs.Removed...)
	c.pending.Updated = append(c.pending.Updated, cs.Updated...)
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(registry.CoalesceWindow, c.flush)
}

func (c *coalescer) flush() {
	c.mu.Lock()
	cs := c.pending
	c.pending = registry.ToolChangeSet{}
	c.mu.Unlock()
	if !cs.Empty() {
		c.apply(cs)
	}
}

// flushNow applies any pending batch immediately, bypassing the
// window. Used at startup so initial discovery registers its tools
// before the stdio transport starts serving tools/list, and by the
// admin tool handlers so their changes are published before they
// return.
func (c *coalescer) flushNow() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.flush()
}
