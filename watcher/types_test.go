package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchTarget_HashRoundTrip(t *testing.T) {
	target := NewWatchTarget("/proj", "")

	_, ok := target.lastHash("/proj/justfile")
	assert.False(t, ok)

	var h [32]byte
	h[0] = 0xAB
	target.setHash("/proj/justfile", h)

	got, ok := target.lastHash("/proj/justfile")
	require.True(t, ok)
	assert.Equal(t, h, got)

	target.clearHash("/proj/justfile")
	_, ok = target.lastHash("/proj/justfile")
	assert.False(t, ok)
}

func TestWatchTarget_DegradedDefaultsFalse(t *testing.T) {
	target := NewWatchTarget("/proj", "x")
	assert.False(t, target.Degraded())
	target.setDegraded(true)
	assert.True(t, target.Degraded())
}
