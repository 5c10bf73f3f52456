package watcher

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

// foldCaser performs Unicode-aware case folding for matching the
// literal name "justfile" (so "Justfile", "JUSTFILE", etc. all match).
var foldCaser = cases.Fold()

// matchesJustfile reports whether path's base name is the
// case-insensitive literal "justfile" or ends with ".just".
func matchesJustfile(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".just") {
		return true
	}
	return foldCaser.String(base) == "justfile"
}

// MatchesJustfile is the exported form of matchesJustfile, used by
// callers (the mcpserver wiring layer's startup discovery scan) that
// need the same case-insensitive "justfile"/".just" matching rule the
// watcher itself applies to filesystem events.
func MatchesJustfile(path string) bool { return matchesJustfile(path) }
