// Package cliutil provides utilities for the just-mcp command-line
// entrypoint.
package cliutil

import (
	"fmt"
	"io"
	"os"
)

// Writef writes a formatted startup/shutdown diagnostic to w (cmd/justmcp
// uses it for stderr, since stdout is reserved for the JSON-RPC
// transport). If the write itself fails, it falls back to a raw
// stderr print rather than returning an error no caller would check.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}
