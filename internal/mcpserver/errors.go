package mcpserver

import (
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// pathPattern strips absolute filesystem paths from error messages so
// a client never learns the server's directory layout from an error
// string.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult builds a tools/call error result from a Go error. Secrets
// never appear here: validation, overload, and not-found errors carry
// no argument values, and stringifyArg'd arguments never reach the
// message text.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
