package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// doItTemplate is the seed prompt's static text, rendered by
// substituting $ARGUMENTS with the caller-supplied "request" argument.
const doItTemplate = `You have access to this project's just-mcp tools. Use tools/list to
see the currently published recipes, then call whichever tool best
accomplishes the following request, checking its result before
reporting back:

$ARGUMENTS`

// registerPrompts publishes the prompt registry's seed prompt. Future
// prompts slot in identically: a *mcp.Prompt plus a PromptHandler added
// to the same server.
func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(&mcp.Prompt{
		Name:        "do-it",
		Description: "Accomplish a free-form request using this project's just-mcp tools.",
		Arguments: []*mcp.PromptArgument{
			{Name: "request", Description: "What to accomplish.", Required: true},
		},
	}, handleDoIt)
}

func handleDoIt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	request := ""
	if req.Params != nil {
		request = req.Params.Arguments["request"]
	}
	text := strings.Replace(doItTemplate, "$ARGUMENTS", request, 1)

	return &mcp.GetPromptResult{
		Description: "Run just-mcp tools to satisfy a free-form request.",
		Messages: []*mcp.PromptMessage{
			{Role: "assistant", Content: &mcp.TextContent{Text: text}},
		},
	}, nil
}
