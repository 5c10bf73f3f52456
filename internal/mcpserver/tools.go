package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	segjson "github.com/segmentio/encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/just-mcp/just-mcp/executor"
	"github.com/just-mcp/just-mcp/jmerrors"
	"github.com/just-mcp/just-mcp/registry"
)

// applyChangeSet is the coalescer's sink: it syncs a batch of registry
// changes onto the live *mcp.Server. Every recipe tool shares the same
// handler (callRecipeTool), which resolves the tool name against the
// registry at call time, so only the *mcp.Tool definitions themselves
// need to be added, replaced, or removed here.
func (s *Server) applyChangeSet(cs registry.ToolChangeSet) {
	for _, e := range cs.Added {
		s.addRecipeTool(e)
	}
	for _, e := range cs.Updated {
		s.addRecipeTool(e)
	}
	for _, e := range cs.Removed {
		s.mcpServer.RemoveTools(e.Name)
	}
}

func (s *Server) addRecipeTool(e registry.ToolEntry) {
	s.mcpServer.AddTool(&mcp.Tool{
		Name:        e.Name,
		Description: e.Description,
		InputSchema: e.InputSchema,
	}, s.callRecipeTool)
}

// callRecipeTool is the single handler registered for every recipe
// tool. It looks the tool up fresh on each call so a registry update
// between registration and invocation is never observed as stale.
func (s *Server) callRecipeTool(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.Params.Name

	entry, ok := s.reg.Lookup(name)
	if !ok {
		return errResult(&jmerrors.ToolNotFoundError{Tool: name}), nil
	}
	t, ok := s.targets[entry.TargetID]
	if !ok {
		return errResult(&jmerrors.ToolNotFoundError{Tool: name}), nil
	}

	args, err := parseArguments(req)
	if err != nil {
		return errResult(err), nil
	}

	result, err := s.exec.Execute(ctx, executor.ExecutionRequest{
		ToolName:       entry.Name,
		Recipe:         entry.RecipeName,
		Arguments:      args,
		DeclaredParams: schemaParamNames(entry.InputSchema),
		RequiredParams: entry.InputSchema.Required,
		Variadic:       entry.Variadic,
		WorkDir:        t.wt.Root,
		BaseDir:        t.wt.Root,
	})
	if err != nil {
		return errResult(err), nil
	}
	return executionToolResult(result), nil
}

// parseArguments decodes req's raw JSON arguments into a map, the same
// permissive any-valued shape ExecutionRequest.Arguments expects. An
// absent or empty arguments object is valid: a no-parameter recipe call.
func parseArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := segjson.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, &jmerrors.ProtocolError{Cause: err}
	}
	return m, nil
}

func schemaParamNames(schema *jsonschema.Schema) []string {
	if schema == nil {
		return nil
	}
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	return names
}

// executionToolResult builds the tools/call result: combined
// stdout+stderr as one text content block, isError set from the exit
// status, with a descriptive text for a timed-out call.
func executionToolResult(res executor.ExecutionResult) *mcp.CallToolResult {
	text := string(res.Stdout) + string(res.Stderr)
	isError := res.ExitStatus != 0

	if res.Cause == executor.CauseTimeout {
		isError = true
		text = fmt.Sprintf("timed out after %s", res.Duration.Round(time.Second))
	}
	if res.Truncated {
		text += "\n[output truncated]"
	}

	return &mcp.CallToolResult{
		IsError: isError,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
