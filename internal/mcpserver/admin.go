package mcpserver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	segjson "github.com/segmentio/encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/just-mcp/just-mcp/internal/fileutil"
	"github.com/just-mcp/just-mcp/internal/pathutil"
	"github.com/just-mcp/just-mcp/jmerrors"
)

// recipeNameRe matches a valid recipe name: an identifier of 1-100
// chars from [A-Za-z0-9_-].
var recipeNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)

// registerAdminTools exposes the _admin_* tools reserved for --admin
// mode. Their schemas are static, so they use the same raw
// instance-method AddTool pattern as recipe tools, with their own
// dedicated handlers rather than callRecipeTool.
func (s *Server) registerAdminTools() {
	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "_admin_sync",
		Description: "Force an immediate re-scan and re-parse of one or all watch targets, without waiting for a filesystem event.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"target": {Type: "string", Description: "Display name or root path of the target to sync; omit to sync every target."},
			},
		},
	}, s.handleAdminSync)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "_admin_create_task",
		Description: "Append a new recipe to a watched justfile, creating the file if it does not yet exist, then republish the updated tool set.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"target": {Type: "string", Description: "Display name or root path of the target to write into."},
				"name":   {Type: "string", Description: "Recipe name, matching [A-Za-z0-9_-]{1,100}."},
				"body":   {Type: "string", Description: "Recipe body lines, each indented by one tab in the final justfile."},
			},
			Required: []string{"target", "name", "body"},
		},
	}, s.handleAdminCreateTask)
}

// adminSyncResult is the JSON payload returned to the client, encoded
// with the segmentio encoder whose decoder parseArguments uses for
// tools/call arguments.
type adminSyncResult struct {
	Synced  []string `json:"synced"`
	Added   int      `json:"added"`
	Removed int      `json:"removed"`
	Updated int      `json:"updated"`
}

func (s *Server) handleAdminSync(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArguments(req)
	if err != nil {
		return errResult(err), nil
	}
	wantTarget, _ := args["target"].(string)

	result := adminSyncResult{}
	for id, t := range s.targets {
		if wantTarget != "" && wantTarget != id && wantTarget != t.info.Name {
			continue
		}
		cs := s.syncTarget(ctx, t)
		s.coalesce.push(cs)
		result.Synced = append(result.Synced, id)
		result.Added += len(cs.Added)
		result.Removed += len(cs.Removed)
		result.Updated += len(cs.Updated)
	}
	s.coalesce.flushNow()

	body, err := segjson.Marshal(result)
	if err != nil {
		return errResult(err), nil
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(body)}}}, nil
}

func (s *Server) handleAdminCreateTask(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArguments(req)
	if err != nil {
		return errResult(err), nil
	}
	targetKey, _ := args["target"].(string)
	name, _ := args["name"].(string)
	body, _ := args["body"].(string)

	if !recipeNameRe.MatchString(name) {
		return errResult(&jmerrors.ValidationError{Tool: "_admin_create_task", Argument: "name", Reason: "must match [A-Za-z0-9_-]{1,100}"}), nil
	}

	t := s.findTarget(targetKey)
	if t == nil {
		return errResult(&jmerrors.ToolNotFoundError{Tool: "target:" + targetKey}), nil
	}

	path, err := s.justfilePathFor(t)
	if err != nil {
		return errResult(err), nil
	}
	path, err = pathutil.SanitizeOutputPath(path)
	if err != nil {
		return errResult(err), nil
	}

	if err := appendRecipe(path, name, body); err != nil {
		return errResult(err), nil
	}

	cs := s.syncTarget(ctx, t)
	s.coalesce.push(cs)
	s.coalesce.flushNow()

	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{
		Text: fmt.Sprintf("recipe %q added to %s", name, path),
	}}}, nil
}

func (s *Server) findTarget(key string) *target {
	if key == "" {
		return nil
	}
	if t, ok := s.targets[key]; ok {
		return t
	}
	for _, t := range s.targets {
		if t.info.Name == key {
			return t
		}
	}
	return nil
}

// justfilePathFor returns the path a new recipe should be appended to:
// the target's already-discovered justfile that sorts first by path, or
// "<root>/justfile" if none has been seen yet.
func (s *Server) justfilePathFor(t *target) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	first := ""
	for p := range t.recipesByFile {
		if first == "" || p < first {
			first = p
		}
	}
	if first != "" {
		return first, nil
	}
	return filepath.Join(t.wt.Root, "justfile"), nil
}

// appendRecipe writes name's recipe header and body to path, creating
// the file with fileutil.ReadableByAll permissions if it does not
// already exist.
func appendRecipe(path, name, body string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileutil.ReadableByAll)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	body = strings.ReplaceAll(body, "\n", "\n\t")
	if _, err := fmt.Fprintf(f, "\n%s:\n\t%s\n", name, body); err != nil {
		return fmt.Errorf("writing recipe %q: %w", name, err)
	}
	return nil
}
