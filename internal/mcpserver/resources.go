package mcpserver

import (
	"context"
	"embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
)

//go:embed docs/guides/*.md
var guideFS embed.FS

// guideTemplateStr is the single resource template,
// "best-practice-guides", matching any embedded guide id.
const guideTemplateStr = "file:///docs/guides/{guide}.md"

// guideTemplate matches request URIs with the same RFC 6570
// implementation the MCP Go SDK itself depends on for its own
// resource-template support, rather than a hand-rolled regex doing the
// SDK's job twice.
var guideTemplate = uritemplate.MustNew(guideTemplateStr)

// guideIDRe re-validates a matched "guide" variable value: the template
// match alone guarantees no "/" was consumed, but a literal ".." or
// other unexpected shape inside the single segment is still rejected.
var guideIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

type guide struct {
	ID          string
	Title       string
	Description string
}

var guides = []guide{
	{ID: "writing-justfiles", Title: "writing-justfiles", Description: "Conventions for writing justfiles just-mcp can parse well."},
	{ID: "admin-tools", Title: "admin-tools", Description: "The _admin_sync and _admin_create_task tools exposed by --admin."},
	{ID: "security-model", Title: "security-model", Description: "The argument validation, confinement, and resource caps the executor enforces."},
}

func guideURI(id string) string { return fmt.Sprintf("file:///docs/guides/%s.md", id) }

// registerResources publishes the embedded guide set and the resource
// template that addresses it, the same AddResource instance-method
// pattern the corpus uses for static document resources.
func (s *Server) registerResources() {
	for _, g := range guides {
		g := g
		s.mcpServer.AddResource(&mcp.Resource{
			Name:        g.Title,
			URI:         guideURI(g.ID),
			Description: g.Description,
			MIMEType:    "text/markdown",
		}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return s.readGuide(g.ID)
		})
	}

	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "best-practice-guides",
		URITemplate: guideTemplateStr,
		Description: "Operator-facing guides for writing justfiles, using admin tools, and the executor's security model.",
		MIMEType:    "text/markdown",
	}, s.readGuideTemplate)
}

func (s *Server) readGuide(id string) (*mcp.ReadResourceResult, error) {
	data, err := guideFS.ReadFile("docs/guides/" + id + ".md")
	if err != nil {
		return nil, fmt.Errorf("reading embedded guide %q: %w", id, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      guideURI(id),
			MIMEType: "text/markdown",
			Text:     string(data),
		}},
	}, nil
}

// readGuideTemplate serves resources/read for a URI matched against the
// template rather than a statically registered resource.
func (s *Server) readGuideTemplate(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id, err := matchGuideURI(req.Params.URI)
	if err != nil {
		return nil, err
	}
	if !knownGuide(id) {
		return nil, fmt.Errorf("invalid params: unknown guide %q", id)
	}
	return s.readGuide(id)
}

// matchGuideURI extracts and validates the "guide" variable from uri
// against guideTemplate.
func matchGuideURI(uri string) (string, error) {
	values := guideTemplate.Match(uri)
	if values == nil {
		return "", fmt.Errorf("invalid params: uri %q does not match %s", uri, guideTemplateStr)
	}
	id := values.Get("guide").String()
	if id == "" || !guideIDRe.MatchString(id) {
		return "", fmt.Errorf("invalid params: uri %q does not match %s", uri, guideTemplateStr)
	}
	return id, nil
}

func knownGuide(id string) bool {
	for _, g := range guides {
		if g.ID == id {
			return true
		}
	}
	return false
}

// completeArgument implements completion/complete for the "guide"
// argument of the resource template: embedded
// ids whose lowercase form starts with the lowercase prefix, sorted
// lexicographically, hasMore always false since the full set is
// enumerated in one page.
func (s *Server) completeArgument(ctx context.Context, req *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	if req.Params == nil || req.Params.Argument.Name != "guide" {
		return &mcp.CompleteResult{}, nil
	}
	prefix := strings.ToLower(req.Params.Argument.Value)

	var matches []string
	for _, g := range guides {
		if strings.HasPrefix(strings.ToLower(g.ID), prefix) {
			matches = append(matches, g.ID)
		}
	}
	sort.Strings(matches)

	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values:  matches,
			HasMore: false,
		},
	}, nil
}
