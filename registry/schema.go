package registry

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/just-mcp/just-mcp/parser"
)

// deriveSchema synthesizes the JSON-Schema for a recipe's parameters:
// properties mirror the recipe's parameters (type "string" unless a
// default is numeric/bool, in which case the JSON type of the default
// is used), with required set to the parameters lacking defaults and
// not marked variadic.
//
// The result is a *jsonschema.Schema, the exact type the MCP Go SDK's
// mcp.Tool.InputSchema field expects, so no adapter layer sits between
// this derivation and C5's tool registration.
func deriveSchema(params []parser.Parameter) *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(params))
	var required []string

	for _, p := range params {
		props[p.Name] = &jsonschema.Schema{
			Type:        paramJSONType(p),
			Description: p.Description,
		}
		if !p.HasDefault && !p.Variadic {
			required = append(required, p.Name)
		}
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// paramJSONType infers a parameter's JSON-Schema type from its default
// value's literal shape: "true"/"false" is boolean, a parseable
// integer or float is "number", anything else (including no default)
// is "string".
func paramJSONType(p parser.Parameter) string {
	if !p.HasDefault {
		return "string"
	}
	switch p.Default {
	case "true", "false":
		return "boolean"
	}
	if isNumericLiteral(p.Default) {
		return "number"
	}
	return "string"
}

func isNumericLiteral(s string) bool {
	if s == "" {
		return false
	}
	seenDigit, seenDot := false, false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && !seenDot:
			seenDot = true
		case r == '-' && i == 0:
			// leading sign only
		default:
			return false
		}
	}
	return seenDigit
}
