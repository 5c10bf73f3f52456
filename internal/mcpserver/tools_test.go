package mcpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/just-mcp/just-mcp/executor"
)

func TestParseArguments_EmptyIsValid(t *testing.T) {
	args, err := parseArguments(&mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Name: "just_build"}})
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestParseArguments_DecodesJSON(t *testing.T) {
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{
		Name:      "just_deploy",
		Arguments: []byte(`{"env":"staging","replicas":3}`),
	}}
	args, err := parseArguments(req)
	require.NoError(t, err)
	assert.Equal(t, "staging", args["env"])
	assert.EqualValues(t, 3, args["replicas"])
}

func TestParseArguments_InvalidJSONIsProtocolError(t *testing.T) {
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{
		Name:      "just_deploy",
		Arguments: []byte(`{not json`),
	}}
	_, err := parseArguments(req)
	assert.Error(t, err)
}

func TestSchemaParamNames(t *testing.T) {
	schema := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"env":      {Type: "string"},
			"replicas": {Type: "integer"},
		},
	}
	names := schemaParamNames(schema)
	assert.ElementsMatch(t, []string{"env", "replicas"}, names)
}

func TestSchemaParamNames_NilSchema(t *testing.T) {
	assert.Nil(t, schemaParamNames(nil))
}

func TestExecutionToolResult(t *testing.T) {
	tests := []struct {
		name       string
		res        executor.ExecutionResult
		wantError  bool
		wantSubstr string
	}{
		{
			name:      "zero exit status is success",
			res:       executor.ExecutionResult{ExitStatus: 0, Stdout: []byte("ok\n")},
			wantError: false,
		},
		{
			name:      "nonzero exit status is an error",
			res:       executor.ExecutionResult{ExitStatus: 1, Stderr: []byte("boom\n")},
			wantError: true,
		},
		{
			name:       "timeout overrides exit status and reports duration",
			res:        executor.ExecutionResult{ExitStatus: 0, Cause: executor.CauseTimeout, Duration: 42 * time.Second},
			wantError:  true,
			wantSubstr: "timed out after 42s",
		},
		{
			name:       "truncated output is flagged in the text",
			res:        executor.ExecutionResult{ExitStatus: 0, Stdout: []byte("partial"), Truncated: true},
			wantError:  false,
			wantSubstr: "[output truncated]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := executionToolResult(tt.res)
			assert.Equal(t, tt.wantError, got.IsError)
			if tt.wantSubstr != "" {
				require.Len(t, got.Content, 1)
				text, ok := got.Content[0].(*mcp.TextContent)
				require.True(t, ok)
				assert.Contains(t, text.Text, tt.wantSubstr)
			}
		})
	}
}
