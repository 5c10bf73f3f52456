package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/just-mcp/just-mcp/parser"
)

func TestDeriveSchema_NoParameters(t *testing.T) {
	schema := deriveSchema(nil)
	assert.Equal(t, "object", schema.Type)
	assert.Empty(t, schema.Properties)
	assert.Empty(t, schema.Required)
}

func TestDeriveSchema_TypeInferenceFromDefault(t *testing.T) {
	params := []parser.Parameter{
		{Name: "env", HasDefault: true, Default: "prod"},
		{Name: "count", HasDefault: true, Default: "3"},
		{Name: "verbose", HasDefault: true, Default: "true"},
		{Name: "required_one"},
	}
	schema := deriveSchema(params)

	require.Contains(t, schema.Properties, "env")
	assert.Equal(t, "string", schema.Properties["env"].Type)
	assert.Equal(t, "number", schema.Properties["count"].Type)
	assert.Equal(t, "boolean", schema.Properties["verbose"].Type)
	assert.Equal(t, "string", schema.Properties["required_one"].Type)

	assert.ElementsMatch(t, []string{"required_one"}, schema.Required)
}

func TestIsNumericLiteral(t *testing.T) {
	assert.True(t, isNumericLiteral("3"))
	assert.True(t, isNumericLiteral("3.14"))
	assert.True(t, isNumericLiteral("-5"))
	assert.False(t, isNumericLiteral(""))
	assert.False(t, isNumericLiteral("prod"))
	assert.False(t, isNumericLiteral("1.2.3"))
}
