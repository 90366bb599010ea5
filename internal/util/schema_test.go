package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reagent/core"
)

func TestMissingRequiredFields(t *testing.T) {
	schema := core.InputSchema{
		Type:     "object",
		Required: []string{"a", "b", "c"},
	}

	missing := MissingRequiredFields(schema, map[string]any{"b": 1})
	assert.Equal(t, []string{"a", "c"}, missing)

	assert.Nil(t, MissingRequiredFields(schema, map[string]any{"a": 1, "b": 2, "c": 3}))
}

func TestValidateParameters(t *testing.T) {
	schema := core.InputSchema{
		Type: "object",
		Properties: map[string]any{
			"name":  map[string]any{"type": "string"},
			"count": map[string]any{"type": "integer"},
			"ratio": map[string]any{"type": "number"},
		},
		Required: []string{"name"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"name": "x"}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"name": "x", "count": float64(3)}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"name": "x", "ratio": 1.5, "extra": true}, schema))

	err := ValidateParameters(map[string]any{}, schema)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	err = ValidateParameters(map[string]any{"name": 7}, schema)
	require.ErrorAs(t, err, &verr)

	// Non-integral floats are rejected for integer properties.
	err = ValidateParameters(map[string]any{"name": "x", "count": 1.5}, schema)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "count", verr.Field)
}

func TestCreateSchema(t *testing.T) {
	type args struct {
		Query    string  `json:"query" description:"Search query"`
		Limit    int     `json:"limit,omitempty"`
		Optional *string `json:"optional"`
		hidden   bool    //nolint:unused
		Skipped  string  `json:"-"`
	}

	schema := CreateSchema(args{})
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"query"}, schema.Required)

	query, ok := schema.Properties["query"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", query["type"])
	assert.Equal(t, "Search query", query["description"])

	limit, ok := schema.Properties["limit"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "integer", limit["type"])

	_, hasSkipped := schema.Properties["Skipped"]
	assert.False(t, hasSkipped)
	_, hasHidden := schema.Properties["hidden"]
	assert.False(t, hasHidden)
}

func TestNewID(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, NewID())
}
