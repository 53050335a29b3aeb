package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, "http://json-schema.org/draft-07/schema#", schema["$schema"])
	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"base_dir", "session_dir", "config_document", "auth", "handoff"} {
		assert.Contains(t, props, key)
	}
	assert.NotContains(t, props, "Extensions")
}

func TestSchemaValidatorAcceptsDefaults(t *testing.T) {
	v, err := NewSchemaValidator()
	require.NoError(t, err)
	assert.NoError(t, v.Validate(Default()))
}
