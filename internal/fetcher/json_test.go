package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONObject(t *testing.T) {
	type doc struct {
		Type    string         `json:"type"`
		Objects map[string]any `json:"objects"`
	}

	got, err := DecodeJSONObject[doc](strings.NewReader(`{"type":"Topology","objects":{"counties":{}}}`))
	require.NoError(t, err)
	assert.Equal(t, "Topology", got.Type)
	assert.Contains(t, got.Objects, "counties")
}

func TestDecodeJSONObject_Invalid(t *testing.T) {
	_, err := DecodeJSONObject[map[string]any](strings.NewReader(`{"type":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json: decode object")
}
