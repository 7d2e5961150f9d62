package containers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardize(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"40HC", "40HC", true},
		{"40 high cube", "40HC", true},
		{"40'HC", "40HC", true},
		{"40ft", "40GP", true},
		{"40 foot standard", "40GP", true},
		{"20ft container", "20GP", true},
		{"45 high cube", "45HC", true},
		{"45", "45HC", true},
		{"40 reefer", "40RF", true},
		{"20 refrigerated", "20RF", true},
		{"40 open top", "40OT", true},
		{"two pallets", "two pallets", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Standardize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestRateFallback(t *testing.T) {
	assert.Equal(t, "40GP", RateFallback("40HC"))
	assert.Equal(t, "40HC", RateFallback("45HC"))
	assert.Equal(t, "20GP", RateFallback("20GP"))
	assert.Equal(t, "unknown", RateFallback("unknown"))
}

func TestCollaborator(t *testing.T) {
	c := Collaborator()
	resp, err := c.Process(context.Background(), map[string]any{"container_type": "40 high cube"})
	require.NoError(t, err)
	assert.Equal(t, "40HC", resp["standardized_type"])
	assert.Equal(t, "40GP", resp["rate_fallback_type"])
	assert.Equal(t, true, resp["recognized"])

	resp, err = c.Process(context.Background(), map[string]any{"container_type": "gibberish"})
	require.NoError(t, err)
	assert.Equal(t, false, resp["recognized"])
	assert.NotContains(t, resp, "rate_fallback_type")
}
