package agents

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoke(t *testing.T) {
	ctx := context.Background()

	t.Run("nil collaborator degrades to error payload", func(t *testing.T) {
		resp := Invoke(ctx, "classifier", nil, map[string]any{})
		assert.Equal(t, "classifier collaborator not configured", resp["error"])
	})

	t.Run("collaborator error is wrapped", func(t *testing.T) {
		c := Func(func(context.Context, map[string]any) (map[string]any, error) {
			return nil, errors.New("timeout")
		})
		resp := Invoke(ctx, "extractor", c, map[string]any{})
		assert.Contains(t, resp["error"], "extractor")
		assert.Contains(t, resp["error"], "timeout")
	})

	t.Run("nil response is an error payload", func(t *testing.T) {
		c := Func(func(context.Context, map[string]any) (map[string]any, error) {
			return nil, nil
		})
		resp := Invoke(ctx, "validator", c, map[string]any{})
		assert.Contains(t, resp["error"], "no response")
	})

	t.Run("success passes through", func(t *testing.T) {
		c := Func(func(_ context.Context, req map[string]any) (map[string]any, error) {
			return map[string]any{"echo": req["ping"]}, nil
		})
		resp := Invoke(ctx, "echo", c, map[string]any{"ping": "pong"})
		assert.Equal(t, "pong", resp["echo"])
	})
}

type fakeCompleter struct {
	lastSystem string
	lastUser   string
	response   map[string]any
	err        error
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, system, user string) (map[string]any, error) {
	f.lastSystem = system
	f.lastUser = user
	return f.response, f.err
}

func TestLLMCollaborator(t *testing.T) {
	fc := &fakeCompleter{response: map[string]any{"email_type": "quote_request"}}
	c := LLM(fc, "classifier", "classify emails")

	resp, err := c.Process(context.Background(), map[string]any{"email_content": "need a quote"})
	require.NoError(t, err)
	assert.Equal(t, "quote_request", resp["email_type"])
	assert.Equal(t, "classify emails", fc.lastSystem)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(fc.lastUser), &sent))
	assert.Equal(t, "need a quote", sent["email_content"])
}

func TestNewLLMRegistryFillsModelSlots(t *testing.T) {
	reg := NewLLMRegistry(&fakeCompleter{response: map[string]any{}})
	assert.NotNil(t, reg.Classifier)
	assert.NotNil(t, reg.Extractor)
	assert.NotNil(t, reg.ForwarderResponder)
	// Deterministic slots are wired by the caller.
	assert.Nil(t, reg.PortLookup)
	assert.Nil(t, reg.ClarificationGen)
}
