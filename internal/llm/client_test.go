package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)

		json.NewEncoder(w).Encode(map[string]any{
			"id": "cmpl-1",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
		})
	}))
}

func TestClient_CompleteJSON(t *testing.T) {
	srv := completionServer(t, `{"email_type":"quote_request","confidence":0.92}`)
	defer srv.Close()

	c := NewClient("test-key", "gpt-4o", WithBaseURL(srv.URL))
	out, err := c.CompleteJSON(context.Background(), "classify", "hello")
	require.NoError(t, err)
	assert.Equal(t, "quote_request", out["email_type"])
	assert.Equal(t, 0.92, out["confidence"])
}

func TestClient_CompleteJSONStripsCodeFences(t *testing.T) {
	srv := completionServer(t, "```json\n{\"ok\":true}\n```")
	defer srv.Close()

	c := NewClient("test-key", "", WithBaseURL(srv.URL))
	out, err := c.CompleteJSON(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, true, out["ok"])
}

func TestClient_CompleteJSONErrors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		c := NewClient("", "gpt-4o")
		_, err := c.CompleteJSON(context.Background(), "s", "u")
		assert.Error(t, err)
	})

	t.Run("api error payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "model overloaded", "type": "server_error"},
			})
		}))
		defer srv.Close()

		c := NewClient("test-key", "gpt-4o", WithBaseURL(srv.URL))
		_, err := c.CompleteJSON(context.Background(), "s", "u")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model overloaded")
	})

	t.Run("non-JSON reply", func(t *testing.T) {
		srv := completionServer(t, "sure, happy to help!")
		defer srv.Close()

		c := NewClient("test-key", "gpt-4o", WithBaseURL(srv.URL))
		_, err := c.CompleteJSON(context.Background(), "s", "u")
		assert.Error(t, err)
	})
}

func TestDecodeJSONObject(t *testing.T) {
	out, err := decodeJSONObject("  {\"a\": 1}  ")
	require.NoError(t, err)
	assert.Equal(t, float64(1), out["a"])

	_, err = decodeJSONObject("[1,2,3]")
	assert.Error(t, err)
}
