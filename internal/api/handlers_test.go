package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/freightdesk/internal/domain"
	"github.com/ignite/freightdesk/internal/queue"
	"github.com/ignite/freightdesk/internal/threadstore"
	"github.com/ignite/freightdesk/internal/workflow"
)

type fakeProcessor struct {
	calls int
	err   error
}

func (f *fakeProcessor) ProcessEmail(ctx context.Context, raw map[string]any) (*workflow.TurnResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	threadID, _ := raw["thread_id"].(string)
	return &workflow.TurnResult{
		WorkflowID: "wf_test",
		ThreadID:   threadID,
		Status:     workflow.StatusCompleted,
	}, nil
}

func newTestRouter(t *testing.T, store threadstore.Store, p *fakeProcessor, q *queue.Queue) http.Handler {
	t.Helper()
	return SetupRoutes(NewHandlers(store, p, q, nil), nil)
}

func postJSON(t *testing.T, router http.Handler, path string, payload map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestInboundEmailInline(t *testing.T) {
	p := &fakeProcessor{}
	router := newTestRouter(t, threadstore.NewMemoryStore(), p, nil)

	rec := postJSON(t, router, "/api/emails/inbound", map[string]any{
		"content":   "Need a quote from Shanghai to LA",
		"sender":    "customer@example.com",
		"thread_id": "thread_1",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, p.calls)

	var turn workflow.TurnResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))
	assert.Equal(t, "thread_1", turn.ThreadID)
	assert.Equal(t, workflow.StatusCompleted, turn.Status)
}

func TestInboundEmailValidation(t *testing.T) {
	p := &fakeProcessor{}
	router := newTestRouter(t, threadstore.NewMemoryStore(), p, nil)

	rec := postJSON(t, router, "/api/emails/inbound", map[string]any{
		"sender": "customer@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, router, "/api/emails/inbound", map[string]any{
		"content": "hello",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, p.calls)
}

func TestInboundEmailQueued(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := queue.New(client, "test:inbound")

	p := &fakeProcessor{}
	router := newTestRouter(t, threadstore.NewMemoryStore(), p, q)

	rec := postJSON(t, router, "/api/emails/inbound", map[string]any{
		"content":   "Need a quote",
		"sender":    "customer@example.com",
		"thread_id": "thread_2",
	})

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Zero(t, p.calls, "queued payloads are not processed inline")

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["queued"])
	assert.Equal(t, float64(1), resp["queue_depth"])
}

func TestGetThread(t *testing.T) {
	store := threadstore.NewMemoryStore()
	ctx := context.Background()
	_, err := store.Append(ctx, "thread_3", domain.EmailEntry{
		ID:        "email_1",
		Sender:    "customer@example.com",
		Direction: domain.DirectionInbound,
		Content:   "quote please",
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)

	router := newTestRouter(t, store, &fakeProcessor{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/threads/thread_3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var thread domain.ThreadData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &thread))
	assert.Equal(t, "thread_3", thread.ThreadID)
	assert.Equal(t, 1, thread.TotalEmails)
}

func TestGetThreadNotFound(t *testing.T) {
	router := newTestRouter(t, threadstore.NewMemoryStore(), &fakeProcessor{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/threads/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueueDepthDisabled(t *testing.T) {
	router := newTestRouter(t, threadstore.NewMemoryStore(), &fakeProcessor{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/queue/depth", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["queue_enabled"])
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, threadstore.NewMemoryStore(), &fakeProcessor{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
