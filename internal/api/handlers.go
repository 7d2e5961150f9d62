package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/freightdesk/internal/pkg/distlock"
	"github.com/ignite/freightdesk/internal/pkg/httputil"
	"github.com/ignite/freightdesk/internal/pkg/logger"
	"github.com/ignite/freightdesk/internal/queue"
	"github.com/ignite/freightdesk/internal/threadstore"
)

const inlineLockTTL = 2 * time.Minute

// Handlers holds the API's dependencies. When a queue is configured,
// inbound emails are buffered for the worker; otherwise they are
// processed inline, under a cross-process advisory lock when lockDB is
// set.
type Handlers struct {
	store     threadstore.Store
	processor queue.Processor
	queue     *queue.Queue // nil means inline processing
	lockDB    *sql.DB      // nil means in-process locking only
}

// NewHandlers builds the handler set.
func NewHandlers(store threadstore.Store, processor queue.Processor, q *queue.Queue, lockDB *sql.DB) *Handlers {
	return &Handlers{store: store, processor: processor, queue: q, lockDB: lockDB}
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// InboundEmail accepts one raw inbound email payload.
func (h *Handlers) InboundEmail(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if !httputil.Decode(w, r, &raw) {
		return
	}
	if content, _ := raw["content"].(string); content == "" {
		httputil.BadRequest(w, "content is required")
		return
	}
	if sender, _ := raw["sender"].(string); sender == "" {
		httputil.BadRequest(w, "sender is required")
		return
	}

	if h.queue != nil {
		if err := h.queue.Enqueue(r.Context(), raw); err != nil {
			httputil.InternalError(w, err)
			return
		}
		depth, _ := h.queue.Len(r.Context())
		httputil.JSON(w, http.StatusAccepted, map[string]any{
			"queued":      true,
			"queue_depth": depth,
		})
		return
	}

	h.processInline(w, r, raw)
}

func (h *Handlers) processInline(w http.ResponseWriter, r *http.Request, raw map[string]any) {
	ctx := r.Context()

	if threadID, _ := raw["thread_id"].(string); threadID != "" && h.lockDB != nil {
		lock := distlock.NewLock(nil, h.lockDB, "thread:"+threadID, inlineLockTTL)
		acquired, err := lock.Acquire(ctx)
		if err != nil {
			httputil.InternalError(w, err)
			return
		}
		if !acquired {
			httputil.Error(w, http.StatusConflict, "thread is being processed, retry shortly")
			return
		}
		defer func() {
			if err := lock.Release(ctx); err != nil {
				logger.Warn("api: lock release failed", "thread_id", threadID, "error", err.Error())
			}
		}()
	}

	turn, err := h.processor.ProcessEmail(ctx, raw)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, turn)
}

// GetThread returns the stored thread record for operator debugging.
func (h *Handlers) GetThread(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	thread, err := h.store.Load(r.Context(), threadID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if thread == nil {
		httputil.NotFound(w, "thread not found")
		return
	}
	httputil.OK(w, thread)
}

// GetCumulative returns the thread's merged extraction.
func (h *Handlers) GetCumulative(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	thread, err := h.store.Load(r.Context(), threadID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if thread == nil {
		httputil.NotFound(w, "thread not found")
		return
	}
	httputil.OK(w, thread.Cumulative)
}

// QueueDepth reports the number of buffered inbound emails.
func (h *Handlers) QueueDepth(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		httputil.OK(w, map[string]any{"queue_enabled": false, "depth": 0})
		return
	}
	depth, err := h.queue.Len(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"queue_enabled": true, "depth": depth})
}
