// Package threadstore persists per-thread conversation history and the
// cumulative extraction. Entries are stored in insertion order and reads
// never reorder. Backends: local JSON files, in-memory, and DynamoDB.
package threadstore

import (
	"context"

	"github.com/ignite/freightdesk/internal/domain"
	"github.com/ignite/freightdesk/internal/extraction"
	"github.com/ignite/freightdesk/internal/pkg/logger"
)

// Store is the persistence contract used by the workflow. Load returns
// (nil, nil) for an unknown thread; callers degrade gracefully on errors.
type Store interface {
	// Load fetches a thread, or (nil, nil) when it does not exist.
	Load(ctx context.Context, threadID string) (*domain.ThreadData, error)
	// Save persists the full thread record.
	Save(ctx context.Context, thread *domain.ThreadData) error
	// Append loads-or-creates the thread, appends the entry, and persists.
	Append(ctx context.Context, threadID string, entry domain.EmailEntry) (*domain.ThreadData, error)
	// Cumulative returns the thread's merged extraction (zero value when
	// the thread is unknown).
	Cumulative(ctx context.Context, threadID string) (domain.Extraction, error)
	// UpdateCumulative merges new into the stored cumulative extraction
	// and persists. Returns false on any failure.
	UpdateCumulative(ctx context.Context, threadID string, new domain.Extraction) bool
}

// appendEntry implements the shared load-or-create + append discipline.
func appendEntry(ctx context.Context, s Store, threadID string, entry domain.EmailEntry) (*domain.ThreadData, error) {
	thread, err := s.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		thread = domain.NewThread(threadID)
	}
	thread.Append(entry)
	if err := s.Save(ctx, thread); err != nil {
		return nil, err
	}
	return thread, nil
}

// updateCumulative implements the shared merge-and-persist discipline.
func updateCumulative(ctx context.Context, s Store, threadID string, new domain.Extraction) bool {
	thread, err := s.Load(ctx, threadID)
	if err != nil {
		logger.Warn("thread store: load failed during cumulative update",
			"thread_id", threadID, "error", err.Error())
		return false
	}
	if thread == nil {
		thread = domain.NewThread(threadID)
	}
	thread.Cumulative = extraction.Merge(new, thread.Cumulative)
	if err := s.Save(ctx, thread); err != nil {
		logger.Warn("thread store: save failed during cumulative update",
			"thread_id", threadID, "error", err.Error())
		return false
	}
	return true
}
