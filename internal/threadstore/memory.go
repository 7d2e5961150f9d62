package threadstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ignite/freightdesk/internal/domain"
)

// MemoryStore is an in-process Store for tests and single-node setups.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{threads: map[string][]byte{}}
}

// Load fetches a deep copy of the thread, or (nil, nil) when unknown.
func (s *MemoryStore) Load(_ context.Context, threadID string) (*domain.ThreadData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.threads[threadID]
	if !ok {
		return nil, nil
	}
	var thread domain.ThreadData
	if err := json.Unmarshal(data, &thread); err != nil {
		return nil, err
	}
	return &thread, nil
}

// Save stores an encoded snapshot so later mutations cannot leak in.
func (s *MemoryStore) Save(_ context.Context, thread *domain.ThreadData) error {
	data, err := json.Marshal(thread)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.threads[thread.ThreadID] = data
	s.mu.Unlock()
	return nil
}

// Append loads-or-creates, appends, persists.
func (s *MemoryStore) Append(ctx context.Context, threadID string, entry domain.EmailEntry) (*domain.ThreadData, error) {
	return appendEntry(ctx, s, threadID, entry)
}

// Cumulative returns the stored merged extraction.
func (s *MemoryStore) Cumulative(ctx context.Context, threadID string) (domain.Extraction, error) {
	thread, err := s.Load(ctx, threadID)
	if err != nil || thread == nil {
		return domain.Extraction{}, err
	}
	return thread.Cumulative, nil
}

// UpdateCumulative merges and persists; false on failure.
func (s *MemoryStore) UpdateCumulative(ctx context.Context, threadID string, new domain.Extraction) bool {
	return updateCumulative(ctx, s, threadID, new)
}
