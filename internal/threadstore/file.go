package threadstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ignite/freightdesk/internal/domain"
)

// FileStore persists one JSON file per thread, named by thread id.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates the storage directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating thread store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(threadID string) string {
	// Thread ids are caller-supplied; strip anything that could escape
	// the storage directory.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, threadID)
	return filepath.Join(s.dir, safe+".json")
}

// Load fetches a thread, or (nil, nil) when the file does not exist.
func (s *FileStore) Load(_ context.Context, threadID string) (*domain.ThreadData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(threadID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading thread %s: %w", threadID, err)
	}
	var thread domain.ThreadData
	if err := json.Unmarshal(data, &thread); err != nil {
		return nil, fmt.Errorf("decoding thread %s: %w", threadID, err)
	}
	return &thread, nil
}

// Save persists the full thread record atomically (write + rename).
func (s *FileStore) Save(_ context.Context, thread *domain.ThreadData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(thread, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding thread %s: %w", thread.ThreadID, err)
	}
	path := s.path(thread.ThreadID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing thread %s: %w", thread.ThreadID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming thread %s: %w", thread.ThreadID, err)
	}
	return nil
}

// Append loads-or-creates the thread, appends, and persists.
func (s *FileStore) Append(ctx context.Context, threadID string, entry domain.EmailEntry) (*domain.ThreadData, error) {
	return appendEntry(ctx, s, threadID, entry)
}

// Cumulative returns the stored merged extraction.
func (s *FileStore) Cumulative(ctx context.Context, threadID string) (domain.Extraction, error) {
	thread, err := s.Load(ctx, threadID)
	if err != nil || thread == nil {
		return domain.Extraction{}, err
	}
	return thread.Cumulative, nil
}

// UpdateCumulative merges and persists; false on failure.
func (s *FileStore) UpdateCumulative(ctx context.Context, threadID string, new domain.Extraction) bool {
	return updateCumulative(ctx, s, threadID, new)
}
