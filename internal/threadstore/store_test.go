package threadstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ignite/freightdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return map[string]Store{
		"file":   fs,
		"memory": NewMemoryStore(),
	}
}

func TestStore_LoadUnknownThread(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			thread, err := s.Load(context.Background(), "thread_missing")
			require.NoError(t, err)
			assert.Nil(t, thread)
		})
	}
}

func TestStore_AppendCreatesAndPreservesOrder(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Append(ctx, "thread_1", domain.EmailEntry{
				ID: "e1", Direction: domain.DirectionInbound, Timestamp: time.Now().UTC(),
			})
			require.NoError(t, err)
			thread, err := s.Append(ctx, "thread_1", domain.EmailEntry{
				ID: "bot_e1", Direction: domain.DirectionOutbound, Timestamp: time.Now().UTC(),
			})
			require.NoError(t, err)

			assert.Equal(t, 2, thread.TotalEmails)
			assert.Equal(t, "e1", thread.Emails[0].ID)
			assert.Equal(t, "bot_e1", thread.Emails[1].ID)

			loaded, err := s.Load(ctx, "thread_1")
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, thread.Emails, loaded.Emails)
		})
	}
}

func TestStore_UpdateCumulativeAppliesMerge(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ok := s.UpdateCumulative(ctx, "thread_1", domain.Extraction{
				ShipmentDetails: domain.ShipmentDetails{Origin: "Shanghai", Commodity: "Electronics"},
			})
			require.True(t, ok)

			// Second update: empty origin must not erase the first.
			ok = s.UpdateCumulative(ctx, "thread_1", domain.Extraction{
				ShipmentDetails: domain.ShipmentDetails{Destination: "Los Angeles"},
			})
			require.True(t, ok)

			cum, err := s.Cumulative(ctx, "thread_1")
			require.NoError(t, err)
			assert.Equal(t, "Shanghai", cum.ShipmentDetails.Origin)
			assert.Equal(t, "Los Angeles", cum.ShipmentDetails.Destination)
			assert.Equal(t, "Electronics", cum.ShipmentDetails.Commodity)
		})
	}
}

func TestStore_CumulativeUnknownThreadIsZero(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			cum, err := s.Cumulative(context.Background(), "nope")
			require.NoError(t, err)
			assert.True(t, cum.IsEmpty())
		})
	}
}

func TestFileStore_OneFilePerThread(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = fs.Append(ctx, "thread_20240315", domain.EmailEntry{ID: "e1"})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "thread_20240315.json"))
	assert.NoError(t, statErr)
}

func TestFileStore_SanitizesThreadID(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = fs.Append(ctx, "../evil/thread", domain.EmailEntry{ID: "e1"})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "/")
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Append(ctx, "thread_1", domain.EmailEntry{ID: "e1", Subject: "orig"})
	require.NoError(t, err)

	first, err := s.Load(ctx, "thread_1")
	require.NoError(t, err)
	first.Emails[0].Subject = "mutated"

	second, err := s.Load(ctx, "thread_1")
	require.NoError(t, err)
	assert.Equal(t, "orig", second.Emails[0].Subject)
}
