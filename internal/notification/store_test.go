package notification

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("expired records are pruned", func(t *testing.T) {
		t.Parallel()
		records := []Notification{
			{ID: 1, CreatedAt: NewEventTime(now.Add(-time.Hour))},
			{ID: 2, CreatedAt: NewEventTime(now.Add(-4 * 24 * time.Hour))},
		}

		got := pruneExpired(records, now, DefaultRetention)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})

	t.Run("records without a parseable time are pruned", func(t *testing.T) {
		t.Parallel()
		records := []Notification{
			{ID: 1, CreatedAt: NewEventTime(now)},
			{ID: 2, CreatedAt: EventTimeFromRaw("garbage")},
			{ID: 3},
		}

		got := pruneExpired(records, now, DefaultRetention)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})

	t.Run("record on the retention boundary survives", func(t *testing.T) {
		t.Parallel()
		records := []Notification{
			{ID: 1, CreatedAt: NewEventTime(now.Add(-DefaultRetention))},
		}

		got := pruneExpired(records, now, DefaultRetention)
		assert.Len(t, got, 1)
	})
}

func TestDedupeAndSort(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("duplicate ids keep the last occurrence", func(t *testing.T) {
		t.Parallel()
		records := []Notification{
			{ID: 1, Message: "first", CreatedAt: NewEventTime(now.Add(-time.Minute))},
			{ID: 1, Message: "second", CreatedAt: NewEventTime(now.Add(-time.Minute))},
		}

		got := dedupeAndSort(records)
		require.Len(t, got, 1)
		assert.Equal(t, "second", got[0].Message)
	})

	t.Run("sorted newest first", func(t *testing.T) {
		t.Parallel()
		records := []Notification{
			{ID: 1, CreatedAt: NewEventTime(now.Add(-3 * time.Hour))},
			{ID: 2, CreatedAt: NewEventTime(now.Add(-time.Hour))},
			{ID: 3, CreatedAt: NewEventTime(now.Add(-2 * time.Hour))},
		}

		got := dedupeAndSort(records)
		require.Len(t, got, 3)
		assert.Equal(t, int64(2), got[0].ID)
		assert.Equal(t, int64(3), got[1].ID)
		assert.Equal(t, int64(1), got[2].ID)
	})

	t.Run("unparseable times are kept and sort last", func(t *testing.T) {
		t.Parallel()
		records := []Notification{
			{ID: 1, CreatedAt: EventTimeFromRaw("not-a-date")},
			{ID: 2, CreatedAt: NewEventTime(now)},
		}

		got := dedupeAndSort(records)
		require.Len(t, got, 2)
		assert.Equal(t, int64(2), got[0].ID)
		assert.Equal(t, int64(1), got[1].ID)
	})
}

func TestCacheKey(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "mm_notifications_v1_user42", CacheKey("user42"))
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	records := []Notification{
		{ID: 1, Message: "hello", CreatedAt: NewEventTime(time.Now())},
	}

	require.NoError(t, store.Save("user1", records))

	got, err := store.Load("user1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Message)

	// Stored copies are isolated from caller mutations.
	records[0].Message = "mutated"
	got, err = store.Load("user1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got[0].Message)
}

func TestMemoryStore_MissingIdentity(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	got, err := store.Load("nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	no := int64(77)
	records := []Notification{
		{
			ID:          10,
			Kind:        KindAnswerPosted,
			Message:     "답변이 등록되었습니다",
			CreatedAt:   EventTimeFromRaw("2026-03-15T12:00:00Z"),
			ComplaintNo: &no,
		},
		{
			ID:        11,
			Kind:      KindStatusChange,
			NewStatus: "COMPLETED",
			Read:      true,
			CreatedAt: EventTimeFromRaw("1725000000000"),
		},
	}

	require.NoError(t, store.Save("user1", records))

	got, err := store.Load("user1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(10), got[0].ID)
	require.NotNil(t, got[0].ComplaintNo)
	assert.Equal(t, int64(77), *got[0].ComplaintNo)
	assert.Equal(t, "1725000000000", got[1].CreatedAt.Raw())
	assert.True(t, got[1].Read)
}

func TestSQLiteStore_IdentitiesAreIsolated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	require.NoError(t, store.Save("alice", []Notification{{ID: 1, CreatedAt: NewEventTime(time.Now())}}))
	require.NoError(t, store.Save("bob", []Notification{{ID: 2, CreatedAt: NewEventTime(time.Now())}}))

	got, err := store.Load("alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestSQLiteStore_SaveOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	require.NoError(t, store.Save("user1", []Notification{{ID: 1}, {ID: 2}}))
	require.NoError(t, store.Save("user1", []Notification{{ID: 3}}))

	got, err := store.Load("user1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)
}

func TestSQLiteStore_MissingIdentity(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	got, err := store.Load("nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}
