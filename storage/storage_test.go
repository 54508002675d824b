package storage

import (
	"path/filepath"
	"sync"
	"testing"

	"telegram-queue-bot/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)

	return s
}

func TestAddIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	key := queue.Key{ChatID: 1, MessageID: 100}
	member := queue.Member{UserID: 42, FirstName: "Alice", Username: "asmith"}

	added, err := s.Add(key, member)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Add(key, member)
	require.NoError(t, err)
	assert.False(t, added)

	members, err := s.List(key)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, member, members[0])
}

func TestRemoveAbsentMember(t *testing.T) {
	s := newTestStorage(t)
	key := queue.Key{ChatID: 1, MessageID: 100}

	_, err := s.Add(key, queue.Member{UserID: 1, FirstName: "Alice"})
	require.NoError(t, err)

	removed, err := s.Remove(key, 999)
	require.NoError(t, err)
	assert.False(t, removed)

	members, err := s.List(key)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestRemoveExistingMember(t *testing.T) {
	s := newTestStorage(t)
	key := queue.Key{ChatID: 1, MessageID: 100}

	_, err := s.Add(key, queue.Member{UserID: 1, FirstName: "Alice"})
	require.NoError(t, err)

	removed, err := s.Remove(key, 1)
	require.NoError(t, err)
	assert.True(t, removed)

	members, err := s.List(key)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestListPreservesJoinOrder(t *testing.T) {
	s := newTestStorage(t)
	key := queue.Key{ChatID: 1, MessageID: 100}

	// Join order deliberately unrelated to IDs or names.
	for _, m := range []queue.Member{
		{UserID: 30, FirstName: "Zed"},
		{UserID: 10, FirstName: "Alice"},
		{UserID: 20, FirstName: "Bob"},
	} {
		added, err := s.Add(key, m)
		require.NoError(t, err)
		require.True(t, added)
	}

	members, err := s.List(key)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, int64(30), members[0].UserID)
	assert.Equal(t, int64(10), members[1].UserID)
	assert.Equal(t, int64(20), members[2].UserID)
}

func TestListSeparatesQueues(t *testing.T) {
	s := newTestStorage(t)
	keyA := queue.Key{ChatID: 1, MessageID: 100}
	keyB := queue.Key{ChatID: 1, MessageID: 200}

	_, err := s.Add(keyA, queue.Member{UserID: 1, FirstName: "Alice"})
	require.NoError(t, err)

	members, err := s.List(keyB)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestClear(t *testing.T) {
	s := newTestStorage(t)
	key := queue.Key{ChatID: 1, MessageID: 100}
	other := queue.Key{ChatID: 1, MessageID: 200}

	_, err := s.Add(key, queue.Member{UserID: 1})
	require.NoError(t, err)
	_, err = s.Add(key, queue.Member{UserID: 2})
	require.NoError(t, err)
	_, err = s.Add(other, queue.Member{UserID: 3})
	require.NoError(t, err)

	require.NoError(t, s.Clear(key))

	members, err := s.List(key)
	require.NoError(t, err)
	assert.Empty(t, members)

	members, err = s.List(other)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	// Clearing an already empty queue still succeeds.
	assert.NoError(t, s.Clear(key))
}

func TestConcurrentAddsDifferentUsers(t *testing.T) {
	s := newTestStorage(t)
	key := queue.Key{ChatID: 1, MessageID: 100}

	const users = 8

	var wg sync.WaitGroup
	results := make([]bool, users)
	errs := make([]error, users)

	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Add(key, queue.Member{UserID: int64(i + 1)})
		}(i)
	}
	wg.Wait()

	for i := 0; i < users; i++ {
		require.NoError(t, errs[i])
		assert.True(t, results[i])
	}

	members, err := s.List(key)
	require.NoError(t, err)
	assert.Len(t, members, users)
}

func TestAddRemoveSurplus(t *testing.T) {
	s := newTestStorage(t)
	key := queue.Key{ChatID: 1, MessageID: 100}

	// Interleaved adds and removes; only users with a surplus of adds
	// should remain, each exactly once.
	s.Add(key, queue.Member{UserID: 1})
	s.Add(key, queue.Member{UserID: 2})
	s.Remove(key, 1)
	s.Add(key, queue.Member{UserID: 1})
	s.Add(key, queue.Member{UserID: 1})
	s.Remove(key, 2)
	s.Add(key, queue.Member{UserID: 3})

	members, err := s.List(key)
	require.NoError(t, err)

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	assert.Equal(t, []int64{1, 3}, ids)
}
