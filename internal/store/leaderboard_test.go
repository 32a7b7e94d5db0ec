package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ringg-play/ringgrank/internal/models"
)

func entry(userID, score, ts int64) models.ScoreEntry {
	return models.ScoreEntry{UserID: userID, GameID: 7, Score: score, TimestampMs: ts}
}

func TestLeaderBoard_TopKOrderingWithTiebreaks(t *testing.T) {
	lb := NewLeaderBoard()

	lb.AddOrUpdate(entry(1, 100, 1000))
	lb.AddOrUpdate(entry(2, 100, 999))
	lb.AddOrUpdate(entry(3, 100, 1000))

	top := lb.TopK(3)
	assert.Equal(t, 3, len(top))
	// user 2 wins the tie with the earlier timestamp, user 1 beats user 3 on id
	assert.Equal(t, int64(2), top[0].Key.UserID)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, int64(1), top[1].Key.UserID)
	assert.Equal(t, 2, top[1].Rank)
	assert.Equal(t, int64(3), top[2].Key.UserID)
	assert.Equal(t, 3, top[2].Rank)
}

func TestLeaderBoard_LastWriteWins(t *testing.T) {
	lb := NewLeaderBoard()

	lb.AddOrUpdate(entry(1, 50, 2000))
	lb.AddOrUpdate(entry(1, 10, 3000))

	assert.Equal(t, 1, lb.Size())

	current, exists := lb.UserScore(1)
	assert.True(t, exists)
	assert.Equal(t, int64(10), current.Score)
	assert.Equal(t, int64(3000), current.TimestampMs)

	top := lb.TopK(1)
	assert.Equal(t, int64(10), top[0].Key.Score)
}

func TestLeaderBoard_RemoveSupersededEntryIsInert(t *testing.T) {
	lb := NewLeaderBoard()

	old := entry(1, 500, 1000)
	lb.AddOrUpdate(old)
	replacement := entry(1, 600, 2000)
	lb.AddOrUpdate(replacement)

	// A stale removal targeting the superseded entry must not touch the
	// current one.
	lb.Remove(old)

	current, exists := lb.UserScore(1)
	assert.True(t, exists)
	assert.Equal(t, replacement, current)
	assert.Equal(t, 1, lb.Size())

	// Removing the live entry drops the binding as well
	lb.Remove(replacement)
	_, exists = lb.UserScore(1)
	assert.False(t, exists)
	assert.Equal(t, 0, lb.Size())

	// Removing an absent entry is silent
	lb.Remove(replacement)
	assert.Equal(t, 0, lb.Size())
}

func TestLeaderBoard_UserRank(t *testing.T) {
	lb := NewLeaderBoard()

	lb.AddOrUpdate(entry(1, 100, 1000))
	lb.AddOrUpdate(entry(2, 300, 1000))
	lb.AddOrUpdate(entry(3, 200, 1000))
	lb.AddOrUpdate(entry(4, 50, 1000))

	e, rank, total, found := lb.UserRank(2)
	assert.True(t, found)
	assert.Equal(t, 1, rank)
	assert.Equal(t, 4, total)
	assert.Equal(t, int64(300), e.Score)

	_, rank, _, found = lb.UserRank(4)
	assert.True(t, found)
	assert.Equal(t, 4, rank, "rank of the smallest entry equals size")

	_, _, _, found = lb.UserRank(99)
	assert.False(t, found)
}

func TestLeaderBoard_IndexAndMapStayInSync(t *testing.T) {
	lb := NewLeaderBoard()

	ops := []models.ScoreEntry{
		entry(1, 10, 100), entry(2, 20, 100), entry(1, 5, 200),
		entry(3, 20, 50), entry(2, 25, 300), entry(4, 1, 400),
	}
	for _, e := range ops {
		lb.AddOrUpdate(e)
	}
	lb.Remove(entry(4, 1, 400))
	lb.Remove(entry(1, 10, 100)) // superseded, inert

	entries := lb.Entries()
	assert.Equal(t, lb.Size(), len(entries))

	seen := make(map[int64]models.ScoreEntry)
	for _, e := range entries {
		_, dup := seen[e.UserID]
		assert.False(t, dup, "one entry per user in the sorted index")
		seen[e.UserID] = e

		bound, exists := lb.UserScore(e.UserID)
		assert.True(t, exists)
		assert.Equal(t, e, bound)
	}

	// Sorted order respects the total ordering
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, models.ScoreCompare(entries[i-1], entries[i]), 0)
	}
}

func TestLeaderBoard_TopKBounds(t *testing.T) {
	lb := NewLeaderBoard()
	lb.AddOrUpdate(entry(1, 10, 100))

	assert.Empty(t, lb.TopK(0))
	assert.Empty(t, lb.TopK(-1))
	assert.Equal(t, 1, len(lb.TopK(100)))
}
