package store

import (
	"sync"

	cache "github.com/ringg-play/ringgrank/internal/cache"
	models "github.com/ringg-play/ringgrank/internal/models"
)

// LeaderBoard is one ranking view, either all-time or windowed. It keeps a
// rank-aware skip list of entries plus a user->entry map, guarded together so
// readers never observe the map and the index disagreeing.
type LeaderBoard struct {
	mu         sync.RWMutex
	userScores map[int64]models.ScoreEntry
	scoresList *cache.SkipList[models.ScoreEntry, int64]
}

func NewLeaderBoard() *LeaderBoard {
	return &LeaderBoard{
		userScores: make(map[int64]models.ScoreEntry),
		scoresList: cache.NewSkipList[models.ScoreEntry, int64](models.ScoreCompare),
	}
}

// AddOrUpdate installs the entry as the user's current score. A prior entry
// for the same user is removed first; the last submission wins regardless of
// score.
func (lb *LeaderBoard) AddOrUpdate(entry models.ScoreEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if existing, exists := lb.userScores[entry.UserID]; exists {
		lb.scoresList.Delete(existing)
	}
	lb.scoresList.Insert(entry, entry.UserID)
	lb.userScores[entry.UserID] = entry
}

// Remove deletes the entry from the sorted index. The user binding is dropped
// only when it still points at this exact entry, so removing a superseded
// entry is harmless. Missing entries are ignored.
func (lb *LeaderBoard) Remove(entry models.ScoreEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.scoresList.Delete(entry)
	if current, exists := lb.userScores[entry.UserID]; exists && current == entry {
		delete(lb.userScores, entry.UserID)
	}
}

// TopK returns the first min(k, size) entries in sort order with 1-based
// ranks. k <= 0 yields nil.
func (lb *LeaderBoard) TopK(k int) []cache.Entry[models.ScoreEntry, int64] {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	return lb.scoresList.GetTopK(k)
}

// UserScore returns the user's current entry, if any.
func (lb *LeaderBoard) UserScore(userID int64) (models.ScoreEntry, bool) {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	entry, exists := lb.userScores[userID]
	return entry, exists
}

// UserRank returns the user's entry, 1-based rank and the view size.
func (lb *LeaderBoard) UserRank(userID int64) (models.ScoreEntry, int, int, bool) {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	entry, exists := lb.userScores[userID]
	if !exists {
		return models.ScoreEntry{}, 0, lb.scoresList.GetLength(), false
	}
	rank, found := lb.scoresList.GetRank(entry)
	if !found {
		return models.ScoreEntry{}, 0, lb.scoresList.GetLength(), false
	}
	return entry, rank, lb.scoresList.GetLength(), true
}

// Size returns the number of entries in the view.
func (lb *LeaderBoard) Size() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	return lb.scoresList.GetLength()
}

// Entries returns all entries in sort order. Used by the snapshotter.
func (lb *LeaderBoard) Entries() []models.ScoreEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	all := lb.scoresList.GetAll()
	entries := make([]models.ScoreEntry, len(all))
	for i, e := range all {
		entries[i] = e.Key
	}
	return entries
}
