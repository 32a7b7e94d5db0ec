package store

import (
	"sync"
	"time"

	models "github.com/ringg-play/ringgrank/internal/models"
)

// DefaultWindows is the window configuration applied to every newly created
// game set.
func DefaultWindows() map[string]time.Duration {
	return map[string]time.Duration{"24h": 24 * time.Hour}
}

// GameLeaderboard holds every ranking view for a single game: the all-time
// view plus one view per configured sliding window. It never references the
// expiration machinery; tickets are handed to the emit callback passed into
// AddScore.
type GameLeaderboard struct {
	gameID  int64
	allTime *LeaderBoard

	mu        sync.RWMutex
	windows   map[string]*LeaderBoard
	durations map[string]time.Duration
}

func NewGameLeaderboard(gameID int64, windows map[string]time.Duration) *GameLeaderboard {
	gl := &GameLeaderboard{
		gameID:    gameID,
		allTime:   NewLeaderBoard(),
		windows:   make(map[string]*LeaderBoard),
		durations: make(map[string]time.Duration),
	}
	for key, duration := range windows {
		gl.ConfigureWindow(key, duration)
	}
	return gl
}

// ConfigureWindow creates an empty view for key if absent and (re)binds its
// duration. Idempotent.
func (gl *GameLeaderboard) ConfigureWindow(key string, duration time.Duration) {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if _, exists := gl.windows[key]; !exists {
		gl.windows[key] = NewLeaderBoard()
	}
	gl.durations[key] = duration
}

// View resolves a window key to its leaderboard. The empty key selects the
// all-time view; unconfigured keys return nil.
func (gl *GameLeaderboard) View(windowKey string) *LeaderBoard {
	if windowKey == "" {
		return gl.allTime
	}

	gl.mu.RLock()
	defer gl.mu.RUnlock()

	return gl.windows[windowKey]
}

// WindowDurations returns a copy of the configured window map.
func (gl *GameLeaderboard) WindowDurations() map[string]time.Duration {
	gl.mu.RLock()
	defer gl.mu.RUnlock()

	durations := make(map[string]time.Duration, len(gl.durations))
	for key, duration := range gl.durations {
		durations[key] = duration
	}
	return durations
}

// ExpirationTicket schedules removal of an entry from one windowed view.
type ExpirationTicket struct {
	DueAtMs   int64
	GameID    int64
	WindowKey string
	Entry     models.ScoreEntry
}

// AddScore applies an entry to the all-time view unconditionally, and to each
// windowed view whose window still covers the entry's timestamp at nowMs. A
// ticket is emitted for every windowed insert so the entry is retired when it
// leaves the window. nowMs is sampled once by the caller so the decision is
// coherent across windows.
func (gl *GameLeaderboard) AddScore(entry models.ScoreEntry, nowMs int64, emit func(ExpirationTicket)) {
	gl.allTime.AddOrUpdate(entry)

	gl.mu.RLock()
	defer gl.mu.RUnlock()

	for key, lb := range gl.windows {
		duration, exists := gl.durations[key]
		if !exists {
			continue
		}
		durationMs := duration.Milliseconds()
		if entry.TimestampMs <= nowMs-durationMs {
			continue
		}
		lb.AddOrUpdate(entry)
		if emit != nil {
			emit(ExpirationTicket{
				DueAtMs:   entry.TimestampMs + durationMs,
				GameID:    gl.gameID,
				WindowKey: key,
				Entry:     entry,
			})
		}
	}
}

// GameID returns the id of the game this set belongs to.
func (gl *GameLeaderboard) GameID() int64 {
	return gl.gameID
}
