package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringg-play/ringgrank/internal/models"
)

func testOptions(dir string) Options {
	return Options{
		WALPath:        filepath.Join(dir, "wal", "scores"),
		WALArchivePath: filepath.Join(dir, "wal", "scores.archive"),
		SnapshotPath:   filepath.Join(dir, "snapshot", "leaderboard"),
	}
}

func newTestManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	manager, err := NewManager(opts)
	require.NoError(t, err)
	return manager
}

// captureState reads every view of every game through the query façade so two
// managers can be compared after recovery.
func captureState(q *QueryService, games []int64, windows []string) map[int64]map[string][]models.LeaderboardEntryResponse {
	state := make(map[int64]map[string][]models.LeaderboardEntryResponse)
	for _, gameID := range games {
		state[gameID] = make(map[string][]models.LeaderboardEntryResponse)
		for _, window := range windows {
			leaders, err := q.TopLeaders(gameID, 1000, window)
			if err != nil {
				continue
			}
			state[gameID][window] = leaders
		}
	}
	return state
}

func TestManager_RecordAndQuery(t *testing.T) {
	manager := newTestManager(t, testOptions(t.TempDir()))
	defer manager.Shutdown()
	queries := NewQueryService(manager)

	nowMs := time.Now().UnixMilli()
	require.NoError(t, manager.RecordScore(models.ScoreEntry{UserID: 1, GameID: 7, Score: 100, TimestampMs: nowMs}))
	require.NoError(t, manager.RecordScore(models.ScoreEntry{UserID: 2, GameID: 7, Score: 300, TimestampMs: nowMs}))

	leaders, err := queries.TopLeaders(7, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 2, len(leaders))
	assert.Equal(t, int64(2), leaders[0].UserID)
	assert.Equal(t, 1, leaders[0].Rank)

	leaders, err = queries.TopLeaders(7, 10, "24h")
	require.NoError(t, err)
	assert.Equal(t, 2, len(leaders))
}

func TestManager_LastWriteWinsPerUser(t *testing.T) {
	manager := newTestManager(t, testOptions(t.TempDir()))
	defer manager.Shutdown()
	queries := NewQueryService(manager)

	nowMs := time.Now().UnixMilli()
	require.NoError(t, manager.RecordScore(models.ScoreEntry{UserID: 1, GameID: 7, Score: 50, TimestampMs: nowMs - 1000}))
	require.NoError(t, manager.RecordScore(models.ScoreEntry{UserID: 1, GameID: 7, Score: 10, TimestampMs: nowMs}))

	leaders, err := queries.TopLeaders(7, 1, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), leaders[0].UserID)
	assert.Equal(t, int64(10), leaders[0].Score)
	assert.Equal(t, nowMs, leaders[0].Timestamp)

	rank, err := queries.UserRank(7, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 1, rank.Rank)
	assert.Equal(t, int64(10), rank.Score)
}

func TestManager_GameCreationIsRaceFree(t *testing.T) {
	manager := newTestManager(t, testOptions(t.TempDir()))
	defer manager.Shutdown()

	nowMs := time.Now().UnixMilli()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(userID int64) {
			defer func() { done <- struct{}{} }()
			for j := int64(0); j < 50; j++ {
				manager.RecordScore(models.ScoreEntry{UserID: userID, GameID: 42, Score: j, TimestampMs: nowMs})
			}
		}(int64(i + 1))
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	gl := manager.GetGameLeaderboard(42)
	require.NotNil(t, gl)
	assert.Equal(t, 8, gl.View("").Size())
}

func TestManager_WALFailureLeavesMemoryUntouched(t *testing.T) {
	manager := newTestManager(t, testOptions(t.TempDir()))
	defer manager.Shutdown()

	nowMs := time.Now().UnixMilli()
	require.NoError(t, manager.RecordScore(models.ScoreEntry{UserID: 1, GameID: 7, Score: 100, TimestampMs: nowMs}))

	require.NoError(t, manager.log.Close())

	err := manager.RecordScore(models.ScoreEntry{UserID: 2, GameID: 7, Score: 200, TimestampMs: nowMs})
	assert.Error(t, err)

	gl := manager.GetGameLeaderboard(7)
	assert.Equal(t, 1, gl.View("").Size())
	_, exists := gl.View("").UserScore(2)
	assert.False(t, exists)
}

func TestManager_CrashRecoveryFromWALOnly(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)
	opts.WALSync = true

	manager := newTestManager(t, opts)
	queries := NewQueryService(manager)

	games := []int64{1, 2, 3}
	nowMs := time.Now().UnixMilli()
	for _, gameID := range games {
		for user := int64(1); user <= 30; user++ {
			entry := models.ScoreEntry{
				UserID:      user,
				GameID:      gameID,
				Score:       user * 10 % 170,
				TimestampMs: nowMs - user*1000,
			}
			require.NoError(t, manager.RecordScore(entry))
		}
	}

	windows := []string{"", "24h"}
	before := captureState(queries, games, windows)

	// Simulated crash: no shutdown, no snapshot. Every append was synced, so
	// a fresh manager must rebuild the identical state from the WAL alone.
	recovered := newTestManager(t, opts)
	defer recovered.Shutdown()

	after := captureState(NewQueryService(recovered), games, windows)
	assert.Equal(t, before, after)
}

func TestManager_SnapshotPlusWALReplay(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)

	manager := newTestManager(t, opts)
	queries := NewQueryService(manager)

	nowMs := time.Now().UnixMilli()
	for user := int64(1); user <= 50; user++ {
		require.NoError(t, manager.RecordScore(models.ScoreEntry{
			UserID:      user,
			GameID:      9,
			Score:       user * 7 % 200,
			TimestampMs: nowMs - user,
		}))
	}

	require.NoError(t, manager.Snapshot())

	for user := int64(51); user <= 70; user++ {
		require.NoError(t, manager.RecordScore(models.ScoreEntry{
			UserID:      user,
			GameID:      9,
			Score:       user * 3 % 120,
			TimestampMs: time.Now().UnixMilli(),
		}))
	}

	windows := []string{"", "24h"}
	before := captureState(queries, []int64{9}, windows)

	// The active WAL holds only the post-snapshot records
	data, err := os.ReadFile(opts.WALPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, 20, len(lines))

	// The pre-snapshot records moved to the archive
	archived, err := os.ReadFile(opts.WALArchivePath)
	require.NoError(t, err)
	assert.Equal(t, 50, len(strings.Split(strings.TrimSpace(string(archived)), "\n")))

	recovered := newTestManager(t, opts)
	defer recovered.Shutdown()

	after := captureState(NewQueryService(recovered), []int64{9}, windows)
	assert.Equal(t, before, after)
}

func TestManager_ShutdownWritesFinalSnapshot(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)

	manager := newTestManager(t, opts)
	nowMs := time.Now().UnixMilli()
	require.NoError(t, manager.RecordScore(models.ScoreEntry{UserID: 1, GameID: 7, Score: 100, TimestampMs: nowMs}))

	require.NoError(t, manager.Shutdown())

	_, err := os.Stat(opts.SnapshotPath)
	assert.NoError(t, err)

	// Shutdown is idempotent
	assert.NoError(t, manager.Shutdown())

	recovered := newTestManager(t, opts)
	defer recovered.Shutdown()

	gl := recovered.GetGameLeaderboard(7)
	require.NotNil(t, gl)
	assert.Equal(t, 1, gl.View("").Size())
}

func TestManager_ReplayRecomputesWindowEligibility(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)
	opts.Windows = map[string]time.Duration{"24h": 150 * time.Millisecond}

	manager := newTestManager(t, opts)

	nowMs := time.Now().UnixMilli()
	require.NoError(t, manager.RecordScore(models.ScoreEntry{UserID: 1, GameID: 7, Score: 100, TimestampMs: nowMs}))
	assert.Equal(t, 1, manager.GetGameLeaderboard(7).View("24h").Size())

	// By the time the WAL is replayed the entry has left the window, so it
	// must come back in the all-time view only.
	time.Sleep(250 * time.Millisecond)

	recovered := newTestManager(t, opts)
	defer recovered.Shutdown()

	gl := recovered.GetGameLeaderboard(7)
	require.NotNil(t, gl)
	assert.Equal(t, 1, gl.View("").Size())
	assert.Equal(t, 0, gl.View("24h").Size())
	assert.Equal(t, 0, recovered.QueueLen())
}
