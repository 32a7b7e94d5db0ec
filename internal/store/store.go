package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/ringg-play/ringgrank/internal/logging"
	"github.com/ringg-play/ringgrank/internal/models"
	"github.com/ringg-play/ringgrank/internal/wal"
)

const workerStopTimeout = 5 * time.Second

// Options configures a Manager.
type Options struct {
	WALPath          string
	WALArchivePath   string
	WALSync          bool
	SnapshotPath     string
	SnapshotInterval time.Duration
	// Windows applied to every newly created game set. Defaults to the 24h
	// window when nil.
	Windows map[string]time.Duration
}

// Manager owns every game's leaderboard set, the expiration queue and worker,
// the WAL and the snapshotter. It is the single entry point for ingest,
// queries, startup recovery and shutdown.
type Manager struct {
	mu    sync.RWMutex
	games map[int64]*GameLeaderboard

	// snapMu is the ingest barrier: RecordScore holds the read side so the
	// snapshotter can take the write side and serialize a consistent image.
	snapMu sync.RWMutex

	opts    Options
	windows map[string]time.Duration
	log     *wal.WAL
	queue   *ExpirationQueue
	worker  *ExpirationWorker

	stop      chan struct{}
	timerDone chan struct{}
	closeOnce sync.Once
}

// NewManager recovers state from the snapshot and WAL, then starts the
// expiration worker and the snapshot timer. A corrupt snapshot or WAL aborts
// startup.
func NewManager(opts Options) (*Manager, error) {
	windows := opts.Windows
	if windows == nil {
		windows = DefaultWindows()
	}

	m := &Manager{
		games:     make(map[int64]*GameLeaderboard),
		opts:      opts,
		windows:   windows,
		queue:     NewExpirationQueue(),
		stop:      make(chan struct{}),
		timerDone: make(chan struct{}),
	}
	m.worker = NewExpirationWorker(m.queue, m.view)

	lastTimestampMs, err := m.loadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	m.log, err = wal.Open(wal.Options{
		Path:        opts.WALPath,
		ArchivePath: opts.WALArchivePath,
		Sync:        opts.WALSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open WAL: %w", err)
	}

	if err := m.log.Replay(lastTimestampMs, func(entry models.ScoreEntry) error {
		m.apply(entry)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to replay WAL: %w", err)
	}

	m.worker.Start()
	go m.snapshotTimer()

	return m, nil
}

// RecordScore appends the entry to the WAL and applies it to the game's
// views. A WAL failure leaves memory untouched. The entry is visible to
// readers before the call returns.
func (m *Manager) RecordScore(entry models.ScoreEntry) error {
	m.snapMu.RLock()
	defer m.snapMu.RUnlock()

	if err := m.log.Append(entry); err != nil {
		return fmt.Errorf("failed to append score to WAL: %w", err)
	}
	m.apply(entry)
	return nil
}

// apply updates the in-memory views without touching the WAL. Window
// eligibility is decided against the wall clock at apply time, on live ingest
// and replay alike.
func (m *Manager) apply(entry models.ScoreEntry) {
	gl := m.getOrCreate(entry.GameID)
	gl.AddScore(entry, time.Now().UnixMilli(), m.queue.Push)
}

func (m *Manager) getOrCreate(gameID int64) *GameLeaderboard {
	m.mu.RLock()
	gl, exists := m.games[gameID]
	m.mu.RUnlock()
	if exists {
		return gl
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if gl, exists = m.games[gameID]; exists {
		return gl
	}
	gl = NewGameLeaderboard(gameID, m.windows)
	m.games[gameID] = gl
	return gl
}

// GetGameLeaderboard returns the set for gameID, or nil when no score has
// ever been recorded for it.
func (m *Manager) GetGameLeaderboard(gameID int64) *GameLeaderboard {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.games[gameID]
}

// view resolves a ticket target for the expiration worker.
func (m *Manager) view(gameID int64, windowKey string) *LeaderBoard {
	gl := m.GetGameLeaderboard(gameID)
	if gl == nil {
		return nil
	}
	return gl.View(windowKey)
}

// QueueLen reports the number of pending expiration tickets.
func (m *Manager) QueueLen() int {
	return m.queue.Len()
}

func (m *Manager) snapshotTimer() {
	defer close(m.timerDone)

	if m.opts.SnapshotInterval <= 0 {
		<-m.stop
		return
	}

	ticker := time.NewTicker(m.opts.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.Snapshot(); err != nil {
				logging.Error("Periodic snapshot failed", "error", err)
			}
		case <-m.stop:
			return
		}
	}
}

// Shutdown stops the expiration worker, waits for it within a bounded
// timeout, writes a final snapshot and closes the WAL.
func (m *Manager) Shutdown() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.stop)
		<-m.timerDone

		m.worker.Stop(workerStopTimeout)

		if snapErr := m.Snapshot(); snapErr != nil {
			logging.Error("Final snapshot failed", "error", snapErr)
			err = snapErr
		}
		if closeErr := m.log.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	})
	return err
}
