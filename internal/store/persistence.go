package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ringg-play/ringgrank/internal/logging"
	"github.com/ringg-play/ringgrank/internal/models"
)

const (
	snapshotMagic   = "ringgrank-snapshot"
	snapshotVersion = 1
)

// snapshotHeader is the first line of a snapshot file. The magic and version
// gate loading; LastIncludedMs is the replay cutoff for the WAL.
type snapshotHeader struct {
	Magic          string  `json:"magic"`
	Version        int     `json:"version"`
	CreatedAtMs    int64   `json:"created_at_ms"`
	LastIncludedMs int64   `json:"last_included_ms"`
	Games          []int64 `json:"games"`
}

// snapshotGame is one game's full state: its window configuration and every
// entry of every view, enough to rebuild the indexes on load.
type snapshotGame struct {
	GameID   int64                          `json:"game_id"`
	Windows  map[string]int64               `json:"windows_ms"`
	AllTime  []models.ScoreEntry            `json:"all_time"`
	Windowed map[string][]models.ScoreEntry `json:"windowed"`
}

// Snapshot writes a consistent point-in-time image of every game set to a
// temporary sibling file, atomically renames it over the snapshot path and
// rotates the WAL. Ingest is excluded for the duration of the serialization
// pass. If writing or renaming the temporary file fails, it is removed and the
// prior snapshot and WAL remain intact. If the WAL rotation fails, the new
// snapshot is already in place and the WAL is left un-rotated.
func (m *Manager) Snapshot() error {
	m.snapMu.Lock()
	defer m.snapMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.opts.SnapshotPath), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tempPath := m.opts.SnapshotPath + ".tmp"
	if err := m.writeSnapshotFile(tempPath); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, m.opts.SnapshotPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}

	if err := m.log.Rotate(); err != nil {
		return fmt.Errorf("failed to rotate WAL after snapshot: %w", err)
	}

	logging.Info("Snapshot written to", m.opts.SnapshotPath)
	return nil
}

func (m *Manager) writeSnapshotFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot temp file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)

	m.mu.RLock()
	games := make([]*GameLeaderboard, 0, len(m.games))
	gameIDs := make([]int64, 0, len(m.games))
	for gameID, gl := range m.games {
		games = append(games, gl)
		gameIDs = append(gameIDs, gameID)
	}
	m.mu.RUnlock()

	nowMs := time.Now().UnixMilli()
	header := snapshotHeader{
		Magic:          snapshotMagic,
		Version:        snapshotVersion,
		CreatedAtMs:    nowMs,
		LastIncludedMs: nowMs,
		Games:          gameIDs,
	}
	if err := encoder.Encode(header); err != nil {
		return fmt.Errorf("failed to encode snapshot header: %w", err)
	}

	for _, gl := range games {
		durations := gl.WindowDurations()
		record := snapshotGame{
			GameID:   gl.GameID(),
			Windows:  make(map[string]int64, len(durations)),
			AllTime:  gl.allTime.Entries(),
			Windowed: make(map[string][]models.ScoreEntry, len(durations)),
		}
		for key, duration := range durations {
			record.Windows[key] = duration.Milliseconds()
			if view := gl.View(key); view != nil {
				record.Windowed[key] = view.Entries()
			}
		}
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to encode snapshot for game %d: %w", record.GameID, err)
		}
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync snapshot file: %w", err)
	}
	return nil
}

// loadSnapshot rebuilds every game set from the snapshot file, if present,
// and returns the replay cutoff timestamp. Windowed entries already outside
// their window are dropped; the rest get fresh expiration tickets for their
// remaining lifetime.
func (m *Manager) loadSnapshot() (int64, error) {
	file, err := os.Open(m.opts.SnapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)

	var header snapshotHeader
	if err := decoder.Decode(&header); err != nil {
		return 0, fmt.Errorf("failed to decode snapshot header: %w", err)
	}
	if header.Magic != snapshotMagic {
		return 0, fmt.Errorf("unrecognized snapshot magic %q", header.Magic)
	}
	if header.Version != snapshotVersion {
		return 0, fmt.Errorf("unsupported snapshot version %d", header.Version)
	}

	nowMs := time.Now().UnixMilli()
	loaded := 0
	for decoder.More() {
		var record snapshotGame
		if err := decoder.Decode(&record); err != nil {
			return 0, fmt.Errorf("failed to decode snapshot game record: %w", err)
		}

		gl := NewGameLeaderboard(record.GameID, nil)
		for key, durationMs := range record.Windows {
			gl.ConfigureWindow(key, time.Duration(durationMs)*time.Millisecond)
		}
		for _, entry := range record.AllTime {
			gl.allTime.AddOrUpdate(entry)
		}
		for key, entries := range record.Windowed {
			view := gl.View(key)
			durationMs := record.Windows[key]
			if view == nil {
				continue
			}
			for _, entry := range entries {
				if entry.TimestampMs <= nowMs-durationMs {
					continue
				}
				view.AddOrUpdate(entry)
				m.queue.Push(ExpirationTicket{
					DueAtMs:   entry.TimestampMs + durationMs,
					GameID:    record.GameID,
					WindowKey: key,
					Entry:     entry,
				})
			}
		}

		m.games[record.GameID] = gl
		loaded++
	}

	logging.Info("Loaded", loaded, "games from snapshot", m.opts.SnapshotPath)
	return header.LastIncludedMs, nil
}
