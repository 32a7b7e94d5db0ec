package wal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/ringg-play/ringgrank/internal/models"
)

// Options configures the write-ahead log.
type Options struct {
	// Path is the active log file.
	Path string
	// ArchivePath is where the active log is moved on rotation.
	ArchivePath string
	// Sync upgrades every append from flush-to-page-cache to flush+fsync.
	// Flush-only survives a process crash; fsync additionally survives an OS
	// or host crash at a throughput cost.
	Sync bool
}

// WAL is an append-only log of score mutations. One record per line:
//
//	timestamp_ms,game_id,user_id,score\n
//
// Appends are serialized so log order equals the order in which callers see
// their writes succeed.
type WAL struct {
	mu     sync.Mutex
	opts   Options
	file   *os.File
	writer *bufio.Writer
}

// Open creates the log directory if needed and opens the active file for
// appending.
func Open(opts Options) (*WAL, error) {
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create WAL directory: %w", err)
	}

	w := &WAL{opts: opts}
	if err := w.openFile(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *WAL) openFile() error {
	file, err := os.OpenFile(w.opts.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open WAL file: %w", err)
	}
	w.file = file
	w.writer = bufio.NewWriter(file)
	return nil
}

// Append serializes one entry and writes it to the active log. The buffer is
// flushed before returning; fsync only when Options.Sync is set.
func (w *WAL) Append(entry models.ScoreEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("WAL is closed")
	}

	if _, err := fmt.Fprintf(w.writer, "%d,%d,%d,%d\n",
		entry.TimestampMs, entry.GameID, entry.UserID, entry.Score); err != nil {
		return fmt.Errorf("failed to write WAL record: %w", err)
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush WAL writer: %w", err)
	}
	if w.opts.Sync {
		if err := w.file.Sync(); err != nil {
			return fmt.Errorf("failed to sync WAL file: %w", err)
		}
	}
	return nil
}

// Replay reads the active log sequentially and invokes apply for every record
// with timestamp_ms >= fromTimestampMs. A malformed line aborts the replay.
func (w *WAL) Replay(fromTimestampMs int64, apply func(models.ScoreEntry) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer != nil {
		if err := w.writer.Flush(); err != nil {
			return fmt.Errorf("failed to flush WAL writer: %w", err)
		}
	}

	file, err := os.Open(w.opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open WAL file for replay: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		entry, err := parseRecord(scanner.Text())
		if err != nil {
			return fmt.Errorf("corrupt WAL at line %d: %w", lineNo, err)
		}
		if entry.TimestampMs < fromTimestampMs {
			continue
		}
		if err := apply(entry); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read WAL file: %w", err)
	}
	return nil
}

func parseRecord(line string) (models.ScoreEntry, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return models.ScoreEntry{}, fmt.Errorf("malformed record %q", line)
	}

	fields := make([]int64, 4)
	for i, part := range parts {
		value, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return models.ScoreEntry{}, fmt.Errorf("malformed record %q: %v", line, err)
		}
		fields[i] = value
	}

	return models.ScoreEntry{
		TimestampMs: fields[0],
		GameID:      fields[1],
		UserID:      fields[2],
		Score:       fields[3],
	}, nil
}

// Rotate atomically renames the active log to the archive path, replacing any
// prior archive, and opens a fresh empty active log. Called by the snapshotter
// after a successful snapshot write.
func (w *WAL) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("WAL is closed")
	}

	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush WAL writer: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync WAL file: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close WAL file: %w", err)
	}

	if err := os.Rename(w.opts.Path, w.opts.ArchivePath); err != nil {
		return fmt.Errorf("failed to archive WAL file: %w", err)
	}

	return w.openFile()
}

// Close flushes and closes the active log.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush WAL writer: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close WAL file: %w", err)
	}
	w.file = nil
	w.writer = nil
	return nil
}
