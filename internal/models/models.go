package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// ScoreEntry is one accepted score submission. Entries are immutable values;
// two entries with identical fields are the same logical entry.
type ScoreEntry struct {
	UserID      int64 `json:"userId"`
	GameID      int64 `json:"gameId"`
	Score       int64 `json:"score"`
	TimestampMs int64 `json:"timestamp"`
}

// ScoreCompare orders entries by score descending, then timestamp ascending
// (earlier submission wins ties), then user id ascending so the ordering is a
// strict total order.
func ScoreCompare(a, b ScoreEntry) int {
	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	if a.TimestampMs != b.TimestampMs {
		if a.TimestampMs < b.TimestampMs {
			return -1
		}
		return 1
	}
	if a.UserID != b.UserID {
		if a.UserID < b.UserID {
			return -1
		}
		return 1
	}
	return 0
}

// ScoreSubmissionRequest is the POST /api/v1/scores body. Pointer fields
// distinguish absent fields from zero values.
type ScoreSubmissionRequest struct {
	UserID    *int64 `json:"userId"`
	GameID    *int64 `json:"gameId"`
	Score     *int64 `json:"score"`
	Timestamp *int64 `json:"timestamp"`
}

// Validate applies the submission rules: all fields present, ids positive,
// score non-negative, timestamp not in the future.
func (r ScoreSubmissionRequest) Validate(nowMs int64) error {
	if r.UserID == nil || *r.UserID < 1 {
		return fmt.Errorf("%w: userId must be a positive number", ErrInvalidScore)
	}
	if r.GameID == nil || *r.GameID < 1 {
		return fmt.Errorf("%w: gameId must be a positive number", ErrInvalidScore)
	}
	if r.Score == nil || *r.Score < 0 {
		return fmt.Errorf("%w: score cannot be negative", ErrInvalidScore)
	}
	if r.Timestamp == nil {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidScore)
	}
	if *r.Timestamp > nowMs {
		return fmt.Errorf("%w: timestamp cannot be in the future", ErrInvalidScore)
	}
	return nil
}

// Entry converts a validated request into a ScoreEntry.
func (r ScoreSubmissionRequest) Entry() ScoreEntry {
	return ScoreEntry{
		UserID:      *r.UserID,
		GameID:      *r.GameID,
		Score:       *r.Score,
		TimestampMs: *r.Timestamp,
	}
}

type LeaderboardEntryResponse struct {
	UserID    int64 `json:"userId"`
	Score     int64 `json:"score"`
	Timestamp int64 `json:"timestamp"`
	Rank      int   `json:"rank"`
}

type UserRankResponse struct {
	UserID     int64   `json:"userId"`
	Rank       int     `json:"rank"`
	Score      int64   `json:"score"`
	Percentile float64 `json:"percentile"`
	Timestamp  int64   `json:"timestamp"`
}

// windowPattern accepts window keys like "24h", "7d" or "30m"; the empty
// string selects the all-time view.
var windowPattern = regexp.MustCompile(`^([1-9][0-9]*[hmMdsS])?$`)

// ValidWindowKey reports whether the key is syntactically acceptable.
func ValidWindowKey(key string) bool {
	return windowPattern.MatchString(key)
}

// ParseWindowDuration converts a non-empty window key into its duration.
func ParseWindowDuration(key string) (time.Duration, error) {
	if key == "" || !windowPattern.MatchString(key) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWindow, key)
	}
	value, err := strconv.Atoi(key[:len(key)-1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWindow, key)
	}
	switch key[len(key)-1] {
	case 'h':
		return time.Duration(value) * time.Hour, nil
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'm', 'M':
		return time.Duration(value) * time.Minute, nil
	case 's', 'S':
		return time.Duration(value) * time.Second, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWindow, key)
}
