package store

import (
	"github.com/ringg-play/ringgrank/internal/models"
)

// QueryService is the read-path façade. It resolves a (game, window) pair to
// a view, shapes responses and computes percentiles.
type QueryService struct {
	manager *Manager
}

func NewQueryService(manager *Manager) *QueryService {
	return &QueryService{manager: manager}
}

func (q *QueryService) resolveView(gameID int64, windowKey string) (*LeaderBoard, error) {
	gl := q.manager.GetGameLeaderboard(gameID)
	if gl == nil {
		return nil, models.ErrGameNotFound
	}
	view := gl.View(windowKey)
	if view == nil {
		return nil, models.ErrInvalidWindow
	}
	return view, nil
}

// TopLeaders returns the top limit entries of the selected view with 1-based
// ranks.
func (q *QueryService) TopLeaders(gameID int64, limit int, windowKey string) ([]models.LeaderboardEntryResponse, error) {
	view, err := q.resolveView(gameID, windowKey)
	if err != nil {
		return nil, err
	}

	entries := view.TopK(limit)
	leaders := make([]models.LeaderboardEntryResponse, len(entries))
	for i, entry := range entries {
		leaders[i] = models.LeaderboardEntryResponse{
			UserID:    entry.Key.UserID,
			Score:     entry.Key.Score,
			Timestamp: entry.Key.TimestampMs,
			Rank:      entry.Rank,
		}
	}
	return leaders, nil
}

// UserRank returns the user's rank, score, percentile and submission time in
// the selected view.
func (q *QueryService) UserRank(gameID, userID int64, windowKey string) (models.UserRankResponse, error) {
	view, err := q.resolveView(gameID, windowKey)
	if err != nil {
		return models.UserRankResponse{}, err
	}

	entry, rank, total, found := view.UserRank(userID)
	if !found {
		return models.UserRankResponse{}, models.ErrUserNotFound
	}

	return models.UserRankResponse{
		UserID:     userID,
		Rank:       rank,
		Score:      entry.Score,
		Percentile: percentile(rank, total),
		Timestamp:  entry.TimestampMs,
	}, nil
}

// percentile maps rank 1 of an N-player view to 100 and rank N to 100/N.
func percentile(rank, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(total-rank+1) * 100.0 / float64(total)
}
