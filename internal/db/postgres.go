package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/ringg-play/ringgrank/config"
	"github.com/ringg-play/ringgrank/internal/models"
)

//go:embed sql/init.sql
var initSQL string

// PostgresRepository is the analytics archive: every accepted submission is
// mirrored here for offline analysis. Recovery never reads it; durability of
// the live engine comes from the WAL and snapshots.
type PostgresRepository struct {
	db *sql.DB
}

func CreatePool(cfg *config.AppConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	if _, err := db.Exec(initSQL); err != nil {
		return nil, err
	}
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) SaveScore(entry models.ScoreEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO score_submissions (game_id, user_id, score, submitted_at_ms)
VALUES ($1, $2, $3, $4)
`, entry.GameID, entry.UserID, entry.Score, entry.TimestampMs)

	return err
}

func (r *PostgresRepository) SaveScoreBatch(entries []models.ScoreEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO score_submissions (game_id, user_id, score, submitted_at_ms)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		_, err = stmt.ExecContext(ctx, entry.GameID, entry.UserID, entry.Score, entry.TimestampMs)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetAllGames() ([]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT game_id
FROM score_submissions
ORDER BY game_id
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []int64
	for rows.Next() {
		var game int64
		if err := rows.Scan(&game); err != nil {
			return nil, err
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return games, nil
}

func (r *PostgresRepository) GetAllScoresForGame(gameID int64) ([]models.ScoreEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
SELECT game_id, user_id, score, submitted_at_ms
FROM score_submissions
WHERE game_id = $1
ORDER BY submitted_at_ms DESC
`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ScoreEntry
	for rows.Next() {
		var entry models.ScoreEntry
		if err := rows.Scan(&entry.GameID, &entry.UserID, &entry.Score, &entry.TimestampMs); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// GetTopLeaders ranks each user's latest submission directly in SQL and
// returns the rows ranked within limit, for offline cross-checking of the
// in-memory engine.
func (r *PostgresRepository) GetTopLeaders(gameID int64, limit int, sinceMs int64) ([]models.LeaderboardEntryResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
SELECT user_id, score, submitted_at_ms, rank
FROM (
    SELECT
        user_id,
        score,
        submitted_at_ms,
        RANK() OVER (ORDER BY score DESC, submitted_at_ms ASC) as rank
    FROM (
        SELECT DISTINCT ON (user_id) user_id, score, submitted_at_ms
        FROM score_submissions
        WHERE game_id = $1
`

	args := []any{gameID}
	argIndex := 2

	if sinceMs > 0 {
		query += fmt.Sprintf(" AND submitted_at_ms >= $%d ", argIndex)
		args = append(args, sinceMs)
		argIndex++
	}

	query += `
        ORDER BY user_id, submitted_at_ms DESC
    ) AS latest_scores
) ranked_scores
WHERE rank <= $` + fmt.Sprintf("%d", argIndex)

	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntryResponse
	for rows.Next() {
		var entry models.LeaderboardEntryResponse
		if err := rows.Scan(&entry.UserID, &entry.Score, &entry.Timestamp, &entry.Rank); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
