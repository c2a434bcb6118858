package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/lib/pq"

	"github.com/Nihilantropy/ft-transcendence-sub006/models"
)

// ErrNoStats is returned when a user has no recorded games.
var ErrNoStats = errors.New("no stats recorded for user")

// GameRepository persists finished games and serves aggregate stats.
type GameRepository interface {
	RecordCompletedGame(ctx context.Context, record models.CompletedGame) error
	GetUserStats(ctx context.Context, userID string) (*models.UserStats, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) RecordCompletedGame(ctx context.Context, record models.CompletedGame) error {
	query := `INSERT INTO completed_games (game_id, mode, participants, left_score, right_score, winner_id, duration_ms, finished_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              ON CONFLICT (game_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		record.GameID,
		record.Mode,
		pq.Array(record.Participants),
		record.LeftScore,
		record.RightScore,
		record.WinnerID,
		record.DurationMs,
		record.FinishedAt,
	)
	return err
}

func (r *postgresGameRepository) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	query := `SELECT COUNT(*),
                     COUNT(*) FILTER (WHERE winner_id = $1)
              FROM completed_games
              WHERE $1 = ANY(participants)`
	row := r.db.QueryRowContext(ctx, query, userID)

	var played, won int
	if err := row.Scan(&played, &won); err != nil {
		return nil, err
	}
	if played == 0 {
		return nil, ErrNoStats
	}
	return &models.UserStats{
		UserID:      userID,
		GamesPlayed: played,
		GamesWon:    won,
		GamesLost:   played - won,
	}, nil
}

// InMemoryGameRepository keeps completed games in process memory. Used
// when no database is configured and in tests.
type InMemoryGameRepository struct {
	mu    sync.RWMutex
	games map[string]models.CompletedGame
}

func NewInMemoryGameRepository() *InMemoryGameRepository {
	return &InMemoryGameRepository{games: make(map[string]models.CompletedGame)}
}

func (r *InMemoryGameRepository) RecordCompletedGame(ctx context.Context, record models.CompletedGame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[record.GameID]; ok {
		return nil
	}
	r.games[record.GameID] = record
	return nil
}

func (r *InMemoryGameRepository) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := models.UserStats{UserID: userID}
	for _, g := range r.games {
		participated := false
		for _, p := range g.Participants {
			if p == userID {
				participated = true
				break
			}
		}
		if !participated {
			continue
		}
		stats.GamesPlayed++
		if g.WinnerID == userID {
			stats.GamesWon++
		} else {
			stats.GamesLost++
		}
	}
	if stats.GamesPlayed == 0 {
		return nil, ErrNoStats
	}
	return &stats, nil
}
