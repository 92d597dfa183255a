package repository

import (
	"context"
	"database/sql"
	"fmt"

	"nflpickem/pool/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// PickRepository handles pick database operations. The submission layer
// owns pick rows; only is_correct is written here, and only by the
// scoring engine.
type PickRepository struct {
	db *Database
}

const pickColumns = `id, user_id, week, game_id, team_picked, is_correct, created_at, updated_at`

// Create inserts or replaces a user's pick for a game. Resubmitting a
// pick clears any previous result.
func (r *PickRepository) Create(ctx context.Context, pick *models.Pick) error {
	query := `
		INSERT INTO picks (user_id, week, game_id, team_picked)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, week, game_id) DO UPDATE SET
			team_picked = EXCLUDED.team_picked,
			is_correct = NULL,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		pick.UserID, pick.Week, pick.GameID, pick.TeamPicked,
	).Scan(&pick.ID, &pick.CreatedAt, &pick.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pick: %w", err)
	}

	return nil
}

// ListByGame retrieves all picks referencing a game
func (r *PickRepository) ListByGame(ctx context.Context, gameID string) ([]*models.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE game_id = $1 ORDER BY user_id`

	rows, err := r.db.Pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks by game: %w", err)
	}
	defer rows.Close()

	return scanPicks(rows)
}

// ListByWeek retrieves all picks for a week
func (r *PickRepository) ListByWeek(ctx context.Context, week int) ([]*models.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE week = $1 ORDER BY user_id, game_id`

	rows, err := r.db.Pool.Query(ctx, query, week)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks by week: %w", err)
	}
	defer rows.Close()

	return scanPicks(rows)
}

// ListAll retrieves every pick, for season tallies
func (r *PickRepository) ListAll(ctx context.Context) ([]*models.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks ORDER BY user_id, week, game_id`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	defer rows.Close()

	return scanPicks(rows)
}

// SetResults writes scoring outcomes for one game in a single
// transaction, so a partial failure cannot leave half a game's picks
// updated. The map is pick id to result.
func (r *PickRepository) SetResults(ctx context.Context, gameID string, results map[int]sql.NullBool) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin scoring transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for pickID, isCorrect := range results {
		_, err := tx.Exec(ctx,
			`UPDATE picks SET is_correct = $1, updated_at = NOW() WHERE id = $2`,
			isCorrect, pickID,
		)
		if err != nil {
			return fmt.Errorf("failed to update pick %d for game %s: %w", pickID, gameID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit scoring transaction for game %s: %w", gameID, err)
	}

	log.Debug().
		Str("game_id", gameID).
		Int("picks", len(results)).
		Msg("Pick results committed")
	return nil
}

func scanPicks(rows pgx.Rows) ([]*models.Pick, error) {
	var picks []*models.Pick
	for rows.Next() {
		var pick models.Pick
		err := rows.Scan(
			&pick.ID, &pick.UserID, &pick.Week, &pick.GameID,
			&pick.TeamPicked, &pick.IsCorrect, &pick.CreatedAt, &pick.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		picks = append(picks, &pick)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating picks: %w", err)
	}

	return picks, nil
}
