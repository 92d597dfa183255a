package repository

import (
	"context"
	"fmt"

	"nflpickem/pool/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// PredictionRepository handles MNF total-points prediction operations.
// Prediction rows are owned by the submission layer; actual_total,
// points_off, and is_over are written here exactly once per row.
type PredictionRepository struct {
	db *Database
}

const predictionColumns = `id, user_id, week, predicted_total, actual_total, points_off, is_over, created_at, updated_at`

// Create inserts or replaces a user's prediction for a week. A resolved
// prediction cannot be resubmitted.
func (r *PredictionRepository) Create(ctx context.Context, pred *models.MNFPrediction) error {
	query := `
		INSERT INTO mnf_predictions (user_id, week, predicted_total)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, week) DO UPDATE SET
			predicted_total = EXCLUDED.predicted_total,
			updated_at = NOW()
		WHERE mnf_predictions.actual_total IS NULL
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		pred.UserID, pred.Week, pred.PredictedTotal,
	).Scan(&pred.ID, &pred.CreatedAt, &pred.UpdatedAt)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("prediction for user %d week %d is already resolved", pred.UserID, pred.Week)
	}
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	return nil
}

// ListByWeek retrieves all predictions for a week
func (r *PredictionRepository) ListByWeek(ctx context.Context, week int) ([]*models.MNFPrediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM mnf_predictions WHERE week = $1 ORDER BY user_id`

	rows, err := r.db.Pool.Query(ctx, query, week)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	var preds []*models.MNFPrediction
	for rows.Next() {
		var pred models.MNFPrediction
		err := rows.Scan(
			&pred.ID, &pred.UserID, &pred.Week, &pred.PredictedTotal,
			&pred.ActualTotal, &pred.PointsOff, &pred.IsOver,
			&pred.CreatedAt, &pred.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		preds = append(preds, &pred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}

	return preds, nil
}

// ResolveWeek back-fills deltas for every unresolved prediction in a
// week from the actual game total. The IS NULL guard makes resolution
// one-shot: rows that already carry an actual_total are frozen, even if
// the prediction was altered since.
func (r *PredictionRepository) ResolveWeek(ctx context.Context, week, actualTotal int) (int, error) {
	query := `
		UPDATE mnf_predictions
		SET actual_total = $2,
		    points_off = ABS(predicted_total - $2),
		    is_over = predicted_total > $2,
		    updated_at = NOW()
		WHERE week = $1 AND actual_total IS NULL
	`

	result, err := r.db.Pool.Exec(ctx, query, week, actualTotal)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve predictions for week %d: %w", week, err)
	}

	updated := int(result.RowsAffected())
	if updated > 0 {
		log.Info().
			Int("week", week).
			Int("actual_total", actualTotal).
			Int("updated", updated).
			Msg("MNF prediction deltas back-filled")
	}

	return updated, nil
}
