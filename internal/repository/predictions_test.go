//go:build integration

package repository

import (
	"testing"

	"nflpickem/pool/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionRepository_ResolveWeekOneShot(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	week := 14
	under := &models.MNFPrediction{UserID: 701, Week: week, PredictedTotal: 28}
	over := &models.MNFPrediction{UserID: 702, Week: week, PredictedTotal: 35}
	require.NoError(t, db.Predictions.Create(ctx, under))
	require.NoError(t, db.Predictions.Create(ctx, over))

	updated, err := db.Predictions.ResolveWeek(ctx, week, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, updated, "Both unresolved predictions should be back-filled")

	preds, err := db.Predictions.ListByWeek(ctx, week)
	require.NoError(t, err)

	byUser := make(map[int]*models.MNFPrediction)
	for _, p := range preds {
		byUser[p.UserID] = p
	}

	require.Contains(t, byUser, 701)
	assert.Equal(t, int32(30), byUser[701].ActualTotal.Int32)
	assert.Equal(t, int32(2), byUser[701].PointsOff.Int32)
	assert.False(t, byUser[701].IsOver.Bool, "28 against 30 is an under")

	require.Contains(t, byUser, 702)
	assert.Equal(t, int32(5), byUser[702].PointsOff.Int32)
	assert.True(t, byUser[702].IsOver.Bool, "35 against 30 is an over")

	// A second resolution, even with a corrected total, touches nothing
	updated, err = db.Predictions.ResolveWeek(ctx, week, 44)
	require.NoError(t, err)
	assert.Zero(t, updated, "Resolved rows must stay frozen")

	preds, err = db.Predictions.ListByWeek(ctx, week)
	require.NoError(t, err)
	for _, p := range preds {
		assert.Equal(t, int32(30), p.ActualTotal.Int32, "Original total should survive a re-resolve")
	}
}

func TestPredictionRepository_CreateAfterResolve(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	week := 15
	pred := &models.MNFPrediction{UserID: 801, Week: week, PredictedTotal: 41}
	require.NoError(t, db.Predictions.Create(ctx, pred))

	// Resubmission before resolution is allowed
	pred.PredictedTotal = 45
	require.NoError(t, db.Predictions.Create(ctx, pred))

	_, err := db.Predictions.ResolveWeek(ctx, week, 47)
	require.NoError(t, err)

	// Resubmission after resolution is rejected
	pred.PredictedTotal = 50
	err = db.Predictions.Create(ctx, pred)
	assert.Error(t, err, "Resolved prediction must not be replaceable")
}
