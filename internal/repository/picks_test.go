//go:build integration

package repository

import (
	"database/sql"
	"testing"

	"nflpickem/pool/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickRepository_Create(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	game := testGame("pr-create-1", 9)
	_, err := db.Games.Upsert(ctx, game)
	require.NoError(t, err)

	pick := &models.Pick{
		UserID:     501,
		Week:       9,
		GameID:     "pr-create-1",
		TeamPicked: "Philadelphia Eagles",
	}
	require.NoError(t, db.Picks.Create(ctx, pick))
	assert.NotZero(t, pick.ID, "Create should fill the row id")

	// Resubmitting replaces the pick and clears any result
	_, err = db.Pool.Exec(ctx,
		`UPDATE picks SET is_correct = TRUE WHERE id = $1`, pick.ID)
	require.NoError(t, err)

	pick.TeamPicked = "Dallas Cowboys"
	require.NoError(t, db.Picks.Create(ctx, pick))

	picks, err := db.Picks.ListByGame(ctx, "pr-create-1")
	require.NoError(t, err)

	var found *models.Pick
	for _, p := range picks {
		if p.UserID == 501 {
			found = p
		}
	}
	require.NotNil(t, found, "Resubmitted pick should still be listed")
	assert.Equal(t, "Dallas Cowboys", found.TeamPicked)
	assert.False(t, found.IsCorrect.Valid, "Resubmission should clear the previous result")
}

func TestPickRepository_SetResults(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	game := testGame("pr-score-1", 9)
	_, err := db.Games.Upsert(ctx, game)
	require.NoError(t, err)

	correct := &models.Pick{UserID: 601, Week: 9, GameID: "pr-score-1", TeamPicked: "Philadelphia Eagles"}
	wrong := &models.Pick{UserID: 602, Week: 9, GameID: "pr-score-1", TeamPicked: "Dallas Cowboys"}
	require.NoError(t, db.Picks.Create(ctx, correct))
	require.NoError(t, db.Picks.Create(ctx, wrong))

	results := map[int]sql.NullBool{
		correct.ID: {Bool: true, Valid: true},
		wrong.ID:   {Bool: false, Valid: true},
	}
	require.NoError(t, db.Picks.SetResults(ctx, "pr-score-1", results))

	picks, err := db.Picks.ListByGame(ctx, "pr-score-1")
	require.NoError(t, err)

	byUser := make(map[int]*models.Pick)
	for _, p := range picks {
		byUser[p.UserID] = p
	}

	require.Contains(t, byUser, 601)
	require.Contains(t, byUser, 602)
	assert.True(t, byUser[601].IsCorrect.Valid)
	assert.True(t, byUser[601].IsCorrect.Bool)
	assert.True(t, byUser[602].IsCorrect.Valid)
	assert.False(t, byUser[602].IsCorrect.Bool)

	// Empty result set is a no-op
	require.NoError(t, db.Picks.SetResults(ctx, "pr-score-1", nil))
}
