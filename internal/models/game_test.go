package models

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func score(n int) sql.NullInt32 {
	return sql.NullInt32{Int32: int32(n), Valid: true}
}

func TestGame_IsFinal_ExplicitStatuses(t *testing.T) {
	for _, status := range []string{StatusFinal, StatusFinalOT, StatusPostponed, StatusCanceled} {
		g := &Game{Status: status}
		assert.True(t, g.IsFinal(), "status %s should be final", status)
	}

	for _, status := range []string{StatusScheduled, StatusInProgress, StatusHalftime, StatusEndPeriod, StatusSuspended, StatusDelayed} {
		g := &Game{Status: status, StartTime: time.Now().UTC().Add(time.Hour)}
		assert.False(t, g.IsFinal(), "status %s should not be final", status)
	}
}

func TestGame_IsFinal_DetailOverride(t *testing.T) {
	// A stale coarse status with a final detail string counts as final.
	g := &Game{Status: StatusInProgress, StatusDetail: "Final/OT"}
	assert.True(t, g.IsFinal())
}

func TestGame_IsFinal_TimestampHeuristic(t *testing.T) {
	past := time.Now().UTC().Add(-4 * time.Hour)

	// Unknown status, past kickoff, both scores, no live signal: final.
	g := &Game{
		Status:    "",
		StartTime: past,
		HomeScore: score(24),
		AwayScore: score(17),
	}
	assert.True(t, g.IsFinal())

	// An explicit in-progress status overrides the timestamp heuristic.
	g.Status = StatusInProgress
	assert.False(t, g.IsFinal())

	// So does period text in the detail.
	g.Status = ""
	g.StatusDetail = "4th Quarter"
	assert.False(t, g.IsFinal())

	// Missing scores block the heuristic.
	g.StatusDetail = ""
	g.AwayScore = sql.NullInt32{}
	assert.False(t, g.IsFinal())
}

func TestGame_TotalPoints(t *testing.T) {
	g := &Game{HomeScore: score(20), AwayScore: score(10)}
	total, ok := g.TotalPoints()
	assert.True(t, ok)
	assert.Equal(t, 30, total)

	g.AwayScore = sql.NullInt32{}
	_, ok = g.TotalPoints()
	assert.False(t, ok)
}

func TestGame_Winner(t *testing.T) {
	g := &Game{
		Status:       StatusFinal,
		HomeTeamName: "Philadelphia Eagles",
		AwayTeamName: "Dallas Cowboys",
		HomeScore:    score(24),
		AwayScore:    score(17),
	}

	winner, ok := g.Winner()
	assert.True(t, ok)
	assert.Equal(t, "Philadelphia Eagles", winner)

	// A stored winner takes precedence over score comparison.
	g.WinningTeam = sql.NullString{String: "Dallas Cowboys", Valid: true}
	winner, _ = g.Winner()
	assert.Equal(t, "Dallas Cowboys", winner)

	// Non-final games have no winner.
	g.Status = StatusInProgress
	_, ok = g.Winner()
	assert.False(t, ok)

	// Ties have no winner.
	g.Status = StatusFinal
	g.WinningTeam = sql.NullString{}
	g.AwayScore = score(24)
	_, ok = g.Winner()
	assert.False(t, ok)
}

func TestMNFPrediction_Resolve(t *testing.T) {
	under := &MNFPrediction{PredictedTotal: 28}
	under.Resolve(30)
	assert.Equal(t, int32(30), under.ActualTotal.Int32)
	assert.Equal(t, int32(2), under.PointsOff.Int32)
	assert.False(t, under.IsOver.Bool)
	assert.True(t, under.Resolved())

	over := &MNFPrediction{PredictedTotal: 35}
	over.Resolve(30)
	assert.Equal(t, int32(5), over.PointsOff.Int32)
	assert.True(t, over.IsOver.Bool)
}
