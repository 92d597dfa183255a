package models

import (
	"database/sql"
	"time"
)

// Pick is one user's winner selection for one game. (user_id, week,
// game_id) is unique. IsCorrect is tri-state: null until the game is
// final, then true/false. Only the scoring engine writes IsCorrect.
type Pick struct {
	ID         int          `db:"id"`
	UserID     int          `db:"user_id"`
	Week       int          `db:"week"`
	GameID     string       `db:"game_id"`
	TeamPicked string       `db:"team_picked"`
	IsCorrect  sql.NullBool `db:"is_correct"`
	CreatedAt  time.Time    `db:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at"`
}

// MNFPrediction is one user's total-points prediction for the week's
// Monday night game. (user_id, week) is unique. The derived fields stay
// null until the MNF game is final, then are written exactly once; the
// tiebreak resolver never recomputes a resolved prediction.
type MNFPrediction struct {
	ID             int           `db:"id"`
	UserID         int           `db:"user_id"`
	Week           int           `db:"week"`
	PredictedTotal int           `db:"predicted_total"`
	ActualTotal    sql.NullInt32 `db:"actual_total"`
	PointsOff      sql.NullInt32 `db:"points_off"`
	IsOver         sql.NullBool  `db:"is_over"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

// Resolved reports whether the prediction's delta has been computed.
func (p *MNFPrediction) Resolved() bool {
	return p.ActualTotal.Valid
}

// Resolve fills the derived fields from the actual game total. Calling
// it again with the same total yields the same values.
func (p *MNFPrediction) Resolve(actualTotal int) {
	diff := p.PredictedTotal - actualTotal
	if diff < 0 {
		diff = -diff
	}
	p.ActualTotal = sql.NullInt32{Int32: int32(actualTotal), Valid: true}
	p.PointsOff = sql.NullInt32{Int32: int32(diff), Valid: true}
	p.IsOver = sql.NullBool{Bool: p.PredictedTotal > actualTotal, Valid: true}
}
