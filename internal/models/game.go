package models

import (
	"database/sql"
	"strings"
	"time"
)

// SeasonType identifies which part of the NFL calendar a week belongs to.
type SeasonType int

const (
	Preseason  SeasonType = 1
	Regular    SeasonType = 2
	Postseason SeasonType = 3
)

// Canonical game statuses. The feed's status vocabulary is mapped onto
// this fixed set at parse time; nothing downstream touches raw feed
// status codes.
const (
	StatusScheduled  = "Scheduled"
	StatusInProgress = "InProgress"
	StatusHalftime   = "Halftime"
	StatusEndPeriod  = "EndPeriod"
	StatusFinal      = "Final"
	StatusFinalOT    = "FinalOT"
	StatusPostponed  = "Postponed"
	StatusCanceled   = "Canceled"
	StatusSuspended  = "Suspended"
	StatusDelayed    = "Delayed"
)

// Game is the canonical cached record of one NFL game, keyed by the
// feed's game id. A record is created on first sight of a game_id and
// updated in place on every sync pass, never duplicated.
type Game struct {
	ID         int        `db:"id"`
	GameID     string     `db:"game_id"`
	Week       int        `db:"week"`
	SeasonType SeasonType `db:"season_type"`
	Year       int        `db:"year"`

	HomeTeamName   string `db:"home_team_name"`
	HomeTeamAbbrev string `db:"home_team_abbrev"`
	AwayTeamName   string `db:"away_team_name"`
	AwayTeamAbbrev string `db:"away_team_abbrev"`

	// Scores are null until the game starts.
	HomeScore sql.NullInt32 `db:"home_score"`
	AwayScore sql.NullInt32 `db:"away_score"`

	Status       string    `db:"status"`
	StatusDetail string    `db:"status_detail"`
	StartTime    time.Time `db:"start_time"`

	// IsMNF is set once at ingestion; at most one true per week.
	IsMNF bool `db:"is_mnf"`

	// WinningTeam is a denormalized cache of the resolved winner name.
	// Recomputed by score comparison when absent.
	WinningTeam sql.NullString `db:"winning_team"`

	VenueName  sql.NullString `db:"venue_name"`
	VenueCity  sql.NullString `db:"venue_city"`
	VenueState sql.NullString `db:"venue_state"`

	// RawPayload keeps the original feed event for audit; it is not
	// consulted by any logic after parse time.
	RawPayload []byte `db:"raw_payload"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsFinal reports whether the game's outcome is authoritative.
//
// The layered fallback exists because the feed's status vocabulary is
// not always current: an explicit final status wins, then a "final"
// mention in the free-text detail, then a past kickoff with both scores
// present. The timestamp heuristic never overrides an explicit
// in-progress signal.
func (g *Game) IsFinal() bool {
	switch g.Status {
	case StatusFinal, StatusFinalOT, StatusPostponed, StatusCanceled:
		return true
	}

	if strings.Contains(strings.ToLower(g.StatusDetail), "final") {
		return true
	}

	if !g.StartTime.IsZero() && time.Now().UTC().After(g.StartTime) {
		if g.HomeScore.Valid && g.AwayScore.Valid {
			return !g.IsInProgress()
		}
	}

	return false
}

// IsInProgress reports whether the game carries a live signal, either
// from the canonical status or from period text in the status detail.
func (g *Game) IsInProgress() bool {
	switch g.Status {
	case StatusInProgress, StatusHalftime, StatusEndPeriod:
		return true
	}

	detail := strings.ToLower(g.StatusDetail)
	return strings.Contains(detail, "quarter") ||
		strings.Contains(detail, "halftime") ||
		strings.Contains(detail, "overtime")
}

// TotalPoints returns the combined score. The second return is false
// until both scores are present.
func (g *Game) TotalPoints() (int, bool) {
	if !g.HomeScore.Valid || !g.AwayScore.Valid {
		return 0, false
	}
	return int(g.HomeScore.Int32) + int(g.AwayScore.Int32), true
}

// Winner returns the winning team name for a final game, preferring the
// stored winner and falling back to score comparison. The second return
// is false for non-final games and ties.
func (g *Game) Winner() (string, bool) {
	if !g.IsFinal() {
		return "", false
	}

	if g.WinningTeam.Valid && g.WinningTeam.String != "" {
		return g.WinningTeam.String, true
	}

	if g.HomeScore.Valid && g.AwayScore.Valid {
		switch {
		case g.HomeScore.Int32 > g.AwayScore.Int32:
			return g.HomeTeamName, true
		case g.AwayScore.Int32 > g.HomeScore.Int32:
			return g.AwayTeamName, true
		}
	}

	return "", false
}

// WeekInfo is the scheduling coordinate for one NFL week.
type WeekInfo struct {
	Week       int        `json:"week"`
	SeasonType SeasonType `json:"season_type"`
	Year       int        `json:"year"`
}
