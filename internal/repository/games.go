package repository

import (
	"context"
	"database/sql"
	"fmt"

	"nflpickem/pool/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game cache database operations
type GameRepository struct {
	db *Database
}

const gameColumns = `
	id, game_id, week, season_type, year,
	home_team_name, home_team_abbrev, away_team_name, away_team_abbrev,
	home_score, away_score, status, status_detail, start_time, is_mnf,
	winning_team, venue_name, venue_city, venue_state, raw_payload,
	created_at, updated_at`

// Upsert inserts or updates a game record keyed by game_id and reports
// whether this write transitioned the game from not-final to final.
// The prior row is captured in the same statement, so concurrent syncs
// of one game cannot both observe the transition or duplicate the row.
// is_mnf is written once at first sight and never flipped by updates.
func (r *GameRepository) Upsert(ctx context.Context, game *models.Game) (bool, error) {
	query := `
		WITH prev AS (
			SELECT status, status_detail, start_time, home_score, away_score
			FROM game_cache
			WHERE game_id = $1
		)
		INSERT INTO game_cache (
			game_id, week, season_type, year,
			home_team_name, home_team_abbrev, away_team_name, away_team_abbrev,
			home_score, away_score, status, status_detail, start_time, is_mnf,
			winning_team, venue_name, venue_city, venue_state, raw_payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (game_id) DO UPDATE SET
			week = EXCLUDED.week,
			season_type = EXCLUDED.season_type,
			year = EXCLUDED.year,
			home_team_name = EXCLUDED.home_team_name,
			home_team_abbrev = EXCLUDED.home_team_abbrev,
			away_team_name = EXCLUDED.away_team_name,
			away_team_abbrev = EXCLUDED.away_team_abbrev,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			status = EXCLUDED.status,
			status_detail = EXCLUDED.status_detail,
			start_time = EXCLUDED.start_time,
			winning_team = EXCLUDED.winning_team,
			venue_name = EXCLUDED.venue_name,
			venue_city = EXCLUDED.venue_city,
			venue_state = EXCLUDED.venue_state,
			raw_payload = EXCLUDED.raw_payload,
			updated_at = NOW()
		RETURNING id, is_mnf, created_at, updated_at,
			(SELECT status FROM prev),
			(SELECT status_detail FROM prev),
			(SELECT start_time FROM prev),
			(SELECT home_score FROM prev),
			(SELECT away_score FROM prev)
	`

	var (
		prevStatus    sql.NullString
		prevDetail    sql.NullString
		prevStart     sql.NullTime
		prevHomeScore sql.NullInt32
		prevAwayScore sql.NullInt32
	)

	err := r.db.Pool.QueryRow(
		ctx, query,
		game.GameID, game.Week, game.SeasonType, game.Year,
		game.HomeTeamName, game.HomeTeamAbbrev, game.AwayTeamName, game.AwayTeamAbbrev,
		game.HomeScore, game.AwayScore, game.Status, game.StatusDetail, game.StartTime, game.IsMNF,
		game.WinningTeam, game.VenueName, game.VenueCity, game.VenueState, game.RawPayload,
	).Scan(
		&game.ID, &game.IsMNF, &game.CreatedAt, &game.UpdatedAt,
		&prevStatus, &prevDetail, &prevStart, &prevHomeScore, &prevAwayScore,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert game: %w", err)
	}

	wasFinal := false
	if prevStatus.Valid || prevStart.Valid {
		prev := models.Game{
			Status:       prevStatus.String,
			StatusDetail: prevDetail.String,
			StartTime:    prevStart.Time,
			HomeScore:    prevHomeScore,
			AwayScore:    prevAwayScore,
		}
		wasFinal = prev.IsFinal()
	}

	becameFinal := !wasFinal && game.IsFinal()
	if becameFinal {
		log.Info().
			Str("game_id", game.GameID).
			Str("status", game.Status).
			Msg("Game transitioned to final")
	}

	return becameFinal, nil
}

// GetByGameID retrieves a game by its external feed id
func (r *GameRepository) GetByGameID(ctx context.Context, gameID string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM game_cache WHERE game_id = $1`

	var game models.Game
	err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(gameFields(&game)...)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("game not found: game_id=%s", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}

// GetByWeek retrieves the cached snapshot for a scheduling coordinate
func (r *GameRepository) GetByWeek(ctx context.Context, week int, seasonType models.SeasonType, year int) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM game_cache
		WHERE week = $1 AND season_type = $2 AND year = $3
		ORDER BY start_time, game_id
	`

	rows, err := r.db.Pool.Query(ctx, query, week, seasonType, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get games by week: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// GetAll retrieves every cached game, oldest kickoff first
func (r *GameRepository) GetAll(ctx context.Context) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM game_cache ORDER BY start_time, game_id`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// GetMNFGames retrieves the games flagged as Monday night for a week,
// earliest kickoff first. More than one row is a flagging conflict the
// caller must log.
func (r *GameRepository) GetMNFGames(ctx context.Context, week int, seasonType models.SeasonType, year int) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM game_cache
		WHERE week = $1 AND season_type = $2 AND year = $3 AND is_mnf = TRUE
		ORDER BY start_time, game_id
	`

	rows, err := r.db.Pool.Query(ctx, query, week, seasonType, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get MNF games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// Count returns the total number of cached games
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_cache`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}

func gameFields(g *models.Game) []interface{} {
	return []interface{}{
		&g.ID, &g.GameID, &g.Week, &g.SeasonType, &g.Year,
		&g.HomeTeamName, &g.HomeTeamAbbrev, &g.AwayTeamName, &g.AwayTeamAbbrev,
		&g.HomeScore, &g.AwayScore, &g.Status, &g.StatusDetail, &g.StartTime, &g.IsMNF,
		&g.WinningTeam, &g.VenueName, &g.VenueCity, &g.VenueState, &g.RawPayload,
		&g.CreatedAt, &g.UpdatedAt,
	}
}

func scanGames(rows pgx.Rows) ([]*models.Game, error) {
	var games []*models.Game
	for rows.Next() {
		var game models.Game
		if err := rows.Scan(gameFields(&game)...); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, &game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}
