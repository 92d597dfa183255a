package service

import (
	"context"
	"database/sql"
	"fmt"

	"nflpickem/pool/internal/metrics"
	"nflpickem/pool/internal/models"

	"github.com/rs/zerolog/log"
)

// ScoreGame grades every pick referencing a finished game and returns
// how many results actually changed. Calling it again on the same game
// state changes nothing and returns 0. Games that are not final, or
// final without both scores, are skipped.
func (s *Service) ScoreGame(ctx context.Context, game *models.Game) (int, error) {
	if !game.IsFinal() || !game.HomeScore.Valid || !game.AwayScore.Valid {
		log.Debug().
			Str("game_id", game.GameID).
			Str("status", game.Status).
			Msg("Game not scorable, skipping")
		return 0, nil
	}

	picks, err := s.picks.ListByGame(ctx, game.GameID)
	if err != nil {
		return 0, fmt.Errorf("failed to load picks for game %s: %w", game.GameID, err)
	}
	if len(picks) == 0 {
		return 0, nil
	}

	homeWon := game.HomeScore.Int32 > game.AwayScore.Int32
	awayWon := game.AwayScore.Int32 > game.HomeScore.Int32

	results := make(map[int]sql.NullBool)
	for _, pick := range picks {
		var correct bool
		switch {
		case s.resolver.Match(pick.TeamPicked, game.HomeTeamName):
			correct = homeWon
		case s.resolver.Match(pick.TeamPicked, game.AwayTeamName):
			correct = awayWon
		default:
			log.Warn().
				Str("game_id", game.GameID).
				Int("user_id", pick.UserID).
				Str("team_picked", pick.TeamPicked).
				Str("home", game.HomeTeamName).
				Str("away", game.AwayTeamName).
				Msg("Pick matches neither team, leaving unscored")
			metrics.RecordUnmatchedPick()
			continue
		}

		// Only genuine transitions are written or counted
		if pick.IsCorrect.Valid && pick.IsCorrect.Bool == correct {
			continue
		}
		results[pick.ID] = sql.NullBool{Bool: correct, Valid: true}
	}

	if len(results) == 0 {
		return 0, nil
	}

	if err := s.picks.SetResults(ctx, game.GameID, results); err != nil {
		return 0, fmt.Errorf("failed to write pick results for game %s: %w", game.GameID, err)
	}

	metrics.RecordPicksScored(len(results))
	log.Info().
		Str("game_id", game.GameID).
		Str("winner", winnerName(game)).
		Int("changed", len(results)).
		Int("picks", len(picks)).
		Msg("Picks scored")

	return len(results), nil
}

// ScoreAllFinished re-grades every finished game in the cache. Used by
// the daily reconciliation and the rescore command; already-correct
// results are untouched, so the changed count reflects real repairs.
func (s *Service) ScoreAllFinished(ctx context.Context) (int, error) {
	games, err := s.games.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load games: %w", err)
	}

	changed := 0
	for _, game := range games {
		if !game.IsFinal() || !game.HomeScore.Valid || !game.AwayScore.Valid {
			continue
		}
		n, err := s.ScoreGame(ctx, game)
		if err != nil {
			log.Error().Err(err).Str("game_id", game.GameID).Msg("Failed to score game")
			metrics.RecordError("scoring", "score_game")
			continue
		}
		changed += n
	}

	log.Info().Int("changed", changed).Int("games", len(games)).Msg("Full rescore complete")
	return changed, nil
}

func winnerName(game *models.Game) string {
	if name, ok := game.Winner(); ok {
		return name
	}
	return "tie"
}
