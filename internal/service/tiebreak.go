package service

import (
	"context"
	"fmt"

	"nflpickem/pool/internal/metrics"
	"nflpickem/pool/internal/models"

	"github.com/rs/zerolog/log"
)

// ResolveTiebreak back-fills MNF prediction deltas for a week once its
// Monday night game is final. Each precondition failure is a logged
// no-op, not an error: the resolver runs on every sync and simply waits
// until the game is done. Already-resolved predictions are never
// touched again, even if the feed later revises the score.
func (s *Service) ResolveTiebreak(ctx context.Context, week int, seasonType models.SeasonType, year int) (int, error) {
	mnfGames, err := s.games.GetMNFGames(ctx, week, seasonType, year)
	if err != nil {
		return 0, fmt.Errorf("failed to load MNF games for week %d: %w", week, err)
	}

	if len(mnfGames) == 0 {
		log.Debug().Int("week", week).Msg("No Monday night game flagged, tiebreak not resolvable")
		return 0, nil
	}

	game := mnfGames[0]
	if len(mnfGames) > 1 {
		log.Warn().
			Int("week", week).
			Int("flagged", len(mnfGames)).
			Str("using", game.GameID).
			Msg("Multiple games flagged as Monday night, using earliest kickoff")
		metrics.RecordMNFConflict()
	}

	if !game.IsFinal() {
		log.Debug().
			Int("week", week).
			Str("game_id", game.GameID).
			Str("status", game.Status).
			Msg("Monday night game not final, tiebreak waiting")
		return 0, nil
	}

	total, ok := game.TotalPoints()
	if !ok {
		log.Warn().
			Int("week", week).
			Str("game_id", game.GameID).
			Msg("Monday night game final but missing scores, tiebreak waiting")
		return 0, nil
	}

	resolved, err := s.predictions.ResolveWeek(ctx, week, total)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve predictions for week %d: %w", week, err)
	}

	if resolved > 0 {
		metrics.RecordPredictionsResolved(resolved)
		log.Info().
			Int("week", week).
			Str("game_id", game.GameID).
			Int("actual_total", total).
			Int("resolved", resolved).
			Msg("MNF tiebreak resolved")
	}

	return resolved, nil
}
