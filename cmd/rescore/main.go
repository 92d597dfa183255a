// Command rescore re-grades every pick against the cached game results
// and reattempts MNF tiebreak resolution for a chosen week. Safe to run
// repeatedly: already-correct results and resolved predictions are left
// untouched. Use it after repairing team data or correcting a score by
// hand.
package main

import (
	"context"
	"flag"
	"strconv"

	"nflpickem/pool/internal/config"
	"nflpickem/pool/internal/models"
	"nflpickem/pool/internal/repository"
	"nflpickem/pool/internal/service"

	"github.com/rs/zerolog/log"
)

func main() {
	week := flag.Int("week", 0, "also reattempt MNF tiebreak resolution for this week (1-18)")
	year := flag.Int("year", 0, "season year for the tiebreak lookup (defaults to the cached games' year)")
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	// No feed or cache: the rescore works entirely from stored state
	svc := service.New(db.Games, db.Picks, db.Predictions, nil, nil)

	changed, err := svc.ScoreAllFinished(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Rescore failed")
	}
	log.Info().Int("changed", changed).Msg("Rescore complete")

	if *week == 0 {
		return
	}
	if *week < 1 || *week > 18 {
		log.Fatal().Int("week", *week).Msg("Week must be between 1 and 18")
	}

	tiebreakYear := *year
	if tiebreakYear == 0 {
		tiebreakYear = inferYear(ctx, db, *week)
	}

	resolved, err := svc.ResolveTiebreak(ctx, *week, models.Regular, tiebreakYear)
	if err != nil {
		log.Fatal().Err(err).Int("week", *week).Msg("Tiebreak resolution failed")
	}
	log.Info().Int("week", *week).Int("resolved", resolved).Msg("Tiebreak pass complete")
}

// inferYear picks the season year from the cached games for the week
func inferYear(ctx context.Context, db *repository.Database, week int) int {
	games, err := db.Games.GetAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load games to infer season year")
	}

	year := 0
	for _, g := range games {
		if g.Week == week && g.SeasonType == models.Regular && g.Year > year {
			year = g.Year
		}
	}
	if year == 0 {
		log.Fatal().Int("week", week).Msg("No cached regular season games for week, pass -year explicitly")
	}
	return year
}
