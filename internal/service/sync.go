package service

import (
	"context"
	"fmt"
	"time"

	"nflpickem/pool/internal/metrics"
	"nflpickem/pool/internal/models"

	"github.com/rs/zerolog/log"
)

// SyncWeek runs one full sync pass for a week: fetch from the feed,
// upsert into the game cache, score picks for games that just went
// final, attempt the MNF tiebreak, and return the stored snapshot for
// the week. week == nil means "whatever week the league is in".
//
// Without force, a week that is already cached is served as-is with no
// network call, so read paths may call this arbitrarily often; force is
// for the live-game windows and admin refreshes. A failing game rolls
// back only its own writes and the batch continues; a total feed
// failure degrades to the last cached snapshot instead of erroring.
func (s *Service) SyncWeek(ctx context.Context, week *int, force bool) ([]*models.Game, error) {
	start := time.Now()
	mode := "poll"
	if force {
		mode = "force"
	}

	info, err := s.resolveCoordinate(ctx, week)
	if err != nil {
		metrics.RecordSync(mode, "error", time.Since(start).Seconds())
		return nil, err
	}

	if !force {
		if snapshot := s.cachedSnapshot(ctx, info); snapshot != nil {
			metrics.RecordCacheHit()
			log.Debug().
				Int("week", info.Week).
				Int("count", len(snapshot)).
				Msg("Serving week from cache")
			return snapshot, nil
		}
	}

	fetched, err := s.feed.FetchWeek(ctx, info.Week, info.SeasonType, info.Year)
	if err != nil {
		// Degrade to the last cached state rather than surfacing the
		// outage; the next window tick retries.
		log.Error().Err(err).Int("week", info.Week).Msg("Feed unavailable, serving last cached snapshot")
		metrics.RecordSync(mode, "feed_unavailable", time.Since(start).Seconds())
		metrics.RecordError("sync", "feed_fetch")
		return s.games.GetByWeek(ctx, info.Week, info.SeasonType, info.Year)
	}

	finalized := 0
	for _, game := range fetched {
		becameFinal, err := s.games.Upsert(ctx, game)
		if err != nil {
			log.Error().Err(err).Str("game_id", game.GameID).Msg("Failed to persist game, continuing batch")
			metrics.RecordError("sync", "upsert")
			continue
		}
		if !becameFinal {
			continue
		}

		finalized++
		metrics.RecordFinalTransition()
		if _, err := s.ScoreGame(ctx, game); err != nil {
			log.Error().Err(err).Str("game_id", game.GameID).Msg("Failed to score newly final game")
			metrics.RecordError("sync", "score")
		}
	}

	// One-shot guarded, so attempting every pass is harmless
	if _, err := s.ResolveTiebreak(ctx, info.Week, info.SeasonType, info.Year); err != nil {
		log.Error().Err(err).Int("week", info.Week).Msg("Tiebreak resolution failed")
		metrics.RecordError("sync", "tiebreak")
	}

	snapshot, err := s.games.GetByWeek(ctx, info.Week, info.SeasonType, info.Year)
	if err != nil {
		metrics.RecordSync(mode, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to load week snapshot: %w", err)
	}

	if s.snapshots != nil {
		if err := s.snapshots.StoreWeekSnapshot(ctx, info.Week, info.SeasonType, info.Year, snapshot); err != nil {
			log.Warn().Err(err).Msg("Failed to cache week snapshot")
		}
	}

	metrics.RecordSync(mode, "success", time.Since(start).Seconds())
	log.Info().
		Int("week", info.Week).
		Int("year", info.Year).
		Int("fetched", len(fetched)).
		Int("finalized", finalized).
		Str("mode", mode).
		Dur("duration", time.Since(start)).
		Msg("Week sync complete")

	return snapshot, nil
}

// cachedSnapshot serves a non-forced sync without a network call: the
// Redis snapshot if present, else whatever the game cache already holds
// for the week. Returns nil when neither has records.
func (s *Service) cachedSnapshot(ctx context.Context, info models.WeekInfo) []*models.Game {
	if s.snapshots != nil {
		snapshot, err := s.snapshots.GetWeekSnapshot(ctx, info.Week, info.SeasonType, info.Year)
		if err != nil {
			log.Warn().Err(err).Msg("Snapshot cache read failed")
		} else if snapshot != nil {
			return snapshot
		}
	}

	stored, err := s.games.GetByWeek(ctx, info.Week, info.SeasonType, info.Year)
	if err != nil {
		log.Warn().Err(err).Int("week", info.Week).Msg("Week lookup failed")
		return nil
	}
	if len(stored) == 0 {
		return nil
	}
	return stored
}

// resolveCoordinate decides which week to sync. An explicit week pins
// the regular season and resolves locally, taking the year from the
// last-known-good pointer when one exists; only a nil week consults
// the feed, with the pointer and finally the offseason default as
// fallbacks.
func (s *Service) resolveCoordinate(ctx context.Context, week *int) (models.WeekInfo, error) {
	if week != nil {
		if *week < 1 || *week > 18 {
			return models.WeekInfo{}, fmt.Errorf("invalid week %d: must be 1-18", *week)
		}

		info := models.WeekInfo{Week: *week, SeasonType: models.Regular, Year: seasonYear(time.Now())}
		if s.snapshots != nil {
			if cached, err := s.snapshots.GetCurrentWeek(ctx); err != nil {
				log.Warn().Err(err).Msg("Current week pointer read failed")
			} else if cached != nil {
				info.Year = cached.Year
			}
		}
		return info, nil
	}

	info, err := s.feed.CurrentWeek(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Current week lookup failed, trying last known good")
		return s.lastKnownWeek(ctx), nil
	}
	if s.snapshots != nil {
		if err := s.snapshots.StoreCurrentWeek(ctx, info); err != nil {
			log.Warn().Err(err).Msg("Failed to persist current week pointer")
		}
	}
	return info, nil
}

func (s *Service) lastKnownWeek(ctx context.Context) models.WeekInfo {
	if s.snapshots != nil {
		cached, err := s.snapshots.GetCurrentWeek(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Last known week lookup failed")
		} else if cached != nil {
			log.Info().
				Int("week", cached.Week).
				Int("year", cached.Year).
				Msg("Using last known good week")
			return *cached
		}
	}

	year := seasonYear(time.Now())
	log.Info().Int("year", year).Msg("No week information available, using offseason default")
	return models.WeekInfo{Week: 1, SeasonType: models.Regular, Year: year}
}

// seasonYear maps a wall-clock date to the season it belongs to;
// before September the league is still in the prior year's season.
func seasonYear(now time.Time) int {
	year := now.Year()
	if now.Month() < time.September {
		year--
	}
	return year
}
