package service

import (
	"context"
	"database/sql"

	"nflpickem/pool/internal/models"
	"nflpickem/pool/internal/teams"
)

// GameStore is the game cache surface the service consumes.
type GameStore interface {
	Upsert(ctx context.Context, game *models.Game) (bool, error)
	GetByWeek(ctx context.Context, week int, seasonType models.SeasonType, year int) ([]*models.Game, error)
	GetAll(ctx context.Context) ([]*models.Game, error)
	GetMNFGames(ctx context.Context, week int, seasonType models.SeasonType, year int) ([]*models.Game, error)
}

// PickStore is the pick surface the scoring engine consumes. Writes go
// through SetResults only; pick rows themselves belong to the
// submission layer.
type PickStore interface {
	ListByGame(ctx context.Context, gameID string) ([]*models.Pick, error)
	ListByWeek(ctx context.Context, week int) ([]*models.Pick, error)
	ListAll(ctx context.Context) ([]*models.Pick, error)
	SetResults(ctx context.Context, gameID string, results map[int]sql.NullBool) error
}

// PredictionStore is the MNF prediction surface the tiebreak resolver
// consumes.
type PredictionStore interface {
	ListByWeek(ctx context.Context, week int) ([]*models.MNFPrediction, error)
	ResolveWeek(ctx context.Context, week, actualTotal int) (int, error)
}

// Feed fetches scoreboard data from the external provider.
type Feed interface {
	FetchWeek(ctx context.Context, week int, seasonType models.SeasonType, year int) ([]*models.Game, error)
	CurrentWeek(ctx context.Context) (models.WeekInfo, error)
}

// SnapshotCache holds short-lived week snapshots and the last-known-good
// current week pointer.
type SnapshotCache interface {
	GetWeekSnapshot(ctx context.Context, week int, seasonType models.SeasonType, year int) ([]*models.Game, error)
	StoreWeekSnapshot(ctx context.Context, week int, seasonType models.SeasonType, year int, games []*models.Game) error
	GetCurrentWeek(ctx context.Context) (*models.WeekInfo, error)
	StoreCurrentWeek(ctx context.Context, info models.WeekInfo) error
}

// Service wires the feed, the game cache, picks, and predictions into
// the sync, scoring, and tiebreak operations.
type Service struct {
	games       GameStore
	picks       PickStore
	predictions PredictionStore
	feed        Feed
	snapshots   SnapshotCache
	resolver    *teams.Resolver
}

// New creates the service. snapshots may be nil; the service then runs
// without the Redis layer.
func New(games GameStore, picks PickStore, predictions PredictionStore, feed Feed, snapshots SnapshotCache) *Service {
	return &Service{
		games:       games,
		picks:       picks,
		predictions: predictions,
		feed:        feed,
		snapshots:   snapshots,
		resolver:    teams.NewResolver(),
	}
}
