package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nflpickem/pool/internal/models"
)

// In-memory fakes implementing the store interfaces. They mirror the
// postgres repositories' observable behavior, including the upsert
// final-transition report and the one-shot prediction resolve.

type fakeGameStore struct {
	games     map[string]*models.Game
	upsertErr error
}

func newFakeGameStore() *fakeGameStore {
	return &fakeGameStore{games: make(map[string]*models.Game)}
}

func (f *fakeGameStore) Upsert(_ context.Context, game *models.Game) (bool, error) {
	if f.upsertErr != nil {
		return false, f.upsertErr
	}

	wasFinal := false
	if prev, ok := f.games[game.GameID]; ok {
		wasFinal = prev.IsFinal()
		game.IsMNF = prev.IsMNF
	}

	stored := *game
	f.games[game.GameID] = &stored
	return !wasFinal && game.IsFinal(), nil
}

func (f *fakeGameStore) GetByWeek(_ context.Context, week int, seasonType models.SeasonType, year int) ([]*models.Game, error) {
	var out []*models.Game
	for _, g := range f.games {
		if g.Week == week && g.SeasonType == seasonType && g.Year == year {
			out = append(out, g)
		}
	}
	sortGamesByKickoff(out)
	return out, nil
}

func (f *fakeGameStore) GetAll(_ context.Context) ([]*models.Game, error) {
	var out []*models.Game
	for _, g := range f.games {
		out = append(out, g)
	}
	sortGamesByKickoff(out)
	return out, nil
}

func (f *fakeGameStore) GetMNFGames(_ context.Context, week int, seasonType models.SeasonType, year int) ([]*models.Game, error) {
	var out []*models.Game
	for _, g := range f.games {
		if g.Week == week && g.SeasonType == seasonType && g.Year == year && g.IsMNF {
			out = append(out, g)
		}
	}
	sortGamesByKickoff(out)
	return out, nil
}

func sortGamesByKickoff(games []*models.Game) {
	for i := 1; i < len(games); i++ {
		for j := i; j > 0; j-- {
			a, b := games[j-1], games[j]
			if a.StartTime.Before(b.StartTime) || (a.StartTime.Equal(b.StartTime) && a.GameID <= b.GameID) {
				break
			}
			games[j-1], games[j] = b, a
		}
	}
}

type fakePickStore struct {
	picks      []*models.Pick
	nextID     int
	writeCalls int
}

func (f *fakePickStore) add(userID, week int, gameID, teamPicked string) *models.Pick {
	f.nextID++
	pick := &models.Pick{
		ID: f.nextID, UserID: userID, Week: week,
		GameID: gameID, TeamPicked: teamPicked,
	}
	f.picks = append(f.picks, pick)
	return pick
}

func (f *fakePickStore) ListByGame(_ context.Context, gameID string) ([]*models.Pick, error) {
	var out []*models.Pick
	for _, p := range f.picks {
		if p.GameID == gameID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePickStore) ListByWeek(_ context.Context, week int) ([]*models.Pick, error) {
	var out []*models.Pick
	for _, p := range f.picks {
		if p.Week == week {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePickStore) ListAll(_ context.Context) ([]*models.Pick, error) {
	return f.picks, nil
}

func (f *fakePickStore) SetResults(_ context.Context, _ string, results map[int]sql.NullBool) error {
	if len(results) == 0 {
		return nil
	}
	f.writeCalls++
	for _, p := range f.picks {
		if result, ok := results[p.ID]; ok {
			p.IsCorrect = result
		}
	}
	return nil
}

type fakePredictionStore struct {
	preds []*models.MNFPrediction
}

func (f *fakePredictionStore) add(userID, week, predicted int) *models.MNFPrediction {
	pred := &models.MNFPrediction{
		ID: len(f.preds) + 1, UserID: userID, Week: week, PredictedTotal: predicted,
	}
	f.preds = append(f.preds, pred)
	return pred
}

func (f *fakePredictionStore) ListByWeek(_ context.Context, week int) ([]*models.MNFPrediction, error) {
	var out []*models.MNFPrediction
	for _, p := range f.preds {
		if p.Week == week {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePredictionStore) ResolveWeek(_ context.Context, week, actualTotal int) (int, error) {
	resolved := 0
	for _, p := range f.preds {
		if p.Week == week && !p.Resolved() {
			p.Resolve(actualTotal)
			resolved++
		}
	}
	return resolved, nil
}

type fakeFeed struct {
	games       []*models.Game
	fetchErr    error
	info        models.WeekInfo
	infoErr     error
	fetchCalls  int
	infoCalls   int
	weekFetched int
}

func (f *fakeFeed) FetchWeek(_ context.Context, week int, _ models.SeasonType, _ int) ([]*models.Game, error) {
	f.fetchCalls++
	f.weekFetched = week
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.games, nil
}

func (f *fakeFeed) CurrentWeek(_ context.Context) (models.WeekInfo, error) {
	f.infoCalls++
	if f.infoErr != nil {
		return models.WeekInfo{}, f.infoErr
	}
	return f.info, nil
}

type fakeSnapshotCache struct {
	snapshots   map[string][]*models.Game
	currentWeek *models.WeekInfo
	hits        int
}

func newFakeSnapshotCache() *fakeSnapshotCache {
	return &fakeSnapshotCache{snapshots: make(map[string][]*models.Game)}
}

func cacheKey(week int, seasonType models.SeasonType, year int) string {
	return fmt.Sprintf("%d:%d:%d", year, seasonType, week)
}

func (f *fakeSnapshotCache) GetWeekSnapshot(_ context.Context, week int, seasonType models.SeasonType, year int) ([]*models.Game, error) {
	snapshot := f.snapshots[cacheKey(week, seasonType, year)]
	if snapshot != nil {
		f.hits++
	}
	return snapshot, nil
}

func (f *fakeSnapshotCache) StoreWeekSnapshot(_ context.Context, week int, seasonType models.SeasonType, year int, games []*models.Game) error {
	f.snapshots[cacheKey(week, seasonType, year)] = games
	return nil
}

func (f *fakeSnapshotCache) GetCurrentWeek(_ context.Context) (*models.WeekInfo, error) {
	return f.currentWeek, nil
}

func (f *fakeSnapshotCache) StoreCurrentWeek(_ context.Context, info models.WeekInfo) error {
	f.currentWeek = &info
	return nil
}

// finishedGame builds a final week-9 regular season game.
func finishedGame(gameID string, homeScore, awayScore int) *models.Game {
	return &models.Game{
		GameID:         gameID,
		Week:           9,
		SeasonType:     models.Regular,
		Year:           2025,
		HomeTeamName:   "Philadelphia Eagles",
		HomeTeamAbbrev: "PHI",
		AwayTeamName:   "Dallas Cowboys",
		AwayTeamAbbrev: "DAL",
		HomeScore:      sql.NullInt32{Int32: int32(homeScore), Valid: true},
		AwayScore:      sql.NullInt32{Int32: int32(awayScore), Valid: true},
		Status:         models.StatusFinal,
		StatusDetail:   "Final",
		StartTime:      time.Date(2025, 11, 2, 18, 0, 0, 0, time.UTC),
	}
}

func newTestService(games *fakeGameStore, picks *fakePickStore, preds *fakePredictionStore, feed *fakeFeed, snapshots *fakeSnapshotCache) *Service {
	var cache SnapshotCache
	if snapshots != nil {
		cache = snapshots
	}
	return New(games, picks, preds, feed, cache)
}
