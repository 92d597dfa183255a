package service

import (
	"context"
	"fmt"
	"sort"

	"nflpickem/pool/internal/models"
)

// WeeklyStanding is one user's row in a week's leaderboard. Wins and
// losses count graded picks only; pending picks show up in
// TotalPossible but never in the record.
type WeeklyStanding struct {
	UserID        int                   `json:"user_id"`
	Wins          int                   `json:"wins"`
	Losses        int                   `json:"losses"`
	TotalPossible int                   `json:"total_possible"`
	Prediction    *models.MNFPrediction `json:"prediction,omitempty"`
}

// SeasonStanding is one user's cumulative record across all weeks.
type SeasonStanding struct {
	UserID        int `json:"user_id"`
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	TotalPossible int `json:"total_possible"`
}

// WeeklyStandings tallies the leaderboard for one week, ordered by the
// pool's tiebreak rules: wins first, then the MNF prediction. Closest
// prediction without going over beats closest over; users without a
// prediction outrank users whose prediction is still unresolved only
// in that their absence is already certain.
func (s *Service) WeeklyStandings(ctx context.Context, week int) ([]WeeklyStanding, error) {
	picks, err := s.picks.ListByWeek(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks for week %d: %w", week, err)
	}

	preds, err := s.predictions.ListByWeek(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions for week %d: %w", week, err)
	}

	predByUser := make(map[int]*models.MNFPrediction, len(preds))
	for _, p := range preds {
		predByUser[p.UserID] = p
	}

	byUser := make(map[int]*WeeklyStanding)
	for _, pick := range picks {
		row, ok := byUser[pick.UserID]
		if !ok {
			row = &WeeklyStanding{UserID: pick.UserID, Prediction: predByUser[pick.UserID]}
			byUser[pick.UserID] = row
		}
		row.TotalPossible++
		if !pick.IsCorrect.Valid {
			continue
		}
		if pick.IsCorrect.Bool {
			row.Wins++
		} else {
			row.Losses++
		}
	}

	// Users who only submitted a prediction still appear
	for userID, pred := range predByUser {
		if _, ok := byUser[userID]; !ok {
			byUser[userID] = &WeeklyStanding{UserID: userID, Prediction: pred}
		}
	}

	standings := make([]WeeklyStanding, 0, len(byUser))
	for _, row := range byUser {
		standings = append(standings, *row)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		ra, rb := predictionRank(a.Prediction), predictionRank(b.Prediction)
		if ra != rb {
			return ra < rb
		}
		if ra <= 1 && a.Prediction.PointsOff.Int32 != b.Prediction.PointsOff.Int32 {
			return a.Prediction.PointsOff.Int32 < b.Prediction.PointsOff.Int32
		}
		return a.UserID < b.UserID
	})

	return standings, nil
}

// SeasonStandings tallies cumulative records across every graded pick.
func (s *Service) SeasonStandings(ctx context.Context) ([]SeasonStanding, error) {
	picks, err := s.picks.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks: %w", err)
	}

	byUser := make(map[int]*SeasonStanding)
	for _, pick := range picks {
		row, ok := byUser[pick.UserID]
		if !ok {
			row = &SeasonStanding{UserID: pick.UserID}
			byUser[pick.UserID] = row
		}
		row.TotalPossible++
		if !pick.IsCorrect.Valid {
			continue
		}
		if pick.IsCorrect.Bool {
			row.Wins++
		} else {
			row.Losses++
		}
	}

	standings := make([]SeasonStanding, 0, len(byUser))
	for _, row := range byUser {
		standings = append(standings, *row)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		return a.UserID < b.UserID
	})

	return standings, nil
}

// predictionRank orders MNF predictions for the weekly tiebreak:
// resolved unders first, then resolved overs, then no prediction,
// then predictions still waiting on the game.
func predictionRank(p *models.MNFPrediction) int {
	switch {
	case p == nil:
		return 2
	case !p.Resolved():
		return 3
	case p.IsOver.Bool:
		return 1
	default:
		return 0
	}
}
