package espn

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nflpickem/pool/internal/models"

	"github.com/rs/zerolog/log"
)

// statusMap translates the feed's coarse status codes onto the
// canonical vocabulary.
var statusMap = map[string]string{
	"STATUS_SCHEDULED":      models.StatusScheduled,
	"STATUS_IN_PROGRESS":    models.StatusInProgress,
	"STATUS_HALFTIME":       models.StatusHalftime,
	"STATUS_END_PERIOD":     models.StatusEndPeriod,
	"STATUS_FINAL":          models.StatusFinal,
	"STATUS_FINAL_OVERTIME": models.StatusFinalOT,
	"STATUS_POSTPONED":      models.StatusPostponed,
	"STATUS_CANCELED":       models.StatusCanceled,
	"STATUS_SUSPENDED":      models.StatusSuspended,
	"STATUS_DELAYED":        models.StatusDelayed,
}

// mondayNightNetworks are the broadcasters that carry the featured
// Monday night game.
var mondayNightNetworks = map[string]bool{
	"ESPN": true,
	"ABC":  true,
}

// eastern is the league's home timezone, used for the Monday-night
// kickoff heuristic. The feed reports dates in UTC.
var eastern *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("ET", -5*60*60)
	}
	eastern = loc
}

// parseEvent converts one raw feed event into a canonical game record.
// The raw bytes are retained on the record for audit.
func parseEvent(raw json.RawMessage, now time.Time) (*models.Game, error) {
	var ev event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	if ev.ID == "" {
		return nil, fmt.Errorf("event has no id")
	}
	if len(ev.Competitions) == 0 {
		return nil, fmt.Errorf("event %s has no competitions", ev.ID)
	}
	comp := ev.Competitions[0]

	// Competitor order is not guaranteed; select by the homeAway tag.
	home, away, err := splitCompetitors(comp.Competitors)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", ev.ID, err)
	}

	status, detail := classifyStatus(ev.Status)
	startTime := parseEventTime(ev.Date, now)

	year := ev.Season.Year
	if year == 0 {
		year = now.Year()
	}
	seasonType := models.SeasonType(ev.Season.Type)
	if seasonType == 0 {
		seasonType = models.Regular
	}

	g := &models.Game{
		GameID:         ev.ID,
		Week:           ev.Week.Number,
		SeasonType:     seasonType,
		Year:           year,
		HomeTeamName:   home.Team.DisplayName,
		HomeTeamAbbrev: home.Team.Abbreviation,
		AwayTeamName:   away.Team.DisplayName,
		AwayTeamAbbrev: away.Team.Abbreviation,
		Status:         status,
		StatusDetail:   detail,
		StartTime:      startTime,
		IsMNF:          detectMNF(&ev, &comp, startTime),
		RawPayload:     append([]byte(nil), raw...),
	}

	if home.Score.Set {
		g.HomeScore = sql.NullInt32{Int32: int32(home.Score.Value), Valid: true}
	}
	if away.Score.Set {
		g.AwayScore = sql.NullInt32{Int32: int32(away.Score.Value), Valid: true}
	}

	if winner, ok := determineWinner(home, away, status); ok {
		g.WinningTeam = sql.NullString{String: winner, Valid: true}
	}

	if comp.Venue.FullName != "" {
		g.VenueName = sql.NullString{String: comp.Venue.FullName, Valid: true}
	}
	if comp.Venue.Address.City != "" {
		g.VenueCity = sql.NullString{String: comp.Venue.Address.City, Valid: true}
	}
	if comp.Venue.Address.State != "" {
		g.VenueState = sql.NullString{String: comp.Venue.Address.State, Valid: true}
	}

	return g, nil
}

// splitCompetitors finds the home and away blocks by their explicit tag.
func splitCompetitors(competitors []competitor) (home, away *competitor, err error) {
	for i := range competitors {
		switch competitors[i].HomeAway {
		case "home":
			home = &competitors[i]
		case "away":
			away = &competitors[i]
		}
	}
	if home == nil || away == nil {
		return nil, nil, fmt.Errorf("missing home/away competitor tags")
	}
	return home, away, nil
}

// classifyStatus maps a feed status onto the canonical vocabulary. The
// free-text detail overrides the coarse code when it mentions a final
// result; some providers update the detail before the code.
func classifyStatus(st eventStatus) (status, detail string) {
	detail = st.Type.Detail

	if detail != "" {
		lower := strings.ToLower(detail)
		if strings.Contains(lower, "final") {
			if strings.Contains(lower, "ot") || strings.Contains(lower, "overtime") {
				return models.StatusFinalOT, detail
			}
			return models.StatusFinal, detail
		}
	}

	if mapped, ok := statusMap[st.Type.Name]; ok {
		return mapped, detail
	}
	return st.Type.Name, detail
}

// determineWinner resolves the winning team name for a final game,
// preferring the feed's explicit winner flag over score comparison.
func determineWinner(home, away *competitor, status string) (string, bool) {
	if status != models.StatusFinal && status != models.StatusFinalOT {
		return "", false
	}

	if home.Winner {
		return home.Team.DisplayName, true
	}
	if away.Winner {
		return away.Team.DisplayName, true
	}

	switch {
	case home.Score.Value > away.Score.Value:
		return home.Team.DisplayName, true
	case away.Score.Value > home.Score.Value:
		return away.Team.DisplayName, true
	}
	return "", false
}

// parseEventTime parses the event date as UTC, tolerating the feed's
// variable timestamp formats. Dates more than ~180 days in the future
// are a known provider year-labeling defect and are rewritten to the
// current year.
func parseEventTime(dateStr string, now time.Time) time.Time {
	if dateStr == "" {
		return now.UTC()
	}

	// Date strings arrive with or without an explicit UTC suffix; the
	// offset can only appear after the date portion.
	normalized := dateStr
	if !strings.HasSuffix(normalized, "Z") &&
		(len(normalized) < 11 || !strings.ContainsAny(normalized[10:], "+-")) {
		normalized += "Z"
	}

	var parsed time.Time
	var err error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00"} {
		parsed, err = time.Parse(layout, normalized)
		if err == nil {
			break
		}
	}
	if err != nil {
		log.Warn().Str("date", dateStr).Msg("Failed to parse event date, using fetch time")
		return now.UTC()
	}
	parsed = parsed.UTC()

	if parsed.Sub(now) > 180*24*time.Hour {
		log.Warn().
			Str("date", dateStr).
			Int("rewritten_year", now.Year()).
			Msg("Event date far in the future, correcting provider year label")
		parsed = time.Date(now.Year(), parsed.Month(), parsed.Day(),
			parsed.Hour(), parsed.Minute(), parsed.Second(), 0, time.UTC)
	}

	return parsed
}

// detectMNF applies the Monday-night heuristic: the localized kickoff
// must fall on a Monday, and either the evening-kickoff signal or one
// of the corroborating markers (name/notes phrase, Monday-night
// broadcaster) must be present.
func detectMNF(ev *event, comp *competition, startTime time.Time) bool {
	local := startTime.In(eastern)
	if local.Weekday() != time.Monday {
		return false
	}

	if local.Hour() >= 18 {
		return true
	}

	if containsMondayNightMarker(ev.Name) {
		return true
	}
	for _, note := range comp.Notes {
		if containsMondayNightMarker(note.Headline) {
			return true
		}
	}

	for _, b := range comp.Broadcasts {
		for _, name := range b.Names {
			if mondayNightNetworks[strings.ToUpper(strings.TrimSpace(name))] {
				return true
			}
		}
	}

	return false
}

func containsMondayNightMarker(s string) bool {
	return strings.Contains(strings.ToLower(s), "monday night")
}
