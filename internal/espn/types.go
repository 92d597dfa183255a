package espn

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Wire types for the ESPN site API scoreboard. Every field is treated
// as optional; the feed's shape varies call to call.

type scoreboardResponse struct {
	// Events kept raw so one malformed event cannot poison the batch
	// and the original payload can be stored for audit.
	Events []json.RawMessage `json:"events"`
	Week   struct {
		Number int `json:"number"`
	} `json:"week"`
	Season struct {
		Type int `json:"type"`
		Year int `json:"year"`
	} `json:"season"`
}

type event struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
	Week struct {
		Number int `json:"number"`
	} `json:"week"`
	Season struct {
		Type int `json:"type"`
		Year int `json:"year"`
	} `json:"season"`
	Competitions []competition `json:"competitions"`
	Status       eventStatus   `json:"status"`
}

type competition struct {
	Competitors []competitor `json:"competitors"`
	Venue       struct {
		FullName string `json:"fullName"`
		Address  struct {
			City  string `json:"city"`
			State string `json:"state"`
		} `json:"address"`
	} `json:"venue"`
	Notes []struct {
		Headline string `json:"headline"`
	} `json:"notes"`
	Broadcasts []struct {
		Names []string `json:"names"`
	} `json:"broadcasts"`
}

type competitor struct {
	HomeAway string    `json:"homeAway"`
	Winner   bool      `json:"winner"`
	Score    flexScore `json:"score"`
	Team     struct {
		ID           string `json:"id"`
		DisplayName  string `json:"displayName"`
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
}

type eventStatus struct {
	Type struct {
		Name      string `json:"name"`
		Detail    string `json:"detail"`
		Completed bool   `json:"completed"`
	} `json:"type"`
}

// flexScore tolerates the feed sending scores as strings, numbers, or
// nothing at all. Parse failures coerce to zero rather than erroring.
type flexScore struct {
	Value int
	Set   bool
}

func (s *flexScore) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	raw = strings.Trim(raw, `"`)
	if raw == "" {
		return nil
	}

	if n, err := strconv.Atoi(raw); err == nil {
		s.Value = n
		s.Set = true
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		s.Value = int(f)
		s.Set = true
	}
	return nil
}
