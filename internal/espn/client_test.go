package espn

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nflpickem/pool/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreboardBody(events ...string) string {
	body := `{"week": {"number": 10}, "season": {"type": 2, "year": 2025}, "events": [`
	for i, ev := range events {
		if i > 0 {
			body += ","
		}
		body += ev
	}
	return body + `]}`
}

func finalEvent(id string) string {
	return string(eventJSON(id, "STATUS_FINAL", "Final", `"24"`, `"17"`, "2025-11-09T18:00Z", ""))
}

func TestClient_FetchWeek(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("week"))
		assert.Equal(t, "2", r.URL.Query().Get("seasontype"))
		assert.Equal(t, "2025", r.URL.Query().Get("year"))
		fmt.Fprint(w, scoreboardBody(finalEvent("501")))
	}))
	defer srv.Close()

	c := NewClient([]string{srv.URL}, 5*time.Second)
	games, err := c.FetchWeek(context.Background(), 10, models.Regular, 2025)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "501", games[0].GameID)
}

func TestClient_FetchWeek_FallsBackOnError(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, scoreboardBody(finalEvent("502")))
	}))
	defer good.Close()

	c := NewClient([]string{bad.URL, good.URL}, 5*time.Second)
	games, err := c.FetchWeek(context.Background(), 10, models.Regular, 2025)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "502", games[0].GameID)
}

func TestClient_FetchWeek_FallsBackOnEmpty(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, scoreboardBody())
	}))
	defer empty.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, scoreboardBody(finalEvent("503")))
	}))
	defer good.Close()

	c := NewClient([]string{empty.URL, good.URL}, 5*time.Second)
	games, err := c.FetchWeek(context.Background(), 10, models.Regular, 2025)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "503", games[0].GameID)
}

func TestClient_FetchWeek_AllEndpointsFail(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()

	c := NewClient([]string{bad.URL, bad.URL}, 5*time.Second)
	_, err := c.FetchWeek(context.Background(), 10, models.Regular, 2025)
	assert.Error(t, err)
}

func TestClient_FetchWeek_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, scoreboardBody(finalEvent("504")))
	}))
	defer slow.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, scoreboardBody(finalEvent("505")))
	}))
	defer good.Close()

	// The per-attempt timeout bounds the slow mirror; the next one serves.
	c := NewClient([]string{slow.URL, good.URL}, 50*time.Millisecond)
	games, err := c.FetchWeek(context.Background(), 10, models.Regular, 2025)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "505", games[0].GameID)
}

func TestClient_FetchWeek_DropsBadEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, scoreboardBody(`{"id": ""}`, finalEvent("506")))
	}))
	defer srv.Close()

	c := NewClient([]string{srv.URL}, 5*time.Second)
	games, err := c.FetchWeek(context.Background(), 10, models.Regular, 2025)
	require.NoError(t, err)
	require.Len(t, games, 1, "bad event should be dropped, not abort the batch")
	assert.Equal(t, "506", games[0].GameID)
}

func TestClient_CurrentWeek(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, scoreboardBody(finalEvent("507")))
	}))
	defer srv.Close()

	c := NewClient([]string{srv.URL}, 5*time.Second)
	info, err := c.CurrentWeek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, info.Week)
	assert.Equal(t, models.Regular, info.SeasonType)
	assert.Equal(t, 2025, info.Year)
}

func TestClient_CurrentWeek_Offseason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"events": []}`)
	}))
	defer srv.Close()

	c := NewClient([]string{srv.URL}, 5*time.Second)
	info, err := c.CurrentWeek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, info.Week)
	assert.Equal(t, models.Regular, info.SeasonType)
	assert.NotZero(t, info.Year)
}
