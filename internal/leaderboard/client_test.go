package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validScore() Score {
	return Score{
		DeviceID:         "dev-1",
		PlayerName:       "Tester",
		RoundsSurvived:   10,
		TotalDamage:      2500,
		EnemiesDestroyed: 10,
		ShotsFired:       40,
		ShotsHit:         25,
		Timestamp:        1700000000000,
	}
}

func TestValidateScore(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Score)
		errSub string
	}{
		{"valid", func(s *Score) {}, ""},
		{"zero rounds valid", func(s *Score) {
			s.RoundsSurvived, s.TotalDamage, s.EnemiesDestroyed = 0, 0, 0
		}, ""},
		{"missing device", func(s *Score) { s.DeviceID = "" }, "deviceId"},
		{"negative rounds", func(s *Score) { s.RoundsSurvived = -1 }, "roundsSurvived"},
		{"rounds over cap", func(s *Score) { s.RoundsSurvived = 1001 }, "roundsSurvived"},
		{"negative damage", func(s *Score) { s.TotalDamage = -5 }, "totalDamage"},
		{"damage over budget", func(s *Score) { s.TotalDamage = 10*500 + 1 }, "totalDamage"},
		{"enemies over rounds", func(s *Score) { s.EnemiesDestroyed = 11 }, "enemiesDestroyed"},
		{"negative enemies", func(s *Score) { s.EnemiesDestroyed = -1 }, "enemiesDestroyed"},
		{"hits over fired", func(s *Score) { s.ShotsHit = 41 }, "shotsHit"},
		{"negative fired", func(s *Score) { s.ShotsFired = -1 }, "shotsHit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := validScore()
			tc.mutate(&s)
			err := ValidateScore(s)
			if tc.errSub == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errSub)
			}
		})
	}
}

func TestClient_SubmitScore(t *testing.T) {
	var gotAuth string
	var gotBody Score
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/scores", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(SubmitResult{Rank: 7, IsNewBest: true, IsTop100: true})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", zerolog.Nop())
	res, err := c.SubmitScore(context.Background(), validScore())
	require.NoError(t, err)
	assert.Equal(t, SubmitResult{Rank: 7, IsNewBest: true, IsTop100: true}, res)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, validScore(), gotBody)
}

func TestClient_SubmitScore_RejectsInvalidLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid score must not reach the network")
	}))
	defer srv.Close()

	c := New(srv.URL, "", zerolog.Nop())
	s := validScore()
	s.DeviceID = ""
	_, err := c.SubmitScore(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "score rejected")
}

func TestClient_SubmitScore_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "", zerolog.Nop())
	_, err := c.SubmitScore(context.Background(), validScore())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SubmitResult{})
	}))
	defer srv.Close()

	clock := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	c := New(srv.URL, "", zerolog.Nop())
	c.now = func() time.Time { return clock }

	for i := 0; i < 10; i++ {
		_, err := c.SubmitScore(context.Background(), validScore())
		require.NoError(t, err, "submission %d", i)
	}
	_, err := c.SubmitScore(context.Background(), validScore())
	require.Error(t, err, "11th submission in the window must be refused")
	assert.Contains(t, err.Error(), "rate limited")

	// The window rolls: one minute later submissions flow again.
	clock = clock.Add(rateLimitWindow + time.Second)
	_, err = c.SubmitScore(context.Background(), validScore())
	assert.NoError(t, err)
}

func TestClient_GetLeaderboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/scores", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode([]Entry{
			{Rank: 1, PlayerName: "A", RoundsSurvived: 30, TotalDamage: 9000},
			{Rank: 2, PlayerName: "B", RoundsSurvived: 22, TotalDamage: 6400},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "", zerolog.Nop())
	entries, err := c.GetLeaderboard(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].PlayerName)
}

func TestClient_GetLeaderboard_ClampsLimit(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		json.NewEncoder(w).Encode([]Entry{})
	}))
	defer srv.Close()

	c := New(srv.URL, "", zerolog.Nop())
	_, err := c.GetLeaderboard(context.Background(), 5000)
	require.NoError(t, err)
	assert.Equal(t, "100", gotLimit)

	_, err = c.GetLeaderboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "100", gotLimit)
}

func TestClient_GetPlayerRank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/scores/rank/dev-1", r.URL.Path)
		json.NewEncoder(w).Encode(PlayerRank{Rank: 42, Score: 17})
	}))
	defer srv.Close()

	c := New(srv.URL, "", zerolog.Nop())
	rank, err := c.GetPlayerRank(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, PlayerRank{Rank: 42, Score: 17}, rank)
}

func TestClient_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := New(srv.URL, "", zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.SubmitScore(ctx, validScore())
	require.Error(t, err)
}
