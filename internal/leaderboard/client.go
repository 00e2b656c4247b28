// Package leaderboard talks to the optional remote score service. The
// authoritative anti-cheat checks live server-side; the same input ranges
// are mirrored here so obviously invalid submissions never leave the device
// and offline play degrades safely.
package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	maxRoundsSurvived  = 1000
	maxDamagePerRound  = 500.0
	maxLeaderboardSize = 100

	// Client-side rate limit: submissions per device per window.
	rateLimitCount  = 10
	rateLimitWindow = time.Minute
)

// Score is the payload submitted for one finished run.
type Score struct {
	DeviceID         string  `json:"deviceId"`
	PlayerName       string  `json:"playerName"`
	RoundsSurvived   int     `json:"roundsSurvived"`
	TotalDamage      float64 `json:"totalDamage"`
	EnemiesDestroyed int     `json:"enemiesDestroyed"`
	ShotsFired       int     `json:"shotsFired"`
	ShotsHit         int     `json:"shotsHit"`
	Timestamp        int64   `json:"timestamp"`
}

// SubmitResult is the service's verdict on a submission.
type SubmitResult struct {
	Rank      int  `json:"rank,omitempty"`
	IsNewBest bool `json:"isNewBest"`
	IsTop100  bool `json:"isTop100"`
}

// Entry is one row of the public leaderboard.
type Entry struct {
	Rank           int    `json:"rank"`
	PlayerName     string `json:"playerName"`
	RoundsSurvived int    `json:"roundsSurvived"`
	TotalDamage    float64 `json:"totalDamage"`
}

// PlayerRank is a device's own standing.
type PlayerRank struct {
	Rank  int `json:"rank"`
	Score int `json:"score"`
}

// ValidateScore mirrors the server's input-range constraints. A non-nil
// error names the first violated range.
func ValidateScore(s Score) error {
	if s.DeviceID == "" {
		return fmt.Errorf("deviceId required")
	}
	if s.RoundsSurvived < 0 || s.RoundsSurvived > maxRoundsSurvived {
		return fmt.Errorf("roundsSurvived %d outside [0,%d]", s.RoundsSurvived, maxRoundsSurvived)
	}
	if s.TotalDamage < 0 || s.TotalDamage > float64(s.RoundsSurvived)*maxDamagePerRound {
		return fmt.Errorf("totalDamage %.0f exceeds %d rounds × %.0f", s.TotalDamage, s.RoundsSurvived, maxDamagePerRound)
	}
	if s.EnemiesDestroyed < 0 || s.EnemiesDestroyed > s.RoundsSurvived {
		return fmt.Errorf("enemiesDestroyed %d exceeds rounds survived %d", s.EnemiesDestroyed, s.RoundsSurvived)
	}
	if s.ShotsHit < 0 || s.ShotsFired < 0 || s.ShotsHit > s.ShotsFired {
		return fmt.Errorf("shotsHit %d exceeds shotsFired %d", s.ShotsHit, s.ShotsFired)
	}
	return nil
}

// Client handles communication with the leaderboard service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger

	mu          sync.Mutex
	submissions []time.Time // rolling window for the rate limit
	now         func() time.Time
}

// New creates a leaderboard client.
func New(baseURL, apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
		now:        time.Now,
	}
}

// allowSubmission enforces the client-side 10/minute window.
func (c *Client) allowSubmission() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	cutoff := now.Add(-rateLimitWindow)
	kept := c.submissions[:0]
	for _, t := range c.submissions {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	c.submissions = kept
	if len(c.submissions) >= rateLimitCount {
		return false
	}
	c.submissions = append(c.submissions, now)
	return true
}

// SubmitScore posts one run. Validation and rate-limit failures are
// reported without touching the network.
func (c *Client) SubmitScore(ctx context.Context, s Score) (SubmitResult, error) {
	if err := ValidateScore(s); err != nil {
		return SubmitResult{}, fmt.Errorf("score rejected: %w", err)
	}
	if !c.allowSubmission() {
		return SubmitResult{}, fmt.Errorf("rate limited: %d submissions per %s", rateLimitCount, rateLimitWindow)
	}

	var out SubmitResult
	if err := c.post(ctx, "/api/v1/scores", s, &out); err != nil {
		return SubmitResult{}, err
	}
	return out, nil
}

// GetLeaderboard fetches the top entries, capped at 100.
func (c *Client) GetLeaderboard(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}
	var out []Entry
	url := fmt.Sprintf("%s/api/v1/scores?limit=%d", c.baseURL, limit)
	if err := c.get(ctx, url, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPlayerRank fetches a device's own standing.
func (c *Client) GetPlayerRank(ctx context.Context, deviceID string) (PlayerRank, error) {
	var out PlayerRank
	url := c.baseURL + "/api/v1/scores/rank/" + deviceID
	if err := c.get(ctx, url, &out); err != nil {
		return PlayerRank{}, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
