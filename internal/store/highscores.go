package store

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// maxHighScores is the table cap (top-K).
const maxHighScores = 10

// HighScoreEntry is one finished run in the local score table.
type HighScoreEntry struct {
	RoundsSurvived   int     `json:"roundsSurvived"`
	TotalDamage      float64 `json:"totalDamage"`
	EnemiesDestroyed int     `json:"enemiesDestroyed"`
	ShotsFired       int     `json:"shotsFired"`
	ShotsHit         int     `json:"shotsHit"`
	HitRate          int     `json:"hitRate"` // whole percent
	MoneyEarned      int     `json:"moneyEarned"`
	BiggestHit       float64 `json:"biggestHit"`
	Timestamp        int64   `json:"timestamp"` // unix millis
}

// SaveResult reports where a run landed in the table.
type SaveResult struct {
	Saved     bool
	Rank      int // 1-based; 0 when not saved
	IsNewBest bool
}

// HighScores is the top-K table riding on a Store.
type HighScores struct {
	store Store
	log   zerolog.Logger
}

// NewHighScores wraps a store.
func NewHighScores(s Store, log zerolog.Logger) *HighScores {
	return &HighScores{store: s, log: log}
}

// Get returns the table, best first. A corrupt blob yields an empty table.
func (h *HighScores) Get() []HighScoreEntry {
	data, ok := h.store.Get(KeyHighScores)
	if !ok {
		return nil
	}
	var entries []HighScoreEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		h.log.Warn().Err(err).Msg("high score table corrupt, starting fresh")
		return nil
	}
	sortHighScores(entries)
	return entries
}

// IsNewHighScore reports whether a run with this round count would enter
// the table.
func (h *HighScores) IsNewHighScore(rounds int) bool {
	entries := h.Get()
	if len(entries) < maxHighScores {
		return true
	}
	return rounds > entries[len(entries)-1].RoundsSurvived
}

// IsNewBestScore reports whether this round count beats the table head.
func (h *HighScores) IsNewBestScore(rounds int) bool {
	entries := h.Get()
	return len(entries) == 0 || rounds > entries[0].RoundsSurvived
}

// Save inserts a run, re-sorts, trims to the cap, and persists.
func (h *HighScores) Save(entry HighScoreEntry) SaveResult {
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().UnixMilli()
	}
	isBest := h.IsNewBestScore(entry.RoundsSurvived)
	entries := append(h.Get(), entry)
	sortHighScores(entries)
	if len(entries) > maxHighScores {
		entries = entries[:maxHighScores]
	}

	rank := 0
	for i := range entries {
		if entries[i] == entry {
			rank = i + 1
			break
		}
	}
	if rank == 0 {
		return SaveResult{} // fell off the table
	}

	data, err := json.Marshal(entries)
	if err != nil {
		h.log.Warn().Err(err).Msg("high score encode failed")
		return SaveResult{}
	}
	if !h.store.Set(KeyHighScores, data) {
		return SaveResult{}
	}
	return SaveResult{Saved: true, Rank: rank, IsNewBest: isBest}
}

// sortHighScores orders by rounds desc, then damage desc.
func sortHighScores(entries []HighScoreEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].RoundsSurvived != entries[j].RoundsSurvived {
			return entries[i].RoundsSurvived > entries[j].RoundsSurvived
		}
		return entries[i].TotalDamage > entries[j].TotalDamage
	})
}
