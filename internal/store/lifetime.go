package store

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// LifetimeStats are strictly additive aggregates across every run on this
// device. BestRound is the only max-style field.
type LifetimeStats struct {
	TotalRuns        int     `json:"totalRuns"`
	TotalRounds      int     `json:"totalRounds"`
	LifetimeDamage   float64 `json:"lifetimeDamage"`
	EnemiesDestroyed int     `json:"enemiesDestroyed"`
	BestRound        int     `json:"bestRound"`
	ShotsFired       int     `json:"shotsFired"`
	ShotsHit         int     `json:"shotsHit"`
	MoneyEarned      int     `json:"moneyEarned"`
	FirstPlayDate    int64   `json:"firstPlayDate"` // unix millis
	LastPlayDate     int64   `json:"lastPlayDate"`  // unix millis
}

// Lifetime aggregates run results into the persisted lifetime record.
type Lifetime struct {
	store Store
	log   zerolog.Logger
}

// NewLifetime wraps a store.
func NewLifetime(s Store, log zerolog.Logger) *Lifetime {
	return &Lifetime{store: s, log: log}
}

// Get returns the persisted aggregates, zeroed on absence or corruption.
func (l *Lifetime) Get() LifetimeStats {
	data, ok := l.store.Get(KeyLifetimeStats)
	if !ok {
		return LifetimeStats{}
	}
	var stats LifetimeStats
	if err := json.Unmarshal(data, &stats); err != nil {
		l.log.Warn().Err(err).Msg("lifetime stats corrupt, starting fresh")
		return LifetimeStats{}
	}
	return stats
}

// RecordRun folds one finished run into the aggregates and persists.
func (l *Lifetime) RecordRun(entry HighScoreEntry, now time.Time) LifetimeStats {
	stats := l.Get()
	stats.TotalRuns++
	stats.TotalRounds += entry.RoundsSurvived
	stats.LifetimeDamage += entry.TotalDamage
	stats.EnemiesDestroyed += entry.EnemiesDestroyed
	stats.ShotsFired += entry.ShotsFired
	stats.ShotsHit += entry.ShotsHit
	stats.MoneyEarned += entry.MoneyEarned
	if entry.RoundsSurvived > stats.BestRound {
		stats.BestRound = entry.RoundsSurvived
	}
	ms := now.UnixMilli()
	if stats.FirstPlayDate == 0 {
		stats.FirstPlayDate = ms
	}
	stats.LastPlayDate = ms

	data, err := json.Marshal(stats)
	if err != nil {
		l.log.Warn().Err(err).Msg("lifetime stats encode failed")
		return stats
	}
	l.store.Set(KeyLifetimeStats, data)
	return stats
}
