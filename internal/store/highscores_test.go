package store

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHighScores() *HighScores {
	return NewHighScores(NewMemoryStore(), zerolog.Nop())
}

func TestHighScores_EmptyTable(t *testing.T) {
	h := newTestHighScores()
	assert.Empty(t, h.Get())
	assert.True(t, h.IsNewHighScore(0), "any score enters an empty table")
	assert.True(t, h.IsNewBestScore(1))
}

func TestHighScores_SortByRoundsThenDamage(t *testing.T) {
	h := newTestHighScores()
	rounds := []int{3, 5, 1, 7, 5}
	damage := []float64{100, 200, 50, 300, 250}
	for i := range rounds {
		res := h.Save(HighScoreEntry{RoundsSurvived: rounds[i], TotalDamage: damage[i], Timestamp: int64(i + 1)})
		require.True(t, res.Saved, "entry %d", i)
	}

	got := h.Get()
	require.Len(t, got, 5)
	wantRounds := []int{7, 5, 5, 3, 1}
	wantDamage := []float64{300, 250, 200, 100, 50}
	for i := range got {
		assert.Equal(t, wantRounds[i], got[i].RoundsSurvived, "row %d", i)
		assert.Equal(t, wantDamage[i], got[i].TotalDamage, "row %d", i)
	}
}

func TestHighScores_SaveReportsRankAndBest(t *testing.T) {
	h := newTestHighScores()

	res := h.Save(HighScoreEntry{RoundsSurvived: 5, Timestamp: 1})
	assert.Equal(t, SaveResult{Saved: true, Rank: 1, IsNewBest: true}, res)

	res = h.Save(HighScoreEntry{RoundsSurvived: 3, Timestamp: 2})
	assert.Equal(t, SaveResult{Saved: true, Rank: 2, IsNewBest: false}, res)

	res = h.Save(HighScoreEntry{RoundsSurvived: 8, Timestamp: 3})
	assert.Equal(t, SaveResult{Saved: true, Rank: 1, IsNewBest: true}, res)
}

func TestHighScores_TrimsToTen(t *testing.T) {
	h := newTestHighScores()
	for i := 1; i <= 12; i++ {
		h.Save(HighScoreEntry{RoundsSurvived: i, Timestamp: int64(i)})
	}

	got := h.Get()
	require.Len(t, got, 10)
	assert.Equal(t, 12, got[0].RoundsSurvived)
	assert.Equal(t, 3, got[9].RoundsSurvived, "rounds 1 and 2 fell off")

	// A run below the current floor does not enter a full table.
	assert.False(t, h.IsNewHighScore(2))
	assert.True(t, h.IsNewHighScore(4))
	res := h.Save(HighScoreEntry{RoundsSurvived: 2, Timestamp: 99})
	assert.False(t, res.Saved)
	assert.Len(t, h.Get(), 10)
}

func TestHighScores_CorruptBlobStartsFresh(t *testing.T) {
	s := NewMemoryStore()
	s.Set(KeyHighScores, []byte("not json"))
	h := NewHighScores(s, zerolog.Nop())

	assert.Empty(t, h.Get())
	res := h.Save(HighScoreEntry{RoundsSurvived: 4, Timestamp: 1})
	assert.True(t, res.Saved)
	assert.Len(t, h.Get(), 1)
}

func TestHighScores_SaveStampsMissingTimestamp(t *testing.T) {
	h := newTestHighScores()
	res := h.Save(HighScoreEntry{RoundsSurvived: 1})
	require.True(t, res.Saved)
	got := h.Get()
	require.Len(t, got, 1)
	assert.NotZero(t, got[0].Timestamp)
}
