package drops

// PerformanceTracker converts in-run skill signals into a drop-rate bonus.
// The total is clamped to [0, 50] before the rate engine spends it.
type PerformanceTracker struct {
	currentWinStreak   int
	sessionShotsFired  int
	sessionShotsHit    int
	consecutiveMisses  int
	flawlessRound      bool
	damageTakenRound   float64
	heavyDamageRound   bool
	currentRound       int
	achievementPending bool
}

// Bonus/penalty tuning.
const (
	winStreakBonusPer   = 5.0
	winStreakBonusCap   = 25.0
	flawlessBonus       = 10.0
	accuracyBonusPer10  = 3.0
	lateRoundBonusPer   = 1.0
	achievementBonus    = 15.0
	heavyDamagePenalty  = 5.0
	missStreakPenalty   = 3.0
	missStreakThreshold = 5
	totalBonusCap       = 50.0
)

// NewPerformanceTracker returns a zeroed tracker.
func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{flawlessRound: true}
}

// TotalBonus sums every active bonus and penalty, clamped to [0, 50].
func (p *PerformanceTracker) TotalBonus() float64 {
	b := 0.0

	streak := float64(p.currentWinStreak) * winStreakBonusPer
	if streak > winStreakBonusCap {
		streak = winStreakBonusCap
	}
	b += streak

	if p.flawlessRound {
		b += flawlessBonus
	}

	if p.sessionShotsFired > 0 {
		acc := float64(p.sessionShotsHit) / float64(p.sessionShotsFired) * 100
		if acc > 50 {
			b += float64(int((acc-50)/10)) * accuracyBonusPer10
		}
	}

	if p.currentRound > 5 {
		b += float64(p.currentRound-5) * lateRoundBonusPer
	}

	if p.achievementPending {
		b += achievementBonus
	}

	if p.heavyDamageRound {
		b -= heavyDamagePenalty
	}
	if p.consecutiveMisses >= missStreakThreshold {
		b -= missStreakPenalty
	}

	if b < 0 {
		return 0
	}
	if b > totalBonusCap {
		return totalBonusCap
	}
	return b
}

// UpdateWinStreak extends or breaks the streak at round end.
func (p *PerformanceTracker) UpdateWinStreak(won bool) {
	if won {
		p.currentWinStreak++
	} else {
		p.currentWinStreak = 0
	}
}

// UpdateAccuracy records one resolved shot.
func (p *PerformanceTracker) UpdateAccuracy(hit bool) {
	p.sessionShotsFired++
	if hit {
		p.sessionShotsHit++
		p.consecutiveMisses = 0
	} else {
		p.consecutiveMisses++
	}
}

// OnDamageTaken accumulates round damage and flips the flawless/heavy flags.
func (p *PerformanceTracker) OnDamageTaken(d, maxHP float64) {
	if d <= 0 {
		return
	}
	p.flawlessRound = false
	p.damageTakenRound += d
	if maxHP > 0 && p.damageTakenRound >= maxHP*0.5 {
		p.heavyDamageRound = true
	}
}

// OnRoundStart resets the per-round flags.
func (p *PerformanceTracker) OnRoundStart(round int) {
	p.currentRound = round
	p.flawlessRound = true
	p.damageTakenRound = 0
	p.heavyDamageRound = false
}

// OnRoundEnd folds the round outcome into the streak.
func (p *PerformanceTracker) OnRoundEnd(won bool) {
	p.UpdateWinStreak(won)
}

// OnAchievementUnlocked arms the single-use achievement bonus.
func (p *PerformanceTracker) OnAchievementUnlocked() {
	p.achievementPending = true
}

// ConsumeAchievementBonus clears the single-use bonus after a roll spends it.
func (p *PerformanceTracker) ConsumeAchievementBonus() {
	p.achievementPending = false
}

// ResetPerformanceOnNewRun zeroes everything that does not persist across
// runs. (Pity counters live in PityTracker and do persist.)
func (p *PerformanceTracker) ResetPerformanceOnNewRun() {
	*p = PerformanceTracker{flawlessRound: true}
}

// WinStreak returns the current consecutive-round win streak.
func (p *PerformanceTracker) WinStreak() int { return p.currentWinStreak }

// ConsecutiveMisses returns the current miss streak.
func (p *PerformanceTracker) ConsecutiveMisses() int { return p.consecutiveMisses }
