package drops

// PityTracker counts drops that rolled below rare and below epic. The
// counters tilt the rarity distribution upward the longer the player goes
// without a good drop, and past a hard threshold they guarantee one. Pity
// state survives across runs.
type PityTracker struct {
	dropsWithoutRare int
	dropsWithoutEpic int
}

// pityStep is one row of a pity schedule: at or past Threshold drops the
// additive Bonus applies; a Guarantee row routes through the guarantee path
// instead of the additive bonus.
type pityStep struct {
	Threshold int
	Bonus     float64
	Guarantee bool
}

// Additive rare+ bonus caps at 30; the 20-drop row is a guarantee, never an
// additive bonus.
var rarePitySchedule = []pityStep{
	{Threshold: 20, Guarantee: true},
	{Threshold: 15, Bonus: 30},
	{Threshold: 10, Bonus: 15},
	{Threshold: 5, Bonus: 5},
}

var epicPitySchedule = []pityStep{
	{Threshold: 50, Guarantee: true},
	{Threshold: 35, Bonus: 10},
	{Threshold: 25, Bonus: 5},
	{Threshold: 15, Bonus: 2},
}

// NewPityTracker returns a tracker with zeroed counters.
func NewPityTracker() *PityTracker {
	return &PityTracker{}
}

// DropsWithoutRare returns the rare pity counter.
func (p *PityTracker) DropsWithoutRare() int { return p.dropsWithoutRare }

// DropsWithoutEpic returns the epic pity counter.
func (p *PityTracker) DropsWithoutEpic() int { return p.dropsWithoutEpic }

func bonusFor(schedule []pityStep, count int) float64 {
	for _, step := range schedule {
		if count >= step.Threshold && !step.Guarantee {
			return step.Bonus
		}
	}
	return 0
}

// RareBonus returns the additive rare+ percentage for the current counter.
func (p *PityTracker) RareBonus() float64 {
	return bonusFor(rarePitySchedule, p.dropsWithoutRare)
}

// EpicBonus returns the additive epic+ percentage for the current counter.
func (p *PityTracker) EpicBonus() float64 {
	return bonusFor(epicPitySchedule, p.dropsWithoutEpic)
}

// GuaranteedMinRarity reports the minimum rarity the next drop must reach,
// if a guarantee threshold has been hit. The epic guarantee dominates.
func (p *PityTracker) GuaranteedMinRarity() (Rarity, bool) {
	if p.dropsWithoutEpic >= epicPitySchedule[0].Threshold {
		return Epic, true
	}
	if p.dropsWithoutRare >= rarePitySchedule[0].Threshold {
		return Rare, true
	}
	return Common, false
}

// OnDropResult updates both counters for a resolved drop.
func (p *PityTracker) OnDropResult(r Rarity) {
	if r >= Rare {
		p.dropsWithoutRare = 0
	} else {
		p.dropsWithoutRare++
	}
	if r >= Epic {
		p.dropsWithoutEpic = 0
	} else {
		p.dropsWithoutEpic++
	}
}

// PityState is the persisted form of the tracker.
type PityState struct {
	DropsWithoutRare int `json:"dropsWithoutRare"`
	DropsWithoutEpic int `json:"dropsWithoutEpic"`
}

// Snapshot returns the persistable counter state.
func (p *PityTracker) Snapshot() PityState {
	return PityState{
		DropsWithoutRare: p.dropsWithoutRare,
		DropsWithoutEpic: p.dropsWithoutEpic,
	}
}

// Restore loads persisted counters, clamping negatives to zero.
func (p *PityTracker) Restore(s PityState) {
	p.dropsWithoutRare = maxI(0, s.DropsWithoutRare)
	p.dropsWithoutEpic = maxI(0, s.DropsWithoutEpic)
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}
