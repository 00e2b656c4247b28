package drops

// Rarity distribution arithmetic for supply drops. Rates are percentages
// that always sum to 100; every modifier is zero-sum against the table.

// Rarity orders drop tiers from most to least common.
type Rarity int

const (
	Common Rarity = iota
	Uncommon
	Rare
	Epic
	Legendary
	rarityCount
)

func (r Rarity) String() string {
	switch r {
	case Common:
		return "common"
	case Uncommon:
		return "uncommon"
	case Rare:
		return "rare"
	case Epic:
		return "epic"
	case Legendary:
		return "legendary"
	default:
		return "unknown"
	}
}

// DropType selects the starting rate table.
type DropType int

const (
	DropStandard DropType = iota
	DropPremium
	DropGuaranteedRare
)

func (d DropType) String() string {
	switch d {
	case DropStandard:
		return "standard"
	case DropPremium:
		return "premium"
	case DropGuaranteedRare:
		return "guaranteedRare"
	default:
		return "unknown"
	}
}

// Rates holds one percentage per rarity tier.
type Rates [rarityCount]float64

// Sum returns the total percentage.
func (r Rates) Sum() float64 {
	s := 0.0
	for _, v := range r {
		s += v
	}
	return s
}

var (
	baseRates = Rates{55, 28, 12, 4, 1}
	// Premium shifts weight out of common; the modifier is zero-sum.
	premiumModifier = [rarityCount]float64{-10, 0, 5, 3, 2}
	// Guaranteed-rare crates never roll below rare.
	guaranteedRareRates = Rates{0, 0, 70, 22, 8}
)

const (
	commonFloor = 20.0 // performance bonus can never push common below this
	// Legendary caps: the share performance may add, and the absolute tier
	// ceiling for non-guaranteed crates.
	legendaryPerfDeltaCap = 4.0
	legendaryCap          = 5.0
	// Guaranteed crates use a separate performance split with a higher cap.
	legendaryCapGuaranteed = 12.0
	guaranteedRareFloor    = 50.0

	// Pity redistribution keeps at least this much combined weight in the
	// source tiers it pulls from.
	pitySourceResidue = 5.0
)

// StartingRates returns the base table for a drop type.
func StartingRates(dropType DropType) Rates {
	switch dropType {
	case DropPremium:
		r := baseRates
		for i := range r {
			r[i] += premiumModifier[i]
		}
		return r
	case DropGuaranteedRare:
		return guaranteedRareRates
	default:
		return baseRates
	}
}

// ComputeRates builds the final distribution for one roll: starting table,
// then the performance bonus, then the two pity bonuses. All shifts are
// internal transfers, so the result still sums to 100.
func ComputeRates(dropType DropType, perfBonus, pityRareBonus, pityEpicBonus float64) Rates {
	r := StartingRates(dropType)
	r = applyPerformance(r, perfBonus, dropType == DropGuaranteedRare)
	r = applyPityBonus(r, pityRareBonus, Rare)
	r = applyPityBonus(r, pityEpicBonus, Epic)
	return r
}

// applyPerformance moves weight from common into rare/epic/legendary.
//
// The guaranteed branch has no common tier to tax, so it pulls from rare
// instead and splits 0/0.75/0.25 with a 12% legendary ceiling. This is a
// distinct rule, not a generalisation of the standard 60/30/10 split.
func applyPerformance(r Rates, bonus float64, guaranteed bool) Rates {
	if bonus <= 0 {
		return r
	}
	if guaranteed {
		take := minF(bonus, r[Rare]-guaranteedRareFloor)
		if take <= 0 {
			return r
		}
		r[Rare] -= take
		epicAdd := take * 0.75
		legAdd := take * 0.25
		if r[Legendary]+legAdd > legendaryCapGuaranteed {
			over := r[Legendary] + legAdd - legendaryCapGuaranteed
			legAdd -= over
			epicAdd += over
		}
		r[Epic] += epicAdd
		r[Legendary] += legAdd
		return r
	}

	take := minF(bonus, r[Common]-commonFloor)
	if take <= 0 {
		return r
	}
	r[Common] -= take
	rareAdd := take * 0.6
	epicAdd := take * 0.3
	legAdd := take * 0.1
	if legAdd > legendaryPerfDeltaCap {
		rareAdd += legAdd - legendaryPerfDeltaCap
		legAdd = legendaryPerfDeltaCap
	}
	if r[Legendary]+legAdd > legendaryCap {
		over := r[Legendary] + legAdd - legendaryCap
		legAdd -= over
		rareAdd += over
	}
	r[Rare] += rareAdd
	r[Epic] += epicAdd
	r[Legendary] += legAdd
	return r
}

// applyPityBonus pulls weight proportionally out of the tiers below target
// and spreads it over target-and-above with 60/30/10 weights (truncated and
// renormalised when fewer than three tiers remain). The source tiers keep a
// combined residue so no roll is ever impossible.
func applyPityBonus(r Rates, bonus float64, target Rarity) Rates {
	if bonus <= 0 {
		return r
	}
	sourceTotal := 0.0
	for t := Common; t < target; t++ {
		sourceTotal += r[t]
	}
	take := minF(bonus, sourceTotal-pitySourceResidue)
	if take <= 0 {
		return r
	}
	for t := Common; t < target; t++ {
		r[t] -= take * r[t] / sourceTotal
	}

	weights := []float64{0.6, 0.3, 0.1}
	n := int(rarityCount - target)
	if n > len(weights) {
		n = len(weights)
	}
	wsum := 0.0
	for i := 0; i < n; i++ {
		wsum += weights[i]
	}
	for i := 0; i < n; i++ {
		r[target+Rarity(i)] += take * weights[i] / wsum
	}
	return r
}

// RollRarity selects the tier whose cumulative bound first exceeds u, with
// u drawn from [0,100).
func RollRarity(r Rates, u float64) Rarity {
	cum := 0.0
	for t := Common; t < rarityCount; t++ {
		cum += r[t]
		if u < cum {
			return t
		}
	}
	return Legendary
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
