package game

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Layout constants. Slots store a fixed number of normalised samples and are
// resampled to the runtime field width when a round is built.
const (
	layoutVersion     = 1
	layoutSampleCount = 240

	// The player tank always anchors at this normalised x.
	playerAnchorXNorm = 0.20
	// Minimum horizontal pixel gap between the player anchor and the enemy
	// anchor, expressed in design pixels.
	minEnemySeparationPx = 300
)

// TerrainLayoutSlot is one canonical level layout: normalised ground samples
// plus the enemy spawn anchor.
type TerrainLayoutSlot struct {
	TerrainSamples []float64 `json:"terrainSamples"` // layoutSampleCount values in [0,1]
	EnemyXNorm     float64   `json:"enemyXNorm"`
}

// GlobalLayoutConfig holds the layout-wide tuning shared by every slot.
type GlobalLayoutConfig struct {
	PlayerAnchorXNorm   float64 `json:"playerAnchorXNorm"`
	MinSlingClearancePx float64 `json:"minSlingClearancePx"`
	AutoFixRadiusPx     float64 `json:"autoFixRadiusPx"`
}

// DefaultGlobalLayoutConfig is the shipped layout tuning.
func DefaultGlobalLayoutConfig() GlobalLayoutConfig {
	return GlobalLayoutConfig{
		PlayerAnchorXNorm:   playerAnchorXNorm,
		MinSlingClearancePx: 220,
		AutoFixRadiusPx:     90,
	}
}

// LayoutPayload is the importable JSON form of a full layout set.
type LayoutPayload struct {
	Version int `json:"version"`
	Meta    struct {
		SampleCount   int    `json:"sampleCount"`
		GeneratedFrom string `json:"generatedFrom"`
		GeneratedAt   string `json:"generatedAt"`
	} `json:"meta"`
	Global GlobalLayoutConfig           `json:"global"`
	Slots  map[string]TerrainLayoutSlot `json:"slots"`
}

// LayoutValidation is the value-typed result of payload validation. It never
// carries a Go error: a bad payload yields Valid=false plus messages.
type LayoutValidation struct {
	Valid  bool
	Errors []string
}

// LayoutStore holds the canonical per-slot layouts and the global config.
type LayoutStore struct {
	global GlobalLayoutConfig
	slots  map[string]TerrainLayoutSlot
}

// NewLayoutStore builds a store populated with the built-in slots for
// worlds 1–3 (four levels each), generated deterministically.
func NewLayoutStore() *LayoutStore {
	ls := &LayoutStore{
		global: DefaultGlobalLayoutConfig(),
		slots:  make(map[string]TerrainLayoutSlot),
	}
	for world := 1; world <= 3; world++ {
		for level := 1; level <= 4; level++ {
			id := fmt.Sprintf("world%d-level%d", world, level)
			ls.slots[id] = builtinSlot(world, level)
		}
	}
	return ls
}

// builtinSlot derives a slot from the terrain generator so shipped layouts
// and generated rounds share one look. Higher worlds get rougher ground and
// enemies pushed further right.
func builtinSlot(world, level int) TerrainLayoutSlot {
	seed := int64(world*1000 + level*17)
	opts := TerrainGenOptions{
		Roughness:        0.40 + 0.08*float64(world-1),
		Seed:             seed,
		MinHeightPercent: 0.18,
		MaxHeightPercent: 0.72,
	}
	t := GenerateTerrain(layoutSampleCount, 1000, opts)
	samples := make([]float64, layoutSampleCount)
	for i, h := range t.Heights() {
		samples[i] = clamp01(h / 1000)
	}
	enemyX := 0.68 + 0.06*float64(level-1)
	if enemyX > 0.92 {
		enemyX = 0.92
	}
	return TerrainLayoutSlot{TerrainSamples: samples, EnemyXNorm: enemyX}
}

// Global returns the layout-wide config.
func (ls *LayoutStore) Global() GlobalLayoutConfig { return ls.global }

// Slot returns the layout for the given id, if present.
func (ls *LayoutStore) Slot(id string) (TerrainLayoutSlot, bool) {
	s, ok := ls.slots[id]
	return s, ok
}

// SlotIDs returns all slot ids in sorted order.
func (ls *LayoutStore) SlotIDs() []string {
	ids := make([]string, 0, len(ls.slots))
	for id := range ls.slots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EnemyAnchorX returns the enemy spawn column for a slot at the given width,
// clamped so the enemy never crowds the player anchor.
func (ls *LayoutStore) EnemyAnchorX(id string, width int) int {
	slot, ok := ls.slots[id]
	if !ok {
		return int(0.8 * float64(width))
	}
	minNorm := ls.global.PlayerAnchorXNorm + float64(minEnemySeparationPx)/float64(width)
	norm := slot.EnemyXNorm
	if norm < minNorm {
		norm = minNorm
	}
	col := int(norm * float64(width-1))
	if col >= width {
		col = width - 1
	}
	return col
}

// PlayerAnchorX returns the player spawn column at the given width.
func (ls *LayoutStore) PlayerAnchorX(width int) int {
	return int(ls.global.PlayerAnchorXNorm * float64(width-1))
}

// BuildTerrainFromSlot resamples a slot's normalised heights to a runtime
// terrain and applies the player-clearance guardrail. Unknown slot ids
// return an error.
func (ls *LayoutStore) BuildTerrainFromSlot(id string, width, height int) (*Terrain, error) {
	slot, ok := ls.slots[id]
	if !ok {
		return nil, fmt.Errorf("layout: unknown slot %q", id)
	}
	px := resampleLinear(slot.TerrainSamples, width)
	for i := range px {
		px[i] = clamp01(px[i]) * float64(height)
	}
	ls.applyClearanceGuardrail(px, width)
	return NewTerrainFromHeights(width, height, px), nil
}

// applyClearanceGuardrail raises a cosine bump around the player anchor when
// the slot leaves too little room to sling a shot, then smooths the seam.
// The anchor column ends exactly at the minimum clearance.
func (ls *LayoutStore) applyClearanceGuardrail(px []float64, width int) {
	anchor := ls.PlayerAnchorX(width)
	if anchor < 0 || anchor >= len(px) {
		return
	}
	clearance := px[anchor] + tankHalfHeight
	if clearance >= ls.global.MinSlingClearancePx {
		return
	}
	target := ls.global.MinSlingClearancePx - tankHalfHeight
	delta := target - px[anchor]
	radius := ls.global.AutoFixRadiusPx
	if radius < 1 {
		radius = 1
	}

	lo := maxI(0, anchor-int(radius))
	hi := minI(len(px)-1, anchor+int(radius))
	for x := lo; x <= hi; x++ {
		dist := math.Abs(float64(x - anchor))
		if dist > radius {
			continue
		}
		// Cosine falloff: full delta at the anchor, zero at the rim.
		w := 0.5 * (1 + math.Cos(math.Pi*dist/radius))
		px[x] += delta * w
	}

	// Two smoothing passes over the bump footprint: anchor blends gently,
	// everything else harder, so the seam reads as natural ground.
	for pass := 0; pass < 2; pass++ {
		prev := make([]float64, len(px))
		copy(prev, px)
		for x := maxI(lo, 1); x <= minI(hi, len(px)-2); x++ {
			blend := 0.45
			if x == anchor {
				blend = 0.30
			}
			avg := (prev[x-1] + prev[x] + prev[x+1]) / 3
			px[x] = prev[x]*(1-blend) + avg*blend
		}
	}

	// Smoothing must not re-open the clearance gap.
	px[anchor] = target
}

// ValidateLayoutPayload checks an imported payload. It never returns a Go
// error: structural problems come back as messages.
func ValidateLayoutPayload(data []byte) (LayoutPayload, LayoutValidation) {
	var p LayoutPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, LayoutValidation{Errors: []string{fmt.Sprintf("payload is not valid JSON: %v", err)}}
	}
	var errs []string
	if p.Version != layoutVersion {
		errs = append(errs, fmt.Sprintf("unsupported version %d (want %d)", p.Version, layoutVersion))
	}
	if p.Meta.SampleCount != layoutSampleCount {
		errs = append(errs, fmt.Sprintf("sampleCount %d (want %d)", p.Meta.SampleCount, layoutSampleCount))
	}
	if !finiteNonNeg(p.Global.MinSlingClearancePx) || !finiteNonNeg(p.Global.AutoFixRadiusPx) {
		errs = append(errs, "global clearance/radius must be finite and non-negative")
	}
	if p.Global.PlayerAnchorXNorm < 0 || p.Global.PlayerAnchorXNorm > 1 ||
		math.IsNaN(p.Global.PlayerAnchorXNorm) {
		errs = append(errs, "playerAnchorXNorm out of [0,1]")
	}
	for id, slot := range p.Slots {
		if len(slot.TerrainSamples) != layoutSampleCount {
			errs = append(errs, fmt.Sprintf("slot %s: %d samples (want %d)", id, len(slot.TerrainSamples), layoutSampleCount))
			continue
		}
		for i, v := range slot.TerrainSamples {
			if math.IsNaN(v) || v < 0 || v > 1 {
				errs = append(errs, fmt.Sprintf("slot %s: sample %d out of [0,1]", id, i))
				break
			}
		}
		if slot.EnemyXNorm < 0 || slot.EnemyXNorm > 1 || math.IsNaN(slot.EnemyXNorm) {
			errs = append(errs, fmt.Sprintf("slot %s: enemyXNorm out of [0,1]", id))
		}
	}
	return p, LayoutValidation{Valid: len(errs) == 0, Errors: errs}
}

// ImportPayload replaces the store's slots and global config from a
// validated payload. Invalid payloads leave the store untouched.
func (ls *LayoutStore) ImportPayload(data []byte) LayoutValidation {
	p, v := ValidateLayoutPayload(data)
	if !v.Valid {
		return v
	}
	ls.global = p.Global
	ls.slots = make(map[string]TerrainLayoutSlot, len(p.Slots))
	for id, slot := range p.Slots {
		samples := make([]float64, len(slot.TerrainSamples))
		copy(samples, slot.TerrainSamples)
		ls.slots[id] = TerrainLayoutSlot{TerrainSamples: samples, EnemyXNorm: slot.EnemyXNorm}
	}
	return v
}

func finiteNonNeg(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func minI(a, b int) int {
	if a < b {
		return a
	}
	return b
}
