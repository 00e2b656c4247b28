package game

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestBuiltinSlots(t *testing.T) {
	ls := NewLayoutStore()
	ids := ls.SlotIDs()
	if len(ids) != 12 {
		t.Fatalf("builtin slot count = %d, want 12", len(ids))
	}
	for _, id := range ids {
		slot, ok := ls.Slot(id)
		if !ok {
			t.Fatalf("SlotIDs returned missing slot %s", id)
		}
		if len(slot.TerrainSamples) != layoutSampleCount {
			t.Errorf("slot %s: %d samples", id, len(slot.TerrainSamples))
		}
		for i, v := range slot.TerrainSamples {
			if v < 0 || v > 1 {
				t.Errorf("slot %s sample %d = %v outside [0,1]", id, i, v)
				break
			}
		}
		if slot.EnemyXNorm < 0 || slot.EnemyXNorm > 1 {
			t.Errorf("slot %s enemyXNorm = %v", id, slot.EnemyXNorm)
		}
	}
}

func TestEnemySeparation(t *testing.T) {
	ls := NewLayoutStore()
	for _, id := range ls.SlotIDs() {
		player := ls.PlayerAnchorX(DesignWidth)
		enemy := ls.EnemyAnchorX(id, DesignWidth)
		if enemy-player < minEnemySeparationPx {
			t.Errorf("slot %s: separation %d < %d", id, enemy-player, minEnemySeparationPx)
		}
		if enemy >= DesignWidth {
			t.Errorf("slot %s: enemy anchor %d outside field", id, enemy)
		}
	}
}

func TestEnemySeparationClampsCrowdedSlot(t *testing.T) {
	ls := NewLayoutStore()
	// Inject a slot whose enemy anchor sits on top of the player.
	ls.slots["crowded"] = TerrainLayoutSlot{
		TerrainSamples: make([]float64, layoutSampleCount),
		EnemyXNorm:     0.21,
	}
	player := ls.PlayerAnchorX(DesignWidth)
	enemy := ls.EnemyAnchorX("crowded", DesignWidth)
	if enemy-player < minEnemySeparationPx {
		t.Errorf("crowded slot not pushed out: separation %d", enemy-player)
	}
}

// The clearance guardrail must leave the player anchor column at exactly the
// minimum clearance when the slot ground is too low, and leave compliant
// slots untouched.
func TestClearanceGuardrail(t *testing.T) {
	ls := NewLayoutStore()

	low := make([]float64, layoutSampleCount)
	for i := range low {
		low[i] = 0.05 // 40px of ground at an 800px field: far below the minimum
	}
	ls.slots["low-ground"] = TerrainLayoutSlot{TerrainSamples: low, EnemyXNorm: 0.8}

	terr, err := ls.BuildTerrainFromSlot("low-ground", DesignWidth, DesignHeight)
	if err != nil {
		t.Fatalf("BuildTerrainFromSlot failed: %v", err)
	}

	anchor := ls.PlayerAnchorX(DesignWidth)
	h, _ := terr.Height(anchor)
	want := ls.Global().MinSlingClearancePx - tankHalfHeight
	if math.Abs(h-want) > 1e-9 {
		t.Errorf("anchor height = %v, want exactly %v", h, want)
	}

	// The bump must fade out: ground beyond the fix radius stays put.
	radius := int(ls.Global().AutoFixRadiusPx)
	for _, x := range []int{anchor - radius - 5, anchor + radius + 5} {
		h, _ := terr.Height(x)
		if math.Abs(h-0.05*float64(DesignHeight)) > 1e-6 {
			t.Errorf("column %d outside fix radius changed: %v", x, h)
		}
	}
}

func TestClearanceGuardrailNoopWhenCompliant(t *testing.T) {
	ls := NewLayoutStore()
	high := make([]float64, layoutSampleCount)
	for i := range high {
		high[i] = 0.5 // 400px of ground: well clear of the minimum
	}
	ls.slots["high-ground"] = TerrainLayoutSlot{TerrainSamples: high, EnemyXNorm: 0.8}

	terr, err := ls.BuildTerrainFromSlot("high-ground", DesignWidth, DesignHeight)
	if err != nil {
		t.Fatalf("BuildTerrainFromSlot failed: %v", err)
	}
	anchor := ls.PlayerAnchorX(DesignWidth)
	h, _ := terr.Height(anchor)
	if math.Abs(h-0.5*float64(DesignHeight)) > 1e-9 {
		t.Errorf("compliant slot modified at anchor: %v", h)
	}
}

func TestBuildTerrainUnknownSlot(t *testing.T) {
	ls := NewLayoutStore()
	if _, err := ls.BuildTerrainFromSlot("nope", DesignWidth, DesignHeight); err == nil {
		t.Error("unknown slot should return an error")
	}
}

func validPayload() LayoutPayload {
	var p LayoutPayload
	p.Version = layoutVersion
	p.Meta.SampleCount = layoutSampleCount
	p.Global = DefaultGlobalLayoutConfig()
	p.Slots = map[string]TerrainLayoutSlot{
		"world1-level1": {TerrainSamples: make([]float64, layoutSampleCount), EnemyXNorm: 0.8},
	}
	return p
}

func TestValidateLayoutPayload(t *testing.T) {
	data, _ := json.Marshal(validPayload())
	_, v := ValidateLayoutPayload(data)
	if !v.Valid {
		t.Fatalf("valid payload rejected: %v", v.Errors)
	}

	cases := []struct {
		name    string
		mutate  func(*LayoutPayload)
		wantErr string
	}{
		{"wrong version", func(p *LayoutPayload) { p.Version = 2 }, "unsupported version"},
		{"wrong sample count meta", func(p *LayoutPayload) { p.Meta.SampleCount = 100 }, "sampleCount"},
		{"short samples", func(p *LayoutPayload) {
			p.Slots["bad"] = TerrainLayoutSlot{TerrainSamples: make([]float64, 3), EnemyXNorm: 0.5}
		}, "3 samples"},
		{"sample out of range", func(p *LayoutPayload) {
			s := make([]float64, layoutSampleCount)
			s[7] = 1.5
			p.Slots["bad"] = TerrainLayoutSlot{TerrainSamples: s, EnemyXNorm: 0.5}
		}, "out of [0,1]"},
		{"enemy out of range", func(p *LayoutPayload) {
			p.Slots["bad"] = TerrainLayoutSlot{TerrainSamples: make([]float64, layoutSampleCount), EnemyXNorm: 1.2}
		}, "enemyXNorm"},
		{"negative clearance", func(p *LayoutPayload) { p.Global.MinSlingClearancePx = -1 }, "non-negative"},
		{"anchor out of range", func(p *LayoutPayload) { p.Global.PlayerAnchorXNorm = 1.5 }, "playerAnchorXNorm"},
	}
	for _, tc := range cases {
		p := validPayload()
		tc.mutate(&p)
		data, _ := json.Marshal(p)
		_, v := ValidateLayoutPayload(data)
		if v.Valid {
			t.Errorf("%s: payload accepted", tc.name)
			continue
		}
		found := false
		for _, e := range v.Errors {
			if strings.Contains(e, tc.wantErr) {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: errors %v missing %q", tc.name, v.Errors, tc.wantErr)
		}
	}
}

func TestValidateLayoutPayloadBadJSON(t *testing.T) {
	_, v := ValidateLayoutPayload([]byte("{nope"))
	if v.Valid {
		t.Fatal("malformed JSON accepted")
	}
	if len(v.Errors) == 0 {
		t.Fatal("no error messages for malformed JSON")
	}
}

func TestImportPayloadReplacesSlots(t *testing.T) {
	ls := NewLayoutStore()
	p := validPayload()
	p.Slots["custom"] = TerrainLayoutSlot{TerrainSamples: make([]float64, layoutSampleCount), EnemyXNorm: 0.7}
	data, _ := json.Marshal(p)

	v := ls.ImportPayload(data)
	if !v.Valid {
		t.Fatalf("import rejected: %v", v.Errors)
	}
	if len(ls.SlotIDs()) != len(p.Slots) {
		t.Errorf("store has %d slots after import, want %d", len(ls.SlotIDs()), len(p.Slots))
	}
	if _, ok := ls.Slot("custom"); !ok {
		t.Error("imported slot missing")
	}
}

func TestImportPayloadInvalidLeavesStore(t *testing.T) {
	ls := NewLayoutStore()
	before := len(ls.SlotIDs())

	p := validPayload()
	p.Version = 99
	data, _ := json.Marshal(p)
	if v := ls.ImportPayload(data); v.Valid {
		t.Fatal("invalid payload accepted")
	}
	if len(ls.SlotIDs()) != before {
		t.Error("invalid import mutated the store")
	}
}

func TestResampleMatchesEndpoints(t *testing.T) {
	ls := NewLayoutStore()
	samples := make([]float64, layoutSampleCount)
	for i := range samples {
		samples[i] = 0.5
	}
	samples[0] = 0.3
	samples[layoutSampleCount-1] = 0.7
	ls.slots["ramp"] = TerrainLayoutSlot{TerrainSamples: samples, EnemyXNorm: 0.9}

	terr, err := ls.BuildTerrainFromSlot("ramp", 960, DesignHeight)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	first, _ := terr.Height(0)
	last, _ := terr.Height(959)
	if math.Abs(first-0.3*DesignHeight) > 1e-6 {
		t.Errorf("left endpoint = %v, want %v", first, 0.3*DesignHeight)
	}
	if math.Abs(last-0.7*DesignHeight) > 1e-6 {
		t.Errorf("right endpoint = %v, want %v", last, 0.7*DesignHeight)
	}
}

func TestSlotIDsSorted(t *testing.T) {
	ls := NewLayoutStore()
	ids := ls.SlotIDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("ids not sorted: %v", ids)
		}
	}
	// Cycling through rounds depends on a stable order.
	if want := fmt.Sprintf("world%d-level%d", 1, 1); ids[0] != want {
		t.Errorf("first id = %s, want %s", ids[0], want)
	}
}
