package game

import (
	"encoding/json"
	"fmt"
	"math"
)

// Terrain is a destructible 1-D heightmap. heights[x] is the vertical
// distance from the bottom of the play field to the ground surface at
// column x, so the surface sits at canvas y = H - heights[x] (canvas y
// grows downward). Destruction only ever lowers columns.
type Terrain struct {
	width   int
	height  int // field height H in pixels
	heights []float64
}

// TerrainHit is the result of a terrain collision query.
type TerrainHit struct {
	Hit  bool
	X, Y float64
}

// NewTerrain creates a terrain of the given field size with all columns at
// ground level zero.
func NewTerrain(width, height int) *Terrain {
	return &Terrain{
		width:   width,
		height:  height,
		heights: make([]float64, width),
	}
}

// NewFlatTerrain creates a terrain with every column at the given height.
func NewFlatTerrain(width, height int, fill float64) *Terrain {
	t := NewTerrain(width, height)
	for x := range t.heights {
		t.heights[x] = fill
	}
	return t
}

// NewTerrainFromHeights creates a terrain from an existing height slice.
// The slice is copied; values are clamped to [0, height].
func NewTerrainFromHeights(width, height int, hs []float64) *Terrain {
	t := NewTerrain(width, height)
	for x := 0; x < width && x < len(hs); x++ {
		t.heights[x] = clampF(hs[x], 0, float64(height))
	}
	return t
}

// Width returns the field width in columns.
func (t *Terrain) Width() int { return t.width }

// FieldHeight returns the field height H.
func (t *Terrain) FieldHeight() int { return t.height }

// Height returns the ground height at column x, measured from the bottom.
func (t *Terrain) Height(x int) (float64, error) {
	if x < 0 || x >= t.width {
		return 0, fmt.Errorf("terrain: column %d out of bounds [0,%d)", x, t.width)
	}
	return t.heights[x], nil
}

// SetHeight sets the ground height at column x, clamped to [0, H].
func (t *Terrain) SetHeight(x int, h float64) error {
	if x < 0 || x >= t.width {
		return fmt.Errorf("terrain: column %d out of bounds [0,%d)", x, t.width)
	}
	t.heights[x] = clampF(h, 0, float64(t.height))
	return nil
}

// SurfaceY returns the canvas-space y of the ground surface at column x.
// Out-of-band columns report the field bottom.
func (t *Terrain) SurfaceY(x int) float64 {
	if x < 0 || x >= t.width {
		return float64(t.height)
	}
	return float64(t.height) - t.heights[x]
}

// CheckCollision reports whether canvas point (x, y) is at or below the
// ground surface. ok is false when x is outside the field; the caller
// decides what an out-of-band sample means.
func (t *Terrain) CheckCollision(x, y float64) (hit TerrainHit, ok bool) {
	col := int(math.Floor(x))
	if col < 0 || col >= t.width {
		return TerrainHit{}, false
	}
	return TerrainHit{
		Hit: y >= float64(t.height)-t.heights[col],
		X:   x,
		Y:   y,
	}, true
}

// DestroyCircle carves a circular crater centred at canvas point (cx, cy)
// with radius r. For each affected column the circle spans heights
// (H-cy)-v .. (H-cy)+v where v = sqrt(r²-dx²); the column is lowered to the
// crater floor but never raised. Returns true if any column changed.
func (t *Terrain) DestroyCircle(cx, cy, r float64) bool {
	if r <= 0 {
		return false
	}
	changed := false
	floorBase := float64(t.height) - cy
	lo := int(math.Ceil(cx - r))
	hi := int(math.Floor(cx + r))
	for x := lo; x <= hi; x++ {
		if x < 0 || x >= t.width {
			continue
		}
		dx := float64(x) - cx
		v := math.Sqrt(r*r - dx*dx)
		newH := math.Max(0, math.Min(t.heights[x], floorBase-v))
		if newH < t.heights[x] {
			t.heights[x] = newH
			changed = true
		}
	}
	return changed
}

// Clone returns a deep copy of the terrain.
func (t *Terrain) Clone() *Terrain {
	c := &Terrain{
		width:   t.width,
		height:  t.height,
		heights: make([]float64, len(t.heights)),
	}
	copy(c.heights, t.heights)
	return c
}

// Heights returns the backing height slice. Callers must not mutate it.
func (t *Terrain) Heights() []float64 { return t.heights }

// terrainBlob is the serialised wire form of a terrain.
type terrainBlob struct {
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Heights []float64 `json:"heights"`
}

// Serialise encodes the terrain as JSON.
func (t *Terrain) Serialise() ([]byte, error) {
	return json.Marshal(terrainBlob{Width: t.width, Height: t.height, Heights: t.heights})
}

// DeserialiseTerrain decodes a terrain previously produced by Serialise.
func DeserialiseTerrain(data []byte) (*Terrain, error) {
	var b terrainBlob
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("terrain: decode: %w", err)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return nil, fmt.Errorf("terrain: invalid size %dx%d", b.Width, b.Height)
	}
	if len(b.Heights) != b.Width {
		return nil, fmt.Errorf("terrain: %d heights for width %d", len(b.Heights), b.Width)
	}
	return NewTerrainFromHeights(b.Width, b.Height, b.Heights), nil
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clampF(v, 0, 1)
}
