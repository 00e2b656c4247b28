package game

import (
	"math"
	"math/rand"
)

// TerrainGenOptions controls procedural terrain generation.
type TerrainGenOptions struct {
	Roughness        float64 // 0.3..0.7 — displacement decay per pass
	Seed             int64
	MinHeightPercent float64 // lower bound of the height band, fraction of H
	MaxHeightPercent float64 // upper bound of the height band, fraction of H
}

// DefaultTerrainGenOptions are the tuning used for standard rounds.
func DefaultTerrainGenOptions(seed int64) TerrainGenOptions {
	return TerrainGenOptions{
		Roughness:        0.5,
		Seed:             seed,
		MinHeightPercent: 0.2,
		MaxHeightPercent: 0.9,
	}
}

// GenerateTerrain produces a terrain via seeded midpoint displacement on a
// power-of-two+1 grid, linearly resampled to the requested width. The same
// seed and options always produce byte-identical samples.
func GenerateTerrain(width, height int, opts TerrainGenOptions) *Terrain {
	rough := clampF(opts.Roughness, 0.3, 0.7)
	minH := opts.MinHeightPercent * float64(height)
	maxH := opts.MaxHeightPercent * float64(height)
	if maxH < minH {
		minH, maxH = maxH, minH
	}

	// Smallest 2^k+1 grid that covers the target width.
	gridSize := 2
	for gridSize < width {
		gridSize *= 2
	}
	gridSize++

	rng := rand.New(rand.NewSource(opts.Seed)) // #nosec G404 -- deterministic worldgen

	samples := make([]float64, gridSize)
	samples[0] = minH + rng.Float64()*(maxH-minH)
	samples[gridSize-1] = minH + rng.Float64()*(maxH-minH)

	displacement := (maxH - minH) / 2
	for step := gridSize - 1; step > 1; step /= 2 {
		half := step / 2
		for left := 0; left+step < gridSize; left += step {
			right := left + step
			mid := (samples[left]+samples[right])/2 +
				(rng.Float64()-0.5)*displacement
			samples[left+half] = clampF(mid, minH, maxH)
		}
		displacement *= rough
	}
	for i := range samples {
		samples[i] = clampF(samples[i], minH, maxH)
	}

	return NewTerrainFromHeights(width, height, resampleLinear(samples, width))
}

// resampleLinear stretches or shrinks src to n samples with linear
// interpolation between neighbours.
func resampleLinear(src []float64, n int) []float64 {
	out := make([]float64, n)
	if len(src) == 0 || n == 0 {
		return out
	}
	if len(src) == 1 {
		for i := range out {
			out[i] = src[0]
		}
		return out
	}
	scale := float64(len(src)-1) / float64(maxI(n-1, 1))
	for i := 0; i < n; i++ {
		pos := float64(i) * scale
		lo := int(math.Floor(pos))
		if lo >= len(src)-1 {
			out[i] = src[len(src)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = src[lo]*(1-frac) + src[lo+1]*frac
	}
	return out
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}
