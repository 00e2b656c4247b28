package game

import (
	"fmt"
	"math"
	"math/rand"
)

// --- Ballistics constants ---
//
// The integrator is frame-locked: one Step is exactly one 1/60s physics
// frame, so the per-frame accelerations below already include dt. Trajectory
// preview equality depends on the operation order in Step — wind is added to
// vx before gravity is added to vy, and velocities are applied after both.
const (
	gravityPerFrame    = 0.18  // px/frame² downward
	maxMuzzleVelocity  = 14.0  // px/frame at 100% power
	windRange          = 5.0   // wind scalar is sampled in [-windRange, +windRange]
	windForceMultiplier = 0.012 // px/frame² per unit of wind

	// Safety cap: a shot that somehow never lands resolves out of bounds.
	maxFlightFrames = 1200

	// The owner's own hull is ignored for the first few frames so the shell
	// clears the muzzle without instantly detonating on the shooter.
	muzzleGraceFrames = 10
)

// Wind is the per-round horizontal wind model: a single signed scalar.
type Wind struct {
	value float64
}

// Resample draws a new wind value uniformly from the wind band.
func (w *Wind) Resample(rng *rand.Rand) {
	w.value = (rng.Float64()*2 - 1) * windRange
}

// Value returns the raw wind scalar.
func (w *Wind) Value() float64 { return w.value }

// SetValue pins the wind, used by tests and the preview.
func (w *Wind) SetValue(v float64) { w.value = v }

// Force returns the per-frame horizontal acceleration applied to shells.
func (w *Wind) Force() float64 { return w.value * windForceMultiplier }

// --- Impact ---

// ImpactKind tags what a projectile hit.
type ImpactKind int

const (
	ImpactTerrain ImpactKind = iota
	ImpactOutLeft
	ImpactOutRight
	ImpactOutBottom
	ImpactTank
)

func (k ImpactKind) String() string {
	switch k {
	case ImpactTerrain:
		return "terrain"
	case ImpactOutLeft:
		return "outOfBounds.left"
	case ImpactOutRight:
		return "outOfBounds.right"
	case ImpactOutBottom:
		return "outOfBounds.bottom"
	case ImpactTank:
		return "tank"
	default:
		return "unknown"
	}
}

// Impact describes where and how a shot ended.
type Impact struct {
	X, Y        float64
	Kind        ImpactKind
	TankID      int // valid when Kind == ImpactTank
	OwnerSide   Side
	WeaponID    WeaponID
	BlastRadius float64
	Damage      float64
}

func (i Impact) String() string {
	if i.Kind == ImpactTank {
		return fmt.Sprintf("tank:%d@(%.1f,%.1f)", i.TankID, i.X, i.Y)
	}
	return fmt.Sprintf("%s@(%.1f,%.1f)", i.Kind, i.X, i.Y)
}

// --- Projectile ---

// Projectile is one shell in flight.
type Projectile struct {
	x, y        float64
	vx, vy      float64
	ownerSide   Side
	weaponID    WeaponID
	radius      float64
	damage      float64
	blastRadius float64
	frames      int
}

// NewProjectile spawns a shell at the muzzle with the standard velocity
// derivation: speed = power/100 · maxMuzzleVelocity, angle 0 = +x, 90 = up.
func NewProjectile(x, y, angleDeg, power float64, owner Side, spec WeaponSpec) *Projectile {
	rad := angleDeg * math.Pi / 180
	speed := power / 100 * maxMuzzleVelocity
	return &Projectile{
		x:           x,
		y:           y,
		vx:          math.Cos(rad) * speed,
		vy:          -math.Sin(rad) * speed,
		ownerSide:   owner,
		weaponID:    spec.ID,
		radius:      spec.Radius,
		damage:      spec.Damage,
		blastRadius: spec.BlastRadius,
	}
}

func (p *Projectile) Position() (float64, float64) { return p.x, p.y }
func (p *Projectile) Velocity() (float64, float64) { return p.vx, p.vy }
func (p *Projectile) OwnerSide() Side              { return p.ownerSide }
func (p *Projectile) WeaponID() WeaponID           { return p.weaponID }

// impact builds the impact record for this shell at a point.
func (p *Projectile) impact(kind ImpactKind, x, y float64, tankID int) *Impact {
	return &Impact{
		X: x, Y: y,
		Kind:        kind,
		TankID:      tankID,
		OwnerSide:   p.ownerSide,
		WeaponID:    p.weaponID,
		BlastRadius: p.blastRadius,
		Damage:      p.damage,
	}
}

// Step advances the shell one physics frame against the given world and
// returns a non-nil impact when the flight ends this frame.
//
// Order per frame: wind → gravity → position → boundary → terrain → tanks.
func (p *Projectile) Step(terrain *Terrain, wind *Wind, tanks []*Tank) *Impact {
	p.vx += wind.Force()
	p.vy += gravityPerFrame
	p.x += p.vx
	p.y += p.vy
	p.frames++

	w := float64(terrain.Width())
	h := float64(terrain.FieldHeight())
	switch {
	case p.x < 0:
		return p.impact(ImpactOutLeft, 0, p.y, 0)
	case p.x >= w:
		return p.impact(ImpactOutRight, w-1, p.y, 0)
	case p.y > h:
		return p.impact(ImpactOutBottom, p.x, h, 0)
	}

	if hit, ok := terrain.CheckCollision(p.x, p.y); ok && hit.Hit {
		return p.impact(ImpactTerrain, p.x, p.y, 0)
	}

	for _, t := range tanks {
		if t == nil || !t.Alive() {
			continue
		}
		if t.Side() == p.ownerSide && p.frames <= muzzleGraceFrames {
			continue
		}
		if t.ContainsPoint(p.x, p.y) {
			return p.impact(ImpactTank, p.x, p.y, t.ID())
		}
	}

	if p.frames >= maxFlightFrames {
		return p.impact(ImpactOutBottom, p.x, h, 0)
	}
	return nil
}
