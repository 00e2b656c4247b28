package game

import (
	"fmt"
	"math"
)

// --- Tank constants ---

const (
	tankWidth      = 40.0 // hull width, px
	tankHeight     = 22.0 // hull height, px
	tankHalfHeight = tankHeight / 2
	turretLength   = 28.0 // muzzle offset from hull top

	baseTankHealth = 100.0

	// Slingshot aim tuning.
	maxDragDistance = 150.0 // px of drag for 100% power
	minDragDistance = 12.0  // shorter drags fire nothing
)

// Side identifies which end of the field a tank fights for.
type Side int

const (
	SidePlayer Side = iota
	SideEnemy
)

func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "enemy"
}

// --- Weapons ---

// WeaponID names a weapon type.
type WeaponID string

const (
	WeaponStandard WeaponID = "standard"
	WeaponHeavy    WeaponID = "heavy"
	WeaponNuke     WeaponID = "nuke"
)

// InfiniteAmmo marks a weapon that never depletes.
const InfiniteAmmo = -1

// WeaponSpec bundles the ballistic parameters of one weapon type.
type WeaponSpec struct {
	ID          WeaponID
	Name        string
	Damage      float64 // full damage at the impact centre
	BlastRadius float64 // crater / damage falloff radius, px
	Radius      float64 // projectile body radius, px
	StartAmmo   int     // initial rounds; InfiniteAmmo for the standard shell
}

// weaponTable maps each weapon to its parameters.
var weaponTable = map[WeaponID]WeaponSpec{
	WeaponStandard: {ID: WeaponStandard, Name: "Shell", Damage: 25, BlastRadius: 40, Radius: 3, StartAmmo: InfiniteAmmo},
	WeaponHeavy:    {ID: WeaponHeavy, Name: "Heavy Shell", Damage: 40, BlastRadius: 55, Radius: 4, StartAmmo: 3},
	WeaponNuke:     {ID: WeaponNuke, Name: "Nuke", Damage: 75, BlastRadius: 90, Radius: 6, StartAmmo: 1},
}

// WeaponSpecFor returns the spec for a weapon id, falling back to the
// standard shell for unknown ids.
func WeaponSpecFor(id WeaponID) WeaponSpec {
	if spec, ok := weaponTable[id]; ok {
		return spec
	}
	return weaponTable[WeaponStandard]
}

// --- Tank ---

// Tank is one artillery piece sitting on the terrain surface.
type Tank struct {
	id        int
	side      Side
	x, y      float64 // y is the canvas-space ground line under the hull
	angleDeg  float64 // 0 = +x, 90 = straight up; clamped to [0,180]
	power     float64 // 0..100
	health    float64
	maxHealth float64
	ammo      map[WeaponID]int
	current   WeaponID
}

// NewTank creates a tank at column x with full ammo loadout.
func NewTank(id int, side Side, x float64, maxHealth float64) *Tank {
	ammo := make(map[WeaponID]int, len(weaponTable))
	for wid, spec := range weaponTable {
		ammo[wid] = spec.StartAmmo
	}
	angle := 60.0
	if side == SideEnemy {
		angle = 120.0 // face the player end
	}
	return &Tank{
		id:        id,
		side:      side,
		x:         x,
		angleDeg:  angle,
		power:     50,
		health:    maxHealth,
		maxHealth: maxHealth,
		ammo:      ammo,
		current:   WeaponStandard,
	}
}

func (t *Tank) ID() int           { return t.id }
func (t *Tank) Side() Side        { return t.side }
func (t *Tank) X() float64        { return t.x }
func (t *Tank) Y() float64        { return t.y }
func (t *Tank) Angle() float64    { return t.angleDeg }
func (t *Tank) Power() float64    { return t.power }
func (t *Tank) Health() float64   { return t.health }
func (t *Tank) MaxHealth() float64 { return t.maxHealth }
func (t *Tank) Alive() bool       { return t.health > 0 }

// CurrentWeapon returns the selected weapon id.
func (t *Tank) CurrentWeapon() WeaponID { return t.current }

// SetAngle clamps and stores the turret angle in degrees.
func (t *Tank) SetAngle(deg float64) {
	t.angleDeg = clampF(deg, 0, 180)
}

// SetPower clamps and stores the firing power.
func (t *Tank) SetPower(p float64) {
	t.power = clampF(p, 0, 100)
}

// SelectWeapon switches to the given weapon if any ammo remains.
func (t *Tank) SelectWeapon(id WeaponID) error {
	if _, ok := weaponTable[id]; !ok {
		return fmt.Errorf("tank: unknown weapon %q", id)
	}
	if t.ammo[id] == 0 {
		return fmt.Errorf("tank: no ammo for %q", id)
	}
	t.current = id
	return nil
}

// AmmoFor returns remaining rounds for a weapon (InfiniteAmmo for ∞).
func (t *Tank) AmmoFor(id WeaponID) int { return t.ammo[id] }

// SettleOnTerrain drops the tank onto the ground surface at its column.
func (t *Tank) SettleOnTerrain(terrain *Terrain) {
	t.y = terrain.SurfaceY(int(math.Round(t.x)))
}

// MuzzlePosition returns the canvas point projectiles spawn from.
func (t *Tank) MuzzlePosition() (float64, float64) {
	rad := t.angleDeg * math.Pi / 180
	mx := t.x + math.Cos(rad)*turretLength
	my := t.y - tankHalfHeight - math.Sin(rad)*turretLength
	return mx, my
}

// Fire spawns a projectile for the current weapon at the muzzle, consuming a
// round when ammo is finite. It returns false (and spawns nothing) when the
// selected weapon is dry; the caller falls back to the standard shell.
func (t *Tank) Fire() (*Projectile, bool) {
	if t.ammo[t.current] == 0 {
		return nil, false
	}
	if t.ammo[t.current] > 0 {
		t.ammo[t.current]--
	}
	mx, my := t.MuzzlePosition()
	spec := WeaponSpecFor(t.current)
	return NewProjectile(mx, my, t.angleDeg, t.power, t.side, spec), true
}

// ApplyDamage subtracts damage, floored at zero, and returns the new health.
func (t *Tank) ApplyDamage(d float64) float64 {
	if d < 0 {
		d = 0
	}
	t.health = math.Max(0, t.health-d)
	return t.health
}

// ContainsPoint reports whether a canvas point lies inside the hull box.
// The box edges are inclusive.
func (t *Tank) ContainsPoint(px, py float64) bool {
	return px >= t.x-tankWidth/2 && px <= t.x+tankWidth/2 &&
		py >= t.y-tankHeight && py <= t.y
}

// DistanceTo returns the distance from the hull centre to a canvas point.
func (t *Tank) DistanceTo(px, py float64) float64 {
	return math.Hypot(px-t.x, py-(t.y-tankHalfHeight))
}

// --- Slingshot aim ---

// AimSolution is the angle/power pair derived from a slingshot drag.
type AimSolution struct {
	AngleDeg float64
	Power    float64
}

// AimFromDrag converts a drag from the tank anchor to the pointer into an
// aim solution. The shot flies opposite the drag vector. Drags shorter than
// the dead zone produce ok=false and must not fire.
func AimFromDrag(anchorX, anchorY, pointerX, pointerY float64) (AimSolution, bool) {
	dx := pointerX - anchorX
	dy := pointerY - anchorY
	mag := math.Hypot(dx, dy)
	if mag < minDragDistance {
		return AimSolution{}, false
	}
	// Reverse the drag: pull down-left, fire up-right. With canvas y
	// growing downward, the upward component of the reversed vector is +dy.
	angleDeg := math.Atan2(dy, -dx) * 180 / math.Pi
	angleDeg = clampF(angleDeg, 0, 180)
	power := math.Min(mag, maxDragDistance) / maxDragDistance * 100
	return AimSolution{AngleDeg: angleDeg, Power: power}, true
}
