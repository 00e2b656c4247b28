package game

// Host-facing events. The engine appends events while a tick runs; the host
// drains them afterwards (rendering, sound, UX). The engine never calls out.

// Event is a marker interface for everything the engine emits.
type Event interface{ isEvent() }

// PhaseChangedEvent fires on every phase transition.
type PhaseChangedEvent struct {
	From, To Phase
	Shooter  Side
	Banner   TransitionBanner
}

// ProjectileSpawnedEvent fires the frame a shot leaves the muzzle.
type ProjectileSpawnedEvent struct {
	X, Y     float64
	Owner    Side
	WeaponID WeaponID
}

// ImpactEvent fires exactly once per fired shot.
type ImpactEvent struct {
	Impact Impact
}

// DamageEvent fires per tank damaged by an explosion.
type DamageEvent struct {
	TargetID  int
	Amount    float64
	NewHealth float64
	Shooter   Side
	WeaponID  WeaponID
}

// KillEvent fires when damage is lethal.
type KillEvent struct {
	TargetID int
	Shooter  Side
}

// RoundWonEvent fires when the enemy dies and the player survives.
type RoundWonEvent struct {
	Round int
}

// RunEndedEvent fires on permadeath (mutual destruction counts as a loss).
type RunEndedEvent struct {
	RoundsSurvived int
	Draw           bool
}

// DropResolvedEvent fires when a supply drop grants a tank.
type DropResolvedEvent struct {
	Rarity        string
	TankID        string
	IsNew         bool
	IsDuplicate   bool
	ScrapAwarded  int
	PityTriggered bool
}

// AchievementUnlockedEvent fires when a run milestone unlocks.
type AchievementUnlockedEvent struct {
	ID string
}

func (PhaseChangedEvent) isEvent()       {}
func (ProjectileSpawnedEvent) isEvent()  {}
func (ImpactEvent) isEvent()             {}
func (DamageEvent) isEvent()             {}
func (KillEvent) isEvent()               {}
func (RoundWonEvent) isEvent()           {}
func (RunEndedEvent) isEvent()           {}
func (DropResolvedEvent) isEvent()       {}
func (AchievementUnlockedEvent) isEvent() {}
