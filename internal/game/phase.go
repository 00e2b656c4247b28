package game

import "image/color"

// Phase is one state of the turn machine.
type Phase int

const (
	PhaseMenu Phase = iota
	PhasePlayerAim
	PhasePlayerFire
	PhaseAIAim
	PhaseAIFire
	PhaseProjectileFlight
	PhaseResolving
	PhaseRoundEnd
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseMenu:
		return "menu"
	case PhasePlayerAim:
		return "playerAim"
	case PhasePlayerFire:
		return "playerFire"
	case PhaseAIAim:
		return "aiAim"
	case PhaseAIFire:
		return "aiFire"
	case PhaseProjectileFlight:
		return "projectileFlight"
	case PhaseResolving:
		return "resolving"
	case PhaseRoundEnd:
		return "roundEnd"
	case PhaseGameOver:
		return "gameOver"
	default:
		return "unknown"
	}
}

// aimPhase returns the aim phase for a side.
func aimPhase(s Side) Phase {
	if s == SidePlayer {
		return PhasePlayerAim
	}
	return PhaseAIAim
}

// firePhase returns the fire phase for a side.
func firePhase(s Side) Phase {
	if s == SidePlayer {
		return PhasePlayerFire
	}
	return PhaseAIFire
}

// TransitionBanner is the host-facing text + colour shown when a phase
// begins. Both are pure functions of (phase, shooter side).
type TransitionBanner struct {
	Text   string
	Colour color.RGBA
}

var (
	bannerPlayerColour = color.RGBA{R: 90, G: 200, B: 120, A: 255}
	bannerEnemyColour  = color.RGBA{R: 220, G: 90, B: 80, A: 255}
	bannerNeutral      = color.RGBA{R: 230, G: 220, B: 140, A: 255}
)

// BannerFor derives the transition banner for a phase and shooter.
func BannerFor(phase Phase, shooter Side) TransitionBanner {
	switch phase {
	case PhasePlayerAim, PhasePlayerFire:
		return TransitionBanner{Text: "YOUR TURN", Colour: bannerPlayerColour}
	case PhaseAIAim, PhaseAIFire:
		return TransitionBanner{Text: "ENEMY TURN", Colour: bannerEnemyColour}
	case PhaseProjectileFlight:
		if shooter == SidePlayer {
			return TransitionBanner{Text: "SHOT AWAY", Colour: bannerPlayerColour}
		}
		return TransitionBanner{Text: "INCOMING", Colour: bannerEnemyColour}
	case PhaseRoundEnd:
		return TransitionBanner{Text: "ROUND OVER", Colour: bannerNeutral}
	case PhaseGameOver:
		return TransitionBanner{Text: "RUN ENDED", Colour: bannerEnemyColour}
	default:
		return TransitionBanner{Text: "", Colour: bannerNeutral}
	}
}
