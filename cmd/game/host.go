package main

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/ironhull/scorched/internal/game"
	"github.com/ironhull/scorched/internal/leaderboard"
	"github.com/ironhull/scorched/internal/store"
)

const bannerFrames = 75

var (
	skyColor     = color.RGBA{R: 18, G: 24, B: 38, A: 255}
	terrainColor = color.RGBA{R: 92, G: 64, B: 40, A: 255}
	playerColor  = color.RGBA{R: 80, G: 180, B: 90, A: 255}
	enemyColor   = color.RGBA{R: 200, G: 70, B: 60, A: 255}
	shellColor   = color.RGBA{R: 255, G: 235, B: 170, A: 255}
	previewColor = color.RGBA{R: 255, G: 255, B: 255, A: 110}
	healthBack   = color.RGBA{R: 40, G: 40, B: 40, A: 220}
	healthFront  = color.RGBA{R: 110, G: 220, B: 110, A: 220}
)

// host owns the ebiten side: input translation, rendering, and the
// event-driven UX (banners, toasts, clipboard report, score submission).
// The engine never sees any of this.
type host struct {
	engine    *game.Engine
	blobs     store.Store
	submitter *leaderboard.Submitter
	log       zerolog.Logger
	deviceID  string

	terrainImg   *ebiten.Image
	terrainDirty bool

	banner       game.TransitionBanner
	bannerTTL    int
	toast        string
	toastTTL     int
	lastReport   string
	reportCopied bool
	dragging     bool
}

func newHost(engine *game.Engine, blobs store.Store, submitter *leaderboard.Submitter, log zerolog.Logger) *host {
	return &host{
		engine:       engine,
		blobs:        blobs,
		submitter:    submitter,
		log:          log,
		deviceID:     store.DeviceID(blobs, log),
		terrainDirty: true,
	}
}

func (h *host) Layout(_, _ int) (int, int) {
	return game.DesignWidth, game.DesignHeight
}

func (h *host) Update() error {
	h.handleInput()
	h.engine.Tick(1000.0 / 60.0)
	h.consumeEvents()

	if h.bannerTTL > 0 {
		h.bannerTTL--
	}
	if h.toastTTL > 0 {
		h.toastTTL--
	}
	return nil
}

func (h *host) handleInput() {
	mx, my := ebiten.CursorPosition()
	fx, fy := float64(mx), float64(my)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		h.dragging = true
		h.engine.OnPointerDown(fx, fy)
	}
	if h.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		h.engine.OnPointerMove(fx, fy)
	}
	if h.dragging && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		h.dragging = false
		h.engine.OnPointerUp(fx, fy)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		h.dragging = false
		h.engine.CancelDrag()
	}
	if inpututil.IsKeyJustPressed(ebiten.Key1) {
		h.engine.OnKey("Digit1")
	}
	if inpututil.IsKeyJustPressed(ebiten.Key2) {
		h.engine.OnKey("Digit2")
	}
	if inpututil.IsKeyJustPressed(ebiten.Key3) {
		h.engine.OnKey("Digit3")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		h.engine.OnKey("Enter")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		h.engine.OnKey("Space")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) && h.lastReport != "" {
		if err := clipboard.WriteAll(h.lastReport); err != nil {
			h.log.Warn().Err(err).Msg("clipboard write failed")
		} else {
			h.reportCopied = true
		}
	}
}

// consumeEvents drains the engine queue into UX state.
func (h *host) consumeEvents() {
	for _, ev := range h.engine.DrainEvents() {
		switch e := ev.(type) {
		case game.PhaseChangedEvent:
			if e.Banner.Text != "" {
				h.banner = e.Banner
				h.bannerTTL = bannerFrames
			}
			if e.To == game.PhasePlayerAim {
				h.terrainDirty = true // fresh round terrain
			}
		case game.ImpactEvent:
			h.terrainDirty = true
		case game.DropResolvedEvent:
			h.showDropToast(e)
		case game.AchievementUnlockedEvent:
			h.toast = "Achievement: " + e.ID
			h.toastTTL = bannerFrames * 2
		case game.RunEndedEvent:
			h.onRunEnded(e)
		}
	}
}

func (h *host) showDropToast(e game.DropResolvedEvent) {
	if e.IsDuplicate {
		h.toast = fmt.Sprintf("Duplicate %s — +%d scrap", e.Rarity, e.ScrapAwarded)
	} else {
		h.toast = fmt.Sprintf("New %s tank unlocked!", e.Rarity)
	}
	if e.PityTriggered {
		h.toast += " (pity)"
	}
	h.toastTTL = bannerFrames * 2
}

func (h *host) onRunEnded(e game.RunEndedEvent) {
	stats := h.engine.Run().Stats()
	h.lastReport = buildRunReport(stats, e.Draw)
	h.reportCopied = false

	if h.submitter != nil {
		h.submitter.Enqueue(leaderboard.Score{
			DeviceID:         h.deviceID,
			PlayerName:       "Player",
			RoundsSurvived:   stats.RoundsSurvived,
			TotalDamage:      stats.TotalDamageDealt,
			EnemiesDestroyed: stats.EnemiesDestroyed,
			ShotsFired:       stats.ShotsFired,
			ShotsHit:         stats.ShotsHit,
		})
	}
}

// buildRunReport renders the end-of-run summary that lands on the
// clipboard.
func buildRunReport(stats game.RunStats, draw bool) string {
	var sb strings.Builder
	sb.WriteString("=== Scorched Run Report ===\n")
	if draw {
		sb.WriteString("Result: mutual destruction\n")
	}
	fmt.Fprintf(&sb, "Rounds survived: %d\n", stats.RoundsSurvived)
	fmt.Fprintf(&sb, "Enemies destroyed: %d\n", stats.EnemiesDestroyed)
	fmt.Fprintf(&sb, "Shots: %d fired, %d hit (%d%%)\n", stats.ShotsFired, stats.ShotsHit, stats.HitRatePercent())
	fmt.Fprintf(&sb, "Damage: %.0f dealt, %.0f taken, biggest hit %.0f\n",
		stats.TotalDamageDealt, stats.TotalDamageTaken, stats.BiggestHit)
	fmt.Fprintf(&sb, "Scrap earned: %d\n", stats.MoneyEarned)
	weapons := make([]string, 0, len(stats.WeaponsUsed))
	for w := range stats.WeaponsUsed {
		weapons = append(weapons, string(w))
	}
	sort.Strings(weapons)
	fmt.Fprintf(&sb, "Weapons used: %s\n", strings.Join(weapons, ", "))
	return sb.String()
}

func (h *host) Draw(screen *ebiten.Image) {
	screen.Fill(skyColor)

	switch h.engine.Phase() {
	case game.PhaseMenu:
		h.drawMenu(screen)
		return
	case game.PhaseGameOver:
		h.drawWorld(screen)
		h.drawGameOver(screen)
		return
	}

	h.drawWorld(screen)
	h.drawHUD(screen)
}

func (h *host) drawWorld(screen *ebiten.Image) {
	h.drawTerrain(screen)
	h.drawTank(screen, h.engine.Player(), playerColor)
	h.drawTank(screen, h.engine.Enemy(), enemyColor)

	if p := h.engine.Preview(); p != nil {
		for _, pt := range p.Points {
			vector.FillCircle(screen, float32(pt.X), float32(pt.Y), 2.0, previewColor, false)
		}
	}
	if shell := h.engine.Projectile(); shell != nil {
		x, y := shell.Position()
		vector.FillCircle(screen, float32(x), float32(y), 3.5, shellColor, true)
	}

	if h.bannerTTL > 0 {
		h.drawBanner(screen)
	}
	if h.toastTTL > 0 {
		ebitenutil.DebugPrintAt(screen, h.toast, game.DesignWidth/2-len(h.toast)*3, 60)
	}
}

// drawTerrain renders the heightmap into a cached image, rebuilt only when
// an impact or round change dirtied it.
func (h *host) drawTerrain(screen *ebiten.Image) {
	terrain := h.engine.Terrain()
	if terrain == nil {
		return
	}
	if h.terrainImg == nil {
		h.terrainImg = ebiten.NewImage(game.DesignWidth, game.DesignHeight)
	}
	if h.terrainDirty {
		h.terrainDirty = false
		h.terrainImg.Clear()
		for x := 0; x < terrain.Width(); x++ {
			top := terrain.SurfaceY(x)
			vector.FillRect(h.terrainImg, float32(x), float32(top), 1,
				float32(game.DesignHeight)-float32(top), terrainColor, false)
		}
	}
	screen.DrawImage(h.terrainImg, nil)
}

func (h *host) drawTank(screen *ebiten.Image, t *game.Tank, col color.RGBA) {
	if t == nil {
		return
	}
	if !t.Alive() {
		col = color.RGBA{R: 70, G: 70, B: 70, A: 255}
	}
	x, y := float32(t.X()), float32(t.Y())
	vector.FillRect(screen, x-20, y-22, 40, 22, col, false)

	// Turret follows the current aim.
	rad := t.Angle() * math.Pi / 180
	mx := x + float32(math.Cos(rad)*28)
	my := y - 11 - float32(math.Sin(rad)*28)
	vector.StrokeLine(screen, x, y-11, mx, my, 3.0, col, true)

	// Health bar above the hull.
	frac := float32(t.Health() / t.MaxHealth())
	vector.FillRect(screen, x-20, y-32, 40, 5, healthBack, false)
	vector.FillRect(screen, x-20, y-32, 40*frac, 5, healthFront, false)
}

func (h *host) drawBanner(screen *ebiten.Image) {
	w := float32(len(h.banner.Text)*6 + 32)
	x := float32(game.DesignWidth)/2 - w/2
	vector.FillRect(screen, x, 24, w, 22, color.RGBA{A: 180}, false)
	vector.StrokeRect(screen, x, 24, w, 22, 1.0, h.banner.Colour, false)
	ebitenutil.DebugPrintAt(screen, h.banner.Text, int(x)+16, 28)
}

func (h *host) drawHUD(screen *ebiten.Image) {
	e := h.engine
	p := e.Player()
	if p == nil {
		return
	}
	lines := []string{
		fmt.Sprintf("Round %d  |  %s", e.Run().RoundNumber(), e.Phase()),
		fmt.Sprintf("Angle %.0f  Power %.0f", p.Angle(), p.Power()),
		fmt.Sprintf("Wind %+.2f", e.WindValue()),
		fmt.Sprintf("Weapon [%s]  %s", p.CurrentWeapon(), ammoLabel(p)),
	}
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 8, 8+i*14)
	}
}

func ammoLabel(t *game.Tank) string {
	n := t.AmmoFor(t.CurrentWeapon())
	if n == game.InfiniteAmmo {
		return "ammo: inf"
	}
	return fmt.Sprintf("ammo: %d", n)
}

func (h *host) drawMenu(screen *ebiten.Image) {
	cx := game.DesignWidth / 2
	ebitenutil.DebugPrintAt(screen, "S C O R C H E D", cx-48, 300)
	ebitenutil.DebugPrintAt(screen, "Enter to start a run", cx-60, 340)

	scores := h.engine.HighScores().Get()
	if len(scores) > 0 {
		ebitenutil.DebugPrintAt(screen, "High scores:", cx-60, 380)
		for i, s := range scores {
			line := fmt.Sprintf("%2d. rounds %-3d damage %.0f", i+1, s.RoundsSurvived, s.TotalDamage)
			ebitenutil.DebugPrintAt(screen, line, cx-60, 398+i*14)
		}
	}
}

func (h *host) drawGameOver(screen *ebiten.Image) {
	cx := game.DesignWidth / 2
	y := 260
	for _, line := range strings.Split(strings.TrimRight(h.lastReport, "\n"), "\n") {
		ebitenutil.DebugPrintAt(screen, line, cx-120, y)
		y += 14
	}
	y += 14
	ebitenutil.DebugPrintAt(screen, "Enter: new run   C: copy report", cx-100, y)
	if h.reportCopied {
		ebitenutil.DebugPrintAt(screen, "Report copied to clipboard", cx-80, y+18)
	}
}
