package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

// hudScale is the integer upscale factor applied to HUD text.
const hudScale = 2

// hudState is the snapshot the HUD prints.
type hudState struct {
	camera      geom.Position
	mouse       geom.Position
	visible     geom.Size
	mode        mapview.ViewMode
	auto        bool
	floors      [2]int
	locked      int
	lights      bool
	shader      string
	opacity     float64
	frameMillis float64
}

func (g *Game) hudState() hudState {
	s := hudState{
		camera:      g.view.CameraPosition(),
		mouse:       g.mousePos,
		visible:     g.view.VisibleDimension(),
		mode:        g.view.ViewMode(),
		auto:        g.view.IsAutoViewMode(),
		floors:      [2]int{g.view.CachedFirstVisibleFloor(), g.view.CachedLastVisibleFloor()},
		locked:      g.view.LockedFirstVisibleFloor(),
		lights:      g.view.DrawLights(),
		opacity:     g.view.ShaderOpacity(),
		frameMillis: float64(g.lastFrame.Microseconds()) / 1000,
	}
	if sh := g.view.Shader(); sh != nil {
		s.shader = sh.Name()
	}
	return s
}

func hudLines(s hudState) []string {
	mode := s.mode.String()
	if s.auto {
		mode += " (auto)"
	}
	floors := fmt.Sprintf("floors %d..%d", s.floors[0], s.floors[1])
	if s.locked >= 0 {
		floors += fmt.Sprintf("  locked at %d", s.locked)
	}
	shader := "none"
	if s.shader != "" {
		shader = fmt.Sprintf("%s %.0f%%", s.shader, s.opacity*100)
	}
	lights := "off"
	if s.lights {
		lights = "on"
	}
	mouse := "-"
	if s.mouse.IsValid() {
		mouse = s.mouse.String()
	}
	return []string{
		fmt.Sprintf("camera %s  frame %.1fms", s.camera, s.frameMillis),
		fmt.Sprintf("mouse %s  [C] copy", mouse),
		fmt.Sprintf("view %dx%d %s  [V] [M]", s.visible.W, s.visible.H, mode),
		floors + "  [F] lock",
		fmt.Sprintf("lights %s [L]  shader %s [N]", lights, shader),
		"WASD/arrows=walk  scroll,=/-=zoom",
		"Enter=stairs  Space=throw  T=talk",
		"shift=top tile  click=inspect  [H] HUD",
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := hudLines(g.hudState())

	const lineH = 12 // debug font line height at 1x
	const charW = 6  // debug font char width at 1x
	const padX = 5
	const padY = 4

	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)

	bufH := float32(g.height / hudScale)
	bx := float32(g.mapRect.X/hudScale + 4)
	by := bufH - boxH - float32(borderWidth/hudScale) - 4

	g.hudBuf.Clear()
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 6, G: 8, B: 12, A: 210}, false)
	vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 80, B: 120, A: 180}, false)

	for i, line := range lines {
		ebitenutil.DebugPrintAt(g.hudBuf, line, int(bx)+padX, int(by)+padY+i*lineH)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(hudScale), float64(hudScale))
	screen.DrawImage(g.hudBuf, opts)
}
