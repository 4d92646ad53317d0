package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/world"
)

// Inspector panel, rendered into an offscreen buffer at 1x then blitted at
// inspScale.
const (
	inspScale = 2
	inspBufW  = 220
	inspBufH  = 150
	inspPad   = 4
	inspLineH = 13
)

// Inspector holds the tile picked with the mouse.
type Inspector struct {
	selected geom.Position
	active   bool
}

// inspect selects the top clickable tile at pos, or clears the selection.
func (g *Game) inspect(pos geom.Position) {
	g.inspector.active = false
	if !pos.IsValid() {
		return
	}
	t := g.view.TopTile(pos)
	if t == nil {
		return
	}
	g.inspector.selected = t.Position()
	g.inspector.active = true
}

// inspectLines describes a tile for the inspector panel.
func inspectLines(t *world.Tile) []string {
	lines := []string{
		"tile " + t.Position().String(),
		"ground " + t.Ground.String(),
	}
	if t.Border != world.GroundNone {
		lines = append(lines, "border "+t.Border.String())
	}
	if len(t.Objects) > 0 {
		names := make([]string, len(t.Objects))
		for i, o := range t.Objects {
			names[i] = o.String()
		}
		lines = append(lines, "objects "+strings.Join(names, ", "))
	}
	var flags []string
	if t.Flags&world.TileFlagIndoor != 0 {
		flags = append(flags, "indoor")
	}
	if t.Flags&world.TileFlagCave != 0 {
		flags = append(flags, "cave")
	}
	if t.HasLight() {
		flags = append(flags, "lit")
	}
	if t.IsWalkable() {
		flags = append(flags, "walkable")
	}
	if len(flags) > 0 {
		lines = append(lines, strings.Join(flags, " "))
	}
	for _, c := range t.Creatures() {
		if wc, ok := c.(*world.Creature); ok {
			lines = append(lines, fmt.Sprintf("%s %d/%d hp", wc.Name, wc.Health, wc.MaxHealth))
		}
	}
	lines = append(lines, fmt.Sprintf("seen in %d passes", t.Seen()))
	return lines
}

func (g *Game) drawInspector(screen *ebiten.Image) {
	if !g.inspector.active {
		return
	}
	t := g.grid.At(g.inspector.selected)
	if t == nil {
		g.inspector.active = false
		return
	}

	buf := g.inspBuf
	buf.Clear()
	bw, bh := float32(inspBufW), float32(inspBufH)
	border := color.RGBA{R: 55, G: 70, B: 110, A: 255}
	vector.FillRect(buf, 0, 0, bw, bh, color.RGBA{R: 14, G: 16, B: 22, A: 230}, false)
	vector.StrokeRect(buf, 0, 0, bw, bh, 1.0, border, false)

	ly := inspPad
	for _, line := range inspectLines(t) {
		ebitenutil.DebugPrintAt(buf, line, inspPad, ly)
		ly += inspLineH
	}

	px := g.mapRect.X + g.mapRect.W - inspBufW*inspScale - 8
	py := g.mapRect.Y + 8
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(inspScale), float64(inspScale))
	opts.GeoM.Translate(float64(px), float64(py))
	screen.DrawImage(buf, opts)
}
