package world

import (
	"image/color"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

// TileFlags is a bitfield for per-tile metadata.
type TileFlags uint8

const (
	TileFlagIndoor TileFlags = 1 << iota // inside a building footprint
	TileFlagCave                         // part of a cave system
)

var (
	highlightColour    = color.RGBA{255, 255, 255, 90}
	topHighlightColour = color.RGBA{255, 220, 120, 120}
)

// Tile is one cell of the world. Things stack bottom to top: ground, border,
// objects, creatures.
type Tile struct {
	grid *Grid
	pos  geom.Position

	Ground  GroundType
	Border  GroundType // neighbouring ground bleeding over this one
	Objects []ObjectType
	Flags   TileFlags

	creatures []*Creature

	selected    bool
	topSelected bool
	// seen counts the visibility passes that included the tile.
	seen int
}

func (t *Tile) Position() geom.Position { return t.pos }

func (t *Tile) IsDrawable() bool {
	return t.Ground != GroundNone || len(t.Objects) > 0 || len(t.creatures) > 0
}

func (t *Tile) HasGround() bool             { return t.Ground != GroundNone }
func (t *Tile) IsGroundTranslucent() bool   { return groundTranslucent(t.Ground) }
func (t *Tile) IsTopGround() bool           { return groundOnTop(t.Ground) }
func (t *Tile) HasGroundBorderToDraw() bool { return t.Border != GroundNone }
func (t *Tile) HasBottomOrTopToDraw() bool {
	return len(t.Objects) > 0 || len(t.creatures) > 0
}

// isFullyOpaque reports whether nothing beneath the tile shows through it.
func (t *Tile) isFullyOpaque() bool {
	return t.HasGround() && !t.IsGroundTranslucent()
}

// IsCompletelyCovered reports whether an opaque tile on a floor at or below
// firstFloor sits on this tile's screen spot.
func (t *Tile) IsCompletelyCovered(firstFloor int) bool {
	if t.grid == nil {
		return false
	}
	pos := t.pos
	for pos.CoveredUp(1) && pos.Z >= firstFloor {
		if above := t.grid.At(pos); above != nil && above.isFullyOpaque() {
			return true
		}
	}
	return false
}

func (t *Tile) HasLight() bool {
	for _, o := range t.Objects {
		if i, _ := objectLight(o); i > 0 {
			return true
		}
	}
	return false
}

// LimitsFloorsView reports whether the tile hides the floors above it. Ground
// always does. A structural object does with a free view, otherwise only when
// it blocks projectiles.
func (t *Tile) LimitsFloorsView(isFreeView bool) bool {
	if t.HasGround() {
		return true
	}
	if len(t.Objects) == 0 || !objectOnBottom(t.Objects[0]) {
		return false
	}
	if isFreeView {
		return true
	}
	return objectBlocksProjectile(t.Objects[0])
}

// isLookPossible reports whether sight passes through the tile.
func (t *Tile) isLookPossible() bool {
	for _, o := range t.Objects {
		if objectBlocksProjectile(o) {
			return false
		}
	}
	return true
}

// IsWalkable reports whether a creature can step onto the tile.
func (t *Tile) IsWalkable() bool {
	if !t.HasGround() || t.Ground == GroundWater {
		return false
	}
	for _, o := range t.Objects {
		if objectBlocksMovement(o) {
			return false
		}
	}
	return len(t.creatures) == 0
}

func (t *Tile) IsClickable() bool { return t.IsDrawable() }

func (t *Tile) Creatures() []mapview.Creature {
	out := make([]mapview.Creature, len(t.creatures))
	for i, c := range t.creatures {
		out[i] = c
	}
	return out
}

// TopObject returns the highest object on the tile.
func (t *Tile) TopObject() ObjectType {
	if len(t.Objects) == 0 {
		return ObjectNone
	}
	return t.Objects[len(t.Objects)-1]
}

func (t *Tile) OnAddVisibleTile(mapview.View) { t.seen++ }

// Seen returns how many visibility passes included the tile.
func (t *Tile) Seen() int { return t.seen }

func (t *Tile) Select(topTile bool) {
	t.selected = true
	t.topSelected = topTile
}

func (t *Tile) Unselect() {
	t.selected = false
	t.topSelected = false
}

// IsSelected reports whether the tile carries the mouse highlight.
func (t *Tile) IsSelected() bool { return t.selected }

func tileRect(dest geom.Point, scale float64, inset int) geom.Rect {
	size := int(geom.TilePixels * scale)
	in := int(float64(inset) * scale)
	return geom.Rect{X: dest.X + in, Y: dest.Y + in, W: size - 2*in, H: size - 2*in}
}

func (t *Tile) DrawGround(c mapview.Canvas, dest geom.Point, scale float64, _ mapview.DrawFlags, _ mapview.LightLayer) {
	if !t.HasGround() {
		return
	}
	c.FillRect(tileRect(dest, scale, 0), groundBaseColour(t.Ground))
	t.drawHighlight(c, dest, scale)
}

func (t *Tile) drawHighlight(c mapview.Canvas, dest geom.Point, scale float64) {
	if !t.selected {
		return
	}
	col := highlightColour
	if t.topSelected {
		col = topHighlightColour
	}
	c.FillRect(tileRect(dest, scale, 0), col)
}

func (t *Tile) DrawGroundBorder(c mapview.Canvas, dest geom.Point, scale float64, _ mapview.DrawFlags, _ mapview.LightLayer) {
	if t.Border == GroundNone {
		return
	}
	col := groundBaseColour(t.Border)
	r := tileRect(dest, scale, 0)
	edge := max(int(4*scale), 1)
	c.FillRect(geom.Rect{X: r.X, Y: r.Y, W: r.W, H: edge}, col)
	c.FillRect(geom.Rect{X: r.X, Y: r.Y, W: edge, H: r.H}, col)
}

// Draw paints the objects and creatures on the tile and registers its light
// sources.
func (t *Tile) Draw(c mapview.Canvas, dest geom.Point, scale float64, flags mapview.DrawFlags, light mapview.LightLayer) {
	if flags&mapview.UpdateThings != 0 {
		for _, o := range t.Objects {
			col, inset := objectColour(o)
			c.FillRect(tileRect(dest, scale, inset), col)
		}
		for _, cr := range t.creatures {
			cr.draw(c, dest, scale)
		}
		if !t.HasGround() {
			t.drawHighlight(c, dest, scale)
		}
	}

	if light != nil && flags&mapview.UpdateLights != 0 {
		center := dest.Add(geom.Pt(int(geom.TilePixels*scale)/2, int(geom.TilePixels*scale)/2))
		for _, o := range t.Objects {
			if i, col := objectLight(o); i > 0 {
				light.AddLightSource(center, scale, mapview.Light{Intensity: i, Color: col})
			}
		}
	}
}
