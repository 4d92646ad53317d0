package world

import (
	"fmt"
	"image/color"
	"time"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

// DefaultStepDuration is how long a creature takes to cross one tile.
const DefaultStepDuration = 300 * time.Millisecond

var (
	nameColour    = color.RGBA{220, 220, 220, 255}
	barBackground = color.RGBA{0, 0, 0, 200}
	healthColour  = color.RGBA{60, 200, 60, 255}
	lowHealth     = color.RGBA{220, 60, 40, 255}
	manaColour    = color.RGBA{60, 90, 230, 255}
)

// Creature is a walking actor. Its position changes as soon as a step starts;
// the walk offset then shrinks to zero while the step plays out.
type Creature struct {
	ID     int
	Name   string
	Colour color.RGBA

	Health    int
	MaxHealth int
	Mana      int
	MaxMana   int

	StepDuration time.Duration

	pos       geom.Position
	alive     bool
	direction geom.Direction
	walking   bool
	walkTime  time.Duration
}

// NewCreature returns a live creature with full health and mana.
func NewCreature(id int, name string, colour color.RGBA) *Creature {
	return &Creature{
		ID:           id,
		Name:         name,
		Colour:       colour,
		Health:       100,
		MaxHealth:    100,
		Mana:         50,
		MaxMana:      50,
		StepDuration: DefaultStepDuration,
		pos:          geom.InvalidPosition,
		direction:    geom.South,
	}
}

func (c *Creature) String() string {
	return fmt.Sprintf("%s#%d", c.Name, c.ID)
}

func (c *Creature) IsAlive() bool             { return c.alive }
func (c *Creature) IsCreature() bool          { return true }
func (c *Creature) Position() geom.Position   { return c.pos }
func (c *Creature) IsWalking() bool           { return c.walking }
func (c *Creature) Direction() geom.Direction { return c.direction }

// WalkOffset is the pixel offset, at scale 1, from the creature's tile to
// where it is drawn mid-step.
func (c *Creature) WalkOffset() geom.Point {
	if !c.walking || c.StepDuration <= 0 {
		return geom.Point{}
	}
	remaining := 1 - float64(c.walkTime)/float64(c.StepDuration)
	if remaining <= 0 {
		return geom.Point{}
	}
	back := geom.Position{}.TranslatedToDirection(c.direction)
	return geom.Point{
		X: int(-float64(back.X*geom.TilePixels) * remaining),
		Y: int(-float64(back.Y*geom.TilePixels) * remaining),
	}
}

// update advances the current step. It reports whether the walk offset
// changed.
func (c *Creature) update(dt time.Duration) bool {
	if !c.walking {
		return false
	}
	before := c.WalkOffset()
	c.walkTime += dt
	if c.walkTime >= c.StepDuration {
		c.walking = false
		c.walkTime = 0
	}
	return c.WalkOffset() != before
}

func (c *Creature) startStep(to geom.Position, dir geom.Direction) {
	c.pos = to
	c.direction = dir
	c.walking = true
	c.walkTime = 0
}

// draw paints the creature body on its tile.
func (c *Creature) draw(cv mapview.Canvas, dest geom.Point, scale float64) {
	p := dest.Add(c.WalkOffset().Scale(scale))
	r := tileRect(p, scale, 6)
	cv.FillRect(r, c.Colour)
}

// DrawInformation draws the name and bars above the creature.
func (c *Creature) DrawInformation(cv mapview.Canvas, info mapview.CreatureInfo) {
	p := info.Dest.Add(c.WalkOffset().Scale(info.Scale)).Sub(info.DrawOffset)
	p.X = int(float64(p.X) * info.HorizontalStretch)
	p.Y = int(float64(p.Y) * info.VerticalStretch)
	p = p.Add(info.Rect.TopLeft())

	tile := int(geom.TilePixels * info.Scale * info.HorizontalStretch)
	cx := p.X + tile/2
	if !info.Rect.Contains(geom.Pt(cx, p.Y)) {
		return
	}

	const barW, barH = 27, 4
	y := p.Y - 2*barH - 2
	if info.Flags&mapview.DrawNames != 0 {
		cv.DrawText(geom.Pt(cx-len(c.Name)*3, y-14), c.Name, nameColour)
	}
	if info.Flags&mapview.DrawBars != 0 {
		bar := geom.Rect{X: cx - barW/2, Y: y, W: barW, H: barH}
		cv.FillRect(bar, barBackground)
		col := healthColour
		if c.Health*4 < c.MaxHealth {
			col = lowHealth
		}
		cv.FillRect(geom.Rect{X: bar.X, Y: bar.Y, W: fraction(barW, c.Health, c.MaxHealth), H: barH}, col)
	}
	if info.Flags&mapview.DrawManaBar != 0 {
		bar := geom.Rect{X: cx - barW/2, Y: y + barH + 1, W: barW, H: barH}
		cv.FillRect(bar, barBackground)
		cv.FillRect(geom.Rect{X: bar.X, Y: bar.Y, W: fraction(barW, c.Mana, c.MaxMana), H: barH}, manaColour)
	}
}

func fraction(width, v, maxV int) int {
	if maxV <= 0 || v <= 0 {
		return 0
	}
	return min(width*v/maxV, width)
}

// Missile is a projectile flying between two tiles on one floor.
type Missile struct {
	from, to geom.Position
	duration time.Duration
	elapsed  time.Duration
}

// NewMissile returns a missile taking duration to fly from one tile to another.
func NewMissile(from, to geom.Position, duration time.Duration) *Missile {
	return &Missile{from: from, to: to, duration: duration}
}

func (m *Missile) progress() float64 {
	if m.duration <= 0 {
		return 1
	}
	return min(float64(m.elapsed)/float64(m.duration), 1)
}

// Position is the tile the missile is currently over.
func (m *Missile) Position() geom.Position {
	f := m.progress()
	return geom.Position{
		X: m.from.X + int(float64(m.to.X-m.from.X)*f+0.5),
		Y: m.from.Y + int(float64(m.to.Y-m.from.Y)*f+0.5),
		Z: m.from.Z,
	}
}

func (m *Missile) done() bool { return m.elapsed >= m.duration }

func (m *Missile) Draw(c mapview.Canvas, dest geom.Point, scale float64, flags mapview.DrawFlags, _ mapview.LightLayer) {
	if flags&mapview.UpdateThings == 0 {
		return
	}
	c.FillRect(tileRect(dest, scale, 12), color.RGBA{250, 210, 80, 255})
}
