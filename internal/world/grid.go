package world

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

var (
	// ErrNoTile is returned when an operation needs a tile that does not exist.
	ErrNoTile = errors.New("no tile at position")
	// ErrBlocked is returned when a creature cannot step onto a tile.
	ErrBlocked = errors.New("tile is not walkable")
	// ErrUnknownCreature is returned for creatures the grid does not hold.
	ErrUnknownCreature = errors.New("creature is not on the grid")
)

// DefaultAwareRange is the area around the player the world keeps in sync.
var DefaultAwareRange = geom.AwareRange{Left: 8, Right: 9, Top: 6, Bottom: 7}

// Listener is told about changes to the grid. *mapview.MapView satisfies it.
type Listener interface {
	OnTileUpdate(pos geom.Position, thing any, op mapview.TileOperation)
	OnGlobalLightChange(l mapview.Light)
	// OnCreatureWalk reports a new walk offset for c. The tiles themselves
	// are unchanged.
	OnCreatureWalk(c mapview.Creature, offset geom.Point)
}

// Grid is a sparse multi-floor world.
type Grid struct {
	tiles     map[geom.Position]*Tile
	creatures []*Creature
	missiles  map[int][]*Missile
	statics   []*StaticText
	animated  []*AnimatedText

	light     mapview.Light
	aware     geom.AwareRange
	listeners []Listener
	log       *slog.Logger
}

// GridOption configures a Grid.
type GridOption func(*Grid)

// WithAwareRange overrides DefaultAwareRange.
func WithAwareRange(a geom.AwareRange) GridOption {
	return func(g *Grid) { g.aware = a }
}

// WithGlobalLight sets the starting ambient light.
func WithGlobalLight(l mapview.Light) GridOption {
	return func(g *Grid) { g.light = l }
}

// WithGridLogger sets the logger used for world events.
func WithGridLogger(l *slog.Logger) GridOption {
	return func(g *Grid) {
		if l != nil {
			g.log = l
		}
	}
}

// NewGrid returns an empty world in full daylight.
func NewGrid(opts ...GridOption) *Grid {
	g := &Grid{
		tiles:    make(map[geom.Position]*Tile),
		missiles: make(map[int][]*Missile),
		light:    mapview.Light{Intensity: 255, Color: 215},
		aware:    DefaultAwareRange,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// AddListener registers l for tile and light changes.
func (g *Grid) AddListener(l Listener) {
	g.listeners = append(g.listeners, l)
}

func (g *Grid) notifyWalk(c *Creature) {
	offset := c.WalkOffset()
	for _, l := range g.listeners {
		l.OnCreatureWalk(c, offset)
	}
}

func (g *Grid) notify(pos geom.Position, thing any, op mapview.TileOperation) {
	for _, l := range g.listeners {
		l.OnTileUpdate(pos, thing, op)
	}
}

// At returns the concrete tile at pos, or nil.
func (g *Grid) At(pos geom.Position) *Tile {
	return g.tiles[pos]
}

// Tile returns the tile at pos. A missing tile is a nil interface, not a nil
// *Tile.
func (g *Grid) Tile(pos geom.Position) mapview.Tile {
	if t := g.tiles[pos]; t != nil {
		return t
	}
	return nil
}

// TileCount returns the number of stored tiles.
func (g *Grid) TileCount() int { return len(g.tiles) }

func (g *Grid) ensure(pos geom.Position) *Tile {
	t := g.tiles[pos]
	if t == nil {
		t = &Tile{grid: g, pos: pos}
		g.tiles[pos] = t
	}
	return t
}

// SetGround replaces the ground at pos, creating the tile if needed, and
// recomputes the borders around it.
func (g *Grid) SetGround(pos geom.Position, gt GroundType) *Tile {
	t := g.ensure(pos)
	t.Ground = gt
	g.updateBorders(pos)
	g.notify(pos, gt, mapview.TileUpdate)
	return t
}

// updateBorders recomputes the border of pos and its four neighbours.
func (g *Grid) updateBorders(pos geom.Position) {
	g.computeBorder(pos)
	for _, d := range []geom.Direction{geom.North, geom.East, geom.South, geom.West} {
		g.computeBorder(pos.TranslatedToDirection(d))
	}
}

// computeBorder picks the highest-priority neighbouring ground that
// outranks the tile's own ground.
func (g *Grid) computeBorder(pos geom.Position) {
	t := g.tiles[pos]
	if t == nil {
		return
	}
	own := groundBorderPriority(t.Ground)
	best, bestPri := GroundNone, own
	for _, d := range []geom.Direction{geom.North, geom.East, geom.South, geom.West} {
		n := g.tiles[pos.TranslatedToDirection(d)]
		if n == nil || !n.HasGround() {
			continue
		}
		if p := groundBorderPriority(n.Ground); p > bestPri {
			best, bestPri = n.Ground, p
		}
	}
	if own == 0 {
		best = GroundNone
	}
	t.Border = best
}

// AddObject stacks o on the tile at pos.
func (g *Grid) AddObject(pos geom.Position, o ObjectType) *Tile {
	t := g.ensure(pos)
	if objectOnBottom(o) {
		// Structure goes beneath furniture and decorations.
		i := 0
		for i < len(t.Objects) && objectOnBottom(t.Objects[i]) {
			i++
		}
		t.Objects = slices.Insert(t.Objects, i, o)
	} else {
		t.Objects = append(t.Objects, o)
	}
	g.notify(pos, o, mapview.TileAdd)
	return t
}

// RemoveTop removes the highest object at pos. It reports false when there is
// nothing to remove.
func (g *Grid) RemoveTop(pos geom.Position) bool {
	t := g.tiles[pos]
	if t == nil || len(t.Objects) == 0 {
		return false
	}
	o := t.Objects[len(t.Objects)-1]
	t.Objects = t.Objects[:len(t.Objects)-1]
	g.notify(pos, o, mapview.TileRemove)
	return true
}

// SetFlags ORs f into the tile flags at pos.
func (g *Grid) SetFlags(pos geom.Position, f TileFlags) {
	g.ensure(pos).Flags |= f
}

// AddCreature places c on the tile at pos and brings it to life.
func (g *Grid) AddCreature(c *Creature, pos geom.Position) error {
	t := g.tiles[pos]
	if t == nil {
		return fmt.Errorf("add %s at %s: %w", c, pos, ErrNoTile)
	}
	c.pos = pos
	c.alive = true
	t.creatures = append(t.creatures, c)
	if !slices.Contains(g.creatures, c) {
		g.creatures = append(g.creatures, c)
	}
	g.notify(pos, c, mapview.TileAdd)
	return nil
}

// RemoveCreature takes c off the grid. References held elsewhere see it as
// dead.
func (g *Grid) RemoveCreature(c *Creature) error {
	i := slices.Index(g.creatures, c)
	if i < 0 {
		return fmt.Errorf("remove %s: %w", c, ErrUnknownCreature)
	}
	g.creatures = slices.Delete(g.creatures, i, i+1)
	g.detach(c)
	c.alive = false
	c.walking = false
	g.notify(c.pos, c, mapview.TileRemove)
	return nil
}

func (g *Grid) detach(c *Creature) {
	if t := g.tiles[c.pos]; t != nil {
		if i := slices.Index(t.creatures, c); i >= 0 {
			t.creatures = slices.Delete(t.creatures, i, i+1)
		}
	}
}

// Walk starts a one-tile step of c in direction d. Floor changes happen only
// through MoveCreature.
func (g *Grid) Walk(c *Creature, d geom.Direction) error {
	if !c.alive {
		return fmt.Errorf("walk %s: %w", c, ErrUnknownCreature)
	}
	if c.walking {
		return nil
	}
	to := c.pos.TranslatedToDirection(d)
	t := g.tiles[to]
	if t == nil {
		return fmt.Errorf("walk %s to %s: %w", c, to, ErrNoTile)
	}
	if !t.IsWalkable() {
		c.direction = d
		return fmt.Errorf("walk %s to %s: %w", c, to, ErrBlocked)
	}
	from := c.pos
	g.detach(c)
	t.creatures = append(t.creatures, c)
	c.startStep(to, d)
	g.log.Debug("creature step", "creature", c.String(), "from", from.String(), "to", to.String())
	g.notify(from, c, mapview.TileRemove)
	g.notify(to, c, mapview.TileAdd)
	g.notifyWalk(c)
	return nil
}

// MoveCreature teleports c to pos without a walk animation.
func (g *Grid) MoveCreature(c *Creature, pos geom.Position) error {
	if !c.alive {
		return fmt.Errorf("move %s: %w", c, ErrUnknownCreature)
	}
	t := g.tiles[pos]
	if t == nil {
		return fmt.Errorf("move %s to %s: %w", c, pos, ErrNoTile)
	}
	from := c.pos
	g.detach(c)
	t.creatures = append(t.creatures, c)
	wasWalking := c.walking
	c.pos = pos
	c.walking = false
	c.walkTime = 0
	g.notify(from, c, mapview.TileRemove)
	g.notify(pos, c, mapview.TileAdd)
	if wasWalking {
		g.notifyWalk(c)
	}
	return nil
}

// Creatures returns the live creatures in insertion order.
func (g *Grid) Creatures() []*Creature { return g.creatures }

// AddMissile launches m on its starting floor.
func (g *Grid) AddMissile(m *Missile) {
	z := m.from.Z
	g.missiles[z] = append(g.missiles[z], m)
}

func (g *Grid) FloorMissiles(z int) []mapview.Missile {
	ms := g.missiles[z]
	if len(ms) == 0 {
		return nil
	}
	out := make([]mapview.Missile, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

// Say anchors a speech bubble for c. An empty message clears it.
func (g *Grid) Say(c *Creature, mode mapview.MessageMode, msg string) {
	g.statics = slices.DeleteFunc(g.statics, func(s *StaticText) bool { return s.speaker == c })
	if msg == "" {
		return
	}
	g.statics = append(g.statics, newStaticText(c, mode, msg))
}

// ShowAnimatedText floats text upward from pos.
func (g *Grid) ShowAnimatedText(pos geom.Position, text string, colour uint8) {
	g.animated = append(g.animated, newAnimatedText(pos, text, colour))
}

func (g *Grid) StaticTexts() []mapview.StaticText {
	if len(g.statics) == 0 {
		return nil
	}
	out := make([]mapview.StaticText, len(g.statics))
	for i, s := range g.statics {
		out[i] = s
	}
	return out
}

func (g *Grid) AnimatedTexts() []mapview.AnimatedText {
	if len(g.animated) == 0 {
		return nil
	}
	out := make([]mapview.AnimatedText, len(g.animated))
	for i, a := range g.animated {
		out[i] = a
	}
	return out
}

func (g *Grid) Light() mapview.Light          { return g.light }
func (g *Grid) AwareRange() geom.AwareRange { return g.aware }

// SetLight changes the ambient light and tells the listeners.
func (g *Grid) SetLight(l mapview.Light) {
	if l == g.light {
		return
	}
	g.light = l
	for _, li := range g.listeners {
		li.OnGlobalLightChange(l)
	}
}

// IsLookPossible reports whether sight passes through pos. Empty space never
// blocks.
func (g *Grid) IsLookPossible(pos geom.Position) bool {
	t := g.tiles[pos]
	return t == nil || t.isLookPossible()
}

// ProjectileEnd walks up to n tiles from from towards d and returns where a
// projectile lands and how many tiles it crossed. It stops short of the
// first tile that blocks sight.
func (g *Grid) ProjectileEnd(from geom.Position, d geom.Direction, n int) (geom.Position, int) {
	end := from
	for i := range n {
		next := end.TranslatedToDirection(d)
		if !g.IsLookPossible(next) {
			return end, i
		}
		end = next
	}
	return end, n
}

// SpectatorsInRange returns the live creatures inside the box around center.
// With multiFloor it spans the floors a viewer on center's floor could see:
// the whole surface above ground, two floors either way below it.
func (g *Grid) SpectatorsInRange(center geom.Position, multiFloor bool, left, right, top, bottom int) []mapview.Creature {
	minZ, maxZ := center.Z, center.Z
	if multiFloor {
		if center.Z >= geom.UndergroundFloor {
			minZ = max(center.Z-geom.AwareUndergroundFloorRange, geom.UndergroundFloor)
			maxZ = min(center.Z+geom.AwareUndergroundFloorRange, geom.MaxZ)
		} else {
			minZ, maxZ = 0, geom.SeaFloor
		}
	}
	var out []mapview.Creature
	for _, c := range g.creatures {
		if !c.alive || c.pos.Z < minZ || c.pos.Z > maxZ {
			continue
		}
		if center.IsInRange(c.pos, left, right, top, bottom, true) {
			out = append(out, c)
		}
	}
	return out
}

// Update advances walks, missiles and texts by dt.
func (g *Grid) Update(dt time.Duration) {
	for _, c := range g.creatures {
		if c.update(dt) {
			g.notifyWalk(c)
		}
	}
	for z, ms := range g.missiles {
		for _, m := range ms {
			m.elapsed += dt
		}
		ms = slices.DeleteFunc(ms, (*Missile).done)
		if len(ms) == 0 {
			delete(g.missiles, z)
			continue
		}
		g.missiles[z] = ms
	}
	for _, s := range g.statics {
		s.age += dt
	}
	g.statics = slices.DeleteFunc(g.statics, func(s *StaticText) bool {
		return s.age >= s.duration || !s.speaker.alive
	})
	for _, a := range g.animated {
		a.age += dt
	}
	g.animated = slices.DeleteFunc(g.animated, func(a *AnimatedText) bool { return a.age >= animatedTextDuration })
}
