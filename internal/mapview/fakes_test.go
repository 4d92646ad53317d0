package mapview

import (
	"fmt"
	"image/color"
	"time"

	"github.com/Garsondee/mapview/internal/geom"
)

type fakeTile struct {
	pos         geom.Position
	ground      bool
	translucent bool
	topGround   bool
	border      bool
	bottomTop   bool
	covered     bool
	light       bool
	limitsView  bool
	clickable   bool
	creatures   []Creature
	onVisible   func(View)

	visits      int
	selected    bool
	topSelected bool
	unselects   int
}

func groundTile(pos geom.Position) *fakeTile {
	return &fakeTile{pos: pos, ground: true, clickable: true}
}

func (t *fakeTile) Position() geom.Position { return t.pos }
func (t *fakeTile) IsDrawable() bool {
	return t.ground || t.border || t.bottomTop || len(t.creatures) > 0
}
func (t *fakeTile) HasGround() bool              { return t.ground }
func (t *fakeTile) IsGroundTranslucent() bool    { return t.translucent }
func (t *fakeTile) IsTopGround() bool            { return t.topGround }
func (t *fakeTile) HasGroundBorderToDraw() bool  { return t.border }
func (t *fakeTile) HasBottomOrTopToDraw() bool   { return t.bottomTop }
func (t *fakeTile) IsCompletelyCovered(int) bool { return t.covered }
func (t *fakeTile) HasLight() bool               { return t.light }
func (t *fakeTile) LimitsFloorsView(bool) bool   { return t.limitsView }
func (t *fakeTile) IsClickable() bool            { return t.clickable }
func (t *fakeTile) Creatures() []Creature        { return t.creatures }
func (t *fakeTile) Select(topTile bool)          { t.selected, t.topSelected = true, topTile }
func (t *fakeTile) Unselect()                    { t.selected = false; t.unselects++ }

func (t *fakeTile) OnAddVisibleTile(v View) {
	t.visits++
	if t.onVisible != nil {
		t.onVisible(v)
	}
}

func (t *fakeTile) DrawGround(c Canvas, dest geom.Point, _ float64, _ DrawFlags, _ LightLayer) {
	record(c, "ground", t.pos, dest)
}

func (t *fakeTile) DrawGroundBorder(c Canvas, dest geom.Point, _ float64, _ DrawFlags, _ LightLayer) {
	record(c, "border", t.pos, dest)
}

func (t *fakeTile) Draw(c Canvas, dest geom.Point, _ float64, _ DrawFlags, _ LightLayer) {
	record(c, "bottomtop", t.pos, dest)
}

func record(c Canvas, what string, pos geom.Position, dest geom.Point) {
	if fc, ok := c.(*fakeCanvas); ok {
		fc.ops = append(fc.ops, fmt.Sprintf("%s %d,%d,%d @%d,%d", what, pos.X, pos.Y, pos.Z, dest.X, dest.Y))
	}
}

type fakeMissile struct{ pos geom.Position }

func (m *fakeMissile) Position() geom.Position { return m.pos }
func (m *fakeMissile) Draw(c Canvas, dest geom.Point, _ float64, _ DrawFlags, _ LightLayer) {
	record(c, "missile", m.pos, dest)
}

type fakeCreature struct {
	name    string
	alive   bool
	pos     geom.Position
	walking bool
	dir     geom.Direction
	offset  geom.Point
	infos   []CreatureInfo
}

func newCreature(name string, pos geom.Position) *fakeCreature {
	return &fakeCreature{name: name, alive: true, pos: pos, dir: geom.South}
}

func (c *fakeCreature) IsAlive() bool             { return c.alive }
func (c *fakeCreature) Position() geom.Position   { return c.pos }
func (c *fakeCreature) IsWalking() bool           { return c.walking }
func (c *fakeCreature) Direction() geom.Direction { return c.dir }
func (c *fakeCreature) WalkOffset() geom.Point    { return c.offset }
func (c *fakeCreature) IsCreature() bool          { return true }
func (c *fakeCreature) DrawInformation(_ Canvas, info CreatureInfo) {
	c.infos = append(c.infos, info)
}

type fakeText struct {
	pos   geom.Position
	mode  MessageMode
	drawn []geom.Point
}

func (t *fakeText) Position() geom.Position  { return t.pos }
func (t *fakeText) MessageMode() MessageMode { return t.mode }
func (t *fakeText) DrawText(_ Canvas, dest geom.Point, _ geom.Rect) {
	t.drawn = append(t.drawn, dest)
}

type spectatorQuery struct {
	center                   geom.Position
	multiFloor               bool
	left, right, top, bottom int
}

type fakeGrid struct {
	tiles    map[geom.Position]*fakeTile
	look     map[geom.Position]bool
	missiles map[int][]Missile
	statics  []StaticText
	animated []AnimatedText
	light    Light
	aware    geom.AwareRange
	queries  []spectatorQuery
}

func newGrid() *fakeGrid {
	return &fakeGrid{
		tiles:    map[geom.Position]*fakeTile{},
		look:     map[geom.Position]bool{},
		missiles: map[int][]Missile{},
		aware:    geom.AwareRange{Left: 8, Right: 9, Top: 6, Bottom: 7},
	}
}

func (g *fakeGrid) add(t *fakeTile) *fakeTile {
	g.tiles[t.pos] = t
	return t
}

// fillFloor adds a ground tile to every cell of the rectangle on floor z.
func (g *fakeGrid) fillFloor(x0, y0, x1, y1, z int) {
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			g.add(groundTile(geom.Pos(x, y, z)))
		}
	}
}

func (g *fakeGrid) Tile(pos geom.Position) Tile {
	if t, ok := g.tiles[pos]; ok {
		return t
	}
	return nil
}

func (g *fakeGrid) FloorMissiles(z int) []Missile       { return g.missiles[z] }
func (g *fakeGrid) StaticTexts() []StaticText           { return g.statics }
func (g *fakeGrid) AnimatedTexts() []AnimatedText       { return g.animated }
func (g *fakeGrid) IsLookPossible(p geom.Position) bool { return g.look[p] }
func (g *fakeGrid) Light() Light                        { return g.light }
func (g *fakeGrid) AwareRange() geom.AwareRange         { return g.aware }

func (g *fakeGrid) SpectatorsInRange(center geom.Position, multiFloor bool, left, right, top, bottom int) []Creature {
	g.queries = append(g.queries, spectatorQuery{center, multiFloor, left, right, top, bottom})
	return nil
}

type fakeCanvas struct {
	kind PoolKind
	ops  []string
}

func (c *fakeCanvas) FillRect(r geom.Rect, _ color.Color) {
	c.ops = append(c.ops, fmt.Sprintf("fill %d,%d,%d,%d", r.X, r.Y, r.W, r.H))
}

func (c *fakeCanvas) SetLastOpacity(alpha float64) {
	c.ops = append(c.ops, fmt.Sprintf("opacity %.2f", alpha))
}

func (c *fakeCanvas) DrawTexture(r geom.Rect, _ Texture) {
	c.ops = append(c.ops, fmt.Sprintf("texture %d,%d,%d,%d", r.X, r.Y, r.W, r.H))
}

func (c *fakeCanvas) DrawText(p geom.Point, s string, _ color.Color) {
	c.ops = append(c.ops, fmt.Sprintf("text %q @%d,%d", s, p.X, p.Y))
}

type fakePool struct {
	kind   PoolKind
	size   geom.Size
	smooth bool
	before func(Painter)
	after  func(Painter)
	canvas *fakeCanvas
}

func (p *fakePool) Kind() PoolKind                { return p.kind }
func (p *fakePool) Resize(size geom.Size)         { p.size = size }
func (p *fakePool) SetSmooth(smooth bool)         { p.smooth = smooth }
func (p *fakePool) OnBeforeDraw(fn func(Painter)) { p.before = fn }
func (p *fakePool) OnAfterDraw(fn func(Painter))  { p.after = fn }

// present runs the pool's draw hooks the way a backend does.
func (p *fakePool) present(painter Painter) {
	if p.before != nil {
		p.before(painter)
	}
	if p.after != nil {
		p.after(painter)
	}
}

type fakeBackend struct {
	pools      map[PoolKind]*fakePool
	uses       []PoolKind
	maxTexture int
	shaders    bool
}

func newBackend() *fakeBackend {
	return &fakeBackend{pools: map[PoolKind]*fakePool{}, maxTexture: 4096, shaders: true}
}

func (b *fakeBackend) CreatePool(kind PoolKind) Pool {
	p := &fakePool{kind: kind, canvas: &fakeCanvas{kind: kind}}
	b.pools[kind] = p
	return p
}

func (b *fakeBackend) Use(p Pool, _, _ geom.Rect) Canvas {
	fp := p.(*fakePool)
	b.uses = append(b.uses, fp.kind)
	return fp.canvas
}

func (b *fakeBackend) MaxTextureSize() int { return b.maxTexture }
func (b *fakeBackend) HasShaders() bool    { return b.shaders }

func (b *fakeBackend) used(kind PoolKind) bool {
	for _, k := range b.uses {
		if k == kind {
			return true
		}
	}
	return false
}

func (b *fakeBackend) mapOps() []string { return b.pools[PoolMap].canvas.ops }

type fakePainter struct {
	opacity      float64
	shader       Shader
	shaderResets int
	opacityReset int
}

func (p *fakePainter) SetOpacity(alpha float64) { p.opacity = alpha }
func (p *fakePainter) ResetOpacity()            { p.opacity = 1; p.opacityReset++ }
func (p *fakePainter) SetShader(s Shader)       { p.shader = s }
func (p *fakePainter) ResetShader()             { p.shader = nil; p.shaderResets++ }

type fakeShader struct {
	name     string
	uniforms map[string][]float32
}

func newShader(name string) *fakeShader {
	return &fakeShader{name: name, uniforms: map[string][]float32{}}
}

func (s *fakeShader) Name() string { return s.name }
func (s *fakeShader) SetUniform(name string, v ...float32) {
	s.uniforms[name] = append([]float32(nil), v...)
}

type fakeLight struct {
	global  Light
	floors  []int
	shades  []geom.Point
	size    geom.Size
	tile    int
	drawn   []geom.Rect
	sources int
}

func (l *fakeLight) SetGlobalLight(light Light)                { l.global = light }
func (l *fakeLight) SetFloor(z int)                            { l.floors = append(l.floors, z) }
func (l *fakeLight) SetShade(p geom.Point)                     { l.shades = append(l.shades, p) }
func (l *fakeLight) AddLightSource(geom.Point, float64, Light) { l.sources++ }
func (l *fakeLight) Resize(size geom.Size, tileSize int)       { l.size, l.tile = size, tileSize }
func (l *fakeLight) Draw(dest, _ geom.Rect)                    { l.drawn = append(l.drawn, dest) }

type fakeObserver struct {
	rebuilds []RebuildStats
	rejected []string
}

func (o *fakeObserver) ObserveRebuild(s RebuildStats)         { o.rebuilds = append(o.rebuilds, s) }
func (o *fakeObserver) ObserveGeometryRejected(reason string) { o.rejected = append(o.rejected, reason) }

type fakeClock struct{ t time.Time }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeTexture struct{ size geom.Size }

func (t fakeTexture) Size() geom.Size { return t.size }
