package mapview

import (
	"image/color"
	"time"

	"github.com/Garsondee/mapview/internal/geom"
)

// DrawFlags selects which parts of a thing are updated while drawing.
type DrawFlags uint32

const (
	UpdateThings DrawFlags = 1 << iota
	UpdateLights
	UpdateAll = UpdateThings | UpdateLights
)

// InfoFlags selects which creature information overlays are drawn.
type InfoFlags uint32

const (
	DrawNames InfoFlags = 1 << iota
	DrawBars
	DrawManaBar
)

// Light is an ambient or point light.
type Light struct {
	Intensity uint8
	Color     uint8
}

// EightBitColor expands a 6x6x6 palette index into RGBA. Indexes past the
// cube are white.
func EightBitColor(v uint8) color.RGBA {
	if v >= 216 {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return color.RGBA{
		R: (v / 36) % 6 * 51,
		G: (v / 6) % 6 * 51,
		B: v % 6 * 51,
		A: 255,
	}
}

// WorldGrid is the read-only view of the world the map view renders.
type WorldGrid interface {
	// Tile returns the tile at pos, or nil when nothing is stored there.
	Tile(pos geom.Position) Tile
	FloorMissiles(z int) []Missile
	StaticTexts() []StaticText
	AnimatedTexts() []AnimatedText
	SpectatorsInRange(center geom.Position, multiFloor bool, left, right, top, bottom int) []Creature
	IsLookPossible(pos geom.Position) bool
	Light() Light
	AwareRange() geom.AwareRange
}

// Tile is the capability set the visibility pass needs from a grid cell.
type Tile interface {
	Position() geom.Position
	IsDrawable() bool
	HasGround() bool
	IsGroundTranslucent() bool
	IsTopGround() bool
	HasGroundBorderToDraw() bool
	HasBottomOrTopToDraw() bool
	// IsCompletelyCovered reports whether tiles on floors from firstFloor up
	// hide this tile entirely.
	IsCompletelyCovered(firstFloor int) bool
	HasLight() bool
	LimitsFloorsView(isFreeView bool) bool
	IsClickable() bool
	// Creatures returns the creatures on the tile in stacking order.
	Creatures() []Creature

	DrawGround(c Canvas, dest geom.Point, scale float64, flags DrawFlags, light LightLayer)
	DrawGroundBorder(c Canvas, dest geom.Point, scale float64, flags DrawFlags, light LightLayer)
	Draw(c Canvas, dest geom.Point, scale float64, flags DrawFlags, light LightLayer)
}

// TileSink is implemented by tiles that want to know when a visibility pass
// includes them. The callback must not trigger another rebuild.
type TileSink interface {
	OnAddVisibleTile(v View)
}

// Highlighter is implemented by tiles that can show a mouse-over highlight.
type Highlighter interface {
	Select(topTile bool)
	Unselect()
}

// View is the read-only slice of MapView handed to tile callbacks.
type View interface {
	CameraPosition() geom.Position
	CachedFirstVisibleFloor() int
	CachedLastVisibleFloor() int
	TileSize() int
}

// CreatureInfo carries the cached placement data for an information badge.
type CreatureInfo struct {
	Rect              geom.Rect
	Dest              geom.Point
	Scale             float64
	DrawOffset        geom.Point
	HorizontalStretch float64
	VerticalStretch   float64
	Flags             InfoFlags
}

// Creature is a weakly referenced world actor.
type Creature interface {
	// IsAlive reports whether the creature is still part of the world. A dead
	// reference makes a following camera invalid.
	IsAlive() bool
	Position() geom.Position
	IsWalking() bool
	Direction() geom.Direction
	// WalkOffset is the sub-tile pixel offset of an in-progress step.
	WalkOffset() geom.Point
	DrawInformation(c Canvas, info CreatureInfo)
}

// Missile is a projectile in flight on one floor.
type Missile interface {
	Position() geom.Position
	Draw(c Canvas, dest geom.Point, scale float64, flags DrawFlags, light LightLayer)
}

// MessageMode classifies static text; MessageNone is never drawn.
type MessageMode uint8

const (
	MessageNone MessageMode = iota
	MessageSay
	MessageWhisper
	MessageYell
	MessageMonsterSay
)

// StaticText is a speech bubble anchored to a tile.
type StaticText interface {
	Position() geom.Position
	MessageMode() MessageMode
	DrawText(c Canvas, dest geom.Point, bounds geom.Rect)
}

// AnimatedText is floating text such as damage numbers.
type AnimatedText interface {
	Position() geom.Position
	DrawText(c Canvas, dest geom.Point, bounds geom.Rect)
}

// LightLayer accumulates per-floor shading and light sources for the frame.
type LightLayer interface {
	SetGlobalLight(l Light)
	SetFloor(z int)
	SetShade(p geom.Point)
	AddLightSource(center geom.Point, scale float64, l Light)
	Resize(size geom.Size, tileSize int)
	Draw(dest, src geom.Rect)
}

// PoolKind identifies a render pool.
type PoolKind uint8

const (
	PoolMap PoolKind = iota
	PoolCreatureInformation
	PoolText
)

func (k PoolKind) String() string {
	switch k {
	case PoolMap:
		return "map"
	case PoolCreatureInformation:
		return "creature_information"
	case PoolText:
		return "text"
	default:
		return "unknown"
	}
}

// Texture is an opaque backend image handle.
type Texture interface {
	Size() geom.Size
}

// Canvas records draw commands into the active pool.
type Canvas interface {
	FillRect(r geom.Rect, c color.Color)
	// SetLastOpacity changes the opacity of the most recent command.
	SetLastOpacity(alpha float64)
	DrawTexture(r geom.Rect, t Texture)
	DrawText(p geom.Point, s string, c color.Color)
}

// Painter is the global paint state applied while a pool is presented.
type Painter interface {
	SetOpacity(alpha float64)
	ResetOpacity()
	SetShader(s Shader)
	ResetShader()
}

// Shader is a post-processing program with named float uniforms.
type Shader interface {
	Name() string
	SetUniform(name string, v ...float32)
}

// Pool is a layered draw target owned by the map view.
type Pool interface {
	Kind() PoolKind
	Resize(size geom.Size)
	SetSmooth(smooth bool)
	OnBeforeDraw(fn func(Painter))
	OnAfterDraw(fn func(Painter))
}

// RenderBackend creates pools and selects the one receiving commands.
type RenderBackend interface {
	CreatePool(kind PoolKind) Pool
	// Use makes p the active pool for this frame and returns its canvas.
	// dest and src are only meaningful for framebuffer pools.
	Use(p Pool, dest, src geom.Rect) Canvas
	MaxTextureSize() int
	HasShaders() bool
}

// RebuildStats describes one visibility pass.
type RebuildStats struct {
	Camera     geom.Position
	FirstFloor int
	LastFloor  int
	FloorMin   int
	FloorMax   int
	Grounds    int
	Borders    int
	BottomTops int
	Creatures  int
	Culled     int
	Duration   time.Duration
}

// Observer receives instrumentation callbacks.
type Observer interface {
	ObserveRebuild(s RebuildStats)
	ObserveGeometryRejected(reason string)
}
