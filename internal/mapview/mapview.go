// Package mapview renders a camera's view over a multi-floor tile world.
//
// A MapView owns three render pools (map, creature information, text). Each
// frame Draw validates the cached visibility pass, composites the visible
// floors back to front into the map pool, then adds creature badges, lights
// and floating text. The visibility pass is lazy: any number of invalidation
// requests between two frames collapse into a single rebuild.
//
// MapView is driven from one render loop and is not safe for concurrent use.
package mapview

import (
	"log/slog"
	"time"

	"github.com/Garsondee/mapview/internal/geom"
)

// ViewMode is the coarse level-of-detail tier.
type ViewMode uint8

const (
	NearView ViewMode = iota
	MidView
	FarView
	HugeView
)

func (m ViewMode) String() string {
	switch m {
	case NearView:
		return "near"
	case MidView:
		return "mid"
	case FarView:
		return "far"
	case HugeView:
		return "huge"
	default:
		return "unknown"
	}
}

// ParseViewMode maps a config name to a ViewMode.
func ParseViewMode(s string) (ViewMode, bool) {
	for m := NearView; m <= HugeView; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return NearView, false
}

// Visible area thresholds in tiles for the automatic view mode.
const (
	nearViewArea = 32 * 32
	midViewArea  = 64 * 64
	farViewArea  = 128 * 128
)

// unlockedFloor marks the first visible floor as computed, not forced.
const unlockedFloor = -1

// VisibleFloor holds one floor's drawable tiles in sweep order.
type VisibleFloor struct {
	Grounds    []Tile
	Borders    []Tile
	BottomTops []Tile
}

func (f *VisibleFloor) clear() {
	f.Grounds = f.Grounds[:0]
	f.Borders = f.Borders[:0]
	f.BottomTops = f.BottomTops[:0]
}

// RectCache memoizes the framebuffer mapping for the last destination rect.
type RectCache struct {
	Rect              geom.Rect
	SrcRect           geom.Rect
	DrawOffset        geom.Point
	HorizontalStretch float64
	VerticalStretch   float64
}

// FloorHooks run around each floor of the floor pass.
type FloorHooks struct {
	OnFloorDrawingStart func(z int)
	OnFloorDrawingEnd   func(z int)
}

// MapView is the map viewport.
type MapView struct {
	grid     WorldGrid
	backend  RenderBackend
	light    LightLayer
	log      *slog.Logger
	observer Observer
	now      func() time.Time
	hooks    FloorHooks

	mapPool      Pool
	creaturePool Pool
	textPool     Pool

	visibleDimension    geom.Size
	drawDimension       geom.Size
	optimizedSize       geom.Size
	virtualCenterOffset geom.Point
	visibleCenterOffset geom.Point
	rectDimension       geom.Rect
	tileSize            int
	scaleFactor         float64
	renderScale         int
	awareRange          geom.AwareRange
	viewportDirection   [geom.InvalidDirection + 1]geom.AwareRange
	viewport            geom.AwareRange
	viewMode            ViewMode
	autoViewMode        bool
	multiFloor          bool
	rectCache           RectCache

	cachedVisibleTiles          [geom.MaxZ + 1]VisibleFloor
	visibleCreatures            []Creature
	floorMin                    int
	floorMax                    int
	cachedFirstVisibleFloor     int
	cachedLastVisibleFloor      int
	lockedFirstVisibleFloor     int
	mustUpdateVisibleTilesCache bool
	mustUpdateVisibleCreatures  bool
	rebuilding                  bool

	follow               bool
	followingCreature    Creature
	customCameraPosition geom.Position
	lastCameraPosition   geom.Position
	moveOffset           geom.Point

	fade shaderFade

	drawLights           bool
	drawTexts            bool
	drawNames            bool
	drawHealthBars       bool
	drawManaBar          bool
	drawHighlightTarget  bool
	shadowFloorIntensity float64
	minimumAmbientLight  float64
	crosshair            Texture

	mousePosition     geom.Position
	lastHighlightTile Tile
	shiftPressed      bool
}

// Option configures a MapView at construction.
type Option func(*MapView)

// WithLightLayer supplies the light layer used when lights are enabled.
func WithLightLayer(l LightLayer) Option {
	return func(v *MapView) { v.light = l }
}

// WithLogger routes diagnostics to l. The default discards them.
func WithLogger(l *slog.Logger) Option {
	return func(v *MapView) {
		if l != nil {
			v.log = l
		}
	}
}

// WithObserver registers an instrumentation sink.
func WithObserver(o Observer) Option {
	return func(v *MapView) { v.observer = o }
}

// WithClock replaces time.Now for fade timing.
func WithClock(now func() time.Time) Option {
	return func(v *MapView) {
		if now != nil {
			v.now = now
		}
	}
}

// WithDefaultShader sets the shader active from the first frame.
func WithDefaultShader(s Shader) Option {
	return func(v *MapView) { v.fade.shader = s }
}

// WithFloorHooks installs per-floor callbacks.
func WithFloorHooks(h FloorHooks) Option {
	return func(v *MapView) { v.hooks = h }
}

// New creates a map view over grid drawing through backend. The view starts
// with a 15x11 visible dimension and no camera.
func New(grid WorldGrid, backend RenderBackend, opts ...Option) *MapView {
	v := &MapView{
		grid:                        grid,
		backend:                     backend,
		log:                         slog.New(slog.DiscardHandler),
		now:                         time.Now,
		renderScale:                 100,
		multiFloor:                  true,
		viewMode:                    NearView,
		lockedFirstVisibleFloor:     unlockedFloor,
		mustUpdateVisibleTilesCache: true,
		mustUpdateVisibleCreatures:  true,
		customCameraPosition:        geom.InvalidPosition,
		lastCameraPosition:          geom.InvalidPosition,
		mousePosition:               geom.InvalidPosition,
		drawTexts:                   true,
		drawNames:                   true,
		drawHealthBars:              true,
		drawManaBar:                 true,
	}
	v.fade.switchDone = true
	for _, o := range opts {
		o(v)
	}
	v.fade.timerStart = v.now()

	aware := grid.AwareRange()
	v.optimizedSize = geom.Sz(aware.Horizontal(), aware.Vertical()).Mul(geom.TilePixels)

	v.mapPool = backend.CreatePool(PoolMap)
	v.creaturePool = backend.CreatePool(PoolCreatureInformation)
	v.textPool = backend.CreatePool(PoolText)
	v.mapPool.OnBeforeDraw(v.beforeMapDraw)
	v.mapPool.OnAfterDraw(v.afterMapDraw)

	v.SetVisibleDimension(geom.Sz(15, 11))
	return v
}

// Draw renders one frame into rect. It rebuilds the visibility cache when
// dirty, composites the floors, and, once a camera is known, adds creature
// information, lights and text.
func (v *MapView) Draw(rect geom.Rect) {
	if v.mustUpdateVisibleTilesCache {
		v.updateVisibleTilesCache()
	}

	if v.rectCache.Rect != rect {
		v.rectCache.Rect = rect
		v.rectCache.SrcRect = v.calcFramebufferSource(rect.Size())
		v.rectCache.DrawOffset = v.rectCache.SrcRect.TopLeft()
		v.rectCache.HorizontalStretch = stretch(rect.W, v.rectCache.SrcRect.W)
		v.rectCache.VerticalStretch = stretch(rect.H, v.rectCache.SrcRect.H)
	}

	v.drawFloor()

	// Nothing else is meaningful until the player position is known.
	if !v.CameraPosition().IsValid() {
		return
	}

	v.drawCreatureInformation()
	if v.lightsEnabled() {
		v.light.Draw(rect, v.rectCache.SrcRect)
	}
	v.drawText()
}

func stretch(dst, src int) float64 {
	if src == 0 {
		return 1
	}
	return float64(dst) / float64(src)
}

func (v *MapView) lightsEnabled() bool {
	return v.drawLights && v.light != nil
}

// SetDrawLights toggles the light layer. Without a light layer the setting
// is remembered but has no effect.
func (v *MapView) SetDrawLights(enable bool) {
	if enable == v.drawLights {
		return
	}
	v.drawLights = enable
	if enable && v.light == nil {
		v.log.Warn("lights requested but no light layer configured")
	}
	if v.lightsEnabled() {
		v.light.Resize(v.rectDimension.Size(), v.tileSize)
	}
	v.updateLight()
}

func (v *MapView) updateLight() {
	if !v.lightsEnabled() {
		return
	}
	camera := v.CameraPosition()

	var ambient Light
	if camera.Z <= geom.SeaFloor {
		ambient = v.grid.Light()
	}
	if minimum := uint8(v.minimumAmbientLight * 255); minimum > ambient.Intensity {
		ambient.Intensity = minimum
	}
	v.light.SetGlobalLight(ambient)
}

// SetMinimumAmbientLight sets the ambient floor in [0,1].
func (v *MapView) SetMinimumAmbientLight(intensity float64) {
	v.minimumAmbientLight = clamp01(intensity)
	v.updateLight()
}

// SetShadowFloorIntensity sets the opacity of the shadow drawn over the floor
// directly below the camera. Zero disables it.
func (v *MapView) SetShadowFloorIntensity(intensity float64) {
	v.shadowFloorIntensity = clamp01(intensity)
}

func (v *MapView) SetDrawTexts(enable bool)           { v.drawTexts = enable }
func (v *MapView) SetDrawNames(enable bool)           { v.drawNames = enable }
func (v *MapView) SetDrawHealthBars(enable bool)      { v.drawHealthBars = enable }
func (v *MapView) SetDrawManaBar(enable bool)         { v.drawManaBar = enable }
func (v *MapView) SetDrawHighlightTarget(enable bool) { v.drawHighlightTarget = enable }

// SetCrosshairTexture sets the texture drawn over the mouse tile; nil
// disables the crosshair.
func (v *MapView) SetCrosshairTexture(t Texture) { v.crosshair = t }

func (v *MapView) DrawLights() bool           { return v.drawLights }
func (v *MapView) VisibleDimension() geom.Size { return v.visibleDimension }
func (v *MapView) DrawDimension() geom.Size    { return v.drawDimension }
func (v *MapView) TileSize() int               { return v.tileSize }
func (v *MapView) ScaleFactor() float64        { return v.scaleFactor }
func (v *MapView) RenderScale() int            { return v.renderScale }
func (v *MapView) ViewMode() ViewMode          { return v.viewMode }
func (v *MapView) IsAutoViewMode() bool        { return v.autoViewMode }
func (v *MapView) IsMultiFloor() bool          { return v.multiFloor }
func (v *MapView) AwareRange() geom.AwareRange { return v.awareRange }
func (v *MapView) Viewport() geom.AwareRange   { return v.viewport }
func (v *MapView) RectCache() RectCache        { return v.rectCache }
func (v *MapView) MousePosition() geom.Position {
	return v.mousePosition
}

// VisibleCenterOffset is the tile offset of the camera inside the draw buffer.
func (v *MapView) VisibleCenterOffset() geom.Point { return v.visibleCenterOffset }

func (v *MapView) CachedFirstVisibleFloor() int { return v.cachedFirstVisibleFloor }
func (v *MapView) CachedLastVisibleFloor() int  { return v.cachedLastVisibleFloor }

// FloorRange returns the floors populated by the last visibility pass.
func (v *MapView) FloorRange() (floorMin, floorMax int) { return v.floorMin, v.floorMax }

// VisibleFloor returns the cached buckets for floor z. The slices are owned
// by the view and are overwritten by the next rebuild.
func (v *MapView) VisibleFloor(z int) VisibleFloor {
	if z < 0 || z > geom.MaxZ {
		return VisibleFloor{}
	}
	return v.cachedVisibleTiles[z]
}

// VisibleCreatures returns the creatures collected by the last pass that
// refreshed them, topmost-stacked first per tile.
func (v *MapView) VisibleCreatures() []Creature { return v.visibleCreatures }

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
