// Package game is the windowed viewer: an Ebiten game that generates a
// world, follows the player with a map view and draws it through the
// render backend.
package game

import (
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/mapview/internal/config"
	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
	"github.com/Garsondee/mapview/internal/render"
	"github.com/Garsondee/mapview/internal/telemetry"
	"github.com/Garsondee/mapview/internal/world"
)

// borderWidth is the pixel gap between the window edge and the map.
const borderWidth = 24

// npcCount is how many rats roam around the spawn.
const npcCount = 6

var (
	backgroundColour = color.RGBA{R: 12, G: 12, B: 16, A: 255}
	playerColour     = color.RGBA{R: 70, G: 130, B: 230, A: 255}
	npcColour        = color.RGBA{R: 150, G: 120, B: 90, A: 255}
)

type Game struct {
	cfg      *config.Config
	log      *slog.Logger
	observer *telemetry.Observer

	grid   *world.Grid
	layout world.Layout
	player *world.Creature
	npcs   []*world.Creature
	rng    *rand.Rand

	view        *mapview.MapView
	backend     *render.Backend
	light       *render.LightLayer
	crosshair   *render.Image
	shaders     map[string]*render.Shader
	shaderNames []string
	shaderIdx   int
	fadeIn      time.Duration
	fadeOut     time.Duration

	width   int
	height  int
	mapRect geom.Rect

	prevKeys map[ebiten.Key]bool
	mods     mapview.KeyboardModifiers
	mousePos geom.Position
	bumped   geom.Direction
	showHUD  bool

	events    *EventLog
	inspector Inspector
	hudBuf    *ebiten.Image
	inspBuf   *ebiten.Image
	tick      int
	lastLine  map[*world.Creature]int
	lastFrame time.Duration
}

// Option configures a Game.
type Option func(*Game)

// WithObserver records rebuild and frame metrics.
func WithObserver(o *telemetry.Observer) Option {
	return func(g *Game) { g.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Game) { g.log = l }
}

// New builds the world and the view described by cfg.
func New(cfg *config.Config, opts ...Option) (*Game, error) {
	g := &Game{
		cfg:      cfg,
		log:      slog.Default(),
		width:    cfg.Window.Width,
		height:   cfg.Window.Height,
		prevKeys: make(map[ebiten.Key]bool),
		mousePos: geom.InvalidPosition,
		bumped:   geom.InvalidDirection,
		showHUD:  true,
		events:   NewEventLog(),
		lastLine: make(map[*world.Creature]int),
		fadeIn:   time.Duration(cfg.Shader.FadeInMS) * time.Millisecond,
		fadeOut:  time.Duration(cfg.Shader.FadeOutMS) * time.Millisecond,
	}
	for _, o := range opts {
		o(g)
	}
	g.rng = rand.New(rand.NewSource(cfg.World.Seed + 9999)) // #nosec G404 -- chatter only
	g.mapRect = geom.Rect{
		X: borderWidth,
		Y: borderWidth,
		W: g.width - 2*borderWidth - logPanelWidth,
		H: g.height - 2*borderWidth,
	}
	if g.mapRect.IsEmpty() {
		return nil, fmt.Errorf("window %dx%d leaves no room for the map", g.width, g.height)
	}

	if err := g.initWorld(); err != nil {
		return nil, err
	}
	if err := g.initView(); err != nil {
		return nil, err
	}
	g.hudBuf = ebiten.NewImage(g.width/hudScale, g.height/hudScale)
	g.inspBuf = ebiten.NewImage(inspBufW, inspBufH)
	g.events.Add(0, "world", EventInfo, fmt.Sprintf("seed %d, spawn %s", cfg.World.Seed, g.layout.Spawn))
	return g, nil
}

func (g *Game) initWorld() error {
	g.grid = world.NewGrid(world.WithGridLogger(g.log))
	gen := world.DefaultGenConfig
	gen.Seed = g.cfg.World.Seed
	gen.Width, gen.Height = g.cfg.World.Width, g.cfg.World.Height
	g.layout = world.Generate(g.grid, gen)

	g.player = world.NewCreature(1, "You", playerColour)
	if err := g.grid.AddCreature(g.player, g.layout.Spawn); err != nil {
		return fmt.Errorf("place player: %w", err)
	}
	g.npcs = placeNPCs(g.grid, g.layout.Spawn, npcCount)
	return nil
}

// placeNPCs puts up to n rats on free walkable tiles in rings around spawn.
func placeNPCs(grid *world.Grid, spawn geom.Position, n int) []*world.Creature {
	var out []*world.Creature
	for r := 2; r < 16 && len(out) < n; r++ {
		for _, d := range []geom.Direction{geom.NorthEast, geom.SouthWest, geom.SouthEast, geom.NorthWest} {
			if len(out) >= n {
				break
			}
			pos := spawn
			for range r {
				pos = pos.TranslatedToDirection(d)
			}
			if t := grid.At(pos); t == nil || !t.IsWalkable() {
				continue
			}
			c := world.NewCreature(len(out)+2, fmt.Sprintf("Rat %d", len(out)+1), npcColour)
			if grid.AddCreature(c, pos) == nil {
				out = append(out, c)
			}
		}
	}
	return out
}

func (g *Game) initView() error {
	var err error
	g.backend, err = render.NewBackend(render.WithLogger(g.log))
	if err != nil {
		return fmt.Errorf("render backend: %w", err)
	}
	g.shaders, err = render.BuiltinShaders()
	if err != nil {
		return fmt.Errorf("load shaders: %w", err)
	}
	for name := range g.shaders {
		g.shaderNames = append(g.shaderNames, name)
	}
	slices.Sort(g.shaderNames)

	g.light = render.NewLightLayer(g.backend)
	opts := []mapview.Option{mapview.WithLightLayer(g.light), mapview.WithLogger(g.log)}
	if g.observer != nil {
		opts = append(opts, mapview.WithObserver(g.observer))
	}
	g.view = mapview.New(g.grid, g.backend, opts...)
	g.grid.AddListener(g.view)
	g.view.FollowCreature(g.player)
	g.view.OptimizeForSize(g.mapRect.Size())

	g.crosshair = render.NewCrosshair(geom.TilePixels)
	g.cfg.View.Apply(g.view, g.crosshair)

	if name := g.cfg.Shader.Name; name != "" {
		i := slices.Index(g.shaderNames, name)
		if i < 0 {
			return fmt.Errorf("unknown shader %q, have %v", name, g.shaderNames)
		}
		g.shaderIdx = i
		g.view.SetShader(g.shaders[name], g.fadeIn, g.fadeOut)
	}
	return nil
}

func (g *Game) Update() error {
	dt := time.Second / time.Duration(ebiten.TPS())
	g.handleInput()
	g.wanderNPCs()
	g.chatter()
	g.grid.Update(dt)
	g.tick++
	return nil
}

var cardinals = [...]geom.Direction{geom.North, geom.East, geom.South, geom.West}

// wanderNPCs nudges idle rats along, now and then turning.
func (g *Game) wanderNPCs() {
	for _, c := range g.npcs {
		if !c.IsAlive() || c.IsWalking() || g.rng.Intn(30) != 0 {
			continue
		}
		dir := c.Direction()
		if g.rng.Intn(3) == 0 {
			dir = cardinals[g.rng.Intn(len(cardinals))]
		}
		_ = g.grid.Walk(c, dir)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColour)

	start := time.Now()
	g.view.Draw(g.mapRect)
	g.backend.Present(screen)
	g.lastFrame = time.Since(start)
	if g.observer != nil {
		g.observer.ObserveFrame(g.lastFrame)
	}

	ox, oy := float32(g.mapRect.X), float32(g.mapRect.Y)
	mw, mh := float32(g.mapRect.W), float32(g.mapRect.H)
	vector.StrokeRect(screen, ox-1, oy-1, mw+2, mh+2, 2.0, color.RGBA{R: 60, G: 70, B: 95, A: 255}, false)

	g.events.Draw(screen, g.width-logPanelWidth, g.height)
	if g.showHUD {
		g.drawHUD(screen)
	}
	g.drawInspector(screen)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Title returns the configured window title.
func (g *Game) Title() string { return g.cfg.Window.Title }
