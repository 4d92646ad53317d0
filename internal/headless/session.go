package headless

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Garsondee/mapview/internal/config"
	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
	"github.com/Garsondee/mapview/internal/world"
)

// DefaultFrameStep is the simulated time between two frames.
const DefaultFrameStep = 50 * time.Millisecond

var (
	dayLight  = mapview.Light{Intensity: 255, Color: 215}
	duskLight = mapview.Light{Intensity: 70, Color: 173}
)

// Session runs a generated world through a MapView frame by frame with no
// window. The player wanders at random, reproducibly for a given seed, and
// the camera follows it.
type Session struct {
	Log     *FrameLog
	Grid    *world.Grid
	Layout  world.Layout
	View    *mapview.MapView
	Backend *Backend
	Light   *LightRecorder
	Player  *world.Creature
	NPCs    []*world.Creature

	gen      world.GenConfig
	dt       time.Duration
	now      time.Time
	rng      *rand.Rand
	screen   geom.Rect
	npcs     int
	shaders  bool
	observer mapview.Observer
	logger   *slog.Logger
	script   map[int][]func(*Session)
	dayCycle int
	lastCam  geom.Position
	report   Report
}

// sessionOptionKind controls the pass in which an option is applied.
type sessionOptionKind int

const (
	sessOptWorld sessionOptionKind = iota // seed, size, verbose; applied before generation
	sessOptView                           // applied once the view exists
)

// SessionOption is a builder function applied during NewSession.
type SessionOption struct {
	kind sessionOptionKind
	fn   func(*Session)
}

// WithSeed sets the world and walker seed.
func WithSeed(seed int64) SessionOption {
	return SessionOption{sessOptWorld, func(s *Session) { s.gen.Seed = seed }}
}

// WithWorldSize sets the generated area in tiles.
func WithWorldSize(w, h int) SessionOption {
	return SessionOption{sessOptWorld, func(s *Session) {
		s.gen.Width = w
		s.gen.Height = h
	}}
}

// WithGenConfig replaces the whole terrain configuration.
func WithGenConfig(cfg world.GenConfig) SessionOption {
	return SessionOption{sessOptWorld, func(s *Session) { s.gen = cfg }}
}

// WithVerbose keeps every draw command in the log.
func WithVerbose(v bool) SessionOption {
	return SessionOption{sessOptWorld, func(s *Session) { s.Log = NewFrameLog(v) }}
}

// WithFrameStep sets the simulated time per frame.
func WithFrameStep(dt time.Duration) SessionOption {
	return SessionOption{sessOptWorld, func(s *Session) { s.dt = dt }}
}

// WithNPCs adds n wandering creatures around the spawn.
func WithNPCs(n int) SessionOption {
	return SessionOption{sessOptWorld, func(s *Session) { s.npcs = n }}
}

// WithBackendShaders toggles shader support on the recorder backend.
func WithBackendShaders(enable bool) SessionOption {
	return SessionOption{sessOptWorld, func(s *Session) { s.shaders = enable }}
}

// WithObserver forwards rebuild statistics to o as well as the log.
func WithObserver(o mapview.Observer) SessionOption {
	return SessionOption{sessOptWorld, func(s *Session) { s.observer = o }}
}

// WithLogger sets the logger handed to the world and the view.
func WithLogger(l *slog.Logger) SessionOption {
	return SessionOption{sessOptWorld, func(s *Session) { s.logger = l }}
}

// WithDayCycle flips the world light between day and dusk every period
// frames.
func WithDayCycle(period int) SessionOption {
	return SessionOption{sessOptWorld, func(s *Session) { s.dayCycle = period }}
}

// WithVisibleDimension sets the visible tiles.
func WithVisibleDimension(w, h int) SessionOption {
	return SessionOption{sessOptView, func(s *Session) {
		s.View.SetVisibleDimension(geom.Sz(w, h))
	}}
}

// WithShader binds a recorder shader with the given fades at frame 0.
func WithShader(name string, fadeIn, fadeOut time.Duration) SessionOption {
	return At(0, func(s *Session) {
		s.View.SetShader(NewShader(name), fadeIn, fadeOut)
	})
}

// At runs fn before frame n is drawn.
func At(frame int, fn func(*Session)) SessionOption {
	return SessionOption{sessOptView, func(s *Session) {
		s.script[frame] = append(s.script[frame], fn)
	}}
}

// FromConfig turns loaded settings into session options.
func FromConfig(cfg *config.Config) []SessionOption {
	view := cfg.View
	opts := []SessionOption{
		WithSeed(cfg.World.Seed),
		WithWorldSize(cfg.World.Width, cfg.World.Height),
		{sessOptView, func(s *Session) {
			view.Apply(s.View, NewTexture(geom.Square(geom.TilePixels)))
		}},
	}
	if cfg.Shader.Name != "" {
		opts = append(opts, WithShader(cfg.Shader.Name,
			time.Duration(cfg.Shader.FadeInMS)*time.Millisecond,
			time.Duration(cfg.Shader.FadeOutMS)*time.Millisecond))
	}
	return opts
}

// NewSession generates the world, places the player at the spawn and
// builds a view following it.
func NewSession(opts ...SessionOption) (*Session, error) {
	s := &Session{
		Log:     NewFrameLog(false),
		gen:     world.DefaultGenConfig,
		dt:      DefaultFrameStep,
		now:     time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		shaders: true,
		logger:  slog.New(slog.DiscardHandler),
		script:  map[int][]func(*Session){},
		lastCam: geom.InvalidPosition,
	}
	for _, o := range opts {
		if o.kind == sessOptWorld {
			o.fn(s)
		}
	}
	s.rng = rand.New(rand.NewSource(s.gen.Seed)) // #nosec G404 -- walker only
	s.report = Report{Seed: s.gen.Seed, MinOpacity: 1, FinalCamera: geom.InvalidPosition}

	s.Grid = world.NewGrid(world.WithGlobalLight(dayLight), world.WithGridLogger(s.logger))
	s.Layout = world.Generate(s.Grid, s.gen)

	s.Player = world.NewCreature(1, "Scout", color.RGBA{R: 70, G: 130, B: 230, A: 255})
	if err := s.Grid.AddCreature(s.Player, s.Layout.Spawn); err != nil {
		return nil, fmt.Errorf("place player: %w", err)
	}
	s.spawnNPCs()

	s.Backend = NewBackend(s.Log, WithShaders(s.shaders))
	s.Light = NewLightRecorder(s.Backend)
	s.View = mapview.New(s.Grid, s.Backend,
		mapview.WithLightLayer(s.Light),
		mapview.WithObserver(s),
		mapview.WithLogger(s.logger),
		mapview.WithClock(func() time.Time { return s.now }),
	)
	s.Grid.AddListener(s.View)
	s.View.FollowCreature(s.Player)
	s.View.SetDrawLights(true)

	for _, o := range opts {
		if o.kind == sessOptView {
			o.fn(s)
		}
	}
	s.updateScreen()
	return s, nil
}

// spawnNPCs puts up to n creatures on walkable tiles near the spawn.
func (s *Session) spawnNPCs() {
	spawn := s.Layout.Spawn
	id := 2
	for r := 2; r < 12 && len(s.NPCs) < s.npcs; r++ {
		for _, d := range []geom.Direction{geom.NorthEast, geom.SouthWest, geom.SouthEast, geom.NorthWest} {
			if len(s.NPCs) >= s.npcs {
				break
			}
			pos := spawn
			for range r {
				pos = pos.TranslatedToDirection(d)
			}
			t := s.Grid.At(pos)
			if t == nil || !t.IsWalkable() {
				continue
			}
			c := world.NewCreature(id, fmt.Sprintf("Rat %d", id-1), color.RGBA{R: 150, G: 120, B: 90, A: 255})
			if s.Grid.AddCreature(c, pos) == nil {
				s.NPCs = append(s.NPCs, c)
				id++
			}
		}
	}
}

func (s *Session) updateScreen() {
	size := s.View.VisibleDimension().Mul(s.View.TileSize())
	s.screen = geom.RectAt(geom.Pt(0, 0), size)
}

// Screen returns the rect each frame is drawn into.
func (s *Session) Screen() geom.Rect { return s.screen }

// Now returns the simulated clock.
func (s *Session) Now() time.Time { return s.now }

// Step simulates and draws one frame.
func (s *Session) Step() {
	frame := s.Backend.Frame()
	for _, fn := range s.script[frame] {
		fn(s)
	}
	if s.dayCycle > 0 && frame > 0 && frame%s.dayCycle == 0 {
		s.toggleDaylight()
	}

	s.wander(s.Player)
	for _, n := range s.NPCs {
		s.wander(n)
	}
	s.Grid.Update(s.dt)
	s.now = s.now.Add(s.dt)

	s.updateScreen()
	s.View.Draw(s.screen)
	s.report.Commands += s.Backend.EndFrame()
	s.report.Frames++
	s.report.MinOpacity = min(s.report.MinOpacity, s.View.ShaderOpacity())

	if cam := s.View.CameraPosition(); cam != s.lastCam {
		s.Log.Add(frame, noPool, "camera", "move", cam.String(), float64(cam.Z))
		s.lastCam = cam
	}
	s.report.FinalCamera = s.lastCam
}

// Run steps n frames and returns the totals so far.
func (s *Session) Run(frames int) Report {
	for range frames {
		s.Step()
	}
	return s.report
}

func (s *Session) Report() Report { return s.report }

var cardinals = [...]geom.Direction{geom.North, geom.East, geom.South, geom.West}

// wander keeps c walking, mostly straight on, turning at random.
func (s *Session) wander(c *world.Creature) {
	if !c.IsAlive() || c.IsWalking() {
		return
	}
	dir := c.Direction()
	if dir == geom.InvalidDirection || s.rng.Intn(4) == 0 {
		dir = cardinals[s.rng.Intn(len(cardinals))]
	}
	err := s.Grid.Walk(c, dir)
	switch {
	case err == nil:
		if c == s.Player {
			s.report.Steps++
		}
		s.Log.AddVerbose(s.Backend.Frame(), noPool, "walk", "step", c.String()+" "+dir.String(), 0)
	case errors.Is(err, world.ErrBlocked), errors.Is(err, world.ErrNoTile):
		if c == s.Player {
			s.report.Blocked++
		}
		s.Log.AddVerbose(s.Backend.Frame(), noPool, "walk", "blocked", err.Error(), 0)
	default:
		s.Log.Add(s.Backend.Frame(), noPool, "walk", "error", err.Error(), 0)
	}
}

func (s *Session) toggleDaylight() {
	next := dayLight
	if s.Grid.Light() == dayLight {
		next = duskLight
	}
	s.Grid.SetLight(next)
}

// Shoot fires a missile from the player up to n tiles ahead and shows the
// hit as floating text.
func (s *Session) Shoot(n int, damage int) {
	from := s.Player.Position()
	to, steps := s.Grid.ProjectileEnd(from, s.Player.Direction(), n)
	s.Grid.AddMissile(world.NewMissile(from, to, time.Duration(max(steps, 1))*80*time.Millisecond))
	s.Grid.ShowAnimatedText(to, fmt.Sprintf("-%d", damage), 180)
}

// ObserveRebuild logs the visibility pass and forwards it.
func (s *Session) ObserveRebuild(st mapview.RebuildStats) {
	s.report.Rebuilds++
	s.report.Grounds += st.Grounds
	s.report.Culled += st.Culled
	s.report.MaxFloors = max(s.report.MaxFloors, st.LastFloor-st.FirstFloor+1)
	s.report.MaxCreatures = max(s.report.MaxCreatures, st.Creatures)
	s.Log.Add(s.Backend.Frame(), noPool, "rebuild", "visible",
		fmt.Sprintf("camera=%s floors=%d..%d grounds=%d borders=%d bottom_tops=%d creatures=%d culled=%d",
			st.Camera, st.FirstFloor, st.LastFloor, st.Grounds, st.Borders, st.BottomTops, st.Creatures, st.Culled),
		float64(st.Grounds))
	if s.observer != nil {
		s.observer.ObserveRebuild(st)
	}
}

func (s *Session) ObserveGeometryRejected(reason string) {
	s.report.Rejected++
	s.Log.Add(s.Backend.Frame(), noPool, "geometry", "rejected", reason, 0)
	if s.observer != nil {
		s.observer.ObserveGeometryRejected(reason)
	}
}

// Report sums what a session saw.
type Report struct {
	Seed         int64
	Frames       int
	Rebuilds     int
	Steps        int
	Blocked      int
	Commands     int
	Grounds      int
	Culled       int
	MaxFloors    int
	MaxCreatures int
	Rejected     int
	MinOpacity   float64
	FinalCamera  geom.Position
}

// AvgGrounds is the mean number of ground tiles per rebuild.
func (r Report) AvgGrounds() float64 {
	if r.Rebuilds == 0 {
		return 0
	}
	return float64(r.Grounds) / float64(r.Rebuilds)
}

// CommandsPerFrame is the mean number of draw commands per frame.
func (r Report) CommandsPerFrame() float64 {
	if r.Frames == 0 {
		return 0
	}
	return float64(r.Commands) / float64(r.Frames)
}
