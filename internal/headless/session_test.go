package headless

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/mapview/internal/config"
	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
	"github.com/Garsondee/mapview/internal/telemetry"
	"github.com/Garsondee/mapview/internal/world"
)

func smallWorld(seed int64) SessionOption {
	cfg := world.DefaultGenConfig
	cfg.Width, cfg.Height = 48, 48
	cfg.Seed = seed
	cfg.Buildings = 3
	cfg.CaveSize = 8
	return WithGenConfig(cfg)
}

func newSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	s, err := NewSession(opts...)
	require.NoError(t, err)
	return s
}

func TestSession_FollowsPlayer(t *testing.T) {
	s := newSession(t, smallWorld(3), WithNPCs(2))
	r := s.Run(60)

	assert.Equal(t, 60, r.Frames)
	assert.Positive(t, r.Rebuilds)
	assert.Positive(t, r.Steps+r.Blocked, "the player tries to move whenever it stands still")
	assert.Equal(t, s.Player.Position(), r.FinalCamera)
	assert.Equal(t, s.Player.Position(), s.View.CameraPosition())
	assert.Equal(t, r.Rebuilds, s.Log.CountCategory("rebuild", "visible"))
	assert.Positive(t, r.AvgGrounds())
	assert.Positive(t, r.CommandsPerFrame())
	assert.GreaterOrEqual(t, r.MaxCreatures, 1)

	cam, ok := s.Log.LastOf("camera", "move")
	require.True(t, ok)
	assert.Equal(t, float64(geom.SeaFloor), cam.NumVal)
}

func TestSession_SourceRectTracksWalkOffset(t *testing.T) {
	s := newSession(t, smallWorld(3), WithNPCs(0))
	margin := s.View.TileSize()

	var walking, settled, sideways int
	var idle geom.AwareRange
	for i := range 120 {
		s.Step()
		off := s.Player.WalkOffset()
		want := geom.Pt(margin, margin).Add(off.Scale(s.View.ScaleFactor()))
		require.Equal(t, want, s.View.RectCache().SrcRect.TopLeft(), "frame %d offset %v", i, off)

		switch dir := s.Player.Direction(); {
		case !s.Player.IsWalking():
			settled++
			idle = s.View.Viewport()
		case dir == geom.East || dir == geom.West:
			walking++
			if settled > 0 {
				sideways++
				assert.Equal(t, idle.Left+2, s.View.Viewport().Left, "frame %d", i)
			}
		default:
			walking++
		}
	}
	require.Positive(t, walking)
	require.Positive(t, settled, "a finished step draws from the plain margin")
	t.Logf("walking=%d settled=%d sideways=%d", walking, settled, sideways)
}

func TestSession_RebuildsTrackStepsNotFrames(t *testing.T) {
	s := newSession(t, smallWorld(3), WithNPCs(0))
	r := s.Run(120)

	require.Positive(t, r.Steps)
	assert.LessOrEqual(t, r.Rebuilds, r.Steps+1, "one rebuild per tile crossed plus the first frame")
	assert.Less(t, r.Rebuilds, r.Frames/2)
}

func TestSession_Deterministic(t *testing.T) {
	a := newSession(t, smallWorld(11), WithNPCs(3)).Run(45)
	b := newSession(t, smallWorld(11), WithNPCs(3)).Run(45)
	assert.Equal(t, a, b)
}

func TestSession_PresentsEveryPool(t *testing.T) {
	s := newSession(t, smallWorld(5), At(0, func(s *Session) {
		s.Grid.Say(s.Player, mapview.MessageSay, "hello")
	}))
	s.Step()

	pools := map[string]bool{}
	for _, e := range s.Log.Filter("pool", "present") {
		pools[e.Pool] = true
	}
	assert.True(t, pools[mapview.PoolMap.String()])
	assert.True(t, pools[mapview.PoolCreatureInformation.String()])
	assert.True(t, pools[mapview.PoolText.String()])
	assert.Equal(t, 1, s.Log.CountCategory("light", "draw"))
	assert.Equal(t, s.View.VisibleDimension().Mul(s.View.TileSize()), s.Screen().Size())
}

func TestSession_ShaderCrossFade(t *testing.T) {
	s := newSession(t, smallWorld(2),
		WithShader("plain", 0, 0),
		At(10, func(s *Session) {
			s.View.SetShader(NewShader("water"), 200*time.Millisecond, 200*time.Millisecond)
		}),
	)
	r := s.Run(20)

	require.NotNil(t, s.View.Shader())
	assert.Equal(t, "water", s.View.Shader().Name())
	assert.InDelta(t, 0, r.MinOpacity, 1e-9)

	byFrame := map[int]float64{}
	for _, e := range s.Log.Filter("paint", "opacity") {
		byFrame[e.Frame] = e.NumVal
	}
	assert.InDelta(t, 1, byFrame[9], 1e-9)
	assert.InDelta(t, 0.75, byFrame[10], 1e-9)
	assert.InDelta(t, 0.5, byFrame[11], 1e-9)
	assert.InDelta(t, 1, byFrame[19], 1e-9)

	last, ok := s.Log.LastOf("paint", "shader")
	require.True(t, ok)
	assert.Equal(t, "water", last.Value)

	sh := s.View.Shader().(*Shader)
	assert.Equal(t, []string{
		mapview.UniformMapCenterCoord,
		mapview.UniformMapGlobalCoord,
		mapview.UniformMapWalkOffset,
		mapview.UniformMapZoom,
	}, sh.UniformNames())
}

func TestSession_NoShadersNoUniforms(t *testing.T) {
	s := newSession(t, smallWorld(2), WithBackendShaders(false), WithShader("plain", 0, 0))
	s.Run(3)
	assert.Zero(t, s.Log.CountCategory("paint", "shader"))
	assert.Empty(t, s.View.Shader().(*Shader).UniformNames())
}

func TestSession_DayCycleReachesLightLayer(t *testing.T) {
	s := newSession(t, smallWorld(4), WithDayCycle(5))
	s.Run(11)

	global := s.Log.Filter("light", "global")
	require.GreaterOrEqual(t, len(global), 3, "day, dusk, day")
	assert.Equal(t, float64(duskLight.Intensity), global[1].NumVal)
	assert.Equal(t, dayLight, s.Grid.Light())
	assert.Equal(t, dayLight, s.Light.Global())
}

func TestSession_RejectedGeometry(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := telemetry.NewObserver(reg)
	s := newSession(t, smallWorld(1), WithObserver(obs), WithVisibleDimension(16, 11))
	s.Run(2)

	assert.Equal(t, 1, s.Report().Rejected)
	assert.True(t, s.Log.HasEntry("geometry", "rejected", "must be odd"))
	assert.Equal(t, geom.Sz(15, 11), s.View.VisibleDimension())
	n, err := testutil.GatherAndCount(reg, "mapview_geometry_rejected_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = testutil.GatherAndCount(reg, "mapview_rebuilds_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSession_MissileAndText(t *testing.T) {
	s := newSession(t, smallWorld(6), WithVerbose(true), At(1, func(s *Session) { s.Shoot(3, 12) }))
	s.Run(3)

	assert.True(t, s.Log.HasEntry("draw", "text", "-12"))
	assert.NotEmpty(t, s.Grid.AnimatedTexts())
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.World.Seed = 9
	cfg.World.Width, cfg.World.Height = 48, 48
	cfg.View.VisibleWidth, cfg.View.VisibleHeight = 21, 15
	cfg.View.DrawLights = false
	cfg.Shader.Name = "night"

	s := newSession(t, FromConfig(cfg)...)
	s.Run(2)

	assert.Equal(t, int64(9), s.Report().Seed)
	assert.Equal(t, geom.Sz(21, 15), s.View.VisibleDimension())
	assert.False(t, s.View.DrawLights())
	assert.Zero(t, s.Log.CountCategory("light", "draw"))
	assert.Equal(t, "night", s.View.Shader().Name())
}
