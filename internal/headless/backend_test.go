package headless

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

var _ mapview.RenderBackend = (*Backend)(nil)
var _ mapview.LightLayer = (*LightRecorder)(nil)

func TestBackend_EndFrameCountsCommands(t *testing.T) {
	fl := NewFrameLog(true)
	b := NewBackend(fl)
	m := b.CreatePool(mapview.PoolMap)
	txt := b.CreatePool(mapview.PoolText)

	c := b.Use(m, geom.Rect{W: 480, H: 352}, geom.Rect{X: 32, Y: 32, W: 480, H: 352})
	c.FillRect(geom.Rect{W: 32, H: 32}, color.RGBA{R: 30, G: 48, B: 30, A: 255})
	c.SetLastOpacity(0.5)
	c.DrawTexture(geom.Rect{W: 32, H: 32}, NewTexture(geom.Square(32)))
	b.Use(txt, geom.Rect{}, geom.Rect{}).DrawText(geom.Pt(4, 5), "hello", color.White)

	assert.Equal(t, 3, b.EndFrame())
	assert.Equal(t, 1, b.Frame())

	present := fl.Filter("pool", "present")
	require.Len(t, present, 2)
	assert.Equal(t, "map", present[0].Pool)
	assert.Equal(t, "fills=1 textures=1 texts=0", present[0].Value)
	assert.Equal(t, "text", present[1].Pool)
	assert.True(t, fl.HasEntry("draw", "fill", "#1e301eff"))
	assert.True(t, fl.HasEntry("draw", "text", "4,5 hello"))

	assert.Equal(t, 0, b.EndFrame(), "nothing used in the new frame")
}

func TestBackend_MapHooksRunAtPresent(t *testing.T) {
	fl := NewFrameLog(false)
	b := NewBackend(fl)
	m := b.CreatePool(mapview.PoolMap)
	sh := NewShader("night")

	var calls []string
	m.OnBeforeDraw(func(p mapview.Painter) {
		calls = append(calls, "before")
		p.SetShader(sh)
		p.SetOpacity(0.25)
	})
	m.OnAfterDraw(func(p mapview.Painter) {
		calls = append(calls, "after")
		p.ResetShader()
		p.ResetOpacity()
	})

	b.Use(m, geom.Rect{W: 10, H: 10}, geom.Rect{W: 10, H: 10})
	assert.Empty(t, calls, "hooks wait for the frame to be presented")
	b.EndFrame()

	assert.Equal(t, []string{"before", "after"}, calls)
	op, ok := fl.LastOf("paint", "opacity")
	require.True(t, ok)
	assert.Equal(t, 0.25, op.NumVal)
	assert.True(t, fl.HasEntry("paint", "shader", "night"))
}

func TestBackend_Options(t *testing.T) {
	b := NewBackend(NewFrameLog(false), WithMaxTextureSize(256), WithShaders(false))
	assert.Equal(t, 256, b.MaxTextureSize())
	assert.False(t, b.HasShaders())

	p := b.CreatePool(mapview.PoolCreatureInformation)
	p.Resize(geom.Sz(64, 32))
	size, ok := b.PoolSize(mapview.PoolCreatureInformation)
	require.True(t, ok)
	assert.Equal(t, geom.Sz(64, 32), size)
	_, ok = b.PoolSize(mapview.PoolMap)
	assert.False(t, ok)

	assert.Panics(t, func() { b.Use(nil, geom.Rect{}, geom.Rect{}) })
}

func TestShader_RecordsUniforms(t *testing.T) {
	s := NewShader("water")
	v := []float32{0.5, 0.25}
	s.SetUniform(mapview.UniformMapCenterCoord, v...)
	s.SetUniform(mapview.UniformMapZoom, 1)
	v[0] = 9

	got, ok := s.Uniform(mapview.UniformMapCenterCoord)
	require.True(t, ok)
	assert.Equal(t, []float32{0.5, 0.25}, got)
	assert.Equal(t, []string{mapview.UniformMapCenterCoord, mapview.UniformMapZoom}, s.UniformNames())
}

func TestLightRecorder_PerFloorTotals(t *testing.T) {
	fl := NewFrameLog(false)
	b := NewBackend(fl)
	l := NewLightRecorder(b)

	l.SetGlobalLight(mapview.Light{Intensity: 40, Color: 215})
	l.SetGlobalLight(mapview.Light{Intensity: 40, Color: 215})
	l.SetFloor(6)
	l.SetShade(geom.Pt(0, 0))
	l.SetShade(geom.Pt(32, 0))
	l.SetFloor(7)
	l.AddLightSource(geom.Pt(16, 16), 1, mapview.Light{Intensity: 3, Color: 206})
	l.AddLightSource(geom.Pt(16, 16), 1, mapview.Light{})
	l.Draw(geom.Rect{W: 10, H: 10}, geom.Rect{W: 10, H: 10})

	assert.Equal(t, 1, fl.CountCategory("light", "global"), "unchanged light is not logged twice")
	assert.Equal(t, map[int]int{6: 2}, l.Shaded)
	assert.Equal(t, map[int]int{7: 1}, l.Lit)
	assert.True(t, fl.HasEntry("light", "draw", "shades=2 sources=1"))

	l.Draw(geom.Rect{W: 10, H: 10}, geom.Rect{W: 10, H: 10})
	assert.Empty(t, l.Lit, "totals restart every frame")
}
