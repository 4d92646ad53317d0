package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

func TestLightLayer_CollectsAndQueues(t *testing.T) {
	b := newTestBackend(t)
	l := NewLightLayer(b)
	l.Resize(geom.Sz(576, 448), 32)
	l.SetGlobalLight(mapview.Light{Intensity: 80, Color: 215})

	l.SetFloor(6)
	l.SetShade(geom.Pt(256, 192))
	l.SetFloor(7)
	l.AddLightSource(geom.Pt(100, 100), 1, mapview.Light{Intensity: 4, Color: 206})
	l.AddLightSource(geom.Pt(10, 10), 1, mapview.Light{})

	assert.Equal(t, 7, l.Floor())
	require.Len(t, l.shades, 1)
	require.Len(t, l.sources, 1, "dark sources are dropped")
	assert.Equal(t, 128.0, l.sources[0].radius)

	l.Draw(geom.Rect{W: 480, H: 352}, geom.Rect{X: 32, Y: 32, W: 480, H: 352})
	assert.Equal(t, 1, b.pendingSteps())
	assert.Empty(t, l.shades, "each frame starts a fresh light map")
	assert.Empty(t, l.sources)
}

func TestLightLayer_FloorAboveHidesSources(t *testing.T) {
	l := NewLightLayer(newTestBackend(t))
	l.Resize(geom.Sz(576, 448), 32)
	torch := mapview.Light{Intensity: 3, Color: 206}

	l.SetFloor(6)
	l.SetShade(geom.Pt(64, 64))
	l.AddLightSource(geom.Pt(70, 70), 1, torch)
	l.SetFloor(7)
	l.AddLightSource(geom.Pt(80, 90), 1, torch)
	l.AddLightSource(geom.Pt(96, 64), 1, torch)

	require.Len(t, l.shades, 1)
	assert.Equal(t, 6, l.shades[0].floor)
	require.Len(t, l.sources, 3)
	assert.Equal(t, []int{6, 7, 7}, []int{l.sources[0].floor, l.sources[1].floor, l.sources[2].floor})

	lit := litSources(l.shades, l.sources, l.tileSize)
	require.Len(t, lit, 2)
	assert.Equal(t, geom.Pt(70, 70), lit[0].center, "a floor's own shade does not hide its lights")
	assert.Equal(t, geom.Pt(96, 64), lit[1].center, "the shade covers one tile only")
}

func TestLightLayer_SourceScalesWithZoom(t *testing.T) {
	l := NewLightLayer(newTestBackend(t))
	l.Resize(geom.Sz(576, 448), 64)
	l.AddLightSource(geom.Pt(0, 0), 2, mapview.Light{Intensity: 2, Color: 215})
	require.Len(t, l.sources, 1)
	assert.Equal(t, 256.0, l.sources[0].radius)
}

func TestAmbient(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, Ambient(mapview.Light{Intensity: 255, Color: 215}))
	assert.Equal(t, color.RGBA{A: 255}, Ambient(mapview.Light{Intensity: 0, Color: 215}))

	half := Ambient(mapview.Light{Intensity: 51, Color: 215})
	assert.Equal(t, uint8(51), half.R)
	assert.Equal(t, uint8(51), half.B)
}

func TestEightBitColor(t *testing.T) {
	assert.Equal(t, color.RGBA{A: 255}, mapview.EightBitColor(0))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, mapview.EightBitColor(215))
	assert.Equal(t, color.RGBA{R: 255, G: 153, B: 51, A: 255}, mapview.EightBitColor(5*36+3*6+1))
}
