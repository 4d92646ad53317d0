package mapview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/mapview/internal/geom"
)

func TestCreatureInformation_Placement(t *testing.T) {
	grid := newGrid()
	c := newCreature("rat", camPos)
	grid.add(&fakeTile{pos: camPos, ground: true, creatures: []Creature{c}})
	v, _ := newTestView(t, grid)
	v.SetCameraPosition(camPos)

	v.Draw(frameRect)

	require.Len(t, c.infos, 1)
	info := c.infos[0]
	assert.Equal(t, geom.Pt(256, 192), info.Dest)
	assert.Equal(t, frameRect, info.Rect)
	assert.Equal(t, geom.Pt(32, 32), info.DrawOffset)
	assert.Equal(t, 1.0, info.Scale)
	assert.Equal(t, 1.0, info.HorizontalStretch)
	assert.Equal(t, DrawNames|DrawBars|DrawManaBar, info.Flags)
}

func TestCreatureInformation_Flags(t *testing.T) {
	grid := newGrid()
	c := newCreature("rat", camPos)
	grid.add(&fakeTile{pos: camPos, ground: true, creatures: []Creature{c}})
	v, b := newTestView(t, grid)
	v.SetCameraPosition(camPos)

	v.SetDrawNames(false)
	v.SetDrawManaBar(false)
	v.Draw(frameRect)
	require.Len(t, c.infos, 1)
	assert.Equal(t, DrawBars, c.infos[0].Flags)

	v.SetDrawHealthBars(false)
	b.uses = nil
	v.Draw(frameRect)
	assert.Len(t, c.infos, 1)
	assert.False(t, b.used(PoolCreatureInformation))
}

func TestDrawText_CameraFloorOnly(t *testing.T) {
	grid := newGrid()
	say := &fakeText{pos: camPos, mode: MessageSay}
	silent := &fakeText{pos: camPos, mode: MessageNone}
	upstairs := &fakeText{pos: geom.Pos(100, 100, 6), mode: MessageYell}
	damage := &fakeText{pos: geom.Pos(101, 100, 7)}
	grid.statics = []StaticText{say, silent, upstairs}
	grid.animated = []AnimatedText{damage}
	v, b := newTestView(t, grid)
	v.SetCameraPosition(camPos)

	v.Draw(geom.Rect{X: 10, Y: 20, W: 480, H: 352})

	assert.True(t, b.used(PoolText))
	assert.Equal(t, []geom.Point{geom.Pt(234, 180)}, say.drawn)
	assert.Empty(t, silent.drawn)
	assert.Empty(t, upstairs.drawn)
	assert.Equal(t, []geom.Point{geom.Pt(266, 180)}, damage.drawn)
}

func TestDrawText_StretchedDestination(t *testing.T) {
	grid := newGrid()
	say := &fakeText{pos: camPos, mode: MessageSay}
	grid.statics = []StaticText{say}
	v, _ := newTestView(t, grid)
	v.SetCameraPosition(camPos)

	v.Draw(geom.Rect{W: 960, H: 704})

	assert.Equal(t, []geom.Point{geom.Pt(448, 320)}, say.drawn)
}

func TestDrawText_Disabled(t *testing.T) {
	grid := newGrid()
	say := &fakeText{pos: camPos, mode: MessageSay}
	grid.statics = []StaticText{say}
	v, b := newTestView(t, grid)
	v.SetCameraPosition(camPos)
	v.SetDrawTexts(false)

	v.Draw(frameRect)

	assert.Empty(t, say.drawn)
	assert.False(t, b.used(PoolText))
}

func TestDrawText_NothingToDraw(t *testing.T) {
	v, b := newTestView(t, newGrid())
	v.SetCameraPosition(camPos)

	v.Draw(frameRect)

	assert.False(t, b.used(PoolText))
}
