package world

import (
	"fmt"
	"image/color"
	"testing"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

type recCanvas struct {
	ops []string
}

func (c *recCanvas) FillRect(r geom.Rect, col color.Color) {
	rr, gg, bb, aa := col.RGBA()
	c.ops = append(c.ops, fmt.Sprintf("fill %d,%d,%d,%d #%02x%02x%02x%02x", r.X, r.Y, r.W, r.H, rr>>8, gg>>8, bb>>8, aa>>8))
}

func (c *recCanvas) SetLastOpacity(alpha float64) {
	c.ops = append(c.ops, fmt.Sprintf("opacity %.2f", alpha))
}

func (c *recCanvas) DrawTexture(r geom.Rect, _ mapview.Texture) {
	c.ops = append(c.ops, fmt.Sprintf("texture %d,%d,%d,%d", r.X, r.Y, r.W, r.H))
}

func (c *recCanvas) DrawText(p geom.Point, s string, _ color.Color) {
	c.ops = append(c.ops, fmt.Sprintf("text %d,%d %s", p.X, p.Y, s))
}

type recLight struct {
	sources []geom.Point
}

func (l *recLight) SetGlobalLight(mapview.Light) {}
func (l *recLight) SetFloor(int)                 {}
func (l *recLight) SetShade(geom.Point)          {}
func (l *recLight) Resize(geom.Size, int)        {}
func (l *recLight) Draw(geom.Rect, geom.Rect)    {}
func (l *recLight) AddLightSource(p geom.Point, _ float64, _ mapview.Light) {
	l.sources = append(l.sources, p)
}

func TestTile_IsCompletelyCovered(t *testing.T) {
	g := NewGrid()
	base := g.SetGround(geom.Pos(10, 10, 7), GroundGrass)

	if base.IsCompletelyCovered(0) {
		t.Fatal("nothing above yet")
	}
	g.SetGround(geom.Pos(11, 11, 6), GroundGlass)
	if base.IsCompletelyCovered(0) {
		t.Fatal("glass should not cover")
	}
	g.SetGround(geom.Pos(12, 12, 5), GroundRoof)
	if !base.IsCompletelyCovered(0) {
		t.Fatal("roof two floors up should cover")
	}
	if base.IsCompletelyCovered(6) {
		t.Fatal("roof above the first visible floor should not count")
	}
	g.SetGround(geom.Pos(10, 10, 6), GroundStone)
	if base.IsCompletelyCovered(6) {
		t.Fatal("a tile straight above is drawn elsewhere on screen")
	}
}

func TestTile_LimitsFloorsView(t *testing.T) {
	g := NewGrid()
	ground := g.SetGround(geom.Pos(1, 1, 6), GroundRoof)
	wall := g.AddObject(geom.Pos(2, 1, 6), ObjectWall)
	window := g.AddObject(geom.Pos(3, 1, 6), ObjectWindow)
	table := g.AddObject(geom.Pos(4, 1, 6), ObjectTable)

	cases := []struct {
		name     string
		tile     *Tile
		freeView bool
		want     bool
	}{
		{"ground", ground, false, true},
		{"wall", wall, false, true},
		{"window", window, false, false},
		{"window free view", window, true, true},
		{"table", table, true, false},
	}
	for _, tc := range cases {
		if got := tc.tile.LimitsFloorsView(tc.freeView); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestTile_Capabilities(t *testing.T) {
	g := NewGrid()
	water := g.SetGround(geom.Pos(1, 1, 7), GroundWater)
	roof := g.SetGround(geom.Pos(2, 1, 7), GroundRoof)
	torch := g.AddObject(geom.Pos(3, 1, 7), ObjectTorch)

	if !water.IsGroundTranslucent() || water.IsWalkable() {
		t.Fatal("water should be see-through and not walkable")
	}
	if !roof.IsTopGround() || roof.IsGroundTranslucent() {
		t.Fatal("roof should be an opaque top ground")
	}
	if !torch.HasLight() || torch.HasGround() || !torch.IsDrawable() || !torch.HasBottomOrTopToDraw() {
		t.Fatal("bare torch tile should be a drawable light without ground")
	}
	if g.IsLookPossible(geom.Pos(3, 1, 7)) != true {
		t.Fatal("torches do not block sight")
	}
	g.AddObject(geom.Pos(3, 1, 7), ObjectCrate)
	if g.IsLookPossible(geom.Pos(3, 1, 7)) {
		t.Fatal("crates block sight")
	}
	if !g.IsLookPossible(geom.Pos(50, 50, 7)) {
		t.Fatal("empty space never blocks sight")
	}
}

func TestTile_DrawLayers(t *testing.T) {
	g := NewGrid()
	sand := g.SetGround(geom.Pos(1, 1, 7), GroundSand)
	tile := g.SetGround(geom.Pos(2, 1, 7), GroundGrass)
	g.AddObject(tile.pos, ObjectTorch)

	c := &recCanvas{}
	light := &recLight{}
	dest := geom.Pt(64, 32)
	tile.DrawGround(c, dest, 1, mapview.UpdateAll, light)
	tile.DrawGroundBorder(c, dest, 1, mapview.UpdateAll, light)
	tile.Draw(c, dest, 1, mapview.UpdateThings, light)
	if len(light.sources) != 0 {
		t.Fatal("lights are only registered with UpdateLights")
	}
	tile.Draw(c, dest, 1, mapview.UpdateLights, light)

	want := []string{
		"fill 64,32,32,32 #1e301eff",
		"fill 76,44,8,8 #f0b43cff",
	}
	if len(c.ops) != len(want) || c.ops[0] != want[0] || c.ops[1] != want[1] {
		t.Fatalf("got %v, want %v", c.ops, want)
	}
	if len(light.sources) != 1 || light.sources[0] != geom.Pt(80, 48) {
		t.Fatalf("torch light should sit at the tile centre, got %v", light.sources)
	}

	c = &recCanvas{}
	sand.DrawGroundBorder(c, geom.Pt(0, 0), 1, mapview.UpdateAll, nil)
	want = []string{
		"fill 0,0,32,4 #1e301eff",
		"fill 0,0,4,32 #1e301eff",
	}
	if len(c.ops) != len(want) || c.ops[0] != want[0] || c.ops[1] != want[1] {
		t.Fatalf("sand should take a grass border, got %v", c.ops)
	}
}

func TestTile_HighlightFollowsSelection(t *testing.T) {
	g := NewGrid()
	tile := g.SetGround(geom.Pos(1, 1, 7), GroundGrass)

	tile.Select(false)
	c := &recCanvas{}
	tile.DrawGround(c, geom.Pt(0, 0), 2, mapview.UpdateAll, nil)
	if len(c.ops) != 2 || c.ops[1] != "fill 0,0,64,64 #ffffff5a" {
		t.Fatalf("selected ground should carry the highlight, got %v", c.ops)
	}

	tile.Unselect()
	c = &recCanvas{}
	tile.DrawGround(c, geom.Pt(0, 0), 2, mapview.UpdateAll, nil)
	if len(c.ops) != 1 || tile.IsSelected() {
		t.Fatalf("unselected ground should draw plain, got %v", c.ops)
	}
}

func TestCreature_DrawInformation(t *testing.T) {
	g := NewGrid()
	g.SetGround(geom.Pos(1, 1, 7), GroundGrass)
	cr := NewCreature(1, "rat", red)
	if err := g.AddCreature(cr, geom.Pos(1, 1, 7)); err != nil {
		t.Fatal(err)
	}
	cr.Health = 20

	c := &recCanvas{}
	info := mapview.CreatureInfo{
		Rect:              geom.Rect{W: 480, H: 352},
		Dest:              geom.Pt(256, 192),
		Scale:             1,
		DrawOffset:        geom.Pt(32, 32),
		HorizontalStretch: 1,
		VerticalStretch:   1,
		Flags:             mapview.DrawNames | mapview.DrawBars,
	}
	cr.DrawInformation(c, info)

	// Badge centre is (224+16, 160); bars start 10px above the tile.
	want := []string{
		"text 231,136 rat",
		"fill 227,150,27,4 #000000c8",
		"fill 227,150,5,4 #dc3c28ff",
	}
	if len(c.ops) != len(want) {
		t.Fatalf("got %v, want %v", c.ops, want)
	}
	for i := range want {
		if c.ops[i] != want[i] {
			t.Fatalf("op %d: got %q, want %q", i, c.ops[i], want[i])
		}
	}
}
