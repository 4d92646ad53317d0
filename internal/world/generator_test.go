package world

import (
	"testing"

	"github.com/Garsondee/mapview/internal/geom"
)

func smallGenConfig(seed int64) GenConfig {
	cfg := DefaultGenConfig
	cfg.Width, cfg.Height = 48, 48
	cfg.Origin = geom.Pos(100, 100, geom.SeaFloor)
	cfg.Seed = seed
	cfg.Buildings = 3
	cfg.CaveSize = 8
	return cfg
}

func TestGenerate_Deterministic(t *testing.T) {
	a, b := NewGrid(), NewGrid()
	la := Generate(a, smallGenConfig(42))
	lb := Generate(b, smallGenConfig(42))

	if la.Spawn != lb.Spawn || la.CaveEntry != lb.CaveEntry || len(la.Buildings) != len(lb.Buildings) {
		t.Fatalf("layouts differ: %+v vs %+v", la, lb)
	}
	if a.TileCount() != b.TileCount() {
		t.Fatalf("tile counts differ: %d vs %d", a.TileCount(), b.TileCount())
	}
	for pos, ta := range a.tiles {
		tb := b.At(pos)
		if tb == nil || ta.Ground != tb.Ground || len(ta.Objects) != len(tb.Objects) {
			t.Fatalf("tile %s differs", pos)
		}
	}
}

func TestGenerate_CoversSurface(t *testing.T) {
	g := NewGrid()
	cfg := smallGenConfig(7)
	Generate(g, cfg)

	for row := range cfg.Height {
		for col := range cfg.Width {
			p := geom.Pos(cfg.Origin.X+col, cfg.Origin.Y+row, cfg.Origin.Z)
			if tile := g.At(p); tile == nil || !tile.HasGround() {
				t.Fatalf("surface tile %s has no ground", p)
			}
		}
	}
}

func TestGenerate_BuildingsHaveRoofs(t *testing.T) {
	g := NewGrid()
	layout := Generate(g, smallGenConfig(3))
	if len(layout.Buildings) == 0 {
		t.Skip("seed placed no buildings")
	}

	z := geom.SeaFloor
	for _, fp := range layout.Buildings {
		for y := fp.Y; y < fp.Y+fp.H; y++ {
			for x := fp.X; x < fp.X+fp.W; x++ {
				ground := g.At(geom.Pos(x, y, z))
				if ground == nil || ground.Flags&TileFlagIndoor == 0 {
					t.Fatalf("(%d,%d) should be indoor", x, y)
				}
				roof := g.At(geom.Pos(x, y, z-1))
				if roof == nil || roof.Ground != GroundRoof {
					t.Fatalf("(%d,%d) should have a roof above", x, y)
				}
			}
		}
		wall := g.At(geom.Pos(fp.X, fp.Y, z))
		if len(wall.Objects) == 0 || !objectOnBottom(wall.Objects[0]) {
			t.Fatalf("corner of %+v should be a wall, got %v", fp, wall.Objects)
		}
		inner := g.At(geom.Pos(fp.X+1, fp.Y+1, z))
		if !inner.HasLight() {
			t.Fatalf("building %+v should be lit inside", fp)
		}
	}
}

func TestGenerate_Cave(t *testing.T) {
	g := NewGrid()
	layout := Generate(g, smallGenConfig(11))

	if !layout.CaveEntry.IsValid() {
		t.Fatal("cave should be dug")
	}
	entry := g.At(layout.CaveEntry)
	if entry.TopObject() != ObjectStairs {
		t.Fatalf("cave entry should hold stairs, got %s", entry.TopObject())
	}
	below := g.At(layout.CaveEntry.Translated(0, 0, 1))
	if below == nil || below.Ground != GroundStone || below.Flags&TileFlagCave == 0 {
		t.Fatal("the cave should lie under its entry")
	}

	cfg := smallGenConfig(11)
	cfg.CaveSize = 0
	if l := Generate(NewGrid(), cfg); l.CaveEntry.IsValid() {
		t.Fatal("a zero cave size should skip the cave")
	}
}

func TestGenerate_SpawnIsWalkable(t *testing.T) {
	for _, seed := range []int64{1, 2, 3} {
		g := NewGrid()
		layout := Generate(g, smallGenConfig(seed))
		tile := g.At(layout.Spawn)
		if tile == nil || !tile.IsWalkable() {
			t.Fatalf("seed %d: spawn %s is not walkable", seed, layout.Spawn)
		}
	}
}
