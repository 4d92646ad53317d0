package world

import (
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/Garsondee/mapview/internal/geom"
)

// GenConfig holds the tuneable terrain parameters.
type GenConfig struct {
	Width  int
	Height int
	// Origin is the north-west corner of the generated area on the ground
	// floor.
	Origin geom.Position
	Seed   int64

	// Noise layer scales (smaller = broader features).
	ElevationScale  float64
	VegetationScale float64
	MoistureScale   float64

	// Noise thresholds in [0, 1].
	WaterThreshold  float64 // below this → water
	SandThreshold   float64 // below this → sand shore
	HillThreshold   float64 // above this → one floor of rock
	PeakThreshold   float64 // above this → two floors of rock
	TreeThreshold   float64
	BushThreshold   float64
	LongGrassThresh float64
	DirtThreshold   float64

	Buildings int
	// CaveSize is the edge of the square cave dug one floor underground. Zero
	// disables the cave.
	CaveSize int
}

// DefaultGenConfig is a small hilly map with a hamlet and a cave.
var DefaultGenConfig = GenConfig{
	Width:  96,
	Height: 96,
	Origin: geom.Pos(1000, 1000, geom.SeaFloor),
	Seed:   1,

	ElevationScale:  0.045,
	VegetationScale: 0.09,
	MoistureScale:   0.05,

	WaterThreshold:  0.30,
	SandThreshold:   0.34,
	HillThreshold:   0.70,
	PeakThreshold:   0.78,
	TreeThreshold:   0.68,
	BushThreshold:   0.60,
	LongGrassThresh: 0.52,
	DirtThreshold:   0.62,

	Buildings: 6,
	CaveSize:  14,
}

// Layout describes what Generate placed.
type Layout struct {
	Spawn     geom.Position
	Buildings []Footprint
	CaveEntry geom.Position
}

// Footprint is a building's ground-floor rectangle in world tiles.
type Footprint struct {
	X, Y, W, H int
}

func (f Footprint) contains(x, y int) bool {
	return x >= f.X && x < f.X+f.W && y >= f.Y && y < f.Y+f.H
}

func (f Footprint) onEdge(x, y int) bool {
	return f.contains(x, y) && (x == f.X || x == f.X+f.W-1 || y == f.Y || y == f.Y+f.H-1)
}

type noiseField struct {
	p     *perlin.Perlin
	scale float64
}

func newNoiseField(seed int64, scale float64) noiseField {
	return noiseField{p: perlin.NewPerlin(2, 2, 3, seed), scale: scale}
}

// at returns the field value at (x, y) mapped to [0, 1].
func (n noiseField) at(x, y int) float64 {
	v := (n.p.Noise2D(float64(x)*n.scale, float64(y)*n.scale) + 1) / 2
	return max(0, min(v, 1))
}

// Generate fills g with terrain, buildings and a cave and returns where
// things went. The same config always yields the same world.
func Generate(g *Grid, cfg GenConfig) Layout {
	rng := rand.New(rand.NewSource(cfg.Seed)) // #nosec G404 -- terrain only
	elevation := newNoiseField(rng.Int63(), cfg.ElevationScale)
	vegetation := newNoiseField(rng.Int63(), cfg.VegetationScale)
	moisture := newNoiseField(rng.Int63(), cfg.MoistureScale)

	ox, oy, z := cfg.Origin.X, cfg.Origin.Y, cfg.Origin.Z
	var layout Layout

	height := make([][]float64, cfg.Height)
	for row := range cfg.Height {
		height[row] = make([]float64, cfg.Width)
		for col := range cfg.Width {
			height[row][col] = elevation.at(col, row)
		}
	}

	// Ground pass.
	for row := range cfg.Height {
		for col := range cfg.Width {
			pos := geom.Pos(ox+col, oy+row, z)
			e := height[row][col]
			var gt GroundType
			switch {
			case e < cfg.WaterThreshold:
				gt = GroundWater
			case e < cfg.SandThreshold:
				gt = GroundSand
			case e > cfg.HillThreshold:
				gt = GroundStone
			case moisture.at(col, row) > cfg.DirtThreshold:
				gt = GroundDirt
			case vegetation.at(col, row) > cfg.LongGrassThresh:
				gt = GroundGrassLong
			default:
				gt = GroundGrass
			}
			g.ensure(pos).Ground = gt
		}
	}

	// Hills rise one floor per threshold.
	for row := range cfg.Height {
		for col := range cfg.Width {
			e := height[row][col]
			if e <= cfg.HillThreshold {
				continue
			}
			g.ensure(geom.Pos(ox+col, oy+row, z-1)).Ground = GroundStone
			if e > cfg.PeakThreshold {
				g.ensure(geom.Pos(ox+col, oy+row, z-2)).Ground = GroundStone
			}
		}
	}

	layout.Buildings = placeBuildings(g, rng, cfg, height)

	// Vegetation on whatever open grass is left.
	for row := range cfg.Height {
		for col := range cfg.Width {
			x, y := ox+col, oy+row
			t := g.At(geom.Pos(x, y, z))
			if t == nil || len(t.Objects) > 0 || t.Flags&TileFlagIndoor != 0 {
				continue
			}
			if t.Ground != GroundGrass && t.Ground != GroundGrassLong {
				continue
			}
			v := vegetation.at(col, row)
			detail := vegetation.at(col*7, row*7)
			switch {
			case v > cfg.TreeThreshold && detail > 0.5:
				t.Objects = append(t.Objects, ObjectTreeTrunk)
			case v > cfg.BushThreshold && detail > 0.4 && detail < 0.7:
				t.Objects = append(t.Objects, ObjectBush)
			}
		}
	}

	if cfg.CaveSize > 0 {
		layout.CaveEntry = digCave(g, rng, cfg)
	} else {
		layout.CaveEntry = geom.InvalidPosition
	}

	for _, t := range g.tiles {
		g.computeBorder(t.pos)
	}

	layout.Spawn = findSpawn(g, cfg)
	return layout
}

// placeBuildings stamps walled houses with roofs one floor up on flat open
// ground.
func placeBuildings(g *Grid, rng *rand.Rand, cfg GenConfig, height [][]float64) []Footprint {
	ox, oy, z := cfg.Origin.X, cfg.Origin.Y, cfg.Origin.Z
	var placed []Footprint
	for attempt := 0; attempt < cfg.Buildings*20 && len(placed) < cfg.Buildings; attempt++ {
		w, h := 5+rng.Intn(4), 4+rng.Intn(4)
		if cfg.Width <= w+4 || cfg.Height <= h+4 {
			break
		}
		col, row := 2+rng.Intn(cfg.Width-w-4), 2+rng.Intn(cfg.Height-h-4)
		fp := Footprint{X: ox + col, Y: oy + row, W: w, H: h}

		ok := true
		for _, other := range placed {
			if overlaps(fp, other, 2) {
				ok = false
				break
			}
		}
		for r := row; ok && r < row+h; r++ {
			for c := col; c < col+w; c++ {
				e := height[r][c]
				if e < cfg.SandThreshold || e > cfg.HillThreshold {
					ok = false
					break
				}
			}
		}
		if !ok {
			continue
		}
		stampBuilding(g, rng, fp, z)
		placed = append(placed, fp)
	}
	return placed
}

func overlaps(a, b Footprint, gap int) bool {
	return a.X-gap < b.X+b.W && b.X-gap < a.X+a.W &&
		a.Y-gap < b.Y+b.H && b.Y-gap < a.Y+a.H
}

func stampBuilding(g *Grid, rng *rand.Rand, fp Footprint, z int) {
	doorX := fp.X + 1 + rng.Intn(fp.W-2)
	for y := fp.Y; y < fp.Y+fp.H; y++ {
		for x := fp.X; x < fp.X+fp.W; x++ {
			t := g.ensure(geom.Pos(x, y, z))
			t.Objects = t.Objects[:0]
			t.Flags |= TileFlagIndoor
			if !fp.onEdge(x, y) {
				t.Ground = GroundWood
				continue
			}
			t.Ground = GroundTile
			corner := (x == fp.X || x == fp.X+fp.W-1) && (y == fp.Y || y == fp.Y+fp.H-1)
			switch {
			case y == fp.Y+fp.H-1 && x == doorX:
				t.Objects = append(t.Objects, ObjectDoor)
			case !corner && (x-fp.X)%3 == 2:
				t.Objects = append(t.Objects, ObjectWindow)
			default:
				t.Objects = append(t.Objects, ObjectWall)
			}
		}
	}

	// Furniture and a torch inside.
	inner := geom.Pos(fp.X+1, fp.Y+1, z)
	g.ensure(inner).Objects = append(g.ensure(inner).Objects, ObjectTorch)
	if fp.W > 5 {
		table := geom.Pos(fp.X+fp.W/2, fp.Y+fp.H/2, z)
		g.ensure(table).Objects = append(g.ensure(table).Objects, ObjectTable)
	}

	for y := fp.Y; y < fp.Y+fp.H; y++ {
		for x := fp.X; x < fp.X+fp.W; x++ {
			g.ensure(geom.Pos(x, y, z-1)).Ground = GroundRoof
		}
	}
}

// digCave carves a lit stone chamber one floor below the surface and returns
// the surface tile holding the stairs down.
func digCave(g *Grid, rng *rand.Rand, cfg GenConfig) geom.Position {
	size := min(cfg.CaveSize, cfg.Width-2, cfg.Height-2)
	if size < 3 {
		return geom.InvalidPosition
	}
	cz := cfg.Origin.Z + 1
	cx := cfg.Origin.X + 1 + rng.Intn(cfg.Width-size-1)
	cy := cfg.Origin.Y + 1 + rng.Intn(cfg.Height-size-1)

	for y := cy; y < cy+size; y++ {
		for x := cx; x < cx+size; x++ {
			t := g.ensure(geom.Pos(x, y, cz))
			t.Ground = GroundStone
			t.Flags |= TileFlagCave
			if x == cx || y == cy || x == cx+size-1 || y == cy+size-1 {
				t.Objects = append(t.Objects, ObjectWall)
			}
		}
	}
	for _, p := range []geom.Position{geom.Pos(cx+2, cy+2, cz), geom.Pos(cx+size-3, cy+size-3, cz)} {
		g.ensure(p).Objects = append(g.ensure(p).Objects, ObjectTorch)
	}

	entry := caveEntry(g, cx, cy, size, cfg.Origin.Z)
	t := g.ensure(entry)
	if t.Ground == GroundNone || t.Ground == GroundWater {
		t.Ground = GroundDirt
	}
	t.Objects = append(t.Objects[:0], ObjectStairs)
	return entry
}

// caveEntry picks the surface tile nearest the cave centre that is not
// inside a building.
func caveEntry(g *Grid, cx, cy, size, z int) geom.Position {
	center := geom.Pos(cx+size/2, cy+size/2, z)
	for r := 0; r < size/2; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				p := center.Translated(dx, dy, 0)
				if t := g.At(p); t == nil || t.Flags&TileFlagIndoor == 0 {
					return p
				}
			}
		}
	}
	return center
}

// findSpawn returns the walkable ground-floor tile closest to the centre.
func findSpawn(g *Grid, cfg GenConfig) geom.Position {
	center := geom.Pos(cfg.Origin.X+cfg.Width/2, cfg.Origin.Y+cfg.Height/2, cfg.Origin.Z)
	limit := max(cfg.Width, cfg.Height)
	for r := 0; r <= limit; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				p := center.Translated(dx, dy, 0)
				if t := g.At(p); t != nil && t.IsWalkable() && t.Flags&TileFlagIndoor == 0 {
					return p
				}
			}
		}
	}
	return center
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
