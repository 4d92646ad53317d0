package geom

import (
	"fmt"
	"math"
)

const (
	// TilePixels is the native edge length of one tile in pixels.
	TilePixels = 32
	// MaxZ is the highest (deepest) floor index.
	MaxZ = 15
	// SeaFloor is the ground floor. Floors below it (larger z) are underground.
	SeaFloor = 7
	// UndergroundFloor is the first floor below sea level.
	UndergroundFloor = SeaFloor + 1
	// AwareUndergroundFloorRange is how many floors above and below the camera
	// stay visible while underground.
	AwareUndergroundFloorRange = 2

	maxXY = 65535
)

// Direction is one of the eight compass directions, or InvalidDirection.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
	NorthEast
	SouthEast
	SouthWest
	NorthWest
	InvalidDirection
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	case NorthEast:
		return "northeast"
	case SouthEast:
		return "southeast"
	case SouthWest:
		return "southwest"
	case NorthWest:
		return "northwest"
	default:
		return "invalid"
	}
}

// Position is an integer world coordinate. Z is the floor index; lower z is
// higher up.
type Position struct {
	X int
	Y int
	Z int
}

// InvalidPosition is the sentinel returned when no position is known.
var InvalidPosition = Position{X: maxXY, Y: maxXY, Z: 255}

// Pos is shorthand for Position{x, y, z}.
func Pos(x, y, z int) Position { return Position{X: x, Y: y, Z: z} }

// IsValid reports whether p is not the invalid sentinel.
func (p Position) IsValid() bool { return p != InvalidPosition }

func (p Position) String() string {
	if !p.IsValid() {
		return "(invalid)"
	}
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// Add returns the component-wise sum.
func (p Position) Add(o Position) Position {
	return Position{p.X + o.X, p.Y + o.Y, p.Z + o.Z}
}

// Translated returns p shifted by the given deltas.
func (p Position) Translated(dx, dy, dz int) Position {
	return Position{p.X + dx, p.Y + dy, p.Z + dz}
}

// TranslatedToDirection returns the neighbouring position in direction d.
func (p Position) TranslatedToDirection(d Direction) Position {
	switch d {
	case North:
		p.Y--
	case East:
		p.X++
	case South:
		p.Y++
	case West:
		p.X--
	case NorthEast:
		p.X++
		p.Y--
	case SouthEast:
		p.X++
		p.Y++
	case SouthWest:
		p.X--
		p.Y++
	case NorthWest:
		p.X--
		p.Y--
	}
	return p
}

// TranslatedToDirections returns the neighbours in each of dirs, in order.
func (p Position) TranslatedToDirections(dirs ...Direction) []Position {
	out := make([]Position, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, p.TranslatedToDirection(d))
	}
	return out
}

// Up moves p n floors up in place. It reports false and leaves p untouched
// when the result would leave [0, MaxZ].
func (p *Position) Up(n int) bool {
	nz := p.Z - n
	if nz < 0 || nz > MaxZ {
		return false
	}
	p.Z = nz
	return true
}

// Down moves p n floors down in place; see Up.
func (p *Position) Down(n int) bool {
	return p.Up(-n)
}

// CoveredUp re-expresses p n floors higher. Upper floors are drawn one tile
// up-left per floor, so the tile covering p's screen spot sits one tile
// further down-right per floor. It reports false and leaves p untouched when
// the result is out of bounds.
func (p *Position) CoveredUp(n int) bool {
	nx, ny, nz := p.X+n, p.Y+n, p.Z-n
	if nx < 0 || nx > maxXY || ny < 0 || ny > maxXY || nz < 0 || nz > MaxZ {
		return false
	}
	p.X, p.Y, p.Z = nx, ny, nz
	return true
}

// CoveredDown is the inverse of CoveredUp.
func (p *Position) CoveredDown(n int) bool {
	return p.CoveredUp(-n)
}

// DirectionTo returns the compass direction from p toward o, bucketed into
// 45° sectors. Equal X/Y yields InvalidDirection.
func (p Position) DirectionTo(o Position) Direction {
	dx := o.X - p.X
	dy := o.Y - p.Y
	if dx == 0 && dy == 0 {
		return InvalidDirection
	}
	// Screen y grows downward, so flip it to get a conventional angle.
	deg := math.Atan2(float64(-dy), float64(dx)) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	switch {
	case deg >= 337.5 || deg < 22.5:
		return East
	case deg < 67.5:
		return NorthEast
	case deg < 112.5:
		return North
	case deg < 157.5:
		return NorthWest
	case deg < 202.5:
		return West
	case deg < 247.5:
		return SouthWest
	case deg < 292.5:
		return South
	default:
		return SouthEast
	}
}

// IsInRange reports whether o lies inside the box [X-minX, X+maxX] ×
// [Y-minY, Y+maxY] around p, on the same floor unless ignoreZ is set.
func (p Position) IsInRange(o Position, minX, maxX, minY, maxY int, ignoreZ bool) bool {
	return o.X >= p.X-minX && o.X <= p.X+maxX &&
		o.Y >= p.Y-minY && o.Y <= p.Y+maxY &&
		(ignoreZ || o.Z == p.Z)
}

// AwareRange holds the half-extents, in tiles, of the area around the camera
// that gameplay considers visible.
type AwareRange struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Horizontal is the full width of the range including the centre column.
func (a AwareRange) Horizontal() int { return a.Left + a.Right + 1 }

// Vertical is the full height of the range including the centre row.
func (a AwareRange) Vertical() int { return a.Top + a.Bottom + 1 }
