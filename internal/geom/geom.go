// Package geom holds the small integer geometry types shared by the map
// viewport and the world grid: screen points, sizes, rectangles and world
// positions.
package geom

// Point is a 2D integer coordinate in screen or framebuffer space.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }

// Mul scales both components by n.
func (p Point) Mul(n int) Point { return Point{p.X * n, p.Y * n} }

// Div divides both components by n, truncating toward zero.
func (p Point) Div(n int) Point { return Point{p.X / n, p.Y / n} }

// Scale multiplies both components by f and truncates.
func (p Point) Scale(f float64) Point {
	return Point{int(float64(p.X) * f), int(float64(p.Y) * f)}
}

// IsNull reports whether both components are zero.
func (p Point) IsNull() bool { return p.X == 0 && p.Y == 0 }

// Size is a width/height pair, in tiles or pixels depending on context.
type Size struct {
	W int
	H int
}

// Sz is shorthand for Size{w, h}.
func Sz(w, h int) Size { return Size{W: w, H: h} }

// Square returns a size with both sides equal to n.
func Square(n int) Size { return Size{n, n} }

func (s Size) Add(o Size) Size { return Size{s.W + o.W, s.H + o.H} }
func (s Size) Sub(o Size) Size { return Size{s.W - o.W, s.H - o.H} }
func (s Size) Mul(n int) Size  { return Size{s.W * n, s.H * n} }
func (s Size) Div(n int) Size  { return Size{s.W / n, s.H / n} }

// Area returns W*H.
func (s Size) Area() int { return s.W * s.H }

// IsEmpty reports whether either side is non-positive.
func (s Size) IsEmpty() bool { return s.W <= 0 || s.H <= 0 }

// ToPoint reinterprets the size as a point (W→X, H→Y).
func (s Size) ToPoint() Point { return Point{s.W, s.H} }

// ScaledKeepAspect returns the largest size with s's aspect ratio that fits
// inside target. A degenerate s yields target unchanged.
func (s Size) ScaledKeepAspect(target Size) Size {
	if s.W == 0 || s.H == 0 {
		return target
	}
	rw := target.H * s.W / s.H
	if rw <= target.W {
		return Size{rw, target.H}
	}
	return Size{target.W, target.W * s.H / s.W}
}

// Rect is an axis-aligned integer rectangle anchored at its top-left corner.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// RectAt builds a rect from a top-left point and a size.
func RectAt(p Point, s Size) Rect { return Rect{p.X, p.Y, s.W, s.H} }

func (r Rect) TopLeft() Point { return Point{r.X, r.Y} }
func (r Rect) Size() Size     { return Size{r.W, r.H} }

// Center returns the integer midpoint of the rect.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// IsEmpty reports whether the rect has no area. The zero Rect is empty.
func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether p lies inside r (right/bottom edges exclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}
