// Package headless drives the map view without a window. A recorder backend
// stands in for the GPU and writes what each frame would draw into a
// FrameLog, which tests and the report command inspect.
package headless

import (
	"fmt"
	"image/color"
	"maps"
	"slices"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

const noPool = "--"

// Texture is a sized placeholder image.
type Texture struct {
	size geom.Size
}

func NewTexture(size geom.Size) *Texture { return &Texture{size: size} }

func (t *Texture) Size() geom.Size { return t.size }

// Shader remembers the uniforms set on it.
type Shader struct {
	name     string
	uniforms map[string][]float32
}

func NewShader(name string) *Shader {
	return &Shader{name: name, uniforms: map[string][]float32{}}
}

func (s *Shader) Name() string { return s.name }

func (s *Shader) SetUniform(name string, v ...float32) {
	s.uniforms[name] = slices.Clone(v)
}

// Uniform returns the last value set for name.
func (s *Shader) Uniform(name string) ([]float32, bool) {
	v, ok := s.uniforms[name]
	return v, ok
}

// UniformNames lists the uniforms set so far, sorted.
func (s *Shader) UniformNames() []string {
	return slices.Sorted(maps.Keys(s.uniforms))
}

type drawCounts struct {
	fills, textures, texts int
}

func (c drawCounts) total() int { return c.fills + c.textures + c.texts }

type pool struct {
	kind      mapview.PoolKind
	size      geom.Size
	smooth    bool
	before    func(mapview.Painter)
	after     func(mapview.Painter)
	dest, src geom.Rect
	counts    drawCounts
}

func (p *pool) Kind() mapview.PoolKind                { return p.kind }
func (p *pool) Resize(size geom.Size)                 { p.size = size }
func (p *pool) SetSmooth(smooth bool)                 { p.smooth = smooth }
func (p *pool) OnBeforeDraw(fn func(mapview.Painter)) { p.before = fn }
func (p *pool) OnAfterDraw(fn func(mapview.Painter))  { p.after = fn }

// Backend implements mapview.RenderBackend by logging instead of drawing.
type Backend struct {
	log        *FrameLog
	frame      int
	pools      []*pool
	used       []*pool
	maxTexture int
	shaders    bool
}

// Option configures a Backend.
type Option func(*Backend)

func WithMaxTextureSize(n int) Option {
	return func(b *Backend) { b.maxTexture = n }
}

func WithShaders(enable bool) Option {
	return func(b *Backend) { b.shaders = enable }
}

// NewBackend returns a backend writing into log.
func NewBackend(log *FrameLog, opts ...Option) *Backend {
	b := &Backend{log: log, maxTexture: 4096, shaders: true}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Backend) CreatePool(kind mapview.PoolKind) mapview.Pool {
	p := &pool{kind: kind}
	b.pools = append(b.pools, p)
	return p
}

func (b *Backend) Use(p mapview.Pool, dest, src geom.Rect) mapview.Canvas {
	pl, ok := p.(*pool)
	if !ok {
		panic("headless: pool from another backend")
	}
	pl.dest, pl.src = dest, src
	pl.counts = drawCounts{}
	b.used = append(b.used, pl)
	return &canvas{backend: b, pool: pl}
}

func (b *Backend) MaxTextureSize() int { return b.maxTexture }
func (b *Backend) HasShaders() bool    { return b.shaders }

// Frame returns the number of the frame being recorded.
func (b *Backend) Frame() int { return b.frame }

// PoolSize returns the framebuffer size of the first pool of kind.
func (b *Backend) PoolSize(kind mapview.PoolKind) (geom.Size, bool) {
	for _, p := range b.pools {
		if p.kind == kind {
			return p.size, true
		}
	}
	return geom.Size{}, false
}

// EndFrame presents the pools used this frame, running the framebuffer
// hooks, and starts the next frame. It returns the number of draw commands
// recorded.
func (b *Backend) EndFrame() int {
	total := 0
	for _, p := range b.used {
		name := p.kind.String()
		b.log.Add(b.frame, name, "pool", "present",
			fmt.Sprintf("fills=%d textures=%d texts=%d", p.counts.fills, p.counts.textures, p.counts.texts),
			float64(p.counts.total()))
		total += p.counts.total()
		if p.kind == mapview.PoolMap {
			b.presentMap(p)
		}
	}
	b.used = b.used[:0]
	b.frame++
	return total
}

func (b *Backend) presentMap(p *pool) {
	paint := &painter{opacity: 1}
	if p.before != nil {
		p.before(paint)
	}
	name := p.kind.String()
	b.log.Add(b.frame, name, "paint", "opacity", fmt.Sprintf("%.2f", paint.opacity), paint.opacity)
	if paint.shader != nil {
		b.log.Add(b.frame, name, "paint", "shader", paint.shader.Name(), 0)
	}
	b.log.AddVerbose(b.frame, name, "paint", "blit", fmt.Sprintf("%v -> %v", p.src, p.dest), 0)
	if p.after != nil {
		p.after(paint)
	}
}

type painter struct {
	opacity float64
	shader  mapview.Shader
}

func (p *painter) SetOpacity(alpha float64)   { p.opacity = alpha }
func (p *painter) ResetOpacity()              { p.opacity = 1 }
func (p *painter) SetShader(s mapview.Shader) { p.shader = s }
func (p *painter) ResetShader()               { p.shader = nil }

type canvas struct {
	backend *Backend
	pool    *pool
}

func (c *canvas) FillRect(r geom.Rect, col color.Color) {
	c.pool.counts.fills++
	c.backend.log.AddVerbose(c.backend.frame, c.pool.kind.String(), "draw", "fill", fmt.Sprintf("%v %s", r, hex(col)), 0)
}

func (c *canvas) SetLastOpacity(alpha float64) {
	c.backend.log.AddVerbose(c.backend.frame, c.pool.kind.String(), "draw", "last_opacity", fmt.Sprintf("%.2f", alpha), alpha)
}

func (c *canvas) DrawTexture(r geom.Rect, t mapview.Texture) {
	c.pool.counts.textures++
	c.backend.log.AddVerbose(c.backend.frame, c.pool.kind.String(), "draw", "texture", fmt.Sprintf("%v", r), 0)
}

func (c *canvas) DrawText(p geom.Point, s string, col color.Color) {
	c.pool.counts.texts++
	c.backend.log.AddVerbose(c.backend.frame, c.pool.kind.String(), "draw", "text", fmt.Sprintf("%d,%d %s", p.X, p.Y, s), 0)
}

func hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}
