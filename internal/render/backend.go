package render

import (
	"bytes"
	"image"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

// DefaultMaxTextureSize is the largest framebuffer edge the backend accepts.
const DefaultMaxTextureSize = 4096

// Pool records one layer of a frame. The map pool renders into its own
// framebuffer; the overlay pools draw straight onto the screen.
type Pool struct {
	kind   mapview.PoolKind
	size   geom.Size
	smooth bool
	before func(mapview.Painter)
	after  func(mapview.Painter)

	rec       recorder
	dest, src geom.Rect
	fb        *ebiten.Image
}

func (p *Pool) Kind() mapview.PoolKind                { return p.kind }
func (p *Pool) Resize(size geom.Size)                 { p.size = size }
func (p *Pool) SetSmooth(smooth bool)                 { p.smooth = smooth }
func (p *Pool) OnBeforeDraw(fn func(mapview.Painter)) { p.before = fn }
func (p *Pool) OnAfterDraw(fn func(mapview.Painter))  { p.after = fn }

// Size returns the framebuffer size.
func (p *Pool) Size() geom.Size { return p.size }

// Smooth reports whether the framebuffer is filtered when stretched.
func (p *Pool) Smooth() bool { return p.smooth }

func (p *Pool) framebuffer() bool { return p.kind == mapview.PoolMap }

// painter is the paint state handed to the pool hooks.
type painter struct {
	opacity float64
	shader  *Shader
}

func (p *painter) SetOpacity(alpha float64) { p.opacity = alpha }
func (p *painter) ResetOpacity()            { p.opacity = 1 }

// SetShader accepts only shaders built by this package.
func (p *painter) SetShader(s mapview.Shader) {
	if sh, ok := s.(*Shader); ok {
		p.shader = sh
	}
}

func (p *painter) ResetShader() { p.shader = nil }

type step struct {
	pool *Pool
	draw func(screen *ebiten.Image)
}

// Backend implements mapview.RenderBackend on Ebiten.
type Backend struct {
	pools      []*Pool
	frame      []step
	maxTexture int
	shaders    bool
	face       *text.GoTextFace
	start      time.Time
	log        *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithMaxTextureSize lowers or raises the framebuffer limit.
func WithMaxTextureSize(n int) Option {
	return func(b *Backend) { b.maxTexture = n }
}

// WithShaders toggles shader support. Without it map shaders are never set.
func WithShaders(enable bool) Option {
	return func(b *Backend) { b.shaders = enable }
}

// WithLogger sets the logger for shader failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBackend returns a backend using the Go regular font for text.
func NewBackend(opts ...Option) (*Backend, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	b := &Backend{
		maxTexture: DefaultMaxTextureSize,
		shaders:    true,
		face:       &text.GoTextFace{Source: src, Size: 11},
		start:      time.Now(),
		log:        slog.Default(),
	}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

func (b *Backend) CreatePool(kind mapview.PoolKind) mapview.Pool {
	p := &Pool{kind: kind}
	b.pools = append(b.pools, p)
	return p
}

// Use clears p's commands and queues it for the next Present.
func (b *Backend) Use(p mapview.Pool, dest, src geom.Rect) mapview.Canvas {
	pool, ok := p.(*Pool)
	if !ok {
		panic("render: pool from another backend")
	}
	pool.rec.reset()
	pool.dest, pool.src = dest, src
	b.frame = append(b.frame, step{pool: pool})
	return &pool.rec
}

func (b *Backend) MaxTextureSize() int { return b.maxTexture }
func (b *Backend) HasShaders() bool    { return b.shaders }

// enqueue adds a raw draw step to the frame, after the pools used so far.
func (b *Backend) enqueue(fn func(screen *ebiten.Image)) {
	b.frame = append(b.frame, step{draw: fn})
}

// Present replays the frame onto screen and starts a new one.
func (b *Backend) Present(screen *ebiten.Image) {
	for _, s := range b.frame {
		if s.draw != nil {
			s.draw(screen)
			continue
		}
		if s.pool.framebuffer() {
			b.presentFramebuffer(screen, s.pool)
		} else {
			b.replay(screen, s.pool.rec.cmds)
		}
	}
	b.frame = b.frame[:0]
}

// pendingSteps returns how many steps wait for Present.
func (b *Backend) pendingSteps() int { return len(b.frame) }

func (b *Backend) presentFramebuffer(screen *ebiten.Image, p *Pool) {
	if p.size.IsEmpty() || p.src.IsEmpty() || p.dest.IsEmpty() {
		return
	}
	if p.fb == nil || p.fb.Bounds().Dx() != p.size.W || p.fb.Bounds().Dy() != p.size.H {
		if p.fb != nil {
			p.fb.Deallocate()
		}
		p.fb = ebiten.NewImage(p.size.W, p.size.H)
	}
	p.fb.Clear()
	b.replay(p.fb, p.rec.cmds)

	paint := &painter{opacity: 1}
	if p.before != nil {
		p.before(paint)
	}
	defer func() {
		if p.after != nil {
			p.after(paint)
		}
	}()

	sub := p.fb.SubImage(rectangle(p.src)).(*ebiten.Image)
	sx := float64(p.dest.W) / float64(p.src.W)
	sy := float64(p.dest.H) / float64(p.src.H)
	alpha := float32(max(0, min(paint.opacity, 1)))

	if paint.shader != nil {
		sh, err := paint.shader.Compile()
		if err == nil {
			paint.shader.SetUniform(UniformTime, float32(time.Since(b.start).Seconds()))
			op := &ebiten.DrawRectShaderOptions{Uniforms: paint.shader.uniformSnapshot()}
			op.Images[0] = sub
			op.GeoM.Scale(sx, sy)
			op.GeoM.Translate(float64(p.dest.X), float64(p.dest.Y))
			op.ColorScale.ScaleAlpha(alpha)
			screen.DrawRectShader(p.src.W, p.src.H, sh, op)
			return
		}
		b.log.Warn("map shader unusable, drawing without it", "shader", paint.shader.Name(), "error", err)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(sx, sy)
	op.GeoM.Translate(float64(p.dest.X), float64(p.dest.Y))
	op.ColorScale.ScaleAlpha(alpha)
	if p.smooth {
		op.Filter = ebiten.FilterLinear
	}
	screen.DrawImage(sub, op)
}

func (b *Backend) replay(dst *ebiten.Image, cmds []command) {
	for _, c := range cmds {
		switch c.kind {
		case cmdFill:
			vector.FillRect(dst, float32(c.rect.X), float32(c.rect.Y), float32(c.rect.W), float32(c.rect.H), withAlpha(c.colour, c.alpha), false)
		case cmdTexture:
			if c.texture.size.IsEmpty() {
				continue
			}
			img := c.texture.ebitenImage()
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(float64(c.rect.W)/float64(c.texture.size.W), float64(c.rect.H)/float64(c.texture.size.H))
			op.GeoM.Translate(float64(c.rect.X), float64(c.rect.Y))
			op.ColorScale.ScaleAlpha(float32(c.alpha))
			dst.DrawImage(img, op)
		case cmdText:
			op := &text.DrawOptions{}
			op.GeoM.Translate(float64(c.rect.X), float64(c.rect.Y))
			op.ColorScale.ScaleWithColor(withAlpha(c.colour, c.alpha))
			text.Draw(dst, c.text, b.face, op)
		}
	}
}

func rectangle(r geom.Rect) image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}
