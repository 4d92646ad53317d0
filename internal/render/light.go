package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

// multiply darkens the destination by the light map.
var multiply = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
	BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
	BlendFactorDestinationRGB:   ebiten.BlendFactorZero,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

const gradientSize = 128

// shadeColour dims the ambient light under ground on the floor above.
var shadeColour = color.NRGBA{A: 110}

type shade struct {
	p     geom.Point
	floor int
}

type lightSource struct {
	center geom.Point
	radius float64
	colour color.RGBA
	floor  int
}

// LightLayer builds a per-frame light map and multiplies it over the map.
type LightLayer struct {
	backend  *Backend
	global   mapview.Light
	floor    int
	size     geom.Size
	tileSize int

	shades  []shade
	sources []lightSource

	img      *ebiten.Image
	gradient *Image
}

// NewLightLayer returns a light layer presenting through b.
func NewLightLayer(b *Backend) *LightLayer {
	return &LightLayer{backend: b, tileSize: geom.TilePixels, gradient: newGradient()}
}

func (l *LightLayer) SetGlobalLight(light mapview.Light) { l.global = light }

// SetFloor records the floor the following shades and sources belong to.
func (l *LightLayer) SetFloor(z int) { l.floor = z }

// Floor returns the last floor set.
func (l *LightLayer) Floor() int { return l.floor }

func (l *LightLayer) SetShade(p geom.Point) {
	l.shades = append(l.shades, shade{p: p, floor: l.floor})
}

// AddLightSource adds a glow of the light's intensity, in tiles, around
// center.
func (l *LightLayer) AddLightSource(center geom.Point, scale float64, light mapview.Light) {
	if light.Intensity == 0 {
		return
	}
	l.sources = append(l.sources, lightSource{
		center: center,
		radius: float64(light.Intensity) * float64(l.tileSize) * scale,
		colour: mapview.EightBitColor(light.Color),
		floor:  l.floor,
	})
}

func (l *LightLayer) Resize(size geom.Size, tileSize int) {
	l.size = size
	l.tileSize = tileSize
}

// Draw queues the light map for src, stretched over dest.
func (l *LightLayer) Draw(dest, src geom.Rect) {
	shades := append([]shade(nil), l.shades...)
	sources := litSources(shades, l.sources, l.tileSize)
	global := l.global
	l.shades = l.shades[:0]
	l.sources = l.sources[:0]
	l.backend.enqueue(func(screen *ebiten.Image) {
		l.present(screen, dest, src, global, shades, sources)
	})
}

// Ambient returns the light map base colour for the global light.
func Ambient(light mapview.Light) color.RGBA {
	c := mapview.EightBitColor(light.Color)
	f := float64(light.Intensity) / 255
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: 255,
	}
}

// litSources drops the sources whose center lies under a shade cast by a
// higher floor.
func litSources(shades []shade, sources []lightSource, tileSize int) []lightSource {
	lit := make([]lightSource, 0, len(sources))
	for _, src := range sources {
		covered := false
		for _, sh := range shades {
			if sh.floor < src.floor && geom.RectAt(sh.p, geom.Square(tileSize)).Contains(src.center) {
				covered = true
				break
			}
		}
		if !covered {
			lit = append(lit, src)
		}
	}
	return lit
}

func (l *LightLayer) present(screen *ebiten.Image, dest, src geom.Rect, global mapview.Light, shades []shade, sources []lightSource) {
	if l.size.IsEmpty() || src.IsEmpty() || dest.IsEmpty() {
		return
	}
	if l.img == nil || l.img.Bounds().Dx() != l.size.W || l.img.Bounds().Dy() != l.size.H {
		l.img = ebiten.NewImage(l.size.W, l.size.H)
	}
	l.img.Fill(Ambient(global))

	ts := float32(l.tileSize)
	for _, s := range shades {
		vector.FillRect(l.img, float32(s.p.X), float32(s.p.Y), ts, ts, shadeColour, false)
	}

	grad := l.gradient.ebitenImage()
	for _, s := range sources {
		op := &ebiten.DrawImageOptions{}
		d := s.radius * 2 / gradientSize
		op.GeoM.Translate(-gradientSize/2, -gradientSize/2)
		op.GeoM.Scale(d, d)
		op.GeoM.Translate(float64(s.center.X), float64(s.center.Y))
		op.ColorScale.ScaleWithColor(s.colour)
		op.Blend = ebiten.BlendLighter
		l.img.DrawImage(grad, op)
	}

	sub := l.img.SubImage(rectangle(src)).(*ebiten.Image)
	op := &ebiten.DrawImageOptions{Blend: multiply}
	op.GeoM.Scale(float64(dest.W)/float64(src.W), float64(dest.H)/float64(src.H))
	op.GeoM.Translate(float64(dest.X), float64(dest.Y))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(sub, op)
}

// newGradient is a white radial falloff used to stamp light sources.
func newGradient() *Image {
	return NewImage(geom.Square(gradientSize), func(dst *ebiten.Image) {
		pix := make([]byte, gradientSize*gradientSize*4)
		c := float64(gradientSize) / 2
		for y := range gradientSize {
			for x := range gradientSize {
				d := math.Hypot(float64(x)+0.5-c, float64(y)+0.5-c) / c
				v := byte(255 * math.Max(0, 1-d*d))
				i := (y*gradientSize + x) * 4
				pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, v
			}
		}
		dst.WritePixels(pix)
	})
}
