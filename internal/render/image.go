package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/mapview/internal/geom"
)

// Image is a texture whose pixels are painted on first use. Ebiten images
// are only created once a frame is presented.
type Image struct {
	size  geom.Size
	paint func(dst *ebiten.Image)
	img   *ebiten.Image
}

// NewImage returns a lazily painted texture of the given size.
func NewImage(size geom.Size, paint func(dst *ebiten.Image)) *Image {
	return &Image{size: size, paint: paint}
}

func (i *Image) Size() geom.Size { return i.size }

func (i *Image) ebitenImage() *ebiten.Image {
	if i.img == nil {
		i.img = ebiten.NewImage(i.size.W, i.size.H)
		if i.paint != nil {
			i.paint(i.img)
		}
	}
	return i.img
}

// NewCrosshair returns the tile-sized target marker drawn under the mouse.
func NewCrosshair(tileSize int) *Image {
	return NewImage(geom.Square(tileSize), func(dst *ebiten.Image) {
		s := float32(tileSize)
		col := color.RGBA{R: 255, G: 255, B: 255, A: 200}
		arm := s / 4
		vector.StrokeRect(dst, 1, 1, s-2, s-2, 1, color.RGBA{R: 255, G: 255, B: 255, A: 60}, false)
		vector.StrokeLine(dst, 0, 0, arm, 0, 2, col, false)
		vector.StrokeLine(dst, 0, 0, 0, arm, 2, col, false)
		vector.StrokeLine(dst, s, 0, s-arm, 0, 2, col, false)
		vector.StrokeLine(dst, s, 0, s, arm, 2, col, false)
		vector.StrokeLine(dst, 0, s, arm, s, 2, col, false)
		vector.StrokeLine(dst, 0, s, 0, s-arm, 2, col, false)
		vector.StrokeLine(dst, s, s, s-arm, s, 2, col, false)
		vector.StrokeLine(dst, s, s, s, s-arm, 2, col, false)
	})
}
