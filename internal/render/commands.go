// Package render draws the map view with Ebiten. Pools record commands while
// the map view builds a frame; Present replays them onto the screen in the
// order the pools were used.
package render

import (
	"image/color"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

type commandKind uint8

const (
	cmdFill commandKind = iota
	cmdTexture
	cmdText
)

type command struct {
	kind    commandKind
	rect    geom.Rect
	colour  color.RGBA
	texture *Image
	text    string
	alpha   float64
}

// recorder is the canvas handed to the map view. It only appends.
type recorder struct {
	cmds []command
}

func (r *recorder) reset() { r.cmds = r.cmds[:0] }

func (r *recorder) FillRect(rect geom.Rect, c color.Color) {
	r.cmds = append(r.cmds, command{kind: cmdFill, rect: rect, colour: toRGBA(c), alpha: 1})
}

func (r *recorder) SetLastOpacity(alpha float64) {
	if n := len(r.cmds); n > 0 {
		r.cmds[n-1].alpha = alpha
	}
}

// DrawTexture records t stretched over rect. Textures from other backends
// are ignored.
func (r *recorder) DrawTexture(rect geom.Rect, t mapview.Texture) {
	img, ok := t.(*Image)
	if !ok || img == nil {
		return
	}
	r.cmds = append(r.cmds, command{kind: cmdTexture, rect: rect, texture: img, alpha: 1})
}

func (r *recorder) DrawText(p geom.Point, s string, c color.Color) {
	r.cmds = append(r.cmds, command{kind: cmdText, rect: geom.Rect{X: p.X, Y: p.Y}, text: s, colour: toRGBA(c), alpha: 1})
}

func toRGBA(c color.Color) color.RGBA {
	switch v := c.(type) {
	case color.RGBA:
		return v
	case color.NRGBA:
		return color.RGBA(v)
	default:
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		return color.RGBA(n)
	}
}

// withAlpha returns c as a straight-alpha colour with its alpha scaled.
// Colours are recorded unpremultiplied, the way the world defines them.
func withAlpha(c color.RGBA, alpha float64) color.NRGBA {
	alpha = max(0, min(alpha, 1))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A) * alpha)}
}
