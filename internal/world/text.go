package world

import (
	"image/color"
	"time"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

const (
	animatedTextDuration = time.Second
	animatedTextRise     = 24
	glyphWidth           = 6
	glyphHeight          = 13
)

// staticTextDuration grows with the message so long lines stay readable.
func staticTextDuration(msg string) time.Duration {
	return 3*time.Second + time.Duration(len(msg))*75*time.Millisecond
}

func messageColour(m mapview.MessageMode) color.RGBA {
	switch m {
	case mapview.MessageSay, mapview.MessageWhisper:
		return color.RGBA{240, 240, 0, 255}
	case mapview.MessageYell:
		return color.RGBA{255, 120, 20, 255}
	case mapview.MessageMonsterSay:
		return color.RGBA{255, 80, 80, 255}
	default:
		return color.RGBA{255, 255, 255, 255}
	}
}

// StaticText is a speech bubble that follows its speaker.
type StaticText struct {
	speaker  *Creature
	mode     mapview.MessageMode
	msg      string
	age      time.Duration
	duration time.Duration
}

func newStaticText(c *Creature, mode mapview.MessageMode, msg string) *StaticText {
	return &StaticText{speaker: c, mode: mode, msg: msg, duration: staticTextDuration(msg)}
}

func (s *StaticText) Position() geom.Position           { return s.speaker.pos }
func (s *StaticText) MessageMode() mapview.MessageMode { return s.mode }

// Text returns the bubble contents prefixed with the speaker's name.
func (s *StaticText) Text() string {
	prefix := s.speaker.Name
	switch s.mode {
	case mapview.MessageWhisper:
		prefix += " whispers"
	case mapview.MessageYell:
		prefix += " yells"
	default:
		prefix += " says"
	}
	return prefix + ": " + s.msg
}

// DrawText centres the bubble above dest and keeps it inside bounds.
func (s *StaticText) DrawText(c mapview.Canvas, dest geom.Point, bounds geom.Rect) {
	text := s.Text()
	p := clampText(geom.Pt(dest.X-len(text)*glyphWidth/2, dest.Y-2*glyphHeight), len(text), bounds)
	c.DrawText(p, text, messageColour(s.mode))
}

// AnimatedText is a short-lived label, such as a damage number, that drifts
// upward from its tile.
type AnimatedText struct {
	pos    geom.Position
	text   string
	colour uint8
	age    time.Duration
}

func newAnimatedText(pos geom.Position, text string, colour uint8) *AnimatedText {
	return &AnimatedText{pos: pos, text: text, colour: colour}
}

func (a *AnimatedText) Position() geom.Position { return a.pos }

func (a *AnimatedText) DrawText(c mapview.Canvas, dest geom.Point, bounds geom.Rect) {
	rise := int(float64(animatedTextRise) * float64(a.age) / float64(animatedTextDuration))
	p := geom.Pt(dest.X-len(a.text)*glyphWidth/2, dest.Y-rise)
	if !bounds.Contains(p) {
		return
	}
	c.DrawText(p, a.text, mapview.EightBitColor(a.colour))
}

func clampText(p geom.Point, n int, bounds geom.Rect) geom.Point {
	w := n * glyphWidth
	p.X = max(bounds.X, min(p.X, bounds.X+bounds.W-w))
	p.Y = max(bounds.Y, min(p.Y, bounds.Y+bounds.H-glyphHeight))
	return p
}
