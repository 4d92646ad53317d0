package mapview

import "github.com/Garsondee/mapview/internal/geom"

func (v *MapView) infoFlags() InfoFlags {
	var flags InfoFlags
	if v.drawNames {
		flags |= DrawNames
	}
	if v.drawHealthBars {
		flags |= DrawBars
	}
	if v.drawManaBar {
		flags |= DrawManaBar
	}
	return flags
}

// drawCreatureInformation draws names and bars of the creatures collected by
// the last visibility pass.
func (v *MapView) drawCreatureInformation() {
	flags := v.infoFlags()
	if flags == 0 {
		return
	}

	canvas := v.backend.Use(v.creaturePool, v.rectCache.Rect, v.rectCache.SrcRect)
	camera := v.CameraPosition()
	for _, c := range v.visibleCreatures {
		c.DrawInformation(canvas, CreatureInfo{
			Rect:              v.rectCache.Rect,
			Dest:              v.TransformPositionTo2D(c.Position(), camera),
			Scale:             v.scaleFactor,
			DrawOffset:        v.rectCache.DrawOffset,
			HorizontalStretch: v.rectCache.HorizontalStretch,
			VerticalStretch:   v.rectCache.VerticalStretch,
			Flags:             flags,
		})
	}
}

// drawText draws speech and floating text on the camera floor.
func (v *MapView) drawText() {
	if !v.drawTexts {
		return
	}
	statics := v.grid.StaticTexts()
	animated := v.grid.AnimatedTexts()
	if len(statics) == 0 && len(animated) == 0 {
		return
	}

	canvas := v.backend.Use(v.textPool, v.rectCache.Rect, v.rectCache.SrcRect)
	camera := v.CameraPosition()

	for _, t := range statics {
		if t.MessageMode() == MessageNone {
			continue
		}
		pos := t.Position()
		if pos.Z != camera.Z {
			continue
		}
		t.DrawText(canvas, v.textPoint(pos, camera), v.rectCache.Rect)
	}

	for _, t := range animated {
		pos := t.Position()
		if pos.Z != camera.Z {
			continue
		}
		t.DrawText(canvas, v.textPoint(pos, camera), v.rectCache.Rect)
	}
}

// textPoint maps a tile to widget coordinates through the rect cache.
func (v *MapView) textPoint(pos, camera geom.Position) geom.Point {
	p := v.TransformPositionTo2D(pos, camera).Sub(v.rectCache.DrawOffset)
	p.X = int(float64(p.X) * v.rectCache.HorizontalStretch)
	p.Y = int(float64(p.Y) * v.rectCache.VerticalStretch)
	return p.Add(v.rectCache.Rect.TopLeft())
}
