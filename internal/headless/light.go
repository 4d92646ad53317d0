package headless

import (
	"fmt"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
)

// LightRecorder is a mapview.LightLayer that counts what a frame lights.
type LightRecorder struct {
	backend *Backend
	global  mapview.Light
	floor   int
	size    geom.Size

	shades  int
	sources int
	// Shaded and Lit keep the totals per floor for the last drawn frame.
	Shaded map[int]int
	Lit    map[int]int

	shadedAcc map[int]int
	litAcc    map[int]int
}

func NewLightRecorder(b *Backend) *LightRecorder {
	return &LightRecorder{backend: b, shadedAcc: map[int]int{}, litAcc: map[int]int{}}
}

func (l *LightRecorder) SetGlobalLight(light mapview.Light) {
	if light != l.global {
		l.backend.log.Add(l.backend.frame, noPool, "light", "global",
			fmt.Sprintf("intensity=%d colour=%d", light.Intensity, light.Color), float64(light.Intensity))
	}
	l.global = light
}

func (l *LightRecorder) Global() mapview.Light { return l.global }

func (l *LightRecorder) SetFloor(z int) { l.floor = z }

func (l *LightRecorder) SetShade(geom.Point) {
	l.shades++
	l.shadedAcc[l.floor]++
}

func (l *LightRecorder) AddLightSource(_ geom.Point, _ float64, light mapview.Light) {
	if light.Intensity == 0 {
		return
	}
	l.sources++
	l.litAcc[l.floor]++
}

func (l *LightRecorder) Resize(size geom.Size, tileSize int) {
	l.size = size
	l.backend.log.Add(l.backend.frame, noPool, "light", "resize",
		fmt.Sprintf("%dx%d tile=%d", size.W, size.H, tileSize), float64(tileSize))
}

func (l *LightRecorder) Draw(dest, src geom.Rect) {
	l.backend.log.Add(l.backend.frame, noPool, "light", "draw",
		fmt.Sprintf("shades=%d sources=%d", l.shades, l.sources), float64(l.sources))
	l.Shaded, l.Lit = l.shadedAcc, l.litAcc
	l.shadedAcc, l.litAcc = map[int]int{}, map[int]int{}
	l.shades, l.sources = 0, 0
}
