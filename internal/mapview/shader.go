package mapview

import (
	"time"

	"github.com/Garsondee/mapview/internal/geom"
)

// Uniform names set on the map shader before the map pool is presented.
const (
	UniformMapCenterCoord = "MapCenterCoord"
	UniformMapGlobalCoord = "MapGlobalCoord"
	UniformMapZoom        = "MapZoom"
	UniformMapWalkOffset  = "MapWalkOffset"
)

// shaderFade is the cross-fade between the active and the next map shader.
type shaderFade struct {
	shader     Shader
	nextShader Shader
	switchDone bool
	timerStart time.Time
	fadeIn     time.Duration
	fadeOut    time.Duration
	// origin is the camera position when the shader was set; the walk
	// offset uniform is measured from it.
	origin  geom.Position
	opacity float64
}

// SetShader switches the map shader. With a fadeOut and an active shader the
// current one fades out first; the new shader then fades in over fadeIn.
func (v *MapView) SetShader(s Shader, fadeIn, fadeOut time.Duration) {
	f := &v.fade
	if f.shader == s {
		return
	}

	if fadeOut > 0 && f.shader != nil {
		f.nextShader = s
		f.switchDone = false
	} else {
		f.shader = s
		f.nextShader = nil
		f.switchDone = true
	}
	f.timerStart = v.now()
	f.fadeIn = fadeIn
	f.fadeOut = fadeOut
	f.origin = v.CameraPosition()
}

// Shader returns the active map shader.
func (v *MapView) Shader() Shader { return v.fade.shader }

// NextShader returns the shader waiting for the fade-out to finish.
func (v *MapView) NextShader() Shader { return v.fade.nextShader }

// ShaderOpacity returns the opacity applied on the last map pool draw.
func (v *MapView) ShaderOpacity() float64 { return v.fade.opacity }

func (v *MapView) beforeMapDraw(p Painter) {
	f := &v.fade
	elapsed := v.now().Sub(f.timerStart)

	opacity := 1.0
	if !f.switchDone && f.fadeOut > 0 {
		opacity = 1 - elapsed.Seconds()/f.fadeOut.Seconds()
		if opacity < 0 {
			f.shader = f.nextShader
			f.nextShader = nil
			f.switchDone = true
			f.timerStart = v.now()
			elapsed = 0
		}
	}

	if f.switchDone && f.shader != nil && f.fadeIn > 0 {
		opacity = min(elapsed.Seconds()/f.fadeIn.Seconds(), 1)
	}

	if f.shader != nil && v.backend.HasShaders() {
		v.setMapUniforms(f.shader)
		p.SetShader(f.shader)
	}

	f.opacity = opacity
	p.SetOpacity(opacity)
}

func (v *MapView) setMapUniforms(s Shader) {
	camera := v.CameraPosition()
	w := float32(v.rectDimension.W)
	h := float32(v.rectDimension.H)
	if w == 0 || h == 0 {
		return
	}

	center := v.rectCache.SrcRect.Center()
	global := geom.Point{
		X: camera.X - v.drawDimension.W/2,
		Y: -(camera.Y - v.drawDimension.H/2),
	}.Mul(v.tileSize)
	walk := v.TransformPositionTo2D(camera, v.fade.origin)

	s.SetUniform(UniformMapCenterCoord, float32(center.X)/w, 1-float32(center.Y)/h)
	s.SetUniform(UniformMapGlobalCoord, float32(global.X)/w, float32(global.Y)/h)
	s.SetUniform(UniformMapZoom, float32(v.scaleFactor))
	s.SetUniform(UniformMapWalkOffset, float32(walk.X)/w, -float32(walk.Y)/h)
}

func (v *MapView) afterMapDraw(p Painter) {
	p.ResetShader()
	p.ResetOpacity()
}
