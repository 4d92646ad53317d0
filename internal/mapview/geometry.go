package mapview

import "github.com/Garsondee/mapview/internal/geom"

// TransformPositionTo2D returns the framebuffer pixel of pos relative to the
// camera at rel. Each floor of difference shifts the tile one unit up-left
// (below the camera) or down-right (above it).
func (v *MapView) TransformPositionTo2D(pos, rel geom.Position) geom.Point {
	dz := rel.Z - pos.Z
	return geom.Point{
		X: (v.virtualCenterOffset.X + (pos.X - rel.X) - dz) * v.tileSize,
		Y: (v.virtualCenterOffset.Y + (pos.Y - rel.Y) - dz) * v.tileSize,
	}
}

// calcFramebufferSource returns the region of the draw buffer presented into
// a destination of destSize.
func (v *MapView) calcFramebufferSource(destSize geom.Size) geom.Rect {
	margin := v.drawDimension.Sub(v.visibleDimension).Sub(geom.Square(1))
	drawOffset := margin.ToPoint().Div(2).Mul(v.tileSize)
	if v.IsFollowingCreature() {
		drawOffset = drawOffset.Add(v.followingCreature.WalkOffset().Scale(v.scaleFactor))
	} else if !v.moveOffset.IsNull() {
		drawOffset = drawOffset.Add(v.moveOffset.Scale(v.scaleFactor))
	}

	srcVisible := v.visibleDimension.Mul(v.tileSize)
	srcSize := destSize.ScaledKeepAspect(srcVisible)
	drawOffset.X += (srcVisible.W - srcSize.W) / 2
	drawOffset.Y += (srcVisible.H - srcSize.H) / 2

	return geom.RectAt(drawOffset, srcSize)
}

// SetVisibleDimension sets the number of whole tiles shown. Both sides must
// be odd and at least 3 so the camera tile sits in the centre.
func (v *MapView) SetVisibleDimension(visible geom.Size) {
	if visible == v.visibleDimension {
		return
	}
	if visible.W%2 != 1 || visible.H%2 != 1 {
		v.rejectGeometry("visible dimension must be odd", visible)
		return
	}
	if visible.W < 3 || visible.H < 3 {
		v.rejectGeometry("reached max zoom in", visible)
		return
	}
	v.updateGeometry(visible, v.optimizedSize)
}

func (v *MapView) rejectGeometry(reason string, visible geom.Size) {
	v.log.Error(reason, "width", visible.W, "height", visible.H, "render_scale", v.renderScale)
	if v.observer != nil {
		v.observer.ObserveGeometryRejected(reason)
	}
}

// SetViewMode forces a view mode. Multi-floor rendering follows the mode.
func (v *MapView) SetViewMode(mode ViewMode) {
	v.viewMode = mode
	v.multiFloor = mode < FarView
	v.RequestVisibleTilesCacheUpdate()
}

// SetAutoViewMode lets the view pick its mode from the visible area.
func (v *MapView) SetAutoViewMode(enable bool) {
	v.autoViewMode = enable
	if enable {
		v.updateGeometry(v.visibleDimension, v.optimizedSize)
	}
}

// OptimizeForSize records the screen size the view is tuned for.
func (v *MapView) OptimizeForSize(size geom.Size) {
	v.updateGeometry(v.visibleDimension, size)
}

// SetAntiAliasing toggles smoothing of the map pool.
func (v *MapView) SetAntiAliasing(enable bool) {
	v.mapPool.SetSmooth(enable)
	v.updateGeometry(v.visibleDimension, v.optimizedSize)
}

// SetRenderScale sets the tile scale in percent of TilePixels.
func (v *MapView) SetRenderScale(scale int) {
	if scale <= 0 {
		v.log.Error("render scale must be positive", "render_scale", scale)
		return
	}
	v.renderScale = scale
	v.updateGeometry(v.visibleDimension, v.optimizedSize)
	v.updateLight()
}

func (v *MapView) updateGeometry(visible, optimized geom.Size) {
	tileSize := geom.TilePixels * v.renderScale / 100
	drawDimension := visible.Add(geom.Square(3))
	bufferSize := drawDimension.Mul(tileSize)

	if limit := v.backend.MaxTextureSize(); bufferSize.W > limit || bufferSize.H > limit {
		v.rejectGeometry("reached max zoom out", visible)
		return
	}

	virtualCenterOffset := drawDimension.Div(2).Sub(geom.Square(1)).ToPoint()

	mode := v.viewMode
	if v.autoViewMode {
		area := visible.Area()
		switch {
		case tileSize >= geom.TilePixels && area <= nearViewArea:
			mode = NearView
		case tileSize >= 16 && area <= midViewArea:
			mode = MidView
		case tileSize >= 8 && area <= farViewArea:
			mode = FarView
		default:
			mode = HugeView
		}
		v.multiFloor = mode < FarView
	}

	v.viewMode = mode
	v.visibleDimension = visible
	v.drawDimension = drawDimension
	v.tileSize = tileSize
	v.virtualCenterOffset = virtualCenterOffset
	v.visibleCenterOffset = virtualCenterOffset
	v.optimizedSize = optimized
	v.rectDimension = geom.RectAt(geom.Point{}, bufferSize)
	v.scaleFactor = float64(tileSize) / geom.TilePixels

	v.mapPool.Resize(bufferSize)
	if v.lightsEnabled() {
		v.light.Resize(bufferSize, tileSize)
	}

	aware := v.grid.AwareRange()
	v.awareRange.Left = min(aware.Left, drawDimension.W/2-1)
	v.awareRange.Top = min(aware.Top, drawDimension.H/2-1)
	v.awareRange.Bottom = v.awareRange.Top + 1
	v.awareRange.Right = v.awareRange.Left + 1
	v.rectCache.Rect = geom.Rect{}

	v.updateViewportDirectionCache()
	v.RequestVisibleTilesCacheUpdate()

	v.log.Debug("geometry updated",
		"visible", visible, "draw", drawDimension, "tile_size", tileSize,
		"view_mode", mode.String(), "multi_floor", v.multiFloor)
}

// updateViewportDirectionCache precomputes the aware range variant used
// while the followed creature walks in each direction.
func (v *MapView) updateViewportDirectionCache() {
	for dir := geom.North; dir <= geom.InvalidDirection; dir++ {
		vp := geom.AwareRange{
			Top:   v.awareRange.Top,
			Right: v.awareRange.Right,
		}
		vp.Bottom = vp.Top
		vp.Left = vp.Right

		switch dir {
		case geom.North, geom.South:
			vp.Top++
			vp.Bottom++
		case geom.West, geom.East:
			vp.Right++
			vp.Left++
		case geom.NorthEast, geom.SouthEast, geom.NorthWest, geom.SouthWest:
			vp.Left++
			vp.Bottom++
			vp.Top++
			vp.Right++
		case geom.InvalidDirection:
			vp.Left--
			vp.Right--
		}
		v.viewportDirection[dir] = vp
	}
	v.viewport = v.viewportDirection[geom.InvalidDirection]
}

// Position maps a point inside a map widget of mapSize to the world tile
// under it. It returns geom.InvalidPosition without a camera.
func (v *MapView) Position(point geom.Point, mapSize geom.Size) geom.Position {
	camera := v.CameraPosition()
	if !camera.IsValid() || mapSize.IsEmpty() || v.tileSize == 0 {
		return geom.InvalidPosition
	}

	src := v.calcFramebufferSource(mapSize)
	sh := float64(src.W) / float64(mapSize.W)
	sv := float64(src.H) / float64(mapSize.H)

	framebufferPos := geom.Point{X: int(float64(point.X) * sh), Y: int(float64(point.Y) * sv)}
	centerOffset := framebufferPos.Add(src.TopLeft()).Div(v.tileSize)

	tilePos2D := v.visibleCenterOffset.Sub(v.drawDimension.ToPoint()).Add(centerOffset).Add(geom.Pt(2, 2))
	if tilePos2D.X+camera.X < 0 && tilePos2D.Y+camera.Y < 0 {
		return geom.InvalidPosition
	}

	pos := geom.Pos(tilePos2D.X, tilePos2D.Y, 0).Add(camera)
	if !pos.IsValid() {
		return geom.InvalidPosition
	}
	return pos
}
