package mapview

import (
	"image/color"

	"github.com/Garsondee/mapview/internal/geom"
)

// LockFirstVisibleFloor forces the highest floor drawn.
func (v *MapView) LockFirstVisibleFloor(z int) {
	v.lockedFirstVisibleFloor = clampFloor(z)
	v.RequestVisibleTilesCacheUpdate()
}

// UnlockFirstVisibleFloor returns to the computed first visible floor.
func (v *MapView) UnlockFirstVisibleFloor() {
	v.lockedFirstVisibleFloor = unlockedFloor
	v.RequestVisibleTilesCacheUpdate()
}

// LockedFirstVisibleFloor returns the lock, or -1 when unlocked.
func (v *MapView) LockedFirstVisibleFloor() int { return v.lockedFirstVisibleFloor }

// calcFirstVisibleFloor returns the highest floor that can be seen from the
// camera. Roofs and upper floors over the camera or its look-through
// neighbours cut the view just below them.
func (v *MapView) calcFirstVisibleFloor() int {
	z := geom.SeaFloor
	if v.lockedFirstVisibleFloor != unlockedFloor {
		return clampFloor(v.lockedFirstVisibleFloor)
	}

	camera := v.CameraPosition()
	if !camera.IsValid() {
		return clampFloor(z)
	}
	if !v.multiFloor {
		return clampFloor(camera.Z)
	}

	firstFloor := 0
	// Underground only the floors near the camera are visible.
	if camera.Z > geom.SeaFloor {
		firstFloor = max(camera.Z-geom.AwareUndergroundFloorRange, geom.UndergroundFloor)
	}

	for ix := -1; ix <= 1 && firstFloor < camera.Z; ix++ {
		for iy := -1; iy <= 1 && firstFloor < camera.Z; iy++ {
			pos := camera.Translated(ix, iy, 0)
			isLookPossible := v.grid.IsLookPossible(pos)

			// Cardinal neighbours count only when they can be seen through,
			// e.g. windows and open doors.
			center := ix == 0 && iy == 0
			cardinal := abs(ix) != abs(iy)
			if !center && !(cardinal && isLookPossible) {
				continue
			}

			upperPos := pos
			coveredPos := pos
			for coveredPos.CoveredUp(1) && upperPos.Up(1) && upperPos.Z >= firstFloor {
				// Physically above.
				if tile := v.grid.Tile(upperPos); tile != nil && tile.LimitsFloorsView(!isLookPossible) {
					firstFloor = upperPos.Z + 1
					break
				}
				// Geometrically above.
				if tile := v.grid.Tile(coveredPos); tile != nil && tile.LimitsFloorsView(isLookPossible) {
					firstFloor = coveredPos.Z + 1
					break
				}
			}
		}
	}

	return clampFloor(firstFloor)
}

// calcLastVisibleFloor returns the lowest floor drawn.
func (v *MapView) calcLastVisibleFloor() int {
	if !v.multiFloor {
		return v.calcFirstVisibleFloor()
	}

	z := geom.SeaFloor
	if camera := v.CameraPosition(); camera.IsValid() && camera.Z > geom.SeaFloor {
		// Underground only the floors near the camera are visible.
		z = camera.Z + geom.AwareUndergroundFloorRange
	}

	if v.lockedFirstVisibleFloor != unlockedFloor {
		z = max(v.lockedFirstVisibleFloor, z)
	}
	return clampFloor(z)
}

// drawFloor composites the cached floors into the map pool, lowest first.
func (v *MapView) drawFloor() {
	canvas := v.backend.Use(v.mapPool, v.rectCache.Rect, v.rectCache.SrcRect)
	canvas.FillRect(v.rectDimension, color.Black)

	camera := v.CameraPosition()
	if !camera.IsValid() {
		return
	}

	var light LightLayer
	if v.lightsEnabled() {
		light = v.light
	}

	for z := v.floorMax; z >= v.floorMin; z-- {
		if light != nil {
			v.shadeFloorAbove(light, z, camera)
		}

		if v.hooks.OnFloorDrawingStart != nil {
			v.hooks.OnFloorDrawingStart(z)
		}

		if light != nil {
			light.SetFloor(z)
		}

		floor := &v.cachedVisibleTiles[z]
		for _, tile := range floor.Grounds {
			tile.DrawGround(canvas, v.TransformPositionTo2D(tile.Position(), camera), v.scaleFactor, UpdateAll, light)
		}
		for _, tile := range floor.Borders {
			tile.DrawGroundBorder(canvas, v.TransformPositionTo2D(tile.Position(), camera), v.scaleFactor, UpdateAll, light)
		}
		for _, tile := range floor.BottomTops {
			tile.Draw(canvas, v.TransformPositionTo2D(tile.Position(), camera), v.scaleFactor, UpdateAll, light)
		}

		for _, missile := range v.grid.FloorMissiles(z) {
			missile.Draw(canvas, v.TransformPositionTo2D(missile.Position(), camera), v.scaleFactor, UpdateAll, light)
		}

		if v.shadowFloorIntensity > 0 && z == camera.Z+1 {
			canvas.FillRect(v.rectDimension, color.Black)
			canvas.SetLastOpacity(v.shadowFloorIntensity)
		}

		if v.hooks.OnFloorDrawingEnd != nil {
			v.hooks.OnFloorDrawingEnd(z)
		}
	}

	if v.crosshair != nil && v.mousePosition.IsValid() {
		p := v.TransformPositionTo2D(v.mousePosition, camera)
		canvas.DrawTexture(geom.RectAt(p, geom.Square(v.tileSize)), v.crosshair)
	}
}

// shadeFloorAbove casts the opaque grounds of floor z-1 as shade onto the
// light layer before floor z is drawn.
func (v *MapView) shadeFloorAbove(light LightLayer, z int, camera geom.Position) {
	next := z - 1
	if next < v.floorMin {
		return
	}

	light.SetFloor(next)
	for _, tile := range v.cachedVisibleTiles[next].Grounds {
		if !tile.HasGround() || tile.IsGroundTranslucent() {
			continue
		}

		pos2D := v.TransformPositionTo2D(tile.Position(), camera)
		if tile.IsTopGround() {
			for _, pos := range tile.Position().TranslatedToDirections(geom.South, geom.East) {
				below := v.grid.Tile(pos)
				if below != nil && below.HasGround() && !below.IsTopGround() {
					light.SetShade(pos2D)
					break
				}
			}
			pos2D = pos2D.Sub(geom.Pt(v.tileSize, v.tileSize))
		}
		light.SetShade(pos2D)
	}
}

// TopTile returns the first clickable tile at the screen spot of pos,
// scanning from the highest cached floor down.
func (v *MapView) TopTile(pos geom.Position) Tile {
	if !pos.IsValid() {
		return nil
	}
	if !pos.CoveredUp(pos.Z - v.floorMin) {
		return nil
	}
	for z := v.floorMin; z <= v.floorMax; z++ {
		if tile := v.grid.Tile(pos); tile != nil && tile.IsClickable() {
			return tile
		}
		if !pos.CoveredDown(1) {
			break
		}
	}
	return nil
}

func clampFloor(z int) int {
	return min(max(z, 0), geom.MaxZ)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
