package mapview

import "github.com/Garsondee/mapview/internal/geom"

// RequestVisibleTilesCacheUpdate marks the visibility cache stale. The
// rebuild happens on the next Draw, once, however many requests arrive.
func (v *MapView) RequestVisibleTilesCacheUpdate() {
	v.mustUpdateVisibleTilesCache = true
}

// NeedsVisibleTilesCacheUpdate reports whether the next Draw will rebuild.
func (v *MapView) NeedsVisibleTilesCacheUpdate() bool {
	return v.mustUpdateVisibleTilesCache
}

// RequestVisibleCreaturesCacheUpdate makes the next rebuild recollect the
// on-screen creatures.
func (v *MapView) RequestVisibleCreaturesCacheUpdate() {
	v.mustUpdateVisibleCreatures = true
	v.mustUpdateVisibleTilesCache = true
}

// updateVisibleTilesCache rebuilds the per-floor draw lists. It does nothing
// while the camera is invalid; the cache stays dirty until it becomes valid.
func (v *MapView) updateVisibleTilesCache() {
	if v.rebuilding {
		v.log.Warn("visible tiles rebuild requested from inside a rebuild")
		return
	}

	camera := v.CameraPosition()
	if !camera.IsValid() || camera.Z < 0 || camera.Z > geom.MaxZ {
		return
	}

	v.rebuilding = true
	defer func() { v.rebuilding = false }()
	start := v.now()

	v.mustUpdateVisibleTilesCache = false

	if v.lastCameraPosition != camera {
		v.handleCameraChange(camera)
	}

	first := v.calcFirstVisibleFloor()
	last := v.calcLastVisibleFloor()
	if last < first {
		last = first
	}

	v.lastCameraPosition = camera
	v.cachedFirstVisibleFloor = first
	v.cachedLastVisibleFloor = last

	for z := v.floorMin; z <= v.floorMax; z++ {
		v.cachedVisibleTiles[z].clear()
	}
	v.floorMin, v.floorMax = camera.Z, camera.Z

	collectCreatures := v.mustUpdateVisibleCreatures
	if collectCreatures {
		v.visibleCreatures = v.visibleCreatures[:0]
	}

	culled := 0
	w, h := v.drawDimension.W, v.drawDimension.H
	numDiagonals := w + h - 1

	// Back to front: the lowest floor first, the highest last.
	for iz := last; iz >= first; iz-- {
		floor := &v.cachedVisibleTiles[iz]

		// Anti-diagonals from the top-left corner toward the bottom-right.
		for diagonal := 0; diagonal < numDiagonals; diagonal++ {
			ix := max(diagonal-(h-1), 0)
			for iy := diagonal - ix; iy >= 0 && ix < w; iy, ix = iy-1, ix+1 {
				tilePos := camera.Translated(ix-v.virtualCenterOffset.X, iy-v.virtualCenterOffset.Y, 0)
				if !tilePos.CoveredUp(camera.Z - iz) {
					continue
				}

				tile := v.grid.Tile(tilePos)
				if tile == nil || !tile.IsDrawable() {
					continue
				}

				if collectCreatures && v.IsInRange(tilePos, false) {
					creatures := tile.Creatures()
					for i := len(creatures) - 1; i >= 0; i-- {
						v.visibleCreatures = append(v.visibleCreatures, creatures[i])
					}
				}

				// Hidden behind tiles above and not lighting anything.
				if tile.IsCompletelyCovered(first) && !tile.HasLight() {
					culled++
					continue
				}

				if tile.HasGround() {
					floor.Grounds = append(floor.Grounds, tile)
				}
				if tile.HasGroundBorderToDraw() {
					floor.Borders = append(floor.Borders, tile)
				}
				if tile.HasBottomOrTopToDraw() {
					floor.BottomTops = append(floor.BottomTops, tile)
				}

				if sink, ok := tile.(TileSink); ok {
					sink.OnAddVisibleTile(v)
				}

				if iz < v.floorMin {
					v.floorMin = iz
				} else if iz > v.floorMax {
					v.floorMax = iz
				}
			}
		}
	}

	v.mustUpdateVisibleCreatures = false

	stats := v.rebuildStats(camera, culled)
	stats.Duration = v.now().Sub(start)
	v.log.Debug("visible tiles rebuilt",
		"camera", camera.String(), "first", first, "last", last,
		"floor_min", v.floorMin, "floor_max", v.floorMax,
		"grounds", stats.Grounds, "culled", culled, "duration", stats.Duration)
	if v.observer != nil {
		v.observer.ObserveRebuild(stats)
	}
}

// handleCameraChange reacts to the camera landing on a new tile: the mouse
// tile follows the camera and a floor change refreshes creatures and light.
func (v *MapView) handleCameraChange(camera geom.Position) {
	last := v.lastCameraPosition
	if v.mousePosition.IsValid() && last.IsValid() {
		if camera.Z == last.Z {
			v.mousePosition = v.mousePosition.TranslatedToDirection(last.DirectionTo(camera))
		} else {
			v.mousePosition.Z += camera.Z - last.Z
		}
		v.onMouseMove(v.mousePosition, true)
	}

	if last.Z != camera.Z {
		v.onFloorChange()
	}
}

func (v *MapView) onFloorChange() {
	v.mustUpdateVisibleCreatures = true
	v.updateLight()
}

func (v *MapView) rebuildStats(camera geom.Position, culled int) RebuildStats {
	s := RebuildStats{
		Camera:     camera,
		FirstFloor: v.cachedFirstVisibleFloor,
		LastFloor:  v.cachedLastVisibleFloor,
		FloorMin:   v.floorMin,
		FloorMax:   v.floorMax,
		Creatures:  len(v.visibleCreatures),
		Culled:     culled,
	}
	for z := v.floorMin; z <= v.floorMax; z++ {
		f := &v.cachedVisibleTiles[z]
		s.Grounds += len(f.Grounds)
		s.Borders += len(f.Borders)
		s.BottomTops += len(f.BottomTops)
	}
	return s
}
