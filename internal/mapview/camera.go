package mapview

import "github.com/Garsondee/mapview/internal/geom"

// CameraPosition returns the followed creature's live position, or the fixed
// camera position. A followed creature that is gone yields
// geom.InvalidPosition.
func (v *MapView) CameraPosition() geom.Position {
	if v.follow {
		if v.followingCreature == nil || !v.followingCreature.IsAlive() {
			return geom.InvalidPosition
		}
		return v.followingCreature.Position()
	}
	return v.customCameraPosition
}

// IsFollowingCreature reports whether the camera tracks a live creature.
func (v *MapView) IsFollowingCreature() bool {
	return v.follow && v.followingCreature != nil && v.followingCreature.IsAlive()
}

// FollowingCreature returns the creature the camera follows, if any.
func (v *MapView) FollowingCreature() Creature {
	if !v.follow {
		return nil
	}
	return v.followingCreature
}

// FollowCreature attaches the camera to c. The next frame where c's position
// is known runs a full rebuild and light update.
func (v *MapView) FollowCreature(c Creature) {
	v.follow = true
	v.followingCreature = c
	v.lastCameraPosition = geom.InvalidPosition
	v.RequestVisibleTilesCacheUpdate()
}

// SetCameraPosition fixes the camera at pos and stops following.
func (v *MapView) SetCameraPosition(pos geom.Position) {
	if v.follow {
		v.lastCameraPosition = geom.InvalidPosition
	}
	v.follow = false
	v.followingCreature = nil
	v.customCameraPosition = pos
	v.RequestVisibleTilesCacheUpdate()
}

// Move pans a fixed camera by (x, y) pixels. Whole tiles are committed to
// the camera position; the remainder carries over as a sub-tile offset.
func (v *MapView) Move(x, y int) {
	v.moveOffset.X += x
	v.moveOffset.Y += y

	requestTilesUpdate := false
	if tiles := v.moveOffset.X / geom.TilePixels; tiles != 0 {
		v.customCameraPosition.X += tiles
		v.moveOffset.X %= geom.TilePixels
		requestTilesUpdate = true
	}
	if tiles := v.moveOffset.Y / geom.TilePixels; tiles != 0 {
		v.customCameraPosition.Y += tiles
		v.moveOffset.Y %= geom.TilePixels
		requestTilesUpdate = true
	}

	v.rectCache.Rect = geom.Rect{}
	if requestTilesUpdate {
		v.RequestVisibleTilesCacheUpdate()
	}
	v.onCameraMove(v.moveOffset)
}

// MoveOffset returns the uncommitted sub-tile pan offset.
func (v *MapView) MoveOffset() geom.Point { return v.moveOffset }

// OnCameraMove must be called when the followed creature's walk offset
// changes so the presented region follows it.
func (v *MapView) OnCameraMove(offset geom.Point) {
	v.onCameraMove(offset)
}

// OnCreatureWalk must be called when a creature's walk offset changes. Only
// the followed creature moves the camera; other walkers are drawn from their
// live offset and need nothing here.
func (v *MapView) OnCreatureWalk(c Creature, offset geom.Point) {
	if v.IsFollowingCreature() && v.followingCreature == c {
		v.onCameraMove(offset)
	}
}

func (v *MapView) onCameraMove(geom.Point) {
	v.rectCache.Rect = geom.Rect{}

	if v.IsFollowingCreature() {
		dir := v.followingCreature.Direction()
		if !v.followingCreature.IsWalking() || dir > geom.InvalidDirection {
			dir = geom.InvalidDirection
		}
		v.viewport = v.viewportDirection[dir]
	}
}

// Spectators returns the creatures inside the aware range around center.
func (v *MapView) Spectators(center geom.Position, multiFloor bool) []Creature {
	a := v.awareRange
	return v.grid.SpectatorsInRange(center, multiFloor, a.Left, a.Right, a.Top, a.Bottom)
}

// SightSpectators is Spectators shrunk to the tiles actually on screen.
func (v *MapView) SightSpectators(center geom.Position, multiFloor bool) []Creature {
	a := v.awareRange
	return v.grid.SpectatorsInRange(center, multiFloor, a.Left-1, a.Right-2, a.Top-1, a.Bottom-2)
}

// IsInRange reports whether pos is on screen around the camera.
func (v *MapView) IsInRange(pos geom.Position, ignoreZ bool) bool {
	a := v.awareRange
	return v.CameraPosition().IsInRange(pos, a.Left-1, a.Right-2, a.Top-1, a.Bottom-2, ignoreZ)
}
