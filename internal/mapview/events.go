package mapview

import "github.com/Garsondee/mapview/internal/geom"

// KeyboardModifiers is the modifier state carried by key events.
type KeyboardModifiers uint8

const (
	ModShift KeyboardModifiers = 1 << iota
	ModCtrl
	ModAlt
)

// TileOperation says how a tile's thing stack changed.
type TileOperation uint8

const (
	TileAdd TileOperation = iota
	TileRemove
	TileUpdate
)

// CreatureThing is implemented by things that are creatures. A tile update
// carrying one refreshes the creature list on the next rebuild.
type CreatureThing interface {
	IsCreature() bool
}

// OnMouseMove records the world tile under the mouse and moves the highlight
// there.
func (v *MapView) OnMouseMove(pos geom.Position) {
	v.mousePosition = pos
	v.onMouseMove(pos, false)
}

// onMouseMove moves the highlight. virtual is set when the camera moved under
// a still mouse.
func (v *MapView) onMouseMove(pos geom.Position, virtual bool) {
	if v.lastHighlightTile != nil {
		if h, ok := v.lastHighlightTile.(Highlighter); ok {
			h.Unselect()
		}
		v.lastHighlightTile = nil
	}

	if !v.drawHighlightTarget || !pos.IsValid() {
		return
	}

	var tile Tile
	if v.shiftPressed {
		tile = v.TopTile(pos)
	} else {
		tile = v.grid.Tile(pos)
	}
	if tile == nil {
		return
	}

	v.lastHighlightTile = tile
	if h, ok := tile.(Highlighter); ok {
		h.Select(v.shiftPressed)
	}
	if virtual {
		v.log.Debug("highlight followed camera", "mouse", pos.String())
	}
}

// HighlightedTile returns the tile under the mouse highlight, if any.
func (v *MapView) HighlightedTile() Tile { return v.lastHighlightTile }

// OnKeyRelease re-evaluates the highlight when shift changes.
func (v *MapView) OnKeyRelease(mods KeyboardModifiers) {
	shift := mods == ModShift
	if shift != v.shiftPressed {
		v.shiftPressed = shift
		v.onMouseMove(v.mousePosition, false)
	}
}

// OnTileUpdate must be called whenever a thing is added to, removed from or
// changed on a tile.
func (v *MapView) OnTileUpdate(pos geom.Position, thing any, op TileOperation) {
	if c, ok := thing.(CreatureThing); ok && c.IsCreature() {
		v.mustUpdateVisibleCreatures = true
	}
	v.RequestVisibleTilesCacheUpdate()
}

// OnMapCenterChange must be called when the world recenters.
func (v *MapView) OnMapCenterChange(geom.Position) {
	v.RequestVisibleTilesCacheUpdate()
}

// OnGlobalLightChange must be called when the world light changes.
func (v *MapView) OnGlobalLightChange(Light) {
	v.updateLight()
}
