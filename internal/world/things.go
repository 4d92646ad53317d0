package world

import "image/color"

// GroundType identifies the base surface of a tile.
type GroundType uint8

const (
	GroundNone      GroundType = iota // No floor; the tile only holds things
	GroundGrass                       // Default open ground
	GroundGrassLong                   // Tall grass
	GroundDirt                        // Packed earth path
	GroundSand                        // Beach / arid patches
	GroundWater                       // Shallow water, seen through
	GroundStone                       // Cave and mountain rock
	GroundWood                        // Interior wood floor
	GroundTile                        // Interior tile floor
	GroundGlass                       // Skylight, seen through
	GroundRoof                        // Roof slates, drawn over lower ground
	groundTypeCount                   // sentinel
)

func (g GroundType) String() string {
	switch g {
	case GroundNone:
		return "none"
	case GroundGrass:
		return "grass"
	case GroundGrassLong:
		return "long grass"
	case GroundDirt:
		return "dirt"
	case GroundSand:
		return "sand"
	case GroundWater:
		return "water"
	case GroundStone:
		return "stone"
	case GroundWood:
		return "wood"
	case GroundTile:
		return "tile"
	case GroundGlass:
		return "glass"
	case GroundRoof:
		return "roof"
	default:
		return "unknown"
	}
}

// groundTranslucent reports whether lower floors show through the ground.
func groundTranslucent(g GroundType) bool {
	return g == GroundWater || g == GroundGlass
}

// groundOnTop reports whether the ground is drawn over neighbouring lower
// ground, as roof edges are.
func groundOnTop(g GroundType) bool {
	return g == GroundRoof
}

// groundBorderPriority orders grounds for border bleeding: a ground with a
// higher priority draws a border onto its lower-priority neighbours.
func groundBorderPriority(g GroundType) int {
	switch g {
	case GroundWater:
		return 1
	case GroundSand:
		return 2
	case GroundDirt:
		return 3
	case GroundGrass:
		return 4
	case GroundGrassLong:
		return 5
	case GroundStone:
		return 6
	default:
		return 0
	}
}

// groundBaseColour returns the base colour for a ground type.
func groundBaseColour(g GroundType) color.RGBA {
	switch g {
	case GroundGrass:
		return color.RGBA{30, 48, 30, 255}
	case GroundGrassLong:
		return color.RGBA{34, 58, 28, 255}
	case GroundDirt:
		return color.RGBA{48, 42, 34, 255}
	case GroundSand:
		return color.RGBA{70, 65, 48, 255}
	case GroundWater:
		return color.RGBA{28, 38, 55, 200}
	case GroundStone:
		return color.RGBA{55, 52, 48, 255}
	case GroundWood:
		return color.RGBA{52, 40, 28, 255}
	case GroundTile:
		return color.RGBA{44, 40, 36, 255}
	case GroundGlass:
		return color.RGBA{120, 150, 170, 90}
	case GroundRoof:
		return color.RGBA{88, 40, 32, 255}
	default:
		return color.RGBA{30, 45, 30, 255}
	}
}

// ObjectType identifies an object sitting on a tile.
type ObjectType uint8

const (
	ObjectNone       ObjectType = iota // Empty slot
	ObjectWall                         // Structural wall
	ObjectWindow                       // Intact window, seen through
	ObjectDoor                         // Closed door
	ObjectDoorOpen                     // Open door
	ObjectPillar                       // Structural column
	ObjectTable                        // Furniture
	ObjectCrate                        // Wooden crate
	ObjectTreeTrunk                    // Tree base
	ObjectBush                         // Decorative bush
	ObjectTorch                        // Wall torch, emits light
	ObjectStairs                       // Stairs down
	objectTypeCount                    // sentinel
)

func (o ObjectType) String() string {
	switch o {
	case ObjectNone:
		return "none"
	case ObjectWall:
		return "wall"
	case ObjectWindow:
		return "window"
	case ObjectDoor:
		return "door"
	case ObjectDoorOpen:
		return "open door"
	case ObjectPillar:
		return "pillar"
	case ObjectTable:
		return "table"
	case ObjectCrate:
		return "crate"
	case ObjectTreeTrunk:
		return "tree"
	case ObjectBush:
		return "bush"
	case ObjectTorch:
		return "torch"
	case ObjectStairs:
		return "stairs"
	default:
		return "unknown"
	}
}

// objectOnBottom reports whether the object is part of the tile's structure
// and drawn beneath everything else on it.
func objectOnBottom(o ObjectType) bool {
	switch o {
	case ObjectWall, ObjectWindow, ObjectDoor, ObjectDoorOpen, ObjectPillar:
		return true
	default:
		return false
	}
}

// objectBlocksMovement returns true if the object is impassable.
func objectBlocksMovement(o ObjectType) bool {
	switch o {
	case ObjectWall, ObjectWindow, ObjectDoor, ObjectPillar,
		ObjectCrate, ObjectTreeTrunk:
		return true
	default:
		return false
	}
}

// objectBlocksProjectile returns true if the object fully blocks line of sight.
func objectBlocksProjectile(o ObjectType) bool {
	switch o {
	case ObjectWall, ObjectDoor, ObjectPillar, ObjectCrate, ObjectTreeTrunk:
		return true
	default:
		return false
	}
}

// objectLight returns the light an object emits.
func objectLight(o ObjectType) (intensity, colour uint8) {
	if o == ObjectTorch {
		return 4, 206
	}
	return 0, 0
}

// objectColour returns the draw colour and inset, in pixels at scale 1, for
// an object.
func objectColour(o ObjectType) (color.RGBA, int) {
	switch o {
	case ObjectWall:
		return color.RGBA{90, 86, 80, 255}, 0
	case ObjectWindow:
		return color.RGBA{140, 170, 190, 160}, 4
	case ObjectDoor:
		return color.RGBA{96, 64, 36, 255}, 2
	case ObjectDoorOpen:
		return color.RGBA{70, 48, 28, 255}, 12
	case ObjectPillar:
		return color.RGBA{110, 106, 100, 255}, 8
	case ObjectTable:
		return color.RGBA{104, 76, 48, 255}, 6
	case ObjectCrate:
		return color.RGBA{120, 90, 50, 255}, 4
	case ObjectTreeTrunk:
		return color.RGBA{20, 70, 24, 255}, 2
	case ObjectBush:
		return color.RGBA{40, 90, 36, 255}, 8
	case ObjectTorch:
		return color.RGBA{240, 180, 60, 255}, 12
	case ObjectStairs:
		return color.RGBA{24, 22, 20, 255}, 6
	default:
		return color.RGBA{}, 0
	}
}
