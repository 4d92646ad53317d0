package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
	"github.com/Garsondee/mapview/internal/world"
)

// missileRange is how many tiles ahead Space throws.
const missileRange = 4

// keyDirection combines the held arrow keys into a walk direction.
func keyDirection(up, down, left, right bool) geom.Direction {
	if up && down {
		up, down = false, false
	}
	if left && right {
		left, right = false, false
	}
	switch {
	case up && right:
		return geom.NorthEast
	case up && left:
		return geom.NorthWest
	case down && right:
		return geom.SouthEast
	case down && left:
		return geom.SouthWest
	case up:
		return geom.North
	case down:
		return geom.South
	case left:
		return geom.West
	case right:
		return geom.East
	default:
		return geom.InvalidDirection
	}
}

// zoomDimension grows or shrinks the visible tiles by steps on each side,
// keeping both edges odd. Shrinking stops at 3x3.
func zoomDimension(cur geom.Size, steps int) geom.Size {
	next := cur.Add(geom.Square(2 * steps))
	if next.W < 3 || next.H < 3 {
		d := min(cur.W, cur.H) - 3
		return cur.Sub(geom.Square(d))
	}
	return next
}

func nextViewMode(m mapview.ViewMode) mapview.ViewMode {
	return (m + 1) % (mapview.HugeView + 1)
}

// stairsTarget returns where using the stairs at or above pos leads.
func stairsTarget(g *world.Grid, pos geom.Position) (geom.Position, bool) {
	if t := g.At(pos); t != nil && t.TopObject() == world.ObjectStairs {
		down := pos.Translated(0, 0, 1)
		if d := g.At(down); d != nil && d.IsWalkable() {
			return down, true
		}
	}
	up := pos.Translated(0, 0, -1)
	if t := g.At(up); t != nil && t.TopObject() == world.ObjectStairs && t.IsWalkable() {
		return up, true
	}
	return geom.InvalidPosition, false
}

func currentModifiers() mapview.KeyboardModifiers {
	var m mapview.KeyboardModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= mapview.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= mapview.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= mapview.ModAlt
	}
	return m
}

func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}

	// Walk: WASD or arrow keys, two at once for diagonals.
	dir := keyDirection(
		ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight),
	)
	if dir != geom.InvalidDirection && !g.player.IsWalking() {
		err := g.grid.Walk(g.player, dir)
		switch {
		case err == nil:
			g.bumped = geom.InvalidDirection
		case errors.Is(err, world.ErrBlocked) && g.bumped != dir:
			// Once per bump, not every tick the key is held.
			g.bumped = dir
			g.events.Add(g.tick, "you", EventWarn, "blocked to the "+dir.String())
		}
	}

	// Modifier changes re-evaluate the highlight (shift selects top tiles).
	if mods := currentModifiers(); mods != g.mods {
		g.mods = mods
		g.view.OnKeyRelease(mods)
	}

	// Mouse: track the tile under the cursor.
	mx, my := ebiten.CursorPosition()
	pos := geom.InvalidPosition
	if p := geom.Pt(mx, my); g.mapRect.Contains(p) {
		pos = g.view.Position(p.Sub(g.mapRect.TopLeft()), g.mapRect.Size())
	}
	if pos != g.mousePos {
		g.mousePos = pos
		g.view.OnMouseMove(pos)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.inspect(pos)
	}

	// Zoom: mouse wheel or =/- keys.
	steps := 0
	if _, wy := ebiten.Wheel(); wy > 0 {
		steps--
	} else if wy < 0 {
		steps++
	}
	if pressed(ebiten.KeyEqual) {
		steps--
	}
	if pressed(ebiten.KeyMinus) {
		steps++
	}
	if steps != 0 {
		g.view.SetVisibleDimension(zoomDimension(g.view.VisibleDimension(), steps))
	}

	if pressed(ebiten.KeyV) {
		g.view.SetViewMode(nextViewMode(g.view.ViewMode()))
		g.events.Add(g.tick, "view", EventInfo, "mode "+g.view.ViewMode().String())
	}
	if pressed(ebiten.KeyM) {
		g.view.SetAutoViewMode(!g.view.IsAutoViewMode())
		g.events.Add(g.tick, "view", EventInfo, fmt.Sprintf("auto view mode %v", g.view.IsAutoViewMode()))
	}
	if pressed(ebiten.KeyL) {
		g.view.SetDrawLights(!g.view.DrawLights())
	}
	if pressed(ebiten.KeyN) && len(g.shaderNames) > 0 {
		g.shaderIdx = (g.shaderIdx + 1) % len(g.shaderNames)
		name := g.shaderNames[g.shaderIdx]
		g.view.SetShader(g.shaders[name], g.fadeIn, g.fadeOut)
		g.events.Add(g.tick, "view", EventInfo, "shader "+name)
	}
	if pressed(ebiten.KeyF) {
		g.toggleFloorLock()
	}
	if pressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if pressed(ebiten.KeyC) {
		g.copyMousePosition()
	}
	if pressed(ebiten.KeyT) {
		g.grid.Say(g.player, mapview.MessageSay, "Hello there!")
		g.events.Add(g.tick, g.player.Name, EventSpeech, "Hello there!")
	}
	if pressed(ebiten.KeyEnter) {
		g.useStairs()
	}
	if pressed(ebiten.KeySpace) {
		g.throw()
	}

	g.prevKeys = currentKeys
}

func (g *Game) toggleFloorLock() {
	if g.view.LockedFirstVisibleFloor() >= 0 {
		g.view.UnlockFirstVisibleFloor()
		g.events.Add(g.tick, "view", EventInfo, "floors unlocked")
		return
	}
	z := g.view.CameraPosition().Z
	g.view.LockFirstVisibleFloor(z)
	g.events.Add(g.tick, "view", EventInfo, fmt.Sprintf("first floor locked at %d", z))
}

func (g *Game) copyMousePosition() {
	if !g.mousePos.IsValid() {
		return
	}
	text := fmt.Sprintf("%d, %d, %d", g.mousePos.X, g.mousePos.Y, g.mousePos.Z)
	if err := clipboard.WriteAll(text); err != nil {
		g.log.Warn("clipboard write failed", "error", err)
		g.events.Add(g.tick, "clipboard", EventWarn, err.Error())
		return
	}
	g.events.Add(g.tick, "clipboard", EventInfo, "copied "+text)
}

func (g *Game) useStairs() {
	to, ok := stairsTarget(g.grid, g.player.Position())
	if !ok {
		return
	}
	if err := g.grid.MoveCreature(g.player, to); err != nil {
		g.events.Add(g.tick, "you", EventWarn, err.Error())
		return
	}
	g.events.Add(g.tick, "you", EventInfo, fmt.Sprintf("took the stairs to floor %d", to.Z))
}

// throw sends a stone ahead of the player and shows the damage it does.
// Walls stop it early.
func (g *Game) throw() {
	from := g.player.Position()
	to, steps := g.grid.ProjectileEnd(from, g.player.Direction(), missileRange)
	if steps < missileRange {
		g.events.Add(g.tick, "you", EventInfo, fmt.Sprintf("stone hit something after %d tiles", steps))
	}
	g.grid.AddMissile(world.NewMissile(from, to, time.Duration(max(steps, 1))*80*time.Millisecond))
	g.grid.ShowAnimatedText(to, fmt.Sprintf("-%d", 5+g.rng.Intn(10)), 180)
}
