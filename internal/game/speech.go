package game

import (
	"math/rand"

	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/mapview"
	"github.com/Garsondee/mapview/internal/world"
)

// chatterCooldown is the minimum ticks between lines per creature (~8 seconds).
const chatterCooldown = 480

// chatterChance is the per-tick odds, 1 in n, that an idle creature speaks
// once its cooldown has passed.
const chatterChance = 240

// situation is what a creature's line reacts to.
type situation struct {
	lowHealth   bool
	underground bool
	indoor      bool
	walking     bool
}

func situationOf(g *world.Grid, c *world.Creature) situation {
	pos := c.Position()
	s := situation{
		lowHealth:   c.Health*4 < c.MaxHealth,
		underground: pos.Z > geom.SeaFloor,
		walking:     c.IsWalking(),
	}
	if t := g.At(pos); t != nil {
		s.indoor = t.Flags&world.TileFlagIndoor != 0
	}
	return s
}

// chatterLine picks a line and how loudly it is said for the situation.
func chatterLine(rng *rand.Rand, s situation) (string, mapview.MessageMode) {
	pick := func(lines ...string) string { return lines[rng.Intn(len(lines))] }
	switch {
	case s.lowHealth:
		return pick("Squeak! Help!", "Leave me alone!", "Run!"), mapview.MessageYell
	case s.underground:
		return pick("It's dark down here.", "Drip... drip...", "Who lit these torches?"), mapview.MessageWhisper
	case s.indoor:
		return pick("Nice and dry in here.", "Any crumbs on that table?", "Mind the door."), mapview.MessageSay
	case s.walking:
		return pick("Scurry scurry.", "Out of the way!", "Places to be."), mapview.MessageMonsterSay
	default:
		return pick("Squeak.", "*sniff sniff*", "Cheese?", "Nice weather."), mapview.MessageMonsterSay
	}
}

// chatter lets idle NPCs speak now and then.
func (g *Game) chatter() {
	for _, c := range g.npcs {
		if !c.IsAlive() || g.tick-g.lastLine[c] < chatterCooldown {
			continue
		}
		if g.rng.Intn(chatterChance) != 0 {
			continue
		}
		line, mode := chatterLine(g.rng, situationOf(g.grid, c))
		g.grid.Say(c, mode, line)
		g.lastLine[c] = g.tick
		g.events.Add(g.tick, c.Name, EventSpeech, line)
	}
}
