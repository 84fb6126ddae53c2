package behavior

import (
	"math/rand/v2"

	"github.com/udisondev/ranch/internal/geom"
	"github.com/udisondev/ranch/internal/model"
)

// Navigator answers path queries. *navmesh.Zoned implements it.
type Navigator interface {
	FindPath(src, dest geom.Vector3) []geom.Vector3
	RandomPositionFrom(pos geom.Vector3, maxDist float64) (geom.Vector3, bool)
}

// Neighbor is the pre-tick view of another actor. Handlers see only these
// snapshots, never live actors, so the order actors are ticked in does not
// leak into decisions.
type Neighbor struct {
	ID       string
	Kind     model.ActorKind
	Action   model.ActorAction
	Position geom.Vector3
}

// EffectKind tags an Effect.
type EffectKind int

const (
	// EffectSpawn creates an actor from ConfigID at Position.
	EffectSpawn EffectKind = iota
	// EffectConsume removes ActorID (eaten food).
	EffectConsume
)

// Effect is a change to other actors requested by a handler. The ranch
// applies effects after every actor has been ticked.
type Effect struct {
	Kind     EffectKind
	ActorID  string
	ConfigID string
	Position geom.Vector3
	Event    model.Event
}

// Context carries everything a handler may use besides its own actor.
type Context struct {
	Nav      Navigator
	Rand     *rand.Rand
	Tunables Tunables
	Others   []Neighbor

	effects []Effect
	// claimed holds food already taken this tick.
	claimed map[string]struct{}
}

// Effects returns effects collected so far.
func (c *Context) Effects() []Effect {
	return c.effects
}

func (c *Context) emit(e Effect) {
	c.effects = append(c.effects, e)
}

// claim reserves id for the caller. Only the first claim of an id in one
// context succeeds.
func (c *Context) claim(id string) bool {
	if _, taken := c.claimed[id]; taken {
		return false
	}
	if c.claimed == nil {
		c.claimed = make(map[string]struct{})
	}
	c.claimed[id] = struct{}{}
	return true
}

// nearest returns the closest neighbor accepted by match within radius.
func (c *Context) nearest(self *model.Actor, radius float64, match func(Neighbor) bool) (Neighbor, float64, bool) {
	var (
		best   Neighbor
		bestSq float64
		found  bool
	)
	limit := radius * radius
	for _, n := range c.Others {
		if n.ID == self.ID || !match(n) {
			continue
		}
		d := geom.DistanceToSquared(self.Position, n.Position)
		if d > limit || (found && d >= bestSq) {
			continue
		}
		best, bestSq, found = n, d, true
	}
	return best, bestSq, found
}

func (c *Context) neighbor(id string) (Neighbor, bool) {
	for _, n := range c.Others {
		if n.ID == id {
			return n, true
		}
	}
	return Neighbor{}, false
}

func (c *Context) roll(chance float64) bool {
	return c.Rand.Float64() < chance
}
