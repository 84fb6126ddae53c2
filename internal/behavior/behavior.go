package behavior

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/ranch/internal/geom"
	"github.com/udisondev/ranch/internal/model"
	"github.com/udisondev/ranch/internal/path"
)

// ErrUnknownKind is returned for an actor kind without a handler.
var ErrUnknownKind = errors.New("unknown actor kind")

type handler struct {
	tick  func(dt float64, a *model.Actor, cfg model.ActorConfig, ctx *Context)
	touch func(a *model.Actor, cfg model.ActorConfig, ctx *Context)
}

// handlers is the whole dispatch table, one entry per kind.
var handlers = map[model.ActorKind]handler{
	model.KindEgg:    {tick: tickEgg, touch: touchEgg},
	model.KindFood:   {tick: tickFood, touch: touchPlain},
	model.KindLobber: {tick: tickMonster, touch: touchMonster},
	model.KindRunner: {tick: tickMonster, touch: touchMonster},
}

func lookup(a *model.Actor) (handler, error) {
	h, ok := handlers[a.Kind]
	if !ok {
		return handler{}, fmt.Errorf("actor %s: %s: %w", a.ID, a.Kind, ErrUnknownKind)
	}
	return h, nil
}

// Tick advances one actor by elapsedMs, mutating it in place. Changes to
// other actors are collected on ctx as effects.
func Tick(elapsedMs float64, a *model.Actor, cfg model.ActorConfig, ctx *Context) error {
	h, err := lookup(a)
	if err != nil {
		return err
	}

	before := a.Action
	h.tick(elapsedMs, a, cfg, ctx)

	if a.Action != before && IsDebugEnabled() {
		slog.Debug("actor transition",
			"actor", a.ID,
			"kind", a.Kind,
			"from", before,
			"to", a.Action)
	}
	return nil
}

// Touch applies a player touch.
func Touch(a *model.Actor, cfg model.ActorConfig, ctx *Context) error {
	h, err := lookup(a)
	if err != nil {
		return err
	}
	h.touch(a, cfg, ctx)
	return nil
}

// WalkTo starts moving a towards dest with action, resuming then on
// arrival. A move is only started when a path exists both ways; otherwise
// the actor drops its path and falls into ActionUnknown. Reports whether the
// move started.
func WalkTo(a *model.Actor, cfg model.ActorConfig, ctx *Context, dest geom.Vector3, action, then model.ActorAction) bool {
	var chain *path.Segment
	if points := ctx.Nav.FindPath(a.Position, dest); points != nil {
		if ctx.Nav.FindPath(dest, a.Position) != nil {
			chain = path.Build(points, cfg.Speed)
		}
	}

	if chain == nil {
		slog.Warn("path pre-check failed",
			"actor", a.ID,
			"from", a.Position,
			"to", dest)
		a.Path = nil
		a.Target = ""
		enter(a, model.ActionUnknown, ctx)
		return false
	}

	a.Push(then)
	a.Path = chain
	if chain.Duration > 0 {
		a.Orientation = chain.Orient
	}
	a.Counter = 0
	a.SetAction(action)
	a.Dirty = true
	return true
}

// enter switches to action and arms its countdown.
func enter(a *model.Actor, action model.ActorAction, ctx *Context) {
	t := ctx.Tunables
	switch action {
	case model.ActionEating:
		a.Counter = t.EatMs
	case model.ActionSleeping:
		a.Counter = t.SleepMs
	case model.ActionWaiting:
		a.Counter = t.WaitMs
	case model.ActionUnknown:
		a.Counter = t.UnknownMs
	default:
		a.Counter = 0
	}
	a.SetAction(action)
}

// countdown consumes dt from the action counter and reports expiry.
func countdown(a *model.Actor, dt float64) bool {
	a.Counter -= dt
	if a.Counter <= 0 {
		a.Counter = 0
		return true
	}
	return false
}

func isFood(n Neighbor) bool {
	return n.Kind == model.KindFood
}

func isReadyEgg(n Neighbor) bool {
	return n.Kind == model.KindEgg && n.Action == model.ActionReadyToHatch
}
