package behavior

import (
	"github.com/udisondev/ranch/internal/geom"
	"github.com/udisondev/ranch/internal/model"
	"github.com/udisondev/ranch/internal/path"
)

func tickMonster(dt float64, a *model.Actor, cfg model.ActorConfig, ctx *Context) {
	secs := dt / 1000
	a.Hunger += cfg.HungerRate * secs
	if cfg.StarveThreshold > 0 && a.Hunger >= cfg.StarveThreshold {
		a.HP -= cfg.StarveRate * secs
		if !a.Alive() {
			a.Dirty = true
			return
		}
	}

	switch a.Action {
	case model.ActionIdle:
		monsterIdle(a, cfg, ctx)

	case model.ActionWalking, model.ActionSleepy, model.ActionSeekingFood:
		advance(dt, a, ctx)

	case model.ActionEating:
		if countdown(a, dt) {
			finishEating(a, cfg, ctx)
		}

	case model.ActionSleeping:
		if countdown(a, dt) {
			enter(a, model.ActionWaiting, ctx)
		}

	case model.ActionWaiting:
		if countdown(a, dt) {
			enter(a, model.ActionIdle, ctx)
		}

	case model.ActionUnknown:
		if countdown(a, dt) {
			resume(a, ctx)
		}

	default:
		// egg states, nothing to resume
		a.Stack = nil
		enter(a, model.ActionIdle, ctx)
	}
}

func monsterIdle(a *model.Actor, cfg model.ActorConfig, ctx *Context) {
	t := ctx.Tunables
	reach := t.InteractDistance * t.InteractDistance

	if a.Hunger >= cfg.HungerThreshold {
		if food, dSq, ok := ctx.nearest(a, t.FoodSearchRadius, isFood); ok {
			if dSq <= reach {
				startEating(a, food, ctx)
				return
			}
			if WalkTo(a, cfg, ctx, food.Position, model.ActionSeekingFood, model.ActionEating) {
				a.Target = food.ID
			}
			return
		}
	}

	if egg, dSq, ok := ctx.nearest(a, t.EggSearchRadius, isReadyEgg); ok && dSq > reach {
		if WalkTo(a, cfg, ctx, egg.Position, model.ActionWalking, model.ActionIdle) {
			a.Target = egg.ID
		}
		return
	}

	if ctx.roll(t.WanderChance) {
		if dest, ok := ctx.Nav.RandomPositionFrom(a.Position, t.WanderRadius); ok {
			WalkTo(a, cfg, ctx, dest, model.ActionWalking, model.ActionIdle)
		}
	}
}

// advance walks the current chain and resumes the saved action at its end.
func advance(dt float64, a *model.Actor, ctx *Context) {
	if a.Path == nil {
		resume(a, ctx)
		return
	}

	p := path.Advance(a.Path, dt)
	a.Position = p.Position
	a.Orientation = p.Orient
	a.Dirty = true
	if !p.Done {
		a.Path = p.Segment
		return
	}

	a.Path = nil
	resume(a, ctx)
}

// resume pops the state-return stack. A pending meal is only resumed when
// the food is still there.
func resume(a *model.Actor, ctx *Context) {
	next := a.Pop()
	if next != model.ActionEating {
		a.Target = ""
		enter(a, next, ctx)
		return
	}

	t := ctx.Tunables
	food, ok := ctx.neighbor(a.Target)
	if !ok || !isFood(food) || geom.DistanceToSquared(a.Position, food.Position) > t.InteractDistance*t.InteractDistance {
		a.Target = ""
		enter(a, model.ActionIdle, ctx)
		return
	}
	if !startEating(a, food, ctx) {
		a.Target = ""
		enter(a, model.ActionIdle, ctx)
	}
}

// startEating consumes food unless another actor already took it this tick.
// Reports whether the meal started.
func startEating(a *model.Actor, food Neighbor, ctx *Context) bool {
	if !ctx.claim(food.ID) {
		return false
	}
	a.Target = food.ID
	if !geom.Equal(a.Position, food.Position) {
		a.Orientation = a.Position.Heading(food.Position)
	}
	ctx.emit(Effect{Kind: EffectConsume, ActorID: food.ID})
	enter(a, model.ActionEating, ctx)
	a.Emit(model.EventAte)
	return true
}

func finishEating(a *model.Actor, cfg model.ActorConfig, ctx *Context) {
	t := ctx.Tunables
	a.Hunger = 0
	a.Target = ""
	a.Scale += cfg.Growth
	if cfg.MaxScale > 0 && a.Scale > cfg.MaxScale {
		a.Scale = cfg.MaxScale
	}
	a.Dirty = true

	if ctx.roll(t.WalkBeforeSleepChance) {
		if dest, ok := ctx.Nav.RandomPositionFrom(a.Position, t.WanderRadius); ok {
			WalkTo(a, cfg, ctx, dest, model.ActionSleepy, model.ActionSleeping)
			return
		}
	}
	enter(a, model.ActionSleeping, ctx)
}

func touchMonster(a *model.Actor, _ model.ActorConfig, ctx *Context) {
	a.Emit(model.EventTouched)
	if a.Action == model.ActionSleeping {
		enter(a, model.ActionWaiting, ctx)
	}
}
