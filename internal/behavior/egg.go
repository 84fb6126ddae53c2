package behavior

import "github.com/udisondev/ranch/internal/model"

func tickEgg(dt float64, a *model.Actor, cfg model.ActorConfig, _ *Context) {
	secs := dt / 1000

	switch a.Action {
	case model.ActionIdle:
		a.HP -= cfg.HatchRate * secs
		if a.HP <= cfg.HatchThreshold {
			a.HP = cfg.HatchThreshold
			a.SetAction(model.ActionReadyToHatch)
		}

	case model.ActionReadyToHatch:
		// waits for a touch

	case model.ActionHatching:
		a.HP -= cfg.DecayRate * secs

	default:
		a.SetAction(model.ActionIdle)
	}
}

func touchEgg(a *model.Actor, cfg model.ActorConfig, ctx *Context) {
	if a.Action != model.ActionReadyToHatch {
		a.Emit(model.EventTouched)
		return
	}

	a.SetAction(model.ActionHatching)
	a.Emit(model.EventHatched)
	ctx.emit(Effect{
		Kind:     EffectSpawn,
		ConfigID: cfg.Child,
		Position: a.Position,
		Event:    model.EventHatched,
	})
}

func tickFood(dt float64, a *model.Actor, cfg model.ActorConfig, _ *Context) {
	a.HP -= cfg.DecayRate * dt / 1000
}

func touchPlain(a *model.Actor, _ model.ActorConfig, _ *Context) {
	a.Emit(model.EventTouched)
}
