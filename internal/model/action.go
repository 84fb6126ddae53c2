package model

import "fmt"

// ActorAction is the behavior state of an actor.
type ActorAction int32

const (
	// ActionIdle - actor stands still and decides what to do next
	ActionIdle ActorAction = iota
	// ActionWaiting - short rest after waking up
	ActionWaiting
	// ActionHatching - egg was touched and is releasing its child
	ActionHatching
	// ActionWalking - moving along a path (wander or approach)
	ActionWalking
	// ActionSleepy - moving to a spot to fall asleep
	ActionSleepy
	// ActionSeekingFood - moving towards food
	ActionSeekingFood
	// ActionEating - consuming food, timed
	ActionEating
	// ActionSleeping - timed sleep
	ActionSleeping
	// ActionReadyToHatch - egg waits for a touch
	ActionReadyToHatch
	// ActionUnknown - recovery state after a failed move
	ActionUnknown
)

var actionNames = [...]string{
	ActionIdle:         "IDLE",
	ActionWaiting:      "WAITING",
	ActionHatching:     "HATCHING",
	ActionWalking:      "WALKING",
	ActionSleepy:       "SLEEPY",
	ActionSeekingFood:  "SEEKING_FOOD",
	ActionEating:       "EATING",
	ActionSleeping:     "SLEEPING",
	ActionReadyToHatch: "READY_TO_HATCH",
	ActionUnknown:      "UNKNOWN",
}

// String returns human-readable action name
func (a ActorAction) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "UNKNOWN"
	}
	return actionNames[a]
}

// InTransit reports whether the action walks a path.
// All three variants share the same segment advance.
func (a ActorAction) InTransit() bool {
	return a == ActionWalking || a == ActionSleepy || a == ActionSeekingFood
}

// MarshalText encodes the action by name.
func (a ActorAction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an action name.
func (a *ActorAction) UnmarshalText(text []byte) error {
	s := string(text)
	for i, name := range actionNames {
		if name == s {
			*a = ActorAction(i)
			return nil
		}
	}
	return fmt.Errorf("unknown actor action %q", s)
}
