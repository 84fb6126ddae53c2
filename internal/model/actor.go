package model

import (
	"github.com/google/uuid"

	"github.com/udisondev/ranch/internal/geom"
	"github.com/udisondev/ranch/internal/path"
)

// Event is a one-shot notification attached to the next published update.
type Event string

const (
	EventNone    Event = ""
	EventSpawned Event = "spawned"
	EventHatched Event = "hatched"
	EventAte     Event = "ate"
	EventTouched Event = "touched"
)

// Actor is the authoritative state of one ranch inhabitant. It is owned by
// its ranch and mutated only by the tick and by player actions.
type Actor struct {
	ID       string
	ConfigID string
	Kind     ActorKind

	HP          float64
	Hunger      float64
	Position    geom.Vector3
	Orientation float64
	Scale       float64

	Action ActorAction
	// Counter is the countdown of timed actions, milliseconds.
	Counter float64
	// Stack holds actions to resume once the current one completes.
	Stack []ActorAction
	Path  *path.Segment
	// Target is the id of the actor being approached (food or egg).
	Target string

	Event Event
	Dirty bool
}

// NewActor spawns an actor from cfg at pos with a random id. Ranches
// replace the id with one from their own seeded stream.
func NewActor(cfg ActorConfig, pos geom.Vector3) *Actor {
	scale := cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	return &Actor{
		ID:       uuid.New().String(),
		ConfigID: cfg.ID,
		Kind:     cfg.Kind,
		HP:       cfg.MaxHP,
		Position: pos,
		Scale:    scale,
		Action:   ActionIdle,
		Event:    EventSpawned,
		Dirty:    true,
	}
}

// Alive reports whether the actor stays in the ranch.
func (a *Actor) Alive() bool {
	return a.HP > 0
}

// SetAction switches the action and marks the actor for publishing.
func (a *Actor) SetAction(action ActorAction) {
	if a.Action != action {
		a.Action = action
		a.Dirty = true
	}
}

// Push saves an action to resume later.
func (a *Actor) Push(action ActorAction) {
	a.Stack = append(a.Stack, action)
}

// Pop returns the most recently pushed action, Idle when nothing is saved.
func (a *Actor) Pop() ActorAction {
	if len(a.Stack) == 0 {
		return ActionIdle
	}
	action := a.Stack[len(a.Stack)-1]
	a.Stack = a.Stack[:len(a.Stack)-1]
	return action
}

// Emit attaches a one-shot event.
func (a *Actor) Emit(e Event) {
	a.Event = e
	a.Dirty = true
}

// Clone deep-copies the actor, path chain included.
func (a *Actor) Clone() *Actor {
	c := *a
	c.Stack = append([]ActorAction(nil), a.Stack...)
	c.Path = path.Clone(a.Path)
	return &c
}

// ActorUpdate is the public projection of an Actor sent to viewers.
type ActorUpdate struct {
	ID          string       `json:"id"`
	ConfigID    string       `json:"configId"`
	Kind        ActorKind    `json:"kind"`
	Position    geom.Vector3 `json:"position"`
	Orientation float64      `json:"orientation"`
	Scale       float64      `json:"scale"`
	Action      ActorAction  `json:"action"`
	Event       Event        `json:"event,omitempty"`
	Path        []path.State `json:"path,omitempty"`
	Removed     bool         `json:"removed,omitempty"`
}

// Update derives the public projection.
func (a *Actor) Update() ActorUpdate {
	return ActorUpdate{
		ID:          a.ID,
		ConfigID:    a.ConfigID,
		Kind:        a.Kind,
		Position:    a.Position,
		Orientation: a.Orientation,
		Scale:       a.Scale,
		Action:      a.Action,
		Event:       a.Event,
		Path:        path.Encode(a.Path),
		Removed:     !a.Alive(),
	}
}
