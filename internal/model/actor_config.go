package model

import (
	"errors"
	"fmt"
)

// ErrInvalidActorConfig is returned by Validate.
var ErrInvalidActorConfig = errors.New("invalid actor config")

// ActorConfig is the static template an actor is spawned from. Rates are
// per second.
type ActorConfig struct {
	ID    string    `yaml:"id" json:"id"`
	Kind  ActorKind `yaml:"kind" json:"kind"`
	MaxHP float64   `yaml:"max_hp" json:"maxHp"`
	Scale float64   `yaml:"scale" json:"scale"`

	// Monster
	Speed           float64 `yaml:"speed" json:"speed,omitempty"`
	HungerRate      float64 `yaml:"hunger_rate" json:"hungerRate,omitempty"`
	HungerThreshold float64 `yaml:"hunger_threshold" json:"hungerThreshold,omitempty"`
	StarveThreshold float64 `yaml:"starve_threshold" json:"starveThreshold,omitempty"`
	StarveRate      float64 `yaml:"starve_rate" json:"starveRate,omitempty"`
	Growth          float64 `yaml:"growth" json:"growth,omitempty"`
	MaxScale        float64 `yaml:"max_scale" json:"maxScale,omitempty"`

	// Egg: hp counts down at HatchRate until HatchThreshold, then the egg
	// waits for a touch and releases Child.
	HatchRate      float64 `yaml:"hatch_rate" json:"hatchRate,omitempty"`
	HatchThreshold float64 `yaml:"hatch_threshold" json:"hatchThreshold,omitempty"`
	Child          string  `yaml:"child" json:"child,omitempty"`

	// Food, and eggs after hatching.
	DecayRate float64 `yaml:"decay_rate" json:"decayRate,omitempty"`
}

// Validate checks the fields the behavior of c.Kind depends on.
func (c ActorConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("empty id: %w", ErrInvalidActorConfig)
	}
	if c.MaxHP <= 0 {
		return fmt.Errorf("config %q: max_hp must be positive: %w", c.ID, ErrInvalidActorConfig)
	}

	switch {
	case c.Kind.IsMonster():
		if c.Speed <= 0 {
			return fmt.Errorf("config %q: speed must be positive: %w", c.ID, ErrInvalidActorConfig)
		}
	case c.Kind == KindEgg:
		if c.Child == "" {
			return fmt.Errorf("config %q: egg without child: %w", c.ID, ErrInvalidActorConfig)
		}
		if c.HatchThreshold <= 0 || c.HatchThreshold >= c.MaxHP {
			return fmt.Errorf("config %q: hatch_threshold out of range: %w", c.ID, ErrInvalidActorConfig)
		}
	case c.Kind == KindFood:
	default:
		return fmt.Errorf("config %q: kind %s: %w", c.ID, c.Kind, ErrInvalidActorConfig)
	}
	return nil
}

// DefaultActorConfigs returns the built-in actor table.
func DefaultActorConfigs() []ActorConfig {
	return []ActorConfig{
		{
			ID:             "egg",
			Kind:           KindEgg,
			MaxHP:          100,
			Scale:          1,
			HatchRate:      2,
			HatchThreshold: 20,
			Child:          "lobber",
			DecayRate:      50,
		},
		{
			ID:              "lobber",
			Kind:            KindLobber,
			MaxHP:           100,
			Scale:           1,
			Speed:           2,
			HungerRate:      1,
			HungerThreshold: 60,
			StarveThreshold: 100,
			StarveRate:      0.5,
			Growth:          0.1,
			MaxScale:        2,
		},
		{
			ID:              "runner",
			Kind:            KindRunner,
			MaxHP:           80,
			Scale:           0.8,
			Speed:           3,
			HungerRate:      1.5,
			HungerThreshold: 60,
			StarveThreshold: 100,
			StarveRate:      0.5,
			Growth:          0.05,
			MaxScale:        1.5,
		},
		{
			ID:        "food",
			Kind:      KindFood,
			MaxHP:     100,
			Scale:     1,
			DecayRate: 0.5,
		},
	}
}
