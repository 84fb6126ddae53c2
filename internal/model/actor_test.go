package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/ranch/internal/geom"
	"github.com/udisondev/ranch/internal/path"
)

func TestActorActionString(t *testing.T) {
	tests := []struct {
		action ActorAction
		want   string
	}{
		{ActionIdle, "IDLE"},
		{ActionWaiting, "WAITING"},
		{ActionHatching, "HATCHING"},
		{ActionWalking, "WALKING"},
		{ActionSleepy, "SLEEPY"},
		{ActionSeekingFood, "SEEKING_FOOD"},
		{ActionEating, "EATING"},
		{ActionSleeping, "SLEEPING"},
		{ActionReadyToHatch, "READY_TO_HATCH"},
		{ActionUnknown, "UNKNOWN"},
		{ActorAction(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.action.String())
		})
	}
}

func TestActorActionText(t *testing.T) {
	var a ActorAction
	require.NoError(t, a.UnmarshalText([]byte("SEEKING_FOOD")))
	assert.Equal(t, ActionSeekingFood, a)
	assert.Error(t, a.UnmarshalText([]byte("DANCING")))

	assert.True(t, ActionSleepy.InTransit())
	assert.False(t, ActionEating.InTransit())
}

func TestParseActorKind(t *testing.T) {
	for _, k := range []ActorKind{KindEgg, KindFood, KindLobber, KindRunner} {
		got, err := ParseActorKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	k, err := ParseActorKind(" Runner ")
	require.NoError(t, err)
	assert.Equal(t, KindRunner, k)

	_, err = ParseActorKind("dragon")
	assert.Error(t, err)
}

func TestActorConfigYAML(t *testing.T) {
	data := []byte(`
id: lobber
kind: lobber
max_hp: 100
speed: 2
hunger_threshold: 60
`)
	var cfg ActorConfig
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, KindLobber, cfg.Kind)
	assert.Equal(t, 2.0, cfg.Speed)
	require.NoError(t, cfg.Validate())
}

func TestActorConfigValidate(t *testing.T) {
	for _, cfg := range DefaultActorConfigs() {
		assert.NoError(t, cfg.Validate(), cfg.ID)
	}

	tests := []struct {
		name string
		cfg  ActorConfig
	}{
		{"no id", ActorConfig{MaxHP: 1, Kind: KindFood}},
		{"no hp", ActorConfig{ID: "x", Kind: KindFood}},
		{"still monster", ActorConfig{ID: "x", MaxHP: 1, Kind: KindLobber}},
		{"orphan egg", ActorConfig{ID: "x", MaxHP: 10, Kind: KindEgg}},
		{"egg threshold", ActorConfig{ID: "x", MaxHP: 10, Kind: KindEgg, Child: "y", HatchThreshold: 10}},
		{"bad kind", ActorConfig{ID: "x", MaxHP: 1, Kind: ActorKind(42)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), ErrInvalidActorConfig)
		})
	}
}

func TestActorStack(t *testing.T) {
	a := NewActor(DefaultActorConfigs()[1], geom.Vec(1, 0, 1))
	assert.Equal(t, ActionIdle, a.Pop(), "empty stack resumes idle")

	a.Push(ActionSleeping)
	a.Push(ActionEating)
	assert.Equal(t, ActionEating, a.Pop())
	assert.Equal(t, ActionSleeping, a.Pop())
	assert.Empty(t, a.Stack)
}

func TestNewActor(t *testing.T) {
	cfg := DefaultActorConfigs()[0]
	a := NewActor(cfg, geom.Vec(1, 0, 2))

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, cfg.MaxHP, a.HP)
	assert.Equal(t, KindEgg, a.Kind)
	assert.Equal(t, EventSpawned, a.Event)
	assert.True(t, a.Dirty)
	assert.True(t, a.Alive())
	assert.NotEqual(t, a.ID, NewActor(cfg, geom.Vector3{}).ID)
}

func TestActorCloneIsDeep(t *testing.T) {
	a := NewActor(DefaultActorConfigs()[1], geom.Vec(0, 0, 0))
	a.Push(ActionSleeping)
	a.Path = path.Build([]geom.Vector3{geom.Vec(0, 0, 0), geom.Vec(4, 0, 0)}, 2)

	c := a.Clone()
	c.Pop()
	path.Walk(c.Path, 1000)

	assert.Len(t, a.Stack, 1)
	assert.Equal(t, 2000.0, a.Path.TimeLeft)
}

func TestActorUpdateJSON(t *testing.T) {
	a := NewActor(DefaultActorConfigs()[1], geom.Vec(0, 0, 0))
	a.SetAction(ActionWalking)
	a.Path = path.Build([]geom.Vector3{geom.Vec(0, 0, 0), geom.Vec(4, 0, 0)}, 2)

	data, err := json.Marshal(a.Update())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"action":"WALKING"`)
	assert.Contains(t, string(data), `"kind":"lobber"`)
	assert.Contains(t, string(data), `"event":"spawned"`)

	var back ActorUpdate
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ActionWalking, back.Action)
	require.Len(t, back.Path, 1)
	assert.Equal(t, 2000.0, back.Path[0].Duration)

	a.HP = 0
	assert.True(t, a.Update().Removed)
}
