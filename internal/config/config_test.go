package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ranch/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "ranchserver.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadRanchServerMissingFile(t *testing.T) {
	cfg, err := LoadRanchServer(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRanchServer(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadRanchServer(t *testing.T) {
	p := writeConfig(t, `
port: 9090
log_level: debug
ranches: [alpha, beta]
tick_interval: 500ms
max_tick_delta: 3s
behavior:
  food_search_radius: 12
actors:
  - id: food
    kind: food
    max_hp: 10
    decay_rate: 1
database:
  host: db
`)

	cfg, err := LoadRanchServer(p)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Ranches)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 3*time.Second, cfg.MaxTickDelta)
	assert.Equal(t, time.Second, cfg.MinTickInterval, "untouched keys keep defaults")
	assert.Equal(t, 12.0, cfg.Behavior.FoodSearchRadius)
	assert.Equal(t, 1.5, cfg.Behavior.InteractDistance)

	require.Len(t, cfg.Actors, 1)
	assert.Equal(t, model.KindFood, cfg.Actors[0].Kind)

	assert.Equal(t, "postgres://ranch:ranch@db:5432/ranch?sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
}

func TestLoadRanchServerDefaultActors(t *testing.T) {
	cfg, err := LoadRanchServer(writeConfig(t, "port: 8081\n"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultActorConfigs(), cfg.Actors)
}

func TestLoadRanchServerInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "port: [\n"},
		{"port", "port: 70000\n"},
		{"no ranches", "ranches: []\n"},
		{"clamp below gate", "max_tick_delta: 100ms\n"},
		{"bad actor", "actors:\n  - id: x\n    kind: lobber\n    max_hp: 1\n"},
		{"bad kind", "actors:\n  - id: x\n    kind: dragon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRanchServer(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
