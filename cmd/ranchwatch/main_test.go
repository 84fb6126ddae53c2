package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/ranch/internal/geom"
	"github.com/udisondev/ranch/internal/model"
	"github.com/udisondev/ranch/internal/path"
	"github.com/udisondev/ranch/internal/server"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func walker(id string, points ...geom.Vector3) model.ActorUpdate {
	return model.ActorUpdate{
		ID:       id,
		Kind:     model.KindLobber,
		Action:   model.ActionWalking,
		Position: points[0],
		Path:     path.Encode(path.Build(points, 2)),
	}
}

func TestViewerInterpolatesWalkers(t *testing.T) {
	v := newViewer(t0)

	food := model.ActorUpdate{ID: "b-food", Kind: model.KindFood, Action: model.ActionIdle, Position: geom.Vec(5, 0, 5)}
	require.NoError(t, v.apply(server.Message{
		Type:   server.MessageSnapshot,
		Actors: []model.ActorUpdate{walker("a-lobber", geom.Vec(0, 0, 0), geom.Vec(2, 0, 0)), food},
	}, t0))

	rows := v.frame(t0.Add(500 * time.Millisecond))
	require.Len(t, rows, 2)
	assert.Equal(t, "a-lobber", rows[0].ID)
	assert.True(t, rows[0].Walking)
	assert.InDelta(t, 1.0, rows[0].Position.X, 1e-9)
	assert.Equal(t, geom.Vec(5, 0, 5), rows[1].Position)
	assert.False(t, rows[1].Walking)

	rows = v.frame(t0.Add(3 * time.Second))
	assert.Equal(t, geom.Vec(2, 0, 0), rows[0].Position)
	assert.False(t, rows[0].Walking)
}

func TestViewerUpdatesAndRemovals(t *testing.T) {
	v := newViewer(t0)
	require.NoError(t, v.apply(server.Message{
		Type:   server.MessageSnapshot,
		Actors: []model.ActorUpdate{walker("a", geom.Vec(0, 0, 0), geom.Vec(4, 0, 0))},
	}, t0))

	// the walker stopped early; no path means the reported position wins
	stopped := model.ActorUpdate{ID: "a", Kind: model.KindLobber, Action: model.ActionEating, Position: geom.Vec(1, 0, 0)}
	require.NoError(t, v.apply(server.Message{Type: server.MessageUpdates, Actors: []model.ActorUpdate{stopped}}, t0.Add(time.Second)))

	rows := v.frame(t0.Add(1500 * time.Millisecond))
	require.Len(t, rows, 1)
	assert.Equal(t, model.ActionEating, rows[0].Action)
	assert.Equal(t, geom.Vec(1, 0, 0), rows[0].Position)

	require.NoError(t, v.apply(server.Message{
		Type:   server.MessageUpdates,
		Actors: []model.ActorUpdate{{ID: "a", Removed: true}},
	}, t0.Add(2*time.Second)))
	assert.Empty(t, v.frame(t0.Add(2*time.Second)))

	// a fresh snapshot replaces everything
	require.NoError(t, v.apply(server.Message{Type: server.MessageSnapshot, Actors: []model.ActorUpdate{stopped}}, t0))
	assert.Len(t, v.frame(t0), 1)
	require.NoError(t, v.apply(server.Message{Type: server.MessageSnapshot}, t0))
	assert.Empty(t, v.frame(t0))
}

func TestViewerRejectsBrokenPath(t *testing.T) {
	v := newViewer(t0)
	bad := walker("a", geom.Vec(0, 0, 0), geom.Vec(2, 0, 0))
	bad.Path[0].TimeLeft = -1

	err := v.apply(server.Message{Type: server.MessageUpdates, Actors: []model.ActorUpdate{bad}}, t0)
	require.ErrorIs(t, err, path.ErrInvalidState)

	rows := v.frame(t0.Add(time.Second))
	require.Len(t, rows, 1)
	assert.Equal(t, geom.Vec(0, 0, 0), rows[0].Position)
}
