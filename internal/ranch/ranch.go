package ranch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/ranch/internal/behavior"
	"github.com/udisondev/ranch/internal/geom"
	"github.com/udisondev/ranch/internal/model"
)

var (
	ErrActorNotFound = errors.New("actor not found")
	ErrUnknownConfig = errors.New("unknown actor config")
	ErrRanchNotFound = errors.New("ranch not found")
	ErrNotPlaceable  = errors.New("position is off the navigation mesh")
)

// Terrain is the walkable surface of a ranch. *navmesh.Zoned implements it.
type Terrain interface {
	behavior.Navigator
	ClosestPoint(pos geom.Vector3) (geom.Vector3, bool)
}

// Listener receives every published batch of updates. It is called outside
// the ranch lock, one batch at a time and in the order the batches were
// built. It must not block for long and must not mutate the ranch.
type Listener func(ranchID string, updates []model.ActorUpdate)

// Options tune a ranch simulation.
type Options struct {
	// MinInterval drops ticks arriving sooner than this after the last one.
	MinInterval time.Duration
	// MaxDelta caps the simulated time of one tick.
	MaxDelta time.Duration
	// MaxDropDistance is how far from the mesh a dropped item may land.
	MaxDropDistance float64
	Tunables        behavior.Tunables
	Seed            uint64
}

// DefaultOptions returns the stock ranch options.
func DefaultOptions() Options {
	return Options{
		MinInterval:     1000 * time.Millisecond,
		MaxDelta:        5000 * time.Millisecond,
		MaxDropDistance: 5,
		Tunables:        behavior.DefaultTunables(),
		Seed:            1,
	}
}

// Ranch is one simulated population on one navigation mesh.
type Ranch struct {
	id      string
	terrain Terrain
	configs map[string]model.ActorConfig
	opts    Options

	mu       sync.Mutex
	actors   map[string]*model.Actor
	rng      *rand.Rand
	ids      *rand.ChaCha8
	lastTick time.Time
	ticks    uint64
	// nextSeq is the publish ticket handed to the next batch.
	nextSeq uint64

	pubMu   sync.Mutex
	pubCond *sync.Cond
	pubSeq  uint64 // ticket allowed to publish now

	lmu          sync.RWMutex
	listeners    map[uint64]Listener
	nextListener uint64
}

// New creates an empty ranch. now is the reference time of the first tick.
func New(id string, terrain Terrain, configs []model.ActorConfig, opts Options, now time.Time) (*Ranch, error) {
	table := make(map[string]model.ActorConfig, len(configs))
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("ranch %s: %w", id, err)
		}
		if _, dup := table[c.ID]; dup {
			return nil, fmt.Errorf("ranch %s: duplicate config %q: %w", id, c.ID, model.ErrInvalidActorConfig)
		}
		table[c.ID] = c
	}
	for _, c := range table {
		if c.Kind != model.KindEgg {
			continue
		}
		if _, ok := table[c.Child]; !ok {
			return nil, fmt.Errorf("ranch %s: egg %q hatches %q: %w", id, c.ID, c.Child, ErrUnknownConfig)
		}
	}

	var idSeed [32]byte
	binary.LittleEndian.PutUint64(idSeed[:], opts.Seed)
	copy(idSeed[8:], id)

	r := &Ranch{
		id:        id,
		terrain:   terrain,
		configs:   table,
		opts:      opts,
		actors:    make(map[string]*model.Actor),
		rng:       rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		ids:       rand.NewChaCha8(idSeed),
		lastTick:  now,
		listeners: make(map[uint64]Listener),
	}
	r.pubCond = sync.NewCond(&r.pubMu)
	return r, nil
}

// ID returns the ranch id.
func (r *Ranch) ID() string {
	return r.id
}

// Tick runs one simulation step if at least MinInterval passed since the
// previous one. Reports whether the step ran.
func (r *Ranch) Tick(now time.Time) bool {
	r.mu.Lock()
	elapsed := now.Sub(r.lastTick)
	if elapsed < r.opts.MinInterval {
		r.mu.Unlock()
		return false
	}
	r.lastTick = now
	if elapsed > r.opts.MaxDelta {
		slog.Debug("tick delta clamped", "ranch", r.id, "elapsed", elapsed, "max", r.opts.MaxDelta)
		elapsed = r.opts.MaxDelta
	}

	updates := r.step(float64(elapsed) / float64(time.Millisecond))
	r.ticks++
	seq := r.sequence()
	r.mu.Unlock()

	r.publish(seq, updates)
	return true
}

// step ticks every actor against the pre-tick snapshot, applies the
// collected effects, then builds the update batch. Caller holds r.mu.
func (r *Ranch) step(dt float64) []model.ActorUpdate {
	ctx := r.context()

	for _, id := range r.sortedIDs() {
		a := r.actors[id]
		cfg, ok := r.configs[a.ConfigID]
		if !ok {
			slog.Warn("actor config missing, skipping",
				"ranch", r.id,
				"actor", id,
				"config", a.ConfigID)
			continue
		}
		if err := behavior.Tick(dt, a, cfg, ctx); err != nil {
			slog.Warn("actor tick failed", "ranch", r.id, "actor", id, "error", err)
		}
	}

	r.apply(ctx.Effects())
	return r.collect()
}

func (r *Ranch) context() *behavior.Context {
	others := make([]behavior.Neighbor, 0, len(r.actors))
	for _, id := range r.sortedIDs() {
		a := r.actors[id]
		others = append(others, behavior.Neighbor{
			ID:       a.ID,
			Kind:     a.Kind,
			Action:   a.Action,
			Position: a.Position,
		})
	}
	return &behavior.Context{
		Nav:      r.terrain,
		Rand:     r.rng,
		Tunables: r.opts.Tunables,
		Others:   others,
	}
}

func (r *Ranch) apply(effects []behavior.Effect) {
	for _, e := range effects {
		switch e.Kind {
		case behavior.EffectSpawn:
			cfg, ok := r.configs[e.ConfigID]
			if !ok {
				slog.Warn("spawn of unknown config dropped", "ranch", r.id, "config", e.ConfigID)
				continue
			}
			a := model.NewActor(cfg, e.Position)
			a.ID = r.newID()
			if e.Event != model.EventNone {
				a.Event = e.Event
			}
			r.actors[a.ID] = a

		case behavior.EffectConsume:
			food, ok := r.actors[e.ActorID]
			if !ok {
				continue
			}
			food.HP = 0
			food.Dirty = true
		}
	}
}

// collect projects changed actors, drops dead ones and clears one-shot
// events. Caller holds r.mu.
func (r *Ranch) collect() []model.ActorUpdate {
	var updates []model.ActorUpdate
	for _, id := range r.sortedIDs() {
		a := r.actors[id]
		if !a.Dirty && a.Alive() {
			continue
		}
		updates = append(updates, a.Update())
		if !a.Alive() {
			delete(r.actors, id)
			continue
		}
		a.Dirty = false
		a.Event = model.EventNone
	}
	return updates
}

// newID draws a fresh actor id from the ranch's seeded id stream, so a
// replay of the same seed names spawned actors the same way. Caller holds
// r.mu.
func (r *Ranch) newID() string {
	for {
		u, err := uuid.NewRandomFromReader(r.ids)
		if err != nil {
			// ChaCha8 reads do not fail
			panic(fmt.Sprintf("ranch %s: drawing actor id: %v", r.id, err))
		}
		// restored actors may already carry ids of an earlier run
		if _, taken := r.actors[u.String()]; !taken {
			return u.String()
		}
	}
}

func (r *Ranch) sortedIDs() []string {
	ids := make([]string, 0, len(r.actors))
	for id := range r.actors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Touch applies a player touch to an actor.
func (r *Ranch) Touch(actorID string) error {
	r.mu.Lock()
	a, ok := r.actors[actorID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("touching %s: %w", actorID, ErrActorNotFound)
	}
	cfg, ok := r.configs[a.ConfigID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("touching %s: config %q: %w", actorID, a.ConfigID, ErrUnknownConfig)
	}

	ctx := r.context()
	if err := behavior.Touch(a, cfg, ctx); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("touching %s: %w", actorID, err)
	}
	r.apply(ctx.Effects())
	updates := r.collect()
	seq := r.sequence()
	r.mu.Unlock()

	r.publish(seq, updates)
	return nil
}

// DropEgg places an egg of configID near pos and returns its id.
func (r *Ranch) DropEgg(configID string, pos geom.Vector3) (string, error) {
	return r.drop(model.KindEgg, configID, pos)
}

// DropFood places food of configID near pos and returns its id.
func (r *Ranch) DropFood(configID string, pos geom.Vector3) (string, error) {
	return r.drop(model.KindFood, configID, pos)
}

func (r *Ranch) drop(kind model.ActorKind, configID string, pos geom.Vector3) (string, error) {
	cfg, ok := r.configs[configID]
	if !ok || cfg.Kind != kind {
		return "", fmt.Errorf("dropping %s %q: %w", kind, configID, ErrUnknownConfig)
	}
	at, ok := r.terrain.ClosestPoint(pos)
	if !ok || at.DistanceTo(pos) > r.opts.MaxDropDistance {
		return "", fmt.Errorf("dropping %s at %v: %w", kind, pos, ErrNotPlaceable)
	}

	a := model.NewActor(cfg, at)

	r.mu.Lock()
	a.ID = r.newID()
	r.actors[a.ID] = a
	updates := r.collect()
	seq := r.sequence()
	r.mu.Unlock()

	slog.Debug("actor dropped", "ranch", r.id, "actor", a.ID, "config", configID, "pos", at)
	r.publish(seq, updates)
	return a.ID, nil
}

// Actors returns the current public state of every actor, ordered by id.
func (r *Ranch) Actors() []model.ActorUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.ActorUpdate, 0, len(r.actors))
	for _, id := range r.sortedIDs() {
		u := r.actors[id].Update()
		u.Event = model.EventNone
		out = append(out, u)
	}
	return out
}

// Len returns the number of actors.
func (r *Ranch) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actors)
}

// Ticks returns how many ticks passed the gate.
func (r *Ranch) Ticks() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// Snapshot returns deep copies of every actor, ordered by id.
func (r *Ranch) Snapshot() []*model.Actor {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Actor, 0, len(r.actors))
	for _, id := range r.sortedIDs() {
		out = append(out, r.actors[id].Clone())
	}
	return out
}

// Restore adds previously saved actors. Actors whose config is gone are
// skipped with a warning. Returns how many were restored.
func (r *Ranch) Restore(actors []*model.Actor) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, a := range actors {
		if _, ok := r.configs[a.ConfigID]; !ok {
			slog.Warn("restored actor has unknown config, skipping",
				"ranch", r.id,
				"actor", a.ID,
				"config", a.ConfigID)
			continue
		}
		if !a.Alive() {
			continue
		}
		c := a.Clone()
		c.Dirty = false
		c.Event = model.EventNone
		r.actors[c.ID] = c
		n++
	}
	return n
}

// Subscribe registers l for update batches. The returned func removes it.
func (r *Ranch) Subscribe(l Listener) func() {
	r.lmu.Lock()
	id := r.nextListener
	r.nextListener++
	r.listeners[id] = l
	r.lmu.Unlock()

	return func() {
		r.lmu.Lock()
		delete(r.listeners, id)
		r.lmu.Unlock()
	}
}

// sequence hands out the publish ticket of a batch. Caller holds r.mu, so
// tickets follow the order batches are built in.
func (r *Ranch) sequence() uint64 {
	seq := r.nextSeq
	r.nextSeq++
	return seq
}

// publish delivers updates once every batch with a smaller ticket has been
// delivered. Every ticket must be published exactly once, even when empty.
func (r *Ranch) publish(seq uint64, updates []model.ActorUpdate) {
	r.pubMu.Lock()
	for r.pubSeq != seq {
		r.pubCond.Wait()
	}
	r.pubMu.Unlock()

	defer func() {
		r.pubMu.Lock()
		r.pubSeq++
		r.pubCond.Broadcast()
		r.pubMu.Unlock()
	}()

	if len(updates) == 0 {
		return
	}

	r.lmu.RLock()
	listeners := make([]Listener, 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.lmu.RUnlock()

	for _, l := range listeners {
		l(r.id, updates)
	}
}
