// ranchwatch connects to a ranch stream and prints actor positions,
// interpolating walking actors between server updates.
//
// Usage:
//
//	go run ./cmd/ranchwatch -addr localhost:8080 -ranch default
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/ranch/internal/geom"
	"github.com/udisondev/ranch/internal/model"
	"github.com/udisondev/ranch/internal/path"
	"github.com/udisondev/ranch/internal/server"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "ranch server host:port")
	ranchID := flag.String("ranch", "default", "ranch to watch")
	interval := flag.Duration("interval", 500*time.Millisecond, "print interval")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *addr, *ranchID, *interval); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, addr, ranchID string, interval time.Duration) error {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/api/v1/ranches/" + ranchID + "/ws"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", u.String(), err)
	}
	defer conn.Close()
	slog.Info("watching ranch", "url", u.String())

	v := newViewer(time.Now())
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			var msg server.Message
			if err := conn.ReadJSON(&msg); err != nil {
				if gctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return nil
				}
				return fmt.Errorf("reading stream: %w", err)
			}
			if err := v.apply(msg, time.Now()); err != nil {
				slog.Warn("bad stream message", "type", msg.Type, "error", err)
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				// unblocks the reader
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				conn.Close()
				return nil
			case now := <-ticker.C:
				printFrame(v.frame(now))
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// viewer mirrors a ranch population client side.
type viewer struct {
	mu     sync.Mutex
	start  time.Time
	actors map[string]*tracked
}

type tracked struct {
	update   model.ActorUpdate
	playback *path.Playback
}

// row is one printed actor.
type row struct {
	ID       string
	Kind     model.ActorKind
	Action   model.ActorAction
	Position geom.Vector3
	Walking  bool
}

func newViewer(start time.Time) *viewer {
	return &viewer{start: start, actors: make(map[string]*tracked)}
}

// clock is the playback time base in milliseconds.
func (v *viewer) clock(now time.Time) float64 {
	return float64(now.Sub(v.start)) / float64(time.Millisecond)
}

func (v *viewer) apply(msg server.Message, now time.Time) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch msg.Type {
	case server.MessageSnapshot:
		clear(v.actors)
	case server.MessageUpdates:
	case server.MessageError:
		return errors.New(msg.Error)
	default:
		return nil
	}

	ms := v.clock(now)
	var errs []error
	for _, u := range msg.Actors {
		if u.Removed {
			delete(v.actors, u.ID)
			continue
		}

		t, ok := v.actors[u.ID]
		if !ok {
			t = &tracked{}
			v.actors[u.ID] = t
		}
		t.update = u

		if len(u.Path) == 0 {
			t.playback = nil
			continue
		}
		chain, err := path.Decode(u.Path)
		if err != nil {
			t.playback = nil
			errs = append(errs, fmt.Errorf("actor %s: %w", u.ID, err))
			continue
		}
		if t.playback == nil {
			t.playback = path.NewPlayback(chain, ms)
		} else {
			t.playback.Sync(chain, ms)
		}
	}
	return errors.Join(errs...)
}

// frame returns every actor at now, ordered by id.
func (v *viewer) frame(now time.Time) []row {
	v.mu.Lock()
	defer v.mu.Unlock()

	ms := v.clock(now)
	rows := make([]row, 0, len(v.actors))
	for id, t := range v.actors {
		r := row{ID: id, Kind: t.update.Kind, Action: t.update.Action, Position: t.update.Position}
		if t.playback != nil {
			r.Position = t.playback.Frame(ms).Position
			r.Walking = !t.playback.Done()
		}
		rows = append(rows, r)
	}
	slices.SortFunc(rows, func(a, b row) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return rows
}

func printFrame(rows []row) {
	fmt.Printf("--- %s  %d actors\n", time.Now().Format("15:04:05.000"), len(rows))
	for _, r := range rows {
		marker := " "
		if r.Walking {
			marker = ">"
		}
		fmt.Printf("%s %-8.8s %-7s %-14s (%7.2f, %6.2f, %7.2f)\n",
			marker, r.ID, r.Kind, r.Action, r.Position.X, r.Position.Y, r.Position.Z)
	}
}
