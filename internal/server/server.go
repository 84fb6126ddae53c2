package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/ranch/internal/geom"
	"github.com/udisondev/ranch/internal/ranch"
)

// Options configures the HTTP and websocket transport.
type Options struct {
	// WriteTimeout is the deadline of a single websocket write.
	WriteTimeout time.Duration
	// ReadTimeout disconnects a websocket client silent for this long.
	ReadTimeout time.Duration
	// SendQueueSize is the per-client outbox capacity. A client whose
	// outbox overflows is disconnected.
	SendQueueSize int
	// Now is the clock used by client-triggered ticks. nil means time.Now.
	Now func() time.Time
}

// DefaultOptions returns the stock transport options.
func DefaultOptions() Options {
	return Options{
		WriteTimeout:  5 * time.Second,
		ReadTimeout:   60 * time.Second,
		SendQueueSize: 64,
	}
}

// PathFinder answers debug path queries. *navmesh.Zoned implements it.
type PathFinder interface {
	FindPath(src, dest geom.Vector3) []geom.Vector3
}

// Server exposes ranches over REST and websocket.
type Server struct {
	manager  *ranch.Manager
	paths    PathFinder
	opts     Options
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// New creates a Server over the ranches registered in manager.
func New(manager *ranch.Manager, paths PathFinder, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	def := DefaultOptions()
	if opts.SendQueueSize <= 0 {
		opts.SendQueueSize = def.SendQueueSize
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = def.ReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	return &Server{
		manager: manager,
		paths:   paths,
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Viewers are served from other origins; there is no auth to protect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*Client]struct{}),
	}
}

// Handler returns the HTTP handler with every route mounted.
func (s *Server) Handler() http.Handler {
	return s.router()
}

// ListenAndServe serves on addr until ctx is cancelled, then disconnects
// websocket clients and shuts the HTTP server down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("http server listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	// hijacked websocket connections are invisible to Shutdown
	n := s.closeClients()
	slog.Info("http server shutting down", "clients", n)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) track(c *Client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(c *Client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

func (s *Server) closeClients() int {
	s.mu.Lock()
	clients := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	return len(clients)
}
