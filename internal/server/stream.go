package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/udisondev/ranch/internal/model"
	"github.com/udisondev/ranch/internal/ranch"
)

// Stream message types.
const (
	MessageSnapshot = "snapshot" // full population, sent once on connect
	MessageUpdates  = "updates"  // dirty actors of one tick or action
	MessageAck      = "ack"      // reply to an inbound action
	MessageError    = "error"
)

// Message is one websocket frame sent to viewers.
type Message struct {
	Type   string              `json:"type"`
	Ranch  string              `json:"ranch,omitempty"`
	Ticks  uint64              `json:"ticks,omitempty"`
	Actors []model.ActorUpdate `json:"actors,omitempty"`
	ID     string              `json:"id,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// handleStream upgrades to a websocket and streams the ranch's update
// batches until the client goes away. Inbound frames are ActionRequests.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	rn, err := s.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "ranch", rn.ID(), "error", err)
		return
	}

	c := newClient(conn, rn.ID(), s.opts)
	s.track(c)
	defer s.untrack(c)

	// subscribe before the snapshot so no batch falls between them
	unsubscribe := rn.Subscribe(func(ranchID string, updates []model.ActorUpdate) {
		c.enqueue(Message{Type: MessageUpdates, Ranch: ranchID, Ticks: rn.Ticks(), Actors: updates})
	})
	defer unsubscribe()

	c.enqueue(Message{Type: MessageSnapshot, Ranch: rn.ID(), Ticks: rn.Ticks(), Actors: rn.Actors()})

	slog.Info("viewer connected", "client", c.id, "ranch", rn.ID(), "remote", r.RemoteAddr)
	go c.writePump()
	c.readPump(func(data []byte) {
		s.handleClientMessage(c, rn, data)
	})
	slog.Info("viewer disconnected", "client", c.id, "ranch", rn.ID())
}

func (s *Server) handleClientMessage(c *Client, rn *ranch.Ranch, data []byte) {
	var req ActionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.enqueue(Message{Type: MessageError, Error: "malformed action: " + err.Error()})
		return
	}

	id, err := applyAction(rn, req)
	if err != nil {
		slog.Debug("stream action rejected", "client", c.id, "type", req.Type, "error", err)
		c.enqueue(Message{Type: MessageError, Error: err.Error()})
		return
	}
	c.enqueue(Message{Type: MessageAck, ID: id})
}
