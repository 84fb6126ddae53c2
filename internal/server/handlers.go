package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/udisondev/ranch/internal/geom"
	"github.com/udisondev/ranch/internal/model"
	"github.com/udisondev/ranch/internal/ranch"
)

// ErrBadRequest marks malformed client input.
var ErrBadRequest = errors.New("bad request")

const maxBodySize = 64 << 10

// Action types accepted by POST .../actions and over the websocket.
const (
	ActionTouch    = "touch"
	ActionDropEgg  = "drop_egg"
	ActionDropFood = "drop_food"
)

// ActionRequest is a player action on a ranch.
type ActionRequest struct {
	Type     string        `json:"type"`
	Actor    string        `json:"actor,omitempty"`
	Config   string        `json:"config,omitempty"`
	Position *geom.Vector3 `json:"position,omitempty"`
}

// ActionResponse carries the id of the touched or created actor.
type ActionResponse struct {
	ID string `json:"id"`
}

// TickResponse reports the outcome of a client-triggered tick.
type TickResponse struct {
	Ran   bool   `json:"ran"`
	Ticks uint64 `json:"ticks"`
}

// ActorsResponse lists the actors of a ranch.
type ActorsResponse struct {
	Ranch  string              `json:"ranch"`
	Ticks  uint64              `json:"ticks"`
	Actors []model.ActorUpdate `json:"actors"`
}

// PathRequest is a debug path query.
type PathRequest struct {
	From geom.Vector3 `json:"from"`
	To   geom.Vector3 `json:"to"`
}

// PathResponse holds the path points, src included.
type PathResponse struct {
	Found  bool           `json:"found"`
	Points []geom.Vector3 `json:"points"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"ranches": s.manager.Count(),
		"clients": s.ClientCount(),
	})
}

func (s *Server) handleActors(w http.ResponseWriter, r *http.Request) {
	rn, err := s.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ActorsResponse{
		Ranch:  rn.ID(),
		Ticks:  rn.Ticks(),
		Actors: rn.Actors(),
	})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	rn, err := s.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req ActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	id, err := applyAction(rn, req)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if req.Type != ActionTouch {
		status = http.StatusCreated
	}
	writeJSON(w, status, ActionResponse{ID: id})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	rn, err := s.manager.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	ran := rn.Tick(s.opts.Now())
	writeJSON(w, http.StatusOK, TickResponse{Ran: ran, Ticks: rn.Ticks()})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	points := s.paths.FindPath(req.From, req.To)
	resp := PathResponse{Found: points != nil, Points: points}
	if resp.Points == nil {
		resp.Points = []geom.Vector3{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// applyAction runs req against rn and returns the affected actor id.
func applyAction(rn *ranch.Ranch, req ActionRequest) (string, error) {
	switch req.Type {
	case ActionTouch:
		if req.Actor == "" {
			return "", fmt.Errorf("touch without actor: %w", ErrBadRequest)
		}
		if err := rn.Touch(req.Actor); err != nil {
			return "", err
		}
		return req.Actor, nil
	case ActionDropEgg, ActionDropFood:
		if req.Config == "" || req.Position == nil {
			return "", fmt.Errorf("%s needs config and position: %w", req.Type, ErrBadRequest)
		}
		if req.Type == ActionDropEgg {
			return rn.DropEgg(req.Config, *req.Position)
		}
		return rn.DropFood(req.Config, *req.Position)
	default:
		return "", fmt.Errorf("unknown action %q: %w", req.Type, ErrBadRequest)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %v: %w", err, ErrBadRequest)
	}
	return nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, ranch.ErrUnknownConfig):
		return http.StatusBadRequest
	case errors.Is(err, ranch.ErrRanchNotFound), errors.Is(err, ranch.ErrActorNotFound):
		return http.StatusNotFound
	case errors.Is(err, ranch.ErrNotPlaceable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}
