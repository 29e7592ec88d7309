package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/nerrad567/rundown-core/internal/automation"
	"github.com/nerrad567/rundown-core/internal/metrics"
	"github.com/nerrad567/rundown-core/internal/rundown"
)

// handleGetSession returns the latest session snapshot.
func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.runner.Snapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleControl applies a control action. The body is either the full
// control-surface envelope or a bare button:
//
//	{"type": "CONTROL_ACTION", "button": {"type": "next"}}
//	{"type": "manual", "data": {"id": "guest-mic"}}
//
// The response carries the snapshot taken after the action.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body: "+err.Error())
		return
	}

	b, err := automation.ParseControlMessage(body)
	if err != nil {
		metrics.IncControlAction("invalid", automation.TransportHTTP, false)
		writeBadRequest(w, err.Error())
		return
	}

	err = s.runner.Control(r.Context(), b)
	metrics.IncControlAction(b.Type, automation.TransportHTTP, err == nil)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	snap, err := s.runner.Snapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleGetAudio returns the active microphones and media tracks.
func (s *Server) handleGetAudio(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.runner.Snapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Audio)
}

// handleGetOverlays returns the overlay states of the current parent.
func (s *Server) handleGetOverlays(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.runner.Snapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"overlays": snap.Overlays,
	})
}

// handleReload fetches the rundown from the configured source again.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Reload(r.Context()); err != nil {
		switch {
		case errors.Is(err, automation.ErrSessionUnavailable),
			errors.Is(err, rundown.ErrShowNotFound),
			errors.Is(err, rundown.ErrInvalidShow):
			writeDomainError(w, err)
		default:
			// A failed fetch leaves the running session untouched.
			writeError(w, http.StatusBadGateway, ErrCodeUnavailable, err.Error())
		}
		return
	}

	snap, err := s.runner.Snapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
