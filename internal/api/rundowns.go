package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/rundown-core/internal/rundown"
)

// handlePutRundown installs a rundown document (JSON or YAML) as the
// session's rundown. When a show store is configured the document is saved
// first, so a restart picks up the same version.
//
// A document with nothing the engine could take LIVE is rejected with 422.
func (s *Server) handlePutRundown(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body: "+err.Error())
		return
	}

	doc, err := rundown.Decode(body)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	show, err := rundown.Parse(doc)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := rundown.RequirePlayable(show); err != nil {
		writeDomainError(w, err)
		return
	}

	if s.shows != nil {
		if err := s.shows.Save(r.Context(), doc); err != nil {
			s.logger.Error("failed to store rundown", "show_id", doc.ID, "error", err)
			writeDomainError(w, err)
			return
		}
	}

	if err := s.runner.SetRundown(r.Context(), show); err != nil {
		writeDomainError(w, err)
		return
	}
	s.logger.Info("rundown installed", "show_id", show.ID, "stored", s.shows != nil)

	snap, err := s.runner.Snapshot()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleListRundowns lists the stored shows.
func (s *Server) handleListRundowns(w http.ResponseWriter, r *http.Request) {
	if s.shows == nil {
		writeNotSupported(w, "show store not configured")
		return
	}

	shows, err := s.shows.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list rundowns", "error", err)
		writeInternalError(w, "failed to list rundowns")
		return
	}
	if shows == nil {
		shows = []rundown.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rundowns": shows,
		"count":    len(shows),
	})
}

// handleGetRundown returns a stored document as it was saved.
func (s *Server) handleGetRundown(w http.ResponseWriter, r *http.Request) {
	if s.shows == nil {
		writeNotSupported(w, "show store not configured")
		return
	}

	doc, err := s.shows.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteRundown removes a stored document. The running session is
// not affected.
func (s *Server) handleDeleteRundown(w http.ResponseWriter, r *http.Request) {
	if s.shows == nil {
		writeNotSupported(w, "show store not configured")
		return
	}

	if err := s.shows.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
