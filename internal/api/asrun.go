package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/rundown-core/internal/asrun"
)

// handleListAsRun returns as-run entries, newest first.
//
// Query parameters: session_id, show_id, event, item_id, since and until
// (RFC 3339), limit and offset.
func (s *Server) handleListAsRun(w http.ResponseWriter, r *http.Request) {
	if s.asRun == nil {
		writeNotSupported(w, "as-run log not configured")
		return
	}

	q := r.URL.Query()
	filter := asrun.Filter{
		SessionID: q.Get("session_id"),
		ShowID:    q.Get("show_id"),
		Event:     q.Get("event"),
		ItemID:    q.Get("item_id"),
	}

	var err error
	if filter.Since, err = parseTimeParam(q.Get("since")); err != nil {
		writeBadRequest(w, "invalid since: "+err.Error())
		return
	}
	if filter.Until, err = parseTimeParam(q.Get("until")); err != nil {
		writeBadRequest(w, "invalid until: "+err.Error())
		return
	}
	if filter.Limit, err = parseIntParam(q.Get("limit")); err != nil {
		writeBadRequest(w, "invalid limit: "+err.Error())
		return
	}
	if filter.Offset, err = parseIntParam(q.Get("offset")); err != nil {
		writeBadRequest(w, "invalid offset: "+err.Error())
		return
	}

	result, err := s.asRun.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list as-run entries", "error", err)
		writeInternalError(w, "failed to list as-run entries")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseTimeParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}

func parseIntParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
