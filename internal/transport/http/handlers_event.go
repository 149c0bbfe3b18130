package httptransport

import (
	"encoding/json"
	"net"
	"net/http"
)

// handleRecordEvent is best-effort by contract: whatever happens downstream,
// the caller gets {ok:true}. A malformed body just records with defaults.
func (h *Handler) handleRecordEvent(w http.ResponseWriter, r *http.Request) {
	var req recordEventRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	h.recorder.Record(r.Context(), req.UID, req.Kind, r.UserAgent(), remoteAddr(r))

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func remoteAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
