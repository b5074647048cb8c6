package server

import (
	"encoding/json"
	"net/http"

	"github.com/onnwee/twitchchat/irc"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	session *irc.Session
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(session *irc.Session) *Handlers {
	return &Handlers{session: session}
}

// HandleHealthz responds to liveness probe requests.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz responds to readiness probe requests: ready once the session
// has joined its channel.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	state := h.session.State()
	if state != irc.StateConnected {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "not_ready",
			"state":  state.String(),
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// HandleStatus returns a JSON snapshot of the session.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	tags := h.session.ClientTags()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"state":          h.session.State().String(),
		"channel":        h.session.Channel(),
		"userstate":      h.session.UserstateChannel(),
		"anonymous":      h.session.IsAnonymous(),
		"fail_count":     h.session.FailCount(),
		"workers_alive":  h.session.WorkersAlive(),
		"parse_failures": h.session.ParseFailures(),
		"moderator":      tags.HasBadge("moderator") || tags.HasBadge("broadcaster"),
	})
}
