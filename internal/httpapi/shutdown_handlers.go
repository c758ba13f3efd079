package httpapi

import (
	"crypto/subtle"
	"net"
	"net/http"
)

// ShutdownHandler lets a local supervisor stop `serve` with a shared token.
type ShutdownHandler struct {
	Token string
	Stop  func()
}

func (h ShutdownHandler) Shutdown(w http.ResponseWriter, r *http.Request) {
	// Local-only guard
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr can sometimes be just a host; fall back safely
		host = r.RemoteAddr
	}
	if host != "127.0.0.1" && host != "::1" && host != "localhost" {
		WriteError(w, r, http.StatusForbidden, CodeForbidden, "shutdown is local only")
		return
	}

	got := r.Header.Get("X-Shutdown-Token")
	if h.Token == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) != 1 {
		WriteError(w, r, http.StatusUnauthorized, CodeUnauthorized, "bad shutdown token")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "msg": "shutting down"})
	go h.Stop()
}
