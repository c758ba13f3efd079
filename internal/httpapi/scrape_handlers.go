package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/mdeeno/motoieum/internal/poll"
	"github.com/mdeeno/motoieum/internal/runlock"
)

type ScrapeHandler struct {
	Poller *poll.Poller
	Base   context.Context
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Poller.Status())
}

// Run starts a pass in the background and answers 202. With ?wait=1 it runs
// inline and answers with the report.
func (h ScrapeHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("wait") == "1" {
		rep, err := h.Poller.RunOnce(r.Context())
		switch {
		case errors.Is(err, poll.ErrRunning), errors.Is(err, runlock.ErrHeld):
			WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "msg": "already running"})
		case err != nil:
			WriteError(w, r, http.StatusInternalServerError, CodeInternal, err.Error())
		default:
			WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "report": rep})
		}
		return
	}

	// the run outlives the request but not the server
	base := h.Base
	if base == nil {
		base = context.WithoutCancel(r.Context())
	}
	if !h.Poller.Start(base) {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "msg": "already running"})
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
