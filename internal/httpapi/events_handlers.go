package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mdeeno/motoieum/internal/events"
)

type EventsHandler struct {
	Hub *events.Hub
	// Heartbeat is how often a ping is sent on an idle stream. Zero means 25s.
	Heartbeat time.Duration
}

// ServeSSE streams listing_created and scrape_finished events.
func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, CodeStreamUnsupported, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(ch)

	reqID := RequestIDFrom(r.Context())
	send := func(msg string) {
		fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
		flusher.Flush()
	}
	send(events.Encode(reqID, events.TypePing, nil))

	every := h.Heartbeat
	if every <= 0 {
		every = 25 * time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-t.C:
			send(events.Encode(reqID, events.TypePing, nil))
		case msg := <-ch:
			send(msg)
		}
	}
}
