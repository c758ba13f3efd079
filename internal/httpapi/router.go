package httpapi

import "net/http"

// NewMux returns the raw mux; wrap it with Handler for the standard middleware.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{Hub: d.Hub}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Listings
	lh := ListingsHandler{Lister: d.Lister, Table: d.Table}
	mux.HandleFunc("/listings", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.List,
	}))

	// Config (read-only; credentials redacted)
	ch := ConfigHandler{CfgVal: d.CfgVal, UserCfgPath: d.UserCfgPath}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Scrape
	sch := ScrapeHandler{Poller: d.Poller, Base: d.BaseCtx}
	mux.HandleFunc("/scrape/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Status,
	}))
	mux.HandleFunc("/scrape/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Run,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	if d.ShutdownToken != "" && d.Stop != nil {
		sh := ShutdownHandler{Token: d.ShutdownToken, Stop: d.Stop}
		mux.HandleFunc("/shutdown", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: sh.Shutdown,
		}))
	}

	return mux
}

// Handler is NewMux behind request id, panic recovery, access log and CORS.
func Handler(d Deps) http.Handler {
	mw := Middlewares{Log: d.Log}
	return Chain(NewMux(d), mw.RequestID, mw.Recover, mw.AccessLog, Cors)
}
