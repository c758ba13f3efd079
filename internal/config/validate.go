package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err folds every problem into one error, nil when there are none.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return eris.New("config validation failed:\n- " + strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate returns a normalized copy of cfg and everything wrong with it.
// Missing store endpoints or credentials are errors so a run stops before any fetch.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	out.Store.Driver = strings.ToLower(strings.TrimSpace(out.Store.Driver))
	out.Store.URL = strings.TrimRight(strings.TrimSpace(out.Store.URL), "/")
	out.Store.Key = strings.TrimSpace(out.Store.Key)
	if out.Store.Table == "" {
		out.Store.Table = "market"
	}

	// dedupe boards by menu id, keep first
	seen := map[int]bool{}
	var boards []Board
	for _, b := range out.Sources.Batumae.Boards {
		if seen[b.MenuID] {
			res.addWarn("sources.batumae.boards: menu_id %d listed twice", b.MenuID)
			continue
		}
		seen[b.MenuID] = true
		b.Category = strings.TrimSpace(b.Category)
		boards = append(boards, b)
	}
	out.Sources.Batumae.Boards = boards

	// ---- store ----
	switch out.Store.Driver {
	case "postgrest":
		if out.Store.URL == "" {
			res.addErr("store.url is required (SUPABASE_URL or NEXT_PUBLIC_SUPABASE_URL)")
		} else if !strings.HasPrefix(out.Store.URL, "http://") && !strings.HasPrefix(out.Store.URL, "https://") {
			res.addErr("store.url must be an http(s) URL")
		}
		if out.Store.Key == "" {
			res.addErr("store.key is required (SUPABASE_SERVICE_ROLE_KEY or keychain)")
		}
	case "postgres":
		if out.Store.DSN == "" {
			res.addErr("store.dsn is required for driver postgres (DATABASE_URL)")
		}
	case "sqlite":
		if out.Store.Path == "" {
			res.addErr("store.path is required for driver sqlite")
		}
	case "memory":
		res.addWarn("store.driver is memory; nothing will be persisted")
	default:
		res.addErr("store.driver must be one of postgrest, postgres, sqlite, memory (got %q)", out.Store.Driver)
	}

	// ---- http ----
	if out.HTTP.TimeoutSeconds <= 0 {
		res.addErr("http.timeout_seconds must be > 0")
	}
	if out.HTTP.ReqPerSec > 5 {
		res.addWarn("http.req_per_sec is high (%.1f) and may get the crawler blocked.", out.HTTP.ReqPerSec)
	}

	// ---- sources ----
	if out.Sources.Window <= 0 {
		res.addErr("sources.window must be > 0")
	}
	if out.Sources.Batumae.Enabled {
		if len(out.Sources.Batumae.Boards) == 0 {
			res.addErr("sources.batumae.boards is empty while batumae is enabled")
		}
		for i, b := range out.Sources.Batumae.Boards {
			if b.MenuID <= 0 {
				res.addErr("sources.batumae.boards[%d].menu_id must be > 0", i)
			}
			if b.Category == "" {
				res.addErr("sources.batumae.boards[%d].category is required", i)
			}
		}
	}
	if !out.Sources.Junggeomdan.Enabled && !out.Sources.Batumae.Enabled && !out.Sources.Joongum.Enabled {
		res.addWarn("no sources enabled; runs will do nothing")
	}

	// ---- schedule ----
	if out.Schedule.IntervalMinutes <= 0 {
		res.addErr("schedule.interval_minutes must be > 0")
	} else if out.Schedule.IntervalMinutes < 10 {
		res.addWarn("schedule.interval_minutes is very low (%d) and may cause rate limits.", out.Schedule.IntervalMinutes)
	}

	if out.Events.NATSURL != "" && out.Events.Subject == "" {
		res.addErr("events.subject is required when events.nats_url is set")
	}

	return out, res
}
