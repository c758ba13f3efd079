package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
)

// LoadDotEnv loads the first .env-style file that exists. Variables already set in the
// process environment win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return eris.Wrapf(err, "config: load %s", p)
		}
		return nil
	}
	return nil
}

// OverlayEnv copies deployment settings from the environment onto cfg.
func OverlayEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				return v
			}
		}
		return ""
	}

	if v := first("SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"); v != "" {
		cfg.Store.URL = v
	}
	if v := first("SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_KEY"); v != "" {
		cfg.Store.Key = v
	}
	if v := first("DATABASE_URL"); v != "" {
		cfg.Store.DSN = v
	}
	if v := first("MOTOIEUM_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := first("NATS_URL"); v != "" {
		cfg.Events.NATSURL = v
	}
	if v := first("MOTOIEUM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
