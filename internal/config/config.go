package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

type Board struct {
	MenuID   int    `yaml:"menu_id"`
	Category string `yaml:"category"`
}

type Config struct {
	App struct {
		Listen  string `yaml:"listen"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Store struct {
		Driver string `yaml:"driver"` // postgrest | postgres | sqlite | memory
		URL    string `yaml:"url"`
		Key    string `yaml:"key"`
		DSN    string `yaml:"dsn"`
		Path   string `yaml:"path"`
		Table  string `yaml:"table"`
	} `yaml:"store"`

	HTTP struct {
		UserAgent      string  `yaml:"user_agent"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		ReqPerSec      float64 `yaml:"req_per_sec"`
		Burst          int     `yaml:"burst"`
	} `yaml:"http"`

	Sources struct {
		Window               int  `yaml:"window"`
		PrecheckBeforeDetail bool `yaml:"precheck_before_detail"`

		Junggeomdan struct {
			Enabled bool   `yaml:"enabled"`
			FeedURL string `yaml:"feed_url"`
		} `yaml:"junggeomdan"`

		Batumae struct {
			Enabled bool    `yaml:"enabled"`
			Boards  []Board `yaml:"boards"`
		} `yaml:"batumae"`

		Joongum struct {
			Enabled bool   `yaml:"enabled"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"joongum"`
	} `yaml:"sources"`

	Schedule struct {
		IntervalMinutes int `yaml:"interval_minutes"`
	} `yaml:"schedule"`

	Events struct {
		NATSURL string `yaml:"nats_url"`
		Subject string `yaml:"subject"`
	} `yaml:"events"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | console
	} `yaml:"log"`
}

// Default is what a run uses when no config file exists.
func Default() Config {
	var cfg Config
	cfg.App.Listen = "127.0.0.1:38472"
	cfg.App.DataDir = "data"
	cfg.Store.Driver = "postgrest"
	cfg.Store.Table = "market"
	cfg.HTTP.TimeoutSeconds = 20
	cfg.HTTP.ReqPerSec = 1
	cfg.HTTP.Burst = 2
	cfg.Sources.Window = 5
	cfg.Sources.PrecheckBeforeDetail = true
	cfg.Sources.Junggeomdan.Enabled = true
	cfg.Sources.Batumae.Enabled = true
	cfg.Sources.Batumae.Boards = []Board{
		{MenuID: 302, Category: "125cc 미만"},
		{MenuID: 272, Category: "125cc 초과"},
	}
	cfg.Schedule.IntervalMinutes = 60
	cfg.Events.Subject = "motoieum.listing.created"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, eris.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, eris.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}
