package commands

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/config"
	"github.com/mdeeno/motoieum/internal/events"
	"github.com/mdeeno/motoieum/internal/logging"
	"github.com/mdeeno/motoieum/internal/scrape"
	"github.com/mdeeno/motoieum/internal/scrape/fetch"
	"github.com/mdeeno/motoieum/internal/secrets"
	"github.com/mdeeno/motoieum/internal/store"
)

// app is everything a run needs, built once per process.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	store    store.Store
	hub      *events.Hub
	nats     *events.NATSPublisher
	runner   *scrape.Runner
	notifier events.Notifier
}

type loadOpts struct {
	path   string
	dryRun bool
}

// loadConfig resolves file, .env, environment and keychain, then validates.
// Any validation error stops startup before a single request is made.
func loadConfig(o loadOpts) (config.Config, []string, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load(o.path)
	if err != nil {
		return cfg, nil, err
	}
	config.OverlayEnv(&cfg, nil)

	if o.dryRun {
		cfg.Store.Driver = store.DriverMemory
	}
	if (cfg.Store.Driver == store.DriverPostgREST || cfg.Store.Driver == "") && cfg.Store.Key == "" && cfg.Store.URL != "" {
		key, err := secrets.GetStoreKey(secrets.StoreKeyAccount(cfg.Store.URL))
		if err != nil && !errors.Is(err, secrets.ErrNotFound) {
			return cfg, nil, err
		}
		cfg.Store.Key = key
	}

	cfg, v := config.NormalizeAndValidate(cfg)
	if err := v.Err(); err != nil {
		return cfg, v.Warnings, err
	}
	return cfg, v.Warnings, nil
}

func newApp(ctx context.Context, o loadOpts) (*app, error) {
	cfg, warns, err := loadConfig(o)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	for _, w := range warns {
		log.Warn("config", zap.String("warning", w))
	}

	st, err := store.Open(ctx, store.Options{
		Driver: cfg.Store.Driver,
		URL:    cfg.Store.URL,
		Key:    cfg.Store.Key,
		DSN:    cfg.Store.DSN,
		Path:   cfg.Store.Path,
	}, log.Named("store"))
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, store: st, hub: events.NewHub()}

	if cfg.Events.NATSURL != "" {
		pub, err := events.ConnectNATS(cfg.Events.NATSURL, cfg.Events.Subject)
		if err != nil {
			// notifications are optional; the crawl is not
			log.Warn("nats disabled", zap.Error(err))
		} else {
			a.nats = pub
		}
	}
	a.notifier = events.Notifier{Hub: a.hub, NATS: a.nats, Log: log.Named("events")}

	f := fetch.New(fetch.Options{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		ReqPerSec: cfg.HTTP.ReqPerSec,
		Burst:     cfg.HTTP.Burst,
	})
	a.runner = &scrape.Runner{
		Sources:              scrape.BuildSources(cfg, f, log.Named("source")),
		Writer:               scrape.Writer{Store: st, Table: cfg.Store.Table, Log: log.Named("writer")},
		Log:                  log.Named("runner"),
		OnInserted:           a.notifier.ListingCreated,
		PrecheckBeforeDetail: cfg.Sources.PrecheckBeforeDetail,
	}
	return a, nil
}

func (a *app) Close() {
	a.nats.Close()
	if err := a.store.Close(); err != nil {
		a.log.Warn("store close", zap.Error(err))
	}
	_ = a.log.Sync()
}

func migrateStore(ctx context.Context, a *app) error {
	m, ok := a.store.(store.Migrator)
	if !ok {
		return eris.Errorf("driver %s manages its own schema", a.cfg.Store.Driver)
	}
	return m.Migrate(ctx, a.cfg.Store.Table)
}
