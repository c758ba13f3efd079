package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mdeeno/motoieum/internal/config"
	"github.com/mdeeno/motoieum/internal/httpapi"
	"github.com/mdeeno/motoieum/internal/poll"
	"github.com/mdeeno/motoieum/internal/scheduler"
	"github.com/mdeeno/motoieum/internal/scrape/types"
	"github.com/mdeeno/motoieum/internal/store"
)

var (
	listenAddr string
	noSchedule bool
)

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "override app.listen")
	serveCmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "only crawl when POST /scrape/run is called")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Crawls on schedule and serves the local ops API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		path := cfgPath
		if !cmd.Flags().Changed("config") {
			// no explicit file: seed <data_dir>/config.yml from the bundled defaults
			dataDir := os.Getenv("MOTOIEUM_DATA_DIR")
			if dataDir == "" {
				dataDir = config.Default().App.DataDir
			}
			p, created, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
			if err != nil {
				return eris.Wrap(err, "config bootstrap")
			}
			if created {
				fmt.Fprintln(cmd.ErrOrStderr(), "wrote default config to", p)
			}
			path = p
		}

		a, err := newApp(ctx, loadOpts{path: path})
		if err != nil {
			return err
		}
		defer a.Close()
		log := a.log

		if a.cfg.Store.Driver == store.DriverSQLite {
			if err := migrateStore(ctx, a); err != nil {
				return err
			}
		}

		p := &poll.Poller{
			Runner:  a.runner,
			Log:     log.Named("poll"),
			LockDir: a.cfg.App.DataDir,
			OnFinished: func(rep types.Report) {
				a.notifier.ScrapeFinished(map[string]any{
					"inserted": rep.Inserted(),
					"failed":   rep.Failed(),
				})
			},
		}

		var cfgVal atomic.Value
		cfgVal.Store(a.cfg)

		deps := httpapi.Deps{
			Hub:           a.hub,
			Poller:        p,
			Log:           log.Named("http"),
			BaseCtx:       ctx,
			Table:         a.cfg.Store.Table,
			CfgVal:        &cfgVal,
			UserCfgPath:   path,
			ShutdownToken: os.Getenv("MOTOIEUM_SHUTDOWN_TOKEN"),
			Stop:          cancel,
		}
		if l, ok := a.store.(store.Lister); ok {
			deps.Lister = l
		}

		addr := a.cfg.App.Listen
		if listenAddr != "" {
			addr = listenAddr
		}
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return eris.Wrapf(err, "listen %s", addr)
		}
		srv := &http.Server{
			Handler:           httpapi.Handler(deps),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			log.Info("listening", zap.String("addr", ln.Addr().String()))
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "http serve")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
			defer done()
			return srv.Shutdown(shutCtx)
		})
		if !noSchedule {
			interval := time.Duration(a.cfg.Schedule.IntervalMinutes) * time.Minute
			g.Go(func() error {
				scheduler.Every(gctx, interval, "scrape", log.Named("scheduler"), func(ctx context.Context) error {
					_, err := p.RunOnce(ctx)
					if errors.Is(err, poll.ErrRunning) {
						return nil
					}
					return err
				})
				return nil
			})
		}

		err = g.Wait()
		p.Wait()
		log.Info("stopped")
		return err
	},
}
