package commands

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/poll"
	"github.com/mdeeno/motoieum/internal/store"
)

var (
	dryRun   bool
	lockDir  string
	printRep bool
)

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "crawl into an in-memory store; nothing is written")
	runCmd.Flags().StringVar(&lockDir, "lock-dir", "", "directory for crawler.lock (default: app.data_dir)")
	runCmd.Flags().BoolVar(&printRep, "report", false, "print the run report as JSON on stdout")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--dry-run] [--config <path>]",
	Short: "Makes one pass over every enabled source.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, loadOpts{path: cfgPath, dryRun: dryRun})
		if err != nil {
			return err
		}
		defer a.Close()

		if a.cfg.Store.Driver == store.DriverSQLite {
			// a fresh local file has no table yet
			if err := migrateStore(ctx, a); err != nil {
				return err
			}
		}

		dir := lockDir
		if dir == "" {
			dir = a.cfg.App.DataDir
		}
		p := &poll.Poller{Runner: a.runner, Log: a.log.Named("poll"), LockDir: dir}

		rep, err := p.RunOnce(ctx)
		if err != nil {
			return err
		}
		a.log.Info("done", zap.Int("inserted", rep.Inserted()), zap.Strings("failed_sources", rep.Failed()))

		if printRep {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		return nil
	},
}
