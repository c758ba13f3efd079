package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates the listing table and its unique index (sqlite and postgres drivers).",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), loadOpts{path: cfgPath})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := migrateStore(cmd.Context(), a); err != nil {
			return err
		}
		a.log.Info("schema ready", zap.String("driver", a.cfg.Store.Driver), zap.String("table", a.cfg.Store.Table))
		return nil
	},
}
