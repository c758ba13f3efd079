package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mdeeno/motoieum/internal/config"
	"github.com/mdeeno/motoieum/internal/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manages the store service key in the OS keychain.",
}

func init() {
	secretCmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Reads the service key from stdin and stores it for the configured store.url.",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := storeAccount()
			if err != nil {
				return err
			}
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return eris.Wrap(err, "read key from stdin")
			}
			if err := secrets.SetStoreKey(acct, strings.TrimSpace(line)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "stored", acct)
			return nil
		},
	})
	secretCmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Removes the stored service key.",
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := storeAccount()
			if err != nil {
				return err
			}
			return secrets.DeleteStoreKey(acct)
		},
	})
	rootCmd.AddCommand(secretCmd)
}

func storeAccount() (string, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return "", err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return "", err
	}
	config.OverlayEnv(&cfg, nil)
	if cfg.Store.URL == "" {
		return "", eris.New("store.url is not set (config or SUPABASE_URL)")
	}
	return secrets.StoreKeyAccount(cfg.Store.URL), nil
}
