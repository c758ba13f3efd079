package secrets

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the crawler's secrets in the OS keychain.
	KeyringService = "motoieum"
)

var ErrNotFound = eris.New("store key not found (set SUPABASE_SERVICE_ROLE_KEY or store it in the keychain)")

// StoreKeyAccount names the keychain entry for a store endpoint, one per project host.
func StoreKeyAccount(storeURL string) string {
	host := strings.TrimSpace(storeURL)
	if u, err := url.Parse(host); err == nil && u.Host != "" {
		host = u.Host
	}
	return "motoieum:store:" + strings.ToLower(host)
}

func GetStoreKey(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", ErrNotFound
	}
	key, err := keyring.Get(KeyringService, account)
	if err != nil || strings.TrimSpace(key) == "" {
		return "", ErrNotFound
	}
	return key, nil
}

func SetStoreKey(account, key string) error {
	if strings.TrimSpace(account) == "" {
		return eris.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return eris.New("key is empty")
	}
	return eris.Wrap(keyring.Set(KeyringService, account, key), "keyring set")
}

func DeleteStoreKey(account string) error {
	if strings.TrimSpace(account) == "" {
		return eris.New("keyring account name is empty")
	}
	return eris.Wrap(keyring.Delete(KeyringService, account), "keyring delete")
}
