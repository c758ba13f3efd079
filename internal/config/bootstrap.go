package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// EnsureUserConfig returns <dataDir>/config.yml. On first use it is written from
// seedPath, or from Default() when seedPath is empty or unreadable; created reports that.
func EnsureUserConfig(dataDir, seedPath string) (path string, created bool, err error) {
	path = filepath.Join(dataDir, "config.yml")

	switch _, err := os.Stat(path); {
	case err == nil:
		return path, false, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", false, eris.Wrapf(err, "config: stat %s", path)
	}

	cfg := Default()
	if seedPath != "" {
		if seeded, err := Load(seedPath); err == nil {
			cfg = seeded
		}
	}
	cfg.App.DataDir = dataDir
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(dataDir, "motoieum.db")
	}
	if err := SaveAtomic(path, cfg); err != nil {
		return "", false, err
	}
	return path, true, nil
}
