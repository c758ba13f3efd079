package config

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SaveAtomic replaces path with cfg. The old file is kept as path.bak.
// Store credentials (key, dsn) are blanked: they come from the environment or the keychain.
func SaveAtomic(path string, cfg Config) error {
	cfg.Store.Key = ""
	cfg.Store.DSN = ""

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "config: mkdir %s", dir)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "config: temp file")
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(b); err != nil {
		f.Close()
		return eris.Wrapf(err, "config: write %s", tmp)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return eris.Wrapf(err, "config: sync %s", tmp)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "config: close %s", tmp)
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			return eris.Wrapf(err, "config: backup %s", path)
		}
	}
	return eris.Wrapf(os.Rename(tmp, path), "config: replace %s", path)
}
