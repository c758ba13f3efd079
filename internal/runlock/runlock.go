// Package runlock keeps two crawler runs on one host from overlapping.
package runlock

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"
)

var ErrHeld = eris.New("runlock: another run holds the lock")

type Lock struct {
	fl *flock.Flock
}

// Acquire takes <dir>/crawler.lock without blocking. ErrHeld means someone else has it.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "runlock: mkdir %s", dir)
	}
	fl := flock.New(filepath.Join(dir, "crawler.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, eris.Wrap(err, "runlock: lock")
	}
	if !ok {
		return nil, ErrHeld
	}
	return &Lock{fl: fl}, nil
}

func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
