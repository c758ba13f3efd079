package poll

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mdeeno/motoieum/internal/runlock"
	"github.com/mdeeno/motoieum/internal/scrape/types"
)

var ErrRunning = eris.New("poll: a run is already in progress")

type Runner interface {
	RunOnce(ctx context.Context) types.Report
}

// Poller wraps a Runner with run-at-most-once semantics and the status the ops API shows.
type Poller struct {
	Runner Runner
	Log    *zap.Logger
	// LockDir holds crawler.lock; empty skips the cross-process lock.
	LockDir string
	// OnFinished receives every completed report.
	OnFinished func(rep types.Report)

	running atomic.Bool
	status  atomic.Value // types.ScrapeStatus
	wg      sync.WaitGroup
}

func (p *Poller) Status() types.ScrapeStatus {
	st, _ := p.status.Load().(types.ScrapeStatus)
	st.Running = p.running.Load()
	return st
}

// RunOnce runs synchronously. ErrRunning (or runlock.ErrHeld) means nothing was done.
func (p *Poller) RunOnce(ctx context.Context) (types.Report, error) {
	if !p.running.CompareAndSwap(false, true) {
		return types.Report{}, ErrRunning
	}
	defer p.running.Store(false)

	if p.LockDir != "" {
		lk, err := runlock.Acquire(p.LockDir)
		if err != nil {
			return types.Report{}, err
		}
		defer func() { _ = lk.Release() }()
	}

	st := p.Status()
	st.LastRunAt = time.Now().Format(time.RFC3339)
	p.status.Store(st)

	rep := p.Runner.RunOnce(ctx)

	now := time.Now().Format(time.RFC3339)
	st = p.Status()
	st.LastRunAt = now
	st.LastAdded = rep.Inserted()
	if failed := rep.Failed(); len(failed) > 0 {
		st.LastError = "list fetch failed: " + strings.Join(failed, ", ")
		p.logger().Warn("run finished with failures", zap.Strings("failed_sources", failed), zap.Int("added", st.LastAdded))
	} else if err := ctx.Err(); err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
		st.LastOkAt = now
		p.logger().Info("run ok", zap.Int("added", st.LastAdded))
	}
	p.status.Store(st)

	if p.OnFinished != nil {
		p.OnFinished(rep)
	}
	return rep, nil
}

// Start kicks off a background run. It returns false when one is already going.
func (p *Poller) Start(ctx context.Context) bool {
	if p.running.Load() {
		return false
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if _, err := p.RunOnce(ctx); err != nil {
			p.logger().Info("background run not started", zap.Error(err))
		}
	}()
	return true
}

// Wait blocks until background runs started with Start have returned.
func (p *Poller) Wait() { p.wg.Wait() }

func (p *Poller) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}
