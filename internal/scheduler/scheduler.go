package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

// Every runs task now and then once per interval until ctx is done. Runs are
// synchronous, so a tick that lands during a run is skipped. interval <= 0 runs once.
func Every(ctx context.Context, interval time.Duration, name string, log *zap.Logger, task Task) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("task", name))

	run := func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			log.Warn("task failed", zap.Error(err), zap.Duration("took", time.Since(start)))
			return
		}
		log.Debug("task done", zap.Duration("took", time.Since(start)))
	}

	run()
	if interval <= 0 {
		return
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if ctx.Err() != nil {
				return
			}
			run()
		}
	}
}
