package poll

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdeeno/motoieum/internal/runlock"
	"github.com/mdeeno/motoieum/internal/scrape/types"
)

type runnerFunc func(ctx context.Context) types.Report

func (f runnerFunc) RunOnce(ctx context.Context) types.Report { return f(ctx) }

func report(inserted int, failed ...string) types.Report {
	rep := types.NewReport()
	rep.For("a").Inserted = inserted
	for _, f := range failed {
		rep.For(f).ListFailed = true
	}
	return rep
}

func TestRunOnceUpdatesStatus(t *testing.T) {
	var finished []types.Report
	p := &Poller{
		Runner:     runnerFunc(func(context.Context) types.Report { return report(3) }),
		OnFinished: func(rep types.Report) { finished = append(finished, rep) },
	}

	_, err := p.RunOnce(context.Background())
	require.NoError(t, err)

	st := p.Status()
	assert.Equal(t, 3, st.LastAdded)
	assert.Empty(t, st.LastError)
	assert.NotEmpty(t, st.LastOkAt)
	assert.False(t, st.Running)
	assert.Len(t, finished, 1)
}

func TestRunOnceRecordsFailedSources(t *testing.T) {
	p := &Poller{Runner: runnerFunc(func(context.Context) types.Report { return report(1, "batumae:302:125cc 미만") })}

	_, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	st := p.Status()
	assert.Equal(t, "list fetch failed: batumae:302:125cc 미만", st.LastError)
	assert.Empty(t, st.LastOkAt)
	assert.Equal(t, 1, st.LastAdded)
}

func TestRunOnceRejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	p := &Poller{Runner: runnerFunc(func(context.Context) types.Report {
		close(entered)
		<-release
		return report(0)
	})}

	assert.True(t, p.Start(context.Background()))
	<-entered

	assert.True(t, p.Status().Running)
	_, err := p.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrRunning)
	assert.False(t, p.Start(context.Background()))

	close(release)
	p.Wait()
	assert.False(t, p.Status().Running)
}

func TestRunOnceHonoursRunLock(t *testing.T) {
	dir := t.TempDir()
	held, err := runlock.Acquire(dir)
	require.NoError(t, err)
	defer held.Release()

	called := false
	p := &Poller{LockDir: dir, Runner: runnerFunc(func(context.Context) types.Report {
		called = true
		return report(0)
	})}
	_, err = p.RunOnce(context.Background())
	assert.ErrorIs(t, err, runlock.ErrHeld)
	assert.False(t, called)
}
