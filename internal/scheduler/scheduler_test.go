package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEveryRunsImmediatelyAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n atomic.Int32

	done := make(chan struct{})
	go func() {
		Every(ctx, 10*time.Millisecond, "test", nil, func(context.Context) error {
			if n.Add(1) == 3 {
				cancel()
			}
			return errors.New("ignored")
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Every did not return after cancel")
	}
	assert.GreaterOrEqual(t, n.Load(), int32(3))
}

func TestEveryZeroIntervalRunsOnce(t *testing.T) {
	var n atomic.Int32
	Every(context.Background(), 0, "once", nil, func(context.Context) error {
		n.Add(1)
		return nil
	})
	assert.Equal(t, int32(1), n.Load())
}
