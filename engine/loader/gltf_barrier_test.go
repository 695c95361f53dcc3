package loader

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func TestBarrierWaitsForEveryTask(t *testing.T) {
	pool := worker.NewDynamicWorkerPool(2, 4, time.Second)
	t.Cleanup(pool.Stop)
	b := newLoadBarrier(context.Background(), pool, zap.NewNop())

	var done atomic.Int32
	for i := 0; i < 16; i++ {
		b.Go("task", func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			done.Add(1)
			return nil
		})
	}

	require.NoError(t, b.Wait())
	assert.Equal(t, int32(16), done.Load())
	assert.Zero(t, b.Pending())
}

func TestBarrierCollectsErrorsAndPanics(t *testing.T) {
	b := newLoadBarrier(context.Background(), nil, zap.NewNop())
	boom := errors.New("boom")

	b.Go("fails", func(ctx context.Context) error { return boom })
	b.Go("panics", func(ctx context.Context) error { panic("bad state") })
	b.Go("succeeds", func(ctx context.Context) error { return nil })
	b.Fail(errors.New("recorded"))
	b.Fail(nil)

	err := b.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, multierr.Errors(err), 3)
	assert.Contains(t, err.Error(), "panics: panic: bad state")
}

func TestBarrierPassesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := newLoadBarrier(ctx, nil, zap.NewNop())

	b.Go("cancelled", func(ctx context.Context) error { return ctx.Err() })
	assert.ErrorIs(t, b.Wait(), context.Canceled)
}
