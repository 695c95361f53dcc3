package loader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// loadBarrier fans asynchronous resolution tasks out onto a worker pool and fans them back
// in: Wait returns once every task submitted through Go has finished, together with the
// combined list of errors recorded by tasks or through Fail.
//
// Go must only be called from the load's control goroutine, never from inside a task, so a
// full task queue can never block a worker.
type loadBarrier struct {
	ctx  context.Context
	pool worker.DynamicWorkerPool
	log  *zap.Logger

	wg      sync.WaitGroup
	pending atomic.Int64
	nextID  atomic.Int64

	mu   sync.Mutex
	errs error
}

// newLoadBarrier creates a barrier whose tasks receive ctx. A nil pool runs each task on
// its own goroutine.
func newLoadBarrier(ctx context.Context, pool worker.DynamicWorkerPool, log *zap.Logger) *loadBarrier {
	return &loadBarrier{
		ctx:  ctx,
		pool: pool,
		log:  log,
	}
}

// Go schedules fn as a pending task. A returned error or a panic is recorded; the task
// still counts as settled.
//
// Parameters:
//   - name: a short description used in logs and panic errors
//   - fn: the task body
func (b *loadBarrier) Go(name string, fn func(ctx context.Context) error) {
	b.wg.Add(1)
	b.pending.Add(1)

	task := worker.Task{
		ID:      int(b.nextID.Add(1)),
		Payload: name,
		Do: func() (any, error) {
			defer b.settle()
			defer func() {
				if r := recover(); r != nil {
					b.Fail(fmt.Errorf("%s: panic: %v", name, r))
				}
			}()

			if err := fn(b.ctx); err != nil {
				b.Fail(err)
				return nil, err
			}
			return nil, nil
		},
	}

	if b.pool == nil {
		go task.Do()
		return
	}
	b.pool.SubmitTask(task)
}

// Fail records err without scheduling anything.
func (b *loadBarrier) Fail(err error) {
	if err == nil {
		return
	}
	b.log.Debug("load step failed", zap.Error(err))
	b.mu.Lock()
	b.errs = multierr.Append(b.errs, err)
	b.mu.Unlock()
}

// Pending returns the number of tasks that have not settled yet.
func (b *loadBarrier) Pending() int {
	return int(b.pending.Load())
}

// Err returns the errors recorded so far, combined.
func (b *loadBarrier) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errs
}

// Wait blocks until every scheduled task has settled and returns the combined errors.
func (b *loadBarrier) Wait() error {
	b.wg.Wait()
	return b.Err()
}

func (b *loadBarrier) settle() {
	b.pending.Add(-1)
	b.wg.Done()
}
