// Package workerpool implements the engine's bounded Worker Pool (C4): a fixed
// number of goroutines draining dispatched tasks, built on
// sourcegraph/conc/pool for panic-safe, context-aware bounded concurrency.
package workerpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/logger"
	"github.com/meticulous-run/meticulous/pkg/store"
	"github.com/meticulous-run/meticulous/pkg/task"
)

var poolLog = logger.New("workerpool")

// Build lazily constructs the Runner for a task; the pool only calls it once
// it has decided to actually execute the task (not when draining).
type Build func() Runner

// Runner executes a single dispatched task. The context passed in is marked
// via store.WithWorkerContext, so any Store guard configured by the caller's
// session takes effect transparently.
type Runner func(ctx context.Context, t task.Task) error

// Pool bounds concurrent task execution to a fixed worker count. Submit
// blocks the caller once every worker is busy, which is what gives the
// Controller (C5) backpressure: it cannot outrun the pool's draining rate.
//
// Once Drain has been called, no future Submit executes; the task is
// recorded into the saved list instead (invariant 5 of the data model).
type Pool struct {
	p        *pool.ContextPool
	inFlight int64
	size     int

	mu       sync.Mutex
	draining bool
	saved    []task.Task
}

// New constructs a Pool with the given worker count. size <= 0 falls back to
// the engine default.
func New(ctx context.Context, size int) *Pool {
	if size <= 0 {
		size = constants.DefaultWorkerCount
	}
	// Individual task failures (HandlerException, WorkerException) are logged
	// and do not cancel sibling tasks; only caller-driven ctx cancellation does.
	p := pool.New().WithContext(ctx).WithMaxGoroutines(size)
	poolLog.Printf("starting worker pool with %d workers", size)
	return &Pool{p: p, size: size}
}

// Size reports the configured worker count.
func (wp *Pool) Size() int { return wp.size }

// InFlight reports the number of tasks currently executing.
func (wp *Pool) InFlight() int64 { return atomic.LoadInt64(&wp.inFlight) }

// Submit dispatches t to run, blocking until a worker slot is free, unless the
// pool is already draining, in which case t is appended to the saved list and
// never executed.
func (wp *Pool) Submit(t task.Task, build Build) {
	wp.mu.Lock()
	if wp.draining {
		wp.saved = append(wp.saved, t)
		wp.mu.Unlock()
		return
	}
	wp.mu.Unlock()

	atomic.AddInt64(&wp.inFlight, 1)
	wp.p.Go(func(ctx context.Context) error {
		defer atomic.AddInt64(&wp.inFlight, -1)
		workerCtx := store.WithWorkerContext(ctx)
		run := build()
		if err := run(workerCtx, t); err != nil {
			poolLog.Error(fmt.Sprintf("task %s failed", t.Name), err)
			return err
		}
		return nil
	})
}

// Drain marks the pool as draining (rejecting further work into the saved
// list) and blocks until every in-flight task has completed naturally,
// returning the errors of the failed tasks combined into one, if any. Workers do not honor
// interruption mid-call.
func (wp *Pool) Drain() error {
	wp.mu.Lock()
	wp.draining = true
	wp.mu.Unlock()
	return wp.p.Wait()
}

// Save drains the pool and returns the tasks that arrived too late to run.
func (wp *Pool) Save() ([]task.Task, error) {
	err := wp.Drain()
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.saved, err
}

// Empty reports whether the pool currently has no tasks executing. The
// quiescence protocol (wait_threadpool) polls this to decide whether the
// run has reached a fixed point.
func (wp *Pool) Empty() bool {
	return wp.InFlight() == 0
}
