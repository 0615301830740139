// Package controller implements the engine's Controller (C5): the single
// interactive driver loop that routes tasks between the Input Queue (C3) and
// the Worker Pool (C4), and owns the quiescence protocol that decides when a
// session has reached a fixed point.
package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/handler"
	"github.com/meticulous-run/meticulous/pkg/interaction"
	"github.com/meticulous-run/meticulous/pkg/logger"
	"github.com/meticulous-run/meticulous/pkg/progress"
	"github.com/meticulous-run/meticulous/pkg/task"
	"github.com/meticulous-run/meticulous/pkg/taskqueue"
	"github.com/meticulous-run/meticulous/pkg/workerpool"
)

var ctrlLog = logger.New("controller")

// Controller routes tasks by their Interactive flag, runs the single
// interactive driver loop, and coordinates shutdown between the queue and
// the worker pool.
type Controller struct {
	queue    *taskqueue.Queue
	pool     *workerpool.Pool
	registry *handler.Registry
	progress *progress.Registry

	mu      sync.Mutex
	cond    *sync.Cond
	running bool
}

// New constructs a Controller and registers the built-in wait_threadpool and
// force_quit anchor handlers into registry. Callers must still register
// every per-repository pipeline handler before calling Run.
func New(queue *taskqueue.Queue, pool *workerpool.Pool, registry *handler.Registry, prog *progress.Registry) *Controller {
	c := &Controller{queue: queue, pool: pool, registry: registry, progress: prog}
	c.cond = sync.NewCond(&c.mu)
	registry.Register(constants.WaitThreadpoolTask, c.waitThreadpoolFactory())
	registry.Register(constants.ForceQuitTask, c.forceQuitFactory())
	return c
}

// Add routes t to the Input Queue if it is interactive, or to the Worker
// Pool otherwise, then wakes anything waiting on cond (notably a pending
// wait_threadpool retry).
func (c *Controller) Add(t task.Task) error {
	if t.Interactive {
		if err := c.queue.Add(t); err != nil {
			return fmt.Errorf("controller: add: %w", err)
		}
	} else {
		c.pool.Submit(t, func() workerpool.Runner {
			return func(ctx context.Context, t task.Task) error {
				run, err := c.registry.Build(t)
				if err != nil {
					return err
				}
				return run(ctx)
			}
		})
	}

	c.progress.Add([]string{"controller"}, fmt.Sprintf("pending: %d", c.queue.Len()))
	c.mu.Lock()
	c.cond.Broadcast()
	c.mu.Unlock()
	return nil
}

// PeekInput returns the smallest-priority interactive task without removing it.
func (c *Controller) PeekInput() (task.Task, bool) {
	return c.queue.Peek()
}

// TasksEmpty reports whether the Worker Pool is idle. This is deliberately
// the pool's emptiness, not the queue's: the queue always holds at least the
// wait_threadpool/force_quit anchors while the controller is running.
func (c *Controller) TasksEmpty() bool {
	return c.pool.Empty()
}

// Quit stops the driver loop after its current iteration.
func (c *Controller) Quit() {
	c.mu.Lock()
	c.running = false
	c.cond.Broadcast()
	c.mu.Unlock()
}

// wait waits on cond for up to timeout or until the next Broadcast, whichever
// comes first. Only the single driver goroutine calls this (from Run and from
// inside the wait_threadpool handler), so a stray goroutine left behind by a timeout
// firing first is harmless: it drains on the next Add or Quit.
func (c *Controller) wait(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		c.mu.Lock()
		c.cond.Wait()
		c.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
	}
}

func (c *Controller) waitThreadpoolFactory() handler.Factory {
	return func(t task.Task) handler.Runner {
		return func(ctx context.Context) error {
			for {
				if next, ok := c.PeekInput(); ok && next.Priority < constants.AnchorWaitThreadpoolPriority {
					return c.Add(task.WaitThreadpoolAnchor())
				}
				if c.TasksEmpty() {
					c.Quit()
					return nil
				}
				ctrlLog.Printf("quiescence check: worker pool still busy, waiting up to %s", constants.QuiescenceWaitTimeout)
				c.wait(constants.QuiescenceWaitTimeout)
			}
		}
	}
}

func (c *Controller) forceQuitFactory() handler.Factory {
	return func(t task.Task) handler.Runner {
		return func(ctx context.Context) error {
			c.Quit()
			return nil
		}
	}
}

// Save drains the Worker Pool and returns the concatenation of the Input
// Queue's remaining tasks and the pool's saved (arrived-too-late) tasks, in
// that order, forming the persistable workload.
func (c *Controller) Save() ([]task.Task, error) {
	poolSaved, err := c.pool.Save()
	if err != nil {
		ctrlLog.Error("worker pool drain reported an error during save", err)
	}
	out := c.queue.Snapshot()
	out = append(out, poolSaved...)
	return out, nil
}

// Run executes the interactive driver loop: pop the smallest-priority
// interactive task, build its handler, invoke it synchronously, repeat,
// until Quit is called. A handler error (HandlerException) aborts the loop
// and propagates to the caller so the session driver can persist the
// partially-drained workload. interaction is made available to handlers
// through the Context pattern; this package does not reference it directly,
// since routing it is the per-task handler factory's job (see pkg/pipeline).
func (c *Controller) Run(ctx context.Context, port interaction.Port) ([]task.Task, error) {
	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	for {
		c.mu.Lock()
		running := c.running
		c.mu.Unlock()
		if !running {
			break
		}

		t, ok := c.queue.Pop()
		if !ok {
			// Invariant 3 of the data model guarantees an anchor is always
			// present while running; an empty pop here means a handler
			// mis-registered the anchors. Wait briefly rather than spin.
			c.wait(constants.QuiescenceWaitTimeout)
			continue
		}

		run, err := c.registry.Build(t)
		if err != nil {
			saved, _ := c.Save()
			return saved, fmt.Errorf("controller: %s: %w", t.Name, err)
		}

		c.progress.Add([]string{"controller"}, fmt.Sprintf("running: %s", t.Name))
		if err := run(ctx); err != nil {
			saved, _ := c.Save()
			return saved, fmt.Errorf("controller: handler %s failed: %w", t.Name, err)
		}
	}

	return c.Save()
}
