// Package taskqueue implements the engine's Input Queue (C3): a priority
// queue of pending tasks ordered by smallest-priority-first, with ties broken
// deterministically so queue state round-trips identically through a save/load
// cycle.
package taskqueue

import (
	"container/heap"
	"context"
	"fmt"
	"sync"

	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/store"
	"github.com/meticulous-run/meticulous/pkg/task"
)

// entry pairs a task with its deterministic snapshot, computed once at push
// time so repeated Peek/Pop calls don't re-marshal.
type entry struct {
	t        task.Task
	snapshot string
	seq      int64
}

// heapSlice implements container/heap.Interface over entries, ordered by
// ascending priority and then by ascending snapshot for deterministic
// tie-breaking, falling back to insertion order (seq) for byte-identical
// tasks so FIFO order is preserved among true duplicates.
type heapSlice []*entry

func (h heapSlice) Len() int { return len(h) }
func (h heapSlice) Less(i, j int) bool {
	// A strictly smaller priority always pops first; the anchor tasks sit at
	// 999/1000 so they surface only once nothing more urgent remains.
	if h[i].t.Priority != h[j].t.Priority {
		return h[i].t.Priority < h[j].t.Priority
	}
	if h[i].snapshot != h[j].snapshot {
		return h[i].snapshot < h[j].snapshot
	}
	return h[i].seq < h[j].seq
}
func (h heapSlice) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *heapSlice) Push(x any)   { *h = append(*h, x.(*entry)) }
func (h *heapSlice) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Queue is a concurrency-safe, priority-ordered task queue.
type Queue struct {
	mu   sync.Mutex
	heap heapSlice
	next int64
}

// New returns an empty Queue.
func New() *Queue {
	q := &Queue{}
	heap.Init(&q.heap)
	return q
}

// Add pushes t onto the queue. The smallest Priority pops first; among equal
// priorities, the task whose JSON snapshot sorts first pops first.
func (q *Queue) Add(t task.Task) error {
	snap, err := t.Snapshot()
	if err != nil {
		return fmt.Errorf("taskqueue: add: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(&q.heap, &entry{t: t, snapshot: snap, seq: q.next})
	q.next++
	return nil
}

// Pop removes and returns the smallest-priority task. ok is false if the queue
// is empty.
func (q *Queue) Pop() (task.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.heap.Len() == 0 {
		return task.Task{}, false
	}
	e := heap.Pop(&q.heap).(*entry)
	return e.t, true
}

// Peek returns the smallest-priority task without removing it.
func (q *Queue) Peek() (task.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.heap.Len() == 0 {
		return task.Task{}, false
	}
	return q.heap[0].t, true
}

// Len reports the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}

// Snapshot returns every pending task in pop order, without draining the queue.
func (q *Queue) Snapshot() []task.Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	cp := make(heapSlice, len(q.heap))
	copy(cp, q.heap)
	heap.Init(&cp)

	out := make([]task.Task, 0, len(cp))
	for cp.Len() > 0 {
		out = append(out, heap.Pop(&cp).(*entry).t)
	}
	return out
}

// Save persists the queue's current contents (in pop order) to the Store under
// the multiworker_workload key, so a later Load reconstructs identical pop
// order (the round-trip property of the data model). This is the session
// driver's sole persistence path for unfinished work between invocations.
func (q *Queue) Save(ctx context.Context, s *store.Store) error {
	return s.SetJSON(ctx, string(constants.MultiworkerWorkloadKey), q.Snapshot())
}

// Load builds a new Queue holding the workload persisted under
// multiworker_workload, preserving the saved pop order as insertion order.
func Load(ctx context.Context, s *store.Store) (*Queue, error) {
	var tasks []task.Task
	if err := s.GetJSON(ctx, string(constants.MultiworkerWorkloadKey), &tasks); err != nil {
		return nil, fmt.Errorf("taskqueue: load: %w", err)
	}

	q := New()
	for _, t := range tasks {
		if err := q.Add(t); err != nil {
			return nil, err
		}
	}
	return q, nil
}
