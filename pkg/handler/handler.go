// Package handler implements the engine's Handler Registry (C6): a lookup
// from task name to the factory that produces a Runner closure bound to
// whatever the task instance needs (its Reponame, the session's Store, the
// active Interaction Port).
//
// The specification describes handlers as closures built by a factory
// function captured over shared session state; this package keeps that
// pattern (each Factory is a closure over its owner's collaborators, such as
// pkg/pipeline's Pipeline struct) rather than an
// interface-per-handler design, since every handler needs the same small set
// of collaborators.
package handler

import (
	"context"
	"fmt"
	"sync"

	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/task"
)

// Runner executes one task instance to completion.
type Runner func(ctx context.Context) error

// Factory builds a Runner for a specific task instance, closing over
// whatever collaborators it needs from the code that defines it.
type Factory func(t task.Task) Runner

// Registry maps task names to their Factory.
type Registry struct {
	mu        sync.RWMutex
	factories map[constants.TaskName]Factory
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{factories: make(map[constants.TaskName]Factory)}
}

// Register binds name to factory, replacing any existing binding.
func (r *Registry) Register(name constants.TaskName, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// ErrNoHandler is returned by Build when no factory is registered for the
// task's name. The Controller treats this as HandlerException.
var ErrNoHandler = fmt.Errorf("handler: no factory registered")

// Build resolves t.Name to its Factory and invokes it, returning the bound Runner.
func (r *Registry) Build(t task.Task) (Runner, error) {
	r.mu.RLock()
	factory, ok := r.factories[t.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, t.Name)
	}
	return factory(t), nil
}

// Names returns the task names currently registered, for diagnostics.
func (r *Registry) Names() []constants.TaskName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]constants.TaskName, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	return out
}
