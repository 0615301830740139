// Package task defines the closed set of task variants the engine dispatches,
// and their JSON wire representation.
//
// The specification describes tasks as open-ended JSON objects; this package
// instead models a closed tagged union keyed on Name, with per-variant payload
// fields, and an UnmarshalJSON that rejects unrecognized task names outright.
// This catches a typo'd or stale task name at deserialization time (loading a
// saved workload) rather than at handler-lookup time deep into a run.
package task

import (
	"encoding/json"
	"fmt"

	"github.com/meticulous-run/meticulous/pkg/constants"
)

// Task is an immutable, JSON-serializable unit of work. Two tasks are considered
// equal for queue tie-breaking and round-trip purposes iff their JSON encodings
// are byte-identical (see Snapshot).
type Task struct {
	Name        constants.TaskName `json:"name"`
	Interactive bool               `json:"interactive"`
	Priority    constants.Priority `json:"priority,omitempty"`

	// Reponame is the payload carried by every per-repository pipeline task
	// (repository_checkout, repository_summary, collect_nonwords, submit, cleanup).
	// It is empty for repository_load (until resolved), and for the two anchors.
	Reponame string `json:"reponame,omitempty"`
}

// knownTaskNames is the closed set of task names the engine recognizes.
// A task JSON object naming anything else fails to deserialize.
var knownTaskNames = map[constants.TaskName]bool{
	constants.WaitThreadpoolTask:     true,
	constants.ForceQuitTask:          true,
	constants.RepositoryLoadTask:     true,
	constants.RepositoryEndTask:      true,
	constants.RepositoryCheckoutTask: true,
	constants.RepositorySummaryTask:  true,
	constants.CollectNonwordsTask:    true,
	constants.SubmitTask:             true,
	constants.CleanupTask:            true,
	constants.PromptQuitTask:         true,
}

// IsKnownTaskName reports whether name is a registered task variant.
func IsKnownTaskName(name constants.TaskName) bool {
	return knownTaskNames[name]
}

// taskWire mirrors Task's JSON shape; used to avoid infinite recursion in
// UnmarshalJSON while still validating the variant before accepting the value.
type taskWire Task

// UnmarshalJSON rejects task objects whose name is not in the closed variant set.
func (t *Task) UnmarshalJSON(data []byte) error {
	var wire taskWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if !IsKnownTaskName(wire.Name) {
		return fmt.Errorf("task: unrecognized task name %q", wire.Name)
	}
	*t = Task(wire)
	return nil
}

// New constructs a non-interactive task with the given name and optional repo payload.
func New(name constants.TaskName, reponame string) Task {
	return Task{Name: name, Interactive: false, Reponame: reponame}
}

// NewInteractive constructs an interactive task at the given priority.
func NewInteractive(name constants.TaskName, priority constants.Priority, reponame string) Task {
	return Task{Name: name, Interactive: true, Priority: priority, Reponame: reponame}
}

// WaitThreadpoolAnchor returns a fresh copy of the quiescence-check anchor task.
func WaitThreadpoolAnchor() Task {
	return NewInteractive(constants.WaitThreadpoolTask, constants.AnchorWaitThreadpoolPriority, "")
}

// ForceQuitAnchor returns a fresh copy of the unconditional-shutdown anchor task.
func ForceQuitAnchor() Task {
	return NewInteractive(constants.ForceQuitTask, constants.AnchorForceQuitPriority, "")
}

// Snapshot returns a deterministic byte encoding of the task, used by the Input
// Queue to break priority ties and by the Store to test round-trip equality.
func (t Task) Snapshot() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("task: snapshot failed: %w", err)
	}
	return string(b), nil
}

// Equal reports whether two tasks are JSON-equal (invariant 4 of the data model).
func Equal(a, b Task) bool {
	sa, errA := a.Snapshot()
	sb, errB := b.Snapshot()
	if errA != nil || errB != nil {
		return false
	}
	return sa == sb
}
