// Package interaction defines the engine's Interaction Port (C8): the small
// capability set through which the core solicits human input, and the
// well-known cancellation sentinel every implementation must honor.
//
// The specification allows any implementation satisfying these seven
// operations to drive the core (terminal prompt, HTTP form, chat bot). This
// package defines the contract and one terminal-backed implementation,
// Terminal (built on pkg/console prompts).
package interaction

import (
	"errors"
)

// ErrUserCancel is the well-known sentinel returned by GetInput and
// GetConfirmation when the operator aborts a prompt (e.g. Ctrl+C). The
// session driver catches it; the Controller does not.
var ErrUserCancel = errors.New("interaction: operator cancelled")

// Controller is the minimal view of the Controller (C5) that CheckQuit needs:
// enough to let a non-interactive port (web/chat) decide to stop once the
// worker pool is idle, without importing the full controller package (which in
// turn depends on this one).
type Controller interface {
	TasksEmpty() bool
}

// Port is the capability set the core consumes for human interaction. Every
// method may be called from the single interactive driver goroutine only.
type Port interface {
	// Send displays an informational line to the operator.
	Send(msg string)

	// GetInput reads a free-form line, or returns ErrUserCancel.
	GetInput(prompt string) (string, error)

	// GetConfirmation asks a yes/no question, pre-selecting def, or returns
	// ErrUserCancel.
	GetConfirmation(prompt string, def bool) (bool, error)

	// MakeChoice offers a menu of labelled choices and returns the chosen
	// value. choices maps a human-readable label to an opaque handle the
	// caller supplied; MakeChoice returns that same handle back.
	MakeChoice(choices map[string]any) (any, error)

	// CheckQuit is a policy hook: should the session stop now? A terminal
	// implementation prompts; a web/chat implementation typically answers
	// ctrl.TasksEmpty().
	CheckQuit(ctrl Controller) bool

	// CompleteRepo signals that the current repository's work has finished.
	// Optional hook; implementations may no-op.
	CompleteRepo()

	// AddRepoSave persists a correction recorded against reponame: addWord
	// replaces delWord across files in the checkout at repodir. Implementations
	// own the repository_saves record end to end; submit reads back whatever
	// they write.
	AddRepoSave(reponame, repodir, addWord, delWord string, files []string)
}
