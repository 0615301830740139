//go:build !integration

package interaction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakePort is a minimal Port used to verify the interface contract and
// ErrUserCancel propagation without a real terminal.
type fakePort struct {
	cancelOnInput bool
	sent          []string
}

func (f *fakePort) Send(msg string) { f.sent = append(f.sent, msg) }

func (f *fakePort) GetInput(prompt string) (string, error) {
	if f.cancelOnInput {
		return "", ErrUserCancel
	}
	return "answer", nil
}

func (f *fakePort) GetConfirmation(prompt string, def bool) (bool, error) {
	return def, nil
}

func (f *fakePort) MakeChoice(choices map[string]any) (any, error) {
	for _, v := range choices {
		return v, nil
	}
	return nil, errors.New("no choices")
}

func (f *fakePort) CheckQuit(ctrl Controller) bool { return ctrl.TasksEmpty() }

func (f *fakePort) CompleteRepo() {}

func (f *fakePort) AddRepoSave(reponame, repodir, addWord, delWord string, files []string) {}

type fakeController struct{ empty bool }

func (c fakeController) TasksEmpty() bool { return c.empty }

func TestFakePortSatisfiesPort(t *testing.T) {
	var _ Port = (*fakePort)(nil)
}

func TestGetInputPropagatesCancel(t *testing.T) {
	f := &fakePort{cancelOnInput: true}
	_, err := f.GetInput("prompt")
	require.ErrorIs(t, err, ErrUserCancel)
}

func TestCheckQuitDelegatesToController(t *testing.T) {
	f := &fakePort{}
	require.True(t, f.CheckQuit(fakeController{empty: true}))
	require.False(t, f.CheckQuit(fakeController{empty: false}))
}
