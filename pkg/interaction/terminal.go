//go:build !js && !wasm

package interaction

import (
	"context"
	"fmt"
	"sort"

	"github.com/meticulous-run/meticulous/pkg/console"
	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/logger"
	"github.com/meticulous-run/meticulous/pkg/store"
)

var terminalLog = logger.New("interaction:terminal")

// Terminal is the default Port implementation: a keyboard/TUI operator
// driving the session through pkg/console's huh-backed prompts.
type Terminal struct {
	s *store.Store
}

// NewTerminal returns a Port backed by the terminal, persisting
// AddRepoSave calls to s under the repository_saves overlay.
func NewTerminal(s *store.Store) *Terminal {
	return &Terminal{s: s}
}

func (t *Terminal) Send(msg string) {
	fmt.Println(console.FormatInfoMessage(msg))
}

func (t *Terminal) GetInput(prompt string) (string, error) {
	value, err := console.PromptInput(prompt, "", "")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUserCancel, err)
	}
	return value, nil
}

func (t *Terminal) GetConfirmation(prompt string, def bool) (bool, error) {
	affirmative, negative := "Yes", "No"
	if def {
		affirmative, negative = "Yes (default)", "No"
	} else {
		affirmative, negative = "Yes", "No (default)"
	}
	confirmed, err := console.ConfirmAction(prompt, affirmative, negative)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUserCancel, err)
	}
	return confirmed, nil
}

func (t *Terminal) MakeChoice(choices map[string]any) (any, error) {
	labels := make([]string, 0, len(choices))
	for label := range choices {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	opts := make([]console.SelectOption, len(labels))
	for i, label := range labels {
		opts[i] = console.SelectOption{Label: label, Value: label}
	}

	chosen, err := console.PromptSelect("Choose one", "", opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserCancel, err)
	}
	return choices[chosen], nil
}

func (t *Terminal) CheckQuit(ctrl Controller) bool {
	quit, err := console.ConfirmAction("Stop the session?", "Stop", "Keep going")
	if err != nil {
		return true
	}
	return quit
}

func (t *Terminal) CompleteRepo() {}

// repoSave mirrors pkg/pipeline.RepoSave's JSON shape. Terminal owns writing
// the repository_saves record; pipeline.submit only ever reads it back.
type repoSave struct {
	AddWord   string   `json:"add_word"`
	DelWord   string   `json:"del_word"`
	FilePaths []string `json:"file_paths"`
	RepoDir   string   `json:"repodir"`
}

func (t *Terminal) AddRepoSave(reponame, repodir, addWord, delWord string, files []string) {
	if t.s == nil {
		return
	}

	ctx := context.Background()
	var saves map[string]repoSave
	if err := t.s.GetJSON(ctx, string(constants.RepositorySavesKey), &saves); err != nil {
		terminalLog.Error("failed to load repository_saves before recording correction", err)
		return
	}
	if saves == nil {
		saves = map[string]repoSave{}
	}
	saves[reponame] = repoSave{AddWord: addWord, DelWord: delWord, FilePaths: files, RepoDir: repodir}
	if err := t.s.SetJSON(ctx, string(constants.RepositorySavesKey), saves); err != nil {
		terminalLog.Error("failed to persist repository_saves", err)
	}
}
