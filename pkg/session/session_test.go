//go:build !integration

package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/interaction"
	"github.com/meticulous-run/meticulous/pkg/store"
	"github.com/meticulous-run/meticulous/pkg/task"
)

// fakePort drives a session to quiescence: it answers every quit check with
// whether the worker pool is idle and never needs to field a real choice.
type fakePort struct{ sent []string }

func (p *fakePort) Send(msg string) { p.sent = append(p.sent, msg) }
func (p *fakePort) GetInput(prompt string) (string, error) {
	return "", interaction.ErrUserCancel
}
func (p *fakePort) GetConfirmation(prompt string, def bool) (bool, error) { return def, nil }
func (p *fakePort) MakeChoice(choices map[string]any) (any, error)       { return "complete", nil }
func (p *fakePort) CheckQuit(ctrl interaction.Controller) bool            { return ctrl.TasksEmpty() }
func (p *fakePort) CompleteRepo()                                        {}
func (p *fakePort) AddRepoSave(reponame, repodir, addWord, delWord string, files []string) {}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "sqlite.db"), true)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestValidateTargetDirCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	require.NoError(t, validateTargetDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestValidateTargetDirRejectsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	err := validateTargetDir(file)
	require.ErrorIs(t, err, ErrInvalidTarget)
}

func TestValidateTargetDirRejectsEmptyPath(t *testing.T) {
	require.ErrorIs(t, validateTargetDir(""), ErrInvalidTarget)
}

func TestLoadNonwordCacheReadsLines(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nonwords.txt"), []byte("aas\nqa\n\nfoo\n"), 0o644))

	cache := loadNonwordCache(dir, "nonwords.txt")
	require.True(t, cache["aas"])
	require.True(t, cache["qa"])
	require.True(t, cache["foo"])
	require.Len(t, cache, 3)
}

func TestLoadNonwordCacheMissingFileYieldsEmpty(t *testing.T) {
	cache := loadNonwordCache(t.TempDir(), "does-not-exist.txt")
	require.Empty(t, cache)
}

func TestRunReachesQuiescenceWithEmptyWorkload(t *testing.T) {
	s := openTestStore(t)
	cfg := Config{TargetDir: t.TempDir(), WorkerCount: 1}
	port := &fakePort{}

	err := Run(context.Background(), cfg, s, port)
	require.NoError(t, err)

	var saved []task.Task
	require.NoError(t, s.GetJSON(context.Background(), string(constants.MultiworkerWorkloadKey), &saved))
}
