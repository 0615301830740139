//go:build !integration

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/controller"
	"github.com/meticulous-run/meticulous/pkg/handler"
	"github.com/meticulous-run/meticulous/pkg/progress"
	"github.com/meticulous-run/meticulous/pkg/store"
	"github.com/meticulous-run/meticulous/pkg/task"
	"github.com/meticulous-run/meticulous/pkg/taskqueue"
	"github.com/meticulous-run/meticulous/pkg/workerpool"
)

func TestCountAddedLinesExcludesFileHeader(t *testing.T) {
	diff := []byte("diff --git a/f b/f\n--- a/f\n+++ b/f\n+new line one\n+new line two\n-removed\n")
	require.Equal(t, 2, countAddedLines(diff))
}

func TestRandomBranchNameIsPrefixedAndUnique(t *testing.T) {
	a, err := randomBranchName("meticulous/nonwords")
	require.NoError(t, err)
	b, err := randomBranchName("meticulous/nonwords")
	require.NoError(t, err)
	require.Contains(t, a, "meticulous/nonwords-")
	require.NotEqual(t, a, b)
}

func TestAppendNonwordCountsDiffLines(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runGitTestInit(t, dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nonwords.txt"), []byte("existing\n"), 0o644))
	_, err := runGit(context.Background(), dir, "add", ".")
	require.NoError(t, err)
	_, err = runGit(context.Background(), dir, "commit", "-m", "init")
	require.NoError(t, err)

	added, err := appendNonword(context.Background(), dir, "nonwords.txt", "newword")
	require.NoError(t, err)
	require.Equal(t, 1, added)
}

func runGitTestInit(t *testing.T, dir string) error {
	t.Helper()
	if _, err := runGit(context.Background(), dir, "init"); err != nil {
		return err
	}
	if _, err := runGit(context.Background(), dir, "config", "user.email", "test@example.com"); err != nil {
		return err
	}
	_, err := runGit(context.Background(), dir, "config", "user.name", "Test")
	return err
}

func TestRegisterBindsEveryPipelineTaskName(t *testing.T) {
	q := taskqueue.New()
	wp := workerpool.New(context.Background(), 1)
	r := handler.New()
	prog := progress.New()
	ctrl := controller.New(q, wp, r, prog)

	dsn := filepath.Join(t.TempDir(), "sqlite.db")
	s, err := store.Open(dsn, false)
	require.NoError(t, err)
	defer s.Close()

	p := New(Config{TargetDir: t.TempDir()}, s, nil, prog)
	p.Register(ctrl, r)

	for _, name := range []constants.TaskName{
		constants.RepositoryLoadTask,
		constants.RepositoryEndTask,
		constants.RepositoryCheckoutTask,
		constants.RepositorySummaryTask,
		constants.CollectNonwordsTask,
		constants.SubmitTask,
		constants.CleanupTask,
		constants.PromptQuitTask,
	} {
		_, err := r.Build(task.New(name, ""))
		require.NoError(t, err, "expected a registered handler for %s", name)
	}
}

func TestRepositoryEndIsTerminal(t *testing.T) {
	q := taskqueue.New()
	wp := workerpool.New(context.Background(), 1)
	r := handler.New()
	prog := progress.New()
	_ = controller.New(q, wp, r, prog)

	p := New(Config{}, nil, nil, prog)
	run := p.repositoryEnd()(task.New(constants.RepositoryEndTask, ""))
	require.NoError(t, run(context.Background()))
}
