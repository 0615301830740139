// Package reconciler implements the Workload Reconciler (C7): given a
// workload list loaded from a previous (possibly crashed) session, it tops
// up repository_load tasks and guarantees exactly one of each anchor task is
// present before the Controller starts.
package reconciler

import (
	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/task"
)

// activePipelineTasks mirrors constants.ActivePipelineTasks as a lookup set.
var activePipelineTasks = func() map[constants.TaskName]bool {
	m := make(map[constants.TaskName]bool, len(constants.ActivePipelineTasks))
	for _, name := range constants.ActivePipelineTasks {
		m[name] = true
	}
	return m
}()

// Reconcile extends workload per §4.7: it counts in-flight pipeline work,
// tops up repository_load tasks until active+repoMapSize reaches
// maxBufferRepos, and ensures exactly one wait_threadpool and one force_quit
// anchor are present. repoMapSize is the number of repositories currently
// checked out (len(repository_map) from the Store).
func Reconcile(workload []task.Task, repoMapSize int, maxBufferRepos int) []task.Task {
	if maxBufferRepos <= 0 {
		maxBufferRepos = constants.MaxBufferRepos
	}

	out := make([]task.Task, len(workload))
	copy(out, workload)

	active := 0
	hasWaitThreadpool := false
	hasForceQuit := false
	for _, t := range out {
		if activePipelineTasks[t.Name] {
			active++
		}
		switch t.Name {
		case constants.WaitThreadpoolTask:
			hasWaitThreadpool = true
		case constants.ForceQuitTask:
			hasForceQuit = true
		}
	}

	for active+repoMapSize < maxBufferRepos {
		out = append(out, task.Task{
			Name:     constants.RepositoryLoadTask,
			Priority: constants.RepositoryLoadPriority,
		})
		active++
	}

	if !hasWaitThreadpool {
		out = append(out, task.WaitThreadpoolAnchor())
	}
	if !hasForceQuit {
		out = append(out, task.ForceQuitAnchor())
	}

	return out
}
