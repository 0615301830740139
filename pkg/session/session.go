// Package session implements the Session Driver (C10): the single function
// that ties the rest of the engine together for one invocation — validating
// the target directory, restoring state from the Store, reconciling the
// workload, running the Controller to completion, and persisting whatever is
// left when it returns.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/controller"
	"github.com/meticulous-run/meticulous/pkg/fileutil"
	"github.com/meticulous-run/meticulous/pkg/handler"
	"github.com/meticulous-run/meticulous/pkg/interaction"
	"github.com/meticulous-run/meticulous/pkg/logger"
	"github.com/meticulous-run/meticulous/pkg/pipeline"
	"github.com/meticulous-run/meticulous/pkg/progress"
	"github.com/meticulous-run/meticulous/pkg/reconciler"
	"github.com/meticulous-run/meticulous/pkg/store"
	"github.com/meticulous-run/meticulous/pkg/taskqueue"
	"github.com/meticulous-run/meticulous/pkg/workerpool"
)

var sessionLog = logger.New("session")

// Config holds everything a session needs that isn't derivable from the
// Store: the CLI's resolved flags and the pipeline's external dependencies.
type Config struct {
	TargetDir        string
	WorkerCount      int
	SourceIndexURLs  []string
	CompanionRepoDir string
	NonwordsRelPath  string
	SpellChecker     string
	BlacklistedOrgs  map[string]bool
}

// ErrInvalidTarget is returned when TargetDir is empty, names something that
// is not a directory, or is missing and cannot be created.
var ErrInvalidTarget = errors.New("session: invalid target directory")

// Run executes one full session against store s, driven by port, per §4.10:
//  1. validate the target directory
//  2. load the non-word cache from the companion repo
//  3. load the saved workload from the Store
//  4. reconcile it (top up repository_load, ensure anchors)
//  5. instantiate the queue/pool/controller and register every handler
//  6. enqueue the reconciled workload
//  7. run the controller to completion, persisting whatever remains
func Run(ctx context.Context, cfg Config, s *store.Store, port interaction.Port) error {
	if err := validateTargetDir(cfg.TargetDir); err != nil {
		return err
	}

	knownNonwords := loadNonwordCache(cfg.CompanionRepoDir, cfg.NonwordsRelPath)

	persisted, err := taskqueue.Load(ctx, s)
	if err != nil {
		return fmt.Errorf("session: load workload: %w", err)
	}
	workload := persisted.Snapshot()

	var repoMap map[string]string
	if err := s.GetJSON(ctx, string(constants.RepositoryMapKey), &repoMap); err != nil {
		return fmt.Errorf("session: load repository map: %w", err)
	}

	reconciled := reconciler.Reconcile(workload, len(repoMap), constants.MaxBufferRepos)
	sessionLog.Printf("reconciled workload: %d tasks (%d repositories already checked out)", len(reconciled), len(repoMap))

	queue := taskqueue.New()
	pool := workerpool.New(ctx, cfg.WorkerCount)
	registry := handler.New()
	prog := progress.New()
	ctrl := controller.New(queue, pool, registry, prog)

	pipe := pipeline.New(pipeline.Config{
		SourceIndexURLs:  cfg.SourceIndexURLs,
		TargetDir:        cfg.TargetDir,
		CompanionRepoDir: cfg.CompanionRepoDir,
		NonwordsRelPath:  cfg.NonwordsRelPath,
		SpellChecker:     cfg.SpellChecker,
		BlacklistedOrgs:  cfg.BlacklistedOrgs,
		KnownNonwords:    knownNonwords,
	}, s, port, prog)
	pipe.Register(ctrl, registry)

	for _, t := range reconciled {
		if err := ctrl.Add(t); err != nil {
			return fmt.Errorf("session: enqueue reconciled task %s: %w", t.Name, err)
		}
	}

	result, runErr := ctrl.Run(ctx, port)

	remaining := taskqueue.New()
	var saveErr error
	for _, t := range result {
		if err := remaining.Add(t); err != nil {
			saveErr = err
			break
		}
	}
	if saveErr == nil {
		saveErr = remaining.Save(ctx, s)
	}
	if saveErr != nil {
		sessionLog.Error("failed to persist unfinished workload", saveErr)
		if runErr == nil {
			runErr = fmt.Errorf("session: persist workload: %w", saveErr)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, interaction.ErrUserCancel) {
			sessionLog.Print("operator cancelled; workload persisted")
			return nil
		}
		return fmt.Errorf("session: %w", runErr)
	}

	sessionLog.Print("session reached quiescence")
	return nil
}

func validateTargetDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidTarget)
	}
	if fileutil.DirExists(dir) {
		return nil
	}
	if fileutil.FileExists(dir) {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidTarget, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidTarget, dir, err)
	}
	return nil
}

// loadNonwordCache reads the companion repository's shared non-words file
// into a lookup set, so collect_nonwords can skip words already confirmed in
// a prior session without re-prompting the operator. A missing file (first
// run, or no companion repo configured) yields an empty cache, not an error.
func loadNonwordCache(companionDir, relPath string) map[string]bool {
	cache := map[string]bool{}
	if companionDir == "" || relPath == "" {
		return cache
	}

	f, err := os.Open(filepath.Join(companionDir, relPath))
	if err != nil {
		return cache
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			cache[word] = true
		}
	}
	return cache
}
