// Package pipeline implements the Per-Repository Pipeline (C9): the eight
// task handlers that walk a single repository from discovery through
// spell-check review to a submitted fix or tracking issue.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/controller"
	"github.com/meticulous-run/meticulous/pkg/githubcli"
	"github.com/meticulous-run/meticulous/pkg/handler"
	"github.com/meticulous-run/meticulous/pkg/interaction"
	"github.com/meticulous-run/meticulous/pkg/logger"
	"github.com/meticulous-run/meticulous/pkg/progress"
	"github.com/meticulous-run/meticulous/pkg/replace"
	"github.com/meticulous-run/meticulous/pkg/repoutil"
	"github.com/meticulous-run/meticulous/pkg/sourcefeed"
	"github.com/meticulous-run/meticulous/pkg/spellcheck"
	"github.com/meticulous-run/meticulous/pkg/store"
	"github.com/meticulous-run/meticulous/pkg/stringutil"
	"github.com/meticulous-run/meticulous/pkg/task"
)

var pipeLog = logger.New("pipeline")

// RepoSave is the pending single-typo correction the Store keeps per
// repository until submit runs.
type RepoSave struct {
	AddWord   string   `json:"add_word"`
	DelWord   string   `json:"del_word"`
	FilePaths []string `json:"file_paths"`
	RepoDir   string   `json:"repodir"`
}

// Config parameterizes the pipeline's external dependencies.
type Config struct {
	// SourceIndexURLs are markdown index pages listing candidate repositories.
	SourceIndexURLs []string
	// TargetDir is the root directory repositories are checked out under.
	TargetDir string
	// CompanionRepoDir is a local checkout of the shared non-words dataset.
	CompanionRepoDir string
	// NonwordsRelPath is the path, relative to CompanionRepoDir, of the file
	// new non-words are appended to.
	NonwordsRelPath string
	// SpellChecker is the external spell-check executable name.
	SpellChecker string
	// BlacklistedOrgs are repository owners repository_load skips outright.
	BlacklistedOrgs map[string]bool
	// KnownNonwords is the non-word cache the session driver loads from
	// CompanionRepoDir at startup; collect_nonwords skips any candidate
	// already confirmed here instead of re-asking the operator.
	KnownNonwords map[string]bool
}

// Pipeline holds the collaborators every handler closure needs.
type Pipeline struct {
	cfg   Config
	store *store.Store
	port  interaction.Port
	prog  *progress.Registry
}

// New constructs a Pipeline. port may be nil for non-interactive handlers
// only (repository_load, repository_checkout); the interactive handlers will
// panic if invoked without one, which is a registration bug, not a runtime
// condition to recover from.
func New(cfg Config, s *store.Store, port interaction.Port, prog *progress.Registry) *Pipeline {
	return &Pipeline{cfg: cfg, store: s, port: port, prog: prog}
}

// Register binds every pipeline task name to its factory on registry, and
// wires repository_load/prompt_quit back through ctrl so handlers can
// enqueue their successors.
func (p *Pipeline) Register(ctrl *controller.Controller, registry *handler.Registry) {
	registry.Register(constants.RepositoryLoadTask, p.repositoryLoad(ctrl))
	registry.Register(constants.RepositoryEndTask, p.repositoryEnd())
	registry.Register(constants.RepositoryCheckoutTask, p.repositoryCheckout(ctrl))
	registry.Register(constants.RepositorySummaryTask, p.repositorySummary(ctrl))
	registry.Register(constants.CollectNonwordsTask, p.collectNonwords(ctrl))
	registry.Register(constants.SubmitTask, p.submit(ctrl))
	registry.Register(constants.CleanupTask, p.cleanup(ctrl))
	registry.Register(constants.PromptQuitTask, p.promptQuit(ctrl))
}

// repoDir returns the local checkout path for reponame, flattening its
// "owner/repo" slug into a single filesystem-safe path component so cleanup
// only ever has one directory to remove.
func (p *Pipeline) repoDir(reponame string) string {
	return filepath.Join(p.cfg.TargetDir, repoutil.SanitizeForFilename(reponame))
}

func (p *Pipeline) isForked(ctx context.Context, repo string) bool {
	v, ok, err := p.store.Get(ctx, string(constants.ForkedKeyPrefix)+repo)
	if err != nil || !ok {
		return false
	}
	return v == "Y"
}

func (p *Pipeline) markForked(ctx context.Context, repo string) error {
	return p.store.Set(ctx, string(constants.ForkedKeyPrefix)+repo, "Y")
}

// noteIssuesDisabled asks the hosting API whether reponame has issues
// disabled and, if so, writes the sentinel file submit uses to skip the
// issue-filing fallback for this checkout.
func (p *Pipeline) noteIssuesDisabled(ctx context.Context, reponame, repoDir string) error {
	disabled, err := githubcli.IssuesDisabled(ctx, reponame)
	if err != nil {
		return err
	}
	if !disabled {
		return nil
	}
	sentinel := filepath.Join(repoDir, string(constants.NoIssuesSentinelFile))
	return os.WriteFile(sentinel, []byte{}, 0o644)
}

// issuesDisabled reports whether repository_checkout left the no-issues
// sentinel in repoDir.
func issuesDisabled(repoDir string) bool {
	_, err := os.Stat(filepath.Join(repoDir, string(constants.NoIssuesSentinelFile)))
	return err == nil
}

// repositoryLoad scans the configured source feeds for the first usable
// repository, forking it if necessary, and enqueues repository_checkout.
func (p *Pipeline) repositoryLoad(ctrl *controller.Controller) handler.Factory {
	return func(t task.Task) handler.Runner {
		return func(ctx context.Context) error {
			repo, err := p.nextUsableRepo(ctx)
			if err != nil {
				return fmt.Errorf("repository_load: %w", err)
			}
			if repo == "" {
				return ctrl.Add(task.New(constants.RepositoryEndTask, ""))
			}

			if !p.isForked(ctx, repo) {
				if _, err := githubcli.Fork(ctx, repo); err != nil {
					pipeLog.Error(fmt.Sprintf("fork of %s failed, skipping", repo), err)
					// "N" records the repo as seen but not forked, so
					// nextUsableRepo passes over it from now on.
					if err := p.store.Set(ctx, string(constants.ForkedKeyPrefix)+repo, "N"); err != nil {
						return err
					}
					return ctrl.Add(task.Task{Name: constants.RepositoryLoadTask, Priority: constants.RepositoryLoadPriority})
				}
				if err := p.markForked(ctx, repo); err != nil {
					return err
				}
			}

			return ctrl.Add(task.New(constants.RepositoryCheckoutTask, repo))
		}
	}
}

// nextUsableRepo returns the first repo across all configured source feeds
// that is not blacklisted, not already checked out, and has no forked|<repo>
// record (already forked, or a fork attempt failed), or "" if none remain.
func (p *Pipeline) nextUsableRepo(ctx context.Context) (string, error) {
	var repoMap map[string]string
	if err := p.store.GetJSON(ctx, string(constants.RepositoryMapKey), &repoMap); err != nil {
		return "", err
	}

	for _, url := range p.cfg.SourceIndexURLs {
		repos, err := p.fetchSourceList(ctx, url)
		if err != nil {
			pipeLog.Error(fmt.Sprintf("fetching source list %s failed, skipping feed", url), err)
			continue
		}
		for _, repo := range repos {
			owner, _, err := repoutil.SplitRepoSlug(repo)
			if err != nil {
				continue
			}
			if p.cfg.BlacklistedOrgs[owner] {
				continue
			}
			if _, inMap := repoMap[repo]; inMap {
				continue
			}
			if _, seen, err := p.store.Get(ctx, string(constants.ForkedKeyPrefix)+repo); err != nil {
				return "", err
			} else if seen {
				continue
			}
			return repo, nil
		}
	}
	return "", nil
}

func (p *Pipeline) fetchSourceList(ctx context.Context, url string) ([]string, error) {
	sourcefeedPkg := sourcefeedResolver{pipeline: p}
	return sourcefeedPkg.resolve(ctx, url)
}

// repositoryEnd is the terminal node reached when every configured source
// feed is exhausted. It enqueues nothing further; the session simply has no
// more repository_load work to offer until a future run's feeds refresh.
func (p *Pipeline) repositoryEnd() handler.Factory {
	return func(t task.Task) handler.Runner {
		return func(ctx context.Context) error {
			pipeLog.Print("all configured source feeds are exhausted")
			return nil
		}
	}
}

// repositoryCheckout clones the repo, runs the external spell checker, and
// enqueues repository_summary. Runs on the worker pool.
func (p *Pipeline) repositoryCheckout(ctrl *controller.Controller) handler.Factory {
	return func(t task.Task) handler.Runner {
		return func(ctx context.Context) error {
			repoDir := p.repoDir(t.Reponame)
			if _, err := githubcli.Clone(ctx, t.Reponame, repoDir); err != nil {
				return fmt.Errorf("repository_checkout: clone %s: %w", t.Reponame, err)
			}

			if _, err := spellcheck.Run(ctx, p.cfg.SpellChecker, repoDir); err != nil {
				pipeLog.Error(fmt.Sprintf("spell check failed for %s", t.Reponame), err)
			}

			if err := p.noteIssuesDisabled(ctx, t.Reponame, repoDir); err != nil {
				pipeLog.Error(fmt.Sprintf("checking issue settings for %s failed, assuming issues enabled", t.Reponame), err)
			}

			return ctrl.Add(task.New(constants.RepositorySummaryTask, t.Reponame))
		}
	}
}

// repositorySummary registers the repo into repository_map and shows a
// README excerpt, then enqueues collect_nonwords.
func (p *Pipeline) repositorySummary(ctrl *controller.Controller) handler.Factory {
	return func(t task.Task) handler.Runner {
		return func(ctx context.Context) error {
			repoDir := p.repoDir(t.Reponame)

			var repoMap map[string]string
			if err := p.store.GetJSON(ctx, string(constants.RepositoryMapKey), &repoMap); err != nil {
				return err
			}
			if repoMap == nil {
				repoMap = map[string]string{}
			}
			repoMap[t.Reponame] = repoDir
			if err := p.store.SetJSON(ctx, string(constants.RepositoryMapKey), repoMap); err != nil {
				return err
			}

			if readme, err := os.ReadFile(filepath.Join(repoDir, "README.md")); err == nil {
				excerpt := stringutil.Truncate(string(readme), 400)
				p.port.Send(fmt.Sprintf("%s:\n%s", t.Reponame, excerpt))
			}

			return ctrl.Add(task.New(constants.CollectNonwordsTask, t.Reponame))
		}
	}
}

// collectNonwords presents ranked spell-check candidates to the operator and
// records either a non-word or a typo fix for each chosen word.
func (p *Pipeline) collectNonwords(ctrl *controller.Controller) handler.Factory {
	return func(t task.Task) handler.Runner {
		return func(ctx context.Context) error {
			repoDir := p.repoDir(t.Reponame)
			reportPath := filepath.Join(repoDir, string(constants.SpellingJSONFile))

			candidates, err := spellcheck.Load(reportPath)
			if err != nil {
				pipeLog.Error(fmt.Sprintf("no spelling report for %s, skipping review", t.Reponame), err)
				return ctrl.Add(task.New(constants.SubmitTask, t.Reponame))
			}

			top, skipped := spellcheck.Rank(candidates, constants.MaxSuggestionCandidates)
			if skipped > 0 {
				p.port.Send(fmt.Sprintf("skipping %d candidates", skipped))
			}

			for _, c := range top {
				if p.cfg.KnownNonwords[c.Word] {
					continue
				}

				choices := map[string]any{
					fmt.Sprintf("mark %q as a non-word", c.Word):       "nonword",
					fmt.Sprintf("fix %q -> %q", c.Word, c.Replacement): "fix",
					fmt.Sprintf("skip %q", c.Word):                     "skip",
					"stop reviewing this repository":                   "complete",
				}
				choice, err := p.port.MakeChoice(choices)
				if err != nil {
					return fmt.Errorf("collect_nonwords: %w", err)
				}

				switch choice {
				case "nonword":
					if err := p.recordNonword(ctx, c.Word); err != nil {
						return err
					}
				case "fix":
					if err := p.recordFix(t.Reponame, repoDir, c); err != nil {
						return err
					}
				case "complete":
					p.port.CompleteRepo()
					return ctrl.Add(task.New(constants.SubmitTask, t.Reponame))
				}
			}

			p.port.CompleteRepo()
			return ctrl.Add(task.New(constants.SubmitTask, t.Reponame))
		}
	}
}

func (p *Pipeline) recordNonword(ctx context.Context, word string) error {
	added, err := appendNonword(ctx, p.cfg.CompanionRepoDir, p.cfg.NonwordsRelPath, word)
	if err != nil {
		return fmt.Errorf("collect_nonwords: record non-word: %w", err)
	}
	if added > constants.NonwordPRThreshold {
		if _, err := openNonwordsPR(ctx, p.cfg.CompanionRepoDir); err != nil {
			pipeLog.Error("failed to open non-words meta-PR", err)
		}
	}
	return nil
}

func (p *Pipeline) recordFix(reponame, repoDir string, c spellcheck.Candidate) error {
	pattern := replace.Word(c.Word)
	var touched []string
	for _, rel := range c.Files {
		path := filepath.Join(repoDir, rel)
		src, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		rewritten := replace.WholeWord(src, pattern, c.Replacement, c.CapitalizedReplacement)
		if string(rewritten) == string(src) {
			continue
		}
		if err := os.WriteFile(path, rewritten, 0o644); err != nil {
			return err
		}
		touched = append(touched, rel)
	}

	p.port.AddRepoSave(reponame, repoDir, c.Replacement, c.Word, touched)
	return nil
}

// submit reads the pending correction for the repo, if any, and opens either
// a pull request or a tracking issue.
func (p *Pipeline) submit(ctrl *controller.Controller) handler.Factory {
	return func(t task.Task) handler.Runner {
		return func(ctx context.Context) error {
			var saves map[string]RepoSave
			if err := p.store.GetJSON(ctx, string(constants.RepositorySavesKey), &saves); err != nil {
				return err
			}
			save, ok := saves[t.Reponame]
			if !ok {
				return ctrl.Add(task.New(constants.CleanupTask, t.Reponame))
			}

			title := fmt.Sprintf("Fix typo: %s -> %s", save.DelWord, save.AddWord)
			body := fmt.Sprintf("Corrects %q to %q in %v.", save.DelWord, save.AddWord, save.FilePaths)

			if _, err := runGit(ctx, save.RepoDir, "commit", "-am", title); err == nil {
				if _, prErr := githubcli.CreatePullRequest(ctx, save.RepoDir, title, body); prErr == nil {
					return ctrl.Add(task.New(constants.CleanupTask, t.Reponame))
				}
			}

			if issuesDisabled(save.RepoDir) {
				pipeLog.Printf("issues disabled upstream for %s, skipping tracking issue", t.Reponame)
				return ctrl.Add(task.New(constants.CleanupTask, t.Reponame))
			}

			if _, err := githubcli.CreateIssue(ctx, t.Reponame, title, body); err != nil {
				pipeLog.Error(fmt.Sprintf("failed to file tracking issue on %s", t.Reponame), err)
			}
			return ctrl.Add(task.New(constants.CleanupTask, t.Reponame))
		}
	}
}

// cleanup removes the repo's Store bookkeeping and working directory, then
// enqueues prompt_quit.
func (p *Pipeline) cleanup(ctrl *controller.Controller) handler.Factory {
	return func(t task.Task) handler.Runner {
		return func(ctx context.Context) error {
			var repoMap map[string]string
			if err := p.store.GetJSON(ctx, string(constants.RepositoryMapKey), &repoMap); err != nil {
				return err
			}
			repoDir := repoMap[t.Reponame]
			delete(repoMap, t.Reponame)
			if err := p.store.SetJSON(ctx, string(constants.RepositoryMapKey), repoMap); err != nil {
				return err
			}

			var saves map[string]RepoSave
			if err := p.store.GetJSON(ctx, string(constants.RepositorySavesKey), &saves); err != nil {
				return err
			}
			delete(saves, t.Reponame)
			if err := p.store.SetJSON(ctx, string(constants.RepositorySavesKey), saves); err != nil {
				return err
			}

			if repoDir != "" {
				if err := os.RemoveAll(repoDir); err != nil {
					pipeLog.Error(fmt.Sprintf("failed to remove working directory %s", repoDir), err)
				}
			}

			return ctrl.Add(task.NewInteractive(constants.PromptQuitTask, 0, ""))
		}
	}
}

// promptQuit asks the operator whether to stop; on continue it enqueues a
// fresh repository_load.
func (p *Pipeline) promptQuit(ctrl *controller.Controller) handler.Factory {
	return func(t task.Task) handler.Runner {
		return func(ctx context.Context) error {
			if p.port.CheckQuit(ctrl) {
				ctrl.Quit()
				return nil
			}
			return ctrl.Add(task.Task{Name: constants.RepositoryLoadTask, Priority: constants.RepositoryLoadPriority})
		}
	}
}

// sourcefeedResolver isolates the net/http fetch from pkg/sourcefeed's pure
// cache/parse logic so the pipeline's only HTTP dependency lives here.
type sourcefeedResolver struct {
	pipeline *Pipeline
}

func (r sourcefeedResolver) resolve(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: constants.ExternalAPITimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return sourcefeed.Resolve(ctx, r.pipeline.store, url, body, time.Now())
}
