// Package constants centralizes configuration defaults, env var names, store keys,
// and task/priority constants shared across the engine.
//
// Values are grouped as semantic type aliases where a bare string or int would
// otherwise blur distinct concepts together (a priority is not a worker count,
// a store key is not an env var name).
package constants

import (
	"fmt"
	"time"
)

// CLIExtensionPrefix is the prefix used in user-facing output to refer to the CLI.
const CLIExtensionPrefix CommandPrefix = "meticulous"

// Semantic types for measurements and identifiers.
//
// These type aliases provide meaningful names for primitive types, improving code clarity
// and type safety. The type name indicates both what the value represents and how it
// should be used, at the cost of an explicit conversion when crossing package boundaries.

// Priority represents an input-queue task priority. Smaller values are more urgent.
// Two values are reserved as anchors: AnchorWaitThreadpoolPriority and AnchorForceQuitPriority.
//
// Example usage:
//
//	task := Task{Priority: Priority(5)}
type Priority int

// String returns the string representation of the priority.
func (p Priority) String() string {
	return fmt.Sprintf("%d", int(p))
}

// IsValid returns true if the priority is non-negative.
func (p Priority) IsValid() bool {
	return p >= 0
}

// StoreKey represents a well-known key in the persistent key/value store.
//
// Example usage:
//
//	store.GetJSON(constants.RepositoryMapKey, map[string]string{})
type StoreKey string

// String returns the string representation of the store key.
func (k StoreKey) String() string {
	return string(k)
}

// IsValid returns true if the store key is non-empty.
func (k StoreKey) IsValid() bool {
	return len(k) > 0
}

// EnvVar represents the name of an environment variable the engine reads.
//
// Example usage:
//
//	token := os.Getenv(string(constants.GitHubTokenEnvVar))
type EnvVar string

// String returns the string representation of the environment variable name.
func (e EnvVar) String() string {
	return string(e)
}

// IsValid returns true if the environment variable name is non-empty.
func (e EnvVar) IsValid() bool {
	return len(e) > 0
}

// TaskName identifies a registered handler in the Handler Registry (C6).
//
// Example usage:
//
//	handlers.Register(constants.RepositoryLoadTask, newRepositoryLoadHandler)
type TaskName string

// String returns the string representation of the task name.
func (t TaskName) String() string {
	return string(t)
}

// IsValid returns true if the task name is non-empty.
func (t TaskName) IsValid() bool {
	return len(t) > 0
}

// CommandPrefix represents the CLI's user-facing invocation prefix.
//
// Example usage:
//
//	fmt.Printf("%s invoke --target ~/data\n", constants.CLIExtensionPrefix)
type CommandPrefix string

// String returns the string representation of the command prefix.
func (c CommandPrefix) String() string {
	return string(c)
}

// IsValid returns true if the command prefix is non-empty.
func (c CommandPrefix) IsValid() bool {
	return len(c) > 0
}

// SentinelFile names a marker file the pipeline writes into a checked-out repository.
//
// Example usage:
//
//	os.Stat(filepath.Join(repoDir, string(constants.NoIssuesSentinelFile)))
type SentinelFile string

// String returns the string representation of the sentinel file name.
func (s SentinelFile) String() string {
	return string(s)
}

// IsValid returns true if the sentinel file name is non-empty.
func (s SentinelFile) IsValid() bool {
	return len(s) > 0
}

// Anchor task names and priorities (§2, §4.6, §4.7 of the engine design).
const (
	WaitThreadpoolTask TaskName = "wait_threadpool"
	ForceQuitTask      TaskName = "force_quit"

	AnchorWaitThreadpoolPriority Priority = 999
	AnchorForceQuitPriority      Priority = 1000
)

// Per-repository pipeline task names (C9).
const (
	RepositoryLoadTask     TaskName = "repository_load"
	RepositoryEndTask      TaskName = "repository_end"
	RepositoryCheckoutTask TaskName = "repository_checkout"
	RepositorySummaryTask  TaskName = "repository_summary"
	CollectNonwordsTask    TaskName = "collect_nonwords"
	SubmitTask             TaskName = "submit"
	CleanupTask            TaskName = "cleanup"
	PromptQuitTask         TaskName = "prompt_quit"
)

// RepositoryLoadPriority is the priority assigned to freshly reconciled
// repository_load tasks (§4.7); those tasks are non-interactive.
const RepositoryLoadPriority Priority = 5

// ActivePipelineTasks is the set of task names the Workload Reconciler (C7)
// counts as "in flight" when deciding how many repository_load tasks to top up.
var ActivePipelineTasks = []TaskName{
	RepositoryLoadTask,
	RepositoryCheckoutTask,
	RepositorySummaryTask,
	CollectNonwordsTask,
	SubmitTask,
	CleanupTask,
}

// MaxBufferRepos is the target number of repositories (in-flight + checked out)
// the reconciler keeps topped up each session.
const MaxBufferRepos = 10

// DefaultWorkerCount is the default size of the background worker pool (C4).
const DefaultWorkerCount = 5

// MaxSuggestionCandidates caps how many ranked candidate words collect_nonwords
// presents to the operator in a single pass before reporting a "skipping N" notice.
const MaxSuggestionCandidates = 50

// NonwordPRThreshold is the number of newly added lines (git-diff `+` count) in
// the shared non-words file that triggers an automatic commit/push/PR cycle.
const NonwordPRThreshold = 5

// Store keys (§3 DATA MODEL).
const (
	MultiworkerWorkloadKey   StoreKey = "multiworker_workload"
	RepositoryMapKey         StoreKey = "repository_map"
	RepositoryForkedKey      StoreKey = "repository_forked"
	RepositorySavesKey       StoreKey = "repository_saves"
	ForkedKeyPrefix          StoreKey = "forked|"
	GitHubLinksKeyPrefix     StoreKey = "github_links|"
	GitHubLinksDateKeyPrefix StoreKey = "github_links_datetxt|"
	SuggestionKeyPrefix      StoreKey = "suggestion."
)

// Environment variables (§6 EXTERNAL INTERFACES).
const (
	GitHubTokenEnvVar      EnvVar = "GITHUB_API_TOKEN"
	EditorEnvVar           EnvVar = "EDITOR"
	MeticulousEditorEnvVar EnvVar = "METICULOUS_EDITOR"
	BrowserEnvVar          EnvVar = "BROWSER"
	MeticulousBrowserVar   EnvVar = "METICULOUS_BROWSER"
	SlackTokenEnvVar       EnvVar = "SLACK_METICULOUS_TOKEN"
	SlackChannelEnvVar     EnvVar = "SLACK_METICULOUS_CHANNEL"
	WorkerCountEnvVar      EnvVar = "METICULOUS_WORKER_COUNT"
	StoreDSNEnvVar         EnvVar = "METICULOUS_STORE_DSN"
	AccessibleEnvVar       EnvVar = "ACCESSIBLE"

	// SourceIndexURLsEnvVar names a comma-separated list of markdown index
	// pages the per-repository pipeline scans for candidate repositories.
	SourceIndexURLsEnvVar EnvVar = "METICULOUS_SOURCE_INDEX_URLS"
	// CompanionRepoDirEnvVar names the local checkout of the shared
	// non-words dataset repository.
	CompanionRepoDirEnvVar EnvVar = "METICULOUS_COMPANION_REPO_DIR"
	// NonwordsRelPathEnvVar names the path, relative to the companion repo,
	// of the shared non-words file.
	NonwordsRelPathEnvVar EnvVar = "METICULOUS_NONWORDS_PATH"
	// SpellCheckerEnvVar names the external spell-check executable.
	SpellCheckerEnvVar EnvVar = "METICULOUS_SPELLCHECKER"
	// BlacklistedOrgsEnvVar names a comma-separated list of repository
	// owners repository_load skips outright.
	BlacklistedOrgsEnvVar EnvVar = "METICULOUS_BLACKLISTED_ORGS"
)

// DefaultNonwordsRelPath is the non-words file path used when
// NonwordsRelPathEnvVar is unset.
const DefaultNonwordsRelPath = "nonwords.txt"

// DefaultSpellChecker is the external spell-check executable name used when
// SpellCheckerEnvVar is unset.
const DefaultSpellChecker = "codespell"

// Sentinel and artifact files written into a working repository (§6).
const (
	SpellingJSONFile     SentinelFile = "spelling.json"
	SpellingTextFile     SentinelFile = "spelling.txt"
	IssueBodyFile        SentinelFile = "__issue__.txt"
	CommitMessageFile    SentinelFile = "__commit__.txt"
	NoIssuesSentinelFile SentinelFile = "__no_issues__.txt"
)

// DefaultTargetDirName is the directory under $HOME used when --target is not given.
const DefaultTargetDirName = "data"

// DefaultStoreDir and DefaultStoreFile locate the embedded store at $HOME/.meticulous/sqlite.db.
const (
	DefaultStoreDir  = ".meticulous"
	DefaultStoreFile = "sqlite.db"
)

// Timeouts (§5 CONCURRENCY & RESOURCE MODEL).
const (
	QuiescenceWaitTimeout  = 60 * time.Second
	ExternalAPITimeout     = 120 * time.Second
	SourceFeedCacheTTL     = 7 * 24 * time.Hour
	DefaultWorkerDrainWait = 30 * time.Second
)
