package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meticulous-run/meticulous/pkg/console"
	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/interaction"
	"github.com/meticulous-run/meticulous/pkg/logger"
	"github.com/meticulous-run/meticulous/pkg/session"
	"github.com/meticulous-run/meticulous/pkg/store"
	"github.com/meticulous-run/meticulous/pkg/stringutil"
)

// Build-time variable set by GoReleaser.
var version = "dev"

var (
	targetFlag  string
	startFlag   bool
	noStartFlag bool
	slackFlag   bool
	noSlackFlag bool
	verboseFlag bool
)

// resolveStart implements the --start/--no-start pair: --no-start wins if
// both are given, otherwise --start, defaulting to false (prompt first).
func resolveStart() bool {
	if noStartFlag {
		return false
	}
	return startFlag
}

// resolveSlack implements the --slack/--no-slack pair, defaulting to false
// (terminal front-end).
func resolveSlack() bool {
	if noSlackFlag {
		return false
	}
	return slackFlag
}

func defaultTargetDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return constants.DefaultTargetDirName
	}
	return filepath.Join(home, constants.DefaultTargetDirName)
}

func defaultStoreDSN() string {
	if dsn := os.Getenv(string(constants.StoreDSNEnvVar)); dsn != "" {
		return dsn
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(constants.DefaultStoreDir, constants.DefaultStoreFile)
	}
	return filepath.Join(home, constants.DefaultStoreDir, constants.DefaultStoreFile)
}

func workerCount() int {
	raw := os.Getenv(string(constants.WorkerCountEnvVar))
	if raw == "" {
		return constants.DefaultWorkerCount
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return constants.DefaultWorkerCount
	}
	return n
}

func requireEnv(name constants.EnvVar, fallback constants.EnvVar) error {
	if os.Getenv(string(name)) != "" {
		return nil
	}
	if fallback != "" && os.Getenv(string(fallback)) != "" {
		return nil
	}
	return fmt.Errorf("%s (or %s) is not set", name, fallback)
}

func requireTool(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("required external tool %q not found on PATH", name)
	}
	return nil
}

func openStore() (*store.Store, error) {
	dsn := defaultStoreDSN()
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil && dsn != ":memory:" {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return store.Open(dsn, true)
}

func splitCSVEnv(name constants.EnvVar) []string {
	raw := os.Getenv(string(name))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOrDefault(name constants.EnvVar, fallback string) string {
	if v := os.Getenv(string(name)); v != "" {
		return v
	}
	return fallback
}

func buildSessionConfig() session.Config {
	blacklist := map[string]bool{}
	for _, org := range splitCSVEnv(constants.BlacklistedOrgsEnvVar) {
		blacklist[org] = true
	}

	return session.Config{
		TargetDir:        targetFlag,
		WorkerCount:      workerCount(),
		SourceIndexURLs:  splitCSVEnv(constants.SourceIndexURLsEnvVar),
		CompanionRepoDir: os.Getenv(string(constants.CompanionRepoDirEnvVar)),
		NonwordsRelPath:  envOrDefault(constants.NonwordsRelPathEnvVar, constants.DefaultNonwordsRelPath),
		SpellChecker:     envOrDefault(constants.SpellCheckerEnvVar, constants.DefaultSpellChecker),
		BlacklistedOrgs:  blacklist,
	}
}

func runInvoke(cmd *cobra.Command, args []string) error {
	logger.SetVerbose(verboseFlag)

	if err := requireTool("gh"); err != nil {
		return fmt.Errorf("%w (exit 1)", err)
	}
	if err := requireTool("git"); err != nil {
		return fmt.Errorf("%w (exit 1)", err)
	}
	if err := requireEnv(constants.EditorEnvVar, constants.MeticulousEditorEnvVar); err != nil {
		return fmt.Errorf("no text editor configured: %w", err)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var port interaction.Port
	if resolveSlack() {
		return fmt.Errorf("--slack front-end is not wired to a chat backend in this build")
	}
	port = interaction.NewTerminal(s)

	if !resolveStart() {
		proceed, err := port.GetConfirmation(fmt.Sprintf("Start a %s session against %s?", constants.CLIExtensionPrefix, targetFlag), true)
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatInfoMessage("cancelled"))
			return nil
		}
		if !proceed {
			return nil
		}
	}

	cfg := buildSessionConfig()
	if err := session.Run(cmd.Context(), cfg, s, port); err != nil {
		return err
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:     string(constants.CLIExtensionPrefix),
	Short:   "Automated spelling-fix agent for GitHub repositories",
	Version: version,
	Long: `meticulous walks a configured set of GitHub repositories, proposes spelling
corrections, and opens pull requests or tracking issues for the ones an
operator confirms.`,
	RunE: runInvoke,
}

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Run a session (default command)",
	RunE:  runInvoke,
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Probe connectivity: external tools, credentials, and the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verboseFlag)

		checks := []struct {
			name string
			run  func() error
		}{
			{"gh CLI on PATH", func() error { return requireTool("gh") }},
			{"git CLI on PATH", func() error { return requireTool("git") }},
			{"GITHUB_API_TOKEN set", func() error {
				if err := requireEnv(constants.GitHubTokenEnvVar, ""); err != nil {
					return err
				}
				token := os.Getenv(string(constants.GitHubTokenEnvVar))
				fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("token type: %s", stringutil.GetPATTypeDescription(token))))
				return nil
			}},
			{"text editor configured", func() error { return requireEnv(constants.EditorEnvVar, constants.MeticulousEditorEnvVar) }},
			{"browser configured", func() error { return requireEnv(constants.BrowserEnvVar, constants.MeticulousBrowserVar) }},
			{"store opens", func() error {
				s, err := openStore()
				if err != nil {
					return err
				}
				return s.Close()
			}},
		}

		var failed []string
		for _, c := range checks {
			if err := c.run(); err != nil {
				fmt.Fprintln(os.Stderr, console.FormatErrorMessage(fmt.Sprintf("%s: %v", c.name, err)))
				failed = append(failed, c.name)
				continue
			}
			fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(c.name))
		}

		if len(failed) > 0 {
			return fmt.Errorf("failed checks: %s", strings.Join(failed, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&targetFlag, "target", defaultTargetDir(), "directory repositories are checked out under")
	rootCmd.PersistentFlags().BoolVar(&startFlag, "start", false, "bypass initial prompts and auto-launch")
	rootCmd.PersistentFlags().BoolVar(&noStartFlag, "no-start", false, "prompt before launching (default)")
	rootCmd.PersistentFlags().BoolVar(&slackFlag, "slack", false, "use the Slack chat front-end instead of the terminal")
	rootCmd.PersistentFlags().BoolVar(&noSlackFlag, "no-slack", false, "use the terminal front-end (default)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")

	rootCmd.SetOut(os.Stderr)
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(invokeCmd)
	rootCmd.AddCommand(testCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
