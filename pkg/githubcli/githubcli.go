//go:build !js && !wasm

// Package githubcli wraps the gh CLI (via cli/go-gh/v2) for the handful of
// GitHub operations the per-repository pipeline needs: forking, cloning,
// opening pull requests, and filing tracking issues.
package githubcli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/cli/go-gh/v2"

	"github.com/meticulous-run/meticulous/pkg/console"
	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/logger"
	"github.com/meticulous-run/meticulous/pkg/tty"
)

var cliLog = logger.New("githubcli")

func setupGHCommand(ctx context.Context, args ...string) *exec.Cmd {
	token := os.Getenv(string(constants.GitHubTokenEnvVar))

	var cmd *exec.Cmd
	if ctx != nil {
		cmd = exec.CommandContext(ctx, "gh", args...)
	} else {
		cmd = exec.Command("gh", args...)
	}

	if token != "" && os.Getenv("GH_TOKEN") == "" {
		cmd.Env = append(os.Environ(), "GH_TOKEN="+token)
	}
	return cmd
}

// ExecGH builds a gh CLI command scoped to ctx.
func ExecGH(ctx context.Context, args ...string) *exec.Cmd {
	return setupGHCommand(ctx, args...)
}

// ExecGHWithOutput runs a gh CLI command as a subprocess through go-gh/v2's
// gh.Exec and returns its captured stdout and stderr.
func ExecGHWithOutput(args ...string) (stdout, stderr bytes.Buffer, err error) {
	cliLog.Printf("gh %v", args)
	return gh.Exec(args...)
}

func runWithSpinner(ctx context.Context, spinnerMessage string, combined bool, args ...string) ([]byte, error) {
	cmd := ExecGH(ctx, args...)

	if tty.IsStderrTerminal() {
		spinner := console.NewSpinner(spinnerMessage)
		spinner.Start()
		var output []byte
		var err error
		if combined {
			output, err = cmd.CombinedOutput()
		} else {
			output, err = cmd.Output()
		}
		spinner.Stop()
		return output, err
	}

	if combined {
		return cmd.CombinedOutput()
	}
	return cmd.Output()
}

// Fork forks owner/repo into the authenticated account, cloning is left to
// the caller (Clone). Idempotent: gh repo fork no-ops if a fork already
// exists.
func Fork(ctx context.Context, reponame string) ([]byte, error) {
	return runWithSpinner(ctx, fmt.Sprintf("Forking %s...", reponame), true, "repo", "fork", reponame, "--default-branch-only")
}

// Clone clones reponame into dir.
func Clone(ctx context.Context, reponame, dir string) ([]byte, error) {
	return runWithSpinner(ctx, fmt.Sprintf("Cloning %s...", reponame), true, "repo", "clone", reponame, dir)
}

// CreatePullRequest opens a PR from the current branch of the repo checked
// out at dir.
func CreatePullRequest(ctx context.Context, dir, title, body string) ([]byte, error) {
	cmd := ExecGH(ctx, "pr", "create", "--title", title, "--body", body, "--fill-first")
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// CreateIssue files a tracking issue against reponame.
func CreateIssue(ctx context.Context, reponame, title, body string) ([]byte, error) {
	return runWithSpinner(ctx, fmt.Sprintf("Filing issue on %s...", reponame), true,
		"issue", "create", "--repo", reponame, "--title", title, "--body", body)
}

// IssuesDisabled reports whether reponame has issues disabled upstream.
func IssuesDisabled(ctx context.Context, reponame string) (bool, error) {
	stdout, _, err := ExecGHWithOutput("repo", "view", reponame, "--json", "hasIssuesEnabled", "--jq", ".hasIssuesEnabled")
	if err != nil {
		return false, fmt.Errorf("githubcli: repo view %s: %w", reponame, err)
	}
	return stdout.String() == "false\n" || stdout.String() == "false", nil
}
