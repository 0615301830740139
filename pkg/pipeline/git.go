package pipeline

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/githubcli"
)

func runGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("pipeline: git %s: %w: %s", strings.Join(args, " "), err, out)
	}
	return out, nil
}

// countAddedLines counts lines in a `git diff` that begin with a single '+'
// (a true addition), excluding the "+++" file-header line.
func countAddedLines(diff []byte) int {
	count := 0
	scanner := bufio.NewScanner(strings.NewReader(string(diff)))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "++") {
			count++
		}
	}
	return count
}

// randomBranchName returns a short, collision-resistant branch name for a
// meta-PR, e.g. "meticulous/nonwords-3f9a21".
func randomBranchName(prefix string) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("pipeline: generate branch name: %w", err)
	}
	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(buf)), nil
}

// appendNonword appends word as a new line in companionDir/relPath and
// returns the number of lines the resulting `git diff` added.
func appendNonword(ctx context.Context, companionDir, relPath, word string) (int, error) {
	path := filepath.Join(companionDir, relPath)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("pipeline: open non-words file: %w", err)
	}
	if _, err := fmt.Fprintln(f, word); err != nil {
		f.Close()
		return 0, fmt.Errorf("pipeline: append non-word: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	diff, err := runGit(ctx, companionDir, "diff", "--", relPath)
	if err != nil {
		return 0, err
	}
	return countAddedLines(diff), nil
}

// openNonwordsPR commits the pending non-words additions, pulls upstream,
// pushes to a freshly named branch, and opens a pull request.
func openNonwordsPR(ctx context.Context, companionDir string) ([]byte, error) {
	if _, err := runGit(ctx, companionDir, "add", "."); err != nil {
		return nil, err
	}
	if _, err := runGit(ctx, companionDir, "commit", "-m", "Add collected non-words"); err != nil {
		return nil, err
	}
	if _, err := runGit(ctx, companionDir, "pull", "--rebase", "origin", "main"); err != nil {
		return nil, err
	}

	branch, err := randomBranchName(string(constants.CLIExtensionPrefix) + "/nonwords")
	if err != nil {
		return nil, err
	}
	if _, err := runGit(ctx, companionDir, "checkout", "-b", branch); err != nil {
		return nil, err
	}
	if _, err := runGit(ctx, companionDir, "push", "origin", branch); err != nil {
		return nil, err
	}

	return githubcli.CreatePullRequest(ctx, companionDir, "Add collected non-words", "Automated batch of reviewed non-words.")
}
