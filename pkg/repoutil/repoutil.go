// Package repoutil parses and normalizes GitHub repository identifiers:
// "owner/repo" slugs, SSH/HTTPS clone URLs, and filesystem-safe names derived from either.
package repoutil

import (
	"fmt"
	"net/url"
	"strings"
)

// SplitRepoSlug splits an "owner/repo" slug into its two parts.
func SplitRepoSlug(slug string) (owner, repo string, err error) {
	parts := strings.Split(slug, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repoutil: invalid repository slug %q, expected owner/repo", slug)
	}
	return parts[0], parts[1], nil
}

// ParseGitHubURL extracts owner/repo from a GitHub SSH or HTTPS clone URL.
func ParseGitHubURL(rawURL string) (owner, repo string, err error) {
	if rawURL == "" {
		return "", "", fmt.Errorf("repoutil: empty URL")
	}

	if strings.HasPrefix(rawURL, "git@github.com:") {
		path := strings.TrimPrefix(rawURL, "git@github.com:")
		path = strings.TrimSuffix(path, ".git")
		return SplitRepoSlug(path)
	}

	u, parseErr := url.Parse(rawURL)
	if parseErr != nil {
		return "", "", fmt.Errorf("repoutil: invalid URL %q: %w", rawURL, parseErr)
	}
	host := strings.TrimPrefix(u.Host, "www.")
	if host != "github.com" {
		return "", "", fmt.Errorf("repoutil: not a github.com URL: %q", rawURL)
	}

	path := strings.Trim(u.Path, "/")
	if path == "" || strings.HasSuffix(u.Path, "/") {
		return "", "", fmt.Errorf("repoutil: malformed GitHub path in %q", rawURL)
	}
	path = strings.TrimSuffix(path, ".git")
	return SplitRepoSlug(path)
}

// SanitizeForFilename turns an owner/repo slug into a string safe for use as a
// single path component (e.g. a clone directory name), joining segments with hyphens.
// An empty slug maps to "clone-mode" since the caller has no repository context.
func SanitizeForFilename(slug string) string {
	if slug == "" {
		return "clone-mode"
	}
	return strings.ReplaceAll(slug, "/", "-")
}
