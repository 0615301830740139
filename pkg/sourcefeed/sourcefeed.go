// Package sourcefeed extracts GitHub repository links from a markdown index
// page and caches the result in the Store for 7 days, so repository_load
// does not refetch on every invocation.
package sourcefeed

import (
	"context"
	"fmt"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/repoutil"
	"github.com/meticulous-run/meticulous/pkg/store"
)

// Link is a single markdown [text](url) pair.
type Link struct {
	Text string
	URL  string
}

// ExtractLinks walks md's markdown AST and returns every [text](url) link.
func ExtractLinks(md []byte) ([]Link, error) {
	parsed := goldmark.New().Parser().Parse(text.NewReader(md))

	var links []Link
	err := ast.Walk(parsed, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		linkNode, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		links = append(links, Link{
			Text: string(linkNode.Text(md)),
			URL:  string(linkNode.Destination),
		})
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("sourcefeed: parse markdown: %w", err)
	}
	return links, nil
}

// FilterGitHubRepos keeps only links whose URL matches github.com/<owner>/<repo>
// and returns them as "owner/repo" slugs.
func FilterGitHubRepos(links []Link) []string {
	var repos []string
	for _, l := range links {
		owner, repo, err := repoutil.ParseGitHubURL(l.URL)
		if err != nil {
			continue
		}
		repos = append(repos, owner+"/"+repo)
	}
	return repos
}

func linkKey(url string) string     { return string(constants.GitHubLinksKeyPrefix) + url }
func linkDateKey(url string) string { return string(constants.GitHubLinksDateKeyPrefix) + url }

// Cached returns the repo list cached under url if it is younger than
// SourceFeedCacheTTL, and whether a fresh entry was found.
func Cached(ctx context.Context, s *store.Store, url string, now time.Time) ([]string, bool, error) {
	rawDate, ok, err := s.Get(ctx, linkDateKey(url))
	if err != nil || !ok {
		return nil, false, err
	}
	cachedAt, err := time.Parse(time.RFC3339, rawDate)
	if err != nil {
		return nil, false, nil // corrupt timestamp is treated as a cache miss, not an error
	}
	if now.Sub(cachedAt) > constants.SourceFeedCacheTTL {
		return nil, false, nil
	}

	var repos []string
	if err := s.GetJSON(ctx, linkKey(url), &repos); err != nil {
		return nil, false, err
	}
	return repos, true, nil
}

// Store persists repos under url along with now as the cache timestamp.
func Store(ctx context.Context, s *store.Store, url string, repos []string, now time.Time) error {
	if err := s.SetJSON(ctx, linkKey(url), repos); err != nil {
		return err
	}
	return s.Set(ctx, linkDateKey(url), now.Format(time.RFC3339))
}

// Resolve returns the repo list for url, using the cache when fresh and
// otherwise extracting from md and refreshing the cache.
func Resolve(ctx context.Context, s *store.Store, url string, md []byte, now time.Time) ([]string, error) {
	if repos, ok, err := Cached(ctx, s, url, now); err != nil {
		return nil, err
	} else if ok {
		return repos, nil
	}

	links, err := ExtractLinks(md)
	if err != nil {
		return nil, err
	}
	repos := FilterGitHubRepos(links)
	if err := Store(ctx, s, url, repos, now); err != nil {
		return nil, err
	}
	return repos, nil
}
