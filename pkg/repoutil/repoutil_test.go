//go:build !integration

package repoutil

import "testing"

func TestSplitRepoSlug(t *testing.T) {
	tests := []struct {
		name          string
		slug          string
		expectedOwner string
		expectedRepo  string
		expectError   bool
	}{
		{
			name:          "valid slug",
			slug:          "octocat/hello-world",
			expectedOwner: "octocat",
			expectedRepo:  "hello-world",
			expectError:   false,
		},
		{
			name:        "invalid slug - no separator",
			slug:        "octocat",
			expectError: true,
		},
		{
			name:        "invalid slug - multiple separators",
			slug:        "octocat/hello-world/extra",
			expectError: true,
		},
		{
			name:        "invalid slug - empty",
			slug:        "",
			expectError: true,
		},
		{
			name:        "invalid slug - only separator",
			slug:        "/",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := SplitRepoSlug(tt.slug)
			if tt.expectError {
				if err == nil {
					t.Errorf("SplitRepoSlug(%q) expected error, got nil", tt.slug)
				}
				return
			}
			if err != nil {
				t.Errorf("SplitRepoSlug(%q) unexpected error: %v", tt.slug, err)
			}
			if owner != tt.expectedOwner {
				t.Errorf("SplitRepoSlug(%q) owner = %q; want %q", tt.slug, owner, tt.expectedOwner)
			}
			if repo != tt.expectedRepo {
				t.Errorf("SplitRepoSlug(%q) repo = %q; want %q", tt.slug, repo, tt.expectedRepo)
			}
		})
	}
}

func TestParseGitHubURL(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		expectedOwner string
		expectedRepo  string
		expectError   bool
	}{
		{
			name:          "SSH format with .git",
			url:           "git@github.com:octocat/hello-world.git",
			expectedOwner: "octocat",
			expectedRepo:  "hello-world",
			expectError:   false,
		},
		{
			name:          "SSH format without .git",
			url:           "git@github.com:octocat/hello-world",
			expectedOwner: "octocat",
			expectedRepo:  "hello-world",
			expectError:   false,
		},
		{
			name:          "HTTPS format with .git",
			url:           "https://github.com/meticulous-run/meticulous.git",
			expectedOwner: "meticulous-run",
			expectedRepo:  "meticulous",
			expectError:   false,
		},
		{
			name:          "HTTPS format without .git",
			url:           "https://github.com/octocat/hello-world",
			expectedOwner: "octocat",
			expectedRepo:  "hello-world",
			expectError:   false,
		},
		{
			name:          "HTTPS with www",
			url:           "https://www.github.com/owner/repo.git",
			expectedOwner: "owner",
			expectedRepo:  "repo",
			expectError:   false,
		},
		{
			name:          "HTTP instead of HTTPS",
			url:           "http://github.com/owner/repo.git",
			expectedOwner: "owner",
			expectedRepo:  "repo",
			expectError:   false,
		},
		{
			name:        "non-GitHub URL",
			url:         "https://gitlab.com/user/repo.git",
			expectError: true,
		},
		{
			name:        "invalid URL",
			url:         "not-a-url",
			expectError: true,
		},
		{
			name:        "empty URL",
			url:         "",
			expectError: true,
		},
		{
			name:        "URL with trailing slash",
			url:         "https://github.com/owner/repo/",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseGitHubURL(tt.url)
			if tt.expectError {
				if err == nil {
					t.Errorf("ParseGitHubURL(%q) expected error, got nil", tt.url)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseGitHubURL(%q) unexpected error: %v", tt.url, err)
			}
			if owner != tt.expectedOwner {
				t.Errorf("ParseGitHubURL(%q) owner = %q; want %q", tt.url, owner, tt.expectedOwner)
			}
			if repo != tt.expectedRepo {
				t.Errorf("ParseGitHubURL(%q) repo = %q; want %q", tt.url, repo, tt.expectedRepo)
			}
		})
	}
}

func TestSanitizeForFilename(t *testing.T) {
	tests := []struct {
		name     string
		slug     string
		expected string
	}{
		{
			name:     "normal slug",
			slug:     "octocat/hello-world",
			expected: "octocat-hello-world",
		},
		{
			name:     "empty slug",
			slug:     "",
			expected: "clone-mode",
		},
		{
			name:     "slug with multiple slashes",
			slug:     "owner/repo/extra",
			expected: "owner-repo-extra",
		},
		{
			name:     "slug with hyphen",
			slug:     "owner/my-repo",
			expected: "owner-my-repo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeForFilename(tt.slug)
			if result != tt.expected {
				t.Errorf("SanitizeForFilename(%q) = %q; want %q", tt.slug, result, tt.expected)
			}
		})
	}
}

func TestSplitRepoSlug_SpecialCharacters(t *testing.T) {
	tests := []struct {
		name          string
		slug          string
		expectedOwner string
		expectedRepo  string
	}{
		{"hyphen in owner", "github-next/repo", "github-next", "repo"},
		{"hyphen in repo", "owner/my-repo", "owner", "my-repo"},
		{"underscore in names", "my_org/my_repo", "my_org", "my_repo"},
		{"numbers in names", "org123/repo456", "org123", "repo456"},
		{"dots in names", "org.name/repo.name", "org.name", "repo.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := SplitRepoSlug(tt.slug)
			if err != nil {
				t.Errorf("Unexpected error for slug %q: %v", tt.slug, err)
			}
			if owner != tt.expectedOwner || repo != tt.expectedRepo {
				t.Errorf("SplitRepoSlug(%q) = (%q, %q); want (%q, %q)",
					tt.slug, owner, repo, tt.expectedOwner, tt.expectedRepo)
			}
		})
	}
}

func TestSplitRepoSlug_Idempotent(t *testing.T) {
	slugs := []string{
		"owner/repo",
		"github-next/gh-aw",
		"my_org/my_repo",
		"org123/repo456",
	}

	for _, slug := range slugs {
		owner, repo, err := SplitRepoSlug(slug)
		if err != nil {
			t.Errorf("Unexpected error for slug %q: %v", slug, err)
			continue
		}
		if rejoined := owner + "/" + repo; rejoined != slug {
			t.Errorf("Split and rejoin changed slug: %q -> %q", slug, rejoined)
		}
	}
}

func BenchmarkSplitRepoSlug(b *testing.B) {
	slug := "octocat/hello-world"
	for i := 0; i < b.N; i++ {
		_, _, _ = SplitRepoSlug(slug)
	}
}

func BenchmarkParseGitHubURL(b *testing.B) {
	url := "https://github.com/meticulous-run/meticulous.git"
	for i := 0; i < b.N; i++ {
		_, _, _ = ParseGitHubURL(url)
	}
}

func BenchmarkSanitizeForFilename(b *testing.B) {
	slug := "octocat/hello-world"
	for i := 0; i < b.N; i++ {
		_ = SanitizeForFilename(slug)
	}
}
