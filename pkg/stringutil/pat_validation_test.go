//go:build !integration

package stringutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPAT(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected PATType
	}{
		{
			name:     "fine-grained PAT",
			token:    "github_pat_abc123xyz",
			expected: PATTypeFineGrained,
		},
		{
			name:     "classic PAT",
			token:    "ghp_abc123xyz",
			expected: PATTypeClassic,
		},
		{
			name:     "OAuth token",
			token:    "gho_abc123xyz",
			expected: PATTypeOAuth,
		},
		{
			name:     "unknown token - random string",
			token:    "random_token_123",
			expected: PATTypeUnknown,
		},
		{
			name:     "unknown token - empty",
			token:    "",
			expected: PATTypeUnknown,
		},
		{
			name:     "partial prefix - github_pa",
			token:    "github_pa_abc123",
			expected: PATTypeUnknown,
		},
		{
			name:     "partial prefix - gh_",
			token:    "gh_abc123",
			expected: PATTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyPAT(tt.token)
			assert.Equal(t, tt.expected, result, "ClassifyPAT should return correct type")
		})
	}
}

func TestGetPATTypeDescription(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{
			name:     "fine-grained PAT",
			token:    "github_pat_abc123",
			expected: "fine-grained personal access token",
		},
		{
			name:     "classic PAT",
			token:    "ghp_abc123",
			expected: "classic personal access token",
		},
		{
			name:     "OAuth token",
			token:    "gho_abc123",
			expected: "OAuth token",
		},
		{
			name:     "unknown token",
			token:    "random",
			expected: "unknown token type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetPATTypeDescription(tt.token)
			assert.Equal(t, tt.expected, result, "should return correct description")
		})
	}
}
