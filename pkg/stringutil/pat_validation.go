package stringutil

import (
	"strings"
)

// PATType represents the type of a GitHub Personal Access Token
type PATType string

const (
	// PATTypeFineGrained is a fine-grained personal access token (starts with "github_pat_")
	PATTypeFineGrained PATType = "fine-grained"
	// PATTypeClassic is a classic personal access token (starts with "ghp_")
	PATTypeClassic PATType = "classic"
	// PATTypeOAuth is an OAuth token (starts with "gho_")
	PATTypeOAuth PATType = "oauth"
	// PATTypeUnknown is an unknown token type
	PATTypeUnknown PATType = "unknown"
)

// String returns the string representation of a PATType
func (p PATType) String() string {
	return string(p)
}

// ClassifyPAT determines the type of a GitHub Personal Access Token based on its prefix.
//
// Token prefixes:
//   - "github_pat_" = Fine-grained PAT
//   - "ghp_" = Classic PAT
//   - "gho_" = OAuth token
func ClassifyPAT(token string) PATType {
	switch {
	case strings.HasPrefix(token, "github_pat_"):
		return PATTypeFineGrained
	case strings.HasPrefix(token, "ghp_"):
		return PATTypeClassic
	case strings.HasPrefix(token, "gho_"):
		return PATTypeOAuth
	default:
		return PATTypeUnknown
	}
}

// GetPATTypeDescription returns a human-readable description of the PAT type
func GetPATTypeDescription(token string) string {
	switch ClassifyPAT(token) {
	case PATTypeFineGrained:
		return "fine-grained personal access token"
	case PATTypeClassic:
		return "classic personal access token"
	case PATTypeOAuth:
		return "OAuth token"
	default:
		return "unknown token type"
	}
}
