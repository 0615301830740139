package stringutil

import (
	"regexp"
	"strings"

	"github.com/meticulous-run/meticulous/pkg/logger"
)

var sanitizeLog = logger.New("stringutil:sanitize")

// Regex patterns for detecting potential secret key names
var (
	// Match uppercase snake_case identifiers that look like secret names (e.g., MY_SECRET_KEY, GITHUB_TOKEN, API_KEY)
	// Excludes common non-sensitive keywords the engine itself emits in logs.
	secretNamePattern = regexp.MustCompile(`\b([A-Z][A-Z0-9]*_[A-Z0-9_]+)\b`)

	// Match PascalCase identifiers ending with security-related suffixes (e.g., GitHubToken, ApiKey, DeploySecret)
	pascalCaseSecretPattern = regexp.MustCompile(`\b([A-Z][a-z0-9]*(?:[A-Z][a-z0-9]*)*(?:Token|Key|Secret|Password|Credential|Auth))\b`)

	// Common non-sensitive keywords to exclude from redaction
	commonWorkflowKeywords = map[string]bool{
		"GITHUB":  true,
		"ENV":     true,
		"PATH":    true,
		"HOME":    true,
		"SHELL":   true,
		"REPO":    true,
		"REPOS":   true,
		"TARGET":  true,
		"STORE":   true,
		"QUEUE":   true,
		"WORKER":  true,
		"SESSION": true,
	}
)

// SanitizeErrorMessage removes potential secret key names from error messages before
// they reach logs, so a GitHub token or other credential leaked into an error string
// by a misbehaving subprocess does not end up in plaintext logs.
func SanitizeErrorMessage(message string) string {
	if message == "" {
		return message
	}

	sanitizeLog.Debugf("sanitizing error message: length=%d", len(message))

	// Redact uppercase snake_case patterns (e.g., MY_SECRET_KEY, API_TOKEN)
	sanitized := secretNamePattern.ReplaceAllStringFunc(message, func(match string) string {
		// Don't redact common engine keywords
		if commonWorkflowKeywords[match] {
			return match
		}
		// Don't redact this engine's own public configuration variables
		// (e.g., METICULOUS_WORKER_COUNT, METICULOUS_STORE_DSN)
		if strings.HasPrefix(match, "METICULOUS_") {
			return match
		}
		sanitizeLog.Debugf("redacted snake_case secret pattern: %s", match)
		return "[REDACTED]"
	})

	// Redact PascalCase patterns ending with security suffixes (e.g., GitHubToken, ApiKey)
	sanitized = pascalCaseSecretPattern.ReplaceAllString(sanitized, "[REDACTED]")

	return sanitized
}
