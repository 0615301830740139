// Package replace implements the case-preserving, whole-word byte
// replacement used by the spell-check pipeline to rewrite a misspelled word
// wherever it occurs in a file, without touching substrings inside longer
// identifiers.
package replace

import (
	"regexp"
)

// isAlpha reports whether b is an ASCII letter. A match is a whole word only
// when neither the byte immediately before nor immediately after it is
// alphabetic (or the match sits at the start/end of the input) — a narrower,
// source-specific definition than a standard regex word boundary, which also
// treats digits and underscore as word characters.
func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// Word compiles a case-insensitive matcher for word, operating on raw bytes
// so files containing undecodable byte sequences are not corrupted by a
// round trip through a string/rune representation.
func Word(word string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word))
}

// WholeWord rewrites every whole-word, case-insensitive occurrence of the
// pattern built by Word in src. A match whose first byte is uppercase is
// replaced with capitalized; every other match is replaced with replacement
// verbatim. Occurrences that are part of a longer identifier are left alone.
func WholeWord(src []byte, pattern *regexp.Regexp, replacement, capitalized string) []byte {
	matches := pattern.FindAllIndex(src, -1)
	if len(matches) == 0 {
		return src
	}

	out := make([]byte, 0, len(src))
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start < last {
			continue // overlapped a previous whole-word match; skip
		}
		leftBoundary := start == 0 || !isAlpha(src[start-1])
		rightBoundary := end == len(src) || !isAlpha(src[end])
		if !leftBoundary || !rightBoundary {
			continue
		}

		out = append(out, src[last:start]...)
		if isUpper(src[start]) {
			out = append(out, []byte(capitalized)...)
		} else {
			out = append(out, []byte(replacement)...)
		}
		last = end
	}
	out = append(out, src[last:]...)
	return out
}
