//go:build !integration

package spellcheck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadParsesReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spelling.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"word":"recieve","suggestion_priority":2,"file_count":3,"replacement":"receive","capitalized_replacement":"Receive","files":["a.go","b.go"]}
	]`), 0o644))

	candidates, err := Load(path)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "recieve", candidates[0].Word)
}

func TestRankOrdersByPriorityThenFileCountThenReplacement(t *testing.T) {
	candidates := []Candidate{
		{Word: "a", SuggestionPriority: 1, FileCount: 5, Replacement: "zzz"},
		{Word: "b", SuggestionPriority: 2, FileCount: 1, Replacement: "aaa"},
		{Word: "c", SuggestionPriority: 2, FileCount: 1, Replacement: "bbb"},
	}
	top, skipped := Rank(candidates, 10)
	require.Equal(t, 0, skipped)
	require.Equal(t, "c", top[0].Word) // priority 2, replacement "bbb" > "aaa"
	require.Equal(t, "b", top[1].Word)
	require.Equal(t, "a", top[2].Word)
}

func TestRankCapsAtNAndReportsSkipped(t *testing.T) {
	candidates := make([]Candidate, 5)
	for i := range candidates {
		candidates[i] = Candidate{Word: string(rune('a' + i)), SuggestionPriority: i}
	}
	top, skipped := Rank(candidates, 2)
	require.Len(t, top, 2)
	require.Equal(t, 3, skipped)
}

func TestRankDefaultsToEngineMax(t *testing.T) {
	candidates := make([]Candidate, 60)
	top, skipped := Rank(candidates, 0)
	require.Len(t, top, 50)
	require.Equal(t, 10, skipped)
}
