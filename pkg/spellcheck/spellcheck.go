// Package spellcheck invokes an external spell-checking subprocess over a
// checked-out repository, parses its spelling.json report, and ranks
// candidate misspellings for operator review.
package spellcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/meticulous-run/meticulous/pkg/constants"
	"github.com/meticulous-run/meticulous/pkg/logger"
	"github.com/meticulous-run/meticulous/pkg/stringutil"
)

var checkLog = logger.New("spellcheck")

// Candidate is one misspelling the external checker flagged, decorated with
// the suggestion the operator will be offered.
type Candidate struct {
	Word                   string   `json:"word"`
	SuggestionPriority     int      `json:"suggestion_priority"`
	FileCount              int      `json:"file_count"`
	Replacement            string   `json:"replacement"`
	CapitalizedReplacement string   `json:"capitalized_replacement"`
	Files                  []string `json:"files"`
}

// Run invokes the external spell-check subprocess against repoDir and
// returns the parsed spelling.json report. The engine treats the checker as
// a black box: any executable on PATH producing the documented JSON shape
// works.
func Run(ctx context.Context, checker, repoDir string) ([]Candidate, error) {
	reportPath := filepath.Join(repoDir, string(constants.SpellingJSONFile))

	cmd := exec.CommandContext(ctx, checker, repoDir, "--json-out", reportPath)
	cmd.Dir = repoDir
	if output, err := cmd.CombinedOutput(); err != nil {
		checkLog.Error(fmt.Sprintf("spell checker exited non-zero: %s", stringutil.SanitizeErrorMessage(string(output))), err)
		return nil, fmt.Errorf("spellcheck: run %s: %w", checker, err)
	}

	return Load(reportPath)
}

// Load reads and parses a previously written spelling.json report.
func Load(reportPath string) ([]Candidate, error) {
	raw, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, fmt.Errorf("spellcheck: load %s: %w", reportPath, err)
	}

	if err := validateReportShape(raw); err != nil {
		return nil, fmt.Errorf("spellcheck: %s: %w", reportPath, err)
	}

	var candidates []Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, fmt.Errorf("spellcheck: parse %s: %w", reportPath, err)
	}
	return candidates, nil
}

// Rank sorts candidates descending by (SuggestionPriority, FileCount,
// Replacement) and returns the top n along with the count of candidates
// dropped from the presented list. n <= 0 falls back to the engine default.
func Rank(candidates []Candidate, n int) (top []Candidate, skipped int) {
	if n <= 0 {
		n = constants.MaxSuggestionCandidates
	}

	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].SuggestionPriority != ranked[j].SuggestionPriority {
			return ranked[i].SuggestionPriority > ranked[j].SuggestionPriority
		}
		if ranked[i].FileCount != ranked[j].FileCount {
			return ranked[i].FileCount > ranked[j].FileCount
		}
		return ranked[i].Replacement > ranked[j].Replacement
	})

	if len(ranked) <= n {
		return ranked, 0
	}
	return ranked[:n], len(ranked) - n
}
