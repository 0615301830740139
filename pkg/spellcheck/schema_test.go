//go:build !integration

package spellcheck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRejectsReportMissingRequiredField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spelling.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"word":"recieve"}]`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsNonArrayReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spelling.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"word":"recieve"}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateReportShapeAcceptsWellFormedReport(t *testing.T) {
	raw := []byte(`[{"word":"recieve","suggestion_priority":2,"file_count":1,"replacement":"receive","files":["a.go"]}]`)
	require.NoError(t, validateReportShape(raw))
}
