//go:build !js && !wasm

package console

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/meticulous-run/meticulous/pkg/tty"
)

// PromptSelect shows an interactive single-select menu
// Returns the selected value or an error
func PromptSelect(title, description string, options []SelectOption) (string, error) {
	// Validate inputs first
	if len(options) == 0 {
		return "", fmt.Errorf("no options provided")
	}

	// Check if stderr is a TTY - if not, we can't show interactive forms
	if !tty.IsStderrTerminal() {
		return "", fmt.Errorf("interactive selection not available (not a TTY)")
	}

	var selected string

	// Convert options to huh.Option format
	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		huhOptions[i] = huh.NewOption(opt.Label, opt.Value)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Description(description).
				Options(huhOptions...).
				Value(&selected),
		),
	).WithAccessible(IsAccessibleMode())

	if err := form.Run(); err != nil {
		return "", err
	}

	return selected, nil
}
