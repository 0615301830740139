//go:build !js && !wasm

package console

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/meticulous-run/meticulous/pkg/tty"
)

// PromptInput shows an interactive text input prompt using Bubble Tea (huh)
// Returns the entered text or an error
func PromptInput(title, description, placeholder string) (string, error) {
	// Check if stderr is a TTY - if not, we can't show interactive forms
	if !tty.IsStderrTerminal() {
		return "", fmt.Errorf("interactive input not available (not a TTY)")
	}

	var value string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description(description).
				Placeholder(placeholder).
				Value(&value),
		),
	).WithAccessible(IsAccessibleMode())

	if err := form.Run(); err != nil {
		return "", err
	}

	return value, nil
}

