package console

import (
	"os"

	"github.com/meticulous-run/meticulous/pkg/constants"
)

// IsAccessibleMode reports whether huh forms should render in accessible mode,
// which trades interactive widgets (spinners, live selection highlighting) for
// plain sequential prompts that work with screen readers. Set ACCESSIBLE to any
// non-empty value to opt in.
func IsAccessibleMode() bool {
	return os.Getenv(string(constants.AccessibleEnvVar)) != ""
}
