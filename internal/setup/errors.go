package setup

import (
	"errors"

	"github.com/nanoshaper/ns-setup/internal/step"
)

var (
	// ErrDeclined means the operator refused a required confirmation. It
	// ends the run without further phases and is not a failure.
	ErrDeclined = errors.New("setup declined by operator")

	// ErrUnsupportedPlatform means the host cannot be built automatically.
	ErrUnsupportedPlatform = errors.New("platform not supported for automated build")

	// ErrStepFailed matches any step failure surfaced by a checked step or
	// a strict run.
	ErrStepFailed = step.ErrFailed
)

// ExitCode maps a pipeline error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrDeclined):
		return 0
	case errors.Is(err, ErrUnsupportedPlatform):
		return 2
	default:
		return 1
	}
}
