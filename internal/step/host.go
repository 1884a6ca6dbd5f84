package step

import (
	"context"
	"fmt"
	"io"
)

// Host bundles the collaborators every installer phase acts through.
type Host struct {
	Runner Runner
	Files  Files
	Out    io.Writer
	// Strict promotes every step and file operation to Checked.
	Strict bool
}

// Run runs s and applies its policy.
func (h Host) Run(ctx context.Context, s Step) error {
	return Do(ctx, h.Runner, s, h.Strict)
}

// RunAll runs steps in order.
func (h Host) RunAll(ctx context.Context, steps []Step) error {
	return DoAll(ctx, h.Runner, steps, h.Strict)
}

// Unchecked settles the result of a file operation that replaces a legacy
// shell command. Its failure is dropped unless the host is strict.
func (h Host) Unchecked(name string, err error) error {
	return Settle(name, Unchecked, err, h.Strict)
}

// Checked settles a file operation whose failure always stops the run.
func (h Host) Checked(name string, err error) error {
	return Settle(name, Checked, err, h.Strict)
}

func (h Host) Println(a ...any) {
	if h.Out != nil {
		fmt.Fprintln(h.Out, a...)
	}
}

func (h Host) Printf(format string, a ...any) {
	if h.Out != nil {
		fmt.Fprintf(h.Out, format, a...)
	}
}
