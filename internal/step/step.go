// Package step models the external commands the installer runs.
//
// Every command is a typed Step carrying a result Policy. Most steps are
// Unchecked: the installer has always run package managers, downloads,
// archive extraction and native builds fire-and-forget, and a non-zero exit
// from any of them is never inspected. Callers may opt into strict mode,
// which promotes every step to Checked.
package step

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Policy declares whether a step's exit status is inspected.
type Policy int

const (
	// Unchecked steps never fail the pipeline. The exit status is dropped.
	Unchecked Policy = iota
	// Checked steps abort the pipeline when the command fails.
	Checked
)

func (p Policy) String() string {
	if p == Checked {
		return "checked"
	}
	return "unchecked"
}

// Step is one external command invocation.
type Step struct {
	Name string
	Argv []string
	// Dir is the working directory. Empty means the caller's directory.
	Dir string
	// LogFile, when set, receives stdout and stderr instead of the terminal.
	// A relative name is resolved against Dir.
	LogFile string
	Policy  Policy
}

// Command builds an unchecked step.
func Command(name string, argv ...string) Step {
	return Step{Name: name, Argv: argv}
}

// In returns a copy of s running inside dir.
func (s Step) In(dir string) Step {
	s.Dir = dir
	return s
}

// LoggedTo returns a copy of s whose output is redirected to file.
func (s Step) LoggedTo(file string) Step {
	s.LogFile = file
	return s
}

// MustSucceed returns a checked copy of s.
func (s Step) MustSucceed() Step {
	s.Policy = Checked
	return s
}

// String renders the command line the way an operator would type it.
func (s Step) String() string {
	line := FormatCommand(s.Argv)
	if s.LogFile != "" {
		line += " > " + s.LogFile
	}
	return line
}

// FormatCommand joins argv, quoting the parts that contain blanks or quotes.
func FormatCommand(parts []string) string {
	if len(parts) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.ContainsAny(p, " \t\"'") {
			quoted = append(quoted, fmt.Sprintf("%q", p))
		} else {
			quoted = append(quoted, p)
		}
	}
	return strings.Join(quoted, " ")
}

// ErrFailed matches every *Error with errors.Is.
var ErrFailed = errors.New("step failed")

// Error reports a step whose failure was not ignored.
type Error struct {
	Step string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrFailed
}

// Runner executes steps.
type Runner interface {
	Run(ctx context.Context, s Step) error
}

// Do runs s on r and applies its policy. With strict set every step is
// treated as Checked.
func Do(ctx context.Context, r Runner, s Step, strict bool) error {
	return Settle(s.Name, s.Policy, r.Run(ctx, s), strict)
}

// DoAll runs steps in order, stopping only at the first step whose failure
// is not ignored.
func DoAll(ctx context.Context, r Runner, steps []Step, strict bool) error {
	for _, s := range steps {
		if err := Do(ctx, r, s, strict); err != nil {
			return err
		}
	}
	return nil
}

// Settle applies a result policy to an already obtained error. It is used
// for host file operations that stand in for legacy shell commands.
func Settle(name string, policy Policy, err error, strict bool) error {
	if err == nil {
		return nil
	}
	if policy == Checked || strict {
		return &Error{Step: name, Err: err}
	}
	return nil
}
