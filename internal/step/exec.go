package step

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// ExecRunner runs steps as child processes. Streams default to the
// orchestrator's own stdio.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner wired to the process stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Run(ctx context.Context, s Step) error {
	if len(s.Argv) == 0 {
		return fmt.Errorf("empty command in step %q", s.Name)
	}

	c := exec.CommandContext(ctx, s.Argv[0], s.Argv[1:]...)
	c.Dir = s.Dir
	c.Stdin = r.Stdin
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr

	if s.LogFile != "" {
		logPath := s.LogFile
		if !filepath.IsAbs(logPath) && s.Dir != "" {
			logPath = filepath.Join(s.Dir, logPath)
		}
		f, err := os.Create(logPath)
		if err != nil {
			return fmt.Errorf("open log %s: %w", logPath, err)
		}
		defer f.Close()
		c.Stdout = f
		c.Stderr = f
	}

	return c.Run()
}

// Recorder records steps instead of running them. It backs dry runs and
// tests. Fail maps a step name to the error its run should report.
type Recorder struct {
	Steps []Step
	Fail  map[string]error
}

func (r *Recorder) Run(_ context.Context, s Step) error {
	r.Steps = append(r.Steps, s)
	if err, ok := r.Fail[s.Name]; ok {
		return err
	}
	return nil
}

// Lines returns the recorded command lines.
func (r *Recorder) Lines() []string {
	out := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		out = append(out, s.String())
	}
	return out
}
