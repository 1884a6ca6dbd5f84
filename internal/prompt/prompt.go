// Package prompt reads operator answers from a line-oriented input.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks blocking questions. All reads share one buffered reader so
// piped answers are consumed one line per question.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// Answers collects every question and the normalized answer given.
	Answers []Answer
}

// Answer is one recorded exchange.
type Answer struct {
	Question string
	Value    string
}

// New returns a Prompter reading from in and printing questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Stdio returns a Prompter on the process stdin and stdout.
func Stdio() *Prompter {
	return New(os.Stdin, os.Stdout)
}

// Ask prints question verbatim and returns the trimmed, lower-cased line.
// End of input yields an empty answer.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(p.out)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	p.Answers = append(p.Answers, Answer{Question: question, Value: answer})
	return answer, nil
}

// Confirm asks a yes/no question. Only "y" is affirmative; anything else,
// empty input and read errors included, is a no.
func (p *Prompter) Confirm(question string) bool {
	answer, err := p.Ask(question)
	return err == nil && IsYes(answer)
}

// Pause waits for one line of input.
func (p *Prompter) Pause(message string) {
	_, _ = p.Ask(message)
}

// IsYes reports whether an already normalized answer is affirmative.
func IsYes(answer string) bool {
	return answer == "y"
}

// Interactive reports whether f is a terminal.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
