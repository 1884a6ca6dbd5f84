package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/nanoshaper/ns-setup/internal/step"
)

var (
	boldStyle   = color.New(color.Bold)
	dimStyle    = color.New(color.FgHiBlack)
	cyanStyle   = color.New(color.FgCyan, color.Bold)
	greenStyle  = color.New(color.FgGreen)
	yellowStyle = color.New(color.FgYellow)
	redStyle    = color.New(color.FgRed)
	blueStyle   = color.New(color.FgBlue)
)

// useColor returns false when NO_COLOR is set or TERM is empty or dumb.
func useColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}

func colorize(style *color.Color, text string) string {
	if !useColor() {
		return text
	}
	return style.Sprint(text)
}

func markSuccess() string { return colorize(greenStyle, "✓") }
func markFailure() string { return colorize(redStyle, "✗") }
func markWarning() string { return colorize(yellowStyle, "⚠") }
func markInfo() string    { return colorize(blueStyle, "ℹ") }

func headerText(text string) string { return colorize(cyanStyle, text) }
func dimText(text string) string    { return colorize(dimStyle, text) }

func printStatus(mark, key, detail string) {
	fmt.Printf("  %s %-22s %s\n", mark, key, detail)
}

func printHeader(title string) {
	line := strings.Repeat("─", len(title)+4)
	fmt.Println(headerText(line))
	fmt.Println(headerText("  " + title))
	fmt.Println(headerText(line))
	fmt.Println()
}

func printSummaryBox(passed, warned, failed int) {
	fmt.Println()
	summary := fmt.Sprintf("  %s %d passed   %s %d warnings   %s %d failed",
		markSuccess(), passed, markWarning(), warned, markFailure(), failed)
	border := strings.Repeat("─", 48)
	fmt.Println(dimText(border))
	fmt.Println(summary)
	fmt.Println(dimText(border))
	fmt.Println()
}

func printStep(n, total int, label string) {
	fmt.Printf("  %s %s\n", colorize(boldStyle, fmt.Sprintf("[%d/%d]", n, total)), label)
}

func printCommand(parts []string) {
	fmt.Printf("      %s\n", dimText("$ "+step.FormatCommand(parts)))
}

func printDuration(d time.Duration) {
	fmt.Printf("      %s\n", dimText(fmt.Sprintf("done in %s", d.Round(time.Millisecond))))
}

// helpGroup is a labelled section of the grouped help screen.
type helpGroup struct {
	title   string
	entries []helpEntry
}

type helpEntry struct {
	name string
	desc string
}

func printGroupedHelp(groups []helpGroup) {
	for _, g := range groups {
		fmt.Println(colorize(boldStyle, g.title))
		for _, e := range g.entries {
			fmt.Printf("  %-24s %s\n", colorize(greenStyle, e.name), e.desc)
		}
		fmt.Println()
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// progress wraps reader with a progress bar on stderr. It returns the
// reader untouched when stderr is not a terminal.
func progress(reader io.Reader, size int64) (io.Reader, func()) {
	if !isTerminal(os.Stderr) {
		return reader, func() {}
	}

	bar := pb.
		New64(size).
		SetTemplate(
			pb.ProgressBarTemplate(
				dimStyle.Sprint(
					`   └ {{counters . }}` +
						` {{bar . "[" "=" ">" " " "]" }} {{percent . }}` +
						` {{speed . }}`,
				),
			),
		).
		SetRefreshRate(time.Second / 60).
		SetMaxWidth(100).
		SetWriter(os.Stderr).
		Start()

	return bar.NewProxyReader(reader), func() { bar.Finish() }
}

// echoRunner prints every step before handing it to next. With dryRun set
// the step is only recorded.
type echoRunner struct {
	next   step.Runner
	dryRun bool
	total  int
	n      int
}

func newEchoRunner(dryRun bool) *echoRunner {
	r := &echoRunner{dryRun: dryRun}
	if dryRun {
		r.next = &step.Recorder{}
	} else {
		r.next = step.NewExecRunner()
	}
	return r
}

func (r *echoRunner) Run(ctx context.Context, s step.Step) error {
	r.n++
	if r.total > 0 {
		printStep(r.n, r.total, s.Name)
	} else {
		fmt.Printf("  %s %s\n", colorize(boldStyle, "•"), s.Name)
	}
	printCommand(s.Argv)
	if s.LogFile != "" {
		fmt.Printf("      %s\n", dimText("output: "+s.LogFile))
	}
	if r.dryRun {
		_ = r.next.Run(ctx, s)
		fmt.Println("      [DRY] skipped")
		return nil
	}

	start := time.Now()
	err := r.next.Run(ctx, s)
	if err != nil {
		fmt.Printf("      %s %v\n", markFailure(), err)
		return err
	}
	printDuration(time.Since(start))
	return nil
}

// recorded returns the steps a dry run collected.
func (r *echoRunner) recorded() []step.Step {
	if rec, ok := r.next.(*step.Recorder); ok {
		return rec.Steps
	}
	return nil
}
