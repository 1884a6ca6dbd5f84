package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nanoshaper/ns-setup/internal/dependency"
	"github.com/nanoshaper/ns-setup/internal/platform"
	"github.com/nanoshaper/ns-setup/internal/prompt"
	"github.com/nanoshaper/ns-setup/internal/setup"
	"github.com/nanoshaper/ns-setup/internal/step"
)

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().Bool("dry-run", false, "print commands without executing")
	setupCmd.Flags().Bool("check-failures", false, "stop at the first failing command")
	setupCmd.Flags().Bool("rebuild-dependency", false, "rebuild CGAL even when its tree already exists")
	setupCmd.Flags().Bool("quiet", false, "skip the welcome banner")
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive install (packages, CGAL, build, install)",
	Long: `Runs the whole NanoShaper installation:

  1. asks for root privileges and the build variant (lib/exe/py)
  2. installs system packages (root only)
  3. downloads, patches and builds CGAL when its tree is missing
  4. builds the selected variant
  5. installs the result (root only) or prints manual steps

Failing commands are ignored unless --check-failures is given or
check_failures is set in the config file.`,
	RunE: runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	checkFailures, _ := cmd.Flags().GetBool("check-failures")
	rebuild, _ := cmd.Flags().GetBool("rebuild-dependency")
	quiet, _ := cmd.Flags().GetBool("quiet")

	if checkFailures {
		s.cfg.CheckFailures = true
	}
	if rebuild {
		s.cfg.RebuildDependency = true
	}

	if !prompt.Interactive(os.Stdin) {
		fmt.Println(dimText("stdin is not a terminal, answers are read line by line"))
	}

	host, runner := newHost(dryRun, s.cfg.CheckFailures)
	p := &setup.Pipeline{
		Root:    s.root,
		Config:  s.cfg,
		Profile: platform.Detect(),
		Prompt:  prompt.Stdio(),
		Host:    host,
		Verify:  verifyArchive,
		OnPhase: func(ph setup.Phase) {
			fmt.Println()
			fmt.Println(headerText("==> " + string(ph)))
		},
		Quiet: quiet,
	}

	res, err := p.Run(cmd.Context())
	if dryRun {
		printDryRunSummary(runner, host.Files)
	}
	if err != nil {
		return err
	}
	if res.Outcome != nil && res.Outcome.ResolvedPath != "" {
		printStatus(markSuccess(), "module", res.Outcome.ResolvedPath)
	}
	return nil
}

// newHost wires the runner and file operations for a command. A dry run
// records both without touching the host.
func newHost(dryRun, strict bool) (step.Host, *echoRunner) {
	runner := newEchoRunner(dryRun)
	var files step.Files = step.OSFiles{}
	if dryRun {
		files = &step.RecordingFiles{Next: step.OSFiles{}, Blocked: []string{string(filepath.Separator)}}
	}
	return step.Host{Runner: runner, Files: files, Out: os.Stdout, Strict: strict}, runner
}

func printDryRunSummary(runner *echoRunner, files step.Files) {
	fmt.Println()
	printHeader("Dry Run")
	printStatus(markInfo(), "commands", fmt.Sprintf("%d recorded", len(runner.recorded())))
	rec, ok := files.(*step.RecordingFiles)
	if !ok {
		return
	}
	printStatus(markInfo(), "file operations", fmt.Sprintf("%d recorded", len(rec.Ops)))
	for _, op := range rec.Ops {
		if op.Kind == "sync" {
			continue
		}
		fmt.Printf("      %s\n", dimText(op.String()))
	}
}

// verifyArchive checks a downloaded dependency archive and prints what it
// found.
func verifyArchive(archive string, spec dependency.Spec) error {
	rep, err := dependency.Verify(archive, spec, progress)
	if rep != nil {
		printReport(rep)
	}
	if err != nil {
		printStatus(markFailure(), "archive", err.Error())
		return err
	}
	printStatus(markSuccess(), "archive", "verified")
	return nil
}

func printReport(rep *dependency.Report) {
	printStatus(markInfo(), "file", rep.Path)
	printStatus(markInfo(), "format", rep.Format)
	printStatus(markInfo(), "size", formatSize(rep.Size))
	printStatus(markInfo(), "entries", fmt.Sprintf("%d", rep.Entries))
	top := rep.TopDir
	if top == "" {
		top = "(none)"
	}
	printStatus(markInfo(), "top_dir", top)
	printStatus(markInfo(), "blake3", rep.Blake3)
	paths := make([]string, 0, len(rep.Found))
	for p := range rep.Found {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if rep.Found[p] {
			printStatus(markSuccess(), "contains", p)
		} else {
			printStatus(markFailure(), "missing", p)
		}
	}
}
