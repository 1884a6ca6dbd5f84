package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nanoshaper/ns-setup/internal/build"
	"github.com/nanoshaper/ns-setup/internal/config"
	"github.com/nanoshaper/ns-setup/internal/variant"
)

type cleanTarget struct {
	id          string
	description string
	paths       []string
}

func buildCleanTargets(root string, cfg *config.Config) []cleanTarget {
	targets := make([]cleanTarget, 0, len(variant.All)+3)
	for _, v := range variant.All {
		targets = append(targets, cleanTarget{
			id:          v.Key(),
			description: fmt.Sprintf("%s build directory (%s)", v.Title(), v.OutputDir()),
			paths:       []string{filepath.Join(root, v.OutputDir())},
		})
	}

	dep := cfg.Dependency
	return append(targets,
		cleanTarget{
			id:          "cgal",
			description: fmt.Sprintf("%s source and build tree (%s)", dep.Name, dep.SourceDir),
			paths:       []string{dep.Dir(root)},
		},
		cleanTarget{
			id:          "archive",
			description: "downloaded " + dep.Archive,
			paths:       []string{filepath.Join(root, dep.Archive)},
		},
		cleanTarget{
			id:          "config",
			description: "generated " + build.ProjectConfig,
			paths:       []string{filepath.Join(root, build.ProjectConfig)},
		},
	)
}

func targetIDs(targets []cleanTarget) string {
	ids := make([]string, 0, len(targets)+1)
	for _, t := range targets {
		ids = append(ids, t.id)
	}
	return strings.Join(append(ids, "all"), ", ")
}

func init() {
	cleanCmd := &cobra.Command{
		Use:   "clean [target...]",
		Short: "Remove build outputs, the CGAL tree and the downloaded archive",
		Long: `Remove files left behind by 'ns-setup setup', 'build' and 'fetch'.

Without arguments, lists what can be cleaned and how much space each uses.
With target names, removes those targets.

Targets: exe, lib, py, cgal, archive, config, all

Flags:
  --yes           Skip confirmation prompt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			yes, _ := cmd.Flags().GetBool("yes")

			targets := buildCleanTargets(s.root, s.cfg)
			if len(args) == 0 {
				return runCleanList(targets)
			}
			return runClean(targets, args, dryRun, yes)
		},
	}
	cleanCmd.Flags().Bool("dry-run", false, "show what would be removed without deleting")
	cleanCmd.Flags().Bool("yes", false, "skip confirmation prompt")

	rootCmd.AddCommand(cleanCmd)
}

func runCleanList(targets []cleanTarget) error {
	printHeader("Cleanable Build Outputs")
	fmt.Println("Use: ns-setup clean <target> [--dry-run] [--yes]")
	fmt.Println()

	var totalBytes int64
	for _, t := range targets {
		var size int64
		var exists bool
		for _, p := range t.paths {
			if s, ok := dirSize(p); ok {
				size += s
				exists = true
			}
		}
		if exists {
			printStatus(markWarning(), t.id, fmt.Sprintf("%s  %s", formatSize(size), t.description))
			totalBytes += size
		} else {
			printStatus(markInfo(), t.id, fmt.Sprintf("%-10s %s", "(clean)", t.description))
		}
	}

	fmt.Printf("\n%s total reclaimable: %s\n", markInfo(), formatSize(totalBytes))
	fmt.Println()
	fmt.Println("Clean all:          ns-setup clean all")
	fmt.Println("Specific target:    ns-setup clean exe cgal")
	fmt.Println()
	return nil
}

func runClean(targets []cleanTarget, args []string, dryRun, yes bool) error {
	targetMap := make(map[string]cleanTarget, len(targets))
	for _, t := range targets {
		targetMap[t.id] = t
	}

	var selected []cleanTarget
	for _, arg := range args {
		if arg == "all" {
			selected = targets
			break
		}
		t, ok := targetMap[arg]
		if !ok {
			return fmt.Errorf("unknown clean target: %s (available: %s)", arg, targetIDs(targets))
		}
		selected = append(selected, t)
	}

	type removal struct {
		target string
		path   string
	}
	var removals []removal
	for _, t := range selected {
		for _, p := range t.paths {
			if _, err := os.Stat(p); err == nil {
				removals = append(removals, removal{target: t.id, path: p})
			}
		}
	}

	if len(removals) == 0 {
		fmt.Println("Nothing to clean.")
		return nil
	}

	printHeader("Clean")
	var totalSize int64
	for _, r := range removals {
		s, _ := dirSize(r.path)
		totalSize += s
		fmt.Printf("  %s %s %s\n", markWarning(), dimText(fmt.Sprintf("[%s]", r.target)), r.path)
	}
	fmt.Printf("\n  Total: %s across %d paths\n\n", formatSize(totalSize), len(removals))

	if dryRun {
		fmt.Println("  [DRY RUN] No files removed.")
		return nil
	}

	if !yes {
		if !confirmProceed("Remove these paths? [y/N]: ") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	var failed []string
	for _, r := range removals {
		fmt.Printf("  Removing %s ...", r.path)
		if err := os.RemoveAll(r.path); err != nil {
			fmt.Printf(" %s %v\n", markFailure(), err)
			failed = append(failed, r.path)
		} else {
			fmt.Printf(" %s\n", markSuccess())
		}
	}

	fmt.Println()
	if len(failed) > 0 {
		printStatus(markWarning(), "clean", fmt.Sprintf("%d of %d removals failed", len(failed), len(removals)))
		return fmt.Errorf("%d removal(s) failed", len(failed))
	}
	printStatus(markSuccess(), "clean", fmt.Sprintf("reclaimed %s", formatSize(totalSize)))
	return nil
}

func dirSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	if !info.IsDir() {
		return info.Size(), true
	}

	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, true
}

func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
