package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nanoshaper/ns-setup/internal/dependency"
	"github.com/nanoshaper/ns-setup/internal/platform"
	"github.com/nanoshaper/ns-setup/internal/setup"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.AddCommand(fetchInspectCmd)

	fetchCmd.Flags().Bool("build", false, "build CGAL after fetching, or rebuild an existing tree")
	fetchCmd.Flags().Bool("verify", false, "inspect the downloaded archive before extracting it")
	fetchCmd.Flags().Bool("dry-run", false, "print commands without executing")
	fetchCmd.Flags().Bool("check-failures", false, "stop at the first failing command")
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download, extract and patch CGAL",
	Long: `Downloads the pinned CGAL archive into the source root, extracts it and
applies the bundled header patches. Nothing is done when the CGAL tree
already exists. With --build the tree is also configured and compiled.`,
	RunE: runFetch,
}

var fetchInspectCmd = &cobra.Command{
	Use:   "inspect [archive]",
	Short: "Verify a downloaded CGAL archive",
	Long: `Reads a CGAL archive without extracting it and checks that it unpacks to
the expected directory, contains every patch target and, when a blake3
digest is pinned in the config, matches it.

Supported formats: .tar.gz, .tgz, .tar.bz2, .tar.xz, .tar.zst`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetchInspect,
}

func runFetch(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	buildToo, _ := cmd.Flags().GetBool("build")
	verify, _ := cmd.Flags().GetBool("verify")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	checkFailures, _ := cmd.Flags().GetBool("check-failures")

	profile := platform.Detect()
	if profile.OS == platform.Windows {
		return setup.ErrUnsupportedPlatform
	}

	cfg := s.cfg
	spec := cfg.Dependency
	host, runner := newHost(dryRun, checkFailures || cfg.CheckFailures)

	printHeader("Fetch " + spec.Name)
	fmt.Printf("url:        %s\n", spec.URL())
	fmt.Printf("source_dir: %s\n", spec.Dir(s.root))
	fmt.Printf("downloader: %s\n", dependency.DownloaderFor(profile.OS))
	fmt.Printf("dry_run:    %v\n", dryRun)

	f := &dependency.Fetcher{
		Spec:       spec,
		Root:       s.root,
		Downloader: dependency.DownloaderFor(profile.OS),
		Host:       host,
	}
	if verify {
		f.Inspect = verifyArchive
	}

	start := time.Now()
	fetched, err := f.Ensure(cmd.Context())
	if err != nil {
		return err
	}
	if !fetched {
		printStatus(markSuccess(), "source_dir", "already present, skipping download")
	}

	if buildToo || cfg.RebuildDependency {
		b := &dependency.Builder{
			Spec:         spec,
			Root:         s.root,
			Mode:         profile.CompilationMode(),
			ConfigureLog: cfg.Logs.DependencyConfigure,
			BuildLog:     cfg.Logs.DependencyBuild,
			Host:         host,
		}
		runner.total = runner.n + len(b.Steps())
		if err := b.Build(cmd.Context()); err != nil {
			return err
		}
	} else if fetched {
		printStatus(markInfo(), "build", "skipped, use --build to compile "+spec.Name)
	}

	if dryRun {
		printDryRunSummary(runner, host.Files)
		return nil
	}
	printDuration(time.Since(start))
	return nil
}

func runFetchInspect(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	spec := s.cfg.Dependency
	archive := filepath.Join(s.root, spec.Archive)
	if len(args) == 1 {
		archive = args[0]
	}

	printHeader("Inspect " + filepath.Base(archive))
	return verifyArchive(archive, spec)
}
