package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nanoshaper/ns-setup/internal/build"
	"github.com/nanoshaper/ns-setup/internal/platform"
	"github.com/nanoshaper/ns-setup/internal/setup"
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().String("variant", "exe", "variant to build: exe, lib or py")
	buildCmd.Flags().Bool("force32", false, "force a 32-bit build regardless of the platform")
	buildCmd.Flags().Bool("dry-run", false, "print commands without executing")
	buildCmd.Flags().Bool("check-failures", false, "stop at the first failing command")
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a NanoShaper variant (cmake + make)",
	Long: `Builds one NanoShaper variant against the CGAL tree in the source root.

The variant's CMakeLists file is copied to CMakeLists.txt, its output
directory is emptied, then cmake and make run there. Output goes to the
configure and build log files named in the config.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	key, _ := cmd.Flags().GetString("variant")
	force32, _ := cmd.Flags().GetBool("force32")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	checkFailures, _ := cmd.Flags().GetBool("check-failures")

	v, err := parseVariant(key)
	if err != nil {
		return err
	}

	profile := platform.Detect()
	if profile.OS == platform.Windows {
		return setup.ErrUnsupportedPlatform
	}
	mode := profile.CompilationMode()
	if force32 {
		mode = platform.CompilationMode{WordWidth: platform.Forced32}
	}

	cfg := s.cfg
	host, runner := newHost(dryRun, checkFailures || cfg.CheckFailures)
	d := &build.Driver{
		Project:       cfg.Project,
		Variant:       v,
		Root:          s.root,
		DependencyDir: cfg.Dependency.Dir(s.root),
		Mode:          mode,
		ConfigureLog:  cfg.Logs.ProjectConfigure,
		BuildLog:      cfg.Logs.ProjectBuild,
		Host:          host,
	}
	runner.total = len(d.Steps())

	printHeader("Build NanoShaper " + v.Title())
	fmt.Printf("root:        %s\n", s.root)
	fmt.Printf("output_dir:  %s\n", d.OutputDir())
	fmt.Printf("cgal_dir:    %s\n", d.DependencyDir)
	fmt.Printf("compilation: %s\n", mode)
	fmt.Printf("dry_run:     %v\n", dryRun)

	if !host.Files.IsDir(d.DependencyDir) {
		printStatus(markWarning(), "cgal", "missing, run 'ns-setup fetch --build' first")
	}

	start := time.Now()
	err = d.Build(cmd.Context())
	if dryRun {
		printDryRunSummary(runner, host.Files)
		return err
	}
	if err != nil {
		return err
	}

	fmt.Println()
	artifact := v.ArtifactPath(s.root, profile.OS)
	if host.Files.Exists(artifact) {
		printStatus(markSuccess(), "artifact", artifact)
	} else {
		printStatus(markWarning(), "artifact", "not found at "+artifact+", see "+cfg.Logs.ProjectBuild)
	}
	printDuration(time.Since(start))
	return nil
}
