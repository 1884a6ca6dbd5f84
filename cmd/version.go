package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nanoshaper/ns-setup/internal/config"
	"github.com/nanoshaper/ns-setup/internal/dependency"
	"github.com/nanoshaper/ns-setup/internal/install"
)

// Set with -ldflags "-X github.com/nanoshaper/ns-setup/cmd.Version=v0.1.0".
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print ns-setup, NanoShaper and CGAL versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd)
		if err != nil {
			return err
		}
		for _, line := range versionLines(s.root, s.cfg) {
			fmt.Println(line)
		}
		return nil
	},
}

// versionLines reports the tool build, the source tree version found in
// the interface file and the pinned dependency release.
func versionLines(root string, cfg *config.Config) []string {
	source := "unknown (no VERSION in " + cfg.Packaging.InterfaceFile + ")"
	if data, err := os.ReadFile(filepath.Join(root, cfg.Packaging.InterfaceFile)); err == nil {
		if v, ok := install.ReadVersion(string(data)); ok {
			source = v
		}
	}

	return []string{
		fmt.Sprintf("%-12s %s", "ns-setup", resolvedVersion()),
		fmt.Sprintf("%-12s %s", cfg.Project, source),
		fmt.Sprintf("%-12s %s (%s)", cfg.Dependency.Name, dependencyRelease(cfg.Dependency), cfg.Dependency.Archive),
	}
}

// dependencyRelease is the release part of the pinned source dir, e.g.
// "4.2-beta1" for CGAL-4.2-beta1.
func dependencyRelease(d dependency.Spec) string {
	return strings.TrimPrefix(d.SourceDir, d.Name+"-")
}

// resolvedVersion prefers ldflags values and falls back to the module
// version and VCS stamps of the binary.
func resolvedVersion() string {
	v, c, d := Version, Commit, Date

	if info, ok := debug.ReadBuildInfo(); ok {
		if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && c == "":
				c = s.Value
			case s.Key == "vcs.time" && d == "":
				d = s.Value
			}
		}
	}

	if len(c) > 12 {
		c = c[:12]
	}
	parts := []string{v}
	for _, p := range []string{c, d} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
