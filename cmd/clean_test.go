package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nanoshaper/ns-setup/internal/config"
)

func TestBuildCleanTargets(t *testing.T) {
	root := "/src"
	targets := buildCleanTargets(root, config.Default())

	want := map[string]string{
		"exe":     filepath.Join(root, "build"),
		"lib":     filepath.Join(root, "build_lib"),
		"py":      filepath.Join(root, "build_python"),
		"cgal":    filepath.Join(root, "CGAL-4.2-beta1"),
		"archive": filepath.Join(root, "CGAL-4.2-beta1.tar.gz"),
		"config":  filepath.Join(root, "CMakeLists.txt"),
	}
	if len(targets) != len(want) {
		t.Fatalf("got %d targets, want %d", len(targets), len(want))
	}
	for _, tgt := range targets {
		if len(tgt.paths) != 1 || tgt.paths[0] != want[tgt.id] {
			t.Errorf("%s paths = %v, want %s", tgt.id, tgt.paths, want[tgt.id])
		}
	}
	if ids := targetIDs(targets); !strings.HasSuffix(ids, ", all") {
		t.Errorf("targetIDs() = %q", ids)
	}
}

func TestRunClean_RemovesSelected(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "build", "NanoShaper"), "binary")
	mustWriteFile(t, filepath.Join(root, "build_lib", "libDelphiSurface.so"), "lib")
	targets := buildCleanTargets(root, config.Default())

	captureStdout(t, func() {
		if err := runClean(targets, []string{"exe"}, false, true); err != nil {
			t.Fatal(err)
		}
	})

	if _, err := os.Stat(filepath.Join(root, "build")); !os.IsNotExist(err) {
		t.Errorf("build dir should be gone, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "build_lib")); err != nil {
		t.Errorf("build_lib must be kept: %v", err)
	}
}

func TestRunClean_DryRunKeepsFiles(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "CGAL-4.2-beta1", "CMakeCache.txt"), "cache")
	targets := buildCleanTargets(root, config.Default())

	out := captureStdout(t, func() {
		if err := runClean(targets, []string{"all"}, true, true); err != nil {
			t.Fatal(err)
		}
	})

	if !strings.Contains(out, "[DRY RUN]") {
		t.Errorf("dry run notice missing:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(root, "CGAL-4.2-beta1")); err != nil {
		t.Errorf("dry run removed files: %v", err)
	}
}

func TestRunClean_UnknownTarget(t *testing.T) {
	targets := buildCleanTargets(t.TempDir(), config.Default())
	if err := runClean(targets, []string{"opencv"}, true, true); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KB",
		5 * 1024 * 1024: "5.0 MB",
	}
	for in, want := range tests {
		if got := formatSize(in); got != want {
			t.Errorf("formatSize(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestLocateCommand(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("NS_SETUP_CONFIG", "")
	root := t.TempDir()
	logFile := filepath.Join(root, "build_python", "log.txt")
	mustWriteFile(t, logFile, "running install\nWriting /usr/lib/python2.7/site-packages/NanoShaper-0.7.4.egg-info\n")

	rootCmd.SetArgs([]string{"locate", "--root", root})
	out := captureStdout(t, func() {
		if err := rootCmd.Execute(); err != nil {
			t.Fatal(err)
		}
	})
	if strings.TrimSpace(out) != "/usr/lib/python2.7/site-packages/" {
		t.Errorf("locate printed %q", out)
	}
}
