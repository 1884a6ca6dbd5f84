package build

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nanoshaper/ns-setup/internal/platform"
	"github.com/nanoshaper/ns-setup/internal/step"
	"github.com/nanoshaper/ns-setup/internal/variant"
)

func newDriver(t *testing.T, v variant.Variant, mode platform.CompilationMode) (*Driver, *step.Recorder, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	rec := &step.Recorder{}
	out := &bytes.Buffer{}
	d := &Driver{
		Project:       "NanoShaper",
		Variant:       v,
		Root:          root,
		DependencyDir: filepath.Join(root, "CGAL-4.2-beta1"),
		Mode:          mode,
		ConfigureLog:  "cmake_ns.txt",
		BuildLog:      "make_ns.txt",
		Host:          step.Host{Runner: rec, Files: step.OSFiles{}, Out: out},
	}
	return d, rec, out
}

func TestBuild_InstallsConfigAndWipesOutput(t *testing.T) {
	d, rec, out := newDriver(t, variant.SharedLibrary, platform.CompilationMode{})
	writeFile(t, filepath.Join(d.Root, "CMakeLists_lib.txt"), "add_library(DelphiSurface)")
	writeFile(t, filepath.Join(d.Root, "build_lib", "stale", "old.o"), "x")

	if err := d.Build(context.Background()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(d.Root, "CMakeLists.txt"))
	if err != nil || string(data) != "add_library(DelphiSurface)" {
		t.Errorf("CMakeLists.txt = %q, %v", data, err)
	}
	entries, _ := os.ReadDir(filepath.Join(d.Root, "build_lib"))
	if len(entries) != 0 {
		t.Errorf("output dir not wiped: %d entries", len(entries))
	}

	want := []string{
		"cmake .. -DCGAL_DIR=" + d.DependencyDir + " > cmake_ns.txt",
		"make clean",
		"make > make_ns.txt",
	}
	if got := rec.Lines(); strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("commands:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	for _, s := range rec.Steps {
		if s.Dir != filepath.Join(d.Root, "build_lib") {
			t.Errorf("step %q ran in %q", s.Name, s.Dir)
		}
	}
	if !strings.Contains(out.String(), "Building NanoShaper DelPhi-lib please wait...") {
		t.Errorf("missing build banner in %q", out.String())
	}
}

func TestBuild_CreatesMissingOutputDir(t *testing.T) {
	d, _, _ := newDriver(t, variant.StandAlone, platform.CompilationMode{})
	writeFile(t, filepath.Join(d.Root, "CMakeLists_standalone.txt"), "x")

	if err := d.Build(context.Background()); err != nil {
		t.Fatal(err)
	}
	if st, err := os.Stat(filepath.Join(d.Root, "build")); err != nil || !st.IsDir() {
		t.Errorf("build dir not created: %v", err)
	}
}

func TestBuild_Forced32(t *testing.T) {
	d, _, _ := newDriver(t, variant.EmbeddableModule, platform.CompilationMode{WordWidth: platform.Forced32})
	args := d.ConfigureArgs()
	if args[len(args)-1] != platform.Forced32Flag {
		t.Errorf("configure args = %v", args)
	}
}

func TestBuild_MissingConfigIsFatal(t *testing.T) {
	d, rec, _ := newDriver(t, variant.StandAlone, platform.CompilationMode{})
	err := d.Build(context.Background())
	if !errors.Is(err, step.ErrFailed) {
		t.Fatalf("expected step failure, got %v", err)
	}
	if len(rec.Steps) != 0 {
		t.Errorf("no command should run without a config, ran %v", rec.Lines())
	}
}

func TestBuild_MakeFailureIsIgnored(t *testing.T) {
	d, rec, _ := newDriver(t, variant.StandAlone, platform.CompilationMode{})
	writeFile(t, filepath.Join(d.Root, "CMakeLists_standalone.txt"), "x")
	rec.Fail = map[string]error{"build exe": errors.New("exit status 2")}

	if err := d.Build(context.Background()); err != nil {
		t.Errorf("unchecked make failure leaked: %v", err)
	}

	d.Host.Strict = true
	if err := d.Build(context.Background()); !errors.Is(err, step.ErrFailed) {
		t.Errorf("strict build should surface the failure, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
