package setup

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nanoshaper/ns-setup/internal/config"
	"github.com/nanoshaper/ns-setup/internal/platform"
	"github.com/nanoshaper/ns-setup/internal/prompt"
	"github.com/nanoshaper/ns-setup/internal/step"
	"github.com/nanoshaper/ns-setup/internal/variant"
)

// buildRunner records steps and fakes their side effects: it creates the
// files listed for a step name and writes the logs listed for it.
type buildRunner struct {
	step.Recorder
	artifacts map[string]string
	logs      map[string]string
}

func (r *buildRunner) Run(ctx context.Context, s step.Step) error {
	if err := r.Recorder.Run(ctx, s); err != nil {
		return err
	}
	if path, ok := r.artifacts[s.Name]; ok {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte("built"), 0o755); err != nil {
			return err
		}
	}
	if content, ok := r.logs[s.Name]; ok {
		if err := os.WriteFile(filepath.Join(s.Dir, s.LogFile), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

type harness struct {
	root   string
	runner *buildRunner
	files  *step.RecordingFiles
	out    *bytes.Buffer
	p      *Pipeline
}

func newHarness(t *testing.T, profile platform.Profile, answers string) *harness {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{"CMakeLists_standalone.txt", "CMakeLists_lib.txt", "CMakeLists_python.txt", "setupInstallation.py"} {
		writeFile(t, filepath.Join(root, name), name)
	}
	writeFile(t, filepath.Join(root, "CGALPatch", "Weighted_point.h"), "patched")

	h := &harness{
		root:   root,
		runner: &buildRunner{artifacts: map[string]string{}, logs: map[string]string{}},
		files:  &step.RecordingFiles{Next: step.OSFiles{}, Blocked: []string{"/usr/"}},
		out:    &bytes.Buffer{},
	}
	h.p = &Pipeline{
		Root:    root,
		Config:  config.Default(),
		Profile: profile,
		Prompt:  prompt.New(strings.NewReader(answers), h.out),
		Host:    step.Host{Runner: h.runner, Files: h.files, Out: h.out},
	}
	return h
}

func (h *harness) lines() []string {
	return h.runner.Lines()
}

func (h *harness) ran(prefix string) []string {
	var out []string
	for _, l := range h.lines() {
		if strings.HasPrefix(l, prefix) {
			out = append(out, l)
		}
	}
	return out
}

func (h *harness) ranStep(name string) bool {
	for _, s := range h.runner.Steps {
		if s.Name == name {
			return true
		}
	}
	return false
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

func TestRun_SnowLeopardElevatedForces32(t *testing.T) {
	profile := platform.Profile{OS: platform.MacOS, MacVersion: "10.6.8", MacMajor: 10, MacMinor: 6}
	h := newHarness(t, profile, "y\nexe\ny\ny\n")
	h.runner.artifacts["build exe"] = filepath.Join(h.root, "build", "NanoShaper")

	res, err := h.p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v\n%s", err, h.out.String())
	}
	if !res.Mode.Forced32() || !res.Privileges.Elevated || res.Variant != variant.StandAlone {
		t.Errorf("result = %+v", res)
	}

	if got := h.ran("fink -y install"); len(got) != 3 {
		t.Errorf("fink commands = %q", got)
	}
	if got := h.ran("curl -C - -O"); len(got) != 1 {
		t.Errorf("expected curl download, got %q", h.lines())
	}
	cmakes := h.ran("cmake ")
	if len(cmakes) != 2 {
		t.Fatalf("expected dependency and project configure, got %q", cmakes)
	}
	for _, c := range cmakes {
		if !strings.Contains(c, `"-DCMAKE_CXX_FLAGS=-arch i386"`) {
			t.Errorf("missing 32-bit flag in %q", c)
		}
	}
	if !res.Fetched || !res.DependencyBuilt {
		t.Errorf("dependency not fetched and built: %+v", res)
	}
	if _, err := os.Stat(filepath.Join(h.root, "NanoShaper")); err != nil {
		t.Errorf("executable not installed: %v", err)
	}
	if !strings.Contains(h.out.String(), "Detected Snowleopard") {
		t.Error("snow leopard notice missing")
	}
}

func TestRun_UbuntuNotElevatedPrintsLibraryInstructions(t *testing.T) {
	profile := platform.Profile{OS: platform.Linux, Distro: platform.Debian, DistroName: "Ubuntu"}
	h := newHarness(t, profile, "n\n\nlib\n")

	res, err := h.p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Privileges.Elevated || res.Variant != variant.SharedLibrary || res.Mode.Forced32() {
		t.Errorf("result = %+v", res)
	}
	if got := h.ran("apt-get"); len(got) != 0 {
		t.Errorf("package commands ran: %q", got)
	}
	if got := h.files.Touched("/usr/"); len(got) != 0 {
		t.Errorf("system directories touched: %v", got)
	}
	out := h.out.String()
	for _, want := range []string{
		"Without root priviliges you cannot install packets and the compiled libraries",
		"Lib mode selected",
		"update your LD_LIBRARY_PATH",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "Detected Linux os") {
		t.Error("package stage must be skipped without privileges")
	}
}

func TestRun_ModuleLogWithoutMarkerSkipsCopy(t *testing.T) {
	profile := platform.Profile{OS: platform.Linux, Distro: platform.RedHat}
	h := newHarness(t, profile, "y\npy\nn\n")
	h.runner.artifacts["build py"] = filepath.Join(h.root, "build_python", "_NanoShaper.so")
	h.runner.logs["package module"] = "running install\nerror: permission denied\n"

	res, err := h.p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outcome == nil || res.Outcome.ResolvedPath != "" || res.Outcome.Success {
		t.Errorf("outcome = %+v", res.Outcome)
	}
	if !strings.Contains(res.Outcome.RawLog, "permission denied") {
		t.Errorf("raw log not captured: %q", res.Outcome.RawLog)
	}
	for _, want := range []string{"make > make_cgal.txt", "make > make_ns.txt", "python setupInstallation.py install > log.txt"} {
		found := false
		for _, l := range h.lines() {
			if l == want {
				found = true
			}
		}
		if !found {
			t.Errorf("%q did not run; ran %q", want, h.lines())
		}
	}
	if got := h.ran("yum"); len(got) != 0 {
		t.Errorf("declined install still ran %q", got)
	}
}

func TestRun_WindowsIsUnsupported(t *testing.T) {
	h := newHarness(t, platform.Profile{OS: platform.Windows}, "y\nexe\n")
	_, err := h.p.Run(context.Background())
	if !errors.Is(err, ErrUnsupportedPlatform) || ExitCode(err) != 2 {
		t.Fatalf("expected unsupported platform, got %v", err)
	}
	if len(h.lines()) != 0 {
		t.Errorf("nothing should run on windows, ran %q", h.lines())
	}
	if !strings.Contains(h.out.String(), "4) Open Visual Studio project and compile") {
		t.Error("manual windows steps missing")
	}
}

func TestRun_DeclineStopsPipeline(t *testing.T) {
	h := newHarness(t, platform.Profile{OS: platform.Linux, Distro: platform.UnknownDistro}, "y\nexe\nn\n")
	res, err := h.p.Run(context.Background())
	if !errors.Is(err, ErrDeclined) || ExitCode(err) != 0 {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if res.Fetched || len(h.lines()) != 0 {
		t.Errorf("no phase should run after declining, ran %q", h.lines())
	}
}

func TestRun_UnknownVariantFallsBack(t *testing.T) {
	h := newHarness(t, platform.Profile{OS: platform.Linux, Distro: platform.Debian}, "n\n\nwhatever\n")
	h.runner.artifacts["build exe"] = filepath.Join(h.root, "build", "NanoShaper")
	res, err := h.p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Variant != variant.StandAlone || !strings.Contains(h.out.String(), UnknownVariant) {
		t.Errorf("variant = %v, output %q", res.Variant, h.out.String())
	}
}

func TestRun_ExistingDependencyIsReused(t *testing.T) {
	h := newHarness(t, platform.Profile{OS: platform.Linux, Distro: platform.Debian}, "n\n\nexe\n")
	h.runner.artifacts["build exe"] = filepath.Join(h.root, "build", "NanoShaper")
	if err := os.Mkdir(filepath.Join(h.root, "CGAL-4.2-beta1"), 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := h.p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Fetched || res.DependencyBuilt {
		t.Errorf("dependency should be reused: %+v", res)
	}
	if got := h.ran("wget"); len(got) != 0 {
		t.Errorf("unexpected download %q", got)
	}
	if h.ranStep("configure CGAL") || len(h.ran("cmake . ")) != 0 {
		t.Errorf("dependency rebuilt without request: %q", h.lines())
	}
	if !h.ranStep("configure exe") {
		t.Errorf("project configure missing: %q", h.lines())
	}

	h.p.Config.RebuildDependency = true
	h.p.Prompt = prompt.New(strings.NewReader("n\n\nexe\n"), h.out)
	res, err = h.p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.DependencyBuilt || !h.ranStep("configure CGAL") {
		t.Error("rebuild_dependency should force the dependency build")
	}
}

func TestRun_StrictBuildFailure(t *testing.T) {
	h := newHarness(t, platform.Profile{OS: platform.Linux, Distro: platform.Debian}, "n\n\nexe\n")
	if err := os.Mkdir(filepath.Join(h.root, "CGAL-4.2-beta1"), 0o755); err != nil {
		t.Fatal(err)
	}
	h.runner.Fail = map[string]error{"build exe": errors.New("exit status 2")}
	h.p.Host.Strict = true

	_, err := h.p.Run(context.Background())
	if !errors.Is(err, ErrStepFailed) || ExitCode(err) != 1 {
		t.Fatalf("expected a surfaced step failure, got %v", err)
	}
}
