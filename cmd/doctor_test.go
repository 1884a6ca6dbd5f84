package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nanoshaper/ns-setup/internal/config"
	"github.com/nanoshaper/ns-setup/internal/platform"
)

func fakeLookPath(found ...string) func(string) (string, error) {
	set := map[string]bool{}
	for _, f := range found {
		set[f] = true
	}
	return func(tool string) (string, error) {
		if set[tool] {
			return "/usr/bin/" + tool, nil
		}
		return "", errors.New("not found")
	}
}

func resultsByName(results []checkResult) map[string]checkResult {
	out := make(map[string]checkResult, len(results))
	for _, r := range results {
		out[r.name] = r
	}
	return out
}

func TestDoctorChecks_Tools(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	p := platform.Profile{OS: platform.MacOS, MacMajor: 10, MacMinor: 6}

	got := resultsByName(doctorChecks(root, cfg, p, fakeLookPath("cmake", "make", "tar")))

	if r := got["tool:curl"]; r.ok || !r.required {
		t.Errorf("curl should be a failing required tool on macOS: %+v", r)
	}
	if r := got["tool:cmake"]; !r.ok {
		t.Errorf("cmake should be found: %+v", r)
	}
	if r, ok := got["tool:fink"]; !ok || r.required {
		t.Errorf("fink should be an optional check: %+v", r)
	}
	if _, ok := got["tool:wget"]; ok {
		t.Error("wget is not used on macOS")
	}
}

func TestDoctorChecks_SourceTree(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	p := platform.Profile{OS: platform.Linux, Distro: platform.Debian}

	for _, name := range []string{"CMakeLists_standalone.txt", "CMakeLists_lib.txt", "CMakeLists_python.txt", "setupInstallation.py"} {
		mustWriteFile(t, filepath.Join(root, name), "")
	}
	mustWriteFile(t, filepath.Join(root, "CGALPatch", "Weighted_point.h"), "")
	mustWriteFile(t, filepath.Join(root, "src", "nanoshaper.i"), `%module NanoShaper
#define VERSION "0.7.4"
`)
	if err := os.Mkdir(filepath.Join(root, "CGAL-4.2-beta1"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := resultsByName(doctorChecks(root, cfg, p, fakeLookPath("apt-get")))
	for _, name := range []string{
		"file:CMakeLists_standalone.txt",
		"file:CMakeLists_lib.txt",
		"file:CMakeLists_python.txt",
		"file:CGALPatch/Weighted_point.h",
		"file:setupInstallation.py",
		"dependency:CGAL-4.2-beta1",
	} {
		if !got[name].ok {
			t.Errorf("%s should pass: %+v", name, got[name])
		}
	}
	if r := got["version"]; !r.ok || r.detail != "0.7.4" {
		t.Errorf("version = %+v", r)
	}
	if r := got["tool:apt-get"]; !r.ok {
		t.Errorf("apt-get should be found: %+v", r)
	}
}

func TestDoctorChecks_MissingDependency(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	mustWriteFile(t, filepath.Join(root, cfg.Dependency.Archive), "partial")

	got := resultsByName(doctorChecks(root, cfg, platform.Profile{OS: platform.Linux}, fakeLookPath()))
	r := got["dependency:CGAL-4.2-beta1"]
	if r.ok || r.required || r.detail != "archive downloaded, not extracted" {
		t.Errorf("dependency check = %+v", r)
	}
	if r := got["file:CMakeLists_lib.txt"]; r.ok || !r.required {
		t.Errorf("missing variant config should fail: %+v", r)
	}
}

func TestPackageManager(t *testing.T) {
	tests := map[string]struct {
		p    platform.Profile
		want string
	}{
		"suse":    {platform.Profile{OS: platform.Linux, Distro: platform.SUSE}, "yast"},
		"debian":  {platform.Profile{OS: platform.Linux, Distro: platform.Debian}, "apt-get"},
		"redhat":  {platform.Profile{OS: platform.Linux, Distro: platform.RedHat}, "yum"},
		"unknown": {platform.Profile{OS: platform.Linux, Distro: platform.UnknownDistro}, ""},
		"mac":     {platform.Profile{OS: platform.MacOS}, "fink"},
	}
	for name, tt := range tests {
		if got := packageManager(tt.p); got != tt.want {
			t.Errorf("%s: packageManager() = %q, want %q", name, got, tt.want)
		}
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
