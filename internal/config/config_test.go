package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nanoshaper/ns-setup/internal/platform"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Project != "NanoShaper" || cfg.Dependency.SourceDir != "CGAL-4.2-beta1" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Logs.ProjectBuild != "make_ns.txt" || cfg.Logs.Packaging != "log.txt" {
		t.Errorf("unexpected log names %+v", cfg.Logs)
	}
	if cfg.CheckFailures {
		t.Error("failure checking must be opt-in")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `check_failures: true
packaging:
  python: python3
library_dirs:
  linux: [/opt/lib]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.CheckFailures || cfg.Packaging.Python != "python3" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Packaging.Descriptor != "setupInstallation.py" {
		t.Errorf("descriptor default lost: %q", cfg.Packaging.Descriptor)
	}
	if dirs := cfg.LibraryDirsFor(platform.Linux); len(dirs) != 1 || dirs[0] != "/opt/lib" {
		t.Errorf("linux dirs = %v", dirs)
	}
	if dirs := cfg.LibraryDirsFor(platform.MacOS); len(dirs) != 1 || dirs[0] != "/usr/local/lib" {
		t.Errorf("mac dirs = %v", dirs)
	}
	if p := cfg.InstallPackaging(); p.Python != "python3" || p.Log != "log.txt" {
		t.Errorf("InstallPackaging() = %+v", p)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":      "project: [unclosed",
		"empty project": "project: \"\"\n",
		"escaping dir":  "dependency:\n  source_dir: ../CGAL\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestValidate_Sentinel(t *testing.T) {
	cfg := Default()
	cfg.Packaging.Python = ""
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.RebuildDependency = true
	if err := Save(cfg, path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.RebuildDependency || loaded.Dependency.URL() != cfg.Dependency.URL() {
		t.Errorf("round trip lost data: %+v", loaded)
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	if got := Path("/etc/x.yaml", "/src"); got != "/etc/x.yaml" {
		t.Errorf("flag should win, got %q", got)
	}
	if got := Path("", "/src"); got != filepath.Join("/src", FileName) {
		t.Errorf("root default = %q", got)
	}
	t.Setenv(EnvPath, "/env/ns.yaml")
	if got := Path("", "/src"); got != "/env/ns.yaml" {
		t.Errorf("env should win over root, got %q", got)
	}
}
