package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nanoshaper/ns-setup/internal/config"
)

func TestInitConfig_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	if err := initConfig(path, false); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Project != "NanoShaper" || cfg.Dependency.Archive != "CGAL-4.2-beta1.tar.gz" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestInitConfig_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(path, []byte("check_failures: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := initConfig(path, false)
	if err == nil || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("expected refusal mentioning --force, got %v", err)
	}

	if err := initConfig(path, true); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CheckFailures {
		t.Error("forced init should restore defaults")
	}
}

func TestParseVariant(t *testing.T) {
	for _, key := range []string{"exe", "lib", "py", " PY "} {
		v, err := parseVariant(key)
		if err != nil {
			t.Errorf("parseVariant(%q): %v", key, err)
			continue
		}
		if v.Key() != strings.ToLower(strings.TrimSpace(key)) {
			t.Errorf("parseVariant(%q) = %s", key, v.Key())
		}
	}
	if _, err := parseVariant("dll"); err == nil {
		t.Error("expected an error for an unknown variant")
	}
}
