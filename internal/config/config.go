// Package config holds the installer settings. Every field defaults to the
// pinned values, so a project root without a config file behaves exactly
// like the stock installer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nanoshaper/ns-setup/internal/dependency"
	"github.com/nanoshaper/ns-setup/internal/install"
	"github.com/nanoshaper/ns-setup/internal/platform"
)

// FileName is the config file looked up in the project root.
const FileName = "ns-setup.yaml"

// EnvPath overrides the config location.
const EnvPath = "NS_SETUP_CONFIG"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Logs names the files external build output is redirected to.
type Logs struct {
	DependencyConfigure string `yaml:"dependency_configure"`
	DependencyBuild     string `yaml:"dependency_build"`
	ProjectConfigure    string `yaml:"project_configure"`
	ProjectBuild        string `yaml:"project_build"`
	Packaging           string `yaml:"packaging"`
}

// Packaging configures the module install tool.
type Packaging struct {
	Descriptor    string `yaml:"descriptor"`
	Python        string `yaml:"python"`
	InterfaceFile string `yaml:"interface_file"`
}

// LibraryDirs are the system directories the shared library goes to.
type LibraryDirs struct {
	Linux []string `yaml:"linux"`
	MacOS []string `yaml:"macos"`
}

// Config is the effective installer configuration.
type Config struct {
	Project     string          `yaml:"project"`
	Dependency  dependency.Spec `yaml:"dependency"`
	Logs        Logs            `yaml:"logs"`
	Packaging   Packaging       `yaml:"packaging"`
	LibraryDirs LibraryDirs     `yaml:"library_dirs"`
	// CheckFailures promotes every external step to checked.
	CheckFailures bool `yaml:"check_failures"`
	// RebuildDependency builds the dependency even when it was not fetched
	// in this run.
	RebuildDependency bool `yaml:"rebuild_dependency"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Project:    "NanoShaper",
		Dependency: dependency.CGAL(),
		Logs: Logs{
			DependencyConfigure: "cmake_cgal.txt",
			DependencyBuild:     "make_cgal.txt",
			ProjectConfigure:    "cmake_ns.txt",
			ProjectBuild:        "make_ns.txt",
			Packaging:           "log.txt",
		},
		Packaging: Packaging{
			Descriptor:    "setupInstallation.py",
			Python:        "python",
			InterfaceFile: "src/nanoshaper.i",
		},
		LibraryDirs: LibraryDirs{
			Linux: install.DefaultLibraryDirs(platform.Linux),
			MacOS: install.DefaultLibraryDirs(platform.MacOS),
		},
	}
}

// Path resolves the config file: flag, then NS_SETUP_CONFIG, then the
// project root.
func Path(flag, root string) string {
	if flag != "" {
		return flag
	}
	if env := strings.TrimSpace(os.Getenv(EnvPath)); env != "" {
		return env
	}
	return filepath.Join(root, FileName)
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// Validate rejects settings the installer cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Project == "" {
		problems = append(problems, "project is empty")
	}
	if c.Dependency.SourceDir == "" || c.Dependency.Archive == "" {
		problems = append(problems, "dependency archive and source_dir are required")
	}
	if filepath.IsAbs(c.Dependency.SourceDir) || strings.Contains(c.Dependency.SourceDir, "..") {
		problems = append(problems, "dependency source_dir must be a plain relative name")
	}
	for _, p := range c.Dependency.Patches {
		if p.Source == "" || p.Target == "" {
			problems = append(problems, "dependency patches need source and target")
			break
		}
	}
	if c.Packaging.Python == "" || c.Packaging.Descriptor == "" {
		problems = append(problems, "packaging python and descriptor are required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// LibraryDirsFor returns the library directories for os.
func (c *Config) LibraryDirsFor(os platform.OSFamily) []string {
	if os == platform.MacOS {
		return c.LibraryDirs.MacOS
	}
	return c.LibraryDirs.Linux
}

// InstallPackaging converts the packaging settings for the installer.
func (c *Config) InstallPackaging() install.Packaging {
	return install.Packaging{
		Descriptor:    c.Packaging.Descriptor,
		Python:        c.Packaging.Python,
		Log:           c.Logs.Packaging,
		InterfaceFile: c.Packaging.InterfaceFile,
	}
}
