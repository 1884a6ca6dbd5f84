// Package build drives the project's own CMake build for one variant.
package build

import (
	"context"
	"path/filepath"

	"github.com/nanoshaper/ns-setup/internal/platform"
	"github.com/nanoshaper/ns-setup/internal/step"
	"github.com/nanoshaper/ns-setup/internal/variant"
)

// ProjectConfig is the CMake list file every variant config is copied to.
const ProjectConfig = "CMakeLists.txt"

// Driver builds one variant against an already fetched dependency.
type Driver struct {
	Project string
	Variant variant.Variant
	Root    string
	// DependencyDir is the absolute dependency source tree handed to CMake.
	DependencyDir string
	Mode          platform.CompilationMode
	ConfigureLog  string
	BuildLog      string
	Host          step.Host
}

// OutputDir is the variant's build directory.
func (d *Driver) OutputDir() string {
	return filepath.Join(d.Root, d.Variant.OutputDir())
}

// ConfigureArgs returns the cmake command line run from the output dir.
func (d *Driver) ConfigureArgs() []string {
	argv := []string{"cmake", "..", "-DCGAL_DIR=" + d.DependencyDir}
	return append(argv, d.Mode.CMakeArgs()...)
}

// Steps lists the external commands of the build, in order.
func (d *Driver) Steps() []step.Step {
	out := d.OutputDir()
	return []step.Step{
		step.Command("configure "+d.Variant.Key(), d.ConfigureArgs()...).In(out).LoggedTo(d.ConfigureLog),
		step.Command("clean "+d.Variant.Key(), "make", "clean").In(out),
		step.Command("build "+d.Variant.Key(), "make").In(out).LoggedTo(d.BuildLog),
	}
}

// Build installs the variant config, empties the output directory and runs
// configure, clean and make. The configure and make results are unchecked.
func (d *Driver) Build(ctx context.Context) error {
	h := d.Host
	h.Println()
	h.Printf("Building %s %s please wait...\n", d.Project, d.Variant.Title())

	src := filepath.Join(d.Root, d.Variant.ConfigFile())
	dst := filepath.Join(d.Root, ProjectConfig)
	if err := h.Checked("install "+d.Variant.ConfigFile(), h.Files.Copy(src, dst)); err != nil {
		return err
	}
	h.Println()

	out := d.OutputDir()
	if err := h.Unchecked("create "+d.Variant.OutputDir(), h.Files.MkdirAll(out)); err != nil {
		return err
	}
	if err := h.Unchecked("wipe "+d.Variant.OutputDir(), h.Files.WipeDir(out)); err != nil {
		return err
	}
	return h.RunAll(ctx, d.Steps())
}
