package dependency

import (
	"context"
	"path/filepath"

	"github.com/nanoshaper/ns-setup/internal/platform"
	"github.com/nanoshaper/ns-setup/internal/step"
)

// disabledFeatures are switched off in every dependency configure.
var disabledFeatures = []string{
	"-DWITH_examples=false",
	"-DWITH_CGAL_Qt4=false",
	"-DWITH_CGAL_Qt3=false",
	"-DWITH_CGAL_ImageIO=false",
}

// Builder configures and compiles the dependency in its own source tree.
type Builder struct {
	Spec         Spec
	Root         string
	Mode         platform.CompilationMode
	ConfigureLog string
	BuildLog     string
	Host         step.Host
}

// ConfigureArgs returns the full cmake command line.
func (b *Builder) ConfigureArgs() []string {
	argv := append([]string{"cmake", "."}, disabledFeatures...)
	return append(argv, b.Mode.CMakeArgs()...)
}

// Steps lists the external commands of a build, in order.
func (b *Builder) Steps() []step.Step {
	dir := b.Spec.Dir(b.Root)
	return []step.Step{
		step.Command("configure "+b.Spec.Name, b.ConfigureArgs()...).In(dir).LoggedTo(b.ConfigureLog),
		step.Command("clean "+b.Spec.Name, "make", "clean").In(dir),
		step.Command("build "+b.Spec.Name, "make").In(dir).LoggedTo(b.BuildLog),
	}
}

// Build runs a clean configure and compile. Nothing checks the outcome: a
// broken build only shows up in the log files.
func (b *Builder) Build(ctx context.Context) error {
	h := b.Host
	h.Println()
	h.Printf("Building %s...\n", b.Spec.Name)
	h.Println()

	cache := filepath.Join(b.Spec.Dir(b.Root), "CMakeCache.txt")
	if err := h.Unchecked("remove CMakeCache.txt", h.Files.Remove(cache)); err != nil {
		return err
	}
	h.Files.Sync()

	steps := b.Steps()
	if err := h.Run(ctx, steps[0]); err != nil {
		return err
	}
	h.Files.Sync()
	if err := h.RunAll(ctx, steps[1:]); err != nil {
		return err
	}
	h.Files.Sync()
	return nil
}
