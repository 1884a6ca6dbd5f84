// Package install puts a built variant into place.
package install

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nanoshaper/ns-setup/internal/platform"
	"github.com/nanoshaper/ns-setup/internal/step"
	"github.com/nanoshaper/ns-setup/internal/variant"
)

// Packaging describes the secondary tool that installs the module.
type Packaging struct {
	// Descriptor is the setup script copied from the project root.
	Descriptor string
	Python     string
	// Log is the file, inside the output dir, that receives the tool output.
	Log string
	// InterfaceFile holds the VERSION token, relative to the project root.
	InterfaceFile string
}

// Outcome is the result of a module install.
type Outcome struct {
	Success bool
	// ResolvedPath is empty when the log had no usable marker.
	ResolvedPath string
	RawLog       string
	Version      string
}

// Installer runs the post-build step for one variant.
type Installer struct {
	Project  string
	Variant  variant.Variant
	OS       platform.OSFamily
	Elevated bool
	Root     string
	// LibraryDirs receive the shared library, in order.
	LibraryDirs []string
	Packaging   Packaging
	Host        step.Host
}

// Install dispatches on variant and privileges. Only the module install
// returns an Outcome.
func (in *Installer) Install(ctx context.Context) (*Outcome, error) {
	switch in.Variant {
	case variant.SharedLibrary:
		if !in.Elevated {
			in.Host.Printf("%s", LibraryInstructions(in.OS))
			return nil, nil
		}
		return nil, in.installLibrary()
	case variant.EmbeddableModule:
		if !in.Elevated {
			p := in.Packaging
			in.Host.Printf("%s", ModuleInstructions(in.Variant.OutputDir(), p.Descriptor, p.Python, p.Log))
			return nil, nil
		}
		return in.installModule(ctx)
	default:
		return nil, in.installExecutable()
	}
}

func (in *Installer) artifact() string {
	return in.Variant.ArtifactPath(in.Root, in.OS)
}

// installExecutable copies the stand-alone binary into the project root.
// No privileges are needed.
func (in *Installer) installExecutable() error {
	h := in.Host
	h.Printf("Copying %s executable in %s root\n", in.Project, in.Project)
	return h.Checked("copy executable", h.Files.Copy(in.artifact(), in.Root))
}

// installLibrary replaces the library in every system library directory.
// Each file operation is unchecked.
func (in *Installer) installLibrary() error {
	h := in.Host
	lib := in.artifact()
	name := filepath.Base(lib)
	h.Printf("Installing %s library in %s\n", in.Project, strings.Join(in.LibraryDirs, " or "))

	if err := h.Unchecked("chmod "+name, h.Files.Chmod(lib, 0o777)); err != nil {
		return err
	}
	for _, dir := range in.LibraryDirs {
		if err := h.Unchecked("remove "+filepath.Join(dir, name), h.Files.Remove(filepath.Join(dir, name))); err != nil {
			return err
		}
	}
	for _, dir := range in.LibraryDirs {
		if err := h.Unchecked("install "+filepath.Join(dir, name), h.Files.Copy(lib, dir)); err != nil {
			return err
		}
	}
	return nil
}

// installModule stages the module for the packaging tool, runs it, and
// copies the module into the directory found in the tool's log. A log
// without the marker skips the copy and is not an error.
func (in *Installer) installModule(ctx context.Context) (*Outcome, error) {
	h := in.Host
	p := in.Packaging
	out := filepath.Join(in.Root, in.Variant.OutputDir())
	module := in.artifact()
	stage := filepath.Join(out, in.Project)

	outcome := &Outcome{}
	if data, err := h.Files.ReadFile(filepath.Join(in.Root, p.InterfaceFile)); err == nil {
		if v, ok := ReadVersion(string(data)); ok {
			outcome.Version = v
			h.Printf("Packaging %s %s\n", in.Project, v)
		}
	}

	if err := h.Unchecked("mkdir "+in.Project, h.Files.MkdirAll(stage)); err != nil {
		return nil, err
	}
	if err := h.Unchecked("stage module", h.Files.Copy(module, stage)); err != nil {
		return nil, err
	}
	if err := h.Unchecked("stage "+p.Descriptor, h.Files.Copy(filepath.Join(in.Root, p.Descriptor), out)); err != nil {
		return nil, err
	}

	pkg := step.Command("package module", p.Python, p.Descriptor, "install").In(out).LoggedTo(p.Log)
	if err := h.Run(ctx, pkg); err != nil {
		return nil, err
	}

	// A missing log reads as empty.
	if data, err := h.Files.ReadFile(filepath.Join(out, p.Log)); err == nil {
		outcome.RawLog = string(data)
	}
	outcome.ResolvedPath = ParseInstallPath(outcome.RawLog, in.Project)
	if outcome.ResolvedPath == "" {
		return outcome, nil
	}

	h.Printf("Installation was done in %s\n", outcome.ResolvedPath)
	if err := h.Checked("install module", h.Files.Copy(module, outcome.ResolvedPath)); err != nil {
		return outcome, fmt.Errorf("copy %s: %w", filepath.Base(module), err)
	}
	outcome.Success = true
	return outcome, nil
}

// DefaultLibraryDirs are the system library directories for os.
func DefaultLibraryDirs(os platform.OSFamily) []string {
	if os == platform.MacOS {
		return []string{"/usr/local/lib"}
	}
	return []string{"/usr/lib64", "/usr/lib"}
}

// LibrarySearchVar is the loader search path variable for os.
func LibrarySearchVar(os platform.OSFamily) string {
	if os == platform.MacOS {
		return "DYLD_LIBRARY_PATH"
	}
	return "LD_LIBRARY_PATH"
}
