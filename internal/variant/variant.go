// Package variant maps the operator's build choice to its configuration
// file, output directory and artifact.
package variant

import (
	"path/filepath"

	"github.com/nanoshaper/ns-setup/internal/platform"
)

// Variant is one of the mutually exclusive build targets.
type Variant int

const (
	StandAlone Variant = iota
	SharedLibrary
	EmbeddableModule
)

// All lists the variants in menu order.
var All = []Variant{SharedLibrary, StandAlone, EmbeddableModule}

// Select maps an answer to a variant. Anything unrecognized falls back to
// StandAlone with recognized set to false.
func Select(answer string) (v Variant, recognized bool) {
	switch answer {
	case "exe":
		return StandAlone, true
	case "lib":
		return SharedLibrary, true
	case "py":
		return EmbeddableModule, true
	default:
		return StandAlone, false
	}
}

// Key is the short name used at the prompt and on the command line.
func (v Variant) Key() string {
	switch v {
	case SharedLibrary:
		return "lib"
	case EmbeddableModule:
		return "py"
	default:
		return "exe"
	}
}

func (v Variant) String() string {
	switch v {
	case SharedLibrary:
		return "shared-library"
	case EmbeddableModule:
		return "python-module"
	default:
		return "stand-alone"
	}
}

// Title is the label used in progress messages.
func (v Variant) Title() string {
	switch v {
	case SharedLibrary:
		return "DelPhi-lib"
	case EmbeddableModule:
		return "Python Module"
	default:
		return "Stand-Alone"
	}
}

// Selected is the confirmation printed after a recognized choice.
func (v Variant) Selected() string {
	switch v {
	case SharedLibrary:
		return "Lib mode selected"
	case EmbeddableModule:
		return "Python mode selected"
	default:
		return "Stand alone mode selected"
	}
}

// ConfigFile is the CMake list file copied into place for this variant.
func (v Variant) ConfigFile() string {
	switch v {
	case SharedLibrary:
		return "CMakeLists_lib.txt"
	case EmbeddableModule:
		return "CMakeLists_python.txt"
	default:
		return "CMakeLists_standalone.txt"
	}
}

// OutputDir is the build directory name, relative to the project root.
func (v Variant) OutputDir() string {
	switch v {
	case SharedLibrary:
		return "build_lib"
	case EmbeddableModule:
		return "build_python"
	default:
		return "build"
	}
}

// Artifact is the file the build leaves in OutputDir.
func (v Variant) Artifact(os platform.OSFamily) string {
	switch v {
	case SharedLibrary:
		if os == platform.MacOS {
			return "libDelphiSurface.dylib"
		}
		return "libDelphiSurface.so"
	case EmbeddableModule:
		return "_NanoShaper.so"
	default:
		return "NanoShaper"
	}
}

// ArtifactPath is the artifact location under root.
func (v Variant) ArtifactPath(root string, os platform.OSFamily) string {
	return filepath.Join(root, v.OutputDir(), v.Artifact(os))
}
