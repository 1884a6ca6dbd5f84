// Package packages installs the system packages the build needs.
package packages

import (
	"context"

	"github.com/nanoshaper/ns-setup/internal/platform"
	"github.com/nanoshaper/ns-setup/internal/step"
)

// Question is the confirmation closing a stage.
type Question int

const (
	NoQuestion Question = iota
	// AskInstall runs the stage commands on yes and skips them on no.
	AskInstall
	// AskContinue ends the whole setup on no.
	AskContinue
)

const (
	InstallQuestion  = "Do you want to install packets? [y/n] "
	ContinueQuestion = "Do you want to continue? [y/n] "
)

// Prompt returns the text asked for q.
func (q Question) Prompt() string {
	switch q {
	case AskInstall:
		return InstallQuestion
	case AskContinue:
		return ContinueQuestion
	default:
		return ""
	}
}

// Stage is a notice, an optional question and the commands it guards.
type Stage struct {
	Notice   []string
	Ask      Question
	Commands []step.Step
}

var unknownDistroNotice = []string{
	"I am not able to retrieve a known distro.",
	"You have to install packets manually; these are:",
	"boost, gmp, mpfr, cmake. If you find boost-devel, gmp-devel etc..",
	"please also install them to make header files available.",
	"",
}

func install(tool string, args ...string) []step.Step {
	var steps []step.Step
	for _, pkg := range args {
		steps = append(steps, step.Command(tool+" "+pkg, append(installArgv(tool), pkg)...))
	}
	return steps
}

func installArgv(tool string) []string {
	switch tool {
	case "apt-get":
		return []string{"apt-get", "-y", "install"}
	case "fink":
		return []string{"fink", "-y", "install"}
	default:
		return []string{tool, "install"}
	}
}

// LinuxCommands is the install command list for a distribution family.
// Unknown families get none.
func LinuxCommands(d platform.DistroFamily) []step.Step {
	switch d {
	case platform.SUSE:
		return []step.Step{step.Command("yast",
			"yast", "-i", "boost", "boost-devel", "gmp", "gmp-devel", "mpfr", "mpfr-devel", "cmake")}
	case platform.Debian:
		return install("apt-get", "g++", "libboost-thread-dev", "libmpfr-dev", "cmake")
	case platform.RedHat:
		return install("yum", "boost", "boost-devel", "gmp", "gmp-devel", "mpfr", "mpfr-devel", "cmake")
	default:
		return nil
	}
}

// SnowLeopardCommands installs the fink packages for macOS 10.6.
func SnowLeopardCommands() []step.Step {
	return install("fink", "boost1.46.1.cmake", "gmp5", "libmpfr4")
}

// LinuxStage is the package stage for one distribution family.
func LinuxStage(d platform.DistroFamily) Stage {
	switch d {
	case platform.SUSE:
		return Stage{
			Notice:   []string{"Detected SUSE Linux distribution, installing required packages: boost, gmp, mpfr, cmake", ""},
			Ask:      AskInstall,
			Commands: LinuxCommands(d),
		}
	case platform.Debian:
		return Stage{
			Notice:   []string{"Detected Debian based Linux distribution, installing required packages: boost, gmp, mpfr, cmake, g++"},
			Ask:      AskInstall,
			Commands: LinuxCommands(d),
		}
	case platform.RedHat:
		return Stage{
			Notice:   []string{"Detected RedHat based Linux distribution, installing required packages: boost, gmp, mpfr, cmake"},
			Ask:      AskInstall,
			Commands: LinuxCommands(d),
		}
	default:
		return Stage{Notice: unknownDistroNotice, Ask: AskContinue}
	}
}

// MacStage is the package stage for one macOS release bucket.
func MacStage(r platform.MacRelease) Stage {
	switch r {
	case platform.MacSnowLeopard:
		return Stage{
			Notice:   []string{"Detected Snowleopard. For compatibility reasons the build is forced to 32 bits"},
			Ask:      AskInstall,
			Commands: SnowLeopardCommands(),
		}
	case platform.MacLionOrMountainLion:
		return Stage{
			Notice: []string{"Please perform packets installation by hand before proceeding"},
			Ask:    AskContinue,
		}
	case platform.MacLeopardOrOlder:
		return Stage{
			Notice: []string{
				"Detected Leopard or previous OS. For compatibility reasons the build is forced to 32 bits",
				"Please perform packets installation by hand before proceeding",
			},
			Ask: AskContinue,
		}
	default:
		return Stage{}
	}
}

// Stages returns the package stages for a profile, in order. Windows has
// none.
func Stages(p platform.Profile) []Stage {
	switch p.OS {
	case platform.MacOS:
		return []Stage{
			{
				Notice: []string{
					"Detected Mac, installing required packages (boost, gmp, mpfr)",
					"This script assumes that you have fink software manager installed (it ships with Xcode)",
					"",
				},
				Ask: AskContinue,
			},
			MacStage(p.MacRelease()),
		}
	case platform.Linux:
		return []Stage{
			{Notice: []string{"Detected Linux os"}},
			LinuxStage(p.Distro),
		}
	default:
		return nil
	}
}

// Confirmer asks yes/no questions.
type Confirmer interface {
	Confirm(question string) bool
}

// Installer walks the stages of a profile.
type Installer struct {
	Profile platform.Profile
	Prompt  Confirmer
	Host    step.Host
	// AssumeYes answers every install question with yes without asking.
	// Continue questions are still asked.
	AssumeYes bool
}

// Run prints each stage, asks its question and runs accepted commands.
// proceed is false when the operator declined to continue. Install
// commands are unchecked.
func (in *Installer) Run(ctx context.Context) (proceed bool, err error) {
	for _, st := range Stages(in.Profile) {
		for _, line := range st.Notice {
			in.Host.Println(line)
		}
		switch st.Ask {
		case AskContinue:
			if !in.Prompt.Confirm(ContinueQuestion) {
				return false, nil
			}
		case AskInstall:
			if !in.AssumeYes && !in.Prompt.Confirm(InstallQuestion) {
				continue
			}
			if err := in.Host.RunAll(ctx, st.Commands); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// Commands flattens every command a profile may run.
func Commands(p platform.Profile) []step.Step {
	var out []step.Step
	for _, st := range Stages(p) {
		out = append(out, st.Commands...)
	}
	return out
}
