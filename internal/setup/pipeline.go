// Package setup runs the interactive installer from host probing to the
// post-build install.
package setup

import (
	"context"
	"fmt"

	"github.com/nanoshaper/ns-setup/internal/build"
	"github.com/nanoshaper/ns-setup/internal/config"
	"github.com/nanoshaper/ns-setup/internal/dependency"
	"github.com/nanoshaper/ns-setup/internal/install"
	"github.com/nanoshaper/ns-setup/internal/packages"
	"github.com/nanoshaper/ns-setup/internal/platform"
	"github.com/nanoshaper/ns-setup/internal/step"
	"github.com/nanoshaper/ns-setup/internal/variant"
)

// Privileges is the operator's answer to the privilege question. It is
// asked once and read by every phase that writes outside the project.
type Privileges struct {
	Elevated bool
}

// Prompter asks the operator.
type Prompter interface {
	Ask(question string) (string, error)
	Confirm(question string) bool
	Pause(message string)
}

// Phase names the pipeline stages reported to OnPhase.
type Phase string

const (
	PhasePackages   Phase = "packages"
	PhaseDependency Phase = "dependency"
	PhaseBuild      Phase = "build"
	PhaseInstall    Phase = "install"
)

// Result describes a finished or interrupted run.
type Result struct {
	Profile         platform.Profile
	Privileges      Privileges
	Variant         variant.Variant
	Mode            platform.CompilationMode
	Fetched         bool
	DependencyBuilt bool
	// Outcome is only set for module installs.
	Outcome *install.Outcome
}

// Pipeline wires the installer phases for one run.
type Pipeline struct {
	Root    string
	Config  *config.Config
	Profile platform.Profile
	Prompt  Prompter
	Host    step.Host
	// Verify inspects a freshly downloaded archive. Only used on strict
	// hosts.
	Verify func(archive string, s dependency.Spec) error
	// OnPhase is told when a phase starts.
	OnPhase func(p Phase)
	// Quiet skips the banner.
	Quiet bool
}

func (p *Pipeline) phase(ph Phase) {
	if p.OnPhase != nil {
		p.OnPhase(ph)
	}
}

// AskPrivileges asks the privilege question. Without privileges the
// operator is told what is skipped and has to acknowledge it.
func AskPrivileges(pr Prompter, h step.Host) Privileges {
	if pr.Confirm(PrivilegeQuestion) {
		return Privileges{Elevated: true}
	}
	for _, line := range NotElevatedNotice {
		h.Println(line)
	}
	pr.Pause(PauseMessage)
	h.Println()
	return Privileges{}
}

// AskVariant asks for the build variant. Unknown answers pick StandAlone.
func AskVariant(pr Prompter, h step.Host) (variant.Variant, error) {
	answer, err := pr.Ask(VariantQuestion)
	if err != nil {
		return variant.StandAlone, err
	}
	v, ok := variant.Select(answer)
	if ok {
		h.Println(v.Selected())
	} else {
		h.Println(UnknownVariant)
	}
	return v, nil
}

// Run executes the whole pipeline. It returns ErrDeclined when the operator
// stops it and ErrUnsupportedPlatform on Windows.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	h := p.Host
	res := &Result{Profile: p.Profile, Mode: p.Profile.CompilationMode()}

	if !p.Quiet {
		for _, line := range Banner {
			h.Println(line)
		}
	}

	res.Privileges = AskPrivileges(p.Prompt, h)
	v, err := AskVariant(p.Prompt, h)
	if err != nil {
		return res, err
	}
	res.Variant = v

	if p.Profile.OS == platform.Windows {
		for _, line := range WindowsInstructions {
			h.Println(line)
		}
		return res, ErrUnsupportedPlatform
	}

	if res.Privileges.Elevated {
		p.phase(PhasePackages)
		pk := &packages.Installer{Profile: p.Profile, Prompt: p.Prompt, Host: h}
		proceed, err := pk.Run(ctx)
		if err != nil {
			return res, fmt.Errorf("install packages: %w", err)
		}
		if !proceed {
			return res, ErrDeclined
		}
	}

	p.phase(PhaseDependency)
	if err := p.dependency(ctx, res); err != nil {
		return res, err
	}

	p.phase(PhaseBuild)
	cfg := p.Config
	driver := &build.Driver{
		Project:       cfg.Project,
		Variant:       res.Variant,
		Root:          p.Root,
		DependencyDir: cfg.Dependency.Dir(p.Root),
		Mode:          res.Mode,
		ConfigureLog:  cfg.Logs.ProjectConfigure,
		BuildLog:      cfg.Logs.ProjectBuild,
		Host:          h,
	}
	if err := driver.Build(ctx); err != nil {
		return res, fmt.Errorf("build %s: %w", res.Variant, err)
	}

	p.phase(PhaseInstall)
	inst := &install.Installer{
		Project:     cfg.Project,
		Variant:     res.Variant,
		OS:          p.Profile.OS,
		Elevated:    res.Privileges.Elevated,
		Root:        p.Root,
		LibraryDirs: cfg.LibraryDirsFor(p.Profile.OS),
		Packaging:   cfg.InstallPackaging(),
		Host:        h,
	}
	outcome, err := inst.Install(ctx)
	res.Outcome = outcome
	if err != nil {
		return res, fmt.Errorf("install %s: %w", res.Variant, err)
	}

	h.Println()
	h.Println()
	return res, nil
}

func (p *Pipeline) dependency(ctx context.Context, res *Result) error {
	cfg := p.Config
	fetcher := &dependency.Fetcher{
		Spec:       cfg.Dependency,
		Root:       p.Root,
		Downloader: dependency.DownloaderFor(p.Profile.OS),
		Host:       p.Host,
	}
	if p.Host.Strict {
		fetcher.Inspect = p.Verify
	}

	fetched, err := fetcher.Ensure(ctx)
	res.Fetched = fetched
	if err != nil {
		return fmt.Errorf("fetch %s: %w", cfg.Dependency.Name, err)
	}
	if !fetched && !cfg.RebuildDependency {
		return nil
	}

	builder := &dependency.Builder{
		Spec:         cfg.Dependency,
		Root:         p.Root,
		Mode:         res.Mode,
		ConfigureLog: cfg.Logs.DependencyConfigure,
		BuildLog:     cfg.Logs.DependencyBuild,
		Host:         p.Host,
	}
	if err := builder.Build(ctx); err != nil {
		return fmt.Errorf("build %s: %w", cfg.Dependency.Name, err)
	}
	res.DependencyBuilt = true
	return nil
}
