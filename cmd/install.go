package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nanoshaper/ns-setup/internal/install"
	"github.com/nanoshaper/ns-setup/internal/packages"
	"github.com/nanoshaper/ns-setup/internal/platform"
	"github.com/nanoshaper/ns-setup/internal/prompt"
	"github.com/nanoshaper/ns-setup/internal/setup"
	"github.com/nanoshaper/ns-setup/internal/variant"
)

func init() {
	rootCmd.AddCommand(packagesCmd)
	packagesCmd.AddCommand(packagesListCmd)
	rootCmd.AddCommand(installCmd)

	packagesCmd.Flags().Bool("dry-run", false, "print commands without executing")
	packagesCmd.Flags().Bool("yes", false, "install without asking")
	packagesCmd.Flags().Bool("check-failures", false, "stop at the first failing command")

	installCmd.Flags().String("variant", "", "variant to install: exe, lib or py")
	installCmd.Flags().Bool("elevated", platform.Superuser(), "install into system directories")
	installCmd.Flags().Bool("dry-run", false, "print commands without executing")
	installCmd.Flags().Bool("check-failures", false, "stop at the first failing command")
	_ = installCmd.MarkFlagRequired("variant")
}

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "Install system packages for this host",
	Long: `Installs boost, gmp, mpfr and cmake with the package manager of this host:

  SUSE      yast
  Debian    apt-get
  RedHat    yum
  macOS     fink (10.6 only, other releases install by hand)

Needs root privileges unless --dry-run is given.`,
	RunE: runPackages,
}

var packagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show package commands for every platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		printPackagePlans()
		return nil
	},
}

func runPackages(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")
	checkFailures, _ := cmd.Flags().GetBool("check-failures")

	profile := platform.Detect()
	printHeader("Packages")
	fmt.Printf("platform: %s\n", profile)
	fmt.Printf("dry_run:  %v\n\n", dryRun)

	if profile.OS == platform.Windows {
		printStatus(markInfo(), "packages", "nothing to install on windows")
		return nil
	}
	if !dryRun && !platform.Superuser() {
		printStatus(markWarning(), "privileges", "not running as root, package commands will likely fail")
	}

	host, runner := newHost(dryRun, checkFailures)
	runner.total = len(packages.Commands(profile))
	in := &packages.Installer{
		Profile:   profile,
		Prompt:    prompt.Stdio(),
		Host:      host,
		AssumeYes: yes,
	}

	start := time.Now()
	proceed, err := in.Run(cmd.Context())
	if err != nil {
		return err
	}
	if !proceed {
		return setup.ErrDeclined
	}
	fmt.Println()
	printStatus(markSuccess(), "packages", "done")
	printDuration(time.Since(start))
	return nil
}

type packagePlan struct {
	label   string
	profile platform.Profile
}

func packagePlans() []packagePlan {
	return []packagePlan{
		{"linux/suse", platform.Profile{OS: platform.Linux, Distro: platform.SUSE}},
		{"linux/debian", platform.Profile{OS: platform.Linux, Distro: platform.Debian}},
		{"linux/redhat", platform.Profile{OS: platform.Linux, Distro: platform.RedHat}},
		{"linux/unknown", platform.Profile{OS: platform.Linux, Distro: platform.UnknownDistro}},
		{"macos/10.5", platform.Profile{OS: platform.MacOS, MacMajor: 10, MacMinor: 5}},
		{"macos/10.6", platform.Profile{OS: platform.MacOS, MacMajor: 10, MacMinor: 6}},
		{"macos/10.8", platform.Profile{OS: platform.MacOS, MacMajor: 10, MacMinor: 8}},
		{"macos/other", platform.Profile{OS: platform.MacOS, MacMajor: 13}},
	}
}

func printPackagePlans() {
	printHeader("Package Plans")
	for _, plan := range packagePlans() {
		steps := packages.Commands(plan.profile)
		mode := plan.profile.CompilationMode()
		detail := fmt.Sprintf("%d command(s), %s", len(steps), mode)
		if len(steps) == 0 {
			detail = "install by hand, " + mode.String()
		}
		printStatus(markInfo(), plan.label, detail)
		for _, s := range steps {
			printCommand(s.Argv)
		}
	}
	fmt.Println()
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install a built variant",
	Long: `Installs the output of 'ns-setup build':

  exe   copies build/NanoShaper into the source root
  lib   copies the shared library into the system library dirs (--elevated)
  py    packages and installs the Python module (--elevated)

Without --elevated the lib and py variants print the manual steps.`,
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	key, _ := cmd.Flags().GetString("variant")
	elevated, _ := cmd.Flags().GetBool("elevated")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	checkFailures, _ := cmd.Flags().GetBool("check-failures")

	v, err := parseVariant(key)
	if err != nil {
		return err
	}

	profile := platform.Detect()
	if profile.OS == platform.Windows {
		return setup.ErrUnsupportedPlatform
	}

	printHeader("Install NanoShaper " + v.Title())
	fmt.Printf("root:     %s\n", s.root)
	fmt.Printf("elevated: %v\n", elevated)
	fmt.Printf("dry_run:  %v\n\n", dryRun)

	host, runner := newHost(dryRun, checkFailures || s.cfg.CheckFailures)
	in := &install.Installer{
		Project:     s.cfg.Project,
		Variant:     v,
		OS:          profile.OS,
		Elevated:    elevated,
		Root:        s.root,
		LibraryDirs: s.cfg.LibraryDirsFor(profile.OS),
		Packaging:   s.cfg.InstallPackaging(),
		Host:        host,
	}

	outcome, err := in.Install(cmd.Context())
	if dryRun {
		printDryRunSummary(runner, host.Files)
	}
	if err != nil {
		return err
	}
	if outcome != nil {
		printOutcome(outcome)
	}
	return nil
}

func printOutcome(o *install.Outcome) {
	fmt.Println()
	if o.Version != "" {
		printStatus(markInfo(), "version", o.Version)
	}
	if o.ResolvedPath == "" {
		printStatus(markWarning(), "module", "install location not found in packaging log")
		return
	}
	mark := markSuccess()
	if !o.Success {
		mark = markFailure()
	}
	printStatus(mark, "module", o.ResolvedPath)
}

// parseVariant accepts the prompt keys. Unlike the interactive prompt it
// rejects anything else.
func parseVariant(key string) (variant.Variant, error) {
	v, ok := variant.Select(strings.ToLower(strings.TrimSpace(key)))
	if !ok {
		keys := make([]string, 0, len(variant.All))
		for _, v := range variant.All {
			keys = append(keys, v.Key())
		}
		return v, fmt.Errorf("unknown variant %q (available: %s)", key, strings.Join(keys, ", "))
	}
	return v, nil
}
