package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nanoshaper/ns-setup/internal/config"
	"github.com/nanoshaper/ns-setup/internal/dependency"
	"github.com/nanoshaper/ns-setup/internal/install"
	"github.com/nanoshaper/ns-setup/internal/platform"
	"github.com/nanoshaper/ns-setup/internal/variant"
)

type checkResult struct {
	name     string
	required bool
	ok       bool
	detail   string
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Pre-flight check (tools, sources, CGAL tree)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd)
		if err != nil {
			return err
		}
		return runDoctor(s)
	},
}

// packageManager is the tool the package stage would use on p.
func packageManager(p platform.Profile) string {
	switch {
	case p.OS == platform.MacOS:
		return "fink"
	case p.Distro == platform.SUSE:
		return "yast"
	case p.Distro == platform.Debian:
		return "apt-get"
	case p.Distro == platform.RedHat:
		return "yum"
	default:
		return ""
	}
}

func doctorChecks(root string, cfg *config.Config, p platform.Profile, lookPath func(string) (string, error)) []checkResult {
	results := make([]checkResult, 0)

	toolCheck := func(tool string, required bool) {
		if path, err := lookPath(tool); err == nil {
			results = append(results, checkResult{name: "tool:" + tool, required: required, ok: true, detail: path})
			return
		}
		detail := "not found in PATH"
		if !required {
			detail += " (optional)"
		}
		results = append(results, checkResult{name: "tool:" + tool, required: required, detail: detail})
	}

	for _, tool := range []string{"cmake", "make", "tar", dependency.DownloaderFor(p.OS).String()} {
		toolCheck(tool, true)
	}
	toolCheck(cfg.Packaging.Python, false)
	if pm := packageManager(p); pm != "" {
		toolCheck(pm, false)
	}

	fileCheck := func(rel string, required bool) {
		abs := filepath.Join(root, rel)
		if st, err := os.Stat(abs); err == nil && !st.IsDir() {
			results = append(results, checkResult{name: "file:" + rel, required: required, ok: true, detail: abs})
			return
		}
		results = append(results, checkResult{name: "file:" + rel, required: required, detail: "missing at " + abs})
	}

	for _, v := range variant.All {
		fileCheck(v.ConfigFile(), true)
	}
	for _, patch := range cfg.Dependency.Patches {
		fileCheck(patch.Source, true)
	}
	fileCheck(cfg.Packaging.Descriptor, false)

	versionCheck := checkResult{name: "version", detail: "no VERSION in " + cfg.Packaging.InterfaceFile}
	if data, err := os.ReadFile(filepath.Join(root, cfg.Packaging.InterfaceFile)); err == nil {
		if v, ok := install.ReadVersion(string(data)); ok {
			versionCheck.ok = true
			versionCheck.detail = v
		}
	}
	results = append(results, versionCheck)

	dep := cfg.Dependency
	depCheck := checkResult{name: "dependency:" + dep.SourceDir, detail: "missing, setup will download " + dep.URL()}
	if st, err := os.Stat(dep.Dir(root)); err == nil && st.IsDir() {
		depCheck.ok = true
		depCheck.detail = "present"
	} else if _, err := os.Stat(filepath.Join(root, dep.Archive)); err == nil {
		depCheck.detail = "archive downloaded, not extracted"
	}
	results = append(results, depCheck)

	for _, key := range optionalEnvVars {
		value := strings.TrimSpace(os.Getenv(key))
		detail := "not set (optional)"
		if value != "" {
			detail = value
		}
		results = append(results, checkResult{name: "env:" + key, ok: value != "", detail: detail})
	}

	results = append(results, checkResult{
		name:   "privileges",
		ok:     platform.Superuser(),
		detail: privilegeDetail(platform.Superuser()),
	})
	return results
}

func privilegeDetail(root bool) string {
	if root {
		return "running as root"
	}
	return "not root, packages and system installs are skipped"
}

func runDoctor(s *session) error {
	profile := platform.Detect()

	printHeader("NanoShaper Doctor")
	fmt.Printf("root:     %s\n", s.root)
	fmt.Printf("config:   %s\n", s.configPath)
	fmt.Printf("platform: %s\n\n", profile)

	if profile.OS == platform.Windows {
		printStatus(markWarning(), "platform", "windows builds are manual, see 'ns-setup setup'")
		return nil
	}

	passed, warned, failed := 0, 0, 0
	for _, r := range doctorChecks(s.root, s.cfg, profile, exec.LookPath) {
		status := markSuccess()
		if !r.ok && r.required {
			status = markFailure()
			failed++
		} else if !r.ok {
			status = markWarning()
			warned++
		} else {
			passed++
		}
		printStatus(status, r.name, r.detail)
	}

	printSummaryBox(passed, warned, failed)

	if failed > 0 {
		return fmt.Errorf("doctor found %d required issue(s)", failed)
	}

	fmt.Println("doctor passed")
	return nil
}
