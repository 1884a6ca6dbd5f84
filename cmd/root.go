package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nanoshaper/ns-setup/internal/config"
	"github.com/nanoshaper/ns-setup/internal/setup"
)

// rootEnv overrides the project root when --root is not given.
const rootEnv = "NS_ROOT"

var rootCmd = &cobra.Command{
	Use:           "ns-setup",
	Short:         "NanoShaper setup",
	Long:          "ns-setup - NanoShaper build and install helper (" + resolvedVersion() + ")",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		printStyledHelp()
	},
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: false,
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to "+config.FileName+" (default: $"+config.EnvPath+" or <root>/"+config.FileName+")")
	rootCmd.PersistentFlags().String("root", "", "NanoShaper source root (default: $"+rootEnv+" or detected)")

	// Override help for root only; subcommands get cobra defaults.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd == rootCmd {
			printStyledHelp()
		} else {
			cmd.InitDefaultHelpFlag()
			cobra.CheckErr(cmd.UsageFunc()(cmd))
		}
	})
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code := setup.ExitCode(err)
		if code != 0 {
			fmt.Fprintln(os.Stderr, colorize(redStyle, "error: ")+err.Error())
		}
		os.Exit(code)
	}
}

// session is the project root and configuration shared by every command.
type session struct {
	root       string
	configPath string
	cfg        *config.Config
}

func loadSession(cmd *cobra.Command) (*session, error) {
	rootFlag, _ := cmd.Flags().GetString("root")
	configFlag, _ := cmd.Flags().GetString("config")

	root, err := resolveRoot(rootFlag)
	if err != nil {
		return nil, err
	}
	path := config.Path(configFlag, root)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return &session{root: root, configPath: path, cfg: cfg}, nil
}

// resolveRoot picks the project root from the flag, NS_ROOT, a detected
// source tree, or the working directory, in that order.
func resolveRoot(flag string) (string, error) {
	root := strings.TrimSpace(flag)
	if root == "" {
		root = strings.TrimSpace(os.Getenv(rootEnv))
	}
	if root == "" {
		if detected, err := detectRepoRoot(); err == nil {
			root = detected
		}
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to resolve working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	return abs, nil
}

func detectRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	candidates := []string{
		wd,
		filepath.Dir(wd),
		filepath.Dir(filepath.Dir(wd)),
	}
	for _, c := range candidates {
		if c == "" || c == "." || c == "/" {
			continue
		}
		if hasRepoMarkers(c) {
			return c, nil
		}
	}

	return "", errors.New("could not detect NanoShaper source root")
}

// hasRepoMarkers reports whether path holds the variant build configs.
func hasRepoMarkers(path string) bool {
	for _, name := range []string{"CMakeLists_standalone.txt", "CMakeLists_lib.txt", "CMakeLists_python.txt"} {
		if st, err := os.Stat(filepath.Join(path, name)); err != nil || st.IsDir() {
			return false
		}
	}
	return true
}

func printStyledHelp() {
	groups := []helpGroup{
		{
			title: "Setup",
			entries: []helpEntry{
				{"setup", "Interactive install (packages, CGAL, build, install)"},
				{"doctor", "Pre-flight check (tools, sources, CGAL tree)"},
				{"detect", "Show detected platform and compilation mode"},
			},
		},
		{
			title: "Packages",
			entries: []helpEntry{
				{"packages", "Install system packages for this host (--dry-run, --yes)"},
				{"packages list", "Show package commands for every platform"},
			},
		},
		{
			title: "Dependency",
			entries: []helpEntry{
				{"fetch", "Download, extract and patch CGAL (--build)"},
				{"fetch inspect", "Verify a downloaded CGAL archive"},
			},
		},
		{
			title: "Build",
			entries: []helpEntry{
				{"build --variant <v>", "Build exe, lib or py (--dry-run, --force32)"},
				{"install --variant <v>", "Install a built variant (--elevated)"},
				{"locate <logfile>", "Find the module install dir in a packaging log"},
				{"clean", "Show reclaimable build outputs"},
				{"clean all", "Remove all build outputs"},
			},
		},
		{
			title: "Configuration",
			entries: []helpEntry{
				{"config init", "Write " + config.FileName + " with defaults"},
				{"config show", "Print the effective configuration"},
				{"env show", "Show the library search path env file"},
				{"env apply", "Write the env file and source it from the shell"},
			},
		},
		{
			title: "Other",
			entries: []helpEntry{
				{"version", "Print CLI version and build metadata"},
				{"completion", "Generate shell completions"},
			},
		},
	}

	fmt.Printf("ns-setup - NanoShaper build and install helper (%s)\n\n", resolvedVersion())
	printGroupedHelp(groups)

	fmt.Println(headerText("Quick Start"))
	fmt.Println("  ns-setup doctor")
	fmt.Println("  sudo ns-setup setup")
	fmt.Println()
}
