package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nanoshaper/ns-setup/internal/install"
	"github.com/nanoshaper/ns-setup/internal/platform"
	"github.com/nanoshaper/ns-setup/internal/prompt"
	"github.com/nanoshaper/ns-setup/internal/variant"
)

const shellMarker = "# NanoShaper environment"

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.AddCommand(envShowCmd)
	envCmd.AddCommand(envApplyCmd)
	envCmd.AddCommand(envResetCmd)
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage the library search path for a local DelPhi-lib build",
	Long: `Without root privileges the shared library stays in build_lib and the
loader has to be told where to find it. 'env apply' writes an env file
that prepends build_lib to LD_LIBRARY_PATH (DYLD_LIBRARY_PATH on macOS)
and sources it from the shell profile.`,
}

// --- env show ---

var envShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display env file and current values",
	RunE:  runEnvShow,
}

func init() {
	envShowCmd.Flags().String("env-file", "", "path to env file")
}

func runEnvShow(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home dir: %w", err)
	}

	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile == "" {
		envFile = defaultEnvFilePath(home)
	}

	values := map[string]string{}
	if st, statErr := os.Stat(envFile); statErr == nil && !st.IsDir() {
		fileValues, loadErr := loadEnvFile(envFile)
		if loadErr != nil {
			return fmt.Errorf("failed to read env file %s: %w", envFile, loadErr)
		}
		values = fileValues
	}

	osFamily := platform.Detect().OS
	fmt.Printf("env_file: %s\n\n", envFile)
	for _, key := range allEnvVars(osFamily) {
		value := strings.TrimSpace(values[key])
		if value == "" {
			value = strings.TrimSpace(os.Getenv(key))
		}
		if value == "" {
			printStatus(markWarning(), key, "not set")
		} else {
			printStatus(markSuccess(), key, value)
		}
	}

	libDir := libraryDir(s.root)
	searchVar := install.LibrarySearchVar(osFamily)
	fmt.Println()
	if searchPathContains(os.Getenv(searchVar), libDir) {
		printStatus(markSuccess(), "session", libDir+" is on "+searchVar)
	} else {
		printStatus(markInfo(), "session", libDir+" is not on "+searchVar+" in this shell")
	}
	return nil
}

// --- env apply ---

var envApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Write env file and source it from the shell profile",
	RunE:  runEnvApply,
}

func init() {
	envApplyCmd.Flags().String("env-file", "", "path to env file")
	envApplyCmd.Flags().String("shell-file", "", "shell rc file to update")
	envApplyCmd.Flags().Bool("force", false, "overwrite env file and re-append the source line")
}

func runEnvApply(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home dir: %w", err)
	}

	envFile, _ := cmd.Flags().GetString("env-file")
	shellFile, _ := cmd.Flags().GetString("shell-file")
	force, _ := cmd.Flags().GetBool("force")

	if envFile == "" {
		envFile = defaultEnvFilePath(home)
	}
	if shellFile == "" {
		shellFile = defaultShellRC()
	}

	osFamily := platform.Detect().OS
	if osFamily == platform.Windows {
		return errors.New("env apply is not supported on windows")
	}
	if err := writeEnvFile(envFile, s.root, install.LibrarySearchVar(osFamily), force); err != nil {
		return err
	}

	updated, err := applyEnvSourceToShell(envFile, shellFile, force)
	if err != nil {
		return err
	}

	printStatus(markSuccess(), "env_file", envFile)
	if updated {
		printStatus(markSuccess(), "shell_file", "updated "+shellFile)
	} else {
		printStatus(markSuccess(), "shell_file", "already contains source "+envFile)
	}
	fmt.Println("next:")
	fmt.Printf("  source %s\n", shellFile)
	fmt.Println("  ns-setup env show")
	return nil
}

// --- env reset ---

var envResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove the env file and clean the shell profile",
	RunE:  runEnvReset,
}

func init() {
	envResetCmd.Flags().Bool("yes", false, "skip confirmation prompt")
	envResetCmd.Flags().String("env-file", "", "path to env file")
	envResetCmd.Flags().String("shell-file", "", "shell rc file to clean (default: auto-detect)")
}

func runEnvReset(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home dir: %w", err)
	}

	yes, _ := cmd.Flags().GetBool("yes")
	envFile, _ := cmd.Flags().GetString("env-file")
	shellFile, _ := cmd.Flags().GetString("shell-file")
	if envFile == "" {
		envFile = defaultEnvFilePath(home)
	}
	if shellFile == "" {
		shellFile = defaultShellRC()
	}

	printHeader("Reset NanoShaper Environment")

	envFileExists := pathExists(envFile)
	shellFileExists := pathExists(shellFile)
	if !envFileExists && !shellFileExists {
		printStatus(markSuccess(), "env", "no NanoShaper environment configuration found")
		return nil
	}

	fmt.Println("The following will be removed:")
	if envFileExists {
		fmt.Printf("  • %s\n", envFile)
	}
	if shellFileExists {
		fmt.Printf("  • source line in %s\n", shellFile)
	}
	fmt.Println()

	if !yes {
		if !confirmProceed("Proceed? [y/N]: ") {
			fmt.Println("Cancelled")
			return nil
		}
	}

	if envFileExists {
		if err := os.Remove(envFile); err != nil {
			return fmt.Errorf("failed to remove env file: %w", err)
		}
		printStatus(markSuccess(), "removed", envFile)
	}

	if shellFileExists {
		cleaned, err := removeEnvSourceFromShell(envFile, shellFile)
		if err != nil {
			return fmt.Errorf("failed to clean shell file: %w", err)
		}
		if cleaned {
			printStatus(markSuccess(), "cleaned", shellFile)
		} else {
			printStatus(markInfo(), "no_change", shellFile+" (no source line found)")
		}
	}
	return nil
}

// --- helpers ---

func libraryDir(root string) string {
	return filepath.Join(root, variant.SharedLibrary.OutputDir())
}

func defaultShellRC() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("~", ".bashrc")
	}
	switch filepath.Base(os.Getenv("SHELL")) {
	case "zsh":
		return filepath.Join(home, ".zshrc")
	default:
		return filepath.Join(home, ".bashrc")
	}
}

func defaultEnvFilePath(home string) string {
	return filepath.Join(home, ".ns-setup", "nanoshaper.env")
}

func writeEnvFile(envFile, root, searchVar string, force bool) error {
	if err := os.MkdirAll(filepath.Dir(envFile), 0o755); err != nil {
		return fmt.Errorf("failed to create env directory: %w", err)
	}

	if !force {
		if _, err := os.Stat(envFile); err == nil {
			return fmt.Errorf("env file already exists: %s (use --force to overwrite)", envFile)
		}
	}

	content := buildEnvFile(root, searchVar)
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}
	return nil
}

func buildEnvFile(root, searchVar string) string {
	quote := func(v string) string {
		return "\"" + strings.ReplaceAll(v, "\"", "\\\"") + "\""
	}

	var b strings.Builder
	b.WriteString("# NanoShaper environment generated by ns-setup env apply\n")
	b.WriteString("# source this file to load the DelPhi-lib from the build tree\n")
	b.WriteString("\n")
	b.WriteString("export " + rootEnv + "=" + quote(root) + "\n")
	b.WriteString("export " + searchVar + "=" + quote(libraryDir(root)+":$"+searchVar) + "\n")
	return b.String()
}

func searchPathContains(value, dir string) bool {
	for _, entry := range filepath.SplitList(value) {
		if filepath.Clean(entry) == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

func applyEnvSourceToShell(envFile, shellFile string, force bool) (bool, error) {
	if st, statErr := os.Stat(envFile); statErr != nil || st.IsDir() {
		return false, fmt.Errorf("env file does not exist: %s", envFile)
	}

	line := "source " + envFile

	existing := ""
	if data, readErr := os.ReadFile(shellFile); readErr == nil {
		existing = string(data)
	} else if !errors.Is(readErr, os.ErrNotExist) {
		return false, fmt.Errorf("failed to read shell file %s: %w", shellFile, readErr)
	}

	if !force && strings.Contains(existing, line) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(shellFile), 0o755); err != nil {
		return false, fmt.Errorf("failed to create shell file directory: %w", err)
	}

	f, openErr := os.OpenFile(shellFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if openErr != nil {
		return false, fmt.Errorf("failed to open shell file %s: %w", shellFile, openErr)
	}
	defer f.Close()

	if existing != "" && !strings.HasSuffix(existing, "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, fmt.Errorf("failed writing newline to shell file: %w", err)
		}
	}

	if _, err := f.WriteString("\n" + shellMarker + "\n" + line + "\n"); err != nil {
		return false, fmt.Errorf("failed writing source line to shell file: %w", err)
	}

	return true, nil
}

func removeEnvSourceFromShell(envFile, shellFile string) (bool, error) {
	content, err := os.ReadFile(shellFile)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	lines := strings.Split(string(content), "\n")
	var newLines []string
	removed := false

	for _, line := range lines {
		if strings.Contains(line, envFile) && strings.Contains(line, "source") {
			removed = true
			continue
		}
		if strings.TrimSpace(line) == shellMarker {
			continue
		}
		newLines = append(newLines, line)
	}

	if !removed {
		return false, nil
	}

	if err := os.WriteFile(shellFile, []byte(strings.Join(newLines, "\n")), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func confirmProceed(question string) bool {
	answer, err := prompt.Stdio().Ask(question)
	return err == nil && (prompt.IsYes(answer) || answer == "yes")
}
