package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nanoshaper/ns-setup/internal/install"
	"github.com/nanoshaper/ns-setup/internal/variant"
)

func init() {
	rootCmd.AddCommand(locateCmd)
}

var locateCmd = &cobra.Command{
	Use:   "locate [logfile]",
	Short: "Find the module install dir in a packaging log",
	Long: `Reads the output of 'python setupInstallation.py install' and prints the
directory the module was written to. This is the directory that receives
_NanoShaper.so when installing the Python module by hand.

Defaults to the packaging log inside build_python.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLocate,
}

func runLocate(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}

	logFile := filepath.Join(s.root, variant.EmbeddableModule.OutputDir(), s.cfg.Logs.Packaging)
	if len(args) == 1 {
		logFile = args[0]
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		return fmt.Errorf("failed to read packaging log: %w", err)
	}

	dir := install.ParseInstallPath(string(data), s.cfg.Project)
	if dir == "" {
		return fmt.Errorf("no %q line naming a %s path in %s", install.Marker, s.cfg.Project, logFile)
	}
	fmt.Println(dir)
	return nil
}
