package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nanoshaper/ns-setup/internal/dependency"
	"github.com/nanoshaper/ns-setup/internal/install"
	"github.com/nanoshaper/ns-setup/internal/platform"
)

func init() {
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show detected platform and compilation mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		printProfile(platform.Detect())
		return nil
	},
}

func printProfile(p platform.Profile) {
	printHeader("Platform")
	printStatus(markInfo(), "os", string(p.OS))
	switch p.OS {
	case platform.Linux:
		name := p.DistroName
		if name == "" {
			name = "(unidentified)"
		}
		printStatus(markInfo(), "distribution", name)
		family := string(p.Distro)
		mark := markSuccess()
		if p.Distro == platform.UnknownDistro {
			mark = markWarning()
		}
		printStatus(mark, "family", family)
	case platform.MacOS:
		version := p.MacVersion
		if version == "" {
			version = "(unknown)"
		}
		printStatus(markInfo(), "version", version)
		printStatus(markInfo(), "release", p.MacRelease().String())
	}
	printStatus(markInfo(), "arch", p.Arch)
	if p.Kernel != "" {
		printStatus(markInfo(), "kernel", p.Kernel)
	}

	mode := p.CompilationMode()
	mark := markSuccess()
	if mode.Forced32() {
		mark = markWarning()
	}
	printStatus(mark, "compilation", mode.String())
	if p.OS != platform.Windows {
		printStatus(markInfo(), "downloader", dependency.DownloaderFor(p.OS).String())
		printStatus(markInfo(), "library path var", install.LibrarySearchVar(p.OS))
	}
	printStatus(markInfo(), "superuser", fmt.Sprintf("%v", platform.Superuser()))
	fmt.Println()
}
