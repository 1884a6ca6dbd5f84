package install

import (
	"fmt"
	"strings"

	"github.com/nanoshaper/ns-setup/internal/platform"
)

// LibraryInstructions is printed instead of a system-wide library install.
func LibraryInstructions(os platform.OSFamily) string {
	dirs := "/usr/lib or /usr/lib64"
	if os == platform.MacOS {
		dirs = "/usr/lib or /usr/local/lib"
	}
	return strings.Join([]string{
		"For using the lib with DelPhi please assure that the lib is reachable by the OS",
		fmt.Sprintf("Once you have root privileges you can copy it on %s folder.", dirs),
		"If you have not root privileges you can update your LD_LIBRARY_PATH to the path where the lib is located",
	}, "\n") + "\n"
}

// ModuleInstructions restates the module install, log scan included, as
// manual steps.
func ModuleInstructions(outputDir, descriptor, python, log string) string {
	return strings.Join([]string{
		"",
		"Without root privileges I cannot perform installation",
		"Once you get root privileges you can rerun this script or perform installation following these steps:",
		fmt.Sprintf("1) Go to \\%s and mkdir NanoShaper", outputDir),
		"2) cp _NanoShaper.so ./NanoShaper",
		fmt.Sprintf("3) cp ../%s ./", descriptor),
		fmt.Sprintf("4) %s %s install > %s", python, descriptor, log),
		fmt.Sprintf(`5) On the %s file identify the path that appears after the "%s" string`, log, Marker),
		"6) Copy _NanoShaper.so into one level before that path. For instance:",
		`   If in the log you get "/usr/dist-packages/NanoShaper-0.5.egg" then copy into "/usr/dist-packages/"`,
		"   Now you can import NanoShaper in python as per any other package",
		"",
	}, "\n") + "\n"
}
