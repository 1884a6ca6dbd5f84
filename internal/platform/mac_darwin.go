//go:build darwin

package platform

import (
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

// macProductVersion asks the kernel first. kern.osproductversion is missing
// before 10.13, so older systems fall back to sw_vers.
func macProductVersion() (string, error) {
	if v, err := unix.Sysctl("kern.osproductversion"); err == nil && v != "" {
		return v, nil
	}
	out, err := exec.Command("sw_vers", "-productVersion").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
