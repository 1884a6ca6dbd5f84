// Package platform detects the host the installer runs on.
package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// OSFamily is the broad operating system class.
type OSFamily string

const (
	Linux   OSFamily = "linux"
	MacOS   OSFamily = "macos"
	Windows OSFamily = "windows"
)

// DistroFamily groups Linux distributions by package manager.
type DistroFamily string

const (
	// NoDistro is used outside Linux.
	NoDistro      DistroFamily = ""
	SUSE          DistroFamily = "suse"
	Debian        DistroFamily = "debian"
	RedHat        DistroFamily = "redhat"
	UnknownDistro DistroFamily = "unknown"
)

// Profile is the probed host description. It is built once and never
// modified afterwards.
type Profile struct {
	OS OSFamily
	// Distro and DistroName are only set on Linux.
	Distro     DistroFamily
	DistroName string
	// MacVersion is the dotted product version, split into MacMajor and
	// MacMinor. Only set on macOS.
	MacVersion string
	MacMajor   int
	MacMinor   int

	Arch   string
	Kernel string
}

func (p Profile) String() string {
	switch p.OS {
	case Linux:
		name := p.DistroName
		if name == "" {
			name = "unidentified"
		}
		return fmt.Sprintf("linux (%s, family %s) %s", name, p.Distro, p.Arch)
	case MacOS:
		return fmt.Sprintf("macos %s %s", p.MacVersion, p.Arch)
	default:
		return string(p.OS) + " " + p.Arch
	}
}

// MacRelease buckets macOS versions by how the installer treats them.
type MacRelease int

const (
	MacOther MacRelease = iota
	// MacLeopardOrOlder is 10.5 and earlier: manual packages, 32-bit build.
	MacLeopardOrOlder
	// MacSnowLeopard is 10.6: fink packages, 32-bit build.
	MacSnowLeopard
	// MacLionOrMountainLion is 10.7 and 10.8: manual packages.
	MacLionOrMountainLion
)

func (r MacRelease) String() string {
	switch r {
	case MacLeopardOrOlder:
		return "leopard-or-older"
	case MacSnowLeopard:
		return "snow-leopard"
	case MacLionOrMountainLion:
		return "lion-or-mountain-lion"
	default:
		return "other"
	}
}

// MacRelease classifies the macOS version. Non-mac profiles are MacOther.
func (p Profile) MacRelease() MacRelease {
	if p.OS != MacOS || p.MacMajor != 10 {
		return MacOther
	}
	switch {
	case p.MacMinor <= 5:
		return MacLeopardOrOlder
	case p.MacMinor == 6:
		return MacSnowLeopard
	case p.MacMinor == 7 || p.MacMinor == 8:
		return MacLionOrMountainLion
	default:
		return MacOther
	}
}

// WordWidth selects the compiler word size.
type WordWidth int

const (
	Native WordWidth = iota
	Forced32
)

// CompilationMode is derived from the profile and fixed for the run.
type CompilationMode struct {
	WordWidth WordWidth
}

// Forced32Flag is the CMake override injected for 32-bit builds.
const Forced32Flag = "-DCMAKE_CXX_FLAGS=-arch i386"

// CompilationMode derives the build word width. Leopard and Snow Leopard
// toolchains are forced to 32 bits.
func (p Profile) CompilationMode() CompilationMode {
	switch p.MacRelease() {
	case MacLeopardOrOlder, MacSnowLeopard:
		return CompilationMode{WordWidth: Forced32}
	}
	return CompilationMode{WordWidth: Native}
}

// Forced32 reports whether the 32-bit override applies.
func (m CompilationMode) Forced32() bool {
	return m.WordWidth == Forced32
}

// CMakeArgs returns the extra configure arguments for this mode.
func (m CompilationMode) CMakeArgs() []string {
	if m.Forced32() {
		return []string{Forced32Flag}
	}
	return nil
}

func (m CompilationMode) String() string {
	if m.Forced32() {
		return "forced32"
	}
	return "native"
}

// ClassifyDistro maps a distribution name to its family. Matching is by
// substring on the lower-cased name and checked in a fixed order.
func ClassifyDistro(name string) DistroFamily {
	n := strings.ToLower(name)
	switch {
	case n == "":
		return UnknownDistro
	case strings.Contains(n, "suse"):
		return SUSE
	case strings.Contains(n, "ubuntu") || strings.Contains(n, "debian"):
		return Debian
	case strings.Contains(n, "red") || strings.Contains(n, "hat") ||
		strings.Contains(n, "centos") || strings.Contains(n, "fedora"):
		return RedHat
	default:
		return UnknownDistro
	}
}

// ParseMacVersion splits a dotted version such as "10.6.8" into major and
// minor numbers. Missing or malformed parts come back as zero.
func ParseMacVersion(v string) (major, minor int) {
	parts := strings.Split(strings.TrimSpace(v), ".")
	if len(parts) > 0 {
		major, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor
}
