package platform

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Source supplies the raw host facts Probe classifies.
type Source struct {
	GOOS string
	// Root prefixes every /etc lookup. Empty means "/".
	Root string
	// MacVersion returns the dotted macOS product version.
	MacVersion func() (string, error)
	// Uname returns the machine and kernel release.
	Uname func() (machine, kernel string)
}

// HostSource describes the running host.
func HostSource() Source {
	return Source{
		GOOS:       runtime.GOOS,
		MacVersion: macProductVersion,
		Uname:      uname,
	}
}

// Detect probes the running host.
func Detect() Profile {
	return Probe(HostSource())
}

// legacyReleaseFiles are consulted when os-release is missing, in order.
var legacyReleaseFiles = []string{
	"etc/SuSE-release",
	"etc/redhat-release",
	"etc/centos-release",
	"etc/fedora-release",
	"etc/lsb-release",
	"etc/debian_version",
}

// Probe builds a Profile from src. It never fails: anything it cannot
// identify ends up in an unknown bucket.
func Probe(src Source) Profile {
	p := Profile{Arch: runtime.GOARCH}
	if src.Uname != nil {
		machine, kernel := src.Uname()
		if machine != "" {
			p.Arch = machine
		}
		p.Kernel = kernel
	}

	switch src.GOOS {
	case "windows":
		p.OS = Windows
	case "darwin":
		p.OS = MacOS
		if src.MacVersion != nil {
			if v, err := src.MacVersion(); err == nil {
				p.MacVersion = strings.TrimSpace(v)
				p.MacMajor, p.MacMinor = ParseMacVersion(p.MacVersion)
			}
		}
	default:
		p.OS = Linux
		p.DistroName = distroName(src.Root)
		p.Distro = ClassifyDistro(p.DistroName)
	}
	return p
}

func distroName(root string) string {
	if root == "" {
		root = "/"
	}
	if data, err := os.ReadFile(filepath.Join(root, "etc/os-release")); err == nil {
		vals := ParseOSRelease(data)
		if name := vals["NAME"]; name != "" {
			return name
		}
		if id := vals["ID"]; id != "" {
			return id
		}
	}

	for _, rel := range legacyReleaseFiles {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			continue
		}
		switch filepath.Base(rel) {
		case "lsb-release":
			if id := ParseOSRelease(data)["DISTRIB_ID"]; id != "" {
				return id
			}
		case "debian_version":
			return "debian"
		default:
			if line := firstLine(data); line != "" {
				return line
			}
		}
	}
	return ""
}

// ParseOSRelease reads KEY=value lines as found in /etc/os-release.
// Surrounding quotes are removed; comments and blank lines are skipped.
func ParseOSRelease(data []byte) map[string]string {
	vals := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		vals[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return vals
}

func firstLine(data []byte) string {
	line, _, _ := strings.Cut(string(data), "\n")
	return strings.TrimSpace(line)
}
