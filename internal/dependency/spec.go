// Package dependency fetches, patches and builds the pinned third-party
// library the project compiles against.
package dependency

import (
	"path/filepath"
	"strings"

	"github.com/nanoshaper/ns-setup/internal/platform"
)

// Patch replaces Target, relative to the source tree, with Source, relative
// to the project root.
type Patch struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Spec pins one dependency version. A pre-existing source tree is trusted
// as is: its version is never compared against the pin.
type Spec struct {
	Name       string  `yaml:"name"`
	Archive    string  `yaml:"archive"`
	SourceDir  string  `yaml:"source_dir"`
	DownloadID string  `yaml:"download_id"`
	BaseURL    string  `yaml:"base_url"`
	Patches    []Patch `yaml:"patches"`
	// Blake3 is the expected archive digest. Only checked by inspections.
	Blake3 string `yaml:"blake3,omitempty"`
}

// CGAL returns the pinned CGAL release.
func CGAL() Spec {
	return Spec{
		Name:       "CGAL",
		Archive:    "CGAL-4.2-beta1.tar.gz",
		SourceDir:  "CGAL-4.2-beta1",
		DownloadID: "/32183/",
		BaseURL:    "https://gforge.inria.fr/frs/download.php",
		Patches: []Patch{
			{Source: "CGALPatch/Weighted_point.h", Target: "include/CGAL/Weighted_point.h"},
		},
	}
}

// URL is the archive download address.
func (s Spec) URL() string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.Trim(s.DownloadID, "/") + "/" + s.Archive
}

// Dir is the source tree location under root.
func (s Spec) Dir(root string) string {
	return filepath.Join(root, s.SourceDir)
}

// Downloader is the command line tool used to fetch archives.
type Downloader int

const (
	Wget Downloader = iota
	// Curl resumes partial downloads.
	Curl
)

// DownloaderFor picks curl on macOS and wget elsewhere.
func DownloaderFor(os platform.OSFamily) Downloader {
	if os == platform.MacOS {
		return Curl
	}
	return Wget
}

func (d Downloader) String() string {
	if d == Curl {
		return "curl"
	}
	return "wget"
}

// Argv builds the download command line for url.
func (d Downloader) Argv(url string) []string {
	if d == Curl {
		return []string{"curl", "-C", "-", "-O", url}
	}
	return []string{"wget", url}
}
