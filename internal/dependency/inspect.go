package dependency

import (
	"archive/tar"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
	"lukechampine.com/blake3"
)

var (
	// ErrUnsupportedArchive is returned for unknown archive extensions.
	ErrUnsupportedArchive = errors.New("unsupported archive format")
	// ErrDigestMismatch is returned when the archive digest differs from the pin.
	ErrDigestMismatch = errors.New("archive digest mismatch")
	// ErrPatchTarget is returned when a file to be patched is not in the archive.
	ErrPatchTarget = errors.New("patch target missing from archive")
)

// ProgressFunc wraps the raw archive reader, typically with a progress bar.
// The returned func is called once reading is done.
type ProgressFunc func(r io.Reader, size int64) (io.Reader, func())

// Report summarizes an archive without extracting it.
type Report struct {
	Path    string
	Format  string
	Size    int64
	Entries int
	// TopDir is the single top-level directory, empty if entries are spread.
	TopDir string
	// Blake3 is the hex digest of the compressed file.
	Blake3 string
	// Found maps every requested path to whether the archive contains it.
	Found map[string]bool
}

// Missing returns the requested paths not present in the archive.
func (r *Report) Missing() []string {
	var out []string
	for p, ok := range r.Found {
		if !ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func archiveFormat(name string) string {
	switch {
	case strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz"):
		return "gzip"
	case strings.HasSuffix(name, ".tar.bz2"):
		return "bzip2"
	case strings.HasSuffix(name, ".tar.xz"):
		return "xz"
	case strings.HasSuffix(name, ".tar.zst"):
		return "zstd"
	case strings.HasSuffix(name, ".tar"):
		return "tar"
	default:
		return ""
	}
}

// Inspect walks the tar archive at file, hashing the compressed bytes and
// looking for each path in want. Paths in want are relative to the
// archive's top-level directory.
func Inspect(file string, want []string, progress ProgressFunc) (*Report, error) {
	format := archiveFormat(file)
	if format == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArchive, file)
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	rep := &Report{Path: file, Format: format, Size: st.Size(), Found: make(map[string]bool)}
	for _, w := range want {
		rep.Found[path.Clean(w)] = false
	}

	var src io.Reader = f
	if progress != nil {
		var done func()
		src, done = progress(f, st.Size())
		defer done()
	}
	hash := blake3.New(32, nil)
	if _, err := io.Copy(hash, src); err != nil {
		return nil, fmt.Errorf("hash %s: %w", file, err)
	}
	rep.Blake3 = fmt.Sprintf("%x", hash.Sum(nil))
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	src = f

	var r io.Reader
	switch format {
	case "gzip":
		gz, err := pgzip.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("gzip reader for %s: %w", file, err)
		}
		defer gz.Close()
		r = gz
	case "bzip2":
		r = bzip2.NewReader(src)
	case "xz":
		xr, err := xz.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("xz reader for %s: %w", file, err)
		}
		r = xr
	case "zstd":
		zr, err := zstd.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("zstd reader for %s: %w", file, err)
		}
		defer zr.Close()
		r = zr
	default:
		r = src
	}

	tops := make(map[string]bool)
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}
		rep.Entries++

		name := strings.TrimPrefix(hdr.Name, "./")
		top, rest, _ := strings.Cut(name, "/")
		tops[top] = true
		if rest != "" {
			if _, ok := rep.Found[path.Clean(rest)]; ok {
				rep.Found[path.Clean(rest)] = true
			}
		}
	}

	if len(tops) == 1 {
		for top := range tops {
			rep.TopDir = top
		}
	}
	return rep, nil
}

// Verify inspects a downloaded archive against s: the top-level directory
// must be the source tree, every patch target must exist and, if pinned,
// the digest must match.
func Verify(file string, s Spec, progress ProgressFunc) (*Report, error) {
	want := make([]string, 0, len(s.Patches))
	for _, p := range s.Patches {
		want = append(want, p.Target)
	}
	rep, err := Inspect(file, want, progress)
	if err != nil {
		return nil, err
	}

	if rep.TopDir != s.SourceDir {
		return rep, fmt.Errorf("archive %s unpacks to %q, want %q", s.Archive, rep.TopDir, s.SourceDir)
	}
	if missing := rep.Missing(); len(missing) > 0 {
		return rep, fmt.Errorf("%w: %s", ErrPatchTarget, strings.Join(missing, ", "))
	}
	if s.Blake3 != "" && !strings.EqualFold(s.Blake3, rep.Blake3) {
		return rep, fmt.Errorf("%w: got %s, want %s", ErrDigestMismatch, rep.Blake3, s.Blake3)
	}
	return rep, nil
}
