package step

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Files is the host filesystem as seen by the installer.
type Files interface {
	Exists(path string) bool
	IsDir(path string) bool
	ReadFile(path string) ([]byte, error)
	// Copy copies src to dst, keeping the mode bits. When dst is an existing
	// directory the file lands inside it under its own name.
	Copy(src, dst string) error
	// Remove deletes path recursively. A missing path is not an error.
	Remove(path string) error
	// WipeDir removes everything inside dir but keeps dir itself.
	WipeDir(dir string) error
	MkdirAll(dir string) error
	Chmod(path string, mode os.FileMode) error
	// Sync flushes filesystem buffers.
	Sync()
}

// OSFiles implements Files on the real filesystem.
type OSFiles struct{}

func (OSFiles) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFiles) IsDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

func (OSFiles) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (f OSFiles) Copy(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if f.IsDir(dst) {
		dst = filepath.Join(dst, filepath.Base(src))
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func (OSFiles) Remove(path string) error {
	return os.RemoveAll(path)
}

func (OSFiles) WipeDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (OSFiles) MkdirAll(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

func (OSFiles) Chmod(path string, mode os.FileMode) error {
	return os.Chmod(path, mode)
}

func (OSFiles) Sync() {
	syncFilesystems()
}

// Op is one mutating filesystem call seen by RecordingFiles.
type Op struct {
	Kind string
	Path string
	To   string
}

func (o Op) String() string {
	if o.To != "" {
		return fmt.Sprintf("%s %s -> %s", o.Kind, o.Path, o.To)
	}
	return o.Kind + " " + o.Path
}

// RecordingFiles wraps another Files and records every mutating call.
// Paths under one of the Blocked prefixes are recorded but never touched.
type RecordingFiles struct {
	Next    Files
	Blocked []string
	Ops     []Op
}

func (r *RecordingFiles) blocked(path string) bool {
	for _, p := range r.Blocked {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (r *RecordingFiles) record(kind, path, to string) bool {
	r.Ops = append(r.Ops, Op{Kind: kind, Path: path, To: to})
	return r.blocked(path) || (to != "" && r.blocked(to))
}

func (r *RecordingFiles) Exists(path string) bool             { return r.Next.Exists(path) }
func (r *RecordingFiles) IsDir(path string) bool              { return r.Next.IsDir(path) }
func (r *RecordingFiles) ReadFile(path string) ([]byte, error) { return r.Next.ReadFile(path) }

func (r *RecordingFiles) Copy(src, dst string) error {
	if r.record("copy", src, dst) {
		return nil
	}
	return r.Next.Copy(src, dst)
}

func (r *RecordingFiles) Remove(path string) error {
	if r.record("remove", path, "") {
		return nil
	}
	return r.Next.Remove(path)
}

func (r *RecordingFiles) WipeDir(dir string) error {
	if r.record("wipe", dir, "") {
		return nil
	}
	return r.Next.WipeDir(dir)
}

func (r *RecordingFiles) MkdirAll(dir string) error {
	if r.record("mkdir", dir, "") {
		return nil
	}
	return r.Next.MkdirAll(dir)
}

func (r *RecordingFiles) Chmod(path string, mode os.FileMode) error {
	if r.record("chmod", path, "") {
		return nil
	}
	return r.Next.Chmod(path, mode)
}

func (r *RecordingFiles) Sync() {
	r.Ops = append(r.Ops, Op{Kind: "sync"})
}

// Touched reports the recorded operations that reference a path under prefix.
func (r *RecordingFiles) Touched(prefix string) []Op {
	var out []Op
	for _, o := range r.Ops {
		if strings.HasPrefix(o.Path, prefix) || (o.To != "" && strings.HasPrefix(o.To, prefix)) {
			out = append(out, o)
		}
	}
	return out
}
