package dependency

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nanoshaper/ns-setup/internal/step"
)

// Fetcher makes sure the dependency source tree exists and is patched.
type Fetcher struct {
	Spec       Spec
	Root       string
	Downloader Downloader
	Host       step.Host
	// Inspect, when set, runs on the downloaded archive before extraction.
	// Its error stops the fetch only on a strict host.
	Inspect func(archive string, s Spec) error
}

// Present reports whether the source tree directory already exists.
func (f *Fetcher) Present() bool {
	return f.Host.Files.IsDir(f.Spec.Dir(f.Root))
}

// Ensure downloads, extracts and patches the dependency unless its source
// tree is already there. fetched reports whether anything was done.
//
// Download and extraction are unchecked: a failed fetch leaves a missing
// or partial tree and the later build runs against it anyway.
func (f *Fetcher) Ensure(ctx context.Context) (fetched bool, err error) {
	if f.Present() {
		return false, nil
	}

	h := f.Host
	h.Println()
	h.Printf("Downloading and extracting %s...\n", f.Spec.Name)
	h.Println()

	download := step.Command("download "+f.Spec.Archive, f.Downloader.Argv(f.Spec.URL())...).In(f.Root)
	if err := h.Run(ctx, download); err != nil {
		return true, err
	}
	h.Files.Sync()

	if f.Inspect != nil {
		archive := filepath.Join(f.Root, f.Spec.Archive)
		if err := h.Unchecked("inspect "+f.Spec.Archive, f.Inspect(archive, f.Spec)); err != nil {
			return true, err
		}
	}

	extract := step.Command("extract "+f.Spec.Archive, "tar", "xvf", f.Spec.Archive).In(f.Root)
	if err := h.Run(ctx, extract); err != nil {
		return true, err
	}
	h.Files.Sync()

	if err := f.Patch(); err != nil {
		return true, err
	}
	return true, nil
}

// Patch swaps the bundled replacement files into the source tree. The
// success message is printed whether or not the copies worked.
func (f *Fetcher) Patch() error {
	h := f.Host
	h.Println()
	h.Printf("Patching %s...\n", f.Spec.Name)
	h.Println()

	dir := f.Spec.Dir(f.Root)
	for _, p := range f.Spec.Patches {
		target := filepath.Join(dir, p.Target)
		if err := h.Unchecked("remove "+p.Target, h.Files.Remove(target)); err != nil {
			return err
		}
		h.Files.Sync()

		src := filepath.Join(f.Root, p.Source)
		if err := h.Unchecked("patch "+p.Target, h.Files.Copy(src, target)); err != nil {
			return fmt.Errorf("apply %s: %w", p.Source, err)
		}
		h.Files.Sync()
	}

	h.Printf("\n%s correctly patched\n", f.Spec.Name)
	return nil
}
