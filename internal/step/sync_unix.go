//go:build unix

package step

import "golang.org/x/sys/unix"

func syncFilesystems() {
	unix.Sync()
}
