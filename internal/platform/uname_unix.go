//go:build unix

package platform

import "golang.org/x/sys/unix"

func uname() (machine, kernel string) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", ""
	}
	return unix.ByteSliceToString(u.Machine[:]), unix.ByteSliceToString(u.Release[:])
}

// Superuser reports whether the process runs with effective uid 0.
func Superuser() bool {
	return unix.Geteuid() == 0
}
