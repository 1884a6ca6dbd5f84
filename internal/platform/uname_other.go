//go:build !unix

package platform

func uname() (machine, kernel string) {
	return "", ""
}

func Superuser() bool {
	return false
}
