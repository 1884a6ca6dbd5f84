//go:build !darwin

package platform

import "errors"

func macProductVersion() (string, error) {
	return "", errors.New("not a mac")
}
