//go:build !unix

package step

func syncFilesystems() {}
