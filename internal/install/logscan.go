package install

import "strings"

// Marker is the token that precedes the installed path in a packaging log.
const Marker = "Writing"

// ParseInstallPath finds the directory a packaging tool installed into.
//
// The log is split on whitespace. The token after the first exact "Writing"
// is split on "/" and its segments are joined back, each followed by "/",
// up to but excluding the first segment that starts with project. The
// result is empty when there is no marker, no token after it, or no
// segment starting with project.
//
//	Writing /usr/lib/python/NanoShaper-0.5.egg  ->  /usr/lib/python/
func ParseInstallPath(log, project string) string {
	fields := strings.Fields(log)
	for i, f := range fields {
		if f != Marker {
			continue
		}
		if i+1 >= len(fields) {
			return ""
		}
		var dir strings.Builder
		for _, seg := range strings.Split(fields[i+1], "/") {
			if strings.HasPrefix(seg, project) {
				return dir.String()
			}
			dir.WriteString(seg)
			dir.WriteString("/")
		}
		return ""
	}
	return ""
}

// ReadVersion extracts the version from an interface description file.
// It takes the token after "VERSION" and removes its first two double
// quotes. ok is false without a VERSION token or when the value carries
// fewer than two quotes.
func ReadVersion(text string) (version string, ok bool) {
	fields := strings.Fields(text)
	for i, f := range fields {
		if f != "VERSION" {
			continue
		}
		if i+1 >= len(fields) {
			return "", false
		}
		v := fields[i+1]
		for n := 0; n < 2; n++ {
			j := strings.IndexByte(v, '"')
			if j < 0 {
				return "", false
			}
			v = v[:j] + v[j+1:]
		}
		return v, true
	}
	return "", false
}
