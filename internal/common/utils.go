package common

import "strings"

// HasAnyPrefix returns true if s starts with any of the prefixes.
func HasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// IsRemote reports whether a dataset location is an http(s) URL.
func IsRemote(location string) bool {
	return HasAnyPrefix(strings.ToLower(location), "http://", "https://")
}
