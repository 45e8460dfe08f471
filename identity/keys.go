package identity

import (
	"regexp"
	"strings"
)

var (
	multiSpaceRegex = regexp.MustCompile(`\s+`)
	nonAlnumRegex   = regexp.MustCompile(`[^a-z0-9\s]`)
)

// CompanyKey normalizes a corporate buyer name into the registry's dedup
// key: lowercase, punctuation stripped, whitespace collapsed. "ABC
// Properties, LLC" and "abc properties llc" produce the same key.
func CompanyKey(name string) string {
	return Normalize(name)
}

// AddressKey collapses an address triple into the key used for per-run
// address deduplication, tolerant of case and punctuation drift between
// transaction rows for the same property.
func AddressKey(address, city, state string) string {
	return Normalize(address + " " + city + " " + state)
}

// Normalize applies the shared key normalization to any string. A full
// "address, city, state" line normalizes to the same key AddressKey builds
// from its parts.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnumRegex.ReplaceAllString(s, " ")
	s = multiSpaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
