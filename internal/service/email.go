package service

import (
	"regexp"
	"strings"
)

// Deliberately permissive: alphanumeric local part with at most one
// dot or underscore separator, then a domain with a 2-3 letter TLD.
// Good enough to catch typos; not an RFC 5322 validator.
var emailPattern = regexp.MustCompile(`^[a-z0-9]+[._]?[a-z0-9]+@\w+\.\w{2,3}$`)

// ValidEmail reports whether s looks like a usable email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.ToLower(s))
}
