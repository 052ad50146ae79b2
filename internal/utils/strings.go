package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// IsEmail reports whether s looks like a deliverable address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// IsASCII reports whether s holds only ASCII characters.
func IsASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// Subset reports whether every element of sub is present in set.
func Subset[T comparable](sub, set []T) bool {
	index := make(map[T]struct{}, len(set))
	for _, v := range set {
		index[v] = struct{}{}
	}
	for _, v := range sub {
		if _, ok := index[v]; !ok {
			return false
		}
	}
	return true
}
