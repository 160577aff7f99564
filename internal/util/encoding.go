package util

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail canonicalizes an email address for lookup: NFKD
// normalization, surrounding whitespace stripped, lowercased.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKD.String(s)))
}

// Normalize applies NFKD normalization. Passwords are normalized before
// hashing so the same input composed differently still verifies.
func Normalize(s string) string {
	return norm.NFKD.String(s)
}
