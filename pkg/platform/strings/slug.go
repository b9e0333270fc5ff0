package strings

import (
	"strings"
	"unicode"
)

// Slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single hyphen. The result is safe for URL paths.
//
// Example:
//
//	Slugify("Know Your Rights: Tenant Edition!")
//	// Returns: "know-your-rights-tenant-edition"
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevHyphen := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevHyphen = false
			continue
		}
		if !prevHyphen {
			b.WriteByte('-')
			prevHyphen = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
