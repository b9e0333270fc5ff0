// Package email derives display names from addresses. Registration only
// requires an email, so the welcome and verification mails need a greeting
// even when the profile carries no name yet.
package email

import (
	"strings"
	"unicode"
)

// DeriveNameFromEmail guesses a first and last name from the local part of
// an address: "ada.okafor@lawclinic.example" reads as ("Ada", "Okafor").
// When the local part yields nothing usable, both fall back to "User".
func DeriveNameFromEmail(address string) (string, string) {
	local, _, found := strings.Cut(address, "@")
	if !found || local == "" {
		local = address
	}

	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}
	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
