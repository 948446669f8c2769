// Package normalizers provides contact field normalization for merge keying
package normalizers

import (
	"strings"
	"unicode"
)

// countryCallingCode replaces a single leading zero on national numbers.
const countryCallingCode = "43"

// minPhoneDigits is the shortest digit string accepted as a phone number.
const minPhoneDigits = 8

// Phone normalizes a raw phone number into a comparable digits-only form.
// "0664 123 45 67", "+43 664 123 45 67" and "0043664/1234567" all normalize
// to "436641234567". Returns false when no valid number can be derived;
// callers treat that as an expected outcome, not an error.
func Phone(raw string) (string, bool) {
	cleaned := DigitsOnly(raw)
	if cleaned == "" {
		return "", false
	}

	// National format: single leading 0 becomes the country calling code.
	if strings.HasPrefix(cleaned, "0") && !strings.HasPrefix(cleaned, "00") {
		cleaned = countryCallingCode + cleaned[1:]
	}

	// International dial prefix: 0043... -> 43...
	if strings.HasPrefix(cleaned, "00") {
		cleaned = cleaned[2:]
	}

	if len(cleaned) < minPhoneDigits {
		return "", false
	}

	return cleaned, true
}

// Email normalizes an email address (lowercase, trim). The validation is a
// minimal sanity check, not RFC compliance: the address must contain both an
// '@' and a '.'.
func Email(raw string) (string, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if !strings.Contains(cleaned, "@") || !strings.Contains(cleaned, ".") {
		return "", false
	}
	return cleaned, true
}

// DigitsOnly keeps only digit characters
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}
