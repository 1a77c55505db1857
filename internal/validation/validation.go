// Package validation holds the format checks for Indian identity documents and
// contact numbers, plus the display helpers that group or mask them.
package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	phoneRe   = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	panRe     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	gstRe     = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	aadhaarRe = regexp.MustCompile(`^[0-9]{12}$`)
	otpRe     = regexp.MustCompile(`^[0-9]{6}$`)
)

// ValidatePhone reports whether s is a 10-digit mobile number starting with 6-9.
func ValidatePhone(s string) bool {
	return phoneRe.MatchString(s)
}

// ValidatePAN is case-sensitive; normalize with NormalizeIdentity first.
func ValidatePAN(s string) bool {
	return panRe.MatchString(s)
}

// ValidateGST checks the 15-character GSTIN shape.
func ValidateGST(s string) bool {
	return gstRe.MatchString(s)
}

// ValidateAadhaar ignores whitespace and requires exactly 12 digits.
func ValidateAadhaar(s string) bool {
	return aadhaarRe.MatchString(StripSpaces(s))
}

// ValidateOTP reports whether s is a 6-digit code.
func ValidateOTP(s string) bool {
	return otpRe.MatchString(s)
}

// NormalizeIdentity trims and uppercases a PAN or GST number.
func NormalizeIdentity(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// FormatPhone groups a 10-digit number as "98765 43210".
func FormatPhone(s string) string {
	if len(s) != 10 || StripDigits(s) != s {
		return s
	}
	return s[:5] + " " + s[5:]
}

// FormatAadhaar groups a 12-digit number as "1234 5678 9012".
func FormatAadhaar(s string) string {
	if len(s) != 12 || StripDigits(s) != s {
		return s
	}
	return s[:4] + " " + s[4:8] + " " + s[8:]
}

// StripDigits keeps only the digits of s. It reverses FormatPhone and FormatAadhaar.
func StripDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// StripSpaces removes every whitespace rune.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// MaskLast4 renders a card or account number as "•••• 1234".
func MaskLast4(s string) string {
	return "•••• " + Last4(s)
}

// Last4 returns the last four runes of s, or all of s when shorter.
func Last4(s string) string {
	r := []rune(s)
	if len(r) <= 4 {
		return s
	}
	return string(r[len(r)-4:])
}
