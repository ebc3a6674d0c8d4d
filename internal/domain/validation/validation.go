// Package validation holds the input error shared by every domain service.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Error reports a missing or malformed request field.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// New returns an *Error for field.
func New(field, reason string) *Error {
	return &Error{Field: field, Reason: reason}
}

// Missing returns an *Error for a required field that was not provided.
func Missing(field string) *Error {
	return &Error{Field: field, Reason: "is required"}
}

var (
	reEmail   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	rePincode = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

// Email trims s and reports whether it looks like an address. The empty
// string is accepted; callers decide whether the field is required.
func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return s, len(s) <= 254 && reEmail.MatchString(s)
}

// Pincode trims s and reports whether it is a six-digit postal code.
func Pincode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePincode.MatchString(s)
}

// NormalizeMobile strips every non-digit and keeps the last ten digits, so
// "+91 98765-43210" and "09876543210" both become "9876543210".
func NormalizeMobile(s string) string {
	digits := make([]byte, 0, len(s))
	for i := range len(s) {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return string(digits)
}

// Mobile normalizes s and reports whether ten digits remain.
func Mobile(s string) (string, bool) {
	m := NormalizeMobile(s)
	return m, len(m) == 10
}
