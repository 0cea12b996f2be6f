// Package phone converts user-entered phone text into the canonical "+digits"
// key used for storage and lookup, and renders canonical keys for display.
package phone

import (
	"fmt"
	"strings"
)

// countryCode is the only accepted leading digit; submissions are expected to
// be Russian numbers in +7XXXXXXXXXX form.
const (
	countryCode  = '7'
	digitsLength = 11
)

// Digits returns the ASCII digits of raw in their original order.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Normalize strips every non-digit character and prefixes the result with "+".
// It performs no validation; see IsValid.
func Normalize(raw string) string {
	return "+" + Digits(raw)
}

// IsValid reports whether raw holds exactly 11 digits starting with 7.
func IsValid(raw string) bool {
	digits := Digits(raw)
	return len(digits) == digitsLength && digits[0] == countryCode
}

// Format renders a canonical key as "+7 (XXX) XXX-XX-XX". Keys that are not a
// well-formed +7 number are returned unchanged.
func Format(key string) string {
	if len(key) != digitsLength+1 || key[0] != '+' || key[1] != countryCode {
		return key
	}
	if Digits(key) != key[1:] {
		return key
	}
	return fmt.Sprintf("+%c (%s) %s-%s-%s", key[1], key[2:5], key[5:8], key[8:10], key[10:12])
}
