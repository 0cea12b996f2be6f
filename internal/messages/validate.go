package messages

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wolfman30/feedback-api/internal/phone"
)

// Column limits of the contacts and messages tables.
const (
	MaxNameLength  = 200
	MaxEmailLength = 320
	MaxTextLength  = 2000
)

// \s only covers ASCII whitespace, so Unicode separators and control
// characters are excluded explicitly.
var emailPattern = regexp.MustCompile(`(?i)^[^@\s\p{Z}\p{Cc}]+@[^@\s\p{Z}\p{Cc}]+\.[^@\s\p{Z}\p{Cc}]+$`)

// NormalizeEmail returns the form an email address is stored and matched in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the request and returns the first failing rule. The order
// of checks is part of the API: a request with several problems always gets
// the message of the earliest one. Validate does not modify the request.
func (r *CreateMessageRequest) Validate() error {
	if r == nil {
		return ErrEmptyRequest
	}
	if isBlank(r.Name) {
		return ErrNameRequired
	}
	if isBlank(r.Email) {
		return ErrEmailRequired
	}
	if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
		return ErrEmailInvalid
	}
	if isBlank(r.Phone) {
		return ErrPhoneRequired
	}
	if !phone.IsValid(r.Phone) {
		return ErrPhoneInvalid
	}
	if r.TopicID <= 0 {
		return ErrTopicRequired
	}
	if isBlank(r.Text) {
		return ErrTextRequired
	}
	if isBlank(r.RecaptchaToken) {
		return ErrTokenRequired
	}

	if utf8.RuneCountInString(strings.TrimSpace(r.Name)) > MaxNameLength {
		return ErrNameTooLong
	}
	if utf8.RuneCountInString(NormalizeEmail(r.Email)) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.Text)) > MaxTextLength {
		return ErrTextTooLong
	}
	if hasControl(strings.TrimSpace(r.Name), "") || hasControl(r.Text, "\t\n\r") {
		return ErrControlCharacter
	}
	return nil
}

// hasControl reports whether s contains a control character other than
// those listed in allowed.
func hasControl(s, allowed string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsControl(r) && !strings.ContainsRune(allowed, r)
	}) >= 0
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
