package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use and caches nothing we mutate.
var validate = validator.New()

// SubscriberEmail is an address that passed ParseSubscriberEmail.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail checks raw against the address grammar: a single
// "@" between a non-empty local part and a dotted domain, no whitespace.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	if !utf8.ValidString(raw) {
		return SubscriberEmail{}, emailError(raw, "email is not valid UTF-8")
	}
	if strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return SubscriberEmail{}, emailError(raw, "email contains whitespace")
	}
	local, domainPart, ok := strings.Cut(raw, "@")
	if !ok || strings.Contains(domainPart, "@") {
		return SubscriberEmail{}, emailError(raw, "email must contain exactly one @")
	}
	if local == "" || domainPart == "" {
		return SubscriberEmail{}, emailError(raw, "email is missing a local part or domain")
	}
	if !strings.Contains(domainPart, ".") {
		return SubscriberEmail{}, emailError(raw, "email domain has no dot")
	}
	if err := validate.Var(raw, "email"); err != nil {
		return SubscriberEmail{}, emailError(raw, "email is not a valid address")
	}
	return SubscriberEmail{value: raw}, nil
}

// String returns the validated address.
func (e SubscriberEmail) String() string { return e.value }

func emailError(raw, reason string) *ValidationError {
	return &ValidationError{Field: "email", Value: raw, Reason: reason}
}
