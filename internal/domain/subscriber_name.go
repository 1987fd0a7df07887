package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// MaxSubscriberNameLength is the upper bound on a name, in grapheme clusters.
const MaxSubscriberNameLength = 256

const forbiddenNameCharacters = `/()"<>\{}`

// SubscriberName is a display name that passed ParseSubscriberName.
type SubscriberName struct {
	value string
}

// ParseSubscriberName validates raw and wraps it. The accepted value is
// stored exactly as submitted; trimming is only used for the emptiness check.
func ParseSubscriberName(raw string) (SubscriberName, error) {
	if !utf8.ValidString(raw) {
		return SubscriberName{}, nameError(raw, "name is not valid UTF-8")
	}
	if strings.TrimSpace(raw) == "" {
		return SubscriberName{}, nameError(raw, "name is empty")
	}
	if uniseg.GraphemeClusterCount(raw) > MaxSubscriberNameLength {
		return SubscriberName{}, nameError(raw, "name is longer than 256 characters")
	}
	for _, r := range raw {
		if strings.ContainsRune(forbiddenNameCharacters, r) {
			return SubscriberName{}, nameError(raw, "name contains a forbidden character")
		}
		if unicode.IsControl(r) {
			return SubscriberName{}, nameError(raw, "name contains a control character")
		}
		// Format characters such as bidi overrides and zero-width spaces
		// render invisibly.
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return SubscriberName{}, nameError(raw, "name contains a non-printable character")
		}
	}
	return SubscriberName{value: raw}, nil
}

// String returns the validated name.
func (n SubscriberName) String() string { return n.value }

func nameError(raw, reason string) *ValidationError {
	return &ValidationError{Field: "name", Value: raw, Reason: reason}
}
