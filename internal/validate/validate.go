package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Validate checks request bodies carrying `validate` struct tags.
var Validate = validator.New(validator.WithRequiredStructEnabled())

var (
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePhone = regexp.MustCompile(`^\+?[0-9 ()-]{8,20}$`)
)

const (
	maxName    = 80
	maxAddress = 200
	// MaxQty caps a single cart line.
	MaxQty = 99
)

// Struct runs the tag validation on v.
func Struct(v any) error {
	return Validate.Struct(v)
}

// ID validates a simple resource identifier (product/category ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > maxName {
		return "", false
	}
	return s, true
}

// Phone accepts digits with the usual separators and an optional leading +.
func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !rePhone.MatchString(s) {
		return "", false
	}
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return s, n >= 8 && n <= 15
}

func Address(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > maxAddress {
		return "", false
	}
	return s, true
}
