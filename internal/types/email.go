// README: Email value object; the only identity a carpool user has.
package types

import (
	"regexp"
	"strings"
)

type Email string

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lowercases raw input. It does not validate.
func NormalizeEmail(raw string) Email {
	return Email(strings.ToLower(strings.TrimSpace(raw)))
}

// ParseEmail normalizes raw input and reports whether the result looks like an address.
func ParseEmail(raw string) (Email, bool) {
	e := NormalizeEmail(raw)
	if e == "" || !emailPattern.MatchString(string(e)) {
		return e, false
	}
	return e, true
}

func (e Email) String() string {
	return string(e)
}
