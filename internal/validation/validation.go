// Package validation collects per-field violations for request payloads.
// Validators append to a Violations map; an empty map means the payload is
// acceptable.
package validation

import (
	"regexp"
	"strings"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Phone numbers are nine digits starting with 6.
var phoneRe = regexp.MustCompile(`^6\d{8}$`)

// Basic validators

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	at := strings.LastIndex(value, "@")
	if at <= 0 || at == len(value)-1 || !strings.Contains(value[at+1:], ".") {
		v[field] = "invalid_email"
	}
}

func Phone(field, value string, v Violations) {
	if value != "" && !phoneRe.MatchString(value) {
		v[field] = "must_start_with_6_and_have_9_digits"
	}
}

func Choice(field, value string, allowed []string, v Violations) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_choice"
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}
