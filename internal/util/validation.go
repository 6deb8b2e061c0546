package util

import (
	"regexp"

	"github.com/mindhaven/companion-server-go/internal/config"
)

// Session ids are opaque to this layer: structure only, no segment semantics.
var sessionIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func IsValidSessionID(s string) bool {
	if s == "" || len(s) > config.MaxSessionIDLength {
		return false
	}
	return sessionIDRegex.MatchString(s)
}

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

func IsValidEnum(value string, validValues []string) bool {
	if value == "" {
		return true
	}
	for _, v := range validValues {
		if value == v {
			return true
		}
	}
	return false
}
