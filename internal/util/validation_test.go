package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidSessionID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"typical checkin session id", "42_7_1", true},
		{"alphanumeric with dash", "abc-DEF-123", true},
		{"empty", "", false},
		{"too long", strings.Repeat("a", 65), false},
		{"max length ok", strings.Repeat("a", 64), true},
		{"path traversal characters", "../etc/passwd", false},
		{"whitespace", "42 7 1", false},
		{"unicode", "sesión", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidSessionID(tc.id))
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("user@example.com"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("user@"))
}

func TestIsValidEnum(t *testing.T) {
	valid := []string{"morning", "evening"}

	t.Run("accepts listed values", func(t *testing.T) {
		assert.True(t, IsValidEnum("morning", valid))
	})

	t.Run("empty is allowed", func(t *testing.T) {
		assert.True(t, IsValidEnum("", valid))
	})

	t.Run("rejects unlisted values", func(t *testing.T) {
		assert.False(t, IsValidEnum("afternoon", valid))
	})
}
