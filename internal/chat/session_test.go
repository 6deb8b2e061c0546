package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mindhaven/companion-server-go/internal/model"
)

func TestParseSessionID(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		period    model.Period
		defaulted bool
	}{
		{"morning marker", "42_7_0", model.PeriodMorning, false},
		{"evening marker", "42_7_1", model.PeriodEvening, false},
		{"unknown marker defaults to morning", "42_7_9", model.PeriodMorning, true},
		{"missing segment defaults to morning", "42_7", model.PeriodMorning, true},
		{"no separators defaults to morning", "plainid", model.PeriodMorning, true},
		{"extra segments still read position three", "42_7_1_x", model.PeriodEvening, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id := ParseSessionID(tc.raw)
			assert.Equal(t, tc.raw, id.Raw)
			assert.Equal(t, tc.period, id.Period)
			assert.Equal(t, tc.defaulted, id.Defaulted)
		})
	}
}

func TestFormatSessionID(t *testing.T) {
	assert.Equal(t, "42_7_0", FormatSessionID(42, 7, model.PeriodMorning))
	assert.Equal(t, "42_7_1", FormatSessionID(42, 7, model.PeriodEvening))

	// Round trip through the parser.
	id := ParseSessionID(FormatSessionID(42, 7, model.PeriodEvening))
	assert.Equal(t, model.PeriodEvening, id.Period)
	assert.False(t, id.Defaulted)
}
