package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestFormatting(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"integer small", Integer(999), "999"},
		{"integer grouped", Integer(1234567), "1,234,567"},
		{"currency rounds", Currency(12345.6), "$12,346"},
		{"currency zero", Currency(0), "$0"},
		{"currency small", Currency(99.4), "$99"},
		{"cents", Cents(ptr(12.5)), "$12.50"},
		{"cents large has no separator", Cents(ptr(1234.567)), "$1234.57"},
		{"cents undefined", Cents(nil), "N/A"},
		{"percent", Percent(3.25), "3.2%"},
		{"percent zero", Percent(0), "0.0%"},
		{"multiplier", Multiplier(2), "2.0x"},
		{"optional multiplier", OptionalMultiplier(ptr(1.25)), "1.2x"},
		{"optional multiplier undefined", OptionalMultiplier(nil), "N/A"},
		{"thousands", Thousands(12345), "12.3k"},
		{"thousands small", Thousands(50), "0.1k"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.0, Round(2.0, 1))
	assert.Equal(t, 1.3, Round(1.26, 1))
	assert.Equal(t, 0.33, Round(1.0/3.0, 2))
	assert.Equal(t, 2.0, Round(2.5, 0))
	assert.Equal(t, 4.0, Round(3.5, 0))
}
