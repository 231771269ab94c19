package moneymath_test

import (
	"testing"

	"github.com/quipufin/cajachica_backend/internal/utils/moneymath"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundCents(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already exact", "95.00", "95.00"},
		{"half rounds up", "10.005", "10.01"},
		{"below half rounds down", "10.004", "10.00"},
		{"negative half rounds away from zero", "-10.005", "-10.01"},
		{"long accumulation tail", "5.499999", "5.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := moneymath.RoundCents(decimal.RequireFromString(tt.in))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		pct       string
		precision int32
		want      string
	}{
		{"one percent of 100", "100", "1", 4, "1"},
		{"thirty percent of 15", "15", "30", 4, "4.5"},
		{"four decimal truncation point", "33.33", "1.75", 4, "0.5833"},
		{"zero percent", "250.75", "0", 4, "0"},
		{"full percent", "250.75", "100", 4, "250.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := moneymath.ApplyPercentage(
				decimal.RequireFromString(tt.base),
				decimal.RequireFromString(tt.pct),
				tt.precision,
			)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

// Summing pre-rounded line products must stay stable no matter how many lines
// accumulate; this is the property the withholding totals depend on.
func TestApplyPercentageAccumulation(t *testing.T) {
	base := decimal.RequireFromString("33.3333")
	pct := decimal.RequireFromString("1")

	sum := decimal.Zero
	for i := 0; i < 3; i++ {
		sum = sum.Add(moneymath.ApplyPercentage(base, pct, 4))
	}
	assert.True(t, moneymath.RoundCents(sum).Equal(decimal.RequireFromString("1.00")), "got %s", sum)
}

func TestIsValidPercentage(t *testing.T) {
	assert.True(t, moneymath.IsValidPercentage(decimal.Zero))
	assert.True(t, moneymath.IsValidPercentage(decimal.NewFromInt(100)))
	assert.True(t, moneymath.IsValidPercentage(decimal.RequireFromString("12.5")))
	assert.False(t, moneymath.IsValidPercentage(decimal.RequireFromString("-0.01")))
	assert.False(t, moneymath.IsValidPercentage(decimal.RequireFromString("100.01")))
}
