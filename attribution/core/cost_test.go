package core

import (
	"testing"

	"cfoworx.com/portal/core/models"
	"github.com/stretchr/testify/assert"
)

func TestEffectiveHourlyCost(t *testing.T) {
	tests := []struct {
		name     string
		c        models.Consultant
		expected float64
	}{
		{
			name:     "hourly uses hourly rate",
			c:        models.Consultant{PayType: "hourly", HourlyRate: 95},
			expected: 95,
		},
		{
			name:     "hourly falls back to pay rate",
			c:        models.Consultant{PayType: "hourly", PayRate: 80},
			expected: 80,
		},
		{
			name:     "salary semi-monthly annualizes over capacity",
			c:        models.Consultant{PayType: "salary", PayRate: 5000, TimecardCycle: "semi_monthly", CapacityHoursPerWeek: 40},
			expected: 5000.0 * 24 / (40 * 52),
		},
		{
			name:     "salary monthly",
			c:        models.Consultant{PayType: "salary", PayRate: 10000, TimecardCycle: "monthly", CapacityHoursPerWeek: 40},
			expected: 10000.0 * 12 / (40 * 52),
		},
		{
			name:     "flat rate weekly",
			c:        models.Consultant{PayType: "flat_rate", PayRate: 2080, TimecardCycle: "weekly", CapacityHoursPerWeek: 40},
			expected: 2080 * 52 / (40 * 52),
		},
		{
			name:     "salary annual",
			c:        models.Consultant{PayType: "salary", PayRate: 104000, TimecardCycle: "annual", CapacityHoursPerWeek: 50},
			expected: 104000.0 / (50 * 52),
		},
		{
			name:     "salary with unknown cycle falls back to hourly rate",
			c:        models.Consultant{PayType: "salary", PayRate: 5000, TimecardCycle: "fortnightly", HourlyRate: 60},
			expected: 60,
		},
		{
			name:     "salary with zero capacity falls back to pay rate",
			c:        models.Consultant{PayType: "salary", PayRate: 5000, TimecardCycle: "monthly"},
			expected: 5000,
		},
		{
			name:     "unknown pay type uses hourly rate",
			c:        models.Consultant{PayType: "contractor", HourlyRate: 70, PayRate: 55},
			expected: 70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, EffectiveHourlyCost(tt.c), 1e-9)
		})
	}
}
