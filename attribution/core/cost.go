package core

import (
	"strings"

	"cfoworx.com/portal/core/models"
)

// periodsPerYear annualizes a periodic pay rate by timecard cycle.
var periodsPerYear = map[string]float64{
	models.CycleWeekly:      52,
	models.CycleBiWeekly:    26,
	models.CycleSemiMonthly: 24,
	models.CycleMonthly:     12,
	models.CycleQuarterly:   4,
	models.CycleAnnual:      1,
}

const weeksPerYear = 52

// EffectiveHourlyCost normalizes a consultant's pay structure into one hourly
// cost rate. Hourly pay uses the hourly rate (pay rate as fallback); salaried
// and flat-rate pay annualizes the periodic rate over annual capacity hours.
func EffectiveHourlyCost(c models.Consultant) float64 {
	switch strings.ToLower(c.PayType) {
	case models.PayTypeHourly:
		if c.HourlyRate > 0 {
			return c.HourlyRate
		}
		return c.PayRate
	case models.PayTypeSalary, models.PayTypeFlatRate:
		periods, ok := periodsPerYear[strings.ToLower(c.TimecardCycle)]
		if !ok || c.CapacityHoursPerWeek <= 0 {
			break
		}
		annualHours := c.CapacityHoursPerWeek * weeksPerYear
		return c.PayRate * periods / annualHours
	}
	if c.HourlyRate > 0 {
		return c.HourlyRate
	}
	return c.PayRate
}
