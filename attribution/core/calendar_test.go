package core

import (
	"testing"
	"time"

	"cfoworx.com/portal/core/models"
	"cfoworx.com/portal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(start, end string, holidays ...string) *ReportContext {
	hs := make([]models.Holiday, 0, len(holidays))
	for _, h := range holidays {
		hs = append(hs, models.Holiday{Date: utils.MustParseDate(h), Name: "holiday"})
	}
	return NewReportContext(ReportRequest{
		StartDate:        utils.MustParseDate(start),
		EndDate:          utils.MustParseDate(end),
		BusinessDaysOnly: true,
	}, hs, utils.MustParseDate(end), SplitEqually)
}

func TestEarningDaysInMonth(t *testing.T) {
	rc := testContext("2025-03-01", "2025-03-31")

	days := rc.EarningDaysInMonth(2025, time.March)
	assert.Len(t, days, 21) // March 2025 has 21 weekdays

	for _, d := range days {
		assert.NotEqual(t, time.Saturday, d.Weekday())
		assert.NotEqual(t, time.Sunday, d.Weekday())
	}
}

func TestEarningDaysExcludeHolidays(t *testing.T) {
	rc := testContext("2025-07-01", "2025-07-31", "2025-07-04")

	days := rc.EarningDaysInMonth(2025, time.July)
	assert.Len(t, days, 22) // 23 weekdays minus July 4th
	for _, d := range days {
		assert.NotEqual(t, utils.MustParseDate("2025-07-04"), d)
	}
}

func TestEarningDaysAllDays(t *testing.T) {
	rc := NewReportContext(ReportRequest{
		StartDate:        utils.MustParseDate("2025-02-01"),
		EndDate:          utils.MustParseDate("2025-02-28"),
		BusinessDaysOnly: false,
	}, nil, utils.MustParseDate("2025-02-28"), SplitEqually)

	assert.Len(t, rc.EarningDaysInMonth(2025, time.February), 28)
}

func TestWeightsSumToOne(t *testing.T) {
	rc := testContext("2025-01-01", "2025-12-31", "2025-01-01", "2025-12-25")

	months := []time.Month{
		time.January, time.February, time.March, time.April,
		time.May, time.June, time.July, time.August,
		time.September, time.October, time.November, time.December,
	}
	dists := []Distribution{DistributionLinear, DistributionFrontLoaded, DistributionBackLoaded}

	for _, month := range months {
		for _, dist := range dists {
			w := rc.Weights(2025, month, dist)
			sum := 0.0
			for _, v := range w {
				sum += v
			}
			assert.InDelta(t, 1.0, sum, 1e-9, "month %s dist %s", month, dist)
		}
	}
}

func TestFrontLoadedWeightsDecrease(t *testing.T) {
	rc := testContext("2025-03-01", "2025-03-31")

	days := rc.EarningDaysInMonth(2025, time.March)
	w := rc.Weights(2025, time.March, DistributionFrontLoaded)

	require.Greater(t, len(days), 1)
	first := w[days[0]]
	last := w[days[len(days)-1]]
	assert.Greater(t, first, last)
	assert.InDelta(t, 3.0, first/last, 1e-9) // 1.5x mean over 0.5x mean

	back := rc.Weights(2025, time.March, DistributionBackLoaded)
	assert.InDelta(t, first, back[days[len(days)-1]], 1e-9)
	assert.InDelta(t, last, back[days[0]], 1e-9)
}

func TestParseDistribution(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback Distribution
		expected Distribution
	}{
		{name: "linear", input: "linear", expected: DistributionLinear},
		{name: "front loaded", input: "front_loaded", expected: DistributionFrontLoaded},
		{name: "back loaded", input: "BACK_LOADED", expected: DistributionBackLoaded},
		{name: "unknown falls back to benchmark value", input: "bell_curve", fallback: DistributionFrontLoaded, expected: DistributionFrontLoaded},
		{name: "unknown with no fallback is linear", input: "garbage", expected: DistributionLinear},
		{name: "empty is linear", input: "", expected: DistributionLinear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDistribution(tt.input, tt.fallback))
		})
	}
}

func TestSingleEarningDayTakesFullWeight(t *testing.T) {
	// Every day but one is a holiday.
	holidays := make([]models.Holiday, 0)
	for d := utils.MustParseDate("2025-03-03"); d.Month() == time.March; d = d.AddDate(0, 0, 1) {
		if !d.Equal(utils.MustParseDate("2025-03-03")) {
			holidays = append(holidays, models.Holiday{Date: d})
		}
	}
	rc := NewReportContext(ReportRequest{
		StartDate:        utils.MustParseDate("2025-03-01"),
		EndDate:          utils.MustParseDate("2025-03-31"),
		BusinessDaysOnly: true,
	}, holidays, utils.MustParseDate("2025-03-31"), SplitEqually)

	for _, dist := range []Distribution{DistributionLinear, DistributionFrontLoaded, DistributionBackLoaded} {
		assert.InDelta(t, 1.0, rc.Weight(utils.MustParseDate("2025-03-03"), dist), 1e-9)
	}
}

func TestAsOfClampedIntoRange(t *testing.T) {
	rc := NewReportContext(ReportRequest{
		StartDate:        utils.MustParseDate("2025-03-01"),
		EndDate:          utils.MustParseDate("2025-03-31"),
		AsOfDate:         utils.MustParseDate("2025-06-15"),
		BusinessDaysOnly: true,
	}, nil, utils.MustParseDate("2025-06-15"), SplitEqually)
	assert.Equal(t, utils.MustParseDate("2025-03-31"), rc.AsOf)

	rc = NewReportContext(ReportRequest{
		StartDate:        utils.MustParseDate("2025-03-01"),
		EndDate:          utils.MustParseDate("2025-03-31"),
		AsOfDate:         utils.MustParseDate("2025-01-01"),
		BusinessDaysOnly: true,
	}, nil, utils.MustParseDate("2025-06-15"), SplitEqually)
	assert.Equal(t, utils.MustParseDate("2025-03-01"), rc.AsOf)
}

func TestRequestValidation(t *testing.T) {
	err := ReportRequest{}.Validate()
	assert.ErrorIs(t, err, ErrMissingDates)

	err = ReportRequest{
		StartDate: utils.MustParseDate("2025-03-31"),
		EndDate:   utils.MustParseDate("2025-03-01"),
	}.Validate()
	assert.ErrorIs(t, err, ErrInvertedRange)

	err = ReportRequest{
		StartDate: utils.MustParseDate("2025-03-01"),
		EndDate:   utils.MustParseDate("2025-03-31"),
	}.Validate()
	assert.NoError(t, err)
}
