package core

import (
	"strings"
	"time"

	"cfoworx.com/portal/utils"
)

type Distribution string

const (
	DistributionLinear      Distribution = "linear"
	DistributionFrontLoaded Distribution = "front_loaded"
	DistributionBackLoaded  Distribution = "back_loaded"
)

// ParseDistribution maps a stored distribution string to the enum. Unknown
// values fall back to the supplied default, and to linear when that is also
// unset.
func ParseDistribution(s string, fallback Distribution) Distribution {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(DistributionLinear):
		return DistributionLinear
	case string(DistributionFrontLoaded):
		return DistributionFrontLoaded
	case string(DistributionBackLoaded):
		return DistributionBackLoaded
	}
	if fallback != "" {
		return fallback
	}
	return DistributionLinear
}

type monthKey struct {
	year  int
	month time.Month
}

func monthOf(date time.Time) monthKey {
	return monthKey{year: date.Year(), month: date.Month()}
}

// EarningDaysInMonth returns every day of the month that counts toward
// proration: weekdays minus holidays when BusinessDaysOnly is set, otherwise
// every calendar day. Cached per month on the context.
func (rc *ReportContext) EarningDaysInMonth(year int, month time.Month) []time.Time {
	mk := monthKey{year: year, month: month}
	if days, ok := rc.earningDays[mk]; ok {
		return days
	}

	var days []time.Time
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		if rc.BusinessDaysOnly {
			if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
				continue
			}
			if _, holiday := rc.holidays[d]; holiday {
				continue
			}
		}
		days = append(days, d)
	}

	rc.earningDays[mk] = days
	return days
}

// EarningDays returns the earning days falling within [start, end].
func (rc *ReportContext) EarningDays(start, end time.Time) []time.Time {
	var days []time.Time
	for _, mk := range monthsBetween(start, end) {
		for _, d := range rc.EarningDaysInMonth(mk.year, mk.month) {
			if d.Before(start) || d.After(end) {
				continue
			}
			days = append(days, d)
		}
	}
	return days
}

// Weights returns the per-day weight map for a month and distribution type.
// Weights always sum to 1 within the month. Cached per (month, distribution).
func (rc *ReportContext) Weights(year int, month time.Month, dist Distribution) map[time.Time]float64 {
	mk := monthKey{year: year, month: month}
	byDist, ok := rc.weights[mk]
	if !ok {
		byDist = make(map[Distribution]map[time.Time]float64)
		rc.weights[mk] = byDist
	}
	if w, ok := byDist[dist]; ok {
		return w
	}

	days := rc.EarningDaysInMonth(year, month)
	w := distributeWeights(days, dist)
	byDist[dist] = w
	return w
}

// Weight returns the weight of a single earning day under a distribution.
// A non-earning day weighs zero.
func (rc *ReportContext) Weight(day time.Time, dist Distribution) float64 {
	return rc.Weights(day.Year(), day.Month(), dist)[utils.DateOf(day)]
}

func distributeWeights(days []time.Time, dist Distribution) map[time.Time]float64 {
	w := make(map[time.Time]float64, len(days))
	n := len(days)
	if n == 0 {
		return w
	}
	if n == 1 {
		w[days[0]] = 1
		return w
	}

	switch dist {
	case DistributionFrontLoaded, DistributionBackLoaded:
		// Raw weights slide linearly from 1.5x to 0.5x the mean (mirrored
		// for back-loaded), then normalize so the month sums to 1.
		raw := make([]float64, n)
		sum := 0.0
		for i := 0; i < n; i++ {
			f := 1.5 - float64(i)/float64(n-1)
			if dist == DistributionBackLoaded {
				f = 0.5 + float64(i)/float64(n-1)
			}
			raw[i] = f
			sum += f
		}
		for i, d := range days {
			w[d] = raw[i] / sum
		}
	default:
		for _, d := range days {
			w[d] = 1 / float64(n)
		}
	}
	return w
}

func monthsBetween(start, end time.Time) []monthKey {
	var months []monthKey
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		months = append(months, monthOf(cur))
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}
