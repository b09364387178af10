package core

import (
	"time"

	"cfoworx.com/portal/core/models"
)

// ExpectedTotals accumulates the weighted low/target/high hours for one
// assignment key over the period and the to-date window. Role label, bill
// rate and distribution come from whichever version last touched the
// accumulator.
type ExpectedTotals struct {
	LowPeriod    float64
	TargetPeriod float64
	HighPeriod   float64
	LowToDate    float64
	TargetToDate float64
	HighToDate   float64

	TargetByDay map[time.Time]float64

	RoleLabel    string
	BillRate     float64
	Distribution Distribution
}

// AccumulateExpected walks every earning day of the period and, per benchmark
// key with any version effective by period end, adds that day's weighted
// expectation. Inactive clients carry no expectation for days after today.
func AccumulateExpected(rc *ReportContext, idx *BenchmarkIndex, clients map[int32]models.Client) map[AssignmentKey]*ExpectedTotals {
	expected := make(map[AssignmentKey]*ExpectedTotals)
	days := rc.EarningDays(rc.Start, rc.End)

	for _, key := range idx.Keys(rc.End) {
		for _, day := range days {
			v := idx.ResolveAt(key, day)
			if v == nil {
				continue
			}
			client, known := clients[key.ClientID]
			if known && !client.IsActive() && day.After(rc.Today) {
				continue
			}

			dist := ParseDistribution(v.Distribution, DistributionLinear)
			w := rc.Weight(day, dist)
			if w == 0 {
				continue
			}

			tot := expected[key]
			if tot == nil {
				tot = &ExpectedTotals{TargetByDay: make(map[time.Time]float64)}
				expected[key] = tot
			}

			tot.LowPeriod += v.LowHours * w
			tot.TargetPeriod += v.TargetHours * w
			tot.HighPeriod += v.HighHours * w
			tot.TargetByDay[day] += v.TargetHours * w
			if !day.After(rc.AsOf) {
				tot.LowToDate += v.LowHours * w
				tot.TargetToDate += v.TargetHours * w
				tot.HighToDate += v.HighHours * w
			}

			tot.RoleLabel = RoleLabel(key.Role)
			tot.BillRate = v.BillRate
			tot.Distribution = dist
		}
	}

	return expected
}
