package core

import (
	"time"

	"cfoworx.com/portal/core/models"
	"cfoworx.com/portal/utils"
)

// ActualTotals accumulates logged hours attributed to one assignment key.
type ActualTotals struct {
	Period float64
	ToDate float64
	ByDay  map[time.Time]float64
}

// ConsultantBuckets holds the per-consultant hour buckets that sit outside
// assignment keys: time off, internal work, and the client-facing totals the
// utilization math needs.
type ConsultantBuckets struct {
	TimeOffPeriod      float64
	TimeOffToDate      float64
	InternalPeriod     float64
	InternalToDate     float64
	ClientFacingPeriod float64
	ClientFacingToDate float64
	LoggedPeriod       float64
	LoggedToDate       float64
}

// AllocationResult is the output of the actual-hours allocator.
type AllocationResult struct {
	ByKey        map[AssignmentKey]*ActualTotals
	ByConsultant map[int32]*ConsultantBuckets

	// LastLoggedByClient covers the whole loaded timecard window, including
	// days before the period, for attention-risk detection.
	LastLoggedByClient map[int32]time.Time
}

// AllocateActuals aggregates the loaded timecard totals into assignment-key
// buckets. Rows against the reserved time-off and internal clients go to the
// per-consultant buckets; rows with several benchmarked roles active on that
// day are split proportional to each role's target hours, falling back to the
// context's split policy when every target is zero. Splits always sum back to
// the row's total.
func AllocateActuals(rc *ReportContext, idx *BenchmarkIndex, rows []TimecardTotal, clients map[int32]models.Client) *AllocationResult {
	res := &AllocationResult{
		ByKey:              make(map[AssignmentKey]*ActualTotals),
		ByConsultant:       make(map[int32]*ConsultantBuckets),
		LastLoggedByClient: make(map[int32]time.Time),
	}

	for _, row := range rows {
		day := utils.DateOf(row.Date)
		client := clients[row.ClientID]

		if !client.IsSynthetic() && row.TotalHours > 0 {
			if last, ok := res.LastLoggedByClient[row.ClientID]; !ok || day.After(last) {
				res.LastLoggedByClient[row.ClientID] = day
			}
		}

		if day.Before(rc.Start) || day.After(rc.End) {
			continue
		}
		toDate := !day.After(rc.AsOf)

		bucket := res.ByConsultant[row.ConsultantID]
		if bucket == nil {
			bucket = &ConsultantBuckets{}
			res.ByConsultant[row.ConsultantID] = bucket
		}

		switch {
		case client.IsTimeOff():
			bucket.TimeOffPeriod += row.TotalHours
			if toDate {
				bucket.TimeOffToDate += row.TotalHours
			}
			continue
		case client.IsInternal():
			bucket.InternalPeriod += row.TotalHours
			bucket.LoggedPeriod += row.TotalHours
			if toDate {
				bucket.InternalToDate += row.TotalHours
				bucket.LoggedToDate += row.TotalHours
			}
			continue
		}

		bucket.ClientFacingPeriod += row.ClientFacingHours
		bucket.LoggedPeriod += row.TotalHours
		if toDate {
			bucket.ClientFacingToDate += row.ClientFacingHours
			bucket.LoggedToDate += row.TotalHours
		}

		keys := idx.ActiveKeysFor(row.ClientID, row.ConsultantID, day)
		if len(keys) == 0 {
			keys = []AssignmentKey{NewAssignmentKey(row.ClientID, row.ConsultantID, UnbenchmarkedRole)}
		}

		for key, hours := range splitHours(rc, idx, keys, day, row.TotalHours) {
			tot := res.ByKey[key]
			if tot == nil {
				tot = &ActualTotals{ByDay: make(map[time.Time]float64)}
				res.ByKey[key] = tot
			}
			tot.Period += hours
			tot.ByDay[day] += hours
			if toDate {
				tot.ToDate += hours
			}
		}
	}

	return res
}

// splitHours divides a row's hours across the active keys proportional to
// each key's target hours on that day. The last key takes the remainder so
// the shares sum back exactly.
func splitHours(rc *ReportContext, idx *BenchmarkIndex, keys []AssignmentKey, day time.Time, total float64) map[AssignmentKey]float64 {
	shares := make(map[AssignmentKey]float64, len(keys))
	if len(keys) == 1 {
		shares[keys[0]] = total
		return shares
	}

	targets := make([]float64, len(keys))
	sum := 0.0
	for i, key := range keys {
		if v := idx.ResolveAt(key, day); v != nil {
			targets[i] = v.TargetHours
		}
		sum += targets[i]
	}

	if sum == 0 {
		if rc.Split == SplitToFirst {
			shares[keys[0]] = total
			return shares
		}
		// Equal split fallback.
		for i := range targets {
			targets[i] = 1
		}
		sum = float64(len(keys))
	}

	allocated := 0.0
	for i, key := range keys {
		if i == len(keys)-1 {
			shares[key] = total - allocated
			break
		}
		share := total * targets[i] / sum
		shares[key] = share
		allocated += share
	}
	return shares
}
