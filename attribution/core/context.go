package core

import (
	"errors"
	"time"

	"cfoworx.com/portal/core/models"
	"cfoworx.com/portal/utils"
)

// SplitPolicy decides how a day's logged hours are divided when a consultant
// holds multiple benchmarked roles for one client and every competing target
// is zero.
type SplitPolicy string

const (
	// SplitEqually divides the hours evenly across the competing roles.
	SplitEqually SplitPolicy = "equal"
	// SplitToFirst assigns all hours to the first role in key order.
	SplitToFirst SplitPolicy = "first"
)

var (
	ErrMissingDates  = errors.New("startDate and endDate are required")
	ErrInvertedRange = errors.New("endDate must not be before startDate")
)

// ReportRequest is the validated input of one report computation. Dates are
// date-only values at UTC midnight.
type ReportRequest struct {
	StartDate        time.Time
	EndDate          time.Time
	AsOfDate         time.Time // zero value defaults to EndDate
	ClientIDs        []int32
	ConsultantIDs    []int32
	Role             string
	IncludeSubmitted bool
	BusinessDaysOnly bool
}

func (r ReportRequest) Validate() error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return ErrMissingDates
	}
	if r.EndDate.Before(r.StartDate) {
		return ErrInvertedRange
	}
	return nil
}

// ReportContext carries everything a component needs that would otherwise be
// ambient: the period, the as-of cut, "today", and the per-request calendar
// and weight caches. Nothing in the engine reads the clock or package state.
type ReportContext struct {
	Start            time.Time
	End              time.Time
	AsOf             time.Time
	Today            time.Time
	BusinessDaysOnly bool
	Split            SplitPolicy

	holidays    map[time.Time]struct{}
	earningDays map[monthKey][]time.Time
	weights     map[monthKey]map[Distribution]map[time.Time]float64
}


// NewReportContext builds the calendar context for one request. asOf defaults
// to end and is clamped into [start, end].
func NewReportContext(req ReportRequest, holidays []models.Holiday, today time.Time, split SplitPolicy) *ReportContext {
	start := utils.DateOf(req.StartDate)
	end := utils.DateOf(req.EndDate)

	asOf := utils.DateOf(req.AsOfDate)
	if req.AsOfDate.IsZero() {
		asOf = end
	}
	if asOf.Before(start) {
		asOf = start
	}
	if asOf.After(end) {
		asOf = end
	}

	holidaySet := make(map[time.Time]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[utils.DateOf(h.Date)] = struct{}{}
	}

	if split == "" {
		split = SplitEqually
	}

	return &ReportContext{
		Start:            start,
		End:              end,
		AsOf:             asOf,
		Today:            utils.DateOf(today),
		BusinessDaysOnly: req.BusinessDaysOnly,
		Split:            split,
		holidays:         holidaySet,
		earningDays:      make(map[monthKey][]time.Time),
		weights:          make(map[monthKey]map[Distribution]map[time.Time]float64),
	}
}

// WithRange derives a context over a different date range sharing the same
// holiday set and options. Used for the trailing gross-margin window.
func (rc *ReportContext) WithRange(start, end, asOf time.Time) *ReportContext {
	return &ReportContext{
		Start:            utils.DateOf(start),
		End:              utils.DateOf(end),
		AsOf:             utils.DateOf(asOf),
		Today:            rc.Today,
		BusinessDaysOnly: rc.BusinessDaysOnly,
		Split:            rc.Split,
		holidays:         rc.holidays,
		earningDays:      make(map[monthKey][]time.Time),
		weights:          make(map[monthKey]map[Distribution]map[time.Time]float64),
	}
}
