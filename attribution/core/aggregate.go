package core

import (
	"sort"
	"time"

	"cfoworx.com/portal/core/models"
)

// AssignmentRow joins the expected, actual and revenue accumulators for one
// key. It is the unit every rollup sums from.
type AssignmentRow struct {
	ClientID       int32   `json:"clientId"`
	ClientName     string  `json:"clientName"`
	ConsultantID   int32   `json:"consultantId"`
	ConsultantName string  `json:"consultantName"`
	Role           string  `json:"role"`
	RoleLabel      string  `json:"roleLabel"`
	BillRate       float64 `json:"billRate"`

	ExpectedLowPeriod    float64 `json:"expectedLowPeriod"`
	ExpectedTargetPeriod float64 `json:"expectedTargetPeriod"`
	ExpectedHighPeriod   float64 `json:"expectedHighPeriod"`
	ExpectedLowToDate    float64 `json:"expectedLowToDate"`
	ExpectedTargetToDate float64 `json:"expectedTargetToDate"`
	ExpectedHighToDate   float64 `json:"expectedHighToDate"`

	ActualPeriod    float64 `json:"actualPeriod"`
	ActualToDate    float64 `json:"actualToDate"`
	ProjectedPeriod float64 `json:"projectedPeriod"`

	VarianceToDate    float64 `json:"varianceToDate"`
	VariancePctToDate float64 `json:"variancePctToDate"`

	RevenuePeriod float64 `json:"revenuePeriod"`
	RevenueToDate float64 `json:"revenueToDate"`

	SoftwareRevenuePeriod float64 `json:"softwareRevenuePeriod"`
	SoftwareRevenueToDate float64 `json:"softwareRevenueToDate"`
	SoftwareCostPeriod    float64 `json:"softwareCostPeriod"`
	SoftwareCostToDate    float64 `json:"softwareCostToDate"`

	ExpectedCostPeriod  float64 `json:"expectedCostPeriod"`
	ActualCostPeriod    float64 `json:"actualCostPeriod"`
	ActualCostToDate    float64 `json:"actualCostToDate"`
	ProjectedCostPeriod float64 `json:"projectedCostPeriod"`

	ExpectedGrossMarginPeriod  float64 `json:"expectedGrossMarginPeriod"`
	ActualGrossMarginPeriod    float64 `json:"actualGrossMarginPeriod"`
	ActualGrossMarginToDate    float64 `json:"actualGrossMarginToDate"`
	ProjectedGrossMarginPeriod float64 `json:"projectedGrossMarginPeriod"`
}

// BuildAssignmentRows joins the three accumulators by key. Projected period
// hours extend to-date actuals with the remaining expectation when one
// exists, otherwise actuals scale by the earning-day ratio.
func BuildAssignmentRows(
	rc *ReportContext,
	expected map[AssignmentKey]*ExpectedTotals,
	actuals *AllocationResult,
	revenue *RevenueResult,
	clients map[int32]models.Client,
	consultants map[int32]models.Consultant,
) []AssignmentRow {
	keySet := make(map[AssignmentKey]struct{})
	for key := range expected {
		keySet[key] = struct{}{}
	}
	for key := range actuals.ByKey {
		keySet[key] = struct{}{}
	}
	for key := range revenue.ByKey {
		keySet[key] = struct{}{}
	}
	keys := make([]AssignmentKey, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
	}
	sortKeys(keys)

	totalDays := len(rc.EarningDays(rc.Start, rc.End))
	toDateDays := len(rc.EarningDays(rc.Start, rc.AsOf))

	rows := make([]AssignmentRow, 0, len(keys))
	for _, key := range keys {
		row := AssignmentRow{
			ClientID:     key.ClientID,
			ConsultantID: key.ConsultantID,
			Role:         key.Role,
			RoleLabel:    RoleLabel(key.Role),
		}
		if c, ok := clients[key.ClientID]; ok {
			row.ClientName = c.Name
		}
		if c, ok := consultants[key.ConsultantID]; ok {
			row.ConsultantName = c.Name
		} else if key.ConsultantID == UnassignedConsultantID {
			row.ConsultantName = "Unassigned"
		}

		if exp := expected[key]; exp != nil {
			row.ExpectedLowPeriod = exp.LowPeriod
			row.ExpectedTargetPeriod = exp.TargetPeriod
			row.ExpectedHighPeriod = exp.HighPeriod
			row.ExpectedLowToDate = exp.LowToDate
			row.ExpectedTargetToDate = exp.TargetToDate
			row.ExpectedHighToDate = exp.HighToDate
			row.BillRate = exp.BillRate
			row.RoleLabel = exp.RoleLabel
		}
		if act := actuals.ByKey[key]; act != nil {
			row.ActualPeriod = act.Period
			row.ActualToDate = act.ToDate
		}
		if rev := revenue.ByKey[key]; rev != nil {
			row.RevenuePeriod = rev.Period
			row.RevenueToDate = rev.ToDate
			row.SoftwareRevenuePeriod = rev.SoftwareRevenuePeriod
			row.SoftwareRevenueToDate = rev.SoftwareRevenueToDate
			row.SoftwareCostPeriod = rev.SoftwareCostPeriod
			row.SoftwareCostToDate = rev.SoftwareCostToDate
		}

		row.VarianceToDate = row.ActualToDate - row.ExpectedTargetToDate
		if row.ExpectedTargetToDate != 0 {
			row.VariancePctToDate = row.VarianceToDate / row.ExpectedTargetToDate
		} else if row.ActualToDate != 0 {
			row.VariancePctToDate = 1
		}

		if row.ExpectedTargetPeriod > 0 {
			remaining := row.ExpectedTargetPeriod - row.ExpectedTargetToDate
			row.ProjectedPeriod = row.ActualToDate + remaining
		} else if toDateDays > 0 {
			row.ProjectedPeriod = row.ActualToDate * float64(totalDays) / float64(toDateDays)
		} else {
			row.ProjectedPeriod = row.ActualToDate
		}

		costRate := 0.0
		if c, ok := consultants[key.ConsultantID]; ok {
			costRate = EffectiveHourlyCost(c)
		}
		row.ExpectedCostPeriod = row.ExpectedTargetPeriod * costRate
		row.ActualCostPeriod = row.ActualPeriod * costRate
		row.ActualCostToDate = row.ActualToDate * costRate
		row.ProjectedCostPeriod = row.ProjectedPeriod * costRate

		row.ExpectedGrossMarginPeriod = row.RevenuePeriod - row.ExpectedCostPeriod
		row.ActualGrossMarginPeriod = row.RevenuePeriod - row.ActualCostPeriod
		row.ActualGrossMarginToDate = row.RevenueToDate - row.ActualCostToDate
		row.ProjectedGrossMarginPeriod = row.RevenuePeriod - row.ProjectedCostPeriod

		rows = append(rows, row)
	}

	return rows
}

// rollupTotals is the numeric block shared by every rollup level. Each field
// is the straight sum of the AssignmentRow values that roll into it.
type rollupTotals struct {
	ExpectedTargetPeriod float64 `json:"expectedTargetPeriod"`
	ExpectedTargetToDate float64 `json:"expectedTargetToDate"`
	ActualPeriod         float64 `json:"actualPeriod"`
	ActualToDate         float64 `json:"actualToDate"`
	ProjectedPeriod      float64 `json:"projectedPeriod"`

	RevenuePeriod float64 `json:"revenuePeriod"`
	RevenueToDate float64 `json:"revenueToDate"`

	SoftwareRevenuePeriod float64 `json:"softwareRevenuePeriod"`
	SoftwareCostPeriod    float64 `json:"softwareCostPeriod"`

	ActualCostPeriod    float64 `json:"actualCostPeriod"`
	ActualCostToDate    float64 `json:"actualCostToDate"`
	ExpectedCostPeriod  float64 `json:"expectedCostPeriod"`
	ProjectedCostPeriod float64 `json:"projectedCostPeriod"`

	ActualGrossMarginPeriod   float64 `json:"actualGrossMarginPeriod"`
	ActualGrossMarginToDate   float64 `json:"actualGrossMarginToDate"`
	ExpectedGrossMarginPeriod float64 `json:"expectedGrossMarginPeriod"`
}

func (t *rollupTotals) add(row AssignmentRow) {
	t.ExpectedTargetPeriod += row.ExpectedTargetPeriod
	t.ExpectedTargetToDate += row.ExpectedTargetToDate
	t.ActualPeriod += row.ActualPeriod
	t.ActualToDate += row.ActualToDate
	t.ProjectedPeriod += row.ProjectedPeriod
	t.RevenuePeriod += row.RevenuePeriod
	t.RevenueToDate += row.RevenueToDate
	t.SoftwareRevenuePeriod += row.SoftwareRevenuePeriod
	t.SoftwareCostPeriod += row.SoftwareCostPeriod
	t.ActualCostPeriod += row.ActualCostPeriod
	t.ActualCostToDate += row.ActualCostToDate
	t.ExpectedCostPeriod += row.ExpectedCostPeriod
	t.ProjectedCostPeriod += row.ProjectedCostPeriod
	t.ActualGrossMarginPeriod += row.ActualGrossMarginPeriod
	t.ActualGrossMarginToDate += row.ActualGrossMarginToDate
	t.ExpectedGrossMarginPeriod += row.ExpectedGrossMarginPeriod
}

type ClientRollup struct {
	ClientID   int32  `json:"clientId"`
	ClientName string `json:"clientName"`
	rollupTotals
}

type RoleRollup struct {
	Role      string `json:"role"`
	RoleLabel string `json:"roleLabel"`
	rollupTotals
}

type ConsultantRollup struct {
	ConsultantID   int32  `json:"consultantId"`
	ConsultantName string `json:"consultantName"`
	rollupTotals

	CapacityPeriod     float64 `json:"capacityPeriod"`
	CapacityToDate     float64 `json:"capacityToDate"`
	TimeOffPeriod      float64 `json:"timeOffPeriod"`
	TimeOffToDate      float64 `json:"timeOffToDate"`
	InternalPeriod     float64 `json:"internalPeriod"`
	ClientFacingPeriod float64 `json:"clientFacingPeriod"`
	ClientFacingToDate float64 `json:"clientFacingToDate"`
	UtilizationPeriod  float64 `json:"utilizationPeriod"`
	UtilizationToDate  float64 `json:"utilizationToDate"`
	BenchHoursPeriod   float64 `json:"benchHoursPeriod"`
	BenchCostPeriod    float64 `json:"benchCostPeriod"`
}

// RollupByClient sums rows per client in deterministic order.
func RollupByClient(rows []AssignmentRow) []ClientRollup {
	byID := make(map[int32]*ClientRollup)
	var order []int32
	for _, row := range rows {
		r := byID[row.ClientID]
		if r == nil {
			r = &ClientRollup{ClientID: row.ClientID, ClientName: row.ClientName}
			byID[row.ClientID] = r
			order = append(order, row.ClientID)
		}
		r.add(row)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]ClientRollup, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

// RollupByRole sums rows per normalized role.
func RollupByRole(rows []AssignmentRow) []RoleRollup {
	byRole := make(map[string]*RoleRollup)
	var order []string
	for _, row := range rows {
		r := byRole[row.Role]
		if r == nil {
			r = &RoleRollup{Role: row.Role, RoleLabel: RoleLabel(row.Role)}
			byRole[row.Role] = r
			order = append(order, row.Role)
		}
		r.add(row)
	}
	sort.Strings(order)
	out := make([]RoleRollup, 0, len(order))
	for _, role := range order {
		out = append(out, *byRole[role])
	}
	return out
}

// RollupByConsultant sums rows per consultant and adds the capacity,
// utilization and bench-hours math. Utilization divides client-facing logged
// hours by capacity net of time off; bench hours are unutilized paid
// capacity, costed only for salaried consultants.
func RollupByConsultant(rc *ReportContext, rows []AssignmentRow, actuals *AllocationResult, consultants map[int32]models.Consultant) []ConsultantRollup {
	byID := make(map[int32]*ConsultantRollup)
	var order []int32

	get := func(id int32) *ConsultantRollup {
		r := byID[id]
		if r == nil {
			r = &ConsultantRollup{ConsultantID: id}
			if c, ok := consultants[id]; ok {
				r.ConsultantName = c.Name
			} else if id == UnassignedConsultantID {
				r.ConsultantName = "Unassigned"
			}
			byID[id] = r
			order = append(order, id)
		}
		return r
	}

	for _, row := range rows {
		get(row.ConsultantID).add(row)
	}
	// Consultants with only time-off or internal hours still appear.
	for id := range actuals.ByConsultant {
		get(id)
	}

	periodDays := float64(len(rc.EarningDays(rc.Start, rc.End)))
	toDateDays := float64(len(rc.EarningDays(rc.Start, rc.AsOf)))

	for _, id := range order {
		r := byID[id]
		c, known := consultants[id]
		if !known {
			continue
		}
		r.CapacityPeriod = c.CapacityHoursPerWeek / 5 * periodDays
		r.CapacityToDate = c.CapacityHoursPerWeek / 5 * toDateDays

		if bucket := actuals.ByConsultant[id]; bucket != nil {
			r.TimeOffPeriod = bucket.TimeOffPeriod
			r.TimeOffToDate = bucket.TimeOffToDate
			r.InternalPeriod = bucket.InternalPeriod
			r.ClientFacingPeriod = bucket.ClientFacingPeriod
			r.ClientFacingToDate = bucket.ClientFacingToDate
		}

		if net := r.CapacityPeriod - r.TimeOffPeriod; net > 0 {
			r.UtilizationPeriod = r.ClientFacingPeriod / net
		}
		if net := r.CapacityToDate - r.TimeOffToDate; net > 0 {
			r.UtilizationToDate = r.ClientFacingToDate / net
		}

		bench := r.CapacityPeriod - r.TimeOffPeriod - r.ActualPeriod - r.InternalPeriod
		if bench < 0 {
			bench = 0
		}
		r.BenchHoursPeriod = bench
		if c.IsSalaried() {
			r.BenchCostPeriod = bench * EffectiveHourlyCost(c)
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]ConsultantRollup, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}

// TrendPoint is one day of the cumulative series.
type TrendPoint struct {
	Date             string  `json:"date"`
	ExpectedTarget   float64 `json:"expectedTarget"`
	ActualHours      float64 `json:"actualHours"`
	RecognizedAmount float64 `json:"recognizedAmount"`
}

// BuildTrend produces the daily cumulative expected/actual/revenue series
// over every calendar day in the period. Revenue and hours can post on
// weekends and holidays (project completions, weekend timecards), so the walk
// cannot be limited to earning days or the final point would miss them. Keys
// are walked in sorted order so repeated runs sum in the same order and
// produce identical output.
func BuildTrend(rc *ReportContext, expected map[AssignmentKey]*ExpectedTotals, actuals *AllocationResult, revenue *RevenueResult) []TrendPoint {
	days := make([]time.Time, 0, 31)
	for d := rc.Start; !d.After(rc.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	points := make([]TrendPoint, 0, len(days))

	expKeys := make([]AssignmentKey, 0, len(expected))
	for key := range expected {
		expKeys = append(expKeys, key)
	}
	sortKeys(expKeys)
	actKeys := make([]AssignmentKey, 0, len(actuals.ByKey))
	for key := range actuals.ByKey {
		actKeys = append(actKeys, key)
	}
	sortKeys(actKeys)
	revKeys := make([]AssignmentKey, 0, len(revenue.ByKey))
	for key := range revenue.ByKey {
		revKeys = append(revKeys, key)
	}
	sortKeys(revKeys)

	var cumExpected, cumActual, cumRevenue float64
	for _, day := range days {
		for _, key := range expKeys {
			cumExpected += expected[key].TargetByDay[day]
		}
		for _, key := range actKeys {
			cumActual += actuals.ByKey[key].ByDay[day]
		}
		for _, key := range revKeys {
			cumRevenue += revenue.ByKey[key].ByDay[day]
		}
		points = append(points, TrendPoint{
			Date:             day.Format("2006-01-02"),
			ExpectedTarget:   cumExpected,
			ActualHours:      cumActual,
			RecognizedAmount: cumRevenue,
		})
	}
	return points
}

// Summary is the grand-total block. Service and software split so the two
// margins report separately.
type Summary struct {
	rollupTotals

	ServiceRevenuePeriod float64 `json:"serviceRevenuePeriod"`
	ServiceMarginPeriod  float64 `json:"serviceMarginPeriod"`
	SoftwareMarginPeriod float64 `json:"softwareMarginPeriod"`

	AssignmentCount int `json:"assignmentCount"`
	ClientCount     int `json:"clientCount"`
	ConsultantCount int `json:"consultantCount"`
}

func BuildSummary(rows []AssignmentRow, byClient []ClientRollup, byConsultant []ConsultantRollup) Summary {
	var s Summary
	for _, row := range rows {
		s.add(row)
	}
	s.ServiceRevenuePeriod = s.RevenuePeriod
	s.ServiceMarginPeriod = s.ActualGrossMarginPeriod
	s.SoftwareMarginPeriod = s.SoftwareRevenuePeriod - s.SoftwareCostPeriod
	s.AssignmentCount = len(rows)
	s.ClientCount = len(byClient)
	s.ConsultantCount = len(byConsultant)
	return s
}
