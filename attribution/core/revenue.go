package core

import (
	"sort"
	"strings"
	"time"

	"cfoworx.com/portal/core/models"
	"cfoworx.com/portal/utils"
)

type ContractType int

const (
	ContractRecurring ContractType = iota
	ContractProject
	ContractHourly
	ContractOther
)

// ParseContractType maps the stored contract type string to the variant once
// at the boundary. M&A engagements recognize like projects; anything unknown
// prorates like recurring work.
func ParseContractType(s string) ContractType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "recurring":
		return ContractRecurring
	case "project", "m&a", "ma", "m_and_a":
		return ContractProject
	case "hourly":
		return ContractHourly
	default:
		return ContractOther
	}
}

const (
	RoleCFO              = "cfo"
	RoleController       = "controller"
	RoleSeniorAccountant = "senior accountant"
	RoleSoftware         = "software"
)

// RevenueTotals accumulates recognized revenue for one assignment key.
// Software revenue and cost ride in a parallel sub-ledger so service and
// software margin report separately.
type RevenueTotals struct {
	Period float64
	ToDate float64
	ByDay  map[time.Time]float64

	SoftwareRevenuePeriod float64
	SoftwareRevenueToDate float64
	SoftwareCostPeriod    float64
	SoftwareCostToDate    float64
}

type RevenueResult struct {
	ByKey map[AssignmentKey]*RevenueTotals
}

func (rr *RevenueResult) totals(key AssignmentKey) *RevenueTotals {
	tot := rr.ByKey[key]
	if tot == nil {
		tot = &RevenueTotals{ByDay: make(map[time.Time]float64)}
		rr.ByKey[key] = tot
	}
	return tot
}

func (rr *RevenueResult) addDay(key AssignmentKey, rc *ReportContext, day time.Time, amount float64) {
	tot := rr.totals(key)
	tot.Period += amount
	tot.ByDay[day] += amount
	if !day.After(rc.AsOf) {
		tot.ToDate += amount
	}
}

// recurringLine is one monthly amount attributed to a key: an assigned role
// rate, an additional staff line, the base monthly fee, or a software item.
type recurringLine struct {
	key      AssignmentKey
	monthly  float64
	software bool // revenue posts to the software sub-ledger
	cost     bool // software cost rather than revenue
}

// AttributeRevenue walks every contract overlapping the period and recognizes
// revenue per day according to the contract type. Hourly contracts price the
// hours the allocator attributed, so this runs after AllocateActuals.
func AttributeRevenue(rc *ReportContext, contracts []models.Contract, idx *BenchmarkIndex, actuals *AllocationResult) *RevenueResult {
	res := &RevenueResult{ByKey: make(map[AssignmentKey]*RevenueTotals)}

	for _, contract := range contracts {
		if !contract.OverlapsRange(rc.Start, rc.End) && !projectRecognizable(rc, contract) {
			continue
		}
		switch ParseContractType(contract.Type) {
		case ContractProject:
			recognizeProject(rc, res, contract)
		case ContractHourly:
			recognizeHourly(rc, res, contract, idx, actuals)
		default:
			recognizeRecurring(rc, res, contract)
		}
	}

	return res
}

// recognizeRecurring prorates each monthly line by contract-active earning
// days over total earning days of the month, spread evenly across the active
// days. The onboarding fee follows the same proration in the contract's first
// month only.
func recognizeRecurring(rc *ReportContext, res *RevenueResult, contract models.Contract) {
	lines := recurringLines(contract)
	if len(lines) == 0 && contract.OnboardingFee == 0 {
		return
	}

	for _, mk := range monthsBetween(rc.Start, rc.End) {
		monthDays := rc.EarningDaysInMonth(mk.year, mk.month)
		if len(monthDays) == 0 {
			continue
		}
		var activeDays []time.Time
		for _, d := range monthDays {
			if contract.ActiveOn(d) {
				activeDays = append(activeDays, d)
			}
		}
		if len(activeDays) == 0 {
			continue
		}
		fraction := float64(len(activeDays)) / float64(len(monthDays))

		for _, line := range lines {
			monthly := line.monthly * fraction
			perDay := monthly / float64(len(activeDays))
			for _, d := range activeDays {
				if d.Before(rc.Start) || d.After(rc.End) {
					continue
				}
				postLine(rc, res, line, d, perDay)
			}
		}

		if contract.OnboardingFee > 0 && sameMonth(mk, contract.StartDate) {
			fee := contract.OnboardingFee * fraction
			perDay := fee / float64(len(activeDays))
			key := contractBaseKey(contract)
			for _, d := range activeDays {
				if d.Before(rc.Start) || d.After(rc.End) {
					continue
				}
				res.addDay(key, rc, d, perDay)
			}
		}
	}
}

func postLine(rc *ReportContext, res *RevenueResult, line recurringLine, day time.Time, amount float64) {
	if !line.software {
		res.addDay(line.key, rc, day, amount)
		return
	}
	tot := res.totals(line.key)
	toDate := !day.After(rc.AsOf)
	if line.cost {
		tot.SoftwareCostPeriod += amount
		if toDate {
			tot.SoftwareCostToDate += amount
		}
		return
	}
	tot.SoftwareRevenuePeriod += amount
	if toDate {
		tot.SoftwareRevenueToDate += amount
	}
}

// recurringLines expands a contract into its monthly line items.
func recurringLines(contract models.Contract) []recurringLine {
	var lines []recurringLine

	addRole := func(consultantID *int32, role string, rate float64) {
		if rate <= 0 {
			return
		}
		id := UnassignedConsultantID
		if consultantID != nil {
			id = *consultantID
		}
		lines = append(lines, recurringLine{
			key:     NewAssignmentKey(contract.ClientID, id, role),
			monthly: rate,
		})
	}
	addRole(contract.CFOConsultantID, RoleCFO, contract.CFOMonthlyRate)
	addRole(contract.ControllerConsultantID, RoleController, contract.ControllerMonthlyRate)
	addRole(contract.SeniorAccountantConsultantID, RoleSeniorAccountant, contract.SeniorAccountantMonthlyRate)

	// Base monthly fee not itemized per role.
	if contract.MonthlyFee > 0 {
		lines = append(lines, recurringLine{key: contractBaseKey(contract), monthly: contract.MonthlyFee})
	}

	for _, staff := range contract.AdditionalStaff() {
		if staff.MonthlyRate <= 0 {
			continue
		}
		lines = append(lines, recurringLine{
			key:     NewAssignmentKey(contract.ClientID, UnassignedConsultantID, staff.Role),
			monthly: staff.MonthlyRate,
		})
	}

	qty := contract.SoftwareQuantity
	if qty == 0 {
		qty = 1
	}
	softwareKey := NewAssignmentKey(contract.ClientID, UnassignedConsultantID, RoleSoftware)
	if contract.SoftwareMonthlyRate > 0 && !contract.SoftwareProvidedFree {
		lines = append(lines, recurringLine{key: softwareKey, monthly: contract.SoftwareMonthlyRate * qty, software: true})
	}
	if contract.SoftwareMonthlyCost > 0 {
		lines = append(lines, recurringLine{key: softwareKey, monthly: contract.SoftwareMonthlyCost * qty, software: true, cost: true})
	}

	return lines
}

func contractBaseKey(contract models.Contract) AssignmentKey {
	return NewAssignmentKey(contract.ClientID, UnassignedConsultantID, "engagement")
}

// projectRecognizable reports whether a completed project outside the range
// still recognizes in this period (completion passed before the period, or
// completion after the period already reached by today).
func projectRecognizable(rc *ReportContext, contract models.Contract) bool {
	if ParseContractType(contract.Type) != ContractProject || contract.EndDate == nil {
		return false
	}
	completion := utils.DateOf(*contract.EndDate)
	if completion.Before(rc.Start) && !contract.StartDate.After(rc.End) {
		return true
	}
	return completion.After(rc.End) && !rc.Today.Before(completion)
}

// recognizeProject books the full fee exactly once. Completion inside the
// period recognizes on the completion date; a completion that predates the
// period recognizes at period start as a catch-up (a known reporting quirk
// across back-dated queries); a completion after the period that today has
// already reached books against the period's last day.
func recognizeProject(rc *ReportContext, res *RevenueResult, contract models.Contract) {
	if contract.EndDate == nil || contract.TotalFee == 0 {
		return
	}
	completion := utils.DateOf(*contract.EndDate)
	key := contractBaseKey(contract)

	switch {
	case !completion.Before(rc.Start) && !completion.After(rc.End):
		res.addDay(key, rc, completion, contract.TotalFee)
	case completion.Before(rc.Start) && !contract.StartDate.After(rc.End):
		res.addDay(key, rc, rc.Start, contract.TotalFee)
	case completion.After(rc.End) && !rc.Today.Before(completion):
		res.addDay(key, rc, rc.End, contract.TotalFee)
	}
}

// recognizeHourly prices the hours already attributed to the contract's
// client at each key's bill rate on the day the hours were logged. No daily
// proration.
func recognizeHourly(rc *ReportContext, res *RevenueResult, contract models.Contract, idx *BenchmarkIndex, actuals *AllocationResult) {
	if actuals == nil {
		return
	}
	keys := make([]AssignmentKey, 0)
	for key := range actuals.ByKey {
		if key.ClientID == contract.ClientID && key.Role != UnbenchmarkedRole {
			keys = append(keys, key)
		}
	}
	sortKeys(keys)

	for _, key := range keys {
		days := make([]time.Time, 0, len(actuals.ByKey[key].ByDay))
		for d := range actuals.ByKey[key].ByDay {
			days = append(days, d)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

		for _, day := range days {
			if !contract.ActiveOn(day) {
				continue
			}
			v := idx.ResolveAt(key, day)
			if v == nil || v.BillRate == 0 {
				continue
			}
			res.addDay(key, rc, day, v.BillRate*actuals.ByKey[key].ByDay[day])
		}
	}
}

func sameMonth(mk monthKey, date time.Time) bool {
	return mk.year == date.Year() && mk.month == date.Month()
}
