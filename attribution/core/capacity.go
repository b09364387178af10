package core

import (
	"sort"
	"time"

	"cfoworx.com/portal/utils"
)

// ConsultantCapacity projects one consultant's next-month utilization from
// currently effective benchmarks. Projection is a linear approximation: the
// monthly target with no sub-month weighting.
type ConsultantCapacity struct {
	ConsultantID   int32   `json:"consultantId"`
	ConsultantName string  `json:"consultantName"`
	CapacityHours  float64 `json:"capacityHours"`
	ProjectedHours float64 `json:"projectedHours"`
	Utilization    float64 `json:"utilization"`
}

// EndingContract is a contract whose end date falls inside the planned month.
type EndingContract struct {
	ContractID     int32  `json:"contractId"`
	ClientID       int32  `json:"clientId"`
	ClientName     string `json:"clientName"`
	ConsultantID   int32  `json:"consultantId"`
	ConsultantName string `json:"consultantName"`
	Role           string `json:"role"`
	EndDate        string `json:"endDate"`
}

type CapacityPlan struct {
	Month           string               `json:"month"`
	BusinessDays    int                  `json:"businessDays"`
	Consultants     []ConsultantCapacity `json:"consultants"`
	EndingContracts []EndingContract     `json:"endingContracts"`
}

// PlanCapacity projects the calendar month following asOf: monthly capacity
// from business days times weekly capacity over five, projected hours from
// the benchmark targets effective as of planning time, and the contracts
// ending in that month deduplicated by (contract, consultant).
func PlanCapacity(rc *ReportContext, rd ReferenceData, idx *BenchmarkIndex) CapacityPlan {
	firstOfNext := time.Date(rc.AsOf.Year(), rc.AsOf.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	lastOfNext := firstOfNext.AddDate(0, 1, -1)
	days := len(rc.EarningDaysInMonth(firstOfNext.Year(), firstOfNext.Month()))

	plan := CapacityPlan{
		Month:        firstOfNext.Format("2006-01"),
		BusinessDays: days,
	}

	consultants := rd.ConsultantsByID()
	clients := rd.ClientsByID()

	ids := make([]int32, 0, len(consultants))
	for id := range consultants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		c := consultants[id]
		if !c.Active {
			continue
		}
		capHours := c.CapacityHoursPerWeek / 5 * float64(days)

		projected := 0.0
		for _, key := range idx.KeysForConsultant(id, firstOfNext) {
			if v := idx.ResolveAt(key, firstOfNext); v != nil {
				projected += v.TargetHours
			}
		}

		cc := ConsultantCapacity{
			ConsultantID:   id,
			ConsultantName: c.Name,
			CapacityHours:  capHours,
			ProjectedHours: projected,
		}
		if capHours > 0 {
			cc.Utilization = projected / capHours
		}
		plan.Consultants = append(plan.Consultants, cc)
	}

	seen := make(map[[2]int32]struct{})
	for _, contract := range rd.Contracts {
		if contract.EndDate == nil {
			continue
		}
		end := utils.DateOf(*contract.EndDate)
		if end.Before(firstOfNext) || end.After(lastOfNext) {
			continue
		}

		roleLines := []struct {
			consultantID *int32
			role         string
		}{
			{contract.CFOConsultantID, RoleCFO},
			{contract.ControllerConsultantID, RoleController},
			{contract.SeniorAccountantConsultantID, RoleSeniorAccountant},
		}
		for _, line := range roleLines {
			if line.consultantID == nil {
				continue
			}
			dedup := [2]int32{contract.ContractID, *line.consultantID}
			if _, dup := seen[dedup]; dup {
				continue
			}
			seen[dedup] = struct{}{}

			ec := EndingContract{
				ContractID:   contract.ContractID,
				ClientID:     contract.ClientID,
				ConsultantID: *line.consultantID,
				Role:         line.role,
				EndDate:      end.Format("2006-01-02"),
			}
			if cl, ok := clients[contract.ClientID]; ok {
				ec.ClientName = cl.Name
			}
			if co, ok := consultants[*line.consultantID]; ok {
				ec.ConsultantName = co.Name
			}
			plan.EndingContracts = append(plan.EndingContracts, ec)
		}
	}

	return plan
}
