package core

import (
	"testing"

	"cfoworx.com/portal/core/models"
	"cfoworx.com/portal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCapacity(t *testing.T) {
	rc := testContext("2025-03-01", "2025-03-31")
	rd := ReferenceData{
		Clients: []models.Client{
			{ClientID: 1, Name: "Lakeview Dental", Status: "Active"},
		},
		Consultants: []models.Consultant{
			{ConsultantID: 10, Name: "Avery", CapacityHoursPerWeek: 40, Active: true},
			{ConsultantID: 11, Name: "Brook", CapacityHoursPerWeek: 20, Active: true},
			{ConsultantID: 12, Name: "Casey", CapacityHoursPerWeek: 40, Active: false},
		},
		Contracts: []models.Contract{
			{
				ContractID:             5,
				ClientID:               1,
				Type:                   "recurring",
				StartDate:              utils.MustParseDate("2024-06-01"),
				EndDate:                utils.Ptr(utils.MustParseDate("2025-04-15")),
				CFOConsultantID:        utils.Ptr(int32(10)),
				CFOMonthlyRate:         4000,
				ControllerConsultantID: utils.Ptr(int32(11)),
				ControllerMonthlyRate:  2000,
			},
			{
				ContractID: 6,
				ClientID:   1,
				Type:       "recurring",
				StartDate:  utils.MustParseDate("2024-06-01"),
				EndDate:    utils.Ptr(utils.MustParseDate("2025-06-30")), // ends after the planned month
				MonthlyFee: 1000,
			},
		},
	}
	idx := NewBenchmarkIndex([]models.BenchmarkVersion{
		bv(1, 10, "cfo", "2025-01-01", 50),
		bv(1, 10, "controller", "2025-04-01", 30), // becomes effective in the planned month
		bv(1, 11, "controller", "2026-01-01", 20), // not yet effective
	})

	plan := PlanCapacity(rc, rd, idx)

	assert.Equal(t, "2025-04", plan.Month)
	assert.Equal(t, 22, plan.BusinessDays) // April 2025 weekdays

	require.Len(t, plan.Consultants, 2) // inactive consultant excluded
	avery := plan.Consultants[0]
	assert.Equal(t, int32(10), avery.ConsultantID)
	assert.InDelta(t, 40.0/5*22, avery.CapacityHours, 1e-9)
	assert.InDelta(t, 80, avery.ProjectedHours, 1e-9) // 50 + 30 effective Apr 1
	assert.InDelta(t, 80/(40.0/5*22), avery.Utilization, 1e-9)

	brook := plan.Consultants[1]
	assert.Zero(t, brook.ProjectedHours)

	// Only the contract ending inside April appears, one line per staffed role.
	require.Len(t, plan.EndingContracts, 2)
	assert.Equal(t, int32(5), plan.EndingContracts[0].ContractID)
	assert.Equal(t, "2025-04-15", plan.EndingContracts[0].EndDate)
}

func TestPlanCapacityDeduplicatesRoleLines(t *testing.T) {
	rc := testContext("2025-03-01", "2025-03-31")
	rd := ReferenceData{
		Consultants: []models.Consultant{
			{ConsultantID: 10, Name: "Avery", CapacityHoursPerWeek: 40, Active: true},
		},
		Contracts: []models.Contract{
			{
				ContractID:             7,
				ClientID:               1,
				Type:                   "recurring",
				StartDate:              utils.MustParseDate("2024-06-01"),
				EndDate:                utils.Ptr(utils.MustParseDate("2025-04-30")),
				CFOConsultantID:        utils.Ptr(int32(10)),
				CFOMonthlyRate:         4000,
				ControllerConsultantID: utils.Ptr(int32(10)), // same person in both seats
				ControllerMonthlyRate:  2000,
			},
		},
	}

	plan := PlanCapacity(rc, rd, NewBenchmarkIndex(nil))
	require.Len(t, plan.EndingContracts, 1)
	assert.Equal(t, RoleCFO, plan.EndingContracts[0].Role)
}
