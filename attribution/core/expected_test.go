package core

import (
	"testing"

	"cfoworx.com/portal/core/models"
	"cfoworx.com/portal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeClient(id int32) models.Client {
	return models.Client{ClientID: id, Status: "Active", Category: models.ClientCategoryStandard}
}

func TestExpectedFullMonthEqualsTarget(t *testing.T) {
	rc := testContext("2025-03-01", "2025-03-31")
	idx := NewBenchmarkIndex([]models.BenchmarkVersion{
		bv(1, 10, "cfo", "2025-01-01", 80),
	})
	clients := map[int32]models.Client{1: activeClient(1)}

	expected := AccumulateExpected(rc, idx, clients)
	tot := expected[NewAssignmentKey(1, 10, "cfo")]
	require.NotNil(t, tot)

	// Full month at any distribution accumulates exactly the monthly target.
	assert.InDelta(t, 80, tot.TargetPeriod, 1e-9)
	assert.InDelta(t, 64, tot.LowPeriod, 1e-9)
	assert.InDelta(t, 96, tot.HighPeriod, 1e-9)
	assert.InDelta(t, tot.TargetPeriod, tot.TargetToDate, 1e-9)
	assert.Equal(t, "CFO", tot.RoleLabel)
	assert.Equal(t, 250.0, tot.BillRate)
}

func TestExpectedToDateIsPartial(t *testing.T) {
	rc := NewReportContext(ReportRequest{
		StartDate:        utils.MustParseDate("2025-03-01"),
		EndDate:          utils.MustParseDate("2025-03-31"),
		AsOfDate:         utils.MustParseDate("2025-03-14"),
		BusinessDaysOnly: true,
	}, nil, utils.MustParseDate("2025-03-14"), SplitEqually)
	idx := NewBenchmarkIndex([]models.BenchmarkVersion{
		bv(1, 10, "cfo", "2025-01-01", 84),
	})

	expected := AccumulateExpected(rc, idx, map[int32]models.Client{1: activeClient(1)})
	tot := expected[NewAssignmentKey(1, 10, "cfo")]
	require.NotNil(t, tot)

	// 10 of March 2025's 21 weekdays fall on or before the 14th.
	assert.InDelta(t, 84, tot.TargetPeriod, 1e-9)
	assert.InDelta(t, 84*10.0/21.0, tot.TargetToDate, 1e-9)
}

func TestExpectedMidMonthVersionChange(t *testing.T) {
	rc := testContext("2025-03-01", "2025-03-31")
	// Target doubles from the 17th; March 2025 has 10 weekdays before it.
	idx := NewBenchmarkIndex([]models.BenchmarkVersion{
		bv(1, 10, "cfo", "2025-01-01", 42),
		bv(1, 10, "cfo", "2025-03-17", 84),
	})

	expected := AccumulateExpected(rc, idx, map[int32]models.Client{1: activeClient(1)})
	tot := expected[NewAssignmentKey(1, 10, "cfo")]
	require.NotNil(t, tot)
	assert.InDelta(t, 42*10.0/21.0+84*11.0/21.0, tot.TargetPeriod, 1e-9)
}

func TestExpectedSkipsFutureForInactiveClient(t *testing.T) {
	rc := NewReportContext(ReportRequest{
		StartDate:        utils.MustParseDate("2025-03-01"),
		EndDate:          utils.MustParseDate("2025-03-31"),
		BusinessDaysOnly: true,
	}, nil, utils.MustParseDate("2025-03-14"), SplitEqually)

	idx := NewBenchmarkIndex([]models.BenchmarkVersion{
		bv(1, 10, "cfo", "2025-01-01", 84),
	})
	inactive := models.Client{ClientID: 1, Status: "inactive", Category: models.ClientCategoryStandard}

	expected := AccumulateExpected(rc, idx, map[int32]models.Client{1: inactive})
	tot := expected[NewAssignmentKey(1, 10, "cfo")]
	require.NotNil(t, tot)

	// Only the 10 weekdays through today contribute anything.
	assert.InDelta(t, 84*10.0/21.0, tot.TargetPeriod, 1e-9)
}

func TestExpectedNoVersionNoEntry(t *testing.T) {
	rc := testContext("2025-03-01", "2025-03-31")
	idx := NewBenchmarkIndex([]models.BenchmarkVersion{
		bv(1, 10, "cfo", "2025-06-01", 80), // effective after the period
	})

	expected := AccumulateExpected(rc, idx, map[int32]models.Client{1: activeClient(1)})
	assert.Empty(t, expected)
}
