package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", s, time.UTC)
	return t
}

func TestContractActiveOn(t *testing.T) {
	end := date("2025-06-30")
	c := Contract{StartDate: date("2025-01-15"), EndDate: &end}

	assert.False(t, c.ActiveOn(date("2025-01-14")))
	assert.True(t, c.ActiveOn(date("2025-01-15")))
	assert.True(t, c.ActiveOn(date("2025-06-30")))
	assert.False(t, c.ActiveOn(date("2025-07-01")))

	open := Contract{StartDate: date("2025-01-15")}
	assert.True(t, open.ActiveOn(date("2030-01-01")))
}

func TestContractOverlapsRange(t *testing.T) {
	end := date("2025-06-30")
	c := Contract{StartDate: date("2025-01-15"), EndDate: &end}

	assert.True(t, c.OverlapsRange(date("2025-06-01"), date("2025-07-31")))
	assert.True(t, c.OverlapsRange(date("2024-12-01"), date("2025-01-15")))
	assert.False(t, c.OverlapsRange(date("2025-07-01"), date("2025-07-31")))
	assert.False(t, c.OverlapsRange(date("2024-01-01"), date("2025-01-14")))
}

func TestAdditionalStaff(t *testing.T) {
	c := Contract{AdditionalStaffJSON: `[{"name":"Jordan","role":"Bookkeeper","monthlyRate":1500}]`}
	lines := c.AdditionalStaff()
	require.Len(t, lines, 1)
	assert.Equal(t, "Bookkeeper", lines[0].Role)
	assert.Equal(t, 1500.0, lines[0].MonthlyRate)

	assert.Nil(t, Contract{}.AdditionalStaff())
	assert.Nil(t, Contract{AdditionalStaffJSON: "{not json"}.AdditionalStaff())
}

func TestClientCategories(t *testing.T) {
	assert.True(t, Client{Status: "ACTIVE"}.IsActive())
	assert.False(t, Client{Status: "archived"}.IsActive())
	assert.True(t, Client{Category: ClientCategoryTimeOff}.IsSynthetic())
	assert.True(t, Client{Category: ClientCategoryInternal}.IsSynthetic())
	assert.False(t, Client{Category: ClientCategoryStandard}.IsSynthetic())
}

func TestIssueNoteSnoozedOn(t *testing.T) {
	until := date("2025-04-01")
	n := IssueNote{SnoozedUntil: &until}

	assert.True(t, n.SnoozedOn(date("2025-03-15")))
	assert.False(t, n.SnoozedOn(date("2025-04-01")))
	assert.False(t, IssueNote{}.SnoozedOn(date("2025-03-15")))
}
