package core

import (
	"fmt"
	"math"
	"sort"

	"cfoworx.com/portal/core/models"
)

const (
	IssueHoursVariance       = "hours_variance"
	IssueUtilizationVariance = "utilization_variance"
	IssueAttention           = "attention"
	IssueGMVariance          = "gm_variance"
)

const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// IssueThresholds tunes the detectors. Percentages are fractions (0.05 = 5%).
type IssueThresholds struct {
	HoursWarnPct       float64 `yaml:"hoursWarnPct"`
	HoursCriticalPct   float64 `yaml:"hoursCriticalPct"`
	UtilWarnPct        float64 `yaml:"utilWarnPct"`
	UtilCriticalPct    float64 `yaml:"utilCriticalPct"`
	AttentionRiskDays  int     `yaml:"attentionRiskDays"`
	GMVariancePct      float64 `yaml:"gmVariancePct"`
	GMMaterialityFloor float64 `yaml:"gmMaterialityFloor"`
}

func DefaultThresholds() IssueThresholds {
	return IssueThresholds{
		HoursWarnPct:       0.05,
		HoursCriticalPct:   0.15,
		UtilWarnPct:        0.10,
		UtilCriticalPct:    0.25,
		AttentionRiskDays:  7,
		GMVariancePct:      0.10,
		GMMaterialityFloor: 5000,
	}
}

// Issue is a detected anomaly. Issues are derived on every run, never stored;
// only their notes persist, joined back by IssueKey.
type Issue struct {
	IssueKey       string  `json:"issueKey"`
	Type           string  `json:"type"`
	Severity       string  `json:"severity"`
	ClientID       int32   `json:"clientId"`
	ClientName     string  `json:"clientName"`
	ConsultantID   int32   `json:"consultantId"`
	ConsultantName string  `json:"consultantName"`
	Role           string  `json:"role"`
	Value          float64 `json:"value"`
	Expected       float64 `json:"expected"`
	Detail         string  `json:"detail"`

	Note *models.IssueNote `json:"note,omitempty"`
}

// trailingWindow is the trailing 3-calendar-month gross margin snapshot per
// client, produced by the engine's secondary run.
type trailingWindow struct {
	revenueByClient       map[int32]float64
	actualCostByClient    map[int32]float64
	expectedGMPctByClient map[int32]float64
	hasExpected           map[int32]bool
}

// DetectIssues runs every detector over the built report pieces and attaches
// stored notes. Issues whose note snoozes past today are suppressed.
func DetectIssues(
	rc *ReportContext,
	th IssueThresholds,
	rows []AssignmentRow,
	byConsultant []ConsultantRollup,
	actuals *AllocationResult,
	idx *BenchmarkIndex,
	clients map[int32]models.Client,
	trailing *trailingWindow,
	notes map[string]models.IssueNote,
) []Issue {
	var issues []Issue

	issues = append(issues, detectHoursVariance(rc, th, rows)...)
	issues = append(issues, detectUtilizationVariance(rc, th, byConsultant)...)
	issues = append(issues, detectAttention(rc, th, actuals, idx, clients)...)
	issues = append(issues, detectGMVariance(rc, th, clients, trailing)...)

	out := issues[:0]
	for i := range issues {
		if note, ok := notes[issues[i].IssueKey]; ok {
			if note.SnoozedOn(rc.Today) {
				continue
			}
			n := note
			issues[i].Note = &n
		}
		out = append(out, issues[i])
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].IssueKey < out[j].IssueKey
	})
	return out
}

func detectHoursVariance(rc *ReportContext, th IssueThresholds, rows []AssignmentRow) []Issue {
	var issues []Issue
	for _, row := range rows {
		if row.ExpectedTargetToDate == 0 && row.ExpectedLowToDate == 0 && row.ExpectedHighToDate == 0 {
			continue
		}

		severity := ""
		outsideBand := row.ActualToDate < row.ExpectedLowToDate || row.ActualToDate > row.ExpectedHighToDate
		absPct := math.Abs(row.VariancePctToDate)
		switch {
		case outsideBand, absPct >= th.HoursCriticalPct:
			severity = SeverityCritical
		case absPct >= th.HoursWarnPct:
			severity = SeverityWarning
		default:
			continue
		}

		key := AssignmentKey{ClientID: row.ClientID, ConsultantID: row.ConsultantID, Role: row.Role}
		issues = append(issues, Issue{
			IssueKey:       IssueKey(IssueHoursVariance, rc.Start, rc.End, key),
			Type:           IssueHoursVariance,
			Severity:       severity,
			ClientID:       row.ClientID,
			ClientName:     row.ClientName,
			ConsultantID:   row.ConsultantID,
			ConsultantName: row.ConsultantName,
			Role:           row.Role,
			Value:          row.ActualToDate,
			Expected:       row.ExpectedTargetToDate,
			Detail:         fmt.Sprintf("%.1f hours logged to date against %.1f expected (%+.1f%%)", row.ActualToDate, row.ExpectedTargetToDate, row.VariancePctToDate*100),
		})
	}
	return issues
}

func detectUtilizationVariance(rc *ReportContext, th IssueThresholds, byConsultant []ConsultantRollup) []Issue {
	var issues []Issue
	for _, r := range byConsultant {
		if r.CapacityToDate == 0 {
			continue
		}
		severity := ""
		switch {
		case r.UtilizationToDate < 1-th.UtilCriticalPct:
			severity = SeverityCritical
		case r.UtilizationToDate < 1-th.UtilWarnPct:
			severity = SeverityWarning
		default:
			continue
		}

		key := AssignmentKey{ConsultantID: r.ConsultantID}
		issues = append(issues, Issue{
			IssueKey:       IssueKey(IssueUtilizationVariance, rc.Start, rc.End, key),
			Type:           IssueUtilizationVariance,
			Severity:       severity,
			ConsultantID:   r.ConsultantID,
			ConsultantName: r.ConsultantName,
			Value:          r.UtilizationToDate,
			Expected:       1,
			Detail:         fmt.Sprintf("utilization to date %.0f%%", r.UtilizationToDate*100),
		})
	}
	return issues
}

func detectAttention(rc *ReportContext, th IssueThresholds, actuals *AllocationResult, idx *BenchmarkIndex, clients map[int32]models.Client) []Issue {
	window := th.AttentionRiskDays
	if window <= 0 {
		return nil
	}

	ids := make([]int32, 0, len(clients))
	for id := range clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var issues []Issue
	for _, id := range ids {
		client := clients[id]
		if !client.IsActive() || client.IsSynthetic() {
			continue
		}
		if !idx.HasActiveKeyForClient(id, rc.AsOf) {
			continue
		}

		last, ever := actuals.LastLoggedByClient[id]
		var staleDays int
		if ever {
			staleDays = int(rc.AsOf.Sub(last).Hours() / 24)
			if staleDays <= window {
				continue
			}
		}

		severity := SeverityWarning
		detail := fmt.Sprintf("no time logged in %d days", staleDays)
		if !ever || staleDays > 2*window {
			severity = SeverityCritical
			if !ever {
				detail = "no time ever logged"
			}
		}

		key := AssignmentKey{ClientID: id}
		issues = append(issues, Issue{
			IssueKey:   IssueKey(IssueAttention, rc.Start, rc.End, key),
			Type:       IssueAttention,
			Severity:   severity,
			ClientID:   id,
			ClientName: client.Name,
			Value:      float64(staleDays),
			Expected:   float64(window),
			Detail:     detail,
		})
	}
	return issues
}

func detectGMVariance(rc *ReportContext, th IssueThresholds, clients map[int32]models.Client, trailing *trailingWindow) []Issue {
	if trailing == nil {
		return nil
	}

	ids := make([]int32, 0, len(trailing.revenueByClient))
	for id := range trailing.revenueByClient {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var issues []Issue
	for _, id := range ids {
		revenue := trailing.revenueByClient[id]
		if revenue < th.GMMaterialityFloor {
			continue
		}
		if !trailing.hasExpected[id] {
			continue
		}
		actualGMPct := (revenue - trailing.actualCostByClient[id]) / revenue
		expectedGMPct := trailing.expectedGMPctByClient[id]
		if math.Abs(actualGMPct-expectedGMPct) <= th.GMVariancePct {
			continue
		}

		key := AssignmentKey{ClientID: id}
		issues = append(issues, Issue{
			IssueKey:   IssueKey(IssueGMVariance, rc.Start, rc.End, key),
			Type:       IssueGMVariance,
			Severity:   SeverityWarning,
			ClientID:   id,
			ClientName: clients[id].Name,
			Value:      actualGMPct,
			Expected:   expectedGMPct,
			Detail:     fmt.Sprintf("trailing 3-month gross margin %.0f%% against %.0f%% expected", actualGMPct*100, expectedGMPct*100),
		})
	}
	return issues
}
