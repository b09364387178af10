package helper

import (
	"strings"
	"testing"

	"cfoworx.com/portal/attribution/core"
)

func TestFormatDigestEmpty(t *testing.T) {
	body := FormatDigest(&core.WeeklyIssuesReport{Weeks: 4})
	if !strings.Contains(body, "No open issues") {
		t.Errorf("unexpected empty digest: %q", body)
	}
	if got := FormatDigest(nil); got != body {
		t.Errorf("nil report should render like an empty one, got %q", got)
	}
}

func TestFormatDigestGroupsBySeverity(t *testing.T) {
	report := &core.WeeklyIssuesReport{
		Weeks: 4,
		Issues: []core.WeeklyIssue{
			{
				Issue: core.Issue{
					Type:       core.IssueAttention,
					Severity:   core.SeverityCritical,
					ClientName: "Lakeview Dental",
					Detail:     "no time logged in 16 days",
				},
				WeeksSeen: 3,
			},
			{
				Issue: core.Issue{
					Type:           core.IssueHoursVariance,
					Severity:       core.SeverityWarning,
					ClientName:     "Harbor Freight Logistics",
					ConsultantName: "Avery",
					Detail:         "90.0 hours logged to date against 80.0 expected (+12.5%)",
				},
				WeeksSeen: 1,
			},
		},
	}

	body := FormatDigest(report)

	criticalAt := strings.Index(body, "CRITICAL (1)")
	warningAt := strings.Index(body, "WARNING (1)")
	if criticalAt < 0 || warningAt < 0 {
		t.Fatalf("missing severity sections: %q", body)
	}
	if criticalAt > warningAt {
		t.Errorf("critical should render before warning")
	}
	if !strings.Contains(body, "Harbor Freight Logistics / Avery") {
		t.Errorf("missing client/consultant line: %q", body)
	}
	if !strings.Contains(body, "seen 3 weeks") {
		t.Errorf("missing repeat count: %q", body)
	}
}
