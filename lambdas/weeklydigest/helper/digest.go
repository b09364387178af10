package helper

import (
	"fmt"
	"strings"

	"cfoworx.com/portal/attribution/core"
)

// FormatDigest renders the merged weekly issues as the plain-text digest body
// shared by the Slack message and the email.
func FormatDigest(report *core.WeeklyIssuesReport) string {
	if report == nil || len(report.Issues) == 0 {
		return "No open issues across the look-back window."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly issues digest (%d week look-back)\n\n", report.Weeks)

	bySeverity := map[string][]core.WeeklyIssue{}
	for _, issue := range report.Issues {
		bySeverity[issue.Severity] = append(bySeverity[issue.Severity], issue)
	}

	for _, severity := range []string{core.SeverityCritical, core.SeverityWarning} {
		issues := bySeverity[severity]
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%d)\n", strings.ToUpper(severity), len(issues))
		for _, issue := range issues {
			who := issue.ClientName
			if issue.ConsultantName != "" {
				if who != "" {
					who += " / "
				}
				who += issue.ConsultantName
			}
			fmt.Fprintf(&b, "  [%s] %s: %s (seen %d weeks)\n", issue.Type, who, issue.Detail, issue.WeeksSeen)
		}
		b.WriteString("\n")
	}

	return b.String()
}
