package core

import (
	"fmt"
	"strings"
	"time"
)

// Reserved consultant id for contract line items (additional staff, software)
// that are not assigned to a real consultant.
const UnassignedConsultantID int32 = 0

// Reserved role for hours logged against a client/consultant pair that has no
// benchmark active on that day.
const UnbenchmarkedRole = ""

// AssignmentKey is the composite identity under which expected hours, actual
// hours and revenue are accumulated. Role is stored normalized so "CFO " and
// "cfo" land on the same bucket.
type AssignmentKey struct {
	ClientID     int32
	ConsultantID int32
	Role         string
}

func NewAssignmentKey(clientID, consultantID int32, role string) AssignmentKey {
	return AssignmentKey{
		ClientID:     clientID,
		ConsultantID: consultantID,
		Role:         NormalizeRole(role),
	}
}

// NormalizeRole lower-cases, trims and collapses inner whitespace.
func NormalizeRole(role string) string {
	return strings.Join(strings.Fields(strings.ToLower(role)), " ")
}

// RoleLabel renders a normalized role for display.
func RoleLabel(role string) string {
	if role == UnbenchmarkedRole {
		return "Unbenchmarked"
	}
	if strings.EqualFold(role, "cfo") {
		return "CFO"
	}
	words := strings.Fields(role)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// IssueKey builds the deterministic identity an issue and its saved note
// share: type + period + client + consultant + role.
func IssueKey(issueType string, start, end time.Time, key AssignmentKey) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d|%s",
		issueType,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
		key.ClientID,
		key.ConsultantID,
		key.Role,
	)
}
