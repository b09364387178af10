package models

import "time"

// IssueNote is the only state the attribution engine writes: a keyed
// disposition for a detected issue. Upserts are idempotent by IssueKey.
type IssueNote struct {
	ID             string     `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	IssueKey       string     `gorm:"column:issue_key;type:varchar(191);uniqueIndex" json:"issueKey"`
	Status         string     `gorm:"column:status;type:varchar(30)" json:"status"`
	Decision       string     `gorm:"column:decision;type:varchar(30)" json:"decision"`
	SnoozedUntil   *time.Time `gorm:"column:snoozed_until;type:date" json:"snoozedUntil,omitempty"`
	Notes          string     `gorm:"column:notes;type:text" json:"notes"`
	AcknowledgedBy string     `gorm:"column:acknowledged_by" json:"acknowledgedBy"`
	AcknowledgedAt *time.Time `gorm:"column:acknowledged_at;type:timestamp" json:"acknowledgedAt,omitempty"`
	CreatedAt      time.Time  `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP on update CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (IssueNote) TableName() string {
	return "issue_notes"
}

// SnoozedOn reports whether the note suppresses its issue on the given day.
func (n IssueNote) SnoozedOn(date time.Time) bool {
	return n.SnoozedUntil != nil && n.SnoozedUntil.After(date)
}
