package models

import "time"

const (
	TimecardStatusDraft     = "draft"
	TimecardStatusSubmitted = "submitted"
	TimecardStatusApproved  = "approved"
)

type TimecardLine struct {
	LineID               int32     `gorm:"primaryKey;column:line_id" json:"id"`
	Date                 time.Time `gorm:"column:date;type:date" json:"date"`
	ClientID             int32     `gorm:"column:client_id;not null" json:"clientId"`
	ConsultantID         int32     `gorm:"column:consultant_id;not null" json:"consultantId"`
	ProjectID            *int32    `gorm:"column:project_id" json:"projectId,omitempty"`
	Status               string    `gorm:"column:status;type:varchar(20)" json:"status"`
	ClientFacingHours    float64   `gorm:"column:client_facing_hours;type:decimal(6,2)" json:"clientFacingHours"`
	NonClientFacingHours float64   `gorm:"column:non_client_facing_hours;type:decimal(6,2)" json:"nonClientFacingHours"`
	OtherHours           float64   `gorm:"column:other_hours;type:decimal(6,2)" json:"otherHours"`
}

func (TimecardLine) TableName() string {
	return "timecard_lines"
}
