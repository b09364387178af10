package models

import "time"

// BenchmarkVersion is one row of the versioned staffing expectation for a
// (client, consultant, role) triple. Superseded rows live in
// staffing_benchmark_history with the same shape; lookups union both tables.
type BenchmarkVersion struct {
	BenchmarkID   int32     `gorm:"primaryKey;column:benchmark_id" json:"id"`
	ClientID      int32     `gorm:"column:client_id;not null" json:"clientId"`
	ConsultantID  int32     `gorm:"column:consultant_id;not null" json:"consultantId"`
	Role          string    `gorm:"column:role;type:varchar(60)" json:"role"`
	EffectiveDate time.Time `gorm:"column:effective_date;type:date" json:"effectiveDate"`
	LowHours      float64   `gorm:"column:low_hours;type:decimal(8,2)" json:"low"`
	TargetHours   float64   `gorm:"column:target_hours;type:decimal(8,2)" json:"target"`
	HighHours     float64   `gorm:"column:high_hours;type:decimal(8,2)" json:"high"`
	BillRate      float64   `gorm:"column:bill_rate;type:decimal(12,2)" json:"billRate"`
	WeeklyHours   float64   `gorm:"column:weekly_hours;type:decimal(6,2)" json:"weeklyHours"`
	Distribution  string    `gorm:"column:distribution_type;type:varchar(20)" json:"distributionType"`
}

func (BenchmarkVersion) TableName() string {
	return "staffing_benchmarks"
}

const BenchmarkHistoryTable = "staffing_benchmark_history"
