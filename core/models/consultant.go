package models

import "strings"

const (
	PayTypeHourly   = "hourly"
	PayTypeSalary   = "salary"
	PayTypeFlatRate = "flat_rate"
)

const (
	CycleWeekly      = "weekly"
	CycleBiWeekly    = "bi_weekly"
	CycleSemiMonthly = "semi_monthly"
	CycleMonthly     = "monthly"
	CycleQuarterly   = "quarterly"
	CycleAnnual      = "annual"
)

type Consultant struct {
	ConsultantID         int32   `gorm:"primaryKey;column:consultant_id" json:"id"`
	Name                 string  `gorm:"column:name" json:"name"`
	PayType              string  `gorm:"column:pay_type;type:varchar(20)" json:"payType"`
	PayRate              float64 `gorm:"column:pay_rate;type:decimal(12,2)" json:"payRate"`
	HourlyRate           float64 `gorm:"column:hourly_rate;type:decimal(12,2)" json:"hourlyRate"`
	CapacityHoursPerWeek float64 `gorm:"column:capacity_hours_per_week;type:decimal(6,2)" json:"capacityHoursPerWeek"`
	TimecardCycle        string  `gorm:"column:timecard_cycle;type:varchar(20)" json:"timecardCycle"`
	Active               bool    `gorm:"column:active;not null" json:"active"`
}

func (Consultant) TableName() string {
	return "consultants"
}

func (c Consultant) IsSalaried() bool {
	pt := strings.ToLower(c.PayType)
	return pt == PayTypeSalary || pt == PayTypeFlatRate
}
