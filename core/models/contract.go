package models

import (
	"encoding/json"
	"time"
)

type Contract struct {
	ContractID int32      `gorm:"primaryKey;column:contract_id" json:"id"`
	ClientID   int32      `gorm:"column:client_id;not null" json:"clientId"`
	Type       string     `gorm:"column:type;type:varchar(30)" json:"type"`
	StartDate  time.Time  `gorm:"column:start_date;type:date" json:"startDate"`
	EndDate    *time.Time `gorm:"column:end_date;type:date" json:"endDate,omitempty"`

	MonthlyFee    float64 `gorm:"column:monthly_fee;type:decimal(12,2)" json:"monthlyFee"`
	TotalFee      float64 `gorm:"column:total_fee;type:decimal(12,2)" json:"totalFee"`
	OnboardingFee float64 `gorm:"column:onboarding_fee;type:decimal(12,2)" json:"onboardingFee"`

	CFOConsultantID              *int32  `gorm:"column:cfo_consultant_id" json:"cfoConsultantId,omitempty"`
	CFOMonthlyRate               float64 `gorm:"column:cfo_monthly_rate;type:decimal(12,2)" json:"cfoMonthlyRate"`
	ControllerConsultantID       *int32  `gorm:"column:controller_consultant_id" json:"controllerConsultantId,omitempty"`
	ControllerMonthlyRate        float64 `gorm:"column:controller_monthly_rate;type:decimal(12,2)" json:"controllerMonthlyRate"`
	SeniorAccountantConsultantID *int32  `gorm:"column:senior_accountant_consultant_id" json:"seniorAccountantConsultantId,omitempty"`
	SeniorAccountantMonthlyRate  float64 `gorm:"column:senior_accountant_monthly_rate;type:decimal(12,2)" json:"seniorAccountantMonthlyRate"`

	SoftwareMonthlyRate  float64 `gorm:"column:software_monthly_rate;type:decimal(12,2)" json:"softwareMonthlyRate"`
	SoftwareMonthlyCost  float64 `gorm:"column:software_monthly_cost;type:decimal(12,2)" json:"softwareMonthlyCost"`
	SoftwareQuantity     float64 `gorm:"column:software_quantity;type:decimal(8,2)" json:"softwareQuantity"`
	SoftwareProvidedFree bool    `gorm:"column:software_provided_free;not null" json:"softwareProvidedFree"`

	AdditionalStaffJSON string `gorm:"column:additional_staff;type:json" json:"additionalStaffJson"`
}

func (Contract) TableName() string {
	return "contracts"
}

type AdditionalStaffLine struct {
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	MonthlyRate float64 `json:"monthlyRate"`
}

// AdditionalStaff decodes the free-form staff line items. A malformed or
// empty JSON column yields no lines rather than an error.
func (c Contract) AdditionalStaff() []AdditionalStaffLine {
	if c.AdditionalStaffJSON == "" {
		return nil
	}
	var lines []AdditionalStaffLine
	if err := json.Unmarshal([]byte(c.AdditionalStaffJSON), &lines); err != nil {
		return nil
	}
	return lines
}

// ActiveOn reports whether the contract is in force on the given date.
func (c Contract) ActiveOn(date time.Time) bool {
	if date.Before(c.StartDate) {
		return false
	}
	if c.EndDate != nil && date.After(*c.EndDate) {
		return false
	}
	return true
}

// OverlapsRange reports whether any day in [start, end] is in force.
func (c Contract) OverlapsRange(start, end time.Time) bool {
	if c.StartDate.After(end) {
		return false
	}
	if c.EndDate != nil && c.EndDate.Before(start) {
		return false
	}
	return true
}
