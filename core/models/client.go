package models

import "strings"

const (
	ClientCategoryStandard = "standard"
	ClientCategoryTimeOff  = "time_off"
	ClientCategoryInternal = "internal"
)

type Client struct {
	ClientID int32  `gorm:"primaryKey;column:client_id" json:"id"`
	Name     string `gorm:"column:name" json:"name"`
	Status   string `gorm:"column:status;type:varchar(20)" json:"status"`
	Category string `gorm:"column:category;type:varchar(20);default:standard" json:"category"`
}

func (Client) TableName() string {
	return "clients"
}

func (c Client) IsActive() bool {
	return strings.EqualFold(c.Status, "active")
}

func (c Client) IsTimeOff() bool {
	return c.Category == ClientCategoryTimeOff
}

func (c Client) IsInternal() bool {
	return c.Category == ClientCategoryInternal
}

// IsSynthetic reports whether the client is one of the reserved rows
// (time off, internal) that never carry revenue or variance.
func (c Client) IsSynthetic() bool {
	return c.IsTimeOff() || c.IsInternal()
}
