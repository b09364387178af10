package models

import "time"

type Holiday struct {
	HolidayID int32     `gorm:"primaryKey;column:holiday_id" json:"id"`
	Date      time.Time `gorm:"column:date;type:date" json:"date"`
	Name      string    `gorm:"column:name" json:"name"`
}

func (Holiday) TableName() string {
	return "holidays"
}
