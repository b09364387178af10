package core

import (
	"time"

	"cfoworx.com/portal/core/models"
)

// TimecardTotal is one aggregated timecard record per (date, client,
// consultant, project), the shape the store's totals query scans into.
type TimecardTotal struct {
	Date                 time.Time `json:"date"`
	ClientID             int32     `json:"clientId"`
	ConsultantID         int32     `json:"consultantId"`
	ProjectID            *int32    `json:"projectId,omitempty"`
	ClientFacingHours    float64   `json:"clientFacingHours"`
	NonClientFacingHours float64   `json:"nonClientFacingHours"`
	OtherHours           float64   `json:"otherHours"`
	TotalHours           float64   `json:"totalHours"`
}

// ReferenceData is everything one report computation reads, loaded once up
// front. Timecards span [loadStart, end] where loadStart reaches back far
// enough for the trailing gross-margin window and attention detection.
type ReferenceData struct {
	Clients     []models.Client
	Consultants []models.Consultant
	Contracts   []models.Contract
	Benchmarks  []models.BenchmarkVersion
	Holidays    []models.Holiday
	Timecards   []TimecardTotal
}

func (rd ReferenceData) ClientsByID() map[int32]models.Client {
	m := make(map[int32]models.Client, len(rd.Clients))
	for _, c := range rd.Clients {
		m[c.ClientID] = c
	}
	return m
}

func (rd ReferenceData) ConsultantsByID() map[int32]models.Consultant {
	m := make(map[int32]models.Consultant, len(rd.Consultants))
	for _, c := range rd.Consultants {
		m[c.ConsultantID] = c
	}
	return m
}
