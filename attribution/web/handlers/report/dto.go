package report

import (
	"strconv"

	"cfoworx.com/portal/attribution/core"
	web "cfoworx.com/portal/web/common"
)

// ReportParamsDTO is the request body shared by the report and export
// endpoints. Identifier filters arrive as strings; malformed entries are
// dropped rather than failing the computation.
type ReportParamsDTO struct {
	StartDate        *web.DateOnly `json:"startDate" binding:"required"`
	EndDate          *web.DateOnly `json:"endDate" binding:"required"`
	AsOfDate         *web.DateOnly `json:"asOfDate,omitempty"`
	ClientIDs        []string      `json:"clientIds,omitempty"`
	ConsultantIDs    []string      `json:"consultantIds,omitempty"`
	Role             string        `json:"role,omitempty"`
	IncludeSubmitted bool          `json:"includeSubmitted,omitempty"`
	BusinessDaysOnly *bool         `json:"businessDaysOnly,omitempty"`
}

func (dto ReportParamsDTO) ToRequest() core.ReportRequest {
	req := core.ReportRequest{
		Role:             dto.Role,
		IncludeSubmitted: dto.IncludeSubmitted,
		BusinessDaysOnly: true,
	}
	if dto.StartDate != nil {
		req.StartDate = dto.StartDate.Time
	}
	if dto.EndDate != nil {
		req.EndDate = dto.EndDate.Time
	}
	if dto.AsOfDate != nil {
		req.AsOfDate = dto.AsOfDate.Time
	}
	if dto.BusinessDaysOnly != nil {
		req.BusinessDaysOnly = *dto.BusinessDaysOnly
	}
	req.ClientIDs = parseIDList(dto.ClientIDs)
	req.ConsultantIDs = parseIDList(dto.ConsultantIDs)
	return req
}

// parseIDList silently drops malformed identifiers.
func parseIDList(raw []string) []int32 {
	var ids []int32
	for _, s := range raw {
		id, err := strconv.ParseInt(s, 10, 32)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, int32(id))
	}
	return ids
}

type WeeklyIssuesParamsDTO struct {
	Weeks int `json:"weeks"`
}

type IssueNoteDTO struct {
	IssueKey       string        `json:"issueKey" binding:"required"`
	Status         string        `json:"status"`
	Decision       string        `json:"decision"`
	SnoozedUntil   *web.DateOnly `json:"snoozedUntil,omitempty"`
	Notes          string        `json:"notes"`
	AcknowledgedBy string        `json:"acknowledgedBy"`
}

type IssueNoteSearchDTO struct {
	Keys []string `json:"keys" binding:"required"`
}
