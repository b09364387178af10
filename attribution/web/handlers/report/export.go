package report

import (
	"fmt"
	"math"
	"net/http"

	"cfoworx.com/portal/infrastructure/filesystem"
	web "cfoworx.com/portal/web/common"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"cfoworx.com/portal/attribution/core"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportReport runs the report and streams it as an xlsx workbook. With
// ?archive=true the workbook is also written to the report archive bucket.
func (ep *Endpoint) ExportReport(c *gin.Context) {
	var params ReportParamsDTO
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	req := params.ToRequest()
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(err.Error()))
		return
	}

	db, conn, err := ep.base.GetDB(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}
	defer conn.Close()

	report, err := ep.engine(db).Run(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	workbook, err := buildWorkbook(report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	filename := fmt.Sprintf("performance_%s_%s.xlsx", report.Meta.StartDate, report.Meta.EndDate)

	if c.Query("archive") == "true" {
		bucket := c.GetString("archiveBucket")
		if bucket == "" {
			bucket = "cfoworx-report-archive"
		}
		key := fmt.Sprintf("performance/%s/%s", report.Meta.EndDate[:7], filename)
		if err := filesystem.WriteFile(bucket, key, c.Request.Context(), buf.Bytes(), xlsxContentType); err != nil {
			c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
			return
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func buildWorkbook(report *core.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	summary := "Summary"
	f.SetSheetName("Sheet1", summary)
	summaryRows := [][]interface{}{
		{"Period", report.Meta.StartDate + " to " + report.Meta.EndDate},
		{"As of", report.Meta.AsOfDate},
		{"Earning days", report.Meta.EarningDays},
		{},
		{"Expected target hours", round2(report.Summary.ExpectedTargetPeriod)},
		{"Actual hours", round2(report.Summary.ActualPeriod)},
		{"Projected hours", round2(report.Summary.ProjectedPeriod)},
		{"Service revenue", round2(report.Summary.ServiceRevenuePeriod)},
		{"Service margin", round2(report.Summary.ServiceMarginPeriod)},
		{"Software revenue", round2(report.Summary.SoftwareRevenuePeriod)},
		{"Software margin", round2(report.Summary.SoftwareMarginPeriod)},
		{"Clients", report.Summary.ClientCount},
		{"Consultants", report.Summary.ConsultantCount},
	}
	for i, row := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, err
		}
	}

	assignments := "Assignments"
	if _, err := f.NewSheet(assignments); err != nil {
		return nil, err
	}
	header := []interface{}{
		"Client", "Consultant", "Role",
		"Expected (target)", "Actual", "Projected",
		"Variance to date", "Variance %",
		"Revenue", "Cost (actual)", "Gross margin",
	}
	if err := f.SetSheetRow(assignments, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range report.AssignmentRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			row.ClientName, row.ConsultantName, row.RoleLabel,
			round2(row.ExpectedTargetPeriod), round2(row.ActualPeriod), round2(row.ProjectedPeriod),
			round2(row.VarianceToDate), round2(row.VariancePctToDate * 100),
			round2(row.RevenuePeriod), round2(row.ActualCostPeriod), round2(row.ActualGrossMarginPeriod),
		}
		if err := f.SetSheetRow(assignments, cell, &values); err != nil {
			return nil, err
		}
	}

	issues := "Issues"
	if _, err := f.NewSheet(issues); err != nil {
		return nil, err
	}
	issueHeader := []interface{}{"Type", "Severity", "Client", "Consultant", "Role", "Detail"}
	if err := f.SetSheetRow(issues, "A1", &issueHeader); err != nil {
		return nil, err
	}
	for i, issue := range report.Issues {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{issue.Type, issue.Severity, issue.ClientName, issue.ConsultantName, issue.Role, issue.Detail}
		if err := f.SetSheetRow(issues, cell, &values); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
