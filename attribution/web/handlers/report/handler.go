package report

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cfoworx.com/portal/attribution/core"
	"cfoworx.com/portal/attribution/store"
	common "cfoworx.com/portal/attribution/web/common"
	portal "cfoworx.com/portal/core"
	"cfoworx.com/portal/core/models"
	"cfoworx.com/portal/utils"
	web "cfoworx.com/portal/web/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// capacityTimeout is the extended budget for the capacity projection, which
// scans every consultant and contract.
const capacityTimeout = 60 * time.Second

type Endpoint struct {
	base       common.Handler
	thresholds core.IssueThresholds
}

func Register(r *gin.RouterGroup, dm *portal.DatabaseManager, thresholds core.IssueThresholds) {
	endpoint := &Endpoint{base: common.Handler{Dm: dm}, thresholds: thresholds}
	r.POST("/reports/performance", endpoint.RunReport)
	r.POST("/reports/performance/export", endpoint.ExportReport)
	r.GET("/reports/capacity", endpoint.Capacity)
	r.POST("/issues/weekly", endpoint.WeeklyIssues)
	r.PUT("/issues/notes", endpoint.UpsertNote)
	r.POST("/issues/notes/search", endpoint.SearchNotes)
}

func (ep *Endpoint) engine(db *gorm.DB) *core.Engine {
	engine := core.NewEngine(store.New(db))
	engine.Thresholds = ep.thresholds
	return engine
}

func (ep *Endpoint) RunReport(c *gin.Context) {
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

	c.JSON(http.StatusOK, web.NewSuccessResponse(report))
}

func (ep *Endpoint) Capacity(c *gin.Context) {
	asOf := utils.ChicagoNow()
	if q := c.Query("asOf"); q != "" {
		parsed, err := utils.ParseISOTime(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, web.NewErrorResponse("Invalid asOf date"))
			return
		}
		asOf = *parsed
	}

	db, conn, err := ep.base.GetDB(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(c.Request.Context(), capacityTimeout)
	defer cancel()

	plan, err := ep.engine(db).Capacity(ctx, asOf)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, web.NewErrorResponse("capacity projection timed out"))
			return
		}
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(plan))
}

func (ep *Endpoint) WeeklyIssues(c *gin.Context) {
	var params WeeklyIssuesParamsDTO
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	db, conn, err := ep.base.GetDB(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}
	defer conn.Close()

	merged, err := ep.engine(db).WeeklyIssues(c.Request.Context(), params.Weeks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(merged))
}

func (ep *Endpoint) UpsertNote(c *gin.Context) {
	var dto IssueNoteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	db, conn, err := ep.base.GetDB(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}
	defer conn.Close()

	note := &models.IssueNote{
		IssueKey:       dto.IssueKey,
		Status:         dto.Status,
		Decision:       dto.Decision,
		Notes:          dto.Notes,
		AcknowledgedBy: dto.AcknowledgedBy,
	}
	if dto.SnoozedUntil != nil && !dto.SnoozedUntil.IsZero() {
		note.SnoozedUntil = utils.Ptr(dto.SnoozedUntil.Time)
	}
	if dto.AcknowledgedBy != "" {
		note.AcknowledgedAt = utils.Ptr(time.Now().UTC())
	}

	saved, err := store.New(db).UpsertIssueNote(c.Request.Context(), note)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, web.NewSuccessResponse(saved))
}

func (ep *Endpoint) SearchNotes(c *gin.Context) {
	var dto IssueNoteSearchDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, web.NewErrorResponse(web.FormatBindingError(err)))
		return
	}

	db, conn, err := ep.base.GetDB(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}
	defer conn.Close()

	notes, err := store.New(db).IssueNotesByKeys(c.Request.Context(), dto.Keys)
	if err != nil {
		c.JSON(http.StatusInternalServerError, web.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, web.NewSearchResponse(notes, int64(len(notes))))
}
