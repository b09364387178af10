package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cfoworx.com/portal/core/models"
	"cfoworx.com/portal/utils"
)

// DataSource is the read-only boundary the engine loads reference data
// through. Implementations live in attribution/store.
type DataSource interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	ListConsultants(ctx context.Context) ([]models.Consultant, error)
	ListContracts(ctx context.Context) ([]models.Contract, error)
	ListBenchmarkVersions(ctx context.Context) ([]models.BenchmarkVersion, error)
	ListHolidays(ctx context.Context) ([]models.Holiday, error)
	QueryTimecardTotals(ctx context.Context, start, end time.Time, statuses []string) ([]TimecardTotal, error)
	IssueNotesByKeys(ctx context.Context, keys []string) ([]models.IssueNote, error)
}

// Engine runs the attribution report. It holds no per-request state; every
// computation builds its own ReportContext, so concurrent runs never share
// mutable structures.
type Engine struct {
	Source     DataSource
	Thresholds IssueThresholds
	Split      SplitPolicy

	// Now supplies "today"; tests pin it.
	Now func() time.Time
}

func NewEngine(source DataSource) *Engine {
	return &Engine{
		Source:     source,
		Thresholds: DefaultThresholds(),
		Split:      SplitEqually,
		Now:        utils.ChicagoNow,
	}
}

type ReportMeta struct {
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	AsOfDate          string `json:"asOfDate"`
	BusinessDaysOnly  bool   `json:"businessDaysOnly"`
	EarningDays       int    `json:"earningDays"`
	EarningDaysToDate int    `json:"earningDaysToDate"`
}

type Report struct {
	Meta           ReportMeta         `json:"meta"`
	Summary        Summary            `json:"summary"`
	AssignmentRows []AssignmentRow    `json:"assignmentRows"`
	ByClient       []ClientRollup     `json:"byClient"`
	ByConsultant   []ConsultantRollup `json:"byConsultant"`
	ByRole         []RoleRollup       `json:"byRole"`
	Trend          []TrendPoint       `json:"trend"`
	Issues         []Issue            `json:"issues"`
}

// trailingMonths is the gross-margin look-back window in calendar months.
const trailingMonths = 3

// Run computes one report: load everything once, build the calendar context,
// then run the accumulators, attribution, rollups, issue detection. On any
// error no partial report is returned.
func (e *Engine) Run(ctx context.Context, req ReportRequest) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rd, err := e.load(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	return e.compute(ctx, req, rd)
}

// load fetches reference data, applying the request filters. Timecards reach
// back past the period start to cover the trailing gross-margin window and
// attention detection.
func (e *Engine) load(ctx context.Context, req ReportRequest) (ReferenceData, error) {
	var rd ReferenceData
	var err error

	if rd.Clients, err = e.Source.ListClients(ctx); err != nil {
		return rd, err
	}
	if rd.Consultants, err = e.Source.ListConsultants(ctx); err != nil {
		return rd, err
	}
	if rd.Contracts, err = e.Source.ListContracts(ctx); err != nil {
		return rd, err
	}
	if rd.Benchmarks, err = e.Source.ListBenchmarkVersions(ctx); err != nil {
		return rd, err
	}
	if rd.Holidays, err = e.Source.ListHolidays(ctx); err != nil {
		return rd, err
	}

	statuses := []string{models.TimecardStatusApproved}
	if req.IncludeSubmitted {
		statuses = append(statuses, models.TimecardStatusSubmitted)
	}
	loadStart := utils.DateOf(req.StartDate).AddDate(0, -trailingMonths, 0)
	if rd.Timecards, err = e.Source.QueryTimecardTotals(ctx, loadStart, utils.DateOf(req.EndDate), statuses); err != nil {
		return rd, err
	}

	return applyFilters(rd, req), nil
}

// applyFilters narrows reference data to the requested clients, consultants
// and role. The reserved synthetic clients always stay so time-off and
// internal hours keep flowing into utilization.
func applyFilters(rd ReferenceData, req ReportRequest) ReferenceData {
	if len(req.ClientIDs) == 0 && len(req.ConsultantIDs) == 0 && req.Role == "" {
		return rd
	}

	clientSet := make(map[int32]struct{}, len(req.ClientIDs))
	for _, id := range req.ClientIDs {
		clientSet[id] = struct{}{}
	}
	consultantSet := make(map[int32]struct{}, len(req.ConsultantIDs))
	for _, id := range req.ConsultantIDs {
		consultantSet[id] = struct{}{}
	}
	role := NormalizeRole(req.Role)

	keepClient := func(c models.Client) bool {
		if c.IsSynthetic() {
			return true
		}
		if len(clientSet) == 0 {
			return true
		}
		_, ok := clientSet[c.ClientID]
		return ok
	}
	keepClientID := func(id int32) bool {
		if len(clientSet) == 0 {
			return true
		}
		_, ok := clientSet[id]
		return ok
	}
	keepConsultantID := func(id int32) bool {
		if len(consultantSet) == 0 {
			return true
		}
		_, ok := consultantSet[id]
		return ok
	}

	clientByID := make(map[int32]models.Client, len(rd.Clients))
	for _, c := range rd.Clients {
		clientByID[c.ClientID] = c
	}

	rd.Clients = utils.Filter(rd.Clients, keepClient)
	rd.Contracts = utils.Filter(rd.Contracts, func(c models.Contract) bool {
		return keepClientID(c.ClientID)
	})
	rd.Benchmarks = utils.Filter(rd.Benchmarks, func(b models.BenchmarkVersion) bool {
		if !keepClientID(b.ClientID) || !keepConsultantID(b.ConsultantID) {
			return false
		}
		return role == "" || NormalizeRole(b.Role) == role
	})
	rd.Timecards = utils.Filter(rd.Timecards, func(t TimecardTotal) bool {
		if c, ok := clientByID[t.ClientID]; ok && c.IsSynthetic() {
			return keepConsultantID(t.ConsultantID)
		}
		return keepClientID(t.ClientID) && keepConsultantID(t.ConsultantID)
	})

	return rd
}

// compute runs the pure pipeline over loaded data.
func (e *Engine) compute(ctx context.Context, req ReportRequest, rd ReferenceData) (*Report, error) {
	rc := NewReportContext(req, rd.Holidays, e.Now(), e.Split)
	idx := NewBenchmarkIndex(rd.Benchmarks)
	clients := rd.ClientsByID()
	consultants := rd.ConsultantsByID()

	expected := AccumulateExpected(rc, idx, clients)
	actuals := AllocateActuals(rc, idx, rd.Timecards, clients)
	revenue := AttributeRevenue(rc, rd.Contracts, idx, actuals)

	rows := BuildAssignmentRows(rc, expected, actuals, revenue, clients, consultants)
	byClient := RollupByClient(rows)
	byRole := RollupByRole(rows)
	byConsultant := RollupByConsultant(rc, rows, actuals, consultants)
	trend := BuildTrend(rc, expected, actuals, revenue)

	trailing := e.buildTrailing(rc, rd, idx, clients, consultants)

	issues := DetectIssues(rc, e.Thresholds, rows, byConsultant, actuals, idx, clients, trailing, e.lookupNotes(ctx, rc, rows, byConsultant, clients))

	report := &Report{
		Meta: ReportMeta{
			StartDate:         rc.Start.Format("2006-01-02"),
			EndDate:           rc.End.Format("2006-01-02"),
			AsOfDate:          rc.AsOf.Format("2006-01-02"),
			BusinessDaysOnly:  rc.BusinessDaysOnly,
			EarningDays:       len(rc.EarningDays(rc.Start, rc.End)),
			EarningDaysToDate: len(rc.EarningDays(rc.Start, rc.AsOf)),
		},
		Summary:        BuildSummary(rows, byClient, byConsultant),
		AssignmentRows: rows,
		ByClient:       byClient,
		ByConsultant:   byConsultant,
		ByRole:         byRole,
		Trend:          trend,
		Issues:         issues,
	}
	return report, nil
}

// buildTrailing reruns the expected/actual/revenue pipeline over the trailing
// three calendar months ending with the as-of month, rolled up per client for
// the gross-margin detector.
func (e *Engine) buildTrailing(rc *ReportContext, rd ReferenceData, idx *BenchmarkIndex, clients map[int32]models.Client, consultants map[int32]models.Consultant) *trailingWindow {
	endOfAsOfMonth := time.Date(rc.AsOf.Year(), rc.AsOf.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)
	startOfWindow := time.Date(rc.AsOf.Year(), rc.AsOf.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(trailingMonths - 1), 0)

	trc := rc.WithRange(startOfWindow, endOfAsOfMonth, rc.AsOf)
	expected := AccumulateExpected(trc, idx, clients)
	actuals := AllocateActuals(trc, idx, rd.Timecards, clients)
	revenue := AttributeRevenue(trc, rd.Contracts, idx, actuals)
	rows := BuildAssignmentRows(trc, expected, actuals, revenue, clients, consultants)

	tw := &trailingWindow{
		revenueByClient:       make(map[int32]float64),
		actualCostByClient:    make(map[int32]float64),
		expectedGMPctByClient: make(map[int32]float64),
		hasExpected:           make(map[int32]bool),
	}
	expectedRevenue := make(map[int32]float64)
	expectedCost := make(map[int32]float64)
	for _, row := range rows {
		tw.revenueByClient[row.ClientID] += row.RevenueToDate
		tw.actualCostByClient[row.ClientID] += row.ActualCostToDate
		expectedRevenue[row.ClientID] += row.ExpectedTargetToDate * row.BillRate
		expectedCost[row.ClientID] += row.ExpectedTargetToDate * safeCostRate(consultants, row.ConsultantID)
	}
	for id, rev := range expectedRevenue {
		if rev > 0 {
			tw.expectedGMPctByClient[id] = (rev - expectedCost[id]) / rev
			tw.hasExpected[id] = true
		}
	}
	return tw
}

func safeCostRate(consultants map[int32]models.Consultant, id int32) float64 {
	if c, ok := consultants[id]; ok {
		return EffectiveHourlyCost(c)
	}
	return 0
}

// lookupNotes fetches stored dispositions for every issue key this run could
// produce. Note lookup is the engine's only data access after load; a lookup
// failure degrades to "no notes" rather than failing the report.
func (e *Engine) lookupNotes(ctx context.Context, rc *ReportContext, rows []AssignmentRow, byConsultant []ConsultantRollup, clients map[int32]models.Client) map[string]models.IssueNote {
	keys := utils.Map(rows, func(row AssignmentRow) string {
		key := AssignmentKey{ClientID: row.ClientID, ConsultantID: row.ConsultantID, Role: row.Role}
		return IssueKey(IssueHoursVariance, rc.Start, rc.End, key)
	})
	keys = append(keys, utils.Map(byConsultant, func(r ConsultantRollup) string {
		return IssueKey(IssueUtilizationVariance, rc.Start, rc.End, AssignmentKey{ConsultantID: r.ConsultantID})
	})...)
	for id := range clients {
		keys = append(keys, IssueKey(IssueAttention, rc.Start, rc.End, AssignmentKey{ClientID: id}))
		keys = append(keys, IssueKey(IssueGMVariance, rc.Start, rc.End, AssignmentKey{ClientID: id}))
	}
	sort.Strings(keys)

	notes, err := e.Source.IssueNotesByKeys(ctx, keys)
	if err != nil {
		return nil
	}
	byKey := make(map[string]models.IssueNote, len(notes))
	for _, n := range notes {
		byKey[n.IssueKey] = n
	}
	return byKey
}

// Capacity runs the next-month capacity projection.
func (e *Engine) Capacity(ctx context.Context, asOf time.Time) (*CapacityPlan, error) {
	req := ReportRequest{
		StartDate:        utils.DateOf(asOf),
		EndDate:          utils.DateOf(asOf),
		BusinessDaysOnly: true,
	}
	rd, err := e.load(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}
	rc := NewReportContext(req, rd.Holidays, e.Now(), e.Split)
	idx := NewBenchmarkIndex(rd.Benchmarks)
	plan := PlanCapacity(rc, rd, idx)
	return &plan, nil
}

// WeeklyIssue is one merged issue across the look-back weeks.
type WeeklyIssue struct {
	Issue
	WeeksSeen int `json:"weeksSeen"`
}

type WeeklyIssuesReport struct {
	Weeks  int           `json:"weeks"`
	Issues []WeeklyIssue `json:"issues"`
}

// maxLookbackWeeks caps the fan-out so a careless caller cannot schedule an
// unbounded number of report computations.
const maxLookbackWeeks = 12

// WeeklyIssues fans out N look-back weeks as independent parallel report
// runs and merges repeat counts by issue key. A failure or panic in any one
// week counts as zero issues for that week.
func (e *Engine) WeeklyIssues(ctx context.Context, weeks int) (*WeeklyIssuesReport, error) {
	if weeks <= 0 {
		weeks = 4
	}
	if weeks > maxLookbackWeeks {
		weeks = maxLookbackWeeks
	}

	today := utils.DateOf(e.Now())
	results := make([][]Issue, weeks)

	var wg sync.WaitGroup
	for i := 0; i < weeks; i++ {
		wg.Add(1)
		go func(week int) {
			defer wg.Done()
			defer func() {
				// A panicking week yields zero issues, never a failed request.
				_ = recover()
			}()

			end := today.AddDate(0, 0, -7*week)
			start := end.AddDate(0, 0, -6)
			report, err := e.Run(ctx, ReportRequest{
				StartDate:        start,
				EndDate:          end,
				BusinessDaysOnly: true,
			})
			if err != nil {
				return
			}
			results[week] = report.Issues
		}(i)
	}
	wg.Wait()

	type merged struct {
		issue Issue
		count int
	}
	byKey := make(map[string]*merged)
	var order []string
	for _, issues := range results {
		for _, issue := range issues {
			// Merge across weeks by identity without the period component.
			ident := fmt.Sprintf("%s|%d|%d|%s", issue.Type, issue.ClientID, issue.ConsultantID, issue.Role)
			m := byKey[ident]
			if m == nil {
				byKey[ident] = &merged{issue: issue, count: 1}
				order = append(order, ident)
				continue
			}
			m.count++
			// Keep the most recent week's rendering.
		}
	}
	sort.Strings(order)

	out := &WeeklyIssuesReport{Weeks: weeks}
	for _, ident := range order {
		m := byKey[ident]
		out.Issues = append(out.Issues, WeeklyIssue{Issue: m.issue, WeeksSeen: m.count})
	}
	return out, nil
}
