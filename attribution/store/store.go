// Package store implements the engine's read-only data interfaces over the
// portal schema, plus the one write the platform allows: the issue-note
// upsert.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cfoworx.com/portal/attribution/core"
	"cfoworx.com/portal/core/models"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.WithContext(ctx).Order("client_id").Find(&clients).Error
	return clients, err
}

func (s *Store) ListConsultants(ctx context.Context) ([]models.Consultant, error) {
	var consultants []models.Consultant
	err := s.db.WithContext(ctx).Order("consultant_id").Find(&consultants).Error
	return consultants, err
}

func (s *Store) ListContracts(ctx context.Context) ([]models.Contract, error) {
	var contracts []models.Contract
	err := s.db.WithContext(ctx).Order("contract_id").Find(&contracts).Error
	return contracts, err
}

// ListBenchmarkVersions returns the union of the current and historical
// benchmark tables; the resolver orders versions itself.
func (s *Store) ListBenchmarkVersions(ctx context.Context) ([]models.BenchmarkVersion, error) {
	var current []models.BenchmarkVersion
	if err := s.db.WithContext(ctx).Order("benchmark_id").Find(&current).Error; err != nil {
		return nil, err
	}

	var historical []models.BenchmarkVersion
	if err := s.db.WithContext(ctx).
		Table(models.BenchmarkHistoryTable).
		Order("benchmark_id").
		Scan(&historical).Error; err != nil {
		return nil, err
	}

	return append(current, historical...), nil
}

func (s *Store) ListHolidays(ctx context.Context) ([]models.Holiday, error) {
	var holidays []models.Holiday
	err := s.db.WithContext(ctx).Order("date").Find(&holidays).Error
	return holidays, err
}

// QueryTimecardTotals aggregates timecard lines into one row per (date,
// client, consultant, project), restricted to the given statuses.
func (s *Store) QueryTimecardTotals(ctx context.Context, start, end time.Time, statuses []string) ([]core.TimecardTotal, error) {
	var totals []core.TimecardTotal
	err := s.db.WithContext(ctx).
		Model(&models.TimecardLine{}).
		Select(`
			date,
			client_id,
			consultant_id,
			project_id,
			SUM(client_facing_hours) AS client_facing_hours,
			SUM(non_client_facing_hours) AS non_client_facing_hours,
			SUM(other_hours) AS other_hours,
			SUM(client_facing_hours + non_client_facing_hours + other_hours) AS total_hours
		`).
		Where("date BETWEEN ? AND ?", start, end).
		Where("status IN ?", statuses).
		Group("date, client_id, consultant_id, project_id").
		Order("date, client_id, consultant_id, project_id").
		Scan(&totals).Error
	return totals, err
}

func (s *Store) IssueNotesByKeys(ctx context.Context, keys []string) ([]models.IssueNote, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var notes []models.IssueNote
	err := s.db.WithContext(ctx).
		Where("issue_key IN ?", keys).
		Order("issue_key").
		Find(&notes).Error
	return notes, err
}

// UpsertIssueNote writes a disposition keyed by its issue key. Repeating the
// same upsert is a no-op beyond the updated timestamp.
func (s *Store) UpsertIssueNote(ctx context.Context, note *models.IssueNote) (*models.IssueNote, error) {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "issue_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "decision", "snoozed_until", "notes", "acknowledged_by", "acknowledged_at",
			}),
		}).
		Create(note).Error
	if err != nil {
		return nil, err
	}

	var saved models.IssueNote
	if err := s.db.WithContext(ctx).Where("issue_key = ?", note.IssueKey).Take(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}
