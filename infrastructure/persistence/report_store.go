package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sounditout/backend/domain/report"
	"github.com/sounditout/backend/internal/database"
)

// ReportStore is the GORM implementation of report.Store.
type ReportStore struct {
	db database.Database
}

// NewReportStore creates a ReportStore.
func NewReportStore(db database.Database) *ReportStore {
	return &ReportStore{db: db}
}

// Get returns the report with the given ID.
func (s *ReportStore) Get(ctx context.Context, id int64) (report.Report, error) {
	var entity ReportEntity
	result := s.db.Session(ctx).First(&entity, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return report.Report{}, fmt.Errorf("%w: report %d", report.ErrNotFound, id)
		}
		return report.Report{}, fmt.Errorf("get report: %w", result.Error)
	}
	return entity.toDomain(), nil
}

// ByStudent returns all reports for a student, newest first.
func (s *ReportStore) ByStudent(ctx context.Context, studentID int64) ([]report.Report, error) {
	var entities []ReportEntity
	result := s.db.Session(ctx).
		Where("student_id = ?", studentID).
		Order("date DESC, id DESC").
		Find(&entities)
	if result.Error != nil {
		return nil, fmt.Errorf("list reports: %w", result.Error)
	}

	reports := make([]report.Report, len(entities))
	for i, e := range entities {
		reports[i] = e.toDomain()
	}
	return reports, nil
}

// Save inserts or updates a report.
func (s *ReportStore) Save(ctx context.Context, r report.Report) (report.Report, error) {
	entity := reportEntity(r)
	result := s.db.Session(ctx).Save(&entity)
	if result.Error != nil {
		return report.Report{}, fmt.Errorf("save report: %w", result.Error)
	}
	return entity.toDomain(), nil
}

// Delete removes the report with the given ID.
func (s *ReportStore) Delete(ctx context.Context, id int64) error {
	result := s.db.Session(ctx).Delete(&ReportEntity{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete report: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: report %d", report.ErrNotFound, id)
	}
	return nil
}

var _ report.Store = (*ReportStore)(nil)
