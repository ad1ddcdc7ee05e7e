package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sounditout/backend/domain/report"
)

// Reports owns progress-report CRUD. Creating or updating a report enqueues
// a background re-embedding; the write itself succeeds regardless of the
// embedding outcome.
type Reports struct {
	students report.StudentStore
	reports  report.Store
	enqueuer Enqueuer
	logger   *slog.Logger
}

// NewReports creates a Reports service.
func NewReports(students report.StudentStore, reports report.Store, enqueuer Enqueuer, logger *slog.Logger) *Reports {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reports{
		students: students,
		reports:  reports,
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// Create stores a new report for the student and schedules its embedding.
func (s *Reports) Create(ctx context.Context, studentID int64, fields report.Fields) (report.Report, error) {
	if _, err := s.students.Get(ctx, studentID); err != nil {
		return report.Report{}, err
	}

	saved, err := s.reports.Save(ctx, report.NewReport(0, studentID, time.Now().UTC(), fields))
	if err != nil {
		return report.Report{}, err
	}

	s.enqueueEmbedding(saved)
	return saved, nil
}

// Update replaces the free-text fields of an existing report and schedules
// its re-embedding.
func (s *Reports) Update(ctx context.Context, id int64, fields report.Fields) (report.Report, error) {
	existing, err := s.reports.Get(ctx, id)
	if err != nil {
		return report.Report{}, err
	}

	saved, err := s.reports.Save(ctx, existing.WithFields(fields))
	if err != nil {
		return report.Report{}, err
	}

	s.enqueueEmbedding(saved)
	return saved, nil
}

// Get returns one report.
func (s *Reports) Get(ctx context.Context, id int64) (report.Report, error) {
	return s.reports.Get(ctx, id)
}

// ByStudent returns a student's reports, newest first.
func (s *Reports) ByStudent(ctx context.Context, studentID int64) ([]report.Report, error) {
	if _, err := s.students.Get(ctx, studentID); err != nil {
		return nil, err
	}
	return s.reports.ByStudent(ctx, studentID)
}

// Delete removes a report. Its embedding row, if any, is left behind and
// cleaned up by the next purge-and-reindex.
func (s *Reports) Delete(ctx context.Context, id int64) error {
	return s.reports.Delete(ctx, id)
}

func (s *Reports) enqueueEmbedding(r report.Report) {
	accepted := s.enqueuer.Enqueue(r.StudentID(), r.ID(), r.Subject(), r.EmbeddingDocument())
	if !accepted {
		s.logger.Warn("embedding not scheduled for report",
			"student_id", r.StudentID(),
			"report_id", r.ID(),
		)
	}
}
